// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"zombiezen.com/go/mdparse"
	"zombiezen.com/go/mdparse/internal/config"
	"zombiezen.com/go/mdparse/internal/logging"
)

type renderFlags struct {
	configPath string
	format     string
	softBreak  string
	ignoreRaw  bool
	filterTags bool
	lines      bool
}

func addRenderFlags(cmd *cobra.Command, flags *renderFlags) {
	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "path to YAML config file")
	f.StringVarP(&flags.format, "format", "f", string(config.FormatHTML), "output format: html, tree")
	f.StringVar(&flags.softBreak, "soft-break", mdparse.SoftBreakPreserve.String(), "soft line break rendering: preserve, space, harden")
	f.BoolVar(&flags.ignoreRaw, "ignore-raw-html", false, "omit raw HTML from HTML output")
	f.BoolVar(&flags.filterTags, "filter-tags", false, "escape tags disallowed by GitHub Flavored Markdown")
	f.BoolVar(&flags.lines, "lines", false, "annotate tree output with line ranges")
}

// resolveConfig loads the config file, if any,
// and overrides its values with explicitly set flags.
func resolveConfig(cmd *cobra.Command, flags *renderFlags) (*config.Config, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		var err error
		cfg, err = config.Load(flags.configPath)
		if err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
	}
	f := cmd.Flags()
	if f.Changed("format") {
		cfg.Format = config.Format(flags.format)
	}
	if f.Changed("soft-break") {
		cfg.SoftBreak = flags.softBreak
	}
	if f.Changed("ignore-raw-html") {
		cfg.IgnoreRawHTML = flags.ignoreRaw
	}
	if f.Changed("filter-tags") {
		cfg.FilterTags = flags.filterTags
	}
	if f.Changed("lines") {
		cfg.Lines = flags.lines
	}
	if err := cfg.Validate(); err != nil {
		return nil, withExitCode(ExitInvalidUsage, err)
	}
	return cfg, nil
}

func runRender(cmd *cobra.Command, args []string, flags *renderFlags) error {
	logger := logging.FromContext(cmd.Context())
	cfg, err := resolveConfig(cmd, flags)
	if err != nil {
		return err
	}
	logger.Debug("configuration resolved",
		logging.FieldConfig, flags.configPath,
		logging.FieldFormat, cfg.Format,
		logging.FieldSoftBreak, cfg.SoftBreak,
	)

	path := "-"
	if len(args) > 0 {
		path = args[0]
	}
	source, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return withExitCode(ExitIOError, err)
	}

	start := time.Now()
	lines := mdparse.SplitLines(source)
	doc := new(mdparse.Parser).Parse(lines)
	blocks, inlines := countNodes(doc)
	logger.Debug("parsed document",
		logging.FieldPath, path,
		logging.FieldBytes, len(source),
		logging.FieldLines, len(lines),
		logging.FieldBlocks, blocks,
		logging.FieldInlines, inlines,
		logging.FieldElapsed, time.Since(start),
	)

	out := bufio.NewWriter(cmd.OutOrStdout())
	switch cfg.Format {
	case config.FormatTree:
		err = cfg.DumpOptions().Tree(out, doc)
	default:
		var r *mdparse.HTMLRenderer
		r, err = cfg.HTMLRenderer()
		if err == nil {
			err = r.Render(out, doc)
		}
	}
	if err == nil {
		err = out.Flush()
	}
	if err != nil {
		return withExitCode(ExitIOError, err)
	}
	return nil
}

// readInput reads the named file, or r if path is "-".
func readInput(r io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func countNodes(doc *mdparse.Document) (blocks, inlines int) {
	mdparse.Walk(doc.AsNode(), &mdparse.WalkOptions{
		Pre: func(c *mdparse.Cursor) bool {
			if c.Node().Block() != nil {
				blocks++
			} else {
				inlines++
			}
			return true
		},
	})
	return blocks, inlines
}
