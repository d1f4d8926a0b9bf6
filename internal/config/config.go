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

// Package config defines the configuration file format of the mdparse command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"zombiezen.com/go/mdparse"
	"zombiezen.com/go/mdparse/dump"
)

// Format is the output format of the mdparse command.
type Format string

// Output formats.
const (
	FormatHTML Format = "html"
	FormatTree Format = "tree"
)

// IsValid reports whether f is a known output format.
func (f Format) IsValid() bool {
	return f == FormatHTML || f == FormatTree
}

// Validation errors.
var (
	ErrInvalidFormat    = errors.New("unknown output format")
	ErrInvalidSoftBreak = errors.New("unknown soft break behavior")
)

// Config is the root configuration structure.
type Config struct {
	// Format selects the renderer ("html" or "tree").
	Format Format `yaml:"format"`

	// SoftBreak is the name of an [mdparse.SoftBreakBehavior]
	// ("preserve", "space", or "harden").
	SoftBreak string `yaml:"soft_break"`

	// IgnoreRawHTML drops HTML blocks and raw inline HTML from HTML output.
	IgnoreRawHTML bool `yaml:"ignore_raw_html"`

	// FilterTags escapes the tags disallowed by GitHub Flavored Markdown.
	FilterTags bool `yaml:"filter_tags"`

	// Lines annotates blocks with their line ranges in tree output.
	Lines bool `yaml:"lines"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Format:    FormatHTML,
		SoftBreak: mdparse.SoftBreakPreserve.String(),
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML configuration on top of [Default] and validates it.
// Unknown fields are an error.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field in cfg.
func (cfg *Config) Validate() error {
	var errs []error
	if !cfg.Format.IsValid() {
		errs = append(errs, fmt.Errorf("format %q: %w", cfg.Format, ErrInvalidFormat))
	}
	if _, err := cfg.SoftBreakBehavior(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SoftBreakBehavior returns the behavior named by cfg.SoftBreak.
// An empty name means [mdparse.SoftBreakPreserve].
func (cfg *Config) SoftBreakBehavior() (mdparse.SoftBreakBehavior, error) {
	if cfg.SoftBreak == "" {
		return mdparse.SoftBreakPreserve, nil
	}
	for _, b := range []mdparse.SoftBreakBehavior{mdparse.SoftBreakPreserve, mdparse.SoftBreakSpace, mdparse.SoftBreakHarden} {
		if cfg.SoftBreak == b.String() {
			return b, nil
		}
	}
	return 0, fmt.Errorf("soft_break %q: %w", cfg.SoftBreak, ErrInvalidSoftBreak)
}

// HTMLRenderer returns a renderer configured by cfg.
func (cfg *Config) HTMLRenderer() (*mdparse.HTMLRenderer, error) {
	sb, err := cfg.SoftBreakBehavior()
	if err != nil {
		return nil, err
	}
	r := &mdparse.HTMLRenderer{
		SoftBreakBehavior: sb,
		IgnoreRaw:         cfg.IgnoreRawHTML,
	}
	if cfg.FilterTags {
		r.FilterTag = mdparse.FilterTagGFM
	}
	return r, nil
}

// DumpOptions returns the tree dump options configured by cfg.
func (cfg *Config) DumpOptions() *dump.Options {
	return &dump.Options{Lines: cfg.Lines}
}
