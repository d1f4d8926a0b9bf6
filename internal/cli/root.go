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

// Package cli provides the Cobra command structure for mdparse.
package cli

import (
	"github.com/spf13/cobra"

	"zombiezen.com/go/mdparse/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the mdparse command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	flags := new(renderFlags)

	rootCmd := &cobra.Command{
		Use:   "mdparse [flags] [FILE]",
		Short: "Parse CommonMark and print HTML or a syntax tree",
		Long: `mdparse parses a CommonMark document from FILE,
or from standard input if FILE is omitted or "-",
and writes the result to standard output.

The output is HTML by default. --format=tree prints the parsed
block and inline nodes as an indented tree instead.
Options may also be read from a YAML file given with --config.
Flags take precedence over the file.`,
		Args: func(cmd *cobra.Command, args []string) error {
			return withExitCode(ExitInvalidUsage, cobra.MaximumNArgs(1)(cmd, args))
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := "info"
			if debug {
				level = "debug"
			}
			logger := logging.NewWriter(cmd.ErrOrStderr(), level)
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withExitCode(ExitInvalidUsage, err)
	})

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	addRenderFlags(rootCmd, flags)

	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}
