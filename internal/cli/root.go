// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cli implements the gvplot command-line interface.
//
// The main commands are:
//   - plot: render a figure from a variant table
//   - tracks: render a stacked genome view around a region
//   - table: parse and print the typed variant table
//
// All commands support --verbose for debug-level logging and --config
// for a TOML file naming the data inputs. Loggers are passed through
// context.Context.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "devel"
	commit  string
	date    string
)

// SetVersion sets the build information displayed by --version,
// typically injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the gvplot CLI and returns an error if any command
// fails. The logger is attached to the command context and is
// retrieved by subcommands with loggerFromContext.
func Execute() error {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "gvplot",
		Short:        "gvplot renders grammar-style plots of genomic variants",
		Long:         `gvplot composes layered, faceted statistical graphics over genomic variant tables, read alignments, and gene annotations, and renders them to SVG or PNG.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("gvplot %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "TOML config naming data inputs")

	root.AddCommand(newPlotCmd(&configPath))
	root.AddCommand(newTracksCmd(&configPath))
	root.AddCommand(newTableCmd(&configPath))

	return root.ExecuteContext(context.Background())
}
