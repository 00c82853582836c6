// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"os"
	"reflect"

	"github.com/aclements/go-gg/table"
	"github.com/spf13/cobra"

	"github.com/gvplot/gvplot/vartab"
)

// tableOpts holds the command-line flags for the table command.
type tableOpts struct {
	csv  string // variant CSV path; falls back to config data.variants
	head int    // print only the first head rows; 0 prints all
}

// newTableCmd creates the table command, which parses a variant CSV
// into its typed columns and prints the result. It is mainly a way to
// check what column types the reader inferred.
func newTableCmd(configPath *string) *cobra.Command {
	var opts tableOpts

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Parse and print the typed variant table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTable(cmd.Context(), *configPath, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.csv, "csv", "", "variant CSV file (default: config data.variants)")
	cmd.Flags().IntVar(&opts.head, "head", 0, "print only the first n rows")

	return cmd
}

func runTable(ctx context.Context, configPath string, opts *tableOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	csv := opts.csv
	if csv == "" {
		csv = cfg.Data.Variants
	}
	if csv == "" {
		return fmt.Errorf("no variant table: pass --csv or set data.variants in the config")
	}

	tab, err := vartab.ReadCSVFile(csv)
	if err != nil {
		return err
	}
	logger.Debugf("Read %s: %d rows, %d columns", csv, tab.Len(), len(tab.Columns()))
	if opts.head > 0 {
		tab = headTable(tab, opts.head)
	}
	return table.Fprint(os.Stdout, tab)
}

// headTable returns the first n rows of t, or t itself when it has no
// more than n rows.
func headTable(t *table.Table, n int) *table.Table {
	if n >= t.Len() {
		return t
	}
	var b table.Builder
	for _, col := range t.Columns() {
		if cv, ok := t.Const(col); ok {
			b.AddConst(col, cv)
			continue
		}
		v := reflect.ValueOf(t.Column(col))
		b.Add(col, v.Slice(0, n).Interface())
	}
	return b.Done()
}
