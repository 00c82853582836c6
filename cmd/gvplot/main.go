// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gvplot renders grammar-style plots of genomic variants.
//
// It composes layered, faceted figures from variant CSV tables, read
// alignments, and gene annotations, and writes them as SVG or PNG.
// See "gvplot --help" for the commands.
package main

import (
	"os"

	"github.com/gvplot/gvplot/internal/cli"
)

func main() {
	// Cobra already reported the error; just set the exit status.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
