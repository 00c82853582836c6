// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gvstat

import (
	"github.com/aclements/go-gg/table"

	"github.com/gvplot/gvplot/genome"
)

// CoverageTable converts a per-base depth vector over rg, such as
// align.Coverage produces, into a table with columns "pos" and
// "depth" for area or line layers.
func CoverageTable(depth []int64, rg genome.Range) *table.Table {
	pos := make([]int64, len(depth))
	for i := range pos {
		pos[i] = rg.Start + int64(i)
	}
	return new(table.Builder).Add("pos", pos).Add("depth", depth).Done()
}
