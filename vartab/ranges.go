// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vartab

import (
	"fmt"
	"math"

	"github.com/aclements/go-gg/table"

	"github.com/gvplot/gvplot/genome"
)

// Ranges extracts one genomic range per row from a chromosome column
// and position columns. endCol may be "" for point variants, which
// get one-base ranges. Annotation tables are conventionally 1-based
// with inclusive ends; oneBased shifts starts down by one so the
// results are half-open 0-based like the rest of the module.
func Ranges(g table.Grouping, chromCol, startCol, endCol string, oneBased bool) ([]genome.Range, error) {
	cols := []string{chromCol, startCol}
	if endCol != "" {
		cols = append(cols, endCol)
	}
	for _, col := range cols {
		if err := checkColumn(g, col); err != nil {
			return nil, err
		}
	}

	var out []genome.Range
	for _, gid := range g.Tables() {
		t := g.Table(gid)
		chroms := columnStrings(t, chromCol)
		starts, err := columnInts(t, startCol)
		if err != nil {
			return nil, err
		}
		var ends []int64
		if endCol != "" {
			if ends, err = columnInts(t, endCol); err != nil {
				return nil, err
			}
		}
		for i := range chroms {
			start := starts[i]
			if oneBased {
				start--
			}
			end := start + 1
			if endCol != "" {
				end = ends[i]
			}
			if end < start {
				return nil, fmt.Errorf("row %d: end %d before start %d", i, end, start)
			}
			out = append(out, genome.Range{Chrom: chroms[i], Start: start, End: end})
		}
	}
	return out, nil
}

func columnInts(t *table.Table, col string) ([]int64, error) {
	switch vs := t.Column(col).(type) {
	case []int64:
		return vs, nil
	case []int:
		out := make([]int64, len(vs))
		for i, v := range vs {
			out[i] = int64(v)
		}
		return out, nil
	case []float64:
		out := make([]int64, len(vs))
		for i, v := range vs {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("column %q: missing value in row %d", col, i)
			}
			out[i] = int64(v)
		}
		return out, nil
	}
	return nil, fmt.Errorf("column %q of type %T is not a position column", col, t.Column(col))
}
