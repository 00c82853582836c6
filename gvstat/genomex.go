// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gvstat

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/table"

	"github.com/gvplot/gvplot/genome"
)

// GenomeX lays chromosomes end to end on one genome-wide axis for
// Manhattan-style plots.
//
// The result is the input with one added column, "genome pos": the
// position column shifted by the cumulative length of all preceding
// chromosomes in karyotype order, plus Gap bases between chromosomes.
// Chromosome extents are measured from the data, so the axis is
// consistent across groups.
type GenomeX struct {
	// Chrom and Pos name the chromosome and position columns.
	Chrom string
	Pos   string

	// Gap is the spacing between chromosomes in bases; 0 means no
	// gap.
	Gap int64
}

func (s GenomeX) F(g table.Grouping) table.Grouping {
	offsets, _ := s.offsets(g)
	return table.MapTables(g, func(_ table.GroupID, t *table.Table) *table.Table {
		chroms := chromStrings(t, s.Chrom)
		var pos []float64
		slice.Convert(&pos, t.MustColumn(s.Pos))

		gpos := make([]float64, len(pos))
		for i := range pos {
			gpos[i] = pos[i] + float64(offsets[chroms[i]])
		}
		return table.NewBuilder(t).Add("genome pos", gpos).Done()
	})
}

// Offsets returns the chromosomes present in g in karyotype order and
// each one's starting offset on the genome-wide axis. It is what the
// "genome pos" column is built from, and gives axis label positions
// for genome-wide plots.
func (s GenomeX) Offsets(g table.Grouping) ([]string, []int64) {
	offsets, order := s.offsets(g)
	starts := make([]int64, len(order))
	for i, c := range order {
		starts[i] = offsets[c]
	}
	return order, starts
}

func (s GenomeX) offsets(g table.Grouping) (map[string]int64, []string) {
	// Chromosome extents across all groups.
	maxPos := make(map[string]int64)
	for _, gid := range g.Tables() {
		t := g.Table(gid)
		chroms := chromStrings(t, s.Chrom)
		var pos []float64
		slice.Convert(&pos, t.MustColumn(s.Pos))
		for i, c := range chroms {
			if p := int64(pos[i]); p > maxPos[c] {
				maxPos[c] = p
			}
		}
	}

	order := make([]string, 0, len(maxPos))
	for c := range maxPos {
		order = append(order, c)
	}
	genome.SortChroms(order)

	offsets := make(map[string]int64, len(order))
	var off int64
	for _, c := range order {
		offsets[c] = off
		off += maxPos[c] + s.Gap
	}
	return offsets, order
}

// chromStrings formats a chromosome column as strings. slice.Convert
// is no help here: it converts integers to code points, not digits.
func chromStrings(t *table.Table, col string) []string {
	switch vs := t.MustColumn(col).(type) {
	case []string:
		return vs
	case []int64:
		out := make([]string, len(vs))
		for i, v := range vs {
			out[i] = strconv.FormatInt(v, 10)
		}
		return out
	case []int:
		out := make([]string, len(vs))
		for i, v := range vs {
			out[i] = strconv.Itoa(v)
		}
		return out
	default:
		rv := reflect.ValueOf(vs)
		out := make([]string, rv.Len())
		for i := range out {
			out[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return out
	}
}
