// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gvstat provides statistical transforms for plot layers.
//
// Each statistic is a struct whose F method maps a table.Grouping to a
// derived table.Grouping, preserving the group structure and any
// constant columns, in the manner of ggstat. Renderers apply these
// when lowering layers whose statistic is not identity; they are also
// usable directly for pre-computing plot tables.
package gvstat

import (
	"math"
	"reflect"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"
)

// Count counts rows per distinct X value.
//
// The result has two columns in addition to constant columns from the
// input:
//
// - Column X holds the distinct values in first-appearance order.
//
// - Column "count" holds the row count, or the sum of the Weight
// column, for each value.
type Count struct {
	// X is the name of the column to count by.
	X string

	// Weight is the optional name of a numeric column of row
	// weights. It may be "" to weight each row as 1.
	Weight string
}

func (c Count) F(g table.Grouping) table.Grouping {
	return table.MapTables(g, func(_ table.GroupID, t *table.Table) *table.Table {
		col := reflect.ValueOf(t.MustColumn(c.X))
		var weights []float64
		if c.Weight != "" {
			slice.Convert(&weights, t.MustColumn(c.Weight))
		}

		idx := make(map[interface{}]int)
		var order []reflect.Value
		var counts []float64
		for i := 0; i < col.Len(); i++ {
			v := col.Index(i)
			j, ok := idx[v.Interface()]
			if !ok {
				j = len(order)
				idx[v.Interface()] = j
				order = append(order, v)
				counts = append(counts, 0)
			}
			if weights != nil {
				counts[j] += weights[i]
			} else {
				counts[j]++
			}
		}

		out := reflect.MakeSlice(col.Type(), len(order), len(order))
		for i, v := range order {
			out.Index(i).Set(v)
		}
		nt := new(table.Builder).Add(c.X, out.Interface()).Add("count", counts)
		copyConsts(nt, t)
		return nt.Done()
	})
}

// Bin counts rows in equal-width intervals of X.
//
// The result has two columns in addition to constant columns from the
// input:
//
// - Column X holds the bin centers.
//
// - Column "count" holds the row count, or sum of Weight, per bin.
type Bin struct {
	// X is the name of the numeric column to bin.
	X string

	// Weight is the optional name of a column of row weights.
	Weight string

	// Bins is the number of bins; 0 means 30.
	Bins int

	// Width, if nonzero, fixes the bin width and overrides Bins.
	Width float64
}

func (b Bin) F(g table.Grouping) table.Grouping {
	if b.Bins == 0 {
		b.Bins = 30
	}
	return table.MapTables(g, func(_ table.GroupID, t *table.Table) *table.Table {
		var xs, weights []float64
		slice.Convert(&xs, t.MustColumn(b.X))
		if b.Weight != "" {
			slice.Convert(&weights, t.MustColumn(b.Weight))
		}

		xs2, w2 := dropNaN(xs, weights)
		nt := new(table.Builder)
		if len(xs2) == 0 {
			nt.Add(b.X, []float64{}).Add("count", []float64{})
			copyConsts(nt, t)
			return nt.Done()
		}

		min, max := stats.Sample{Xs: xs2}.Bounds()
		width := b.Width
		if width == 0 {
			width = (max - min) / float64(b.Bins)
		}
		if width == 0 {
			// All samples are equal; one bin holds everything.
			width = 1
		}
		n := int((max-min)/width) + 1

		counts := make([]float64, n)
		for i, x := range xs2 {
			j := int((x - min) / width)
			if j >= n {
				j = n - 1
			}
			if w2 != nil {
				counts[j] += w2[i]
			} else {
				counts[j]++
			}
		}
		centers := make([]float64, n)
		for j := range centers {
			centers[j] = min + (float64(j)+0.5)*width
		}

		nt.Add(b.X, centers).Add("count", counts)
		copyConsts(nt, t)
		return nt.Done()
	})
}

// FiveNum computes a five-number summary of Y, optionally per category
// of a By column, for box geometries.
//
// The result has one row per summary with columns "min", "lower",
// "median", "upper", and "max", plus constant columns from the input
// (including By, which becomes constant within each category group).
// NaN samples are ignored.
type FiveNum struct {
	// Y is the name of the numeric column to summarize.
	Y string

	// By optionally names a category column; each category gets its
	// own summary row in its own group.
	By string
}

func (f FiveNum) F(g table.Grouping) table.Grouping {
	if f.By != "" {
		g = table.GroupBy(g, f.By)
	}
	return table.MapTables(g, func(_ table.GroupID, t *table.Table) *table.Table {
		var ys []float64
		slice.Convert(&ys, t.MustColumn(f.Y))
		ys, _ = dropNaN(ys, nil)

		nt := new(table.Builder)
		if len(ys) == 0 {
			for _, col := range []string{"min", "lower", "median", "upper", "max"} {
				nt.Add(col, []float64{})
			}
			copyConsts(nt, t)
			return nt.Done()
		}

		s := stats.Sample{Xs: ys}
		min, max := s.Bounds()
		nt.Add("min", []float64{min}).
			Add("lower", []float64{s.Quantile(0.25)}).
			Add("median", []float64{s.Quantile(0.5)}).
			Add("upper", []float64{s.Quantile(0.75)}).
			Add("max", []float64{max})
		copyConsts(nt, t)
		return nt.Done()
	})
}

// dropNaN filters NaN samples out of xs, keeping ws aligned when it is
// non-nil.
func dropNaN(xs, ws []float64) ([]float64, []float64) {
	clean := true
	for _, x := range xs {
		if math.IsNaN(x) {
			clean = false
			break
		}
	}
	if clean {
		return xs, ws
	}
	var oxs, ows []float64
	for i, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		oxs = append(oxs, x)
		if ws != nil {
			ows = append(ows, ws[i])
		}
	}
	if ws == nil {
		return oxs, nil
	}
	return oxs, ows
}

// copyConsts copies constant columns of t into nt, skipping columns nt
// already has.
func copyConsts(nt *table.Builder, t *table.Table) {
	for _, col := range t.Columns() {
		if nt.Has(col) {
			continue
		}
		if cv, ok := t.Const(col); ok {
			nt.AddConst(col, cv)
		}
	}
}
