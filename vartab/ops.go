// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vartab

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/aclements/go-gg/table"

	"github.com/gvplot/gvplot"
	"github.com/gvplot/gvplot/genome"
)

// The operations below derive new datasets; the input is never
// modified. Column references are validated up front so an absent
// column surfaces as a gvplot.ColumnNotFoundError instead of a panic
// from the table layer.

// Filter returns the rows for which f returns true. f is called with
// one argument per named column, in order, and its parameter types
// must match the column types.
func Filter(g table.Grouping, f interface{}, cols ...string) (table.Grouping, error) {
	for _, col := range cols {
		if err := checkColumn(g, col); err != nil {
			return nil, err
		}
	}
	return table.Filter(g, f, cols...), nil
}

// FilterIn returns the rows whose col value, formatted as a string,
// is one of values. It works on string, integer, and float columns.
func FilterIn(g table.Grouping, col string, values ...string) (table.Grouping, error) {
	if err := checkColumn(g, col); err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	switch colType(g, col).(type) {
	case []string:
		return table.Filter(g, func(v string) bool { return set[v] }, col), nil
	case []int64:
		return table.Filter(g, func(v int64) bool { return set[strconv.FormatInt(v, 10)] }, col), nil
	case []int:
		return table.Filter(g, func(v int) bool { return set[strconv.Itoa(v)] }, col), nil
	case []float64:
		return table.Filter(g, func(v float64) bool { return set[formatFloat(v)] }, col), nil
	}
	return nil, fmt.Errorf("cannot filter column %q of type %T", col, colType(g, col))
}

// Select returns a dataset with only the named columns, in the given
// order.
func Select(g table.Grouping, cols ...string) (table.Grouping, error) {
	for _, col := range cols {
		if err := checkColumn(g, col); err != nil {
			return nil, err
		}
	}
	return table.MapTables(g, func(_ table.GroupID, t *table.Table) *table.Table {
		b := new(table.Builder)
		for _, col := range cols {
			b.Add(col, t.Column(col))
		}
		return b.Done()
	}), nil
}

// Mutate appends column out computed row by row from the named
// columns. f follows the table.MapCols contract: one slice parameter
// per input column followed by one pre-allocated output slice
// parameter that f fills in.
func Mutate(g table.Grouping, out string, f interface{}, cols ...string) (table.Grouping, error) {
	for _, col := range cols {
		if err := checkColumn(g, col); err != nil {
			return nil, err
		}
	}
	return table.MapCols(g, f, cols...)(out), nil
}

// Levels returns the distinct values of col formatted as strings, in
// first-appearance order.
func Levels(g table.Grouping, col string) ([]string, error) {
	if err := checkColumn(g, col); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var levels []string
	for _, gid := range g.Tables() {
		for _, s := range columnStrings(g.Table(gid), col) {
			if !seen[s] {
				seen[s] = true
				levels = append(levels, s)
			}
		}
	}
	return levels, nil
}

// ChromLevels returns the distinct values of a chromosome column in
// karyotype order: "1".."22" numerically, then "X", "Y", and the
// mitochondrial contig. Handing the result to a Facet's Order or a
// categorical axis reorders display only; row-to-panel assignment is
// unaffected.
func ChromLevels(g table.Grouping, col string) ([]string, error) {
	levels, err := Levels(g, col)
	if err != nil {
		return nil, err
	}
	genome.SortChroms(levels)
	return levels, nil
}

// ColumnStrings returns col's values formatted as strings, ungrouped,
// in row order.
func ColumnStrings(g table.Grouping, col string) ([]string, error) {
	if err := checkColumn(g, col); err != nil {
		return nil, err
	}
	var out []string
	for _, gid := range g.Tables() {
		out = append(out, columnStrings(g.Table(gid), col)...)
	}
	return out, nil
}

func columnStrings(t *table.Table, col string) []string {
	switch vs := t.Column(col).(type) {
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
	case []float64:
		out := make([]string, len(vs))
		for i, v := range vs {
			out[i] = formatFloat(v)
		}
		return out
	default:
		out := make([]string, t.Len())
		for i := range out {
			out[i] = fmt.Sprint(reflectIndex(vs, i))
		}
		return out
	}
}

func reflectIndex(s table.Slice, i int) interface{} {
	return reflect.ValueOf(s).Index(i).Interface()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func checkColumn(g table.Grouping, col string) error {
	if g == nil || len(g.Tables()) == 0 {
		return nil
	}
	cols := g.Columns()
	for _, c := range cols {
		if c == col {
			return nil
		}
	}
	return &gvplot.ColumnNotFoundError{Column: col, Columns: cols}
}

func colType(g table.Grouping, col string) table.Slice {
	for _, gid := range g.Tables() {
		return g.Table(gid).Column(col)
	}
	return nil
}
