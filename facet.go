// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gvplot

// A Facet splits a plot into small multiples by one or two grouping
// columns. With both Row and Col set, panels form a grid with one row
// per Row level and one column per Col level. With Wrap set, the
// single grouping column's panels are laid out in reading order.
//
// Composing a Facet replaces any previous facet wholesale. Facet
// assignment depends only on row values; Order changes the order
// panels are displayed in, never which rows belong to which panel.
type Facet struct {
	// Row and Col name the grouping columns. At least one must be
	// set.
	Row string
	Col string

	// Wrap lays panels out in reading order instead of a grid. It
	// requires exactly one grouping column.
	Wrap bool
	// Cols caps the number of panel columns when wrapping; 0 picks
	// a near-square layout.
	Cols int

	// Order lists grouping levels in display order. Levels not
	// listed follow in data order. Levels listed but absent from the
	// data are ignored.
	Order []string
}

func (Facet) component() {}

func (f Facet) validate() error {
	if f.Row == "" && f.Col == "" {
		return &InvalidComponentError{Reason: "facet names no grouping column"}
	}
	if f.Wrap && f.Row != "" && f.Col != "" {
		return &InvalidComponentError{Reason: "wrapped facet takes a single grouping column"}
	}
	if f.Cols < 0 {
		return &InvalidComponentError{Reason: "negative facet column count"}
	}
	return nil
}

// Columns returns the facet's grouping columns, row first.
func (f Facet) Columns() []string {
	var cols []string
	if f.Row != "" {
		cols = append(cols, f.Row)
	}
	if f.Col != "" {
		cols = append(cols, f.Col)
	}
	return cols
}
