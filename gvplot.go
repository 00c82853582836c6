// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gvplot composes grammar-of-graphics plot specifications for
// genomic variant data.
//
// A Plot bundles a dataset (a go-gg table.Grouping), an aesthetic
// Mapping from visual channels to column names, an ordered sequence of
// Layers, and optional Facet and Theme components. Plots are built by
// additive composition:
//
//	p := gvplot.New(tab, gvplot.Mapping{gvplot.X: "Start", gvplot.Y: "DP"}).
//		Add(gvplot.Layer{Geom: gvplot.GeomPoint},
//			gvplot.Facet{Col: "Chr"})
//	if err := p.Err(); err != nil {
//		...
//	}
//
// Composition is order preserving: layers render back to front in the
// order they were added. Facet and Theme components replace their slot
// wholesale, while Mapping components merge channel by channel with
// later values winning. Compose reports errors at the point of
// composition; Add defers them to Err, which renderers check before
// producing any output.
//
// A Plot is only a specification. The render package lowers it to SVG
// or PNG, and the autoplot package builds default specifications from
// common genomic inputs.
package gvplot

import (
	"fmt"

	"github.com/aclements/go-gg/table"
)

// A Component is a value that can be composed into a Plot: a Layer, a
// Facet, a Theme, or a Mapping.
type Component interface {
	component()
}

// A Plot is a composed, renderable plot specification.
type Plot struct {
	data    table.Grouping
	mapping Mapping
	layers  []Layer
	facet   *Facet
	theme   Theme
	err     error
}

// New returns a Plot over data with the given plot-level mapping. The
// mapping may be nil. Columns named by the mapping must exist in data;
// a missing column is recorded as a ColumnNotFoundError, reported by
// Err and by any later composition.
func New(data table.Grouping, m Mapping) *Plot {
	p := &Plot{data: data, theme: DefaultTheme()}
	if err := m.validate(); err != nil {
		p.err = err
		return p
	}
	if err := checkColumns(data, m); err != nil {
		p.err = err
		return p
	}
	p.mapping = m.clone()
	return p
}

// Compose combines one component into the plot. Layers append to the
// layer sequence, Facet and Theme replace their slot, and Mapping
// merges into the plot mapping with the new bindings winning per
// channel. Compose fails with an InvalidComponentError for nil or
// malformed components and with a ColumnNotFoundError when a component
// names a column absent from its dataset. Once any composition has
// failed, the plot is poisoned and Compose keeps returning the first
// error.
func (p *Plot) Compose(c Component) error {
	if p.err != nil {
		return p.err
	}
	if c == nil {
		return &InvalidComponentError{Reason: "nil component"}
	}
	switch c := c.(type) {
	case Layer:
		if err := p.checkLayer(c); err != nil {
			return err
		}
		p.layers = append(p.layers, c)
	case Facet:
		if err := c.validate(); err != nil {
			return err
		}
		if err := p.checkFacet(c); err != nil {
			return err
		}
		f := c
		p.facet = &f
	case Theme:
		p.theme = c
	case Mapping:
		if err := c.validate(); err != nil {
			return err
		}
		if err := checkColumns(p.data, c); err != nil {
			return err
		}
		p.mapping = p.mapping.merge(c)
	default:
		return &InvalidComponentError{Reason: fmt.Sprintf("unrecognized component type %T", c)}
	}
	return nil
}

// Add composes the given components in order, recording the first
// error for Err, and returns p for chaining.
func (p *Plot) Add(cs ...Component) *Plot {
	for _, c := range cs {
		if err := p.Compose(c); err != nil {
			if p.err == nil {
				p.err = err
			}
			break
		}
	}
	return p
}

// Err returns the first error encountered while composing the plot, or
// nil.
func (p *Plot) Err() error {
	return p.err
}

// Data returns the plot's dataset.
func (p *Plot) Data() table.Grouping {
	return p.data
}

// Mapping returns a copy of the plot-level aesthetic mapping.
func (p *Plot) Mapping() Mapping {
	return p.mapping.clone()
}

// Layers returns the plot's layers in composition order. Mutating the
// returned slice does not affect the plot.
func (p *Plot) Layers() []Layer {
	return append([]Layer(nil), p.layers...)
}

// FacetSpec returns the plot's facet specification, if one has been
// composed.
func (p *Plot) FacetSpec() (Facet, bool) {
	if p.facet == nil {
		return Facet{}, false
	}
	return *p.facet, true
}

// ThemeSpec returns the plot's theme.
func (p *Plot) ThemeSpec() Theme {
	return p.theme
}

func (p *Plot) checkLayer(l Layer) error {
	if err := l.validate(); err != nil {
		return err
	}
	data := l.Data
	if data == nil {
		data = p.data
	}
	return checkColumns(data, l.Mapping)
}

func (p *Plot) checkFacet(f Facet) error {
	for _, col := range []string{f.Row, f.Col} {
		if col == "" {
			continue
		}
		if err := checkColumn(p.data, col); err != nil {
			return err
		}
	}
	return nil
}

// checkColumns verifies every column named by m exists in data.
// Channels are checked in canonical order so the reported column is
// deterministic. An empty dataset is vacuously valid.
func checkColumns(data table.Grouping, m Mapping) error {
	if data == nil || len(data.Tables()) == 0 {
		return nil
	}
	for _, ch := range channelOrder {
		col, ok := m[ch]
		if !ok {
			continue
		}
		if err := checkColumn(data, col); err != nil {
			return err
		}
	}
	return nil
}

func checkColumn(data table.Grouping, col string) error {
	if data == nil || len(data.Tables()) == 0 {
		return nil
	}
	cols := data.Columns()
	for _, c := range cols {
		if c == col {
			return nil
		}
	}
	return &ColumnNotFoundError{Column: col, Columns: cols}
}
