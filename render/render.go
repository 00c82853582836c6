// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render draws composed plots as SVG or PNG documents.
//
// Every entry point validates its plot before emitting a single byte:
// the plot's composition error is checked, channels are resolved, and
// layer statistics run, all against an in-memory buffer that is
// flushed whole. A plot error therefore never leaves a truncated
// document behind.
//
// Plots whose layers are all points, lines, areas, or densities lower
// to the go-gg rendering pipeline. Everything else (bars, boxes,
// violins, spans, text, shaped points) goes through the svgo mark
// emitter in this package.
package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"

	"github.com/gvplot/gvplot"
	"github.com/gvplot/gvplot/gvstat"
	"github.com/gvplot/gvplot/vartab"
)

// SVG renders p as a complete SVG document of the given pixel size.
// Nothing is written to w unless the plot validates and renders.
func SVG(w io.Writer, p *gvplot.Plot, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("render: bad dimensions %dx%d", width, height)
	}
	f, err := prepare(p)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if f.ggable() {
		err = writeGG(&buf, f, width, height)
	} else {
		err = writeSVG(&buf, f, width, height)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// A Panel is one cell of a plot's facet grid. An unfaceted plot has a
// single panel at (0, 0) with empty labels.
type Panel struct {
	// Row and Col locate the panel in the grid.
	Row, Col int
	// RowLabel and ColLabel are the facet levels this panel shows.
	// A wrapped facet fills only the label of its grouping column's
	// side.
	RowLabel, ColLabel string
	// Data is the subset of the plot's dataset that falls in this
	// panel. It is nil for a grid cell no rows fall in.
	Data table.Grouping
}

// Panels validates p and splits its dataset into facet panels. Facet
// assignment follows row values only; Facet.Order changes panel
// order, never membership.
func Panels(p *gvplot.Plot) ([]Panel, error) {
	if err := p.Err(); err != nil {
		return nil, err
	}
	if _, err := p.Resolve(); err != nil {
		return nil, err
	}
	facet, ok := p.FacetSpec()
	return panelsOf(p.Data(), facet, ok)
}

func panelsOf(data table.Grouping, facet gvplot.Facet, faceted bool) ([]Panel, error) {
	if !faceted {
		return []Panel{{Data: data}}, nil
	}

	g := data
	for _, col := range facet.Columns() {
		g = table.GroupBy(g, col)
	}

	if facet.Wrap {
		col := facet.Columns()[0]
		levels, err := vartab.Levels(data, col)
		if err != nil {
			return nil, err
		}
		levels = orderLevels(levels, facet.Order)
		ncols := facet.Cols
		if ncols <= 0 {
			ncols = 1
			for ncols*ncols < len(levels) {
				ncols++
			}
		}
		panels := make([]Panel, len(levels))
		for i, lv := range levels {
			panels[i] = Panel{Row: i / ncols, Col: i % ncols}
			if facet.Row != "" {
				panels[i].RowLabel = lv
			} else {
				panels[i].ColLabel = lv
			}
		}
		for _, gid := range g.Tables() {
			t := g.Table(gid)
			lv, err := leafLevel(t, col)
			if err != nil {
				return nil, err
			}
			for i := range panels {
				if levels[i] == lv {
					panels[i].Data = concatPanel(panels[i].Data, t)
				}
			}
		}
		return panels, nil
	}

	rows, cols := []string{""}, []string{""}
	if facet.Row != "" {
		levels, err := vartab.Levels(data, facet.Row)
		if err != nil {
			return nil, err
		}
		rows = orderLevels(levels, facet.Order)
	}
	if facet.Col != "" {
		levels, err := vartab.Levels(data, facet.Col)
		if err != nil {
			return nil, err
		}
		cols = orderLevels(levels, facet.Order)
	}

	panels := make([]Panel, 0, len(rows)*len(cols))
	for ri, rv := range rows {
		for ci, cv := range cols {
			panels = append(panels, Panel{Row: ri, Col: ci, RowLabel: rv, ColLabel: cv})
		}
	}
	for _, gid := range g.Tables() {
		t := g.Table(gid)
		rv, cv := "", ""
		var err error
		if facet.Row != "" {
			if rv, err = leafLevel(t, facet.Row); err != nil {
				return nil, err
			}
		}
		if facet.Col != "" {
			if cv, err = leafLevel(t, facet.Col); err != nil {
				return nil, err
			}
		}
		for i := range panels {
			if panels[i].RowLabel == rv && panels[i].ColLabel == cv {
				panels[i].Data = concatPanel(panels[i].Data, t)
			}
		}
	}
	return panels, nil
}

// leafLevel returns the facet level of a grouped-out leaf table,
// formatted exactly the way Levels formats it.
func leafLevel(t *table.Table, col string) (string, error) {
	vs, err := vartab.ColumnStrings(t, col)
	if err != nil {
		return "", err
	}
	if len(vs) == 0 {
		return "", nil
	}
	return vs[0], nil
}

func concatPanel(have table.Grouping, t *table.Table) table.Grouping {
	if have == nil {
		return t
	}
	return table.Concat(have, t)
}

// orderLevels moves the levels named by order to the front, keeping
// data order for the rest. Ordered levels absent from the data are
// dropped.
func orderLevels(levels, order []string) []string {
	if len(order) == 0 {
		return levels
	}
	have := make(map[string]bool, len(levels))
	for _, lv := range levels {
		have[lv] = true
	}
	taken := make(map[string]bool, len(order))
	out := make([]string, 0, len(levels))
	for _, lv := range order {
		if have[lv] && !taken[lv] {
			out = append(out, lv)
			taken[lv] = true
		}
	}
	for _, lv := range levels {
		if !taken[lv] {
			out = append(out, lv)
		}
	}
	return out
}

// A frame is a validated plot with statistics applied, ready for
// either backend to draw.
type frame struct {
	plot  *gvplot.Plot
	theme gvplot.Theme

	facet   gvplot.Facet
	faceted bool
	panels  []Panel

	layers []layerData
}

// layerData is one layer after grouping and statistics: data holds
// the post-stat grouping, m the post-stat channel bindings, and m0
// the bindings as resolved on the raw data.
type layerData struct {
	layer  gvplot.Layer
	m0, m  gvplot.Mapping
	data   table.Grouping
	levels map[gvplot.Channel][]string

	// Continuous color domain when color or fill binds a numeric
	// column.
	colorCol           string
	colorMin, colorMax float64
}

var groupChannels = []gvplot.Channel{gvplot.Color, gvplot.Fill, gvplot.Shape, gvplot.Group}

func prepare(p *gvplot.Plot) (*frame, error) {
	if err := p.Err(); err != nil {
		return nil, err
	}
	ms, err := p.Resolve()
	if err != nil {
		return nil, err
	}

	f := &frame{plot: p, theme: normTheme(p.ThemeSpec())}
	f.facet, f.faceted = p.FacetSpec()

	for i, l := range p.Layers() {
		data := l.Data
		if data == nil {
			data = p.Data()
		}
		m := ms[i]

		// Group by facet columns and discrete aesthetics so that
		// statistics run per panel and per visual group, and so the
		// grouping columns survive the stats as constants.
		grouped := map[string]bool{}
		if f.faceted {
			for _, col := range f.facet.Columns() {
				if hasColumn(data, col) && !grouped[col] {
					data = table.GroupBy(data, col)
					grouped[col] = true
				}
			}
		}
		for _, ch := range groupChannels {
			col, ok := m[ch]
			if ok && discrete(data, col) && !grouped[col] {
				data = table.GroupBy(data, col)
				grouped[col] = true
			}
		}

		data, m = applyStat(l, m, data)

		ld := layerData{layer: l, m0: ms[i], m: m, data: data}
		ld.levels = make(map[gvplot.Channel][]string)
		for _, ch := range groupChannels {
			col, ok := m[ch]
			if !ok {
				continue
			}
			if discrete(data, col) {
				levels, err := vartab.Levels(data, col)
				if err != nil {
					return nil, err
				}
				ld.levels[ch] = levels
			} else if ch == gvplot.Color || ch == gvplot.Fill {
				ld.colorCol = col
				ld.colorMin, ld.colorMax = columnBounds(data, col)
			}
		}
		f.layers = append(f.layers, ld)
	}

	f.panels, err = panelsOf(p.Data(), f.facet, f.faceted)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// applyStat runs the layer's statistic and rebinds y to the derived
// column.
func applyStat(l gvplot.Layer, m gvplot.Mapping, data table.Grouping) (table.Grouping, gvplot.Mapping) {
	switch l.EffectiveStat() {
	case gvplot.StatCount:
		out := gvstat.Count{X: m[gvplot.X]}.F(data)
		return out, rebindY(m, "count")
	case gvplot.StatBin:
		out := gvstat.Bin{X: m[gvplot.X], Bins: l.Params.Bins}.F(data)
		return out, rebindY(m, "count")
	case gvplot.StatDensity:
		out := ggstat.Density{X: m[gvplot.X]}.F(data)
		return out, rebindY(m, "probability density")
	}
	return data, m
}

func rebindY(m gvplot.Mapping, col string) gvplot.Mapping {
	out := make(gvplot.Mapping, len(m)+1)
	for ch, c := range m {
		out[ch] = c
	}
	out[gvplot.Y] = col
	return out
}

// ggable reports whether every layer lowers to the go-gg backend:
// point, line, area, and density geometries, identity or density
// statistics, and no xend or shape bindings.
func (f *frame) ggable() bool {
	for _, ld := range f.layers {
		switch ld.layer.Geom {
		case gvplot.GeomPoint, gvplot.GeomLine, gvplot.GeomArea, gvplot.GeomDensity:
		default:
			return false
		}
		switch ld.layer.EffectiveStat() {
		case gvplot.StatIdentity, gvplot.StatDensity:
		default:
			return false
		}
		if _, ok := ld.m0[gvplot.XEnd]; ok {
			return false
		}
		if _, ok := ld.m0[gvplot.Shape]; ok {
			return false
		}
	}
	return true
}

// normTheme fills zero-value theme fields from the default theme so
// drawing code never branches on unset parameters.
func normTheme(t gvplot.Theme) gvplot.Theme {
	d := gvplot.DefaultTheme()
	if t.Palette == nil {
		t.Palette = d.Palette
	}
	if t.Colors == nil {
		t.Colors = d.Colors
	}
	if t.PointSize == 0 {
		t.PointSize = d.PointSize
	}
	if t.LineWidth == 0 {
		t.LineWidth = d.LineWidth
	}
	if t.FontSize == 0 {
		t.FontSize = d.FontSize
	}
	if t.BarWidth == 0 {
		t.BarWidth = d.BarWidth
	}
	if t.Background == nil {
		t.Background = d.Background
	}
	return t
}

func hasColumn(g table.Grouping, col string) bool {
	for _, c := range g.Columns() {
		if c == col {
			return true
		}
	}
	return false
}

// discrete reports whether col holds categorical values. Numeric
// columns scale linearly; everything else gets a band per level.
func discrete(g table.Grouping, col string) bool {
	tabs := g.Tables()
	if len(tabs) == 0 {
		return false
	}
	switch g.Table(tabs[0]).Column(col).(type) {
	case []float64, []int64, []int:
		return false
	}
	return true
}

// floats returns col converted to float64s.
func floats(t *table.Table, col string) []float64 {
	var xs []float64
	slice.Convert(&xs, t.MustColumn(col))
	return xs
}

func columnBounds(g table.Grouping, col string) (min, max float64) {
	first := true
	for _, gid := range g.Tables() {
		for _, v := range floats(g.Table(gid), col) {
			if v != v {
				continue
			}
			if first || v < min {
				min = v
			}
			if first || v > max {
				max = v
			}
			first = false
		}
	}
	return min, max
}
