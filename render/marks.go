// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"

	"github.com/gvplot/gvplot"
	"github.com/gvplot/gvplot/gvstat"
	"github.com/gvplot/gvplot/vartab"
)

// Primitive kinds. Marks are lowered to these in data coordinates,
// the axes are sized from them, and only then are they mapped to
// pixels, so extents and drawing can never disagree.
const (
	opPoint = iota
	opPath
	opPoly
	opRect
	opText
)

type prim struct {
	op int

	// Vertices for opPoint (one), opPath, and opPoly.
	xs, ys []float64

	// opRect bounds. fullY spans the whole panel height instead of
	// y0..y1.
	x0, x1, y0, y1 float64
	fullY          bool

	label string
	// shape indexes the marker table for opPoint.
	shape int
	// size is the marker radius or text size in pixels.
	size float64

	stroke, fill color.Color
	strokeW      float64
	alpha        float64
}

// assemble builds primitives for every panel and layer and sizes the
// axes from them. Callers may pass preset axes (track lanes share a
// pinned genomic x axis); nil axes start empty.
func (f *frame) assemble(xa, ya *axis) ([][][]prim, *axis, *axis, error) {
	if xa == nil {
		xa = &axis{}
	}
	if ya == nil {
		ya = &axis{}
	}
	prims := make([][][]prim, len(f.panels))
	for pi, pn := range f.panels {
		prims[pi] = make([][]prim, len(f.layers))
		for li := range f.layers {
			ld := &f.layers[li]
			ps, err := f.buildLayer(ld, f.panelLeaves(ld, pn), xa, ya)
			if err != nil {
				return nil, nil, nil, err
			}
			prims[pi][li] = ps
		}
	}
	return prims, xa, ya, nil
}

// panelLeaves returns the layer's leaf tables that belong in a panel.
// A layer whose dataset lacks the facet columns repeats in every
// panel.
func (f *frame) panelLeaves(ld *layerData, pn Panel) []*table.Table {
	var out []*table.Table
	for _, gid := range ld.data.Tables() {
		t := ld.data.Table(gid)
		if t.Len() == 0 {
			continue
		}
		if f.faceted && !f.leafInPanel(t, pn) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (f *frame) leafInPanel(t *table.Table, pn Panel) bool {
	if f.facet.Row != "" && tableHasColumn(t, f.facet.Row) {
		lv, err := leafLevel(t, f.facet.Row)
		if err != nil || lv != pn.RowLabel {
			return false
		}
	}
	if f.facet.Col != "" && tableHasColumn(t, f.facet.Col) {
		lv, err := leafLevel(t, f.facet.Col)
		if err != nil || lv != pn.ColLabel {
			return false
		}
	}
	return true
}

func tableHasColumn(t *table.Table, col string) bool {
	for _, c := range t.Columns() {
		if c == col {
			return true
		}
	}
	return false
}

func (f *frame) buildLayer(ld *layerData, leaves []*table.Table, xa, ya *axis) ([]prim, error) {
	switch ld.layer.Geom {
	case gvplot.GeomPoint:
		return f.buildPoints(ld, leaves, xa, ya)
	case gvplot.GeomLine, gvplot.GeomDensity:
		return f.buildLines(ld, leaves, xa, ya)
	case gvplot.GeomArea:
		return f.buildArea(ld, leaves, xa, ya)
	case gvplot.GeomBar:
		return f.buildBars(ld, leaves, xa, ya)
	case gvplot.GeomBox:
		return f.buildBoxes(ld, leaves, xa, ya)
	case gvplot.GeomViolin:
		return f.buildViolins(ld, leaves, xa, ya)
	case gvplot.GeomRect:
		return f.buildRects(ld, leaves, xa, ya)
	case gvplot.GeomText:
		return f.buildTexts(ld, leaves, xa, ya)
	}
	return nil, fmt.Errorf("render: geometry %v has no mark emitter", ld.layer.Geom)
}

// xKind fixes the x axis kind for a layer. Boxes and violins always
// get a band per category; other geometries follow the column type.
func (f *frame) xKind(ld *layerData, xa *axis) error {
	switch ld.layer.Geom {
	case gvplot.GeomBox, gvplot.GeomViolin:
		return xa.wantBand()
	}
	if col, ok := ld.m[gvplot.X]; ok && discrete(ld.data, col) {
		return xa.wantBand()
	}
	return xa.wantLinear()
}

// xValues returns per-row x positions in axis space, registering band
// levels and expanding linear extents.
func xValues(ld *layerData, t *table.Table, xa *axis) ([]float64, error) {
	col := ld.m[gvplot.X]
	if xa.band {
		vs, err := vartab.ColumnStrings(t, col)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(vs))
		for i, v := range vs {
			out[i] = xa.level(v)
		}
		return out, nil
	}
	out := floats(t, col)
	xa.expand(out...)
	return out, nil
}

func (f *frame) yFloats(ld *layerData, t *table.Table, ya *axis) ([]float64, error) {
	col := ld.m[gvplot.Y]
	if discrete(ld.data, col) {
		return nil, fmt.Errorf("render: discrete y binding %q is not supported", col)
	}
	if err := ya.wantLinear(); err != nil {
		return nil, err
	}
	ys := floats(t, col)
	ya.expand(ys...)
	return ys, nil
}

// leafColor returns the categorical color for a leaf's level of a
// grouped aesthetic channel.
func (f *frame) leafColor(ld *layerData, t *table.Table, ch gvplot.Channel) (color.Color, bool) {
	levels, ok := ld.levels[ch]
	if !ok {
		return nil, false
	}
	lv, err := leafLevel(t, ld.m[ch])
	if err != nil {
		return nil, false
	}
	return f.theme.CategoryColor(indexOf(levels, lv)), true
}

func (f *frame) strokeOf(ld *layerData, t *table.Table) color.Color {
	if c, ok := f.leafColor(ld, t, gvplot.Color); ok {
		return c
	}
	if ld.layer.Params.Color != nil {
		return ld.layer.Params.Color
	}
	return color.RGBA{0x22, 0x22, 0x22, 0xff}
}

func (f *frame) fillOf(ld *layerData, t *table.Table) color.Color {
	if c, ok := f.leafColor(ld, t, gvplot.Fill); ok {
		return c
	}
	if c, ok := f.leafColor(ld, t, gvplot.Color); ok {
		return c
	}
	if ld.layer.Params.Fill != nil {
		return ld.layer.Params.Fill
	}
	return f.theme.CategoryColor(0)
}

func (f *frame) buildPoints(ld *layerData, leaves []*table.Table, xa, ya *axis) ([]prim, error) {
	if err := f.xKind(ld, xa); err != nil {
		return nil, err
	}
	var prims []prim
	for _, t := range leaves {
		xs, err := xValues(ld, t, xa)
		if err != nil {
			return nil, err
		}
		ys, err := f.yFloats(ld, t, ya)
		if err != nil {
			return nil, err
		}

		var cvs []float64
		if ld.colorCol != "" {
			cvs = floats(t, ld.colorCol)
		}
		shape := 0
		if _, ok := ld.levels[gvplot.Shape]; ok {
			lv, err := leafLevel(t, ld.m[gvplot.Shape])
			if err != nil {
				return nil, err
			}
			shape = indexOf(ld.levels[gvplot.Shape], lv)
		}
		var sizes []float64
		if col, ok := ld.m[gvplot.Size]; ok && !discrete(ld.data, col) {
			sizes = floats(t, col)
		}
		radius := f.theme.PointSize
		if ld.layer.Params.Size > 0 {
			radius = ld.layer.Params.Size
		}
		base := f.strokeOf(ld, t)
		if c, ok := f.leafColor(ld, t, gvplot.Fill); ok {
			base = c
		}

		jitter := ld.layer.Position == gvplot.PositionJitter && xa.band
		amp := 0.35
		if ld.layer.Params.Width > 0 {
			amp = ld.layer.Params.Width / 2
		}
		for i := range xs {
			x, y := xs[i], ys[i]
			if math.IsNaN(x) || math.IsNaN(y) {
				continue
			}
			if jitter {
				// Deterministic spread; renders the same on
				// every run.
				x += amp * (float64((i*5)%9)/8 - 0.5) * 2
			}
			c := base
			if cvs != nil {
				c = f.rampColor(ld, cvs[i])
			}
			r := radius
			if sizes != nil && !math.IsNaN(sizes[i]) {
				r = sizes[i]
			}
			prims = append(prims, prim{
				op: opPoint, xs: []float64{x}, ys: []float64{y},
				shape: shape, size: r, fill: c,
				alpha: ld.layer.Params.Alpha,
			})
		}
	}
	return prims, nil
}

// rampColor maps a value through the theme's continuous palette over
// the layer's color domain.
func (f *frame) rampColor(ld *layerData, v float64) color.Color {
	u := 0.5
	if ld.colorMax > ld.colorMin {
		u = (v - ld.colorMin) / (ld.colorMax - ld.colorMin)
	}
	if u < 0 {
		u = 0
	} else if u > 1 {
		u = 1
	}
	return f.theme.Palette.Map(u)
}

func (f *frame) buildLines(ld *layerData, leaves []*table.Table, xa, ya *axis) ([]prim, error) {
	if err := f.xKind(ld, xa); err != nil {
		return nil, err
	}
	width := f.theme.LineWidth
	if ld.layer.Params.Size > 0 {
		width = ld.layer.Params.Size
	}
	var prims []prim
	for _, t := range leaves {
		xs, err := xValues(ld, t, xa)
		if err != nil {
			return nil, err
		}
		ys, err := f.yFloats(ld, t, ya)
		if err != nil {
			return nil, err
		}
		xs, ys = sortByX(xs, ys)
		prims = append(prims, prim{
			op: opPath, xs: xs, ys: ys,
			stroke: f.strokeOf(ld, t), strokeW: width,
			alpha: ld.layer.Params.Alpha,
		})
	}
	return prims, nil
}

func (f *frame) buildArea(ld *layerData, leaves []*table.Table, xa, ya *axis) ([]prim, error) {
	if err := f.xKind(ld, xa); err != nil {
		return nil, err
	}
	var prims []prim
	for _, t := range leaves {
		xs, err := xValues(ld, t, xa)
		if err != nil {
			return nil, err
		}
		upper, err := f.yFloats(ld, t, ya)
		if err != nil {
			return nil, err
		}
		lower := make([]float64, len(upper))
		if col, ok := ld.m[gvplot.YEnd]; ok {
			lower = floats(t, col)
		}
		ya.expand(lower...)

		xs, upper, lower = sortByX3(xs, upper, lower)
		var px, py []float64
		for i := range xs {
			if math.IsNaN(xs[i]) || math.IsNaN(upper[i]) || math.IsNaN(lower[i]) {
				continue
			}
			px = append(px, xs[i])
			py = append(py, upper[i])
		}
		for i := len(xs) - 1; i >= 0; i-- {
			if math.IsNaN(xs[i]) || math.IsNaN(upper[i]) || math.IsNaN(lower[i]) {
				continue
			}
			px = append(px, xs[i])
			py = append(py, lower[i])
		}
		if len(px) < 3 {
			continue
		}
		prims = append(prims, prim{
			op: opPoly, xs: px, ys: py,
			fill: f.fillOf(ld, t), alpha: ld.layer.Params.Alpha,
		})
	}
	return prims, nil
}

func (f *frame) buildBars(ld *layerData, leaves []*table.Table, xa, ya *axis) ([]prim, error) {
	if err := f.xKind(ld, xa); err != nil {
		return nil, err
	}
	if err := ya.wantLinear(); err != nil {
		return nil, err
	}
	// Bars always grow from a zero baseline.
	ya.expand(0)

	slotW := 1.0
	if !xa.band {
		var all []float64
		for _, t := range leaves {
			all = append(all, floats(t, ld.m[gvplot.X])...)
		}
		slotW = minSpacing(all)
	}
	width := slotW * f.theme.BarWidth
	if ld.layer.Params.Width > 0 {
		width = slotW * ld.layer.Params.Width
	}

	dodgeCh := gvplot.Fill
	if _, ok := ld.levels[dodgeCh]; !ok {
		dodgeCh = gvplot.Color
	}
	dodgeLevels := ld.levels[dodgeCh]

	cum := make(map[float64]float64)
	var prims []prim
	for _, t := range leaves {
		xs, err := xValues(ld, t, xa)
		if err != nil {
			return nil, err
		}
		ys, err := f.yFloats(ld, t, ya)
		if err != nil {
			return nil, err
		}
		fill := f.fillOf(ld, t)

		sub, nsub := 0, 1
		if ld.layer.Position == gvplot.PositionDodge && len(dodgeLevels) > 0 {
			lv, err := leafLevel(t, ld.m[dodgeCh])
			if err != nil {
				return nil, err
			}
			sub, nsub = indexOf(dodgeLevels, lv), len(dodgeLevels)
		}

		for i := range xs {
			if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
				continue
			}
			x0, x1 := xs[i]-width/2, xs[i]+width/2
			if nsub > 1 {
				sw := width / float64(nsub)
				x0 = xs[i] - width/2 + sw*float64(sub)
				x1 = x0 + sw
			}
			y0, y1 := 0.0, ys[i]
			if ld.layer.Position == gvplot.PositionStack {
				y0 = cum[xs[i]]
				y1 = y0 + ys[i]
				cum[xs[i]] = y1
			}
			if !xa.band {
				xa.expand(x0, x1)
			}
			ya.expand(y1)
			prims = append(prims, prim{
				op: opRect, x0: x0, x1: x1, y0: y0, y1: y1,
				fill: fill, alpha: ld.layer.Params.Alpha,
			})
		}
	}
	return prims, nil
}

func (f *frame) buildBoxes(ld *layerData, leaves []*table.Table, xa, ya *axis) ([]prim, error) {
	if err := xa.wantBand(); err != nil {
		return nil, err
	}
	if err := ya.wantLinear(); err != nil {
		return nil, err
	}
	byCol, hasX := ld.m[gvplot.X]
	hw := 0.375 * f.theme.BarWidth
	if ld.layer.Params.Width > 0 {
		hw = ld.layer.Params.Width / 2
	}

	var prims []prim
	for _, t := range leaves {
		five := gvstat.FiveNum{Y: ld.m[gvplot.Y], By: byCol}.F(t)
		stroke := f.strokeOf(ld, t)
		fill := ld.layer.Params.Fill
		if fill == nil {
			fill = color.White
		}
		for _, gid := range five.Tables() {
			ft := five.Table(gid)
			if ft.Len() == 0 {
				continue
			}
			mins := floats(ft, "min")
			lowers := floats(ft, "lower")
			medians := floats(ft, "median")
			uppers := floats(ft, "upper")
			maxs := floats(ft, "max")
			xc := xa.level("")
			if hasX {
				lv, err := leafLevel(ft, byCol)
				if err != nil {
					return nil, err
				}
				xc = xa.level(lv)
			}
			for i := range mins {
				if math.IsNaN(medians[i]) {
					continue
				}
				ya.expand(mins[i], maxs[i])
				lw := f.theme.LineWidth
				prims = append(prims,
					prim{op: opPath, xs: []float64{xc, xc}, ys: []float64{mins[i], lowers[i]}, stroke: stroke, strokeW: lw},
					prim{op: opPath, xs: []float64{xc, xc}, ys: []float64{uppers[i], maxs[i]}, stroke: stroke, strokeW: lw},
					prim{op: opPath, xs: []float64{xc - hw/2, xc + hw/2}, ys: []float64{mins[i], mins[i]}, stroke: stroke, strokeW: lw},
					prim{op: opPath, xs: []float64{xc - hw/2, xc + hw/2}, ys: []float64{maxs[i], maxs[i]}, stroke: stroke, strokeW: lw},
					prim{op: opRect, x0: xc - hw, x1: xc + hw, y0: lowers[i], y1: uppers[i], fill: fill, stroke: stroke, strokeW: lw, alpha: ld.layer.Params.Alpha},
					prim{op: opPath, xs: []float64{xc - hw, xc + hw}, ys: []float64{medians[i], medians[i]}, stroke: stroke, strokeW: lw * 1.5},
				)
			}
		}
	}
	return prims, nil
}

func (f *frame) buildViolins(ld *layerData, leaves []*table.Table, xa, ya *axis) ([]prim, error) {
	if err := xa.wantBand(); err != nil {
		return nil, err
	}
	if err := ya.wantLinear(); err != nil {
		return nil, err
	}
	xcol, hasX := ld.m[gvplot.X]
	hw := 0.45 * f.theme.BarWidth
	if ld.layer.Params.Width > 0 {
		hw = ld.layer.Params.Width / 2
	}

	var prims []prim
	for _, t := range leaves {
		var groups table.Grouping = t
		if hasX {
			groups = table.GroupBy(t, xcol)
		}
		stroke := f.strokeOf(ld, t)
		fill := f.fillOf(ld, t)
		for _, gid := range groups.Tables() {
			gt := groups.Table(gid)
			ys := finite(floats(gt, ld.m[gvplot.Y]))
			if len(ys) < 2 {
				continue
			}
			xc := xa.level("")
			if hasX {
				lv, err := leafLevel(gt, xcol)
				if err != nil {
					return nil, err
				}
				xc = xa.level(lv)
			}

			sample := stats.Sample{Xs: ys}
			bw := stats.BandwidthScott(sample)
			if bw <= 0 || math.IsNaN(bw) {
				continue
			}
			lo, hi := sample.Bounds()
			grid := vec.Linspace(lo-bw, hi+bw, 40)
			kde := stats.KDE{Sample: sample, Bandwidth: bw}
			dens := vec.Map(kde.PDF, grid)
			maxd := 0.0
			for _, d := range dens {
				if d > maxd {
					maxd = d
				}
			}
			if maxd <= 0 {
				continue
			}
			ya.expand(grid...)

			px := make([]float64, 0, 2*len(grid))
			py := make([]float64, 0, 2*len(grid))
			for i := range grid {
				px = append(px, xc+dens[i]/maxd*hw)
				py = append(py, grid[i])
			}
			for i := len(grid) - 1; i >= 0; i-- {
				px = append(px, xc-dens[i]/maxd*hw)
				py = append(py, grid[i])
			}
			prims = append(prims, prim{
				op: opPoly, xs: px, ys: py,
				fill: fill, stroke: stroke, strokeW: f.theme.LineWidth / 2,
				alpha: ld.layer.Params.Alpha,
			})
		}
	}
	return prims, nil
}

func (f *frame) buildRects(ld *layerData, leaves []*table.Table, xa, ya *axis) ([]prim, error) {
	if err := xa.wantLinear(); err != nil {
		return nil, err
	}
	halfH := 0.4
	if ld.layer.Params.Width > 0 {
		halfH = ld.layer.Params.Width / 2
	}
	var prims []prim
	for _, t := range leaves {
		x0s := floats(t, ld.m[gvplot.X])
		x1s := floats(t, ld.m[gvplot.XEnd])
		xa.expand(x0s...)
		xa.expand(x1s...)

		var y0s, y1s []float64
		full := false
		switch {
		case has(ld.m, gvplot.YEnd):
			var err error
			if y0s, err = f.yFloats(ld, t, ya); err != nil {
				return nil, err
			}
			y1s = floats(t, ld.m[gvplot.YEnd])
			ya.expand(y1s...)
		case has(ld.m, gvplot.Y):
			ys, err := f.yFloats(ld, t, ya)
			if err != nil {
				return nil, err
			}
			y0s = make([]float64, len(ys))
			y1s = make([]float64, len(ys))
			for i, y := range ys {
				y0s[i], y1s[i] = y-halfH, y+halfH
			}
			ya.expand(y0s...)
			ya.expand(y1s...)
		default:
			full = true
		}

		fill := f.fillOf(ld, t)
		for i := range x0s {
			if math.IsNaN(x0s[i]) || math.IsNaN(x1s[i]) {
				continue
			}
			p := prim{op: opRect, x0: x0s[i], x1: x1s[i], fill: fill, fullY: full, alpha: ld.layer.Params.Alpha}
			if !full {
				if math.IsNaN(y0s[i]) || math.IsNaN(y1s[i]) {
					continue
				}
				p.y0, p.y1 = y0s[i], y1s[i]
			}
			prims = append(prims, p)
		}
	}
	return prims, nil
}

func (f *frame) buildTexts(ld *layerData, leaves []*table.Table, xa, ya *axis) ([]prim, error) {
	if err := f.xKind(ld, xa); err != nil {
		return nil, err
	}
	size := f.theme.FontSize
	if ld.layer.Params.Size > 0 {
		size = ld.layer.Params.Size
	}
	var prims []prim
	for _, t := range leaves {
		xs, err := xValues(ld, t, xa)
		if err != nil {
			return nil, err
		}
		ys, err := f.yFloats(ld, t, ya)
		if err != nil {
			return nil, err
		}
		labels, err := vartab.ColumnStrings(t, ld.m[gvplot.Label])
		if err != nil {
			return nil, err
		}
		c := ld.layer.Params.Color
		if c == nil {
			c = color.RGBA{0x22, 0x22, 0x22, 0xff}
		}
		for i := range xs {
			if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
				continue
			}
			prims = append(prims, prim{
				op: opText, xs: []float64{xs[i]}, ys: []float64{ys[i]},
				label: labels[i], size: size, fill: c,
			})
		}
	}
	return prims, nil
}

func has(m gvplot.Mapping, ch gvplot.Channel) bool {
	_, ok := m[ch]
	return ok
}

func indexOf(levels []string, lv string) int {
	for i, l := range levels {
		if l == lv {
			return i
		}
	}
	return 0
}

func finite(xs []float64) []float64 {
	out := xs[:0:0]
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

// minSpacing returns the smallest gap between distinct sorted values,
// the natural bar slot width for numeric x.
func minSpacing(xs []float64) float64 {
	xs = finite(xs)
	if len(xs) < 2 {
		return 1
	}
	sort.Float64s(xs)
	best := math.Inf(1)
	for i := 1; i < len(xs); i++ {
		if d := xs[i] - xs[i-1]; d > 0 && d < best {
			best = d
		}
	}
	if math.IsInf(best, 1) {
		return 1
	}
	return best
}

func sortByX(xs, ys []float64) ([]float64, []float64) {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })
	sx := make([]float64, len(xs))
	sy := make([]float64, len(ys))
	for i, j := range idx {
		sx[i], sy[i] = xs[j], ys[j]
	}
	return sx, sy
}

func sortByX3(xs, ys, zs []float64) ([]float64, []float64, []float64) {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })
	sx := make([]float64, len(xs))
	sy := make([]float64, len(ys))
	sz := make([]float64, len(zs))
	for i, j := range idx {
		sx[i], sy[i], sz[i] = xs[j], ys[j], zs[j]
	}
	return sx, sy, sz
}
