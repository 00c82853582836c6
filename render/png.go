// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/gvplot/gvplot"
)

// PNG renders a plot as a raster image via gonum/plot. It handles
// point, line, and density layers without facets; richer plots should
// render to SVG. Nothing is written on error.
func PNG(w io.Writer, p *gvplot.Plot, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("render: bad dimensions %dx%d", width, height)
	}
	f, err := prepare(p)
	if err != nil {
		return err
	}
	if f.faceted {
		return fmt.Errorf("render: faceted plots cannot render to PNG; use SVG")
	}

	plt := plot.New()
	th := &f.theme
	plt.Title.Text = th.Title
	plt.X.Label.Text = th.XLabel
	plt.Y.Label.Text = th.YLabel

	inLegend := make(map[string]bool)
	for i := range f.layers {
		ld := &f.layers[i]
		line := false
		switch ld.layer.Geom {
		case gvplot.GeomPoint:
		case gvplot.GeomLine, gvplot.GeomDensity:
			line = true
		default:
			return fmt.Errorf("render: geometry %v cannot render to PNG; use SVG", ld.layer.Geom)
		}
		if discrete(ld.data, ld.m[gvplot.X]) || discrete(ld.data, ld.m[gvplot.Y]) {
			return fmt.Errorf("render: discrete axis bindings cannot render to PNG; use SVG")
		}

		levels := ld.levels[gvplot.Color]
		for _, gid := range ld.data.Tables() {
			t := ld.data.Table(gid)
			if t.Len() == 0 {
				continue
			}
			xs := floats(t, ld.m[gvplot.X])
			ys := floats(t, ld.m[gvplot.Y])
			if line {
				xs, ys = sortByX(xs, ys)
			}
			var xys plotter.XYs
			for j := range xs {
				if !isFinite(xs[j]) || !isFinite(ys[j]) {
					continue
				}
				xys = append(xys, plotter.XY{X: xs[j], Y: ys[j]})
			}
			if len(xys) == 0 {
				continue
			}

			var c color.Color = color.RGBA{0x22, 0x22, 0x22, 0xff}
			name := ""
			if levels != nil {
				if lv, err := leafLevel(t, ld.m[gvplot.Color]); err == nil {
					c = th.CategoryColor(indexOf(levels, lv))
					name = lv
				}
			} else if ld.layer.Params.Color != nil {
				c = ld.layer.Params.Color
			}

			var thumb plot.Thumbnailer
			if line {
				ln, err := plotter.NewLine(xys)
				if err != nil {
					return err
				}
				ln.LineStyle.Color = c
				ln.LineStyle.Width = vg.Points(th.LineWidth * 0.75)
				plt.Add(ln)
				thumb = ln
			} else {
				sc, err := plotter.NewScatter(xys)
				if err != nil {
					return err
				}
				sc.GlyphStyle.Color = c
				sc.GlyphStyle.Radius = vg.Points(th.PointSize * 0.75)
				plt.Add(sc)
				thumb = sc
			}
			if name != "" && !inLegend[name] {
				inLegend[name] = true
				plt.Legend.Add(name, thumb)
			}
		}
	}

	// vgimg rasterizes at 96 dpi, so requested pixels convert to
	// points at 3/4.
	wt, err := plt.WriterTo(vg.Points(float64(width)*0.75), vg.Points(float64(height)*0.75), "png")
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}
