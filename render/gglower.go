// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"io"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/ggstat"

	"github.com/gvplot/gvplot"
)

// writeGG lowers a plot onto go-gg, which trains its own scales and
// emits SVG for the classic statistical geometries. Only layers that
// pass ggable reach this path.
func writeGG(w io.Writer, f *frame, width, height int) error {
	gp := gg.NewPlot(f.plot.Data())

	th := &f.theme
	if th.Title != "" {
		gp.Add(gg.Title(th.Title))
	}
	if th.XLabel != "" {
		gp.Add(gg.AxisLabel("x", th.XLabel))
	}
	if th.YLabel != "" {
		gp.Add(gg.AxisLabel("y", th.YLabel))
	}

	if f.faceted {
		if f.facet.Wrap {
			col := f.facet.Col
			if col == "" {
				col = f.facet.Row
			}
			gp.Add(gg.FacetWrap{Col: col, Cols: f.facet.Cols})
		} else {
			if f.facet.Col != "" {
				gp.Add(gg.FacetX{Col: f.facet.Col})
			}
			if f.facet.Row != "" {
				gp.Add(gg.FacetY{Col: f.facet.Row})
			}
		}
	}

	for i := range f.layers {
		ld := &f.layers[i]
		m := ld.m0
		gp.Save()
		if ld.layer.Data != nil {
			gp.SetData(ld.layer.Data)
		}
		switch {
		case ld.layer.EffectiveStat() == gvplot.StatDensity:
			gp.Stat(ggstat.Density{X: m[gvplot.X]})
			gp.Add(gg.LayerPaths{
				X:     m[gvplot.X],
				Y:     "probability density",
				Color: m[gvplot.Color],
			})
		case ld.layer.Geom == gvplot.GeomPoint:
			gp.Add(gg.LayerPoints{
				X:       m[gvplot.X],
				Y:       m[gvplot.Y],
				Color:   m[gvplot.Color],
				Size:    m[gvplot.Size],
				Opacity: m[gvplot.Alpha],
			})
		case ld.layer.Geom == gvplot.GeomLine:
			gp.Add(gg.LayerLines{
				X:     m[gvplot.X],
				Y:     m[gvplot.Y],
				Color: m[gvplot.Color],
			})
		case ld.layer.Geom == gvplot.GeomArea:
			gp.Add(gg.LayerArea{
				X:     m[gvplot.X],
				Upper: m[gvplot.Y],
				Lower: m[gvplot.YEnd],
				Fill:  m[gvplot.Fill],
			})
		}
		gp.Restore()
	}

	return gp.WriteSVG(w, width, height)
}
