// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"bytes"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/aclements/go-gg/table"

	"github.com/gvplot/gvplot"
	"github.com/gvplot/gvplot/align"
	"github.com/gvplot/gvplot/annot"
	"github.com/gvplot/gvplot/autoplot"
	"github.com/gvplot/gvplot/genome"
	"github.com/gvplot/gvplot/gvstat"
)

// Track pairs a label with a plot drawn in one lane of a stacked
// genome view. A nil Plot draws an empty lane that keeps its slot.
type Track struct {
	Name string
	Plot *gvplot.Plot
}

// Tracks renders horizontal lanes stacked over a shared genomic x
// axis pinned to rg. Every lane is validated and assembled before any
// output is written, so a failing track leaves w untouched.
func Tracks(w io.Writer, rg genome.Range, width, laneHeight int, tracks ...Track) error {
	if width <= 0 || laneHeight <= 0 {
		return fmt.Errorf("render: bad dimensions %dx%d", width, laneHeight)
	}
	if rg.End <= rg.Start {
		return fmt.Errorf("render: empty range %s", rg)
	}
	if len(tracks) == 0 {
		return fmt.Errorf("render: no tracks")
	}

	// The shared axis is pinned to rg so every lane lines up
	// base for base. kindSet makes a discrete x binding in any
	// lane a conflict instead of a silent re-type.
	xa := &axis{fixed: true, kindSet: true, seen: true,
		min: float64(rg.Start), max: float64(rg.End), format: formatPos}

	type lane struct {
		f     *frame
		prims [][]prim
		ya    *axis
	}
	lanes := make([]lane, len(tracks))
	for i, tr := range tracks {
		if tr.Plot == nil {
			continue
		}
		f, err := prepare(tr.Plot)
		if err != nil {
			return fmt.Errorf("render: track %q: %w", tr.Name, err)
		}
		if f.faceted {
			return fmt.Errorf("render: track %q: faceted plots cannot stack in a track view", tr.Name)
		}
		prims, _, ya, err := f.assemble(xa, nil)
		if err != nil {
			return fmt.Errorf("render: track %q: %w", tr.Name, err)
		}
		lanes[i] = lane{f: f, prims: prims[0], ya: ya}
	}

	const nameW = 80
	th := gvplot.DefaultTheme()
	fs := th.FontSize
	xtickH := tickTextSep + int(fs*1.4)
	x0 := plotMargin + nameW
	pw := width - x0 - plotMargin
	if pw < 16 {
		return fmt.Errorf("render: width %d leaves no room for track lanes", width)
	}
	height := plotMargin + len(tracks)*laneHeight + (len(tracks)-1)*panelGap + xtickH + plotMargin

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(width, height, fmt.Sprintf(`font-size="%.6gpx" font-family="Roboto,&quot;Helvetica Neue&quot;,Helvetica,Arial,sans-serif"`, fs))
	c := &svgCanvas{svg: canvas}

	y := plotMargin
	for i, tr := range tracks {
		canvas.Text(plotMargin, y+laneHeight/2, tr.Name, `text-anchor="start" dy=".3em" fill="#444"`)
		if lanes[i].f != nil {
			drawPanel(c, &lanes[i].f.theme, lanes[i].prims, xa, lanes[i].ya, x0, y, pw, laneHeight)
		} else {
			canvas.Rect(x0, y, pw, laneHeight, cssPaint("fill", th.Background))
			canvas.Path(fmt.Sprintf("M%d %dV%dH%d", x0, y, y+laneHeight, x0+pw), "stroke:#888; fill:none; stroke-width:2")
		}
		y += laneHeight + panelGap
	}
	drawXAxis(c, xa, panelXSpan(xa, x0, pw), y-panelGap, pw)

	canvas.End()
	_, err := w.Write(buf.Bytes())
	return err
}

// formatPos renders genomic coordinates compactly.
func formatPos(v float64) string {
	switch {
	case math.Abs(v) >= 1e6:
		return fmt.Sprintf("%.4g Mb", v/1e6)
	case math.Abs(v) >= 1e3:
		return fmt.Sprintf("%.4g kb", v/1e3)
	}
	return fmt.Sprintf("%.0f", v)
}

// CoverageTrack builds a depth-of-coverage lane from a per-base depth
// array over rg, as produced by align.Coverage.
func CoverageTrack(depth []int64, rg genome.Range) Track {
	if len(depth) == 0 {
		return Track{Name: "coverage"}
	}
	t := gvstat.CoverageTable(depth, rg)
	p := gvplot.New(t, gvplot.Mapping{gvplot.X: "pos", gvplot.Y: "depth"}).
		Add(gvplot.Layer{Geom: gvplot.GeomArea})
	return Track{Name: "coverage", Plot: p}
}

// ReadTrack builds an alignment lane that stacks reads into
// non-overlapping rows.
func ReadTrack(recs []align.Record, rg genome.Range) Track {
	if len(recs) == 0 {
		return Track{Name: "reads"}
	}
	p, err := autoplot.Plot(autoplot.AlignmentData{Records: recs, Region: rg})
	if err != nil {
		return Track{Name: "reads"}
	}
	return Track{Name: "reads", Plot: p}
}

// VariantTrack builds a lane of variant markers. A nil mapping places
// markers at the Start column; a mapping without a Y binding pins all
// markers to one row.
func VariantTrack(tab table.Grouping, rg genome.Range, m gvplot.Mapping) Track {
	if tab == nil {
		return Track{Name: "variants"}
	}
	empty := true
	for _, gid := range tab.Tables() {
		if tab.Table(gid).Len() > 0 {
			empty = false
			break
		}
	}
	if empty {
		return Track{Name: "variants"}
	}

	if m == nil {
		m = gvplot.Mapping{gvplot.X: "Start"}
	}
	if _, ok := m[gvplot.Y]; !ok {
		tab = table.MapTables(tab, func(_ table.GroupID, t *table.Table) *table.Table {
			return table.NewBuilder(t).Add("lane", make([]float64, t.Len())).Done()
		})
		nm := gvplot.Mapping{}
		for ch, col := range m {
			nm[ch] = col
		}
		nm[gvplot.Y] = "lane"
		m = nm
	}
	p := gvplot.New(tab, m).Add(gvplot.Layer{Geom: gvplot.GeomPoint})
	return Track{Name: "variants", Plot: p}
}

// GeneTrack builds a gene-model lane with exon boxes and name labels.
func GeneTrack(genes []annot.Gene, rg genome.Range) Track {
	if len(genes) == 0 {
		return Track{Name: "genes"}
	}
	p, err := autoplot.Plot(autoplot.AnnotationData{Genes: genes, Region: rg})
	if err != nil {
		return Track{Name: "genes"}
	}
	return Track{Name: "genes", Plot: p}
}
