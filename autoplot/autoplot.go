// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package autoplot builds default plots from common genomic data
// shapes.
//
// Each supported shape is a variant of the closed Data union and has
// one plotting strategy. Callers that want a different rendering
// compose a plot by hand instead of going through autoplot.
package autoplot

import (
	"errors"
	"fmt"

	"github.com/aclements/go-gg/table"

	"github.com/gvplot/gvplot"
	"github.com/gvplot/gvplot/align"
	"github.com/gvplot/gvplot/annot"
	"github.com/gvplot/gvplot/genome"
)

// Data is the closed set of plottable data shapes. It is implemented
// only by TableData, RangeData, AlignmentData, and AnnotationData.
type Data interface {
	data()
}

// TableData plots a column-oriented dataset: a scatter of the first
// two numeric columns, a histogram of a lone numeric column, or a
// count bar chart when no column is numeric.
type TableData struct {
	table.Grouping
}

// RangeData plots genomic intervals as spans, colored by chromosome,
// with optional per-interval values on the y axis.
type RangeData struct {
	Ranges []genome.Range
	Values []float64
}

// AlignmentData plots reads from a range query as a packed pileup.
type AlignmentData struct {
	Records []align.Record
	Region  genome.Range
}

// AnnotationData plots gene models as exon boxes with name labels.
type AnnotationData struct {
	Genes  []annot.Gene
	Region genome.Range
}

func (TableData) data()      {}
func (RangeData) data()      {}
func (AlignmentData) data()  {}
func (AnnotationData) data() {}

// Plot builds the default plot for d. Dispatch is an explicit type
// switch over the closed variant set; there is no reflective or
// registry-driven fallback.
func Plot(d Data) (*gvplot.Plot, error) {
	switch d := d.(type) {
	case TableData:
		return autoTable(d.Grouping)
	case RangeData:
		return autoRanges(d)
	case AlignmentData:
		return autoAlignment(d)
	case AnnotationData:
		return autoAnnotation(d)
	case nil:
		return nil, &gvplot.InvalidComponentError{Reason: "autoplot of nil data"}
	default:
		return nil, &gvplot.InvalidComponentError{Reason: fmt.Sprintf("unrecognized data variant %T", d)}
	}
}

func autoTable(g table.Grouping) (*gvplot.Plot, error) {
	if g == nil || len(g.Tables()) == 0 {
		return nil, errors.New("autoplot: empty dataset")
	}
	cols := g.Columns()
	if len(cols) == 0 {
		return nil, errors.New("autoplot: dataset has no columns")
	}
	var nums []string
	for _, col := range cols {
		switch g.Table(g.Tables()[0]).Column(col).(type) {
		case []float64, []int64, []int:
			nums = append(nums, col)
		}
	}

	th := gvplot.DefaultTheme()
	switch {
	case len(nums) >= 2:
		th.XLabel, th.YLabel = nums[0], nums[1]
		p := gvplot.New(g, gvplot.Mapping{gvplot.X: nums[0], gvplot.Y: nums[1]})
		p.Add(gvplot.Layer{Geom: gvplot.GeomPoint}, th)
		return p, p.Err()
	case len(nums) == 1:
		th.XLabel, th.YLabel = nums[0], "count"
		p := gvplot.New(g, gvplot.Mapping{gvplot.X: nums[0]})
		p.Add(gvplot.Layer{Geom: gvplot.GeomBar, Stat: gvplot.StatBin}, th)
		return p, p.Err()
	default:
		th.XLabel, th.YLabel = cols[0], "count"
		p := gvplot.New(g, gvplot.Mapping{gvplot.X: cols[0]})
		p.Add(gvplot.Layer{Geom: gvplot.GeomBar}, th)
		return p, p.Err()
	}
}

func autoRanges(d RangeData) (*gvplot.Plot, error) {
	if len(d.Ranges) == 0 {
		return nil, errors.New("autoplot: no ranges to plot")
	}
	if d.Values != nil && len(d.Values) != len(d.Ranges) {
		return nil, fmt.Errorf("autoplot: %d values for %d ranges", len(d.Values), len(d.Ranges))
	}

	chrom := make([]string, len(d.Ranges))
	start := make([]int64, len(d.Ranges))
	end := make([]int64, len(d.Ranges))
	for i, r := range d.Ranges {
		chrom[i], start[i], end[i] = r.Chrom, r.Start, r.End
	}
	tb := new(table.Builder).Add("chrom", chrom).Add("start", start).Add("end", end)
	m := gvplot.Mapping{gvplot.X: "start", gvplot.XEnd: "end", gvplot.Fill: "chrom"}
	if d.Values != nil {
		tb.Add("value", d.Values)
		m[gvplot.Y] = "value"
	}

	p := gvplot.New(tb.Done(), m)
	p.Add(gvplot.Layer{Geom: gvplot.GeomRect})
	return p, p.Err()
}

func autoAlignment(d AlignmentData) (*gvplot.Plot, error) {
	if len(d.Records) == 0 {
		return nil, errors.New("autoplot: no alignment records")
	}

	lanes := align.PackReads(d.Records)
	start := make([]int64, len(d.Records))
	end := make([]int64, len(d.Records))
	lane := make([]int64, len(d.Records))
	strand := make([]string, len(d.Records))
	mapq := make([]int64, len(d.Records))
	for i, r := range d.Records {
		start[i], end[i], lane[i] = r.Start, r.End, int64(lanes[i])
		mapq[i] = int64(r.MapQ)
		if r.Reverse {
			strand[i] = "-"
		} else {
			strand[i] = "+"
		}
	}
	tab := new(table.Builder).
		Add("start", start).Add("end", end).Add("lane", lane).
		Add("strand", strand).Add("mapq", mapq).
		Done()

	th := gvplot.DefaultTheme()
	th.XLabel = d.Region.String()
	p := gvplot.New(tab, gvplot.Mapping{
		gvplot.X: "start", gvplot.XEnd: "end", gvplot.Y: "lane", gvplot.Fill: "strand",
	})
	p.Add(gvplot.Layer{Geom: gvplot.GeomRect}, th)
	return p, p.Err()
}

func autoAnnotation(d AnnotationData) (*gvplot.Plot, error) {
	if len(d.Genes) == 0 {
		return nil, errors.New("autoplot: no genes to plot")
	}

	spans := make([]align.Record, len(d.Genes))
	for i, g := range d.Genes {
		spans[i] = align.Record{Start: g.Start, End: g.End}
	}
	lanes := align.PackReads(spans)

	var estart, eend, elane []int64
	var egene []string
	for i, g := range d.Genes {
		for _, ex := range g.Exons {
			estart = append(estart, ex.Start)
			eend = append(eend, ex.End)
			elane = append(elane, int64(lanes[i]))
			egene = append(egene, g.Name)
		}
	}
	exonTab := new(table.Builder).
		Add("start", estart).Add("end", eend).Add("lane", elane).Add("gene", egene).
		Done()

	gstart := make([]int64, len(d.Genes))
	glane := make([]int64, len(d.Genes))
	gname := make([]string, len(d.Genes))
	for i, g := range d.Genes {
		gstart[i], glane[i], gname[i] = g.Start, int64(lanes[i]), g.Name
	}
	geneTab := new(table.Builder).
		Add("start", gstart).Add("lane", glane).Add("gene", gname).
		Done()

	th := gvplot.DefaultTheme()
	if d.Region.Chrom != "" {
		th.XLabel = d.Region.String()
	}
	p := gvplot.New(exonTab, gvplot.Mapping{gvplot.X: "start", gvplot.Y: "lane"})
	p.Add(
		gvplot.Layer{Geom: gvplot.GeomRect, Mapping: gvplot.Mapping{gvplot.XEnd: "end"}},
		gvplot.Layer{
			Geom:    gvplot.GeomText,
			Data:    geneTab,
			Mapping: gvplot.Mapping{gvplot.Label: "gene"},
		},
		th,
	)
	return p, p.Err()
}
