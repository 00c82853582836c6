// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/aclements/go-gg/table"

	"github.com/gvplot/gvplot"
	"github.com/gvplot/gvplot/vartab"
)

func variantTable() table.Grouping {
	b := new(table.Builder)
	b.Add("Chrom", []string{"chr1", "chr1", "chr2", "chr2", "chr2", "chrX"})
	b.Add("Start", []int64{100, 250, 40, 90, 160, 70})
	b.Add("Qual", []float64{30, 99, 12.5, 60, 88, 45})
	b.Add("Func", []string{"missense", "silent", "missense", "nonsense", "silent", "missense"})
	return b.Done()
}

func scatter(t *testing.T, cs ...gvplot.Component) *gvplot.Plot {
	t.Helper()
	p := gvplot.New(variantTable(), gvplot.Mapping{gvplot.X: "Start", gvplot.Y: "Qual"}).
		Add(gvplot.Layer{Geom: gvplot.GeomPoint}).
		Add(cs...)
	if err := p.Err(); err != nil {
		t.Fatalf("building plot: %v", err)
	}
	return p
}

func panelRows(t *testing.T, pn Panel) int {
	t.Helper()
	if pn.Data == nil {
		return 0
	}
	n := 0
	for _, gid := range pn.Data.Tables() {
		n += pn.Data.Table(gid).Len()
	}
	return n
}

func TestPanelsUnfaceted(t *testing.T) {
	ps, err := Panels(scatter(t))
	if err != nil {
		t.Fatalf("Panels: %v", err)
	}
	if len(ps) != 1 {
		t.Fatalf("got %d panels, want 1", len(ps))
	}
	pn := ps[0]
	if pn.Row != 0 || pn.Col != 0 || pn.RowLabel != "" || pn.ColLabel != "" {
		t.Errorf("unexpected panel position %+v", pn)
	}
	if got := panelRows(t, pn); got != 6 {
		t.Errorf("panel has %d rows, want 6", got)
	}
}

func TestPanelsFacetRows(t *testing.T) {
	ps, err := Panels(scatter(t, gvplot.Facet{Row: "Chrom"}))
	if err != nil {
		t.Fatalf("Panels: %v", err)
	}
	if len(ps) != 3 {
		t.Fatalf("got %d panels, want 3", len(ps))
	}
	wantRows := map[string]int{"chr1": 2, "chr2": 3, "chrX": 1}
	total := 0
	for i, pn := range ps {
		if pn.Row != i || pn.Col != 0 {
			t.Errorf("panel %d at (%d,%d), want (%d,0)", i, pn.Row, pn.Col, i)
		}
		if pn.ColLabel != "" {
			t.Errorf("panel %d has column label %q", i, pn.ColLabel)
		}
		got := panelRows(t, pn)
		if got != wantRows[pn.RowLabel] {
			t.Errorf("panel %q has %d rows, want %d", pn.RowLabel, got, wantRows[pn.RowLabel])
		}
		total += got

		// Every leaf in a panel must be uniformly its panel's
		// level.
		for _, gid := range pn.Data.Tables() {
			chroms, err := vartab.ColumnStrings(pn.Data.Table(gid), "Chrom")
			if err != nil {
				t.Fatalf("reading Chrom: %v", err)
			}
			for _, ch := range chroms {
				if ch != pn.RowLabel {
					t.Errorf("panel %q contains row from %q", pn.RowLabel, ch)
				}
			}
		}
	}
	if total != 6 {
		t.Errorf("panels hold %d rows in total, want 6", total)
	}
}

func TestPanelsFacetGrid(t *testing.T) {
	ps, err := Panels(scatter(t, gvplot.Facet{Row: "Chrom", Col: "Func"}))
	if err != nil {
		t.Fatalf("Panels: %v", err)
	}
	// 3 chromosomes x 3 consequence levels, empty cells included.
	if len(ps) != 9 {
		t.Fatalf("got %d panels, want 9", len(ps))
	}
	byCell := make(map[[2]string]Panel)
	for _, pn := range ps {
		byCell[[2]string{pn.RowLabel, pn.ColLabel}] = pn
	}
	if got := panelRows(t, byCell[[2]string{"chr1", "missense"}]); got != 1 {
		t.Errorf("chr1/missense has %d rows, want 1", got)
	}
	if got := panelRows(t, byCell[[2]string{"chr2", "nonsense"}]); got != 1 {
		t.Errorf("chr2/nonsense has %d rows, want 1", got)
	}
	if pn := byCell[[2]string{"chrX", "silent"}]; pn.Data != nil {
		t.Errorf("chrX/silent should be an empty cell, has %d rows", panelRows(t, pn))
	}
}

func TestPanelsWrap(t *testing.T) {
	ps, err := Panels(scatter(t, gvplot.Facet{Col: "Func", Wrap: true, Cols: 2}))
	if err != nil {
		t.Fatalf("Panels: %v", err)
	}
	if len(ps) != 3 {
		t.Fatalf("got %d panels, want 3", len(ps))
	}
	want := []struct {
		row, col int
		label    string
	}{
		{0, 0, "missense"},
		{0, 1, "silent"},
		{1, 0, "nonsense"},
	}
	for i, w := range want {
		pn := ps[i]
		if pn.Row != w.row || pn.Col != w.col || pn.ColLabel != w.label {
			t.Errorf("panel %d = (%d,%d,%q), want (%d,%d,%q)",
				i, pn.Row, pn.Col, pn.ColLabel, w.row, w.col, w.label)
		}
	}
}

func TestPanelsFacetOrder(t *testing.T) {
	ps, err := Panels(scatter(t, gvplot.Facet{Row: "Chrom", Order: []string{"chrX", "chr1"}}))
	if err != nil {
		t.Fatalf("Panels: %v", err)
	}
	var got []string
	for _, pn := range ps {
		got = append(got, pn.RowLabel)
	}
	want := []string{"chrX", "chr1", "chr2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("panel order %v, want %v", got, want)
			break
		}
	}

	// Reordering changes display order only, never which rows land in
	// which panel.
	wantRows := map[string]int{"chrX": 1, "chr1": 2, "chr2": 3}
	for _, pn := range ps {
		if got := panelRows(t, pn); got != wantRows[pn.RowLabel] {
			t.Errorf("panel %q has %d rows, want %d", pn.RowLabel, got, wantRows[pn.RowLabel])
		}
	}
}

func TestFilterThenFacet(t *testing.T) {
	// Rows excluded by a filter never reach a panel.
	kept, err := vartab.FilterIn(variantTable(), "Func", "missense", "silent")
	if err != nil {
		t.Fatalf("FilterIn: %v", err)
	}
	p := gvplot.New(kept, gvplot.Mapping{gvplot.X: "Start", gvplot.Y: "Qual"}).
		Add(gvplot.Layer{Geom: gvplot.GeomPoint}).
		Add(gvplot.Facet{Col: "Func", Wrap: true})
	ps, err := Panels(p)
	if err != nil {
		t.Fatalf("Panels: %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("got %d panels, want 2", len(ps))
	}
	total := 0
	for _, pn := range ps {
		if pn.ColLabel == "nonsense" {
			t.Error("filtered-out category got a panel")
		}
		total += panelRows(t, pn)
	}
	if total != 5 {
		t.Errorf("panels hold %d rows, want 5", total)
	}
}

func TestFacetSplitEndToEnd(t *testing.T) {
	tab := new(table.Builder).
		Add("Chr", []string{"1", "2", "1"}).
		Add("Start", []int64{100, 50, 200}).
		Add("DP", []float64{10, 20, 5}).
		Done()
	p := gvplot.New(tab, gvplot.Mapping{gvplot.X: "Start", gvplot.Y: "DP"}).
		Add(gvplot.Layer{Geom: gvplot.GeomPoint}).
		Add(gvplot.Facet{Row: "Chr"})
	if err := p.Err(); err != nil {
		t.Fatalf("building plot: %v", err)
	}

	ps, err := Panels(p)
	if err != nil {
		t.Fatalf("Panels: %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("got %d panels, want 2", len(ps))
	}
	wantRows := map[string]int{"1": 2, "2": 1}
	for _, pn := range ps {
		if got := panelRows(t, pn); got != wantRows[pn.RowLabel] {
			t.Errorf("panel %q has %d rows, want %d", pn.RowLabel, got, wantRows[pn.RowLabel])
		}
	}

	var buf bytes.Buffer
	if err := SVG(&buf, p, 640, 480); err != nil {
		t.Fatalf("SVG: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("SVG wrote nothing")
	}
}

func TestPanelsResolveError(t *testing.T) {
	p := gvplot.New(variantTable(), gvplot.Mapping{gvplot.X: "Start"}).
		Add(gvplot.Layer{Geom: gvplot.GeomPoint})
	_, err := Panels(p)
	if err == nil {
		t.Fatal("Panels succeeded with an unbound y channel")
	}
	var miss *gvplot.MissingAestheticError
	if !errors.As(err, &miss) {
		t.Errorf("error %T, want MissingAestheticError", err)
	}
}

func TestPrepareGroupsDiscreteColor(t *testing.T) {
	p := gvplot.New(variantTable(), gvplot.Mapping{
		gvplot.X: "Start", gvplot.Y: "Qual", gvplot.Color: "Func",
	}).Add(gvplot.Layer{Geom: gvplot.GeomPoint})
	f, err := prepare(p)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	ld := &f.layers[0]
	want := []string{"missense", "silent", "nonsense"}
	got := ld.levels[gvplot.Color]
	if len(got) != len(want) {
		t.Fatalf("color levels %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("color levels %v, want %v", got, want)
		}
	}
	if n := len(ld.data.Tables()); n != 3 {
		t.Errorf("grouped into %d leaves, want 3", n)
	}
	if ld.colorCol != "" {
		t.Errorf("discrete color also trained a ramp over %q", ld.colorCol)
	}
}

func TestPrepareContinuousColor(t *testing.T) {
	p := gvplot.New(variantTable(), gvplot.Mapping{
		gvplot.X: "Start", gvplot.Y: "Qual", gvplot.Color: "Qual",
	}).Add(gvplot.Layer{Geom: gvplot.GeomPoint})
	f, err := prepare(p)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	ld := &f.layers[0]
	if _, ok := ld.levels[gvplot.Color]; ok {
		t.Error("numeric color column was treated as discrete")
	}
	if ld.colorCol != "Qual" {
		t.Fatalf("ramp column %q, want Qual", ld.colorCol)
	}
	if ld.colorMin != 12.5 || ld.colorMax != 99 {
		t.Errorf("ramp domain [%g, %g], want [12.5, 99]", ld.colorMin, ld.colorMax)
	}
}

func TestPrepareAppliesCountStat(t *testing.T) {
	p := gvplot.New(variantTable(), gvplot.Mapping{gvplot.X: "Func"}).
		Add(gvplot.Layer{Geom: gvplot.GeomBar})
	f, err := prepare(p)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	ld := &f.layers[0]
	if got := ld.m[gvplot.Y]; got != "count" {
		t.Fatalf("post-stat y binding %q, want count", got)
	}
	total := 0.0
	for _, gid := range ld.data.Tables() {
		for _, c := range floats(ld.data.Table(gid), "count") {
			total += c
		}
	}
	if total != 6 {
		t.Errorf("counts sum to %g, want 6", total)
	}
	// The pre-stat mapping must survive for backends that run
	// their own stats.
	if got := ld.m0[gvplot.X]; got != "Func" {
		t.Errorf("pre-stat x binding %q, want Func", got)
	}
}

func TestGGDispatch(t *testing.T) {
	simple, err := prepare(scatter(t))
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if !simple.ggable() {
		t.Error("plain scatter should take the gg backend")
	}

	bars, err := prepare(gvplot.New(variantTable(), gvplot.Mapping{gvplot.X: "Func"}).
		Add(gvplot.Layer{Geom: gvplot.GeomBar}))
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if bars.ggable() {
		t.Error("bar plot should take the direct SVG backend")
	}

	shaped, err := prepare(gvplot.New(variantTable(), gvplot.Mapping{
		gvplot.X: "Start", gvplot.Y: "Qual", gvplot.Shape: "Func",
	}).Add(gvplot.Layer{Geom: gvplot.GeomPoint}))
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if shaped.ggable() {
		t.Error("shape-bound plot should take the direct SVG backend")
	}
}

func TestSVGWritesNothingOnError(t *testing.T) {
	p := gvplot.New(variantTable(), gvplot.Mapping{gvplot.X: "Start"}).
		Add(gvplot.Layer{Geom: gvplot.GeomPoint})
	var buf bytes.Buffer
	if err := SVG(&buf, p, 640, 480); err == nil {
		t.Fatal("SVG succeeded with an unbound y channel")
	}
	if buf.Len() != 0 {
		t.Errorf("failed render wrote %d bytes", buf.Len())
	}
}

func TestSVGBadDimensions(t *testing.T) {
	var buf bytes.Buffer
	if err := SVG(&buf, scatter(t), 0, 480); err == nil {
		t.Fatal("SVG accepted zero width")
	}
	if buf.Len() != 0 {
		t.Errorf("failed render wrote %d bytes", buf.Len())
	}
}

func TestPNGRejectsFacets(t *testing.T) {
	var buf bytes.Buffer
	err := PNG(&buf, scatter(t, gvplot.Facet{Row: "Chrom"}), 640, 480)
	if err == nil {
		t.Fatal("PNG accepted a faceted plot")
	}
	if buf.Len() != 0 {
		t.Errorf("failed render wrote %d bytes", buf.Len())
	}
}

func TestPNGRejectsBars(t *testing.T) {
	var buf bytes.Buffer
	p := gvplot.New(variantTable(), gvplot.Mapping{gvplot.X: "Func"}).
		Add(gvplot.Layer{Geom: gvplot.GeomBar})
	if err := PNG(&buf, p, 640, 480); err == nil {
		t.Fatal("PNG accepted a bar geometry")
	}
	if buf.Len() != 0 {
		t.Errorf("failed render wrote %d bytes", buf.Len())
	}
}
