// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gvplot

import (
	"errors"
	"reflect"
	"testing"

	"github.com/aclements/go-gg/table"
)

func variantTable() table.Grouping {
	return new(table.Builder).
		Add("Chr", []string{"1", "2", "1"}).
		Add("Start", []float64{100, 50, 200}).
		Add("DP", []float64{10, 20, 5}).
		Add("Func", []string{"exonic", "intronic", "exonic"}).
		Done()
}

func TestComposeLayerOrder(t *testing.T) {
	l1 := Layer{Geom: GeomPoint}
	l2 := Layer{Geom: GeomLine}

	p := New(variantTable(), Mapping{X: "Start", Y: "DP"})
	if err := p.Compose(l1); err != nil {
		t.Fatalf("Compose(l1) failed: %v", err)
	}
	if err := p.Compose(l2); err != nil {
		t.Fatalf("Compose(l2) failed: %v", err)
	}

	got := p.Layers()
	if len(got) != 2 || got[0].Geom != GeomPoint || got[1].Geom != GeomLine {
		t.Errorf("layer sequence = %v; want [point line]", got)
	}

	// The returned slice is a copy.
	got[0] = Layer{Geom: GeomBar}
	if p.Layers()[0].Geom != GeomPoint {
		t.Errorf("mutating Layers() result changed the plot")
	}
}

func TestComposeFacetIdempotent(t *testing.T) {
	f := Facet{Col: "Chr", Order: []string{"1", "2"}}

	p := New(variantTable(), nil).Add(f)
	once, ok := p.FacetSpec()
	if !ok {
		t.Fatalf("FacetSpec() not set after Add(f)")
	}
	p.Add(f)
	twice, ok := p.FacetSpec()
	if !ok {
		t.Fatalf("FacetSpec() not set after second Add(f)")
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("repeated facet composition changed the slot: %+v != %+v", once, twice)
	}
}

func TestComposeFacetReplaces(t *testing.T) {
	p := New(variantTable(), nil).
		Add(Facet{Col: "Chr"}).
		Add(Facet{Col: "Func", Wrap: true})
	f, _ := p.FacetSpec()
	if f.Col != "Func" || !f.Wrap {
		t.Errorf("facet slot = %+v; want wholesale replacement by {Col: Func, Wrap}", f)
	}
}

func TestComposeMappingMerge(t *testing.T) {
	p := New(variantTable(), Mapping{X: "Start", Y: "DP"})
	if err := p.Compose(Mapping{Y: "Start", Color: "Func"}); err != nil {
		t.Fatalf("Compose(mapping) failed: %v", err)
	}
	want := Mapping{X: "Start", Y: "Start", Color: "Func"}
	if got := p.Mapping(); !reflect.DeepEqual(got, want) {
		t.Errorf("merged mapping = %v; want %v", got, want)
	}
}

func TestComposeThemeReplaces(t *testing.T) {
	p := New(variantTable(), nil)
	th := Theme{Title: "coverage", FontSize: 9}
	if err := p.Compose(th); err != nil {
		t.Fatalf("Compose(theme) failed: %v", err)
	}
	if got := p.ThemeSpec(); got.Title != "coverage" || got.FontSize != 9 || got.Grid {
		t.Errorf("theme = %+v; want wholesale replacement by %+v", got, th)
	}
}

type oddComponent struct{ Layer }

func TestComposeInvalidComponent(t *testing.T) {
	tests := []struct {
		name string
		c    Component
	}{
		{"nil", nil},
		{"foreign type", oddComponent{}},
		{"unknown geometry", Layer{Geom: Geom(99)}},
		{"unknown statistic", Layer{Stat: StatKind(99)}},
		{"unknown position", Layer{Position: Position(99)}},
		{"empty facet", Facet{}},
		{"wrap with two columns", Facet{Row: "Chr", Col: "Func", Wrap: true}},
		{"negative facet columns", Facet{Col: "Chr", Cols: -1}},
		{"empty mapping column", Mapping{X: ""}},
		{"unknown channel", Mapping{Channel("wiggle"): "Start"}},
	}
	for _, test := range tests {
		p := New(variantTable(), nil)
		err := p.Compose(test.c)
		var ice *InvalidComponentError
		if !errors.As(err, &ice) {
			t.Errorf("%s: Compose error = %v; want InvalidComponentError", test.name, err)
		}
	}
}

func TestComposeColumnNotFound(t *testing.T) {
	var cnf *ColumnNotFoundError

	p := New(variantTable(), Mapping{X: "Begin"})
	if err := p.Err(); !errors.As(err, &cnf) || cnf.Column != "Begin" {
		t.Errorf("New with absent column: Err() = %v; want ColumnNotFoundError{Begin}", err)
	}

	p = New(variantTable(), nil)
	err := p.Compose(Layer{Geom: GeomPoint, Mapping: Mapping{X: "Begin"}})
	if !errors.As(err, &cnf) {
		t.Errorf("layer-local absent column: Compose error = %v; want ColumnNotFoundError", err)
	}

	err = New(variantTable(), nil).Compose(Facet{Col: "Chromosome"})
	if !errors.As(err, &cnf) || cnf.Column != "Chromosome" {
		t.Errorf("facet absent column: Compose error = %v; want ColumnNotFoundError{Chromosome}", err)
	}
}

func TestComposeErrIsSticky(t *testing.T) {
	p := New(variantTable(), nil).
		Add(Facet{}).
		Add(Layer{Geom: GeomPoint})
	first := p.Err()
	var ice *InvalidComponentError
	if !errors.As(first, &ice) {
		t.Fatalf("Err() = %v; want the InvalidComponentError from Add(Facet{})", first)
	}
	if len(p.Layers()) != 0 {
		t.Errorf("layer composed after a failed Add; composition should stop at the first error")
	}
	if err := p.Compose(Layer{Geom: GeomPoint}); err != first {
		t.Errorf("Compose on a poisoned plot = %v; want the original error %v", err, first)
	}
}

func TestLayerEffectiveStat(t *testing.T) {
	tests := []struct {
		l    Layer
		want StatKind
	}{
		{Layer{Geom: GeomBar}, StatCount},
		{Layer{Geom: GeomDensity}, StatDensity},
		{Layer{Geom: GeomPoint}, StatIdentity},
		{Layer{Geom: GeomBar, Stat: StatIdentity}, StatIdentity},
		{Layer{Geom: GeomPoint, Stat: StatBin}, StatBin},
	}
	for _, test := range tests {
		if got := test.l.EffectiveStat(); got != test.want {
			t.Errorf("%v/%v EffectiveStat() = %v; want %v", test.l.Geom, test.l.Stat, got, test.want)
		}
	}
}
