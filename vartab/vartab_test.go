// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vartab

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/aclements/go-gg/table"

	"github.com/gvplot/gvplot"
)

const sampleCSV = `Chr,Start,End,Ref,Alt,Func,DP,AF,GT
1,100,100,A,G,exonic,10,0.01,0/1
2,50,50,T,C,intronic,20,.,1/1
1,200,201,G,A,exonic,5,0.5,0/1
X,300,300,C,T,intergenic,8,NA,0/0
2,400,400,G,T,UTR3,12,0.25,0/1
`

func sample(t *testing.T) *table.Table {
	t.Helper()
	tab, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	return tab
}

func TestReadCSVTypes(t *testing.T) {
	tab := sample(t)

	wantCols := []string{"Chr", "Start", "End", "Ref", "Alt", "Func", "DP", "AF", "GT"}
	if got := tab.Columns(); !reflect.DeepEqual(got, wantCols) {
		t.Errorf("columns = %v; want %v (order preserved)", got, wantCols)
	}

	// Chromosomes mix numbers and letters, so they stay strings.
	wantChr := []string{"1", "2", "1", "X", "2"}
	if got := tab.MustColumn("Chr").([]string); !reflect.DeepEqual(got, wantChr) {
		t.Errorf("Chr = %v; want %v", got, wantChr)
	}

	// Coordinates and depth are pure integers.
	wantStart := []int64{100, 50, 200, 300, 400}
	if got := tab.MustColumn("Start").([]int64); !reflect.DeepEqual(got, wantStart) {
		t.Errorf("Start = %v; want %v", got, wantStart)
	}
	if _, ok := tab.MustColumn("DP").([]int64); !ok {
		t.Errorf("DP typed %T; want []int64", tab.MustColumn("DP"))
	}

	// Allele frequency has missing markers, so it is float with NaN.
	af, ok := tab.MustColumn("AF").([]float64)
	if !ok {
		t.Fatalf("AF typed %T; want []float64", tab.MustColumn("AF"))
	}
	wantAF := []float64{0.01, math.NaN(), 0.5, math.NaN(), 0.25}
	for i, v := range wantAF {
		if math.IsNaN(v) != math.IsNaN(af[i]) || (!math.IsNaN(v) && af[i] != v) {
			t.Errorf("AF[%d] = %v; want %v", i, af[i], v)
		}
	}

	// Genotypes never parse numerically.
	if _, ok := tab.MustColumn("GT").([]string); !ok {
		t.Errorf("GT typed %T; want []string", tab.MustColumn("GT"))
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		err  string
	}{
		{"empty input", "", "empty input"},
		{"empty column name", "Chr,,DP\n1,2,3\n", "empty name"},
		{"duplicate column", "Chr,DP,DP\n1,2,3\n", "duplicate column"},
		{"ragged row", "Chr,DP\n1,2,3\n", "reading row"},
	}
	for _, test := range tests {
		if _, err := ReadCSV(strings.NewReader(test.in)); err == nil || !strings.Contains(err.Error(), test.err) {
			t.Errorf("%s: ReadCSV error = %v; want %q", test.name, err, test.err)
		}
	}
}

func TestReadCSVHeaderOnly(t *testing.T) {
	tab, err := ReadCSV(strings.NewReader("Chr,Start\n"))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if tab.Len() != 0 || len(tab.Columns()) != 2 {
		t.Errorf("header-only table: Len=%d cols=%v; want 0 rows, 2 columns", tab.Len(), tab.Columns())
	}
}

func TestFilterInExcludesRows(t *testing.T) {
	tab := sample(t)
	keep := []string{"exonic", "intergenic", "intronic"}

	g, err := FilterIn(tab, "Func", keep...)
	if err != nil {
		t.Fatalf("FilterIn failed: %v", err)
	}

	// Faceting the filtered dataset by chromosome must not surface
	// any excluded category in any group.
	set := make(map[string]bool)
	for _, v := range keep {
		set[v] = true
	}
	byChr := table.GroupBy(g, "Chr")
	rows := 0
	for _, gid := range byChr.Tables() {
		sub := byChr.Table(gid)
		rows += sub.Len()
		for _, f := range sub.MustColumn("Func").([]string) {
			if !set[f] {
				t.Errorf("group %v contains excluded category %q", gid, f)
			}
		}
	}
	if rows != 4 {
		t.Errorf("filtered row count = %d; want 4 (UTR3 row excluded)", rows)
	}
}

func TestFilterInNumericColumn(t *testing.T) {
	g, err := FilterIn(sample(t), "DP", "10", "20")
	if err != nil {
		t.Fatalf("FilterIn on int64 column failed: %v", err)
	}
	var got []int64
	for _, gid := range g.Tables() {
		got = append(got, g.Table(gid).MustColumn("DP").([]int64)...)
	}
	if want := []int64{10, 20}; !reflect.DeepEqual(got, want) {
		t.Errorf("FilterIn(DP, 10, 20) rows = %v; want %v", got, want)
	}
}

func TestFilterPredicate(t *testing.T) {
	g, err := Filter(sample(t), func(dp int64) bool { return dp >= 10 }, "DP")
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	for _, gid := range g.Tables() {
		for _, dp := range g.Table(gid).MustColumn("DP").([]int64) {
			if dp < 10 {
				t.Errorf("row with DP=%d leaked through the filter", dp)
			}
		}
	}
}

func TestSelect(t *testing.T) {
	g, err := Select(sample(t), "DP", "Chr")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if got := g.Columns(); !reflect.DeepEqual(got, []string{"DP", "Chr"}) {
		t.Errorf("Select columns = %v; want [DP Chr]", got)
	}
}

func TestMutate(t *testing.T) {
	g, err := Mutate(sample(t), "length", func(start, end, length []int64) {
		for i := range length {
			length[i] = end[i] - start[i] + 1
		}
	}, "Start", "End")
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}
	var got []int64
	for _, gid := range g.Tables() {
		got = append(got, g.Table(gid).MustColumn("length").([]int64)...)
	}
	if want := []int64{1, 1, 2, 1, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("mutated length = %v; want %v", got, want)
	}
}

func TestLevels(t *testing.T) {
	tab := sample(t)

	got, err := Levels(tab, "Chr")
	if err != nil {
		t.Fatalf("Levels failed: %v", err)
	}
	if want := []string{"1", "2", "X"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Levels(Chr) = %v; want %v (first-appearance order)", got, want)
	}

	nat, err := ChromLevels(tab, "Chr")
	if err != nil {
		t.Fatalf("ChromLevels failed: %v", err)
	}
	if want := []string{"1", "2", "X"}; !reflect.DeepEqual(nat, want) {
		t.Errorf("ChromLevels(Chr) = %v; want %v", nat, want)
	}

	// Numeric columns come back formatted.
	dp, err := Levels(tab, "DP")
	if err != nil {
		t.Fatalf("Levels(DP) failed: %v", err)
	}
	if want := []string{"10", "20", "5", "8", "12"}; !reflect.DeepEqual(dp, want) {
		t.Errorf("Levels(DP) = %v; want %v", dp, want)
	}
}

func TestColumnNotFound(t *testing.T) {
	tab := sample(t)
	var cnf *gvplot.ColumnNotFoundError

	if _, err := FilterIn(tab, "Category", "exonic"); !errors.As(err, &cnf) || cnf.Column != "Category" {
		t.Errorf("FilterIn absent column error = %v; want ColumnNotFoundError{Category}", err)
	}
	if _, err := Select(tab, "Chr", "Position"); !errors.As(err, &cnf) {
		t.Errorf("Select absent column error = %v; want ColumnNotFoundError", err)
	}
	if _, err := Levels(tab, "nope"); !errors.As(err, &cnf) {
		t.Errorf("Levels absent column error = %v; want ColumnNotFoundError", err)
	}
}
