// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/biogo/hts/sam"

	"github.com/gvplot/gvplot/genome"
)

func op(t sam.CigarOpType, n int) sam.CigarOp { return sam.NewCigarOp(t, n) }

func TestCoverage(t *testing.T) {
	rg := genome.Range{Chrom: "chr1", Start: 100, End: 120}
	recs := []Record{
		{Name: "a", Start: 95, Cigar: sam.Cigar{op(sam.CigarMatch, 10)}},
		{Name: "b", Start: 102, Cigar: sam.Cigar{op(sam.CigarMatch, 4), op(sam.CigarDeletion, 2), op(sam.CigarMatch, 3)}},
		{Name: "c", Start: 104, Cigar: sam.Cigar{op(sam.CigarMatch, 3), op(sam.CigarSkipped, 5), op(sam.CigarMatch, 4)}},
		{Name: "d", Start: 118, Cigar: sam.Cigar{op(sam.CigarMatch, 5)}},
	}

	got := Coverage(recs, rg)
	// Deletions deepen coverage, the skip in read c does not, and
	// reads a and d clip to the range.
	want := []int64{1, 1, 2, 2, 3, 2, 2, 1, 1, 1, 1, 0, 1, 1, 1, 1, 0, 0, 1, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Coverage = %v, want %v", got, want)
	}
}

func TestCoverageEmpty(t *testing.T) {
	rg := genome.Range{Chrom: "chr1", Start: 100, End: 105}
	if got, want := Coverage(nil, rg), []int64{0, 0, 0, 0, 0}; !reflect.DeepEqual(got, want) {
		t.Errorf("Coverage = %v, want %v", got, want)
	}
}

func TestMismatches(t *testing.T) {
	rg := genome.Range{Chrom: "chr1", Start: 100, End: 110}
	ref := []byte("ACGTACGTAC")
	recs := []Record{
		// One mismatch at the final base.
		{Start: 100, Cigar: sam.Cigar{op(sam.CigarMatch, 5)}, Seq: []byte("ACGTT")},
		// Soft clip offsets the read bases; the N never counts.
		{Start: 102, Cigar: sam.Cigar{op(sam.CigarSoftClipped, 2), op(sam.CigarMatch, 4)}, Seq: []byte("GGGTNC")},
		// Insertion consumes read bases only; one mismatch before it.
		{Start: 98, Cigar: sam.Cigar{op(sam.CigarMatch, 4), op(sam.CigarInsertion, 1), op(sam.CigarMatch, 3)}, Seq: []byte("TTAGCGTA")},
		// Case does not matter.
		{Start: 106, Cigar: sam.Cigar{op(sam.CigarMatch, 3)}, Seq: []byte("gta")},
	}

	got := Mismatches(recs, rg, ref)
	want := []int64{0, 1, 0, 0, 1, 0, 0, 0, 0, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Mismatches = %v, want %v", got, want)
	}
}

func TestPackReads(t *testing.T) {
	recs := []Record{
		{Name: "r0", Start: 0, End: 10},
		{Name: "r1", Start: 5, End: 15},
		{Name: "r2", Start: 11, End: 20},
		{Name: "r3", Start: 30, End: 40},
		{Name: "r4", Start: 12, End: 18},
	}
	if got, want := PackReads(recs), []int{0, 1, 0, 0, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("PackReads = %v, want %v", got, want)
	}
}

func TestPackReadsTouching(t *testing.T) {
	// End is exclusive, but lanes keep a one-base gap, so a read
	// starting exactly at another's end shares no lane with it.
	recs := []Record{
		{Start: 0, End: 10},
		{Start: 10, End: 20},
		{Start: 11, End: 25},
	}
	if got, want := PackReads(recs), []int{0, 1, 0}; !reflect.DeepEqual(got, want) {
		t.Errorf("PackReads = %v, want %v", got, want)
	}
	if got := PackReads(nil); len(got) != 0 {
		t.Errorf("PackReads(nil) = %v, want empty", got)
	}
}

const testFASTA = `>chr1 test sequence
ACGTacgtAC
GTNNACGTAC
>2
TTTT
`

func TestReadReference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.fa")
	if err := os.WriteFile(path, []byte(testFASTA), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadReference(path, genome.Range{Chrom: "chr1", Start: 2, End: 12})
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte("GTACGTACGT"); !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}

	// Prefix-insensitive both ways.
	got, err = ReadReference(path, genome.Range{Chrom: "1", Start: 12, End: 14})
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte("NN"); !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
	got, err = ReadReference(path, genome.Range{Chrom: "chr2", Start: 0, End: 4})
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte("TTTT"); !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}

	if _, err := ReadReference(path, genome.Range{Chrom: "chr1", Start: 15, End: 25}); err == nil {
		t.Error("out of bounds: got nil error")
	}
	if _, err := ReadReference(path, genome.Range{Chrom: "chr5", Start: 0, End: 1}); err == nil {
		t.Error("unknown sequence: got nil error")
	}
}
