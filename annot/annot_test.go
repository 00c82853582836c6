// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package annot

import (
	"strings"
	"testing"

	"github.com/biogo/biogo/seq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gvplot/gvplot/genome"
)

// Coordinates below are GFF 1-based inclusive; the reader converts to
// 0-based half-open.
const testGFF = `##gff-version 2
chr1	test	exon	11	20	.	+	.	gene_id alpha; transcript_id alpha.1
chr1	test	exon	31	40	.	+	.	gene_id alpha; transcript_id alpha.1
chr1	test	exon	61	70	.	-	.	gene_id beta
chr2	test	exon	11	25	.	+	.	gene_id gamma
`

func TestReadGFF(t *testing.T) {
	feats, err := ReadGFF(strings.NewReader(testGFF))
	require.NoError(t, err)
	require.Len(t, feats, 4)

	f := feats[0]
	assert.Equal(t, "chr1", f.SeqName)
	assert.Equal(t, "exon", f.Feature)
	assert.Equal(t, 10, f.FeatStart)
	assert.Equal(t, 20, f.FeatEnd)
	assert.Equal(t, seq.Plus, f.FeatStrand)
	assert.Equal(t, "alpha", f.FeatAttributes.Get("gene_id"))
	assert.Equal(t, seq.Minus, feats[2].FeatStrand)
}

func TestIndexQuery(t *testing.T) {
	feats, err := ReadGFF(strings.NewReader(testGFF))
	require.NoError(t, err)
	ix, err := NewIndex(feats)
	require.NoError(t, err)

	got := ix.Query(genome.Range{Chrom: "chr1", Start: 15, End: 35})
	require.Len(t, got, 2)
	assert.Equal(t, 10, got[0].FeatStart)
	assert.Equal(t, 30, got[1].FeatStart)

	// Chromosome naming is normalized.
	assert.Equal(t, got, ix.Query(genome.Range{Chrom: "1", Start: 15, End: 35}))

	assert.Empty(t, ix.Query(genome.Range{Chrom: "chr1", Start: 45, End: 55}))
	assert.Empty(t, ix.Query(genome.Range{Chrom: "chr3", Start: 0, End: 100}))

	// Half-open: a query starting at an exon's end does not hit it.
	assert.Empty(t, ix.Query(genome.Range{Chrom: "chr1", Start: 20, End: 21}))
	assert.Len(t, ix.Query(genome.Range{Chrom: "chr1", Start: 19, End: 20}), 1)
}

func TestGenes(t *testing.T) {
	feats, err := ReadGFF(strings.NewReader(testGFF))
	require.NoError(t, err)

	want := []Gene{
		{
			Name: "alpha", Chrom: "chr1", Start: 10, End: 40, Strand: 1,
			Exons: []genome.Range{
				{Chrom: "chr1", Start: 10, End: 20},
				{Chrom: "chr1", Start: 30, End: 40},
			},
		},
		{
			Name: "beta", Chrom: "chr1", Start: 60, End: 70, Strand: -1,
			Exons: []genome.Range{{Chrom: "chr1", Start: 60, End: 70}},
		},
		{
			Name: "gamma", Chrom: "chr2", Start: 10, End: 25, Strand: 1,
			Exons: []genome.Range{{Chrom: "chr2", Start: 10, End: 25}},
		},
	}
	assert.Equal(t, want, Genes(feats))
}

func TestGenesExonsOnly(t *testing.T) {
	const gtf = `##gff-version 2
chr1	test	gene	1	100	.	+	.	gene_id wide
chr1	test	exon	11	20	.	+	.	gene_id narrow
`
	feats, err := ReadGFF(strings.NewReader(gtf))
	require.NoError(t, err)

	genes := Genes(feats)
	require.Len(t, genes, 1)
	assert.Equal(t, "narrow", genes[0].Name)
	assert.Equal(t, int64(10), genes[0].Start)
	assert.Equal(t, int64(20), genes[0].End)
}

func TestGenesNoExonType(t *testing.T) {
	const gtf = `##gff-version 2
chr1	test	region	1	50	.	+	.	gene_id only
`
	feats, err := ReadGFF(strings.NewReader(gtf))
	require.NoError(t, err)

	genes := Genes(feats)
	require.Len(t, genes, 1)
	assert.Equal(t, "only", genes[0].Name)
	assert.Equal(t, []genome.Range{{Chrom: "chr1", Start: 0, End: 50}}, genes[0].Exons)
}
