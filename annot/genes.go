// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package annot

import (
	"sort"
	"strings"

	"github.com/biogo/biogo/io/featio/gff"

	"github.com/gvplot/gvplot/genome"
)

// A Gene is a gene model assembled from exon features, for drawing as
// a box-and-intron glyph.
type Gene struct {
	Name   string
	Chrom  string
	Start  int64 // 0-based, spanning all exons
	End    int64 // exclusive
	Strand int8  // +1 forward, -1 reverse, 0 unknown
	Exons  []genome.Range
}

// Length returns the genomic span of the model.
func (g Gene) Length() int64 { return g.End - g.Start }

// geneTags are the grouping attributes tried in order when naming a
// model.
var geneTags = []string{"gene_name", "gene_id", "gene", "Name", "transcript_id", "ID"}

// Genes assembles gene models from feats, grouping exons by their
// gene attribute. Features typed "exon" are used when present;
// otherwise every feature contributes. Models appear in
// first-appearance order with exons sorted by start.
func Genes(feats []*gff.Feature) []Gene {
	exons := feats
	var only []*gff.Feature
	for _, f := range feats {
		if strings.EqualFold(f.Feature, "exon") {
			only = append(only, f)
		}
	}
	if len(only) > 0 {
		exons = only
	}

	type key struct{ name, chrom string }
	idx := make(map[key]int)
	var genes []Gene
	for _, f := range exons {
		k := key{geneName(f), chromKey(f.SeqName)}
		i, ok := idx[k]
		if !ok {
			i = len(genes)
			idx[k] = i
			genes = append(genes, Gene{
				Name:   k.name,
				Chrom:  f.SeqName,
				Start:  int64(f.FeatStart),
				End:    int64(f.FeatEnd),
				Strand: int8(f.FeatStrand),
			})
		}
		g := &genes[i]
		if s := int64(f.FeatStart); s < g.Start {
			g.Start = s
		}
		if e := int64(f.FeatEnd); e > g.End {
			g.End = e
		}
		g.Exons = append(g.Exons, genome.Range{Chrom: f.SeqName, Start: int64(f.FeatStart), End: int64(f.FeatEnd)})
	}

	for i := range genes {
		exons := genes[i].Exons
		sort.Slice(exons, func(a, b int) bool { return exons[a].Start < exons[b].Start })
	}
	return genes
}

func geneName(f *gff.Feature) string {
	for _, tag := range geneTags {
		if v := f.FeatAttributes.Get(tag); v != "" {
			return strings.Trim(v, `"`)
		}
	}
	return ""
}
