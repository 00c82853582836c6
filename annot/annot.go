// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package annot reads gene annotation features from GFF files and
// answers overlap queries over them.
package annot

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/biogo/biogo/io/featio"
	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/store/interval"

	"github.com/gvplot/gvplot/genome"
)

// ReadGFF reads the features of a GFF stream. Coordinates in the
// result follow the biogo convention, 0-based half-open.
func ReadGFF(r io.Reader) ([]*gff.Feature, error) {
	sc := featio.NewScanner(gff.NewReader(r))
	var feats []*gff.Feature
	for sc.Next() {
		feats = append(feats, sc.Feat().(*gff.Feature))
	}
	if err := sc.Error(); err != nil {
		return nil, err
	}
	return feats, nil
}

// ReadGFFFile reads all features of the GFF file at path.
func ReadGFFFile(path string) ([]*gff.Feature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	feats, err := ReadGFF(f)
	if err != nil {
		return nil, fmt.Errorf("annot: read %s: %w", path, err)
	}
	return feats, nil
}

// An Index answers overlap queries over a feature set, with one
// interval tree per chromosome.
type Index struct {
	trees map[string]*interval.IntTree
}

// NewIndex builds an overlap index of feats. Chromosome names are
// normalized, so "chr1" and "1" land in the same tree.
func NewIndex(feats []*gff.Feature) (*Index, error) {
	ix := &Index{trees: make(map[string]*interval.IntTree)}
	for i, f := range feats {
		key := chromKey(f.SeqName)
		tree := ix.trees[key]
		if tree == nil {
			tree = &interval.IntTree{}
			ix.trees[key] = tree
		}
		if err := tree.Insert(featInterval{id: uintptr(i), feat: f}, true); err != nil {
			return nil, fmt.Errorf("annot: index %s: %w", f.SeqName, err)
		}
	}
	for _, tree := range ix.trees {
		tree.AdjustRanges()
	}
	return ix, nil
}

// Query returns the features overlapping rg, ordered by start.
func (ix *Index) Query(rg genome.Range) []*gff.Feature {
	tree := ix.trees[chromKey(rg.Chrom)]
	if tree == nil {
		return nil
	}
	var feats []*gff.Feature
	for _, iv := range tree.Get(query{start: int(rg.Start), end: int(rg.End)}) {
		feats = append(feats, iv.(featInterval).feat)
	}
	sort.Slice(feats, func(i, j int) bool {
		if feats[i].FeatStart != feats[j].FeatStart {
			return feats[i].FeatStart < feats[j].FeatStart
		}
		return feats[i].FeatEnd < feats[j].FeatEnd
	})
	return feats
}

type featInterval struct {
	id   uintptr
	feat *gff.Feature
}

func (i featInterval) Overlap(b interval.IntRange) bool {
	return i.feat.FeatStart < b.End && b.Start < i.feat.FeatEnd
}
func (i featInterval) ID() uintptr { return i.id }
func (i featInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.feat.FeatStart, End: i.feat.FeatEnd}
}

type query struct{ start, end int }

func (q query) Overlap(b interval.IntRange) bool { return q.start < b.End && b.Start < q.end }
func (q query) ID() uintptr                      { return 0 }
func (q query) Range() interval.IntRange         { return interval.IntRange{Start: q.start, End: q.end} }

func chromKey(name string) string {
	s := strings.ToUpper(genome.TrimChrom(name))
	if s == "MT" {
		s = "M"
	}
	return s
}
