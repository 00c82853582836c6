// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package align reads aligned sequencing reads from indexed BAM files
// and derives per-base pileup statistics from them.
package align

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/gvplot/gvplot/genome"
)

// ErrNoReads reports a range query that overlapped no reads. It is
// not fatal: a region with no coverage still renders, as an empty
// lane.
var ErrNoReads = errors.New("align: no reads in range")

// Record is one aligned read returned by a range query.
type Record struct {
	Name    string
	Start   int64 // 0-based reference start
	End     int64 // exclusive reference end
	MapQ    byte
	Flags   sam.Flags
	Cigar   sam.Cigar
	Seq     []byte // expanded read bases
	Reverse bool
}

// Len returns the reference span of the read.
func (r Record) Len() int64 { return r.End - r.Start }

// A Reader answers range queries over a coordinate-sorted BAM file
// with a BAI index.
type Reader struct {
	f   *os.File
	b   *bam.Reader
	idx *bam.Index
}

// Open opens the BAM file at path along with its index, found at
// path+".bai" or with ".bam" replaced by ".bai".
func Open(path string) (*Reader, error) {
	return OpenIndexed(path, "")
}

// OpenIndexed opens the BAM file at path with an explicit BAI index
// location. An empty ipath searches next to the BAM file.
func OpenIndexed(path, ipath string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	b, err := bam.NewReader(f, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("align: open %s: %w", path, err)
	}

	if ipath == "" {
		ipath, err = indexPath(path)
		if err != nil {
			f.Close()
			return nil, err
		}
	}
	fi, err := os.Open(ipath)
	if err != nil {
		f.Close()
		return nil, err
	}
	idx, err := bam.ReadIndex(fi)
	fi.Close()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("align: read index %s: %w", ipath, err)
	}

	return &Reader{f: f, b: b, idx: idx}, nil
}

func indexPath(path string) (string, error) {
	try := []string{path + ".bai", strings.TrimSuffix(path, ".bam") + ".bai"}
	for _, p := range try {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("align: no index for %s (tried %s)", path, strings.Join(try, ", "))
}

// Close closes the BAM file.
func (r *Reader) Close() error {
	err := r.b.Close()
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Refs returns the reference sequences declared in the BAM header as
// whole-chromosome ranges.
func (r *Reader) Refs() []genome.Range {
	refs := r.b.Header().Refs()
	out := make([]genome.Range, len(refs))
	for i, ref := range refs {
		out[i] = genome.Range{Chrom: ref.Name(), Start: 0, End: int64(ref.Len())}
	}
	return out
}

// Query returns the primary mapped reads overlapping rg, in file
// order. Reference names match with or without a "chr" prefix.
// Secondary, supplementary, duplicate, and QC-failed reads are
// dropped. If no read overlaps rg, Query returns an error satisfying
// errors.Is(err, ErrNoReads).
func (r *Reader) Query(rg genome.Range) ([]Record, error) {
	ref := refByName(r.b.Header(), rg.Chrom)
	if ref == nil {
		return nil, fmt.Errorf("align: reference %q not in BAM header", rg.Chrom)
	}

	chunks, err := r.idx.Chunks(ref, int(rg.Start), int(rg.End))
	if err != nil {
		// The index reports intervals it holds nothing for as an
		// error; fold that into the empty result.
		return nil, fmt.Errorf("%s: %w", rg, ErrNoReads)
	}
	it, err := bam.NewIterator(r.b, chunks)
	if err != nil {
		return nil, fmt.Errorf("align: query %s: %w", rg, err)
	}

	var recs []Record
	for it.Next() {
		sr := it.Record()
		if !keep(sr, ref, rg) {
			continue
		}
		recs = append(recs, fromSAM(sr))
	}
	if err := it.Close(); err != nil {
		return nil, fmt.Errorf("align: query %s: %w", rg, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%s: %w", rg, ErrNoReads)
	}
	return recs, nil
}

const dropFlags = sam.Unmapped | sam.Secondary | sam.Supplementary | sam.Duplicate | sam.QCFail

// keep reports whether a read from the index chunks actually belongs
// in the result. Index bins are coarse, so chunks can hold reads
// outside rg.
func keep(r *sam.Record, ref *sam.Reference, rg genome.Range) bool {
	if r.Flags&dropFlags != 0 {
		return false
	}
	if r.Ref == nil || r.Ref.ID() != ref.ID() {
		return false
	}
	return int64(r.Start()) < rg.End && int64(r.End()) > rg.Start
}

func fromSAM(r *sam.Record) Record {
	return Record{
		Name:    r.Name,
		Start:   int64(r.Start()),
		End:     int64(r.End()),
		MapQ:    r.MapQ,
		Flags:   r.Flags,
		Cigar:   r.Cigar,
		Seq:     r.Seq.Expand(),
		Reverse: r.Flags&sam.Reverse != 0,
	}
}

func refByName(h *sam.Header, chrom string) *sam.Reference {
	for _, ref := range h.Refs() {
		if ref.Name() == chrom {
			return ref
		}
	}
	for _, ref := range h.Refs() {
		if genome.EqualChrom(ref.Name(), chrom) {
			return ref
		}
	}
	return nil
}
