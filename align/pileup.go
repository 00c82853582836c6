// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"fmt"
	"os"
	"sort"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/biogo/hts/sam"

	"github.com/gvplot/gvplot/genome"
)

// Coverage returns the read depth at each base of rg. A base is
// covered by a read's match and deletion ops; skipped regions (intron
// gaps), insertions, and clips do not cover.
func Coverage(recs []Record, rg genome.Range) []int64 {
	depth := make([]int64, rg.Len())
	for _, r := range recs {
		pos := r.Start
		for _, co := range r.Cigar {
			t := co.Type()
			n := int64(co.Len()) * int64(t.Consumes().Reference)
			if n == 0 {
				continue
			}
			if t != sam.CigarSkipped {
				lo, hi := pos, pos+n
				if lo < rg.Start {
					lo = rg.Start
				}
				if hi > rg.End {
					hi = rg.End
				}
				for i := lo; i < hi; i++ {
					depth[i-rg.Start]++
				}
			}
			pos += n
		}
	}
	return depth
}

// Mismatches returns, for each base of rg, the number of read bases
// that disagree with the reference. ref holds the reference bases for
// exactly rg, as ReadReference loads them. Case is ignored and an N
// on either side never counts as a mismatch.
func Mismatches(recs []Record, rg genome.Range, ref []byte) []int64 {
	mm := make([]int64, rg.Len())
	for _, r := range recs {
		pos := r.Start // reference cursor
		qi := 0        // read sequence cursor
		for _, co := range r.Cigar {
			con := co.Type().Consumes()
			n := co.Len()
			if con.Query == 1 && con.Reference == 1 {
				for k := 0; k < n; k++ {
					p := pos + int64(k)
					if p < rg.Start || p >= rg.End || qi+k >= len(r.Seq) {
						continue
					}
					b, rb := upper(r.Seq[qi+k]), upper(ref[p-rg.Start])
					if b != rb && b != 'N' && rb != 'N' {
						mm[p-rg.Start]++
					}
				}
			}
			pos += int64(n * con.Reference)
			qi += n * con.Query
		}
	}
	return mm
}

func upper(b byte) byte {
	if 'a' <= b && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// ReadReference returns the reference bases over rg from a FASTA
// file, uppercased. Sequence names match with or without a "chr"
// prefix.
func ReadReference(path string, rg genome.Range) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tmpl := linear.NewSeq("", nil, alphabet.DNAredundant)
	sc := seqio.NewScanner(fasta.NewReader(f, tmpl))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		if !genome.EqualChrom(s.Name(), rg.Chrom) {
			continue
		}
		if rg.Start < 0 || rg.End > int64(s.Len()) {
			return nil, fmt.Errorf("align: %s outside sequence %s of length %d", rg, s.Name(), s.Len())
		}
		out := make([]byte, rg.Len())
		for i := range out {
			out[i] = upper(byte(s.Seq[rg.Start+int64(i)]))
		}
		return out, nil
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("align: read %s: %w", path, err)
	}
	return nil, fmt.Errorf("align: sequence %q not in %s", rg.Chrom, path)
}

// PackReads assigns each read a display lane such that no two reads
// in a lane overlap or touch. Lanes fill greedily in start order,
// leaving a one-base gap between neighbors. The result is parallel
// to recs.
func PackReads(recs []Record) []int {
	order := make([]int, len(recs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return recs[order[a]].Start < recs[order[b]].Start
	})

	lanes := []int64{} // rightmost end per lane
	out := make([]int, len(recs))
	for _, i := range order {
		r := recs[i]
		lane := -1
		for l, end := range lanes {
			if r.Start > end {
				lane = l
				break
			}
		}
		if lane < 0 {
			lane = len(lanes)
			lanes = append(lanes, 0)
		}
		out[i] = lane
		lanes[lane] = r.End
	}
	return out
}
