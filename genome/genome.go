// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package genome provides genomic coordinate ranges and natural
// chromosome ordering for axes, facets, and range queries.
package genome

import (
	"fmt"
	"strconv"
	"strings"
)

// A Range is a half-open, zero-based interval [Start, End) on a named
// chromosome or contig.
type Range struct {
	Chrom string
	Start int64
	End   int64
}

// Len returns the number of bases spanned by r.
func (r Range) Len() int64 {
	return r.End - r.Start
}

// Overlaps reports whether r and s share at least one base. Ranges on
// different chromosomes never overlap. Chromosome names are compared
// with EqualChrom, so "chr22" overlaps "22".
func (r Range) Overlaps(s Range) bool {
	return EqualChrom(r.Chrom, s.Chrom) && r.Start < s.End && s.Start < r.End
}

// Contains reports whether position pos on chrom falls within r.
func (r Range) Contains(chrom string, pos int64) bool {
	return EqualChrom(r.Chrom, chrom) && r.Start <= pos && pos < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}

// ParseRange parses a region of the form "chrom:start-end", such as
// "22:16050000-16060000" or "chr22:16,050,000-16,060,000". Digit
// grouping commas are ignored and the chromosome name is kept as
// written. The interval is half open, so "22:100-200" spans bases
// 100 through 199.
func ParseRange(s string) (Range, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return Range{}, fmt.Errorf("malformed range %q: want chrom:start-end", s)
	}
	chrom, span := s[:i], s[i+1:]
	j := strings.Index(span, "-")
	if j < 0 {
		return Range{}, fmt.Errorf("malformed range %q: missing start-end separator", s)
	}
	start, err := parseCoord(span[:j])
	if err != nil {
		return Range{}, fmt.Errorf("malformed range %q: %v", s, err)
	}
	end, err := parseCoord(span[j+1:])
	if err != nil {
		return Range{}, fmt.Errorf("malformed range %q: %v", s, err)
	}
	if end < start {
		return Range{}, fmt.Errorf("malformed range %q: end precedes start", s)
	}
	return Range{Chrom: chrom, Start: start, End: end}, nil
}

func parseCoord(s string) (int64, error) {
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad coordinate %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative coordinate %q", s)
	}
	return v, nil
}
