// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package genome

import (
	"sort"
	"strconv"
	"strings"
)

// Chromosome names sort in the conventional karyotype order rather
// than lexically: numbered chromosomes ascending, then X, Y, and the
// mitochondrial contig, then everything else alphabetically. A leading
// "chr" prefix is ignored for ordering and equality, so "chr2" sorts
// before "chr10" and equals "2".

type chromKey struct {
	class int
	num   int64
	rest  string
}

func keyOf(name string) chromKey {
	s := TrimChrom(name)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return chromKey{class: 0, num: n}
	}
	switch strings.ToUpper(s) {
	case "X":
		return chromKey{class: 1}
	case "Y":
		return chromKey{class: 2}
	case "M", "MT":
		return chromKey{class: 3}
	}
	return chromKey{class: 4, rest: s}
}

// TrimChrom removes a leading "chr" prefix, if any, from a chromosome
// name.
func TrimChrom(name string) string {
	if len(name) >= 3 && strings.EqualFold(name[:3], "chr") {
		return name[3:]
	}
	return name
}

// EqualChrom reports whether two chromosome names refer to the same
// sequence. The comparison ignores a leading "chr" prefix and treats
// "M" and "MT" as the same contig.
func EqualChrom(a, b string) bool {
	ka, kb := keyOf(a), keyOf(b)
	if ka.class != kb.class || ka.num != kb.num {
		return false
	}
	return strings.EqualFold(ka.rest, kb.rest)
}

// ChromLess reports whether chromosome a sorts before b in karyotype
// order.
func ChromLess(a, b string) bool {
	ka, kb := keyOf(a), keyOf(b)
	if ka.class != kb.class {
		return ka.class < kb.class
	}
	if ka.num != kb.num {
		return ka.num < kb.num
	}
	return ka.rest < kb.rest
}

// SortChroms sorts chromosome names in place in karyotype order.
func SortChroms(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return ChromLess(names[i], names[j])
	})
}

// ChromLevels returns the distinct chromosome names in vals, in
// karyotype order. It is the level order to hand a facet or a
// categorical axis so that "1".."22" precede "X" and "Y".
func ChromLevels(vals []string) []string {
	seen := make(map[string]bool)
	var levels []string
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			levels = append(levels, v)
		}
	}
	SortChroms(levels)
	return levels
}
