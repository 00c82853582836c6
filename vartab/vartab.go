// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vartab loads genomic variant annotation tables and derives
// new tables from them.
//
// Tables are comma-separated files whose first row names the columns,
// in the style of annotated variant exports: chromosome, start and end
// positions, allele frequencies, genotype calls, read depth, and
// functional category. Columns are typed by best-effort inference, so
// coordinate and depth columns arrive ready for numeric axes while
// category columns stay textual.
package vartab

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/table"
)

// A ValueParser parses one raw cell into a structured value, or
// returns an error if the cell cannot be parsed. All cells of a column
// must parse under a single ValueParser for the column to take that
// parser's type, and a ValueParser must return values of one
// consistent type.
type ValueParser func(string) (interface{}, error)

// DefaultValueParsers is the sequence of value parsers ReadCSV tries,
// in priority order, before falling back to strings. Missing cells
// ("", ".", "NA") fail integer parsing but become NaN under float
// parsing, so a numeric column with gaps is typed []float64.
var DefaultValueParsers = []ValueParser{
	func(s string) (interface{}, error) { return strconv.ParseInt(s, 10, 64) },
	func(s string) (interface{}, error) {
		if missing(s) {
			return math.NaN(), nil
		}
		return strconv.ParseFloat(s, 64)
	},
}

func missing(s string) bool {
	return s == "" || s == "." || s == "NA"
}

// ReadCSV reads a comma-separated variant table from r. The first
// record is the header; every column is typed by the earliest parser
// in parsers that accepts all of its cells, falling back to the raw
// strings. If parsers is nil, DefaultValueParsers is used.
//
// The resulting table preserves column order and is independent of r.
func ReadCSV(r io.Reader, parsers ...ValueParser) (*table.Table, error) {
	if parsers == nil {
		parsers = DefaultValueParsers
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("reading header: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	seen := make(map[string]bool)
	for i, name := range header {
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = true
	}

	cols := make([][]string, len(header))
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		for i, cell := range rec {
			cols[i] = append(cols[i], strings.TrimSpace(cell))
		}
	}

	b := new(table.Builder)
	for i, name := range header {
		b.Add(name, buildColumn(cols[i], parsers))
	}
	return b.Done(), nil
}

// ReadCSVFile reads the variant table in the named file.
func ReadCSVFile(path string, parsers ...ValueParser) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := ReadCSV(f, parsers...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// buildColumn types one column of raw cells: the earliest parser that
// accepts every cell wins, otherwise the cells stay strings.
func buildColumn(raw []string, parsers []ValueParser) table.Slice {
	if len(raw) == 0 {
		return []string{}
	}
tryParsers:
	for _, vp := range parsers {
		vals := make([]interface{}, len(raw))
		for i, s := range raw {
			v, err := vp(s)
			if err != nil {
				continue tryParsers
			}
			vals[i] = v
		}
		switch vals[0].(type) {
		case int64:
			out := make([]int64, len(vals))
			for i, v := range vals {
				out[i] = v.(int64)
			}
			return out
		case float64:
			out := make([]float64, len(vals))
			for i, v := range vals {
				out[i] = v.(float64)
			}
			return out
		case string:
			out := make([]string, len(vals))
			for i, v := range vals {
				out[i] = v.(string)
			}
			return out
		default:
			// Unsupported column type; try the next parser.
		}
	}
	return append([]string(nil), raw...)
}
