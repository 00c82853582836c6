// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gvplot

import (
	"fmt"
	"strings"
)

// A MissingAestheticError reports a required channel that neither the
// plot mapping nor the layer's local mapping binds, and that the
// geometry has no default for.
type MissingAestheticError struct {
	Geom    Geom
	Channel Channel
}

func (e *MissingAestheticError) Error() string {
	return fmt.Sprintf("missing aesthetic: geometry %q requires channel %q", e.Geom, e.Channel)
}

// A ColumnNotFoundError reports a mapping, facet, or filter that names
// a column absent from its dataset.
type ColumnNotFoundError struct {
	// Column is the missing column.
	Column string
	// Columns lists the columns the dataset does have.
	Columns []string
}

func (e *ColumnNotFoundError) Error() string {
	if len(e.Columns) == 0 {
		return fmt.Sprintf("column %q not found", e.Column)
	}
	return fmt.Sprintf("column %q not found (dataset has %s)", e.Column, strings.Join(e.Columns, ", "))
}

// An InvalidComponentError reports a value that cannot be composed
// into a plot.
type InvalidComponentError struct {
	Reason string
}

func (e *InvalidComponentError) Error() string {
	return "invalid component: " + e.Reason
}
