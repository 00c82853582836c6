// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gvplot

// A Channel is a visual channel that a dataset column can be bound to.
type Channel string

// The visual channels. X and Y are positions; XEnd and YEnd are the
// far edges of interval geometries such as GeomRect. Group splits
// path-like geometries without any visual effect of its own.
const (
	X     Channel = "x"
	XEnd  Channel = "xend"
	Y     Channel = "y"
	YEnd  Channel = "yend"
	Color Channel = "color"
	Fill  Channel = "fill"
	Shape Channel = "shape"
	Size  Channel = "size"
	Alpha Channel = "alpha"
	Group Channel = "group"
	Label Channel = "label"
)

// channelOrder fixes the iteration order over mapping channels so that
// validation errors are deterministic.
var channelOrder = []Channel{X, XEnd, Y, YEnd, Color, Fill, Shape, Size, Alpha, Group, Label}

// A Mapping binds visual channels to dataset column names. Constant
// visual values are not mapped; they are layer Params.
//
// A Mapping is itself a Component: composing one into a plot merges it
// into the plot-level mapping channel by channel, with the composed
// bindings winning where both name the same channel.
type Mapping map[Channel]string

func (Mapping) component() {}

func (m Mapping) clone() Mapping {
	n := make(Mapping, len(m))
	for ch, col := range m {
		n[ch] = col
	}
	return n
}

// merge returns the dictionary union of m and over, with over winning
// on channels present in both. Neither input is modified.
func (m Mapping) merge(over Mapping) Mapping {
	n := m.clone()
	for ch, col := range over {
		n[ch] = col
	}
	return n
}

func (m Mapping) validate() error {
	for ch, col := range m {
		if !knownChannel(ch) {
			return &InvalidComponentError{Reason: "unknown channel " + string(ch)}
		}
		if col == "" {
			return &InvalidComponentError{Reason: "empty column name for channel " + string(ch)}
		}
	}
	return nil
}

func knownChannel(ch Channel) bool {
	for _, k := range channelOrder {
		if ch == k {
			return true
		}
	}
	return false
}
