// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gvplot

import (
	"fmt"
	"image/color"

	"github.com/aclements/go-gg/table"
)

// A Geom is the visual shape a layer uses to represent rows.
type Geom int

const (
	// GeomPoint draws one marker per row at (x, y).
	GeomPoint Geom = iota
	// GeomLine draws rows connected in x order.
	GeomLine
	// GeomArea fills between y and the x axis.
	GeomArea
	// GeomBar draws one bar per x category. Its default statistic
	// counts rows per category; with StatIdentity, y gives the bar
	// height directly.
	GeomBar
	// GeomBox draws a five-number summary box per x category.
	GeomBox
	// GeomViolin draws a density silhouette per x category.
	GeomViolin
	// GeomDensity draws a kernel density estimate of x.
	GeomDensity
	// GeomRect draws one horizontal interval per row from x to xend,
	// used for genomic span tracks.
	GeomRect
	// GeomText draws the label column's text at (x, y).
	GeomText
)

var geomNames = [...]string{
	GeomPoint:   "point",
	GeomLine:    "line",
	GeomArea:    "area",
	GeomBar:     "bar",
	GeomBox:     "box",
	GeomViolin:  "violin",
	GeomDensity: "density",
	GeomRect:    "rect",
	GeomText:    "text",
}

func (g Geom) String() string {
	if g < 0 || int(g) >= len(geomNames) {
		return fmt.Sprintf("Geom(%d)", int(g))
	}
	return geomNames[g]
}

// ParseGeom returns the Geom named by s ("point", "bar", ...).
func ParseGeom(s string) (Geom, error) {
	for g, name := range geomNames {
		if s == name {
			return Geom(g), nil
		}
	}
	return 0, fmt.Errorf("unknown geometry %q", s)
}

// A StatKind names the statistical transform applied to a layer's data
// before its geometry is drawn.
type StatKind int

const (
	// StatDefault lets the geometry choose: count for bars, density
	// for density curves, identity for everything else.
	StatDefault StatKind = iota
	// StatIdentity draws rows as they are.
	StatIdentity
	// StatCount counts rows per x value.
	StatCount
	// StatBin counts rows in equal-width x intervals.
	StatBin
	// StatDensity estimates the probability density of x.
	StatDensity
)

var statNames = [...]string{
	StatDefault:  "default",
	StatIdentity: "identity",
	StatCount:    "count",
	StatBin:      "bin",
	StatDensity:  "density",
}

func (s StatKind) String() string {
	if s < 0 || int(s) >= len(statNames) {
		return fmt.Sprintf("StatKind(%d)", int(s))
	}
	return statNames[s]
}

// A Position adjusts marks that would otherwise overlap.
type Position int

const (
	PositionIdentity Position = iota
	// PositionStack stacks grouped bars on top of one another.
	PositionStack
	// PositionDodge places grouped bars side by side.
	PositionDodge
	// PositionJitter perturbs point positions within a category slot.
	PositionJitter
)

var positionNames = [...]string{
	PositionIdentity: "identity",
	PositionStack:    "stack",
	PositionDodge:    "dodge",
	PositionJitter:   "jitter",
}

func (p Position) String() string {
	if p < 0 || int(p) >= len(positionNames) {
		return fmt.Sprintf("Position(%d)", int(p))
	}
	return positionNames[p]
}

// Params are fixed visual values for a layer, used where a channel is
// not mapped to a column. The zero value defers to the theme.
type Params struct {
	// Color and Fill override the theme's stroke and fill colors.
	Color color.Color
	Fill  color.Color
	// Size is the marker diameter or line width in pixels.
	Size float64
	// Alpha is the opacity in (0, 1]; 0 means opaque.
	Alpha float64
	// Width is the filled fraction of a bar or rect slot, or the
	// jitter amplitude for PositionJitter.
	Width float64
	// Bins is the bin count for StatBin; 0 picks a default.
	Bins int
}

// A Layer is one visual representation of data: a geometry, the
// statistic feeding it, a position adjustment, and optional local
// overrides for the plot's dataset and mapping. Layers are composed by
// value and never mutated afterwards.
type Layer struct {
	Geom     Geom
	Stat     StatKind
	Position Position

	// Data, when non-nil, replaces the plot's dataset for this layer
	// only.
	Data table.Grouping
	// Mapping, channel by channel, overrides the plot-level mapping
	// for this layer only.
	Mapping Mapping

	Params Params
}

func (Layer) component() {}

// EffectiveStat resolves StatDefault to the geometry's default
// statistic.
func (l Layer) EffectiveStat() StatKind {
	if l.Stat != StatDefault {
		return l.Stat
	}
	switch l.Geom {
	case GeomBar:
		return StatCount
	case GeomDensity:
		return StatDensity
	}
	return StatIdentity
}

// RequiredChannels returns the channels that must resolve for the
// layer to render. Statistics that derive y themselves (count, bin,
// density) lift the y requirement.
func (l Layer) RequiredChannels() []Channel {
	var req []Channel
	switch l.Geom {
	case GeomPoint, GeomLine, GeomArea, GeomBar:
		req = []Channel{X, Y}
	case GeomBox, GeomViolin:
		req = []Channel{Y}
	case GeomDensity:
		req = []Channel{X}
	case GeomRect:
		req = []Channel{X, XEnd}
	case GeomText:
		req = []Channel{X, Y, Label}
	}
	switch l.EffectiveStat() {
	case StatCount, StatBin, StatDensity:
		out := req[:0:0]
		for _, ch := range req {
			if ch != Y {
				out = append(out, ch)
			}
		}
		req = out
	}
	return req
}

func (l Layer) validate() error {
	if l.Geom < 0 || int(l.Geom) >= len(geomNames) {
		return &InvalidComponentError{Reason: fmt.Sprintf("unknown geometry %d", int(l.Geom))}
	}
	if l.Stat < 0 || int(l.Stat) >= len(statNames) {
		return &InvalidComponentError{Reason: fmt.Sprintf("unknown statistic %d", int(l.Stat))}
	}
	if l.Position < 0 || int(l.Position) >= len(positionNames) {
		return &InvalidComponentError{Reason: fmt.Sprintf("unknown position %d", int(l.Position))}
	}
	return l.Mapping.validate()
}
