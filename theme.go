// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gvplot

import (
	"image/color"

	"github.com/aclements/go-gg/palette"
)

// A Theme carries the visual parameters that are not data driven:
// titles, sizes, and color palettes. Composing a Theme replaces the
// plot's theme wholesale; start from DefaultTheme or ThemeSpec when
// only some fields should change.
type Theme struct {
	Title  string
	XLabel string
	YLabel string

	// Palette maps [0, 1] to colors for continuous color and fill
	// scales.
	Palette palette.Continuous
	// Colors is cycled over the levels of discrete color and fill
	// scales.
	Colors []color.RGBA

	// PointSize is the default marker diameter in pixels.
	PointSize float64
	// LineWidth is the default stroke width in pixels.
	LineWidth float64
	// FontSize is the label and tick font size in pixels.
	FontSize float64
	// BarWidth is the filled fraction of each bar or rect slot.
	BarWidth float64

	// Grid draws background grid lines at major ticks.
	Grid bool
	// Background fills the panel background; nil leaves it unfilled.
	Background color.Color
}

func (Theme) component() {}

// Viridis is a compact rendition of the perceptually uniform viridis
// colormap, dark purple through teal to yellow.
var Viridis palette.Continuous = palette.RGBGradient{
	Colors: []color.RGBA{
		{0x44, 0x01, 0x54, 0xff},
		{0x46, 0x30, 0x7e, 0xff},
		{0x3b, 0x52, 0x8b, 0xff},
		{0x2c, 0x72, 0x8e, 0xff},
		{0x21, 0x91, 0x8c, 0xff},
		{0x28, 0xae, 0x80, 0xff},
		{0x5e, 0xc9, 0x62, 0xff},
		{0xb5, 0xde, 0x2b, 0xff},
		{0xfd, 0xe7, 0x25, 0xff},
	},
}

// DefaultTheme returns the theme used by plots that have not composed
// one: viridis for continuous scales, an eight-color categorical
// cycle, and a light gridded panel.
func DefaultTheme() Theme {
	return Theme{
		Palette: Viridis,
		Colors: []color.RGBA{
			{0x44, 0x77, 0xaa, 0xff},
			{0xee, 0x66, 0x77, 0xff},
			{0x22, 0x88, 0x33, 0xff},
			{0xcc, 0xbb, 0x44, 0xff},
			{0x66, 0xcc, 0xee, 0xff},
			{0xaa, 0x33, 0x77, 0xff},
			{0xbb, 0xbb, 0xbb, 0xff},
			{0x22, 0x22, 0x22, 0xff},
		},
		PointSize:  3,
		LineWidth:  1.5,
		FontSize:   12,
		BarWidth:   0.9,
		Grid:       true,
		Background: color.RGBA{0xfa, 0xfa, 0xfa, 0xff},
	}
}

// CategoryColor returns the categorical color for level index i,
// cycling through the theme's Colors.
func (t Theme) CategoryColor(i int) color.RGBA {
	if len(t.Colors) == 0 {
		t = DefaultTheme()
	}
	return t.Colors[i%len(t.Colors)]
}
