// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/scale"
)

// An axis maps one data dimension to pixels, either linearly over a
// numeric domain or by assigning a unit-spaced band to each discrete
// level. Band positions live in level-index space, so a single linear
// pixel mapping serves both kinds.
type axis struct {
	band    bool
	kindSet bool

	// Linear domain.
	min, max float64
	seen     bool
	// fixed pins the domain; expand becomes a no-op. Track lanes
	// use this to share one genomic axis.
	fixed bool

	// Band levels in first-appearance order.
	levels []string
	index  map[string]int

	// format renders a tick value; nil formats with %.6g.
	format func(float64) string
}

func (a *axis) wantBand() error {
	if a.kindSet && !a.band {
		return fmt.Errorf("render: discrete and continuous bindings share one axis")
	}
	a.kindSet, a.band = true, true
	if a.index == nil {
		a.index = make(map[string]int)
	}
	return nil
}

func (a *axis) wantLinear() error {
	if a.kindSet && a.band {
		return fmt.Errorf("render: discrete and continuous bindings share one axis")
	}
	a.kindSet = true
	return nil
}

// level returns the band position of lv, registering it on first use.
func (a *axis) level(lv string) float64 {
	i, ok := a.index[lv]
	if !ok {
		i = len(a.levels)
		a.levels = append(a.levels, lv)
		a.index[lv] = i
	}
	return float64(i)
}

func (a *axis) expand(vs ...float64) {
	if a.fixed {
		return
	}
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !a.seen || v < a.min {
			a.min = v
		}
		if !a.seen || v > a.max {
			a.max = v
		}
		a.seen = true
	}
}

// domain returns the axis bounds in data (or level-index) space.
func (a *axis) domain() (min, max float64) {
	if a.band {
		return -0.5, float64(len(a.levels)) - 0.5
	}
	if !a.seen {
		return 0, 1
	}
	if a.min == a.max {
		return a.min - 1, a.max + 1
	}
	return a.min, a.max
}

// ticks returns tick positions in domain space with their labels, and
// minor tick positions for linear axes.
func (a *axis) ticks(max int) (pos []float64, labels []string, minor []float64) {
	if max < 2 {
		max = 2
	}
	if a.band {
		step := (len(a.levels) + max - 1) / max
		if step < 1 {
			step = 1
		}
		for i := 0; i < len(a.levels); i += step {
			pos = append(pos, float64(i))
			labels = append(labels, a.levels[i])
		}
		return pos, labels, nil
	}

	min, maxd := a.domain()
	ls := scale.Linear{Min: min, Max: maxd}
	o := scale.TickOptions{Max: max}
	major, minorx := ls.Ticks(o)
	labels = make([]string, len(major))
	for i, v := range major {
		if a.format != nil {
			labels[i] = a.format(v)
		} else {
			labels[i] = fmt.Sprintf("%.6g", v)
		}
	}
	return major, labels, minorx
}

// A span maps a data interval to a pixel interval. Y spans run with
// p0 below p1 numerically reversed, so no special casing is needed.
type span struct {
	d0, d1 float64
	p0, p1 float64
}

func (a *axis) span(p0, p1 float64) span {
	d0, d1 := a.domain()
	return span{d0, d1, p0, p1}
}

func (s span) px(v float64) float64 {
	if s.d1 == s.d0 {
		return (s.p0 + s.p1) / 2
	}
	return s.p0 + (v-s.d0)*(s.p1-s.p0)/(s.d1-s.d0)
}
