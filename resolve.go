// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gvplot

// ResolveChannels computes the effective channel bindings for one
// layer: the layer's local mapping overrides the plot mapping channel
// by channel. Every referenced column must exist in the layer's
// effective dataset.
func (p *Plot) ResolveChannels(l Layer) (Mapping, error) {
	eff := p.mapping.merge(l.Mapping)
	data := l.Data
	if data == nil {
		data = p.data
	}
	if err := checkColumns(data, eff); err != nil {
		return nil, err
	}
	return eff, nil
}

// Resolve computes the effective bindings for every layer, in layer
// order, and verifies that each geometry's required channels are
// bound. A plot is renderable only if Resolve succeeds; renderers call
// it before emitting any output.
func (p *Plot) Resolve() ([]Mapping, error) {
	if p.err != nil {
		return nil, p.err
	}
	ms := make([]Mapping, len(p.layers))
	for i, l := range p.layers {
		m, err := p.ResolveChannels(l)
		if err != nil {
			return nil, err
		}
		for _, ch := range l.RequiredChannels() {
			if _, ok := m[ch]; !ok {
				return nil, &MissingAestheticError{Geom: l.Geom, Channel: ch}
			}
		}
		ms[i] = m
	}
	return ms, nil
}
