// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/gvplot/gvplot"
)

// Layout constants, in pixels.
const (
	plotMargin  = 8
	yTickWidth  = 48
	panelGap    = 6
	tickLen     = 4
	tickTextSep = 5
)

// Label strip and caption sizes as multiples of the theme font size.
const (
	stripScale = 1.5
	labelScale = 1.5
	titleScale = 1.8
)

// svgCanvas wraps an svgo writer with an id allocator so several
// panels or track lanes can share one document without clip id
// collisions.
type svgCanvas struct {
	svg *svg.SVG
	n   int
}

func (c *svgCanvas) genid(prefix string) (id, ref string) {
	c.n++
	id = fmt.Sprintf("%s%d", prefix, c.n)
	return id, "url(#" + id + ")"
}

func writeSVG(w io.Writer, f *frame, width, height int) error {
	prims, xa, ya, err := f.assemble(nil, nil)
	if err != nil {
		return err
	}
	lay, err := newLayout(f, width, height)
	if err != nil {
		return err
	}

	th := &f.theme
	canvas := svg.New(w)
	canvas.Start(width, height, fmt.Sprintf(`font-size="%.6gpx" font-family="Roboto,&quot;Helvetica Neue&quot;,Helvetica,Arial,sans-serif"`, th.FontSize))
	c := &svgCanvas{svg: canvas}

	if th.Title != "" {
		canvas.Text((lay.x0+lay.x1)/2, plotMargin+int(th.FontSize*titleScale*0.7), th.Title,
			fmt.Sprintf(`text-anchor="middle" font-size="%.6gpx" fill="#444"`, th.FontSize*1.2))
	}

	for pi, pn := range f.panels {
		px, py, pw, ph := lay.panelRect(pn.Row, pn.Col)
		if lbl := lay.stripLabel(pn); lbl != "" {
			drawStrip(c, px, py-lay.stripH, pw, lay.stripH, lbl, 0)
		}
		if lay.rightW > 0 && pn.Col == lay.ncols-1 && pn.RowLabel != "" {
			drawStrip(c, px+pw, py, lay.rightW, ph, pn.RowLabel, 'r')
		}
		drawPanel(c, th, prims[pi], xa, ya, px, py, pw, ph)
		if pn.Row == lay.nrows-1 {
			drawXAxis(c, xa, panelXSpan(xa, px, pw), py+ph, pw)
		}
		if pn.Col == 0 {
			drawYAxis(c, ya, panelYSpan(ya, py, ph), px, ph)
		}
	}

	if th.XLabel != "" {
		canvas.Text((lay.x0+lay.x1)/2, height-plotMargin, th.XLabel, `text-anchor="middle" fill="#444"`)
	}
	if th.YLabel != "" {
		cx, cy := plotMargin+int(th.FontSize*0.8), (lay.y0+lay.y1)/2
		canvas.Text(cx, cy, th.YLabel,
			fmt.Sprintf(`text-anchor="middle" fill="#444" transform="rotate(-90 %d %d)"`, cx, cy))
	}

	canvas.End()
	return nil
}

type layout struct {
	f              *frame
	nrows, ncols   int
	x0, y0, x1, y1 int
	panelW, panelH int
	stripH, rightW int
	// wrapStrips labels every panel; grid facets label only the
	// top row and right column.
	wrapStrips bool
}

func newLayout(f *frame, width, height int) (*layout, error) {
	th := &f.theme
	fs := th.FontSize
	l := &layout{f: f, nrows: 1, ncols: 1}
	for _, pn := range f.panels {
		if pn.Row >= l.nrows {
			l.nrows = pn.Row + 1
		}
		if pn.Col >= l.ncols {
			l.ncols = pn.Col + 1
		}
	}

	titleH, xlabH, ylabW := 0, 0, 0
	if th.Title != "" {
		titleH = int(fs * titleScale)
	}
	if th.XLabel != "" {
		xlabH = int(fs * labelScale)
	}
	if th.YLabel != "" {
		ylabW = int(fs * labelScale)
	}
	xtickH := tickTextSep + int(fs*1.4)

	if f.faceted {
		l.stripH = int(fs * stripScale)
		l.wrapStrips = f.facet.Wrap
		if !f.facet.Wrap {
			if f.facet.Col == "" {
				l.stripH = 0
			}
			if f.facet.Row != "" {
				l.rightW = int(fs * stripScale)
			}
		}
	}

	l.x0 = plotMargin + ylabW + yTickWidth
	l.y0 = plotMargin + titleH
	availW := width - plotMargin - l.rightW - l.x0 - panelGap*(l.ncols-1)
	availH := height - plotMargin - xlabH - xtickH - l.y0 - panelGap*(l.nrows-1)
	if l.wrapStrips {
		availH -= l.stripH * l.nrows
	} else {
		availH -= l.stripH
	}
	l.panelW = availW / l.ncols
	l.panelH = availH / l.nrows
	if l.panelW < 16 || l.panelH < 16 {
		return nil, fmt.Errorf("render: %dx%d leaves no room for a %dx%d panel grid", width, height, l.nrows, l.ncols)
	}
	l.x1 = l.x0 + l.ncols*l.panelW + (l.ncols-1)*panelGap
	if l.wrapStrips {
		l.y1 = l.y0 + l.nrows*(l.stripH+l.panelH) + (l.nrows-1)*panelGap
	} else {
		l.y1 = l.y0 + l.stripH + l.nrows*l.panelH + (l.nrows-1)*panelGap
	}
	return l, nil
}

// panelRect returns a panel's drawing area, excluding its strip.
func (l *layout) panelRect(row, col int) (x, y, w, h int) {
	x = l.x0 + col*(l.panelW+panelGap)
	if l.wrapStrips {
		y = l.y0 + row*(l.stripH+l.panelH+panelGap) + l.stripH
	} else {
		y = l.y0 + l.stripH + row*(l.panelH+panelGap)
	}
	return x, y, l.panelW, l.panelH
}

func (l *layout) stripLabel(pn Panel) string {
	if !l.f.faceted {
		return ""
	}
	if l.wrapStrips {
		if pn.ColLabel != "" {
			return pn.ColLabel
		}
		return pn.RowLabel
	}
	if pn.Row == 0 {
		return pn.ColLabel
	}
	return ""
}

func drawStrip(c *svgCanvas, x, y, w, h int, label string, side rune) {
	clipID, clipRef := c.genid("clip")
	c.svg.ClipPath(`id="` + clipID + `"`)
	c.svg.Rect(x, y, w, h)
	c.svg.ClipEnd()
	c.svg.Group(`clip-path="` + clipRef + `"`)
	c.svg.Rect(x, y, w, h, "fill: #ccc")
	// Vertical centering is poorly supported; dy is the best
	// chance.
	style := `text-anchor="middle" dy=".3em"`
	if side == 'r' {
		style += fmt.Sprintf(` transform="rotate(90 %d %d)"`, x+w/2, y+h/2)
	}
	c.svg.Text(x+w/2, y+h/2, label, style)
	c.svg.Gend()
}

// panelXSpan maps the x domain onto a panel's horizontal extent.
// Linear free axes keep a small inset so edge marks are not clipped;
// band and pinned axes map edge to edge.
func panelXSpan(xa *axis, x, w int) span {
	pad := 6.0
	if xa.band || xa.fixed {
		pad = 0
	}
	return xa.span(float64(x)+pad, float64(x+w)-pad)
}

func panelYSpan(ya *axis, y, h int) span {
	pad := 6.0
	if ya.band || ya.fixed {
		pad = 0
	}
	return ya.span(float64(y+h)-pad, float64(y)+pad)
}

// drawPanel renders one panel's background, grid, marks, and border.
// Edge axes are drawn separately so facet panels can share them.
func drawPanel(c *svgCanvas, th *gvplot.Theme, prims [][]prim, xa, ya *axis, x, y, w, h int) {
	clipID, clipRef := c.genid("clip")
	c.svg.ClipPath(`id="` + clipID + `"`)
	c.svg.Rect(x, y, w, h)
	c.svg.ClipEnd()

	c.svg.Rect(x, y, w, h, cssPaint("fill", th.Background))

	sx := panelXSpan(xa, x, w)
	sy := panelYSpan(ya, y, h)

	if th.Grid {
		var path []string
		major, _, _ := xa.ticks(max(2, w/70))
		for _, v := range major {
			path = append(path, fmt.Sprintf("M%.6g %dv%d", pxRound(sx.px(v)), y, h))
		}
		major, _, _ = ya.ticks(max(2, h/45))
		for _, v := range major {
			path = append(path, fmt.Sprintf("M%d %.6gh%d", x, pxRound(sy.px(v)), w))
		}
		if len(path) > 0 {
			c.svg.Path(strings.Join(path, ""), "stroke: #fff; stroke-width:2")
		}
	}

	c.svg.Group(`clip-path="` + clipRef + `"`)
	for _, layer := range prims {
		for i := range layer {
			drawPrim(c, &layer[i], sx, sy, y, y+h)
		}
	}
	c.svg.Gend()

	c.svg.Path(fmt.Sprintf("M%d %dV%dH%d", x, y, y+h, x+w), "stroke:#888; fill:none; stroke-width:2")
}

func drawXAxis(c *svgCanvas, xa *axis, sx span, yBase, w int) {
	major, labels, minor := xa.ticks(max(2, w/70))
	var path bytes.Buffer
	have := map[float64]bool{}
	emit := func(vs []float64, length float64) {
		for _, v := range vs {
			p := pxRound(sx.px(v))
			if have[p] {
				// Avoid overplotting the same tick marks.
				continue
			}
			have[p] = true
			fmt.Fprintf(&path, "M%.6g %dv%.6g", p, yBase, -length)
		}
	}
	emit(major, 2*tickLen)
	emit(minor, tickLen)
	if path.Len() > 0 {
		c.svg.Path(path.String(), "stroke:#888; stroke-width:2")
	}
	for i, v := range major {
		c.svg.Text(int(sx.px(v)), yBase+tickTextSep, labels[i], `text-anchor="middle" dy="1em" fill="#666"`)
	}
}

func drawYAxis(c *svgCanvas, ya *axis, sy span, xBase, h int) {
	major, labels, minor := ya.ticks(max(2, h/45))
	var path bytes.Buffer
	have := map[float64]bool{}
	emit := func(vs []float64, length float64) {
		for _, v := range vs {
			p := pxRound(sy.px(v))
			if have[p] {
				continue
			}
			have[p] = true
			fmt.Fprintf(&path, "M%d %.6gh%.6g", xBase, p, length)
		}
	}
	emit(major, 2*tickLen)
	emit(minor, tickLen)
	if path.Len() > 0 {
		c.svg.Path(path.String(), "stroke:#888; stroke-width:2")
	}
	for i, v := range major {
		c.svg.Text(xBase-tickTextSep, int(sy.px(v)), labels[i], `text-anchor="end" dy=".3em" fill="#666"`)
	}
}

func drawPrim(c *svgCanvas, p *prim, sx, sy span, top, bot int) {
	switch p.op {
	case opPoint:
		x, y := sx.px(p.xs[0]), sy.px(p.ys[0])
		r := p.size
		if r <= 0 {
			r = 2
		}
		style := cssPaint("fill", p.fill) + opacityCSS(p.alpha)
		switch p.shape % 4 {
		case 0:
			c.svg.Circle(int(x), int(y), int(r+0.5), style)
		case 1:
			c.svg.Rect(int(x-r), int(y-r), int(2*r+0.5), int(2*r+0.5), style)
		case 2:
			d := r * 1.4
			c.svg.Path(fmt.Sprintf("M%.6g %.6gL%.6g %.6gL%.6g %.6gL%.6g %.6gZ", x, y-d, x+d, y, x, y+d, x-d, y), style)
		default:
			c.svg.Path(fmt.Sprintf("M%.6g %.6gL%.6g %.6gL%.6g %.6gZ", x, y-r*1.3, x+r*1.2, y+r, x-r*1.2, y+r), style)
		}

	case opPath:
		d := pathData(p.xs, p.ys, sx, sy, false)
		if d == "" {
			return
		}
		sw := p.strokeW
		if sw <= 0 {
			sw = 1
		}
		style := cssPaint("stroke", p.stroke) + ";fill:none" + fmt.Sprintf(";stroke-width:%.6g", sw) + opacityCSS(p.alpha)
		c.svg.Path(d, style)

	case opPoly:
		d := pathData(p.xs, p.ys, sx, sy, true)
		if d == "" {
			return
		}
		style := cssPaint("fill", p.fill)
		if p.stroke != nil {
			style += ";" + cssPaint("stroke", p.stroke) + fmt.Sprintf(";stroke-width:%.6g", p.strokeW)
		}
		style += opacityCSS(p.alpha)
		c.svg.Path(d, style)

	case opRect:
		x0, x1 := sx.px(p.x0), sx.px(p.x1)
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		var y0, y1 float64
		if p.fullY {
			y0, y1 = float64(top), float64(bot)
		} else {
			// Pixel y grows downward.
			y0, y1 = sy.px(p.y1), sy.px(p.y0)
			if y1 < y0 {
				y0, y1 = y1, y0
			}
		}
		wpx, hpx := x1-x0, y1-y0
		if wpx < 1 {
			wpx = 1
		}
		if hpx < 1 {
			hpx = 1
		}
		style := cssPaint("fill", p.fill)
		if p.stroke != nil {
			style += ";" + cssPaint("stroke", p.stroke) + fmt.Sprintf(";stroke-width:%.6g", p.strokeW)
		}
		style += opacityCSS(p.alpha)
		c.svg.Rect(int(x0), int(y0), int(wpx+0.5), int(hpx+0.5), style)

	case opText:
		x, y := sx.px(p.xs[0]), sy.px(p.ys[0])
		c.svg.Text(int(x), int(y), p.label, `text-anchor="middle" dy=".3em"`,
			fmt.Sprintf(`font-size="%.6gpx"`, p.size), cssPaint("fill", p.fill))
	}
}

// pathData builds SVG path data through points, breaking the path at
// non-finite values so series render with gaps rather than bridges.
func pathData(xs, ys []float64, sx, sy span, closed bool) string {
	if len(xs) < 2 {
		return ""
	}
	var path []byte
	inLine := false
	for i := range xs {
		if !isFinite(xs[i]) || !isFinite(ys[i]) {
			inLine = false
			continue
		}
		if !inLine {
			path = append(path, 'M')
			inLine = true
		}
		path = append(path, ' ')
		path = strconv.AppendFloat(path, sx.px(xs[i]), 'g', 6, 64)
		path = append(path, ' ')
		path = strconv.AppendFloat(path, sy.px(ys[i]), 'g', 6, 64)
	}
	if len(path) == 0 {
		return ""
	}
	if closed {
		path = append(path, 'Z')
	}
	return string(path)
}

func isFinite(x float64) bool {
	return !(math.IsNaN(x) || math.IsInf(x, 0))
}

func pxRound(x float64) float64 {
	return math.Floor(x + 0.5)
}

func opacityCSS(a float64) string {
	if a <= 0 || a >= 1 {
		return ""
	}
	return fmt.Sprintf(";opacity:%.6g", a)
}

// cssPaint returns a CSS property setting prop to color c.
func cssPaint(prop string, c color.Color) string {
	if c == nil {
		return prop + ":none"
	}
	r, g, b, a := c.RGBA()
	if a == 0 {
		// No paint.
		return prop + ":none"
	}

	if a != 0xffff {
		// Undo alpha pre-multiplication.
		r = r * 0xffff / a
		g = g * 0xffff / a
		b = b * 0xffff / a
	}
	r, g, b = r>>8, g>>8, b>>8

	css := prop
	if r>>4 == r&0xF && g>>4 == g&0xF && b>>4 == b&0xF {
		// Use #rgb form.
		css += fmt.Sprintf(":#%x%x%x", r>>4, g>>4, b>>4)
	} else {
		// Use #rrggbb form.
		css += fmt.Sprintf(":#%02x%02x%02x", r, g, b)
	}

	if a != 0xffff {
		// SVG 1.1 only supports CSS2 color formats, which do
		// not include rgba, so alpha needs its own property.
		css += ";" + prop + "-opacity:" + strconv.FormatFloat(float64(a)/0xffff, 'g', -1, 64)
	}
	return css
}
