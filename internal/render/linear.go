package render

import (
	"github.com/Honglongwu/picobio/internal/layout"
	"github.com/biogo/biogo/seq"
	"gonum.org/v1/plot/vg"
)

const (
	margin    vg.Length = 40
	laneStep  vg.Length = 30
	headerTop vg.Length = 70
)

// linearHeight is the height of a linear diagram with n fragment lanes.
func linearHeight(n int) vg.Length {
	return headerTop + 60 + vg.Length(n)*laneStep + 20
}

// bar maps reference positions onto a horizontal axis.
type bar struct {
	left, right vg.Length
	length      float64
}

func (b bar) x(pos float64) vg.Length {
	return b.left + (b.right-b.left)*vg.Length(pos/b.length)
}

// arrow is the outline of a box from x0 to x1 between y0 and y1. head > 0
// points its right end, head < 0 its left.
func arrow(x0, x1, y0, y1 vg.Length, head int) vg.Path {
	size := (x1 - x0) / 2
	if size > 6 {
		size = 6
	}
	mid := (y0 + y1) / 2

	var p vg.Path
	switch {
	case head > 0:
		p.Move(vg.Point{X: x0, Y: y0})
		p.Line(vg.Point{X: x1 - size, Y: y0})
		p.Line(vg.Point{X: x1, Y: mid})
		p.Line(vg.Point{X: x1 - size, Y: y1})
		p.Line(vg.Point{X: x0, Y: y1})
	case head < 0:
		p.Move(vg.Point{X: x0, Y: mid})
		p.Line(vg.Point{X: x0 + size, Y: y0})
		p.Line(vg.Point{X: x1, Y: y0})
		p.Line(vg.Point{X: x1, Y: y1})
		p.Line(vg.Point{X: x0 + size, Y: y1})
	default:
		return rect(x0, y0, x1, y1)
	}
	p.Close()
	return p
}

// linear draws the reference as a bar with one lane per placed fragment
// below it. Each hit is linked to the stretch of reference it covers.
func (s *sketch) linear(d *layout.Diagram) {
	s.title(d)

	b := bar{left: margin, right: s.width - margin, length: float64(d.Length)}
	refY := s.height - headerTop

	// reference
	s.SetColor(grey)
	s.Fill(rect(b.x(0), refY-3, b.x(b.length), refY+3))

	s.SetLineWidth(0.75)
	step := tickStep(d.Length, 10)
	for pos := 0; pos <= d.Length; pos += step {
		x := b.x(float64(pos))
		var tick vg.Path
		tick.Move(vg.Point{X: x, Y: refY + 3})
		tick.Line(vg.Point{X: x, Y: refY + 8})
		s.SetColor(black)
		s.Stroke(tick)
		s.centered(s.small, x, refY+11, tickLabel(pos))
	}

	// genes, plus strand on the upper track
	s.SetColor(geneColor)
	for _, f := range d.Features {
		y0, y1, head := refY-12, refY-6, 1
		if f.Strand == seq.Minus {
			y0, y1, head = refY-19, refY-13, -1
		}
		s.Fill(arrow(b.x(float64(f.Start)), b.x(float64(f.End)), y0, y1, head))
	}

	lanes := make(map[string]vg.Length)
	ids := d.Fragments()
	for i, id := range ids {
		lanes[id] = refY - 60 - vg.Length(i)*laneStep
	}

	// links under everything else, faded by identity and twisted on the minus strand
	linkTop := refY - 21
	for _, p := range d.Placements {
		alpha := identityAlpha(p.Identity)
		if alpha == 0 {
			continue
		}
		y := lanes[p.Fragment] + 6
		s.SetColor(translucent(s.color(p.Color), alpha))
		for _, a := range p.Arcs {
			x0, x1 := b.x(a.Start), b.x(a.End)
			s.Fill(link(x0, x1, y, x0, x1, linkTop, p.Strand == seq.Minus))
		}
	}

	// the whole fragments and their gaps
	for _, span := range d.Spans {
		y := lanes[span.Fragment]
		s.SetColor(lightGrey)
		s.Fill(rect(b.x(float64(span.Start)), y-2, b.x(float64(span.End)), y+2))

		for _, g := range span.Gaps {
			x0, x1 := b.x(float64(g.Start)), b.x(float64(g.End))
			s.SetColor(gapColor)
			s.Fill(rect(x0, y-4, x1, y+4))
			s.SetColor(black)
			s.SetLineWidth(0.5)
			s.Stroke(jaggy(x0, x1, y-4, y+4))
		}
	}

	// hits
	for _, p := range d.Placements {
		y := lanes[p.Fragment]
		s.SetColor(s.color(p.Color))
		for _, a := range p.Arcs {
			s.Fill(arrow(b.x(a.Start), b.x(a.End), y-6, y+6, headOf(a)))
		}
	}

	for _, id := range ids {
		x := margin
		for _, span := range d.Spans {
			if span.Fragment == id {
				x = b.x(float64(span.Start))
				break
			}
		}
		s.label(s.small, x, lanes[id]+8, id)
	}
}

// jaggy is a zigzag across a gap, from x0 to x1.
func jaggy(x0, x1, y0, y1 vg.Length) vg.Path {
	var p vg.Path
	p.Move(vg.Point{X: x0, Y: y0})
	p.Line(vg.Point{X: x0, Y: y1})
	p.Line(vg.Point{X: (x0 + x1) / 2, Y: y0})
	p.Line(vg.Point{X: x1, Y: y1})
	p.Line(vg.Point{X: x1, Y: y0})
	return p
}
