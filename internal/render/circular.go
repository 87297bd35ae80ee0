package render

import (
	"math"

	"github.com/Honglongwu/picobio/internal/layout"
	"github.com/biogo/biogo/seq"
	"gonum.org/v1/plot/vg"
)

// ring maps reference positions onto a circle, clockwise from the top.
type ring struct {
	center vg.Point
	radius vg.Length
	length float64
}

// angle of a position, in radians counter clockwise from the x axis.
func (r ring) angle(pos float64) float64 {
	return math.Pi/2 - 2*math.Pi*pos/r.length
}

// at returns the point at a position and distance from the center.
func (r ring) at(pos float64, rad vg.Length) vg.Point {
	a := r.angle(pos)
	return vg.Point{
		X: r.center.X + rad*vg.Length(math.Cos(a)),
		Y: r.center.Y + rad*vg.Length(math.Sin(a)),
	}
}

// band is the outline of a thick arc between two radii, from start to end.
// head > 0 narrows the end into an arrow head, head < 0 the start.
func (r ring) band(start, end float64, in, out vg.Length, head int) vg.Path {
	mid := (in + out) / 2
	size := math.Min((end-start)/2, r.length/120)

	bodyStart, bodyEnd := start, end
	switch {
	case head > 0:
		bodyEnd -= size
	case head < 0:
		bodyStart += size
	}

	var p vg.Path
	if head < 0 {
		p.Move(r.at(start, mid))
		p.Line(r.at(bodyStart, out))
	} else {
		p.Move(r.at(bodyStart, out))
	}
	p.Arc(r.center, out, r.angle(bodyStart), r.angle(bodyEnd)-r.angle(bodyStart))
	if head > 0 {
		p.Line(r.at(end, mid))
	}
	p.Line(r.at(bodyEnd, in))
	p.Arc(r.center, in, r.angle(bodyEnd), r.angle(bodyStart)-r.angle(bodyEnd))
	p.Close()
	return p
}

// headOf returns which end of an arc gets an arrow head.
func headOf(a layout.Arc) int {
	if !a.Head {
		return 0
	}
	if a.Strand == seq.Minus {
		return -1
	}
	return 1
}

// circular draws the reference as a ring with genes inside and the
// fragments' hits outside.
func (s *sketch) circular(d *layout.Diagram) {
	s.title(d)

	top := s.height - 40
	size := s.width
	if top < size {
		size = top
	}
	r := ring{
		center: vg.Point{X: s.width / 2, Y: top / 2},
		radius: size * 0.32,
		length: float64(d.Length),
	}

	// reference
	s.SetLineWidth(1.5)
	s.SetColor(black)
	var circle vg.Path
	circle.Move(r.at(0, r.radius))
	circle.Arc(r.center, r.radius, r.angle(0), -math.Pi)
	circle.Arc(r.center, r.radius, r.angle(r.length/2), -math.Pi)
	s.Stroke(circle)

	s.centered(s.text, r.center.X, r.center.Y+4, d.Reference)
	s.centered(s.small, r.center.X, r.center.Y-8, tickLabel(d.Length))

	// ticks
	s.SetLineWidth(0.75)
	step := tickStep(d.Length, 12)
	for pos := 0; pos < d.Length; pos += step {
		var tick vg.Path
		tick.Move(r.at(float64(pos), r.radius))
		tick.Line(r.at(float64(pos), r.radius*0.97))
		s.SetColor(black)
		s.Stroke(tick)

		pt := r.at(float64(pos), r.radius*0.92)
		s.centered(s.small, pt.X, pt.Y-2, tickLabel(pos))
	}

	// genes, plus strand on the outer track
	s.SetColor(geneColor)
	for _, f := range d.Features {
		in, out := r.radius*0.78, r.radius*0.84
		head := 1
		if f.Strand == seq.Minus {
			in, out = r.radius*0.71, r.radius*0.77
			head = -1
		}
		s.Fill(r.band(float64(f.Start), float64(f.End), in, out, head))
	}

	// hits
	for _, p := range d.Placements {
		s.SetColor(s.color(p.Color))
		for _, a := range p.Arcs {
			s.Fill(r.band(a.Start, a.End, r.radius*1.04, r.radius*1.12, headOf(a)))
		}
	}

	// a label per fragment, by its longest arc
	longest := make(map[string]layout.Arc)
	for _, a := range d.Arcs() {
		if l, ok := longest[a.Fragment]; !ok || a.Span() > l.Span() {
			longest[a.Fragment] = a
		}
	}
	for _, id := range d.Fragments() {
		a := longest[id]
		pt := r.at((a.Start+a.End)/2, r.radius*1.17)
		x := pt.X
		if x < r.center.X {
			x -= s.small.Width(a.Label)
		}
		s.label(s.small, x, pt.Y-2, a.Label)
	}
}
