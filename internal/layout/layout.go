// Package layout places the BLAST hits of assembly fragments on a
// circular or linear track of the reference, producing a Diagram for a
// Renderer to draw.
package layout

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Honglongwu/picobio/internal/blast"
	"github.com/Honglongwu/picobio/internal/genome"
	"github.com/biogo/biogo/seq"
)

// Mode is the shape of the reference track.
type Mode int

const (
	// Circular draws the reference as a ring, coordinates wrap at the origin
	Circular Mode = iota

	// Linear draws the reference as a bar
	Linear
)

// ParseMode returns the Mode with the name passed.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "circular", "circle", "":
		return Circular, nil
	case "linear", "line":
		return Linear, nil
	}
	return Circular, fmt.Errorf("unknown layout %q: expected circular or linear", name)
}

func (m Mode) String() string {
	if m == Linear {
		return "linear"
	}
	return "circular"
}

// Renderer draws a Diagram, eg: to an SVG or PDF document.
type Renderer interface {
	Render(d *Diagram, w io.Writer) error
}

// Arc is a drawn interval of the reference track covered by a hit.
type Arc struct {
	// Fragment whose hit this is
	Fragment string

	// Start on the reference, Start <= End
	Start float64

	// End on the reference
	End float64

	// Strand of the fragment relative to the reference
	Strand seq.Strand

	// Color is the fragment's palette index
	Color int

	// Label for the arc
	Label string

	// Head is true if the arc ends in the 3' end of the hit, where the
	// strand's arrow head goes
	Head bool
}

// Span is the length of reference the arc covers.
func (a Arc) Span() float64 {
	return a.End - a.Start
}

// Placement is a hit of a fragment positioned on the reference track.
type Placement struct {
	// Fragment id
	Fragment string

	// RefStart on the reference, in the reference's orientation.
	// RefStart > RefEnd when a circular placement crosses the origin
	RefStart int

	// RefEnd on the reference
	RefEnd int

	// QueryStart on the fragment, QueryStart <= QueryEnd
	QueryStart int

	// QueryEnd on the fragment
	QueryEnd int

	// Strand of the fragment relative to the reference
	Strand seq.Strand

	// Identity of the hit (%)
	Identity float64

	// Color is the fragment's palette index
	Color int

	// Label drawn with the placement
	Label string

	// Arcs drawn for the placement, two if it crosses the origin
	Arcs []Arc
}

// Span is the length of reference covered by the placement.
func (p Placement) Span() float64 {
	var span float64
	for _, a := range p.Arcs {
		span += a.Span()
	}
	return span
}

// ContigSpan is a whole fragment drawn along a linear track, at the offset
// implied by its first hit.
type ContigSpan struct {
	// Fragment id
	Fragment string

	// Start of the fragment on the reference axis
	Start int

	// End of the fragment on the reference axis
	End int

	// Strand the fragment is drawn in
	Strand seq.Strand

	// Color is the fragment's palette index
	Color int

	// Gaps (runs of N) in the fragment, in reference axis coordinates
	Gaps []genome.Gap
}

// Diagram is the geometry of a comparison, ready for rendering.
type Diagram struct {
	// Reference id
	Reference string

	// Desc of the reference
	Desc string

	// Length of the reference track
	Length int

	// Mode of the track
	Mode Mode

	// Features of the reference drawn on a background track
	Features []genome.Feature

	// Placements grouped by fragment, in assembly order, each group
	// sorted by reference start
	Placements []Placement

	// Spans of the placed fragments (linear only)
	Spans []ContigSpan

	// Unplaced fragments without a hit
	Unplaced []string

	// Filtered is the number of hits dropped for being shorter than MinHit
	Filtered int

	// Warnings about discarded hits and odd inputs
	Warnings []error
}

// Arcs returns every arc in the diagram.
func (d *Diagram) Arcs() (arcs []Arc) {
	for _, p := range d.Placements {
		arcs = append(arcs, p.Arcs...)
	}
	return arcs
}

// Fragments returns the ids of the placed fragments, in order.
func (d *Diagram) Fragments() (ids []string) {
	seen := make(map[string]bool)
	for _, p := range d.Placements {
		if !seen[p.Fragment] {
			seen[p.Fragment] = true
			ids = append(ids, p.Fragment)
		}
	}
	return ids
}

// Builder turns hits into a Diagram.
type Builder struct {
	// Mode of the reference track
	Mode Mode

	// Palette is the number of colors fragments are hashed to
	Palette int

	// MinHit drops hits spanning fewer bases on the fragment
	MinHit int

	// DropNested drops hits contained in a longer hit of the same fragment
	DropNested bool
}

// Build places the hits of each fragment on the reference.
//
// Hits naming a fragment that isn't in frags, or a subject other than the
// reference, are discarded with a warning. Fragments without a hit are
// left off the diagram.
func (b *Builder) Build(ref genome.Reference, frags []genome.Fragment, hits []blast.Hit) (*Diagram, error) {
	if ref.Length <= 0 {
		return nil, &InvalidReferenceError{ID: ref.ID, Err: errors.New("reference has no length")}
	}

	d := &Diagram{
		Reference: ref.ID,
		Desc:      ref.Desc,
		Length:    ref.Length,
		Mode:      b.Mode,
		Features:  clipFeatures(ref.Features, ref.Length),
	}

	byID := make(map[string]genome.Fragment, len(frags))
	var order []genome.Fragment
	for _, f := range frags {
		if _, dup := byID[f.ID]; dup {
			d.Warnings = append(d.Warnings, fmt.Errorf("duplicate fragment id %s, using the first", f.ID))
			continue
		}
		if f.Length > ref.Length {
			d.Warnings = append(d.Warnings, fmt.Errorf("fragment %s (%d bp) is longer than the reference (%d bp)", f.ID, f.Length, ref.Length))
		}
		byID[f.ID] = f
		order = append(order, f)
	}

	// hits of each fragment, in the order blastn reported them
	fragHits := make(map[string][]blast.Hit)
	for _, h := range hits {
		if _, ok := byID[h.QueryID]; !ok {
			d.Warnings = append(d.Warnings, &InvalidFragmentError{Hit: h, Reason: "unknown fragment"})
			continue
		}
		if !sameRef(h.RefID, ref.ID) {
			d.Warnings = append(d.Warnings, &InvalidFragmentError{Hit: h, Reason: fmt.Sprintf("subject isn't the reference %s", ref.ID)})
			continue
		}
		if b.MinHit > 0 && h.QuerySpan() < b.MinHit {
			d.Filtered++
			continue
		}
		fragHits[h.QueryID] = append(fragHits[h.QueryID], h)
	}
	if b.DropNested {
		for id, fh := range fragHits {
			fragHits[id] = blast.Proper(fh)
		}
	}

	for _, f := range order {
		placements := b.place(f, fragHits[f.ID], ref.Length, d)
		if len(placements) == 0 {
			d.Unplaced = append(d.Unplaced, f.ID)
			continue
		}

		d.Placements = append(d.Placements, placements...)
		if b.Mode == Linear {
			d.Spans = append(d.Spans, contigSpan(f, placements[0], ref.Length))
		}
	}

	return d, nil
}

// place turns the hits of one fragment into placements sorted by reference start.
func (b *Builder) place(f genome.Fragment, hits []blast.Hit, length int, d *Diagram) (placements []Placement) {
	color := ColorIndex(f.ID, b.Palette)

	for _, h := range hits {
		p, ok := b.placement(h, length)
		if !ok {
			d.Warnings = append(d.Warnings, &InvalidFragmentError{Hit: h, Reason: "outside of the reference"})
			continue
		}

		p.Color = color
		p.Label = f.ID
		p.Arcs = arcs(p, b.Mode, length)
		placements = append(placements, p)
	}

	sort.SliceStable(placements, func(i, j int) bool {
		if placements[i].RefStart != placements[j].RefStart {
			return placements[i].RefStart < placements[j].RefStart
		}
		return placements[i].QueryStart < placements[j].QueryStart
	})

	return placements
}

// placement positions a hit on the reference. Its reference interval is
// put in the reference's orientation, then folded onto the circle or
// clamped to the bar.
func (b *Builder) placement(h blast.Hit, length int) (Placement, bool) {
	start, end := h.RefStart, h.RefEnd
	if start > end {
		start, end = end, start
	}
	qStart, qEnd := h.QueryStart, h.QueryEnd
	if qStart > qEnd {
		qStart, qEnd = qEnd, qStart
	}

	p := Placement{
		Fragment:   h.QueryID,
		QueryStart: qStart,
		QueryEnd:   qEnd,
		Strand:     h.Strand(),
		Identity:   h.Identity,
	}

	if b.Mode == Circular {
		if end-start >= length {
			// covers the whole circle
			p.RefStart, p.RefEnd = 0, length
			return p, true
		}
		p.RefStart, p.RefEnd = fold(start, length), fold(end, length)
		return p, true
	}

	if start > length {
		return Placement{}, false
	}
	if end > length {
		end = length
	}
	p.RefStart, p.RefEnd = start, end
	return p, true
}

// fold maps a position past the end of a circular reference (eg: from
// a database of the doubled sequence) back onto it.
func fold(pos, length int) int {
	if pos <= length {
		return pos
	}
	return (pos-1)%length + 1
}

// arcs returns the arcs that draw a placement. A circular placement with
// RefStart > RefEnd crosses the origin and is split into [RefStart, length]
// and [0, RefEnd]. The arrow head goes on the 3' end: the last arc for the
// plus strand, the first for the minus strand.
func arcs(p Placement, mode Mode, length int) []Arc {
	arc := func(start, end int) Arc {
		return Arc{
			Fragment: p.Fragment,
			Start:    float64(start),
			End:      float64(end),
			Strand:   p.Strand,
			Color:    p.Color,
			Label:    p.Label,
		}
	}

	if mode == Circular && p.RefStart > p.RefEnd {
		tail, head := arc(p.RefStart, length), arc(0, p.RefEnd)
		if p.Strand == seq.Minus {
			tail.Head = true
		} else {
			head.Head = true
		}
		return []Arc{tail, head}
	}

	a := arc(p.RefStart, p.RefEnd)
	a.Head = true
	return []Arc{a}
}

// contigSpan positions a whole fragment along a linear track using its first
// placement: the fragment starts where the hit's start on the fragment
// would land, kept within the reference.
func contigSpan(f genome.Fragment, first Placement, length int) ContigSpan {
	offset := first.RefStart - first.QueryStart
	if first.Strand == seq.Minus {
		offset = first.RefStart - (f.Length - first.QueryEnd)
	}
	if last := length - f.Length; offset > last {
		offset = last
	}
	if offset < 0 {
		offset = 0
	}

	end := offset + f.Length
	if end > length {
		end = length
	}

	span := ContigSpan{
		Fragment: f.ID,
		Start:    offset,
		End:      end,
		Strand:   first.Strand,
		Color:    first.Color,
	}
	for _, g := range f.Gaps {
		start, stop := g.Start, g.End
		if first.Strand == seq.Minus {
			start, stop = f.Length-g.End, f.Length-g.Start
		}
		start, stop = offset+start, offset+stop
		if start >= end {
			continue
		}
		if stop > end {
			stop = end
		}
		span.Gaps = append(span.Gaps, genome.Gap{Start: start, End: stop})
	}

	return span
}

// clipFeatures keeps the features inside the reference, trimming those that
// overhang. A feature crossing the origin (Start > End) is split in two, like
// a hit's arcs: [Start, length] and [0, End].
func clipFeatures(features []genome.Feature, length int) (clipped []genome.Feature) {
	for _, f := range features {
		if f.Start >= length {
			continue
		}
		if f.Start > f.End {
			tail, head := f, f
			tail.End, head.Start = length, 0
			clipped = append(clipped, clipFeatures([]genome.Feature{tail, head}, length)...)
			continue
		}
		if f.End <= 0 || f.End <= f.Start {
			continue
		}
		if f.Start < 0 {
			f.Start = 0
		}
		if f.End > length {
			f.End = length
		}
		clipped = append(clipped, f)
	}
	return clipped
}

// sameRef reports whether a BLAST subject id names the reference. With
// -parse_seqids blastn reports ids like "gi|49175990|ref|NC_000913.3|".
func sameRef(subject, ref string) bool {
	if subject == ref {
		return true
	}
	if ref == "" || subject == "" {
		return false
	}

	return strings.Contains(subject, "|"+ref+"|") ||
		strings.HasSuffix(subject, "|"+ref) ||
		strings.Contains(ref, "|"+subject+"|") ||
		strings.HasSuffix(ref, "|"+subject)
}
