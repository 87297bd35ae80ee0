package render

import (
	"fmt"

	"github.com/Honglongwu/picobio/internal/layout"
	"github.com/biogo/biogo/seq"
	"github.com/dustin/go-humanize"
	"gonum.org/v1/plot/vg"
)

const trackStep vg.Length = 90

// stackHeight is the height of a stack of n tracks.
func stackHeight(n int) vg.Length {
	return headerTop + vg.Length(n)*trackStep
}

// stack draws each assembly as a bar of contigs, top to bottom, with links
// from every track's hits to the track above.
func (s *sketch) stack(st *layout.Stack) {
	s.label(s.text, 12, s.height-18, fmt.Sprintf("%d assemblies", len(st.Tracks)))
	s.label(s.small, 12, s.height-30, fmt.Sprintf(
		"%s bp longest track, %d links", humanize.Comma(int64(st.Length)), len(st.Links),
	))

	b := bar{left: margin, right: s.width - margin, length: float64(st.Length)}
	if b.length <= 0 {
		b.length = 1
	}
	trackY := func(i int) vg.Length {
		return s.height - headerTop - vg.Length(i)*trackStep
	}

	// links under the contigs
	for _, l := range st.Links {
		alpha := identityAlpha(l.Identity)
		if alpha == 0 {
			continue
		}
		c := plusLink
		if l.Strand == seq.Minus {
			c = minusLink
		}
		s.SetColor(translucent(c, alpha))
		s.Fill(link(
			b.x(float64(l.SubjectStart)), b.x(float64(l.SubjectEnd)), trackY(l.Track-1)-5,
			b.x(float64(l.QueryStart)), b.x(float64(l.QueryEnd)), trackY(l.Track)+5,
			l.Strand == seq.Minus,
		))
	}

	for i, t := range st.Tracks {
		y := trackY(i)
		s.label(s.small, margin, y+14, t.Name)

		for _, c := range t.Contigs {
			x0, x1 := b.x(float64(c.Start)), b.x(float64(c.End))
			s.SetColor(grey)
			s.Fill(rect(x0, y-5, x1, y+5))
			s.SetColor(black)
			s.SetLineWidth(0.5)
			s.Stroke(rect(x0, y-5, x1, y+5))

			for _, g := range c.Gaps {
				gx0, gx1 := b.x(float64(g.Start)), b.x(float64(g.End))
				s.SetColor(gapColor)
				s.Fill(rect(gx0, y-5, gx1, y+5))
				s.SetColor(black)
				s.Stroke(jaggy(gx0, gx1, y-5, y+5))
			}

			s.label(s.small, x0, y-14, c.ID)
		}
	}
}
