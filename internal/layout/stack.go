package layout

import (
	"fmt"
	"io"
	"sort"

	"github.com/Honglongwu/picobio/internal/blast"
	"github.com/Honglongwu/picobio/internal/genome"
	"github.com/biogo/biogo/seq"
)

// DefaultSpacer is the space left between contigs laid end to end on a track.
const DefaultSpacer = 10000

// StackRenderer draws a Stack, eg: to an SVG or PDF document.
type StackRenderer interface {
	RenderStack(s *Stack, w io.Writer) error
}

// Assembly is one of the assemblies of a Stack, its contigs in drawing order.
type Assembly struct {
	// Name of the assembly, eg: its file name
	Name string

	// Fragments of the assembly
	Fragments []genome.Fragment
}

// TrackContig is a contig laid on a track.
type TrackContig struct {
	// ID of the contig
	ID string

	// Start of the contig on the track
	Start int

	// End of the contig on the track
	End int

	// Gaps (runs of N) in the contig, in track coordinates
	Gaps []genome.Gap
}

// Track is an assembly drawn as its contigs end to end.
type Track struct {
	// Name of the assembly
	Name string

	// Length of the track, contigs and the spaces between them
	Length int

	// Contigs in order
	Contigs []TrackContig
}

// Link joins a hit on a track to the stretch of the track above that it
// matches. Coordinates are [Start, End) on each track.
type Link struct {
	// Track of the hit's query, the track of its subject is Track-1
	Track int

	// Query contig
	Query string

	// QueryStart on the query's track
	QueryStart int

	// QueryEnd on the query's track
	QueryEnd int

	// Subject contig on the track above
	Subject string

	// SubjectStart on the track above
	SubjectStart int

	// SubjectEnd on the track above
	SubjectEnd int

	// Strand of the hit. A minus strand link is drawn twisted
	Strand seq.Strand

	// Identity of the hit (%)
	Identity float64
}

// Stack is the geometry of a chained comparison of assemblies: one track per
// assembly, each linked to the one before it.
type Stack struct {
	// Tracks from the top
	Tracks []Track

	// Links between neighboring tracks
	Links []Link

	// Length of the longest track
	Length int

	// Filtered is the number of hits dropped for being shorter than MinHit
	Filtered int

	// Warnings about discarded hits
	Warnings []error
}

// Stacker lays assemblies out as a Stack.
type Stacker struct {
	// Spacer between contigs on a track. < 1 uses DefaultSpacer
	Spacer int

	// MinHit drops hits spanning fewer bases on the query contig
	MinHit int

	// DropNested drops hits contained in a longer hit of the same contig
	DropNested bool
}

// Build lays each assembly on a track and links the tracks with hits:
// hits[i] are the hits of assemblies[i+1] against assemblies[i].
func (b *Stacker) Build(assemblies []Assembly, hits [][]blast.Hit) (*Stack, error) {
	if len(assemblies) < 2 {
		return nil, fmt.Errorf("need at least two assemblies to compare, got %d", len(assemblies))
	}
	if len(hits) != len(assemblies)-1 {
		return nil, fmt.Errorf("got hits for %d comparisons of %d assemblies", len(hits), len(assemblies))
	}

	spacer := b.Spacer
	if spacer < 1 {
		spacer = DefaultSpacer
	}

	s := &Stack{}
	for _, a := range assemblies {
		if len(a.Fragments) == 0 {
			return nil, fmt.Errorf("assembly %s has no contigs", a.Name)
		}
		t := track(a, spacer)
		s.Tracks = append(s.Tracks, t)
		if t.Length > s.Length {
			s.Length = t.Length
		}
	}

	for i, comparison := range hits {
		s.Links = append(s.Links, b.links(s, i+1, comparison)...)
	}

	return s, nil
}

// track lays an assembly's contigs end to end with spacer bases between them.
func track(a Assembly, spacer int) Track {
	t := Track{Name: a.Name, Length: -spacer}
	for _, f := range a.Fragments {
		t.Length += spacer
		c := TrackContig{ID: f.ID, Start: t.Length, End: t.Length + f.Length}
		for _, g := range f.Gaps {
			c.Gaps = append(c.Gaps, genome.Gap{Start: c.Start + g.Start, End: c.Start + g.End})
		}
		t.Contigs = append(t.Contigs, c)
		t.Length += f.Length
	}
	return t
}

// links turns the hits of track i against track i-1 into Links, grouped by
// query contig in track order and sorted by their position on the track above.
func (b *Stacker) links(s *Stack, i int, hits []blast.Hit) (links []Link) {
	query, subject := s.Tracks[i], s.Tracks[i-1]
	queries := contigIndex(query)
	subjects := contigIndex(subject)

	byQuery := make(map[string][]blast.Hit)
	for _, h := range hits {
		if _, ok := queries[h.QueryID]; !ok {
			s.Warnings = append(s.Warnings, &InvalidFragmentError{Hit: h, Reason: "unknown contig of " + query.Name})
			continue
		}
		if _, ok := subjectContig(subjects, h.RefID); !ok {
			s.Warnings = append(s.Warnings, &InvalidFragmentError{Hit: h, Reason: "subject isn't a contig of " + subject.Name})
			continue
		}
		if b.MinHit > 0 && h.QuerySpan() < b.MinHit {
			s.Filtered++
			continue
		}
		byQuery[h.QueryID] = append(byQuery[h.QueryID], h)
	}

	for _, q := range query.Contigs {
		contigHits := byQuery[q.ID]
		if b.DropNested {
			contigHits = blast.Proper(contigHits)
		}

		var contigLinks []Link
		for _, h := range contigHits {
			sub, _ := subjectContig(subjects, h.RefID)

			qStart, qEnd := h.QueryStart, h.QueryEnd
			if qStart > qEnd {
				qStart, qEnd = qEnd, qStart
			}
			sStart, sEnd := h.RefStart, h.RefEnd
			if sStart > sEnd {
				sStart, sEnd = sEnd, sStart
			}

			contigLinks = append(contigLinks, Link{
				Track:        i,
				Query:        q.ID,
				QueryStart:   q.Start + qStart - 1,
				QueryEnd:     q.Start + qEnd,
				Subject:      sub.ID,
				SubjectStart: sub.Start + sStart - 1,
				SubjectEnd:   sub.Start + sEnd,
				Strand:       h.Strand(),
				Identity:     h.Identity,
			})
		}

		sort.SliceStable(contigLinks, func(x, y int) bool {
			return contigLinks[x].SubjectStart < contigLinks[y].SubjectStart
		})
		links = append(links, contigLinks...)
	}

	return links
}

func contigIndex(t Track) map[string]TrackContig {
	index := make(map[string]TrackContig, len(t.Contigs))
	for _, c := range t.Contigs {
		if _, dup := index[c.ID]; !dup {
			index[c.ID] = c
		}
	}
	return index
}

// subjectContig finds the contig a BLAST subject id names.
func subjectContig(index map[string]TrackContig, subject string) (TrackContig, bool) {
	if c, ok := index[subject]; ok {
		return c, true
	}
	for id, c := range index {
		if sameRef(subject, id) {
			return c, true
		}
	}
	return TrackContig{}, false
}
