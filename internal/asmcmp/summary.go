package asmcmp

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Honglongwu/picobio/internal/layout"
	"github.com/biogo/biogo/seq"
	"github.com/dustin/go-humanize"
)

// fragmentRow is one fragment's line in a summary.
type fragmentRow struct {
	id       string
	length   int
	hits     int
	covered  float64
	identity float64
	strands  string
}

// Summary writes a table of each fragment's placement on the reference.
func Summary(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 3, ' ', 0)
	fmt.Fprintf(tw, "fragment\tlength\thits\tcovered\tidentity\tstrand\t\n")

	for _, row := range summaryRows(r) {
		if row.hits == 0 {
			fmt.Fprintf(tw, "%s\t%s\t0\t-\t-\t-\t\n", row.id, humanize.Comma(int64(row.length)))
			continue
		}
		fmt.Fprintf(
			tw,
			"%s\t%s\t%d\t%s\t%.1f%%\t%s\t\n",
			row.id,
			humanize.Comma(int64(row.length)),
			row.hits,
			humanize.Comma(int64(row.covered)),
			row.identity,
			row.strands,
		)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	placed := 0
	if r.Diagram != nil {
		placed = len(r.Diagram.Fragments())
	}
	_, err := fmt.Fprintf(
		w,
		"\n%d of %d fragments placed on %s (%s bp) from %d hits\n",
		placed, len(r.Fragments), r.Reference.ID, humanize.Comma(int64(r.Reference.Length)), len(r.Hits),
	)
	return err
}

// summaryRows returns a row per fragment, in assembly order.
func summaryRows(r *Report) (rows []fragmentRow) {
	var placements map[string][]layout.Placement
	if r.Diagram != nil {
		placements = make(map[string][]layout.Placement)
		for _, p := range r.Diagram.Placements {
			placements[p.Fragment] = append(placements[p.Fragment], p)
		}
	}

	for _, f := range r.Fragments {
		row := fragmentRow{id: f.ID, length: f.Length}

		var plus, minus bool
		var weighted float64
		for _, p := range placements[f.ID] {
			row.hits++
			row.covered += p.Span()
			weighted += p.Identity * p.Span()
			if p.Strand == seq.Minus {
				minus = true
			} else {
				plus = true
			}
		}
		if row.covered > 0 {
			row.identity = weighted / row.covered
		}

		switch {
		case plus && minus:
			row.strands = "+/-"
		case minus:
			row.strands = "-"
		default:
			row.strands = "+"
		}

		rows = append(rows, row)
	}

	return rows
}
