package blast

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/biogo/biogo/seq"
)

// columns is the number of fields in a "-outfmt 6" row:
// qseqid sseqid pident length mismatch gapopen qstart qend sstart send evalue bitscore
const columns = 12

// Hit is a single row of blastn's tabular output: a local match between
// a fragment (query) and a region of the reference (subject).
//
// Coordinates are as blastn reports them: 1-based and inclusive, with
// RefStart > RefEnd when the fragment matched the minus strand.
type Hit struct {
	// QueryID is the id of the assembly fragment
	QueryID string

	// RefID is the id of the reference sequence in the BLAST db
	RefID string

	// Identity is the percentage of identical matches
	Identity float64

	// Length of the alignment
	Length int

	// Mismatches in the alignment
	Mismatches int

	// GapOpens is the number of gap openings
	GapOpens int

	// QueryStart of the alignment on the fragment
	QueryStart int

	// QueryEnd of the alignment on the fragment
	QueryEnd int

	// RefStart of the alignment on the reference
	RefStart int

	// RefEnd of the alignment on the reference
	RefEnd int

	// EValue is the expect value
	EValue float64

	// BitScore of the alignment
	BitScore float64
}

// Strand returns the orientation of the fragment relative to the reference.
// A reversed coordinate pair on one axis means the minus strand, reversed on
// both axes cancels out.
func (h Hit) Strand() seq.Strand {
	if (h.QueryStart > h.QueryEnd) != (h.RefStart > h.RefEnd) {
		return seq.Minus
	}
	return seq.Plus
}

// QuerySpan is the number of bases between the start and end of the hit on the fragment.
func (h Hit) QuerySpan() int {
	if h.QueryStart > h.QueryEnd {
		return h.QueryStart - h.QueryEnd
	}
	return h.QueryEnd - h.QueryStart
}

// Result is the parsed output of a blastn run.
type Result struct {
	// Hits in the order blastn wrote them
	Hits []Hit

	// Skipped rows that failed to parse (only when not strict)
	Skipped []*ParseError
}

// Parse reads blastn's tabular output (-outfmt 6, or 7 with comment lines)
// into hits.
//
// Rows that fail to parse are skipped and recorded in Result.Skipped.
// If strict, the first bad row aborts the parse with its *ParseError.
func Parse(r io.Reader, strict bool) (*Result, error) {
	res := &Result{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimRight(sc.Text(), "\r")

		// comment lines start with a #
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}

		h, err := parseRow(text)
		if err != nil {
			perr := &ParseError{Line: line, Text: text, Err: err}
			if strict {
				return nil, perr
			}
			res.Skipped = append(res.Skipped, perr)
			continue
		}

		res.Hits = append(res.Hits, h)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read BLAST output: %w", err)
	}

	return res, nil
}

// parseRow parses a single tab separated row.
func parseRow(text string) (h Hit, err error) {
	cols := strings.Split(text, "\t")
	if len(cols) != columns {
		// some tools write space separated tables
		cols = strings.Fields(text)
	}
	if len(cols) != columns {
		return Hit{}, fmt.Errorf("found %d columns, expected %d", len(cols), columns)
	}

	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}

	h.QueryID = cols[0]
	h.RefID = cols[1]
	if h.QueryID == "" || h.RefID == "" {
		return Hit{}, fmt.Errorf("empty query or subject id")
	}

	ints := []struct {
		name string
		col  int
		dst  *int
	}{
		{"length", 3, &h.Length},
		{"mismatch", 4, &h.Mismatches},
		{"gapopen", 5, &h.GapOpens},
		{"qstart", 6, &h.QueryStart},
		{"qend", 7, &h.QueryEnd},
		{"sstart", 8, &h.RefStart},
		{"send", 9, &h.RefEnd},
	}
	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(cols[f.col]); err != nil {
			return Hit{}, fmt.Errorf("bad %s %q: %w", f.name, cols[f.col], err)
		}
	}

	floats := []struct {
		name string
		col  int
		dst  *float64
	}{
		{"pident", 2, &h.Identity},
		{"evalue", 10, &h.EValue},
		{"bitscore", 11, &h.BitScore},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(cols[f.col], 64); err != nil {
			return Hit{}, fmt.Errorf("bad %s %q: %w", f.name, cols[f.col], err)
		}
	}

	if h.QueryStart < 1 || h.QueryEnd < 1 || h.RefStart < 1 || h.RefEnd < 1 {
		return Hit{}, fmt.Errorf("coordinates must be 1-based and positive")
	}

	return h, nil
}
