package blast

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/biogo/biogo/seq"
)

const tabular = `contig_1	gi|49175990|ref|NC_000913.3|	99.87	50001	52	4	1	50000	1200000	1250000	0.0	9.2e+04
contig_2	gi|49175990|ref|NC_000913.3|	98.12	2130	40	0	2130	1	330	2459	0.0	3731
`

func TestParse(t *testing.T) {
	res, err := Parse(strings.NewReader(tabular), false)
	if err != nil {
		t.Fatal(err)
	}

	want := []Hit{
		{
			QueryID:    "contig_1",
			RefID:      "gi|49175990|ref|NC_000913.3|",
			Identity:   99.87,
			Length:     50001,
			Mismatches: 52,
			GapOpens:   4,
			QueryStart: 1,
			QueryEnd:   50000,
			RefStart:   1200000,
			RefEnd:     1250000,
			EValue:     0,
			BitScore:   92000,
		},
		{
			QueryID:    "contig_2",
			RefID:      "gi|49175990|ref|NC_000913.3|",
			Identity:   98.12,
			Length:     2130,
			Mismatches: 40,
			GapOpens:   0,
			QueryStart: 2130,
			QueryEnd:   1,
			RefStart:   330,
			RefEnd:     2459,
			EValue:     0,
			BitScore:   3731,
		},
	}
	if !reflect.DeepEqual(res.Hits, want) {
		t.Errorf("Parse() = %+v, want %+v", res.Hits, want)
	}
	if len(res.Skipped) != 0 {
		t.Errorf("Parse() skipped %d rows, want 0", len(res.Skipped))
	}
}

func TestParse_commentsAndBlankLines(t *testing.T) {
	out := `# BLASTN 2.7.1+
# Query: contig_1
# Fields: query acc.ver, subject acc.ver, % identity, alignment length, mismatches, gap opens, q. start, q. end, s. start, s. end, evalue, bit score
# 1 hits found

contig_1	ref	100.00	10	0	0	1	10	11	20	1e-5	20.1
# BLAST processed 1 queries
`
	res, err := Parse(strings.NewReader(out), true)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Hits) != 1 {
		t.Fatalf("Parse() found %d hits, want 1", len(res.Hits))
	}
	if res.Hits[0].EValue != 1e-5 {
		t.Errorf("EValue = %g, want 1e-5", res.Hits[0].EValue)
	}
}

func TestParse_malformedRows(t *testing.T) {
	out := strings.Join([]string{
		"contig_1\tref\t100.00\t10\t0\t0\t1\t10\t11\t20\t1e-5\t20.1",
		"contig_2\tref\t100.00\t10\t0\t0\t1\t10",                           // too few columns
		"contig_3\tref\tninety\t10\t0\t0\t1\t10\t11\t20\t1e-5\t20.1",       // bad identity
		"contig_4\tref\t100.00\t10\t0\t0\t1\t10\t11\t20\t1e-5\t20.1\textra", // too many columns
		"contig_5\tref\t100.00\t10\t0\t0\t0\t10\t11\t20\t1e-5\t20.1",       // 0 isn't a 1-based coordinate
		"contig_6\tref\t100.00\t10\t0\t0\t1\t10\t20\t11\t1e-5\t20.1",
	}, "\n")

	t.Run("skip", func(t *testing.T) {
		res, err := Parse(strings.NewReader(out), false)
		if err != nil {
			t.Fatal(err)
		}

		var ids []string
		for _, h := range res.Hits {
			ids = append(ids, h.QueryID)
		}
		if want := []string{"contig_1", "contig_6"}; !reflect.DeepEqual(ids, want) {
			t.Errorf("parsed hits %v, want %v", ids, want)
		}

		var lines []int
		for _, perr := range res.Skipped {
			lines = append(lines, perr.Line)
		}
		if want := []int{2, 3, 4, 5}; !reflect.DeepEqual(lines, want) {
			t.Errorf("skipped lines %v, want %v", lines, want)
		}
	})

	t.Run("strict", func(t *testing.T) {
		res, err := Parse(strings.NewReader(out), true)
		if res != nil {
			t.Errorf("Parse() returned a result on a strict failure")
		}

		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("Parse() error = %v, want a *ParseError", err)
		}
		if perr.Line != 2 {
			t.Errorf("ParseError.Line = %d, want 2", perr.Line)
		}
	})
}

func TestParse_spaceSeparated(t *testing.T) {
	res, err := Parse(strings.NewReader("c1 ref 97.5 100 2 1 1 100 500 401 1e-40 180\n"), true)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Hits) != 1 || res.Hits[0].RefEnd != 401 {
		t.Errorf("Parse() = %+v, want one hit ending at 401", res.Hits)
	}
}

func TestHit_Strand(t *testing.T) {
	tests := []struct {
		name string
		hit  Hit
		want seq.Strand
	}{
		{"both ascending", Hit{QueryStart: 1, QueryEnd: 100, RefStart: 200, RefEnd: 300}, seq.Plus},
		{"reference descending", Hit{QueryStart: 1, QueryEnd: 100, RefStart: 300, RefEnd: 200}, seq.Minus},
		{"query descending", Hit{QueryStart: 100, QueryEnd: 1, RefStart: 200, RefEnd: 300}, seq.Minus},
		{"both descending", Hit{QueryStart: 100, QueryEnd: 1, RefStart: 300, RefEnd: 200}, seq.Plus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hit.Strand(); got != tt.want {
				t.Errorf("Hit.Strand() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHit_QuerySpan(t *testing.T) {
	if got := (Hit{QueryStart: 10, QueryEnd: 60}).QuerySpan(); got != 50 {
		t.Errorf("QuerySpan() = %d, want 50", got)
	}
	if got := (Hit{QueryStart: 60, QueryEnd: 10}).QuerySpan(); got != 50 {
		t.Errorf("QuerySpan() = %d, want 50", got)
	}
}
