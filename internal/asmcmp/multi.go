package asmcmp

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Honglongwu/picobio/config"
	"github.com/Honglongwu/picobio/internal/blast"
	"github.com/Honglongwu/picobio/internal/genome"
	"github.com/Honglongwu/picobio/internal/layout"
)

// MultiReport describes a finished chained comparison of assemblies.
type MultiReport struct {
	// Assemblies in the order they're drawn
	Assemblies []layout.Assembly

	// Hits of each assembly against the one before it
	Hits [][]blast.Hit

	// Stack that was rendered
	Stack *layout.Stack

	// Out is the image file written, empty if nothing was rendered
	Out string

	// Warnings about skipped rows and discarded hits
	Warnings []error

	// Execution time
	Execution time.Duration
}

// RunMulti BLASTs each assembly against the one before it and draws them as
// tracks of contigs laid end to end, linked by their hits. Every assembly
// but the last needs a BLAST database at its path. An empty out derives the
// image's name from the first assembly. A nil r writes no image.
func RunMulti(ctx context.Context, conf *config.Config, src blast.Source, r layout.StackRenderer, assemblies []string, out string) (*MultiReport, error) {
	start := time.Now()
	if len(assemblies) < 2 {
		return nil, fmt.Errorf("need at least two assemblies to compare, got %d", len(assemblies))
	}

	report := &MultiReport{}
	for _, path := range assemblies {
		frags, err := genome.ReadFragments(path, conf.Layout.MinGap)
		if err != nil {
			return nil, fmt.Errorf("failed to read assembly %s: %w", path, err)
		}
		report.Assemblies = append(report.Assemblies, layout.Assembly{Name: filepath.Base(path), Fragments: frags})
	}

	for i := 1; i < len(assemblies); i++ {
		query, db := assemblies[i], assemblies[i-1]
		res, err := src.Align(ctx, query, db, comparisonOutput(query, db))
		if err != nil {
			return nil, err
		}
		report.Hits = append(report.Hits, res.Hits)
		for _, perr := range res.Skipped {
			report.Warnings = append(report.Warnings, perr)
		}
	}

	b := &layout.Stacker{
		Spacer:     conf.Layout.Spacer,
		MinHit:     conf.Layout.MinHit,
		DropNested: conf.Layout.DropNested,
	}
	st, err := b.Build(report.Assemblies, report.Hits)
	if err != nil {
		return nil, err
	}
	report.Stack = st
	report.Warnings = append(report.Warnings, st.Warnings...)

	if r != nil {
		report.Out = out
		if report.Out == "" {
			report.Out = multiOutput(assemblies[0], conf.Render.Format)
		}
		if err := writeImage(report.Out, func(w io.Writer) error { return r.RenderStack(st, w) }); err != nil {
			return nil, err
		}
	}

	report.Execution = time.Since(start)
	return report, nil
}

// Log writes the report's warnings to stderr. Unless verbose, discarded
// hits and skipped rows are only counted.
func (r *MultiReport) Log(verbose bool) {
	logWarnings(r.Warnings, verbose)
	if r.Stack != nil && r.Stack.Filtered > 0 {
		stderr.Printf("dropped %d hits shorter than the minimum hit length", r.Stack.Filtered)
	}
}

// comparisonOutput is the cached blastn output of one assembly against
// another, eg: "data/b_vs_a.blast.tsv" for "data/b.fasta" against "data/a.fasta".
func comparisonOutput(query, db string) string {
	return trimExt(query) + "_vs_" + trimExt(filepath.Base(db)) + ".blast.tsv"
}

// multiOutput is the default image of a chained comparison, eg: "a.multi.svg".
func multiOutput(first, format string) string {
	if format == "" {
		format = "svg"
	}
	return trimExt(first) + ".multi." + strings.ToLower(format)
}
