// Package asmcmp compares a draft assembly against a reference genome: it
// BLASTs the assembly's fragments against the reference, places their hits
// along the reference and draws the result.
package asmcmp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Honglongwu/picobio/config"
	"github.com/Honglongwu/picobio/internal/blast"
	"github.com/Honglongwu/picobio/internal/genome"
	"github.com/Honglongwu/picobio/internal/layout"
)

var (
	// stderr is for logging to Stderr (without an annoying timestamp)
	stderr = log.New(os.Stderr, "", 0)
)

// Input is the files of a comparison.
type Input struct {
	// Assembly is a multi-FASTA of the draft assembly's fragments
	Assembly string

	// Reference is a FASTA of the reference genome. A BLAST database
	// must have been built at the same path with makeblastdb
	Reference string

	// Out is the image to write. Empty derives it from the assembly
	Out string
}

// Report describes a finished comparison.
type Report struct {
	// Reference that fragments were placed on
	Reference genome.Reference

	// Fragments of the assembly
	Fragments []genome.Fragment

	// Hits parsed from blastn's output
	Hits []blast.Hit

	// Skipped rows of blastn's output that failed to parse
	Skipped []*blast.ParseError

	// Diagram that was rendered
	Diagram *layout.Diagram

	// Out is the image file written, empty if nothing was rendered
	Out string

	// Warnings about the inputs and discarded hits
	Warnings []error

	// Execution time
	Execution time.Duration
}

// Run compares the assembly against the reference and renders the diagram
// with r. A nil r stops after placing the hits, writing no image.
func Run(ctx context.Context, conf *config.Config, src blast.Source, r layout.Renderer, in Input) (*Report, error) {
	start := time.Now()
	report := &Report{}

	ref, err := readReference(in.Reference)
	if err != nil {
		return nil, err
	}
	if ref.Records > 1 {
		report.warn(fmt.Errorf("%s has %d sequences, using only the first (%s)", in.Reference, ref.Records, ref.ID))
	}

	if annotation := genome.FindAnnotation(in.Reference); annotation != "" {
		features, err := genome.ReadFeatures(annotation, "gene")
		if err != nil {
			report.warn(fmt.Errorf("ignoring annotation: %w", err))
		} else {
			ref.Features = features
		}
	}
	report.Reference = ref

	frags, err := genome.ReadFragments(in.Assembly, conf.Layout.MinGap)
	if err != nil {
		return nil, fmt.Errorf("failed to read assembly %s: %w", in.Assembly, err)
	}
	report.Fragments = frags

	res, err := src.Align(ctx, in.Assembly, in.Reference, blastOutput(in.Assembly))
	if err != nil {
		return nil, err
	}
	report.Hits = res.Hits
	report.Skipped = res.Skipped
	for _, perr := range res.Skipped {
		report.warn(perr)
	}

	mode, err := layout.ParseMode(conf.Layout.Mode)
	if err != nil {
		return nil, err
	}
	b := &layout.Builder{
		Mode:       mode,
		Palette:    conf.Layout.Palette,
		MinHit:     conf.Layout.MinHit,
		DropNested: conf.Layout.DropNested,
	}
	d, err := b.Build(ref, frags, res.Hits)
	if err != nil {
		var rerr *layout.InvalidReferenceError
		if errors.As(err, &rerr) && rerr.Path == "" {
			rerr.Path = in.Reference
		}
		return nil, err
	}
	report.Diagram = d
	report.Warnings = append(report.Warnings, d.Warnings...)

	if r != nil {
		report.Out = in.Out
		if report.Out == "" {
			report.Out = imageOutput(in.Assembly, conf.Render.Format)
		}
		if err := writeImage(report.Out, func(w io.Writer) error { return r.Render(d, w) }); err != nil {
			return nil, err
		}
	}

	report.Execution = time.Since(start)
	return report, nil
}

func (r *Report) warn(err error) {
	r.Warnings = append(r.Warnings, err)
}

// Log writes the report's warnings to stderr. Unless verbose, discarded
// hits and skipped rows are only counted.
func (r *Report) Log(verbose bool) {
	logWarnings(r.Warnings, verbose)
	if r.Diagram != nil && r.Diagram.Filtered > 0 {
		stderr.Printf("dropped %d hits shorter than the minimum hit length", r.Diagram.Filtered)
	}
}

func logWarnings(warnings []error, verbose bool) {
	var discarded, skipped int
	for _, w := range warnings {
		var ferr *layout.InvalidFragmentError
		var perr *blast.ParseError
		switch {
		case errors.As(w, &ferr):
			discarded++
		case errors.As(w, &perr):
			skipped++
		default:
			stderr.Printf("warning: %v", w)
			continue
		}
		if verbose {
			stderr.Printf("warning: %v", w)
		}
	}

	if !verbose && skipped > 0 {
		stderr.Printf("warning: skipped %d malformed BLAST rows (--verbose to list them)", skipped)
	}
	if !verbose && discarded > 0 {
		stderr.Printf("warning: discarded %d hits (--verbose to list them)", discarded)
	}
}

// readReference reads the reference FASTA. Any failure is an InvalidReferenceError.
func readReference(path string) (genome.Reference, error) {
	ref, err := genome.ReadReference(path)
	if err != nil {
		return genome.Reference{}, &layout.InvalidReferenceError{Path: path, Err: err}
	}
	if ref.Length == 0 {
		return genome.Reference{}, &layout.InvalidReferenceError{Path: path, ID: ref.ID, Err: errors.New("reference sequence is empty")}
	}
	return ref, nil
}

// writeImage creates the file at out and draws an image into it.
func writeImage(out string, draw func(io.Writer) error) (err error) {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", out, cerr)
		}
	}()

	if err = draw(f); err != nil {
		return fmt.Errorf("failed to render %s: %w", out, err)
	}
	return nil
}

// blastOutput is the cached blastn output for an assembly, eg:
// "draft.fasta.blast.tsv" for "draft.fasta".
func blastOutput(assembly string) string {
	return assembly + ".blast.tsv"
}

// imageOutput is the default image for an assembly, eg: "draft.fasta.blast.svg".
func imageOutput(assembly, format string) string {
	if format == "" {
		format = "svg"
	}
	return assembly + ".blast." + strings.ToLower(format)
}

func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
