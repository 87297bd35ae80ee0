// Package blast runs blastn for assembly fragments against a reference
// database and parses its tabular output into Hits.
package blast

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// dbExtensions are the files makeblastdb writes for a nucleotide database.
var dbExtensions = []string{".nhr", ".nin", ".nsq"}

// Source aligns a query FASTA against a database and returns the hits.
type Source interface {
	Align(ctx context.Context, query, db, out string) (*Result, error)
}

// Runner is a Source that executes the external blastn binary.
type Runner struct {
	// Blastn is the name or path of the blastn executable
	Blastn string

	// Task is passed to -task
	Task string

	// EValue is passed to -evalue
	EValue float64

	// Threads is passed to -num_threads
	Threads int

	// Timeout bounds a single blastn execution. 0 disables it
	Timeout time.Duration

	// Reuse skips blastn if the output file already exists
	Reuse bool

	// Strict aborts on the first malformed output row
	Strict bool
}

// Align BLASTs the query FASTA against db, writing blastn's output to out,
// and parses it.
//
// Query must be a non-empty file and db a database already built by makeblastdb.
func (r *Runner) Align(ctx context.Context, query, db, out string) (*Result, error) {
	if err := checkQuery(query); err != nil {
		return nil, err
	}

	if r.Reuse && fileExists(out) {
		return r.parse(out)
	}

	if err := r.checkDB(db); err != nil {
		return nil, err
	}

	if err := r.run(ctx, query, db, out); err != nil {
		// don't leave a partial file to be reused next time
		os.Remove(out)
		return nil, err
	}

	return r.parse(out)
}

// flags returns the arguments for blastn.
// https://www.ncbi.nlm.nih.gov/books/NBK279682/
func (r *Runner) flags(query, db, out string) []string {
	task := r.Task
	if task == "" {
		task = "blastn"
	}

	threads := r.Threads
	if threads < 1 {
		threads = 1
	}

	flags := []string{
		"-task", task,
		"-query", query,
		"-db", db,
		"-out", out,
		"-outfmt", "6",
		"-num_threads", strconv.Itoa(threads),
	}
	if r.EValue > 0 {
		flags = append(flags, "-evalue", strconv.FormatFloat(r.EValue, 'g', -1, 64))
	}

	return flags
}

// run calls the external blastn binary and waits on it to finish.
func (r *Runner) run(ctx context.Context, query, db, out string) error {
	blastn, err := exec.LookPath(r.Blastn)
	if err != nil {
		return &ToolInvocationError{Tool: r.Blastn, Err: err}
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	blastCmd := exec.CommandContext(ctx, blastn, r.flags(query, db, out)...)
	if output, err := blastCmd.CombinedOutput(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%v: %w", err, ctxErr)
		}
		return &ToolInvocationError{Tool: r.Blastn, Output: string(output), Err: err}
	}

	return nil
}

// parse reads the tabular output file.
func (r *Runner) parse(out string) (*Result, error) {
	f, err := os.Open(out)
	if err != nil {
		return nil, fmt.Errorf("failed to open BLAST output: %w", err)
	}
	defer f.Close()

	return Parse(f, r.Strict)
}

// checkDB makes sure the database was built by makeblastdb. A multi-volume
// database has an alias (.nal) file rather than the volume files.
func (r *Runner) checkDB(db string) error {
	if fileExists(db + ".nal") {
		return nil
	}

	for _, ext := range dbExtensions {
		if !fileExists(db + ext) {
			return &ToolInvocationError{
				Tool: r.Blastn,
				Err:  fmt.Errorf("missing BLAST database for %s (no %s), run 'makeblastdb -in %s -dbtype nucl'", db, db+ext, db),
			}
		}
	}

	return nil
}

// checkQuery makes sure the query FASTA exists and isn't empty.
func checkQuery(query string) error {
	info, err := os.Stat(query)
	if err != nil {
		return fmt.Errorf("failed to find query FASTA: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("query FASTA %s is a directory", query)
	}
	if info.Size() == 0 {
		return fmt.Errorf("query FASTA %s is empty", query)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
