// Package genome reads the reference and draft assembly inputs: sequence
// ids and lengths from FASTA files, and gene annotations from GenBank or
// GFF files.
package genome

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq"
	"github.com/biogo/biogo/seq/linear"
)

// ErrEmpty is returned when a FASTA file has no records.
var ErrEmpty = errors.New("no sequences found")

// Reference is the genome that fragments are placed against.
type Reference struct {
	// ID is the first word of the FASTA header
	ID string

	// Desc is the rest of the FASTA header
	Desc string

	// Length of the sequence in bp
	Length int

	// Features annotated on the reference, if an annotation file was found
	Features []Feature

	// Records is the number of sequences in the FASTA. Only the first is used
	Records int
}

// Fragment is a contig or scaffold of the draft assembly.
type Fragment struct {
	// ID is the first word of the FASTA header
	ID string

	// Length of the sequence in bp
	Length int

	// Gaps are runs of N in the fragment
	Gaps []Gap
}

// Gap is a run of unknown bases (N) in a scaffold, [Start, End) 0-based.
type Gap struct {
	Start int
	End   int
}

// Feature is an annotation on the reference, [Start, End) 0-based. A
// feature that crosses the origin of a circular reference has Start > End.
type Feature struct {
	// Name is the gene name, locus tag or id
	Name string

	// Kind is the feature type, eg: gene, CDS
	Kind string

	// Start of the feature
	Start int

	// End of the feature
	End int

	// Strand of the feature
	Strand seq.Strand
}

// ReadReference reads the first sequence of a FASTA file as the reference.
func ReadReference(path string) (Reference, error) {
	var ref Reference
	err := scanFasta(path, func(s *linear.Seq) {
		if ref.Records == 0 {
			ref.ID = s.ID
			ref.Desc = s.Desc
			ref.Length = s.Len()
		}
		ref.Records++
	})
	if err != nil {
		return Reference{}, err
	}

	return ref, nil
}

// ReadFragments reads every sequence of an assembly FASTA file. Runs of
// at least minGap Ns are recorded as gaps; minGap < 1 disables that.
func ReadFragments(path string, minGap int) (frags []Fragment, err error) {
	err = scanFasta(path, func(s *linear.Seq) {
		frags = append(frags, Fragment{
			ID:     s.ID,
			Length: s.Len(),
			Gaps:   gaps(s.Seq, minGap),
		})
	})

	return frags, err
}

// scanFasta calls fn for each sequence in a FASTA file.
func scanFasta(path string, fn func(*linear.Seq)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return scanFastaReader(f, path, fn)
}

func scanFastaReader(r io.Reader, path string, fn func(*linear.Seq)) error {
	count := 0
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNAredundant)))
	for sc.Next() {
		fn(sc.Seq().(*linear.Seq))
		count++
	}
	if err := sc.Error(); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if count == 0 {
		return fmt.Errorf("failed to parse %s: %w", path, ErrEmpty)
	}
	return nil
}

// gaps finds runs of N at least minLen long.
func gaps(letters alphabet.Letters, minLen int) (found []Gap) {
	if minLen < 1 {
		return nil
	}

	start := -1
	for i, l := range letters {
		if l == 'N' || l == 'n' {
			if start < 0 {
				start = i
			}
			continue
		}

		if start >= 0 && i-start >= minLen {
			found = append(found, Gap{Start: start, End: i})
		}
		start = -1
	}
	if start >= 0 && len(letters)-start >= minLen {
		found = append(found, Gap{Start: start, End: len(letters)})
	}

	return found
}
