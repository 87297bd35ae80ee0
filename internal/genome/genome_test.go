package genome

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq"
)

// writeFile writes contents to name in a temporary directory.
func writeFile(t *testing.T, name, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadReference(t *testing.T) {
	path := writeFile(t, "reference.fasta", `>NC_000913.3 Escherichia coli str. K-12 substr. MG1655, complete genome
AGCTTTTCATTCTGACTGCAACGGGCAATATGTCTCTGTGTGGATTAAAAAAAGAGTGTCTGATAGCAGC
TTCTGAACTGGTTACCTGCCGTGAGTAAATTAAAATTTTATTGACTTAGG
>pSC101 plasmid
ACGTACGTACGT
`)

	ref, err := ReadReference(path)
	if err != nil {
		t.Fatal(err)
	}

	want := Reference{
		ID:      "NC_000913.3",
		Desc:    "Escherichia coli str. K-12 substr. MG1655, complete genome",
		Length:  120,
		Records: 2,
	}
	if !reflect.DeepEqual(ref, want) {
		t.Errorf("ReadReference() = %+v, want %+v", ref, want)
	}
}

func TestReadReference_errors(t *testing.T) {
	empty := writeFile(t, "empty.fasta", "")
	if _, err := ReadReference(empty); !errors.Is(err, ErrEmpty) {
		t.Errorf("ReadReference(empty) = %v, want ErrEmpty", err)
	}

	if _, err := ReadReference(filepath.Join(t.TempDir(), "missing.fasta")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadReference(missing) = %v, want os.ErrNotExist", err)
	}
}

func TestReadFragments(t *testing.T) {
	path := writeFile(t, "assembly.fasta", `>contig_1 length=12
ACGTACGTACGT
>contig_2
ACGT`+strings.Repeat("N", 6)+`ACGT
ACGTNNACGT
>contig_3
`+strings.Repeat("N", 5)+`
`)

	frags, err := ReadFragments(path, 5)
	if err != nil {
		t.Fatal(err)
	}

	want := []Fragment{
		{ID: "contig_1", Length: 12},
		{ID: "contig_2", Length: 24, Gaps: []Gap{{Start: 4, End: 10}}},
		{ID: "contig_3", Length: 5, Gaps: []Gap{{Start: 0, End: 5}}},
	}
	if !reflect.DeepEqual(frags, want) {
		t.Errorf("ReadFragments() = %+v, want %+v", frags, want)
	}
}

func Test_gaps(t *testing.T) {
	tests := []struct {
		name   string
		seq    string
		minLen int
		want   []Gap
	}{
		{"no gaps", "ACGTACGT", 1, nil},
		{"disabled", "ACNNNNGT", 0, nil},
		{"too short", "ACNNNGT", 4, nil},
		{"lower case", "ACnnnnGT", 4, []Gap{{Start: 2, End: 6}}},
		{"several", "NNNNACGTNNNNNACNN", 2, []Gap{{0, 4}, {8, 13}, {15, 17}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gaps(alphabet.BytesToLetters([]byte(tt.seq)), tt.minLen); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("gaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

const genbank = `LOCUS       NC_000913            4641652 bp    DNA     circular CON 09-MAR-2022
DEFINITION  Escherichia coli str. K-12 substr. MG1655, complete genome.
FEATURES             Location/Qualifiers
     source          1..4641652
                     /organism="Escherichia coli str. K-12 substr. MG1655"
     gene            190..255
                     /gene="thrL"
                     /locus_tag="b0001"
     CDS             190..255
                     /gene="thrL"
                     /product="thr operon leader peptide"
     gene            complement(5234..5530)
                     /locus_tag="b0005"
     gene            join(4641000..4641652,
                     1..120)
                     /gene="wrap"
     gene            join(complement(60..90),complement(4641600..4641652))
                     /gene="wrapMinus"
     gene            complement(J00194.1:100..202)
                     /gene="remote"
     gene            order(300..400,500..>600)
                     /gene="parts"
CONTIG      join(U00096.3:1..4641652)
//
`

func TestReadFeatures_genbank(t *testing.T) {
	path := writeFile(t, "reference.gbk", genbank)

	features, err := ReadFeatures(path, "gene")
	if err != nil {
		t.Fatal(err)
	}

	want := []Feature{
		{Name: "thrL", Kind: "gene", Start: 189, End: 255, Strand: seq.Plus},
		{Name: "b0005", Kind: "gene", Start: 5233, End: 5530, Strand: seq.Minus},
		// crosses the origin
		{Name: "wrap", Kind: "gene", Start: 4640999, End: 120, Strand: seq.Plus},
		{Name: "wrapMinus", Kind: "gene", Start: 4641599, End: 90, Strand: seq.Minus},
		{Name: "parts", Kind: "gene", Start: 299, End: 600, Strand: seq.Plus},
	}
	if !reflect.DeepEqual(features, want) {
		t.Errorf("ReadFeatures() = %+v, want %+v", features, want)
	}

	all, err := ReadFeatures(path)
	if err != nil {
		t.Fatal(err)
	}
	// the feature on another record is skipped
	if len(all) != 7 {
		t.Errorf("ReadFeatures() without kinds found %d features, want 7", len(all))
	}
}

func Test_locationRanges(t *testing.T) {
	tests := []struct {
		location string
		want     [][2]int
	}{
		{"190..255", [][2]int{{190, 255}}},
		{"complement(<5234..>5530)", [][2]int{{5234, 5530}}},
		{"join(4000..4100,1..200)", [][2]int{{4000, 4100}, {1, 200}}},
		{"123^124", [][2]int{{123, 123}, {124, 124}}},
		{"gene", nil},
	}
	for _, tt := range tests {
		got, err := locationRanges(tt.location)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("locationRanges(%q) = %v, want %v", tt.location, got, tt.want)
		}
	}
}

func TestReadFeatures_genbankWithoutFeatures(t *testing.T) {
	path := writeFile(t, "reference.gb", "LOCUS       X 10 bp    DNA\nORIGIN\n        1 acgtacgtac\n//\n")
	if _, err := ReadFeatures(path); err == nil {
		t.Error("expected an error for a GenBank file without a FEATURES table")
	}
}

func TestReadFeatures_gff(t *testing.T) {
	path := writeFile(t, "reference.gff", strings.Join([]string{
		"NC_000913.3\tRefSeq\tgene\t190\t255\t.\t+\t.\tName thrL",
		"NC_000913.3\tRefSeq\tCDS\t190\t255\t.\t+\t0\tName thrL",
		"NC_000913.3\tRefSeq\tgene\t5234\t5530\t.\t-\t.\tlocus_tag b0005",
		"##FASTA",
		">NC_000913.3",
		"ACGT",
	}, "\n")+"\n")

	features, err := ReadFeatures(path, "gene")
	if err != nil {
		t.Fatal(err)
	}

	want := []Feature{
		{Name: "thrL", Kind: "gene", Start: 189, End: 255, Strand: seq.Plus},
		{Name: "b0005", Kind: "gene", Start: 5233, End: 5530, Strand: seq.Minus},
	}
	if !reflect.DeepEqual(features, want) {
		t.Errorf("ReadFeatures() = %+v, want %+v", features, want)
	}
}

func TestReadFeatures_unknownType(t *testing.T) {
	path := writeFile(t, "reference.bed", "chr1\t1\t10\n")
	if _, err := ReadFeatures(path); err == nil {
		t.Error("expected an error for an unrecognized annotation file")
	}
}

func TestFindAnnotation(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "reference.fasta")

	if got := FindAnnotation(ref); got != "" {
		t.Errorf("FindAnnotation() = %q, want none", got)
	}

	gff := filepath.Join(dir, "reference.gff3")
	if err := os.WriteFile(gff, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if got := FindAnnotation(ref); got != gff {
		t.Errorf("FindAnnotation() = %q, want %q", got, gff)
	}

	// GenBank is preferred over GFF
	gbk := filepath.Join(dir, "reference.gbk")
	if err := os.WriteFile(gbk, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if got := FindAnnotation(ref); got != gbk {
		t.Errorf("FindAnnotation() = %q, want %q", got, gbk)
	}
}
