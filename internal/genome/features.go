package genome

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/biogo/biogo/io/featio"
	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/biogo/seq"
)

var (
	// a feature's key and the start of its location, eg: "     gene            190..255"
	featureKeyRegex = regexp.MustCompile(`^ {5}(\S+)\s+(\S.*)$`)

	// a qualifier, eg: "                     /gene="thrL""
	qualifierRegex = regexp.MustCompile(`^\s+/([\w-]+)(?:=(.*))?$`)

	// ranges in a location, eg: "<1..200" and "300..>400" in
	// "complement(join(<1..200,300..>400))", or a single base "123"
	rangeRegex = regexp.MustCompile(`<?(\d+)(?:\.\.>?(\d+))?`)

	// qualifiers used for a feature's name, in order of preference
	nameQualifiers = []string{"gene", "locus_tag", "label", "product"}

	// GFF attributes used for a feature's name, in order of preference
	nameAttributes = []string{"Name", "gene", "locus_tag", "ID"}

	// annotation files looked for next to the reference FASTA
	annotationExts = []string{".gbk", ".gb", ".genbank", ".gff3", ".gff"}
)

// FindAnnotation returns the path of an annotation file next to the
// reference FASTA with the same stem (ref.fasta -> ref.gbk) or "" if
// there isn't one.
func FindAnnotation(refPath string) string {
	stem := strings.TrimSuffix(refPath, filepath.Ext(refPath))
	for _, ext := range annotationExts {
		path := stem + ext
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ReadFeatures reads the annotations from a GenBank or GFF file, chosen
// by the file's extension. Only features with the given kinds are kept,
// all features if kinds is empty.
func ReadFeatures(path string, kinds ...string) ([]Feature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation %s: %w", path, err)
	}
	defer f.Close()

	var features []Feature
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gb", ".gbk", ".genbank":
		features, err = readGenbank(f)
	case ".gff", ".gff3":
		features, err = readGFF(f)
	default:
		return nil, fmt.Errorf("failed to parse %s: unrecognized annotation file type", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if len(kinds) == 0 {
		return features, nil
	}

	keep := make(map[string]bool)
	for _, k := range kinds {
		keep[strings.ToLower(k)] = true
	}
	var kept []Feature
	for _, feat := range features {
		if keep[strings.ToLower(feat.Kind)] {
			kept = append(kept, feat)
		}
	}
	return kept, nil
}

// readGenbank parses the FEATURES table of a GenBank record. Only the first
// record is read.
func readGenbank(r io.Reader) (features []Feature, err error) {
	type pending struct {
		kind       string
		location   string
		qualifiers map[string]string
		lastQual   string
	}
	var cur *pending

	flush := func() error {
		if cur == nil {
			return nil
		}
		defer func() { cur = nil }()

		feat, ok, err := genbankFeature(cur.kind, cur.location, cur.qualifiers)
		if err != nil {
			return err
		}
		if ok {
			features = append(features, feat)
		}
		return nil
	}

	inFeatures := false
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")

		if !inFeatures {
			inFeatures = strings.HasPrefix(line, "FEATURES")
			continue
		}

		// end of the feature table
		if line != "" && line[0] != ' ' {
			break
		}

		if m := featureKeyRegex.FindStringSubmatch(line); m != nil {
			if err := flush(); err != nil {
				return nil, err
			}
			cur = &pending{kind: m[1], location: m[2], qualifiers: map[string]string{}}
			continue
		}
		if cur == nil {
			continue
		}

		if m := qualifierRegex.FindStringSubmatch(line); m != nil {
			cur.lastQual = m[1]
			cur.qualifiers[m[1]] = strings.Trim(m[2], `"`)
		} else if cur.lastQual == "" {
			// location spanning multiple lines
			cur.location += strings.TrimSpace(line)
		} else if _, ok := cur.qualifiers[cur.lastQual]; ok {
			// qualifier value spanning multiple lines
			cur.qualifiers[cur.lastQual] += " " + strings.Trim(strings.TrimSpace(line), `"`)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !inFeatures {
		return nil, fmt.Errorf("no FEATURES table")
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return features, nil
}

// genbankFeature turns a feature's key, location and qualifiers into a Feature.
// Features on another record (eg: "J00194.1:100..202") aren't on the
// reference and are skipped, returning false.
func genbankFeature(kind, location string, qualifiers map[string]string) (Feature, bool, error) {
	if strings.Contains(location, ":") {
		return Feature{}, false, nil
	}

	ranges, err := locationRanges(location)
	if err != nil {
		return Feature{}, false, err
	}
	if len(ranges) == 0 {
		return Feature{}, false, fmt.Errorf("failed to parse location %q of %s feature", location, kind)
	}

	strand := seq.Plus
	if strings.Contains(location, "complement(") {
		strand = seq.Minus

		// join(complement(4000..4100),complement(1..200)) lists its
		// parts 3' to 5' on the plus strand
		if !strings.HasPrefix(location, "complement(") {
			for i, j := 0, len(ranges)-1; i < j; i, j = i+1, j-1 {
				ranges[i], ranges[j] = ranges[j], ranges[i]
			}
		}
	}

	start, end := ranges[0][0], ranges[0][1]
	wraps := false
	for i, r := range ranges[1:] {
		if r[0] < ranges[i][0] {
			// a part before the last one: the feature crosses the origin
			wraps = true
			end = r[1]
			continue
		}
		if wraps {
			if r[1] > end {
				end = r[1]
			}
			continue
		}
		if r[0] < start {
			start = r[0]
		}
		if r[1] > end {
			end = r[1]
		}
	}

	name := kind
	for _, q := range nameQualifiers {
		if v := qualifiers[q]; v != "" {
			name = v
			break
		}
	}

	return Feature{
		Name:   name,
		Kind:   kind,
		Start:  start - 1, // make 0-indexed
		End:    end,
		Strand: strand,
	}, true, nil
}

// locationRanges returns the 1-based inclusive ranges of a location in the
// order they're written.
func locationRanges(location string) (ranges [][2]int, err error) {
	for _, m := range rangeRegex.FindAllStringSubmatch(location, -1) {
		start, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, err
		}
		end := start
		if m[2] != "" {
			if end, err = strconv.Atoi(m[2]); err != nil {
				return nil, err
			}
		}
		if end < start {
			start, end = end, start
		}
		ranges = append(ranges, [2]int{start, end})
	}
	return ranges, nil
}

// readGFF parses the features of a GFF file. Directive lines are dropped
// before parsing, and a GFF3 ##FASTA section ends the features.
func readGFF(r io.Reader) (features []Feature, err error) {
	var body bytes.Buffer
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for lines.Scan() {
		line := lines.Bytes()
		if bytes.HasPrefix(line, []byte("##FASTA")) {
			break
		}
		if bytes.HasPrefix(line, []byte("##")) {
			continue
		}
		body.Write(line)
		body.WriteByte('\n')
	}
	if err := lines.Err(); err != nil {
		return nil, err
	}

	sc := featio.NewScanner(gff.NewReader(&body))
	for sc.Next() {
		f, ok := sc.Feat().(*gff.Feature)
		if !ok {
			continue
		}

		features = append(features, Feature{
			Name:   gffName(f),
			Kind:   f.Feature,
			Start:  f.FeatStart,
			End:    f.FeatEnd,
			Strand: f.FeatStrand,
		})
	}
	if err := sc.Error(); err != nil {
		return nil, err
	}

	return features, nil
}

// gffName returns the name of a GFF feature from its attributes. GFF3
// "Name=thrL;ID=gene-1" attributes are read as tags without values by
// the GFF2 attribute parser, so those are split on "=".
func gffName(f *gff.Feature) string {
	values := make(map[string]string)
	for _, a := range f.FeatAttributes {
		for _, pair := range strings.Split(a.Tag, ";") {
			if tag, value, ok := strings.Cut(pair, "="); ok {
				values[strings.TrimSpace(tag)] = strings.Trim(strings.TrimSpace(value), `"`)
			}
		}
		if a.Value != "" {
			values[a.Tag] = strings.Trim(a.Value, `"`)
		}
	}

	for _, tag := range nameAttributes {
		if v := values[tag]; v != "" {
			return v
		}
	}
	return f.Feature
}
