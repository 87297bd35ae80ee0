package blast

import (
	"sort"
)

// Proper removes hits that are self-contained in another hit of the same
// fragment: blastn often reports a long HSP together with shorter ones
// nested inside it on the reference, and the longer one covers everything
// the shorter one would show.
//
// Hits are compared by their reference interval, regardless of strand.
// The hits kept are returned in the order they were passed.
func Proper(hits []Hit) []Hit {
	type indexed struct {
		i          int
		start, end int
	}

	byQuery := make(map[string][]indexed)
	for i, h := range hits {
		start, end := h.RefStart, h.RefEnd
		if start > end {
			start, end = end, start
		}
		byQuery[h.QueryID] = append(byQuery[h.QueryID], indexed{i, start, end})
	}

	keep := make([]bool, len(hits))
	for _, matches := range byQuery {
		// sort matches by their start index
		// if they're same, put the larger one first
		sort.Slice(matches, func(i, j int) bool {
			if matches[i].start != matches[j].start {
				return matches[i].start < matches[j].start
			}
			if matches[i].end != matches[j].end {
				return matches[i].end > matches[j].end
			}
			return matches[i].i < matches[j].i
		})

		// only include those that aren't encompassed in the one before it
		last := -1
		for _, m := range matches {
			if m.end > last {
				keep[m.i] = true
				last = m.end
			}
		}
	}

	var proper []Hit
	for i, h := range hits {
		if keep[i] {
			proper = append(proper, h)
		}
	}
	return proper
}
