package layout

import "github.com/zeebo/wyhash"

// ColorIndex returns the palette index of a fragment: a stable hash of
// its id modulo the palette size. The same id always gets the same color,
// so the hits of a fragment split across the reference share it.
func ColorIndex(id string, colors int) int {
	if colors < 1 {
		return 0
	}
	return int(wyhash.HashString(id, 0) % uint64(colors))
}
