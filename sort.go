package gsplat

import (
	"sort"
)

type splatSortEntry struct {
	code  uint64
	index int
}

// SortSplatsByMortonCode orders splats by spatial locality. It computes one
// Morton code per splat against the global bounds and returns the index
// permutation sorted ascending by code, with ties broken by original index
// so the result is deterministic.
//
// If reorder is true the splat array is physically rewritten into sorted
// order and the identity permutation is returned. This is the only point in
// the pipeline that mutates the splat array.
func SortSplatsByMortonCode(splats []SplatRecord, bounds AABB, reorder bool) []int {
	entries := make([]splatSortEntry, len(splats))
	for i := range splats {
		entries[i] = splatSortEntry{
			code:  EncodeMorton3D(splats[i].Position, bounds),
			index: i,
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].code != entries[j].code {
			return entries[i].code < entries[j].code
		}
		return entries[i].index < entries[j].index
	})

	indices := make([]int, len(splats))
	for i, e := range entries {
		indices[i] = e.index
	}

	if reorder {
		reordered := make([]SplatRecord, len(splats))
		for i, src := range indices {
			reordered[i] = splats[src]
		}
		copy(splats, reordered)
		for i := range indices {
			indices[i] = i
		}
	}

	return indices
}
