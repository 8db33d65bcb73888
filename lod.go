package gsplat

import (
	"github.com/go-gl/mathgl/mgl32"
)

const mergeWeightEpsilon = 1e-8

// MergeSplats collapses a contiguous run of raw splats into one
// representative LOD splat. Position, color and scale are opacity-weighted
// averages (the DC color coefficient is converted to RGB first); scale is
// additionally widened by a quarter of the positional spread so the merged
// splat still covers the region the originals occupied. Opacity composes
// probabilistically: the chance that at least one input occludes.
//
// The merged rotation is fixed to identity; orientation does not survive
// merging.
//
// Degenerate input (empty run, start out of range) yields a zero-opacity
// default splat.
func MergeSplats(splats []SplatRecord, start, count int) LODSplat {
	result := defaultLODSplat()

	if count <= 0 || start < 0 || start >= len(splats) {
		result.Opacity = 0
		return result
	}
	count = min(count, len(splats)-start)

	totalWeight := float32(0)
	for i := 0; i < count; i++ {
		totalWeight += splats[start+i].Opacity
	}
	if totalWeight < mergeWeightEpsilon {
		// Fully transparent run; fall back to a unit total so weights stay
		// finite (all inputs then weigh equally little).
		totalWeight = 1
	}

	var position, color, scale mgl32.Vec3
	spread := newInvertedAABB()
	transparency := float32(1)

	for i := 0; i < count; i++ {
		s := &splats[start+i]
		weight := s.Opacity / totalWeight

		position = position.Add(s.Position.Mul(weight))
		color = color.Add(SHDCToColor(s.SHDC).Mul(weight))
		scale = scale.Add(s.Scale.Mul(weight))

		spread.ExpandPoint(s.Position)
		transparency *= 1 - clamp01(s.Opacity)
	}

	result.Position = position
	result.Color = color
	result.Scale = scale.Add(spread.Size().Mul(0.25))
	result.Rotation = mgl32.QuatIdent()
	result.Opacity = clamp01(1 - transparency)
	return result
}

// MergeLODSplats is the higher-level variant of MergeSplats: the inputs are
// already-simplified splats, so color averages directly and no SH conversion
// happens.
func MergeLODSplats(lodSplats []LODSplat, start, count int) LODSplat {
	result := defaultLODSplat()

	if count <= 0 || start < 0 || start >= len(lodSplats) {
		result.Opacity = 0
		return result
	}
	count = min(count, len(lodSplats)-start)

	totalWeight := float32(0)
	for i := 0; i < count; i++ {
		totalWeight += lodSplats[start+i].Opacity
	}
	if totalWeight < mergeWeightEpsilon {
		totalWeight = 1
	}

	var position, color, scale mgl32.Vec3
	spread := newInvertedAABB()
	transparency := float32(1)

	for i := 0; i < count; i++ {
		s := &lodSplats[start+i]
		weight := s.Opacity / totalWeight

		position = position.Add(s.Position.Mul(weight))
		color = color.Add(s.Color.Mul(weight))
		scale = scale.Add(s.Scale.Mul(weight))

		spread.ExpandPoint(s.Position)
		transparency *= 1 - clamp01(s.Opacity)
	}

	result.Position = position
	result.Color = color
	result.Scale = scale.Add(spread.Size().Mul(0.25))
	result.Rotation = mgl32.QuatIdent()
	result.Opacity = clamp01(1 - transparency)
	return result
}

// generateLODSplats populates the LOD pool for every non-leaf cluster,
// walking levels bottom-up. Level 1 merges runs of original splats; higher
// levels merge the concatenation of their children's LOD splats.
//
// Per level, each cluster's output range in the pool is reserved up front
// (counts are derivable before merging), so the merge work for a whole level
// runs concurrently with disjoint writers. The next level starts only after
// the previous one's pool entries are final, since it reads them.
func (b *Builder) generateLODSplats(splats []SplatRecord, h *Hierarchy, reductionRatio int) {
	h.LODSplats = nil
	nextLODSplat := uint32(0)

	for level := uint32(1); level < h.NumLevels; level++ {
		indices := h.levelClusterIndices(level)

		// Reserve pass: fix each cluster's slice of the pool.
		for _, idx := range indices {
			c := &h.Clusters[idx]
			c.LODSplatStart = nextLODSplat
			c.LODSplatCount = lodSplatCountFor(h, c, level, reductionRatio)
			nextLODSplat += c.LODSplatCount
		}
		h.LODSplats = append(h.LODSplats, make([]LODSplat, int(nextLODSplat)-len(h.LODSplats))...)

		// Merge pass: disjoint output ranges, safe to fan out.
		parallelFor(len(indices), func(k int) {
			c := &h.Clusters[indices[k]]
			if level == 1 {
				mergeClusterFromSplats(splats, h, c, reductionRatio)
			} else {
				mergeClusterFromChildren(h, c, reductionRatio)
			}
		})
	}
}

func lodSplatCountFor(h *Hierarchy, c *Cluster, level uint32, reductionRatio int) uint32 {
	if level == 1 {
		return uint32((int(c.SplatCount) + reductionRatio - 1) / reductionRatio)
	}
	sourceCount := 0
	for _, id := range c.Children {
		if child := h.Cluster(id); child != nil {
			sourceCount += int(child.LODSplatCount)
		}
	}
	// Guarded: a cluster whose children produced nothing produces nothing.
	return uint32((sourceCount + reductionRatio - 1) / reductionRatio)
}

func mergeClusterFromSplats(splats []SplatRecord, h *Hierarchy, c *Cluster, reductionRatio int) {
	for g := uint32(0); g < c.LODSplatCount; g++ {
		srcStart := int(c.SplatStart) + int(g)*reductionRatio
		srcCount := min(reductionRatio, int(c.SplatStart+c.SplatCount)-srcStart)
		h.LODSplats[c.LODSplatStart+g] = MergeSplats(splats, srcStart, srcCount)
	}
}

func mergeClusterFromChildren(h *Hierarchy, c *Cluster, reductionRatio int) {
	var source []LODSplat
	for _, id := range c.Children {
		child := h.Cluster(id)
		if child == nil || child.LODSplatCount == 0 {
			continue
		}
		source = append(source, h.ClusterLODSplats(child)...)
	}

	for g := uint32(0); g < c.LODSplatCount; g++ {
		srcStart := int(g) * reductionRatio
		srcCount := min(reductionRatio, len(source)-srcStart)
		h.LODSplats[c.LODSplatStart+g] = MergeLODSplats(source, srcStart, srcCount)
	}
}
