package gsplat

import (
	"errors"
	"math"
	"runtime"
	"sync"
)

// ErrNoSplats is returned when a build is attempted on an empty splat array.
var ErrNoSplats = errors.New("no splats to cluster")

// BuildSettings configures the hierarchy build.
type BuildSettings struct {
	// SplatsPerCluster is the leaf cluster size (last leaf may be smaller).
	SplatsPerCluster int
	// MaxChildrenPerCluster bounds parent fan-out.
	MaxChildrenPerCluster int
	// ReorderSplats physically rewrites the splat array into Morton order
	// before clustering, improving memory locality downstream.
	ReorderSplats bool
	// GenerateLOD synthesizes simplified splats for every non-leaf cluster.
	GenerateLOD bool
	// LODReductionRatio is how many consecutive source splats collapse into
	// one LOD splat.
	LODReductionRatio int
}

func DefaultBuildSettings() BuildSettings {
	return BuildSettings{
		SplatsPerCluster:      DefaultSplatsPerCluster,
		MaxChildrenPerCluster: DefaultMaxChildrenPerCluster,
		ReorderSplats:         true,
		GenerateLOD:           true,
		LODReductionRatio:     DefaultLODReductionRatio,
	}
}

func (s BuildSettings) sanitized() BuildSettings {
	if s.SplatsPerCluster < 1 {
		s.SplatsPerCluster = DefaultSplatsPerCluster
	}
	if s.MaxChildrenPerCluster < 2 {
		s.MaxChildrenPerCluster = DefaultMaxChildrenPerCluster
	}
	if s.LODReductionRatio < 1 {
		s.LODReductionRatio = DefaultLODReductionRatio
	}
	return s
}

// Builder constructs cluster hierarchies from splat arrays. Identifier
// assignment state lives in the builder, so a Builder must not be shared
// across concurrent builds; the build itself fans out internally.
type Builder struct {
	logger Logger
	nextID uint32
}

func NewBuilder(logger Logger) *Builder {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Builder{logger: logger}
}

// BuildHierarchy is a convenience wrapper around a one-shot Builder.
func BuildHierarchy(splats []SplatRecord, settings BuildSettings) (*Hierarchy, error) {
	return NewBuilder(nil).Build(splats, settings)
}

// Build constructs the full cluster hierarchy for splats. On failure the
// returned hierarchy is empty and invalid; on success it is complete and
// must be treated as immutable from then on.
//
// If settings.ReorderSplats is set, splats is rewritten into Morton order.
func (b *Builder) Build(splats []SplatRecord, settings BuildSettings) (*Hierarchy, error) {
	h := &Hierarchy{}
	h.Reset()

	if len(splats) == 0 {
		return h, ErrNoSplats
	}
	settings = settings.sanitized()

	b.logger.Infof("building cluster hierarchy for %d splats", len(splats))

	h.SplatsPerCluster = uint32(settings.SplatsPerCluster)
	h.TotalSplatCount = uint32(len(splats))

	bounds := ComputeGlobalBounds(splats)
	b.logger.Debugf("global bounds: min=%v max=%v", bounds.Min, bounds.Max)

	SortSplatsByMortonCode(splats, bounds, settings.ReorderSplats)

	leaves := b.createLeafClusters(splats, settings.SplatsPerCluster)
	h.Clusters = leaves
	h.NumLeafClusters = uint32(len(leaves))
	b.nextID = uint32(len(leaves))
	b.logger.Infof("created %d leaf clusters", len(leaves))

	// Grow parent levels until a single root remains. Each pass builds all
	// parents of one level concurrently; children of a parent group are
	// disjoint, so parent construction never races.
	levelStart := 0
	level := uint32(0)
	for len(h.Clusters)-levelStart > 1 {
		level++
		children := h.Clusters[levelStart:]
		parents := b.buildParentLevel(children, settings.MaxChildrenPerCluster, level)
		b.logger.Debugf("level %d: %d clusters", level, len(parents))

		levelStart = len(h.Clusters)
		h.Clusters = append(h.Clusters, parents...)
	}

	h.NumLevels = level + 1
	h.RootIndex = uint32(len(h.Clusters) - 1)

	// Error pass, level by level: a parent's error folds in its children's,
	// so a level may only run once the one below is final.
	for lvl := uint32(1); lvl < h.NumLevels; lvl++ {
		indices := h.levelClusterIndices(lvl)
		parallelFor(len(indices), func(k int) {
			calculateClusterError(h, &h.Clusters[indices[k]])
		})
	}

	b.logger.Infof("hierarchy complete: %d clusters, %d levels, root %d",
		len(h.Clusters), h.NumLevels, h.RootIndex)

	if settings.GenerateLOD && h.NumLevels > 1 {
		b.generateLODSplats(splats, h, settings.LODReductionRatio)
		b.logger.Infof("generated %d LOD splats", len(h.LODSplats))
	}

	return h, nil
}

// createLeafClusters partitions splats into contiguous fixed-size leaves and
// computes each leaf's bounds. Leaves are independent, so bound scans run
// concurrently.
func (b *Builder) createLeafClusters(splats []SplatRecord, splatsPerCluster int) []Cluster {
	numClusters := (len(splats) + splatsPerCluster - 1) / splatsPerCluster
	leaves := make([]Cluster, numClusters)

	parallelFor(numClusters, func(i int) {
		c := &leaves[i]
		c.ID = uint32(i)
		c.ParentID = RootParentID
		c.Level = 0
		c.SplatStart = uint32(i * splatsPerCluster)
		c.SplatCount = uint32(min(splatsPerCluster, len(splats)-i*splatsPerCluster))
		c.MaxError = 0

		c.resetBounds()
		for s := c.SplatStart; s < c.SplatStart+c.SplatCount; s++ {
			c.Bounds.ExpandPoint(splats[s].Position)
		}
		c.computeSphereFromBounds()
	})

	return leaves
}

// buildParentLevel groups children into contiguous runs of at most
// maxChildren and creates one parent per run. Child ParentID fields are
// written in place.
func (b *Builder) buildParentLevel(children []Cluster, maxChildren int, level uint32) []Cluster {
	numParents := (len(children) + maxChildren - 1) / maxChildren
	parents := make([]Cluster, numParents)
	firstID := b.nextID
	b.nextID += uint32(numParents)

	parallelFor(numParents, func(pi int) {
		p := &parents[pi]
		p.ID = firstID + uint32(pi)
		p.ParentID = RootParentID // set if another level is built on top
		p.Level = level
		p.resetBounds()

		childStart := pi * maxChildren
		childEnd := min(childStart+maxChildren, len(children))

		splatStart := uint32(math.MaxUint32)
		splatCount := uint32(0)

		p.Children = make([]uint32, 0, childEnd-childStart)
		for ci := childStart; ci < childEnd; ci++ {
			child := &children[ci]
			child.ParentID = p.ID
			p.Children = append(p.Children, child.ID)
			p.Bounds.ExpandBox(child.Bounds)

			splatCount += child.SplatCount
			if child.SplatStart < splatStart {
				splatStart = child.SplatStart
			}
		}

		// Children are contiguous in splat order, so the union of their
		// ranges is itself a single range.
		p.SplatStart = splatStart
		p.SplatCount = splatCount
		p.computeSphereFromBounds()
	})

	return parents
}

// calculateClusterError computes the conservative simplification error of a
// non-leaf cluster: the worst case, over its children, of how far geometry
// accounted to a child could sit from the parent's own sphere surface, plus
// whatever error the child already carries.
func calculateClusterError(h *Hierarchy, parent *Cluster) {
	maxErr := float32(0)
	for _, id := range parent.Children {
		child := h.Cluster(id)
		if child == nil {
			// Dangling child reference; contributes nothing.
			continue
		}
		centerDist := parent.SphereCenter.Sub(child.SphereCenter).Len()
		total := centerDist + child.SphereRadius + child.MaxError
		if total > maxErr {
			maxErr = total
		}
	}
	parent.MaxError = max(0, maxErr-parent.SphereRadius)
}

// parallelFor runs fn(0..n-1) across up to NumCPU goroutines in contiguous
// shards and waits for completion. fn calls for distinct i must not share
// mutable state.
func parallelFor(n int, fn func(i int)) {
	workers := min(runtime.NumCPU(), n)
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
