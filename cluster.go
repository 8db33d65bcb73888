package gsplat

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultSplatsPerCluster is the target leaf cluster size.
	DefaultSplatsPerCluster = 128

	// DefaultMaxChildrenPerCluster bounds the fan-out of parent clusters.
	DefaultMaxChildrenPerCluster = 8

	// DefaultLODReductionRatio is how many source splats each LOD splat
	// stands in for.
	DefaultLODReductionRatio = 4

	// InvalidClusterID marks an unset cluster reference.
	InvalidClusterID uint32 = 0xFFFFFFFF

	// RootParentID is the parent sentinel carried by the root cluster.
	RootParentID uint32 = 0xFFFFFFFF
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func newInvertedAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

func (b *AABB) ExpandPoint(p mgl32.Vec3) {
	b.Min = mgl32.Vec3{min(b.Min.X(), p.X()), min(b.Min.Y(), p.Y()), min(b.Min.Z(), p.Z())}
	b.Max = mgl32.Vec3{max(b.Max.X(), p.X()), max(b.Max.Y(), p.Y()), max(b.Max.Z(), p.Z())}
}

func (b *AABB) ExpandBox(o AABB) {
	b.ExpandPoint(o.Min)
	b.ExpandPoint(o.Max)
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// ContainsBox reports whether o lies fully inside b (with a small tolerance
// for accumulated float error).
func (b AABB) ContainsBox(o AABB) bool {
	const eps = 1e-5
	for axis := 0; axis < 3; axis++ {
		if o.Min[axis] < b.Min[axis]-eps || o.Max[axis] > b.Max[axis]+eps {
			return false
		}
	}
	return true
}

// Cluster is one node of the spatial hierarchy: a contiguous run of splats
// (leaf) or a group of child clusters (parent). Clusters live in a flat
// array; identifiers are dense and equal to the array index.
type Cluster struct {
	ID       uint32
	ParentID uint32 // RootParentID for the root
	Children []uint32
	Level    uint32 // 0 = leaf, increases toward the root

	Bounds       AABB
	SphereCenter mgl32.Vec3
	SphereRadius float32

	// Splat range into the (reordered) splat array. For parents this is the
	// union of the children's ranges, which is contiguous after the Morton
	// sort.
	SplatStart uint32
	SplatCount uint32

	// MaxError is the worst-case world-space displacement from rendering
	// this cluster's simplified splats instead of descending into its
	// children. Zero for leaves.
	MaxError float32

	// LOD splat range into Hierarchy.LODSplats. Zero count for leaves.
	LODSplatStart uint32
	LODSplatCount uint32
}

func (c *Cluster) IsLeaf() bool {
	return len(c.Children) == 0
}

func (c *Cluster) IsRoot() bool {
	return c.ParentID == RootParentID
}

func (c *Cluster) resetBounds() {
	c.Bounds = newInvertedAABB()
}

// computeSphereFromBounds derives a conservative bounding sphere: the box
// midpoint and the distance to the max corner. Not minimal, but cheap and
// always containing.
func (c *Cluster) computeSphereFromBounds() {
	c.SphereCenter = c.Bounds.Center()
	c.SphereRadius = c.Bounds.Max.Sub(c.SphereCenter).Len()
}

// Hierarchy is the complete cluster tree plus the LOD splat pool. Clusters
// are stored level by level, leaves first, so the root is always last.
type Hierarchy struct {
	Clusters  []Cluster
	LODSplats []LODSplat

	RootIndex       uint32
	NumLevels       uint32
	NumLeafClusters uint32

	TotalSplatCount  uint32
	SplatsPerCluster uint32
}

// Reset returns the hierarchy to its empty, invalid state.
func (h *Hierarchy) Reset() {
	*h = Hierarchy{RootIndex: InvalidClusterID}
}

func (h *Hierarchy) IsValid() bool {
	return len(h.Clusters) > 0 && h.RootIndex != InvalidClusterID
}

// Cluster looks up a cluster by identifier. Identifiers are never renumbered
// after assignment, so identifier == index into Clusters.
func (h *Hierarchy) Cluster(id uint32) *Cluster {
	if int(id) >= len(h.Clusters) {
		return nil
	}
	return &h.Clusters[id]
}

func (h *Hierarchy) Root() *Cluster {
	if !h.IsValid() {
		return nil
	}
	return &h.Clusters[h.RootIndex]
}

// LeafClusters returns the leaf nodes. Leaves occupy the front of the
// cluster array by construction.
func (h *Hierarchy) LeafClusters() []Cluster {
	return h.Clusters[:h.NumLeafClusters]
}

// ClusterLODSplats returns the slice of the LOD pool owned by c. Empty for
// leaves.
func (h *Hierarchy) ClusterLODSplats(c *Cluster) []LODSplat {
	if c.LODSplatCount == 0 {
		return nil
	}
	return h.LODSplats[c.LODSplatStart : c.LODSplatStart+c.LODSplatCount]
}

// levelClusterIndices collects indices of all clusters at the given level,
// in append order.
func (h *Hierarchy) levelClusterIndices(level uint32) []int {
	var out []int
	for i := range h.Clusters {
		if h.Clusters[i].Level == level {
			out = append(out, i)
		}
	}
	return out
}
