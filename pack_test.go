package gsplat

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestClusterToGPUBytes(t *testing.T) {
	c := Cluster{
		ID:            7,
		ParentID:      3,
		Level:         2,
		Bounds:        AABB{Min: mgl32.Vec3{-1, -2, -3}, Max: mgl32.Vec3{1, 2, 3}},
		SphereCenter:  mgl32.Vec3{0.5, 0.5, 0.5},
		SphereRadius:  4.25,
		SplatStart:    100,
		SplatCount:    128,
		MaxError:      0.75,
		LODSplatStart: 32,
		LODSplatCount: 8,
	}

	data := c.ToGPUBytes()
	if len(data) != PackedClusterSize {
		t.Fatalf("expected %d bytes, got %d", PackedClusterSize, len(data))
	}

	f32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
	}
	u32 := func(off int) uint32 {
		return binary.LittleEndian.Uint32(data[off : off+4])
	}

	if f32(0) != -1 || f32(4) != -2 || f32(8) != -3 {
		t.Error("bounds min misplaced")
	}
	if u32(12) != 100 {
		t.Errorf("splat start at offset 12 = %d", u32(12))
	}
	if f32(16) != 1 || f32(20) != 2 || f32(24) != 3 {
		t.Error("bounds max misplaced")
	}
	if u32(28) != 128 {
		t.Errorf("splat count at offset 28 = %d", u32(28))
	}
	if f32(32) != 0.5 || f32(44) != 4.25 {
		t.Error("bounding sphere misplaced")
	}
	if u32(48) != 3 || u32(52) != 2 {
		t.Error("parent or level misplaced")
	}
	if f32(56) != 0.75 {
		t.Errorf("max error at offset 56 = %f", f32(56))
	}
	if u32(60) != 32 || u32(64) != 8 {
		t.Error("LOD range misplaced")
	}
	for off := 68; off < 80; off += 4 {
		if u32(off) != 0 {
			t.Errorf("padding at offset %d is %d", off, u32(off))
		}
	}
}

func TestLODSplatToGPUBytes(t *testing.T) {
	s := LODSplat{
		Position: mgl32.Vec3{1, 2, 3},
		Scale:    mgl32.Vec3{0.5, 0.25, 0.125},
		Rotation: mgl32.QuatIdent(),
		Opacity:  1,
		Color:    mgl32.Vec3{1, 0, 0},
	}

	data := s.ToGPUBytes()
	if len(data) != PackedLODSplatSize {
		t.Fatalf("expected %d bytes, got %d", PackedLODSplatSize, len(data))
	}

	f32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
	}

	if f32(0) != 1 || f32(4) != 2 || f32(8) != 3 {
		t.Error("position misplaced")
	}
	if f32(12) != 0.5 || f32(16) != 0.25 || f32(20) != 0.125 {
		t.Error("scale misplaced")
	}
	// Identity quaternion packs as (0,0,0,1).
	if f32(24) != 0 || f32(28) != 0 || f32(32) != 0 || f32(36) != 1 {
		t.Error("rotation misplaced")
	}
	packed := binary.LittleEndian.Uint32(data[40:44])
	if packed != 0xFF0000FF {
		t.Errorf("color/opacity word = %#08x, want 0xFF0000FF", packed)
	}
}

func TestPackColorOpacity(t *testing.T) {
	if got := PackColorOpacity(mgl32.Vec3{0, 0, 0}, 0); got != 0 {
		t.Errorf("black transparent = %#08x", got)
	}
	if got := PackColorOpacity(mgl32.Vec3{1, 1, 1}, 1); got != 0xFFFFFFFF {
		t.Errorf("white opaque = %#08x", got)
	}
	// Out-of-range channels clamp instead of wrapping.
	if got := PackColorOpacity(mgl32.Vec3{2, -1, 0.5}, 3); got>>24 != 0xFF {
		t.Errorf("opacity did not clamp: %#08x", got)
	}
}

func TestPackHierarchyGPU(t *testing.T) {
	splats := GenerateBoxCloud(600, mgl32.Vec3{5, 5, 5}, 15)
	h := buildTestHierarchy(t, splats, DefaultBuildSettings())

	clusters := PackClustersGPU(h)
	if len(clusters) != len(h.Clusters)*PackedClusterSize {
		t.Errorf("cluster buffer is %d bytes, want %d", len(clusters), len(h.Clusters)*PackedClusterSize)
	}
	lod := PackLODSplatsGPU(h)
	if len(lod) != len(h.LODSplats)*PackedLODSplatSize {
		t.Errorf("LOD buffer is %d bytes, want %d", len(lod), len(h.LODSplats)*PackedLODSplatSize)
	}
}
