package gsplat

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GPU-facing fixed layouts, little endian, matching the compute-side structs:
//
// struct GPUCluster {            // 80 bytes
//   bounds_min    : vec3<f32>;   // 12
//   splat_start   : u32;         // 4
//   bounds_max    : vec3<f32>;   // 12
//   splat_count   : u32;         // 4
//   sphere        : vec4<f32>;   // 16 (xyz center, w radius)
//   parent        : u32;         // 4
//   level         : u32;         // 4
//   max_error     : f32;         // 4
//   lod_start     : u32;         // 4
//   lod_count     : u32;         // 4
//   padding       : u32[3];      // 12
// };
//
// struct GPULODSplat {           // 48 bytes
//   position      : vec3<f32>;   // 12
//   scale         : vec3<f32>;   // 12 (position/scale swapped vs CPU order)
//   rotation      : vec4<f32>;   // 16
//   color_opacity : u32;         // 4 (RGBA8)
//   padding       : u32;         // 4
// };

const (
	// PackedClusterSize is the byte size of one GPU cluster record.
	PackedClusterSize = 80
	// PackedLODSplatSize is the byte size of one GPU LOD splat record.
	PackedLODSplatSize = 48
)

func putVec3(buf []byte, v mgl32.Vec3) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.X()))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Y()))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Z()))
}

// PackColorOpacity packs linear RGB and opacity into an RGBA8 word
// (A in the top byte).
func PackColorOpacity(color mgl32.Vec3, opacity float32) uint32 {
	r := uint32(clamp01(color.X()) * 255)
	g := uint32(clamp01(color.Y()) * 255)
	bl := uint32(clamp01(color.Z()) * 255)
	a := uint32(clamp01(opacity) * 255)
	return a<<24 | bl<<16 | g<<8 | r
}

// ToGPUBytes serializes the cluster into its 80-byte GPU layout.
func (c *Cluster) ToGPUBytes() []byte {
	buf := make([]byte, PackedClusterSize)

	putVec3(buf[0:12], c.Bounds.Min)
	binary.LittleEndian.PutUint32(buf[12:16], c.SplatStart)
	putVec3(buf[16:28], c.Bounds.Max)
	binary.LittleEndian.PutUint32(buf[28:32], c.SplatCount)

	putVec3(buf[32:44], c.SphereCenter)
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(c.SphereRadius))

	binary.LittleEndian.PutUint32(buf[48:52], c.ParentID)
	binary.LittleEndian.PutUint32(buf[52:56], c.Level)
	binary.LittleEndian.PutUint32(buf[56:60], math.Float32bits(c.MaxError))
	binary.LittleEndian.PutUint32(buf[60:64], c.LODSplatStart)
	binary.LittleEndian.PutUint32(buf[64:68], c.LODSplatCount)

	// Trailing 12 bytes stay zero.
	return buf
}

// ToGPUBytes serializes the LOD splat into its 48-byte GPU layout.
func (s *LODSplat) ToGPUBytes() []byte {
	buf := make([]byte, PackedLODSplatSize)

	putVec3(buf[0:12], s.Position)
	putVec3(buf[12:24], s.Scale)

	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(s.Rotation.V.X()))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(s.Rotation.V.Y()))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(s.Rotation.V.Z()))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(s.Rotation.W))

	binary.LittleEndian.PutUint32(buf[40:44], PackColorOpacity(s.Color, s.Opacity))
	return buf
}

// PackClustersGPU concatenates all cluster records in hierarchy order,
// ready for a structured-buffer upload.
func PackClustersGPU(h *Hierarchy) []byte {
	out := make([]byte, 0, len(h.Clusters)*PackedClusterSize)
	for i := range h.Clusters {
		out = append(out, h.Clusters[i].ToGPUBytes()...)
	}
	return out
}

// PackLODSplatsGPU concatenates all LOD splat records in pool order.
func PackLODSplatsGPU(h *Hierarchy) []byte {
	out := make([]byte, 0, len(h.LODSplats)*PackedLODSplatSize)
	for i := range h.LODSplats {
		out = append(out, h.LODSplats[i].ToGPUBytes()...)
	}
	return out
}
