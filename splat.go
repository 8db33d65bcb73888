package gsplat

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Degree-0 spherical harmonic basis constant, used to turn the DC
	// coefficient into a linear RGB color.
	shC0 = 0.28209479177387814

	// NumSHRestCoeffs is the number of higher-order SH coefficients carried
	// per splat (degrees 1-3, 3 channels each).
	NumSHRestCoeffs = 15
)

// SplatRecord is a single 3D Gaussian splat as produced by an importer.
// The array of records is read-only for the whole pipeline, except for the
// one physical reorder pass in SortSplatsByMortonCode.
type SplatRecord struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Opacity  float32 // [0,1]

	// SHDC is the degree-0 (DC) color coefficient per channel.
	SHDC mgl32.Vec3
	// SHRest holds the higher-order coefficients. Unused by the hierarchy
	// builder itself but carried through the reorder pass untouched.
	SHRest [NumSHRestCoeffs]mgl32.Vec3
}

// LODSplat is a simplified representative splat standing in for a merged run
// of finer splats. Color is flat RGB; no higher-order SH survives merging.
type LODSplat struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Opacity  float32
	Color    mgl32.Vec3
}

func defaultLODSplat() LODSplat {
	return LODSplat{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Color:    mgl32.Vec3{1, 1, 1},
	}
}

// SHDCToColor converts a degree-0 SH coefficient into linear RGB.
func SHDCToColor(dc mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		0.5 + shC0*dc.X(),
		0.5 + shC0*dc.Y(),
		0.5 + shC0*dc.Z(),
	}
}

// ComputeGlobalBounds scans all splat positions into one AABB. A degenerate
// box (all points coincident) is expanded by one unit per axis so later
// normalization never divides by zero.
func ComputeGlobalBounds(splats []SplatRecord) AABB {
	bounds := newInvertedAABB()
	for i := range splats {
		bounds.ExpandPoint(splats[i].Position)
	}
	if len(splats) == 0 {
		return AABB{}
	}
	if bounds.Size().Len() < 1e-6 {
		one := mgl32.Vec3{1, 1, 1}
		bounds.Min = bounds.Min.Sub(one)
		bounds.Max = bounds.Max.Add(one)
	}
	return bounds
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
