package gsplat

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Procedural splat clouds for tooling and tests. Real datasets come from an
// external importer; these generators stand in for it.

// GenerateBoxCloud fills an axis-aligned box of the given size (centered at
// the origin) with count uniformly distributed splats. Deterministic per
// seed.
func GenerateBoxCloud(count int, size mgl32.Vec3, seed int64) []SplatRecord {
	rng := rand.New(rand.NewSource(seed))
	splats := make([]SplatRecord, count)
	for i := range splats {
		splats[i] = randomSplat(rng, mgl32.Vec3{
			(rng.Float32() - 0.5) * size.X(),
			(rng.Float32() - 0.5) * size.Y(),
			(rng.Float32() - 0.5) * size.Z(),
		})
	}
	return splats
}

// GenerateShellCloud distributes count splats over a sphere surface of the
// given radius, with slight radial jitter. Deterministic per seed.
func GenerateShellCloud(count int, radius float32, seed int64) []SplatRecord {
	rng := rand.New(rand.NewSource(seed))
	splats := make([]SplatRecord, count)
	for i := range splats {
		z := rng.Float64()*2 - 1
		phi := rng.Float64() * 2 * math.Pi
		ring := math.Sqrt(1 - z*z)
		r := radius * (0.95 + 0.1*rng.Float32())
		splats[i] = randomSplat(rng, mgl32.Vec3{
			float32(ring*math.Cos(phi)) * r,
			float32(ring*math.Sin(phi)) * r,
			float32(z) * r,
		})
	}
	return splats
}

func randomSplat(rng *rand.Rand, position mgl32.Vec3) SplatRecord {
	return SplatRecord{
		Position: position,
		Rotation: mgl32.QuatIdent(),
		Scale: mgl32.Vec3{
			0.01 + 0.04*rng.Float32(),
			0.01 + 0.04*rng.Float32(),
			0.01 + 0.04*rng.Float32(),
		},
		Opacity: 0.2 + 0.8*rng.Float32(),
		SHDC: mgl32.Vec3{
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
		},
	}
}
