package gsplat

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	mortonBitsPerAxis = 21
	mortonMaxCoord    = (1 << mortonBitsPerAxis) - 1
)

// part1By2 spreads the low 21 bits of x so that two zero bits sit between
// every original bit.
func part1By2(x uint64) uint64 {
	x &= 0x1fffff
	x = (x | (x << 32)) & 0x1f00000000ffff
	x = (x | (x << 16)) & 0x1f0000ff0000ff
	x = (x | (x << 8)) & 0x100f00f00f00f00f
	x = (x | (x << 4)) & 0x10c30c30c30c30c3
	x = (x | (x << 2)) & 0x1249249249249249
	return x
}

func compact1By2(x uint64) uint64 {
	x &= 0x1249249249249249
	x = (x ^ (x >> 2)) & 0x10c30c30c30c30c3
	x = (x ^ (x >> 4)) & 0x100f00f00f00f00f
	x = (x ^ (x >> 8)) & 0x1f0000ff0000ff
	x = (x ^ (x >> 16)) & 0x1f00000000ffff
	x = (x ^ (x >> 32)) & 0x1fffff
	return x
}

// EncodeMorton3D maps a position to a 63-bit Z-order code. The position is
// normalized against bounds (with a small epsilon in the denominator so a
// zero-extent axis never divides by zero), quantized to 21 bits per axis and
// bit-interleaved. Pure function: equal inputs give equal codes.
func EncodeMorton3D(p mgl32.Vec3, bounds AABB) uint64 {
	const eps = 1e-8

	size := bounds.Size()
	var q [3]uint64
	for axis := 0; axis < 3; axis++ {
		n := (p[axis] - bounds.Min[axis]) / (size[axis] + eps)
		v := n * mortonMaxCoord
		if v < 0 {
			v = 0
		}
		if v > mortonMaxCoord {
			v = mortonMaxCoord
		}
		q[axis] = uint64(v)
	}

	return part1By2(q[0]) | part1By2(q[1])<<1 | part1By2(q[2])<<2
}

// DecodeMorton3D recovers the quantized per-axis cell coordinates from a
// code. Used by tests and debug tooling; the builder itself only compares
// codes.
func DecodeMorton3D(code uint64) (x, y, z uint32) {
	x = uint32(compact1By2(code))
	y = uint32(compact1By2(code >> 1))
	z = uint32(compact1By2(code >> 2))
	return
}
