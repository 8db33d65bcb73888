package gsplat

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPart1By2Roundtrip(t *testing.T) {
	values := []uint64{0, 1, 2, 0x155555, 0x1fffff, 0x12345, 0xABCDE}
	for _, v := range values {
		spread := part1By2(v)
		if got := compact1By2(spread); got != v {
			t.Errorf("compact1By2(part1By2(%#x)) = %#x", v, got)
		}
	}
}

func TestEncodeMorton3DDeterministic(t *testing.T) {
	bounds := AABB{Min: mgl32.Vec3{-5, -5, -5}, Max: mgl32.Vec3{5, 5, 5}}
	p := mgl32.Vec3{1.25, -3.5, 4.75}

	a := EncodeMorton3D(p, bounds)
	b := EncodeMorton3D(p, bounds)
	if a != b {
		t.Errorf("same input produced different codes: %#x vs %#x", a, b)
	}
}

func TestEncodeMorton3DRange(t *testing.T) {
	bounds := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}

	if code := EncodeMorton3D(bounds.Min, bounds); code != 0 {
		t.Errorf("min corner should encode to 0, got %#x", code)
	}

	// 63 bits: the top bit of a uint64 never participates.
	code := EncodeMorton3D(bounds.Max, bounds)
	if code>>63 != 0 {
		t.Errorf("code uses more than 63 bits: %#x", code)
	}

	x, y, z := DecodeMorton3D(code)
	if x > mortonMaxCoord || y > mortonMaxCoord || z > mortonMaxCoord {
		t.Errorf("decoded cell out of 21-bit range: %d %d %d", x, y, z)
	}
}

func TestEncodeMorton3DDecodeInterleave(t *testing.T) {
	// A point at a known normalized offset must land in the matching cell on
	// each axis once decoded.
	bounds := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	p := mgl32.Vec3{0.5, 0.25, 0.75}

	x, y, z := DecodeMorton3D(EncodeMorton3D(p, bounds))

	checks := []struct {
		name string
		got  uint32
		frac float64
	}{
		{"x", x, 0.5},
		{"y", y, 0.25},
		{"z", z, 0.75},
	}
	for _, c := range checks {
		want := uint32(c.frac * mortonMaxCoord)
		// Allow one cell of slack for the epsilon in the denominator.
		if c.got+1 < want || c.got > want+1 {
			t.Errorf("%s cell = %d, want about %d", c.name, c.got, want)
		}
	}
}

func TestEncodeMorton3DMonotonicAlongAxis(t *testing.T) {
	bounds := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{100, 100, 100}}

	prev := uint64(0)
	for i := 0; i <= 100; i++ {
		code := EncodeMorton3D(mgl32.Vec3{float32(i), 0, 0}, bounds)
		if code < prev {
			t.Fatalf("codes not monotonic along x: code(%d)=%#x < %#x", i, code, prev)
		}
		prev = code
	}
}

func TestEncodeMorton3DDegenerateBounds(t *testing.T) {
	// Zero-extent axes must not divide by zero or poison the code.
	bounds := AABB{Min: mgl32.Vec3{1, 2, 3}, Max: mgl32.Vec3{4, 2, 3}}

	a := EncodeMorton3D(mgl32.Vec3{1, 2, 3}, bounds)
	b := EncodeMorton3D(mgl32.Vec3{4, 2, 3}, bounds)
	if a >= b {
		t.Errorf("expected code ordering along the only live axis, got %#x >= %#x", a, b)
	}
}
