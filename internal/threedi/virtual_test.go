package threedi

import (
	"errors"
	"math"
	"testing"

	"foldcode/internal/asset"
	"foldcode/internal/geom"
)

var testParams = asset.Params{Alpha: 270, Beta: 0, D: 2, PenaltyClip: 4}

func TestVirtualCenterDeterministic(t *testing.T) {
	ca := geom.Vec3{1, 2, 3}
	n := geom.Vec3{0.5, 3.2, 2.8}
	c := geom.Vec3{2.1, 2.5, 3.9}

	a, err := VirtualCenter(ca, n, c, testParams)
	if err != nil {
		t.Fatalf("virtual center: %v", err)
	}
	b, err := VirtualCenter(ca, n, c, testParams)
	if err != nil {
		t.Fatalf("virtual center: %v", err)
	}
	if a != b {
		t.Fatalf("construction not deterministic: %v vs %v", a, b)
	}
	if !a.Finite() {
		t.Fatalf("non-finite center: %v", a)
	}
}

func TestVirtualCenterRotationEquivariant(t *testing.T) {
	ca := geom.Vec3{1, 2, 3}
	n := geom.Vec3{0.5, 3.2, 2.8}
	c := geom.Vec3{2.1, 2.5, 3.9}

	axis, err := (geom.Vec3{1, -2, 0.5}).Unit()
	if err != nil {
		t.Fatalf("axis: %v", err)
	}
	theta := 1.1
	rot := func(v geom.Vec3) geom.Vec3 { return geom.Rotate(v, axis, theta) }

	direct, err := VirtualCenter(rot(ca), rot(n), rot(c), testParams)
	if err != nil {
		t.Fatalf("rotated input: %v", err)
	}
	original, err := VirtualCenter(ca, n, c, testParams)
	if err != nil {
		t.Fatalf("original input: %v", err)
	}
	if geom.Dist(direct, rot(original)) > 1e-9 {
		t.Fatalf("construction not rotation-equivariant: %v vs %v", direct, rot(original))
	}
}

func TestVirtualCenterTranslationEquivariant(t *testing.T) {
	ca := geom.Vec3{1, 2, 3}
	n := geom.Vec3{0.5, 3.2, 2.8}
	c := geom.Vec3{2.1, 2.5, 3.9}
	off := geom.Vec3{17.3, -4.1, 2.2}

	shifted, err := VirtualCenter(ca.Add(off), n.Add(off), c.Add(off), testParams)
	if err != nil {
		t.Fatalf("shifted input: %v", err)
	}
	original, err := VirtualCenter(ca, n, c, testParams)
	if err != nil {
		t.Fatalf("original input: %v", err)
	}
	if geom.Dist(shifted, original.Add(off)) > 1e-9 {
		t.Fatalf("construction not translation-equivariant")
	}
}

// Mirroring the backbone must not commute with the construction: the
// alpha rotation has a handedness, which is what lets the alphabet
// tell a structure from its mirror image.
func TestVirtualCenterChiral(t *testing.T) {
	ca := geom.Vec3{1, 2, 3}
	n := geom.Vec3{0.5, 3.2, 2.8}
	c := geom.Vec3{2.1, 2.5, 3.9}

	mirror := func(v geom.Vec3) geom.Vec3 { return geom.Vec3{-v.X, v.Y, v.Z} }

	mirrored, err := VirtualCenter(mirror(ca), mirror(n), mirror(c), testParams)
	if err != nil {
		t.Fatalf("mirrored input: %v", err)
	}
	original, err := VirtualCenter(ca, n, c, testParams)
	if err != nil {
		t.Fatalf("original input: %v", err)
	}
	if geom.Dist(mirrored, mirror(original)) < 1e-6 {
		t.Fatal("mirrored construction equals mirrored center; chirality lost")
	}
}

func TestVirtualCenterCoincidentAtoms(t *testing.T) {
	ca := geom.Vec3{1, 1, 1}
	if _, err := VirtualCenter(ca, ca, geom.Vec3{2, 1, 1}, testParams); !errors.Is(err, geom.ErrDegenerateGeometry) {
		t.Fatalf("expected ErrDegenerateGeometry for ca==n, got %v", err)
	}
	n := geom.Vec3{0, 1, 1}
	if _, err := VirtualCenter(ca, n, n, testParams); !errors.Is(err, geom.ErrDegenerateGeometry) {
		t.Fatalf("expected ErrDegenerateGeometry for c==n, got %v", err)
	}
}

func TestVirtualCenterBetaRotation(t *testing.T) {
	ca := geom.Vec3{1, 2, 3}
	n := geom.Vec3{0.5, 3.2, 2.8}
	c := geom.Vec3{2.1, 2.5, 3.9}

	p := testParams
	p.Beta = 35
	tilted, err := VirtualCenter(ca, n, c, p)
	if err != nil {
		t.Fatalf("beta-tilted: %v", err)
	}
	plain, err := VirtualCenter(ca, n, c, testParams)
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	if geom.Dist(tilted, plain) < 1e-9 {
		t.Fatal("beta rotation had no effect")
	}
	// Both rotations preserve the offset length.
	if math.Abs(geom.Dist(tilted, ca)-geom.Dist(plain, ca)) > 1e-9 {
		t.Fatal("beta rotation changed the offset length")
	}
}
