package geom

import (
	"errors"
	"math"
	"testing"
)

func TestArithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, -5, 6}

	if got := a.Add(b); got != (Vec3{5, -3, 9}) {
		t.Fatalf("unexpected sum: %v", got)
	}
	if got := a.Sub(b); got != (Vec3{-3, 7, -3}) {
		t.Fatalf("unexpected difference: %v", got)
	}
	if got := a.Scale(2); got != (Vec3{2, 4, 6}) {
		t.Fatalf("unexpected scale: %v", got)
	}
	if got := a.Dot(b); got != 4-10+18 {
		t.Fatalf("unexpected dot: %f", got)
	}
}

func TestCrossFollowsRightHandRule(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	if got := x.Cross(y); got != (Vec3{0, 0, 1}) {
		t.Fatalf("x cross y: %v", got)
	}
	if got := y.Cross(x); got != (Vec3{0, 0, -1}) {
		t.Fatalf("y cross x: %v", got)
	}
}

func TestNormAndDist(t *testing.T) {
	if got := (Vec3{3, 4, 0}).Norm(); got != 5 {
		t.Fatalf("unexpected norm: %f", got)
	}
	if got := Dist(Vec3{1, 1, 1}, Vec3{1, 4, 5}); got != 5 {
		t.Fatalf("unexpected dist: %f", got)
	}
}

func TestUnit(t *testing.T) {
	u, err := (Vec3{0, 0, 9}).Unit()
	if err != nil {
		t.Fatalf("unit failed: %v", err)
	}
	if u != (Vec3{0, 0, 1}) {
		t.Fatalf("unexpected unit vector: %v", u)
	}

	if _, err := (Vec3{}).Unit(); !errors.Is(err, ErrDegenerateGeometry) {
		t.Fatalf("expected ErrDegenerateGeometry, got %v", err)
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	got := Rotate(Vec3{1, 0, 0}, Vec3{0, 0, 1}, math.Pi/2)
	want := Vec3{0, 1, 0}
	if Dist(got, want) > 1e-12 {
		t.Fatalf("quarter turn about z: got %v want %v", got, want)
	}
}

func TestRotatePreservesAxisComponent(t *testing.T) {
	axis, err := (Vec3{1, 1, 1}).Unit()
	if err != nil {
		t.Fatalf("axis: %v", err)
	}
	v := Vec3{0.3, -1.2, 2.5}
	for _, theta := range []float64{0, 0.7, math.Pi, 4.5} {
		r := Rotate(v, axis, theta)
		if math.Abs(r.Norm()-v.Norm()) > 1e-12 {
			t.Fatalf("theta=%f changed length: %f -> %f", theta, v.Norm(), r.Norm())
		}
		if math.Abs(r.Dot(axis)-v.Dot(axis)) > 1e-12 {
			t.Fatalf("theta=%f changed axis component", theta)
		}
	}
}

func TestFiniteAndMissing(t *testing.T) {
	if !(Vec3{1, 2, 3}).Finite() {
		t.Fatal("finite vector reported non-finite")
	}
	if Missing().Finite() {
		t.Fatal("missing marker reported finite")
	}
	if (Vec3{1, math.Inf(1), 0}).Finite() {
		t.Fatal("infinite component reported finite")
	}
}
