package mathutil

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-4

func TestMoveTowards(t *testing.T) {
	tests := []struct {
		name     string
		current  mgl32.Vec3
		target   mgl32.Vec3
		maxDelta float32
		want     mgl32.Vec3
	}{
		{"partial step", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{10, 0, 0}, 2, mgl32.Vec3{2, 0, 0}},
		{"exact reach", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 3, 4}, 5, mgl32.Vec3{0, 3, 4}},
		{"no overshoot", mgl32.Vec3{1, 1, 1}, mgl32.Vec3{2, 1, 1}, 100, mgl32.Vec3{2, 1, 1}},
		{"zero step", mgl32.Vec3{1, 2, 3}, mgl32.Vec3{4, 5, 6}, 0, mgl32.Vec3{1, 2, 3}},
		{"already there", mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 2, 3}, 0, mgl32.Vec3{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoveTowards(tt.current, tt.target, tt.maxDelta)
			if !got.ApproxEqualThreshold(tt.want, eps) {
				t.Errorf("MoveTowards = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuatAngle(t *testing.T) {
	ident := mgl32.QuatIdent()
	quarter := mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0})

	if got := QuatAngle(ident, quarter); math.Abs(float64(got)-math.Pi/2) > eps {
		t.Errorf("QuatAngle(ident, quarter) = %v, want %v", got, math.Pi/2)
	}
	if got := QuatAngle(quarter, quarter.Scale(-1)); got > eps {
		t.Errorf("QuatAngle(q, -q) = %v, want 0", got)
	}
}

func TestRotateTowards(t *testing.T) {
	from := mgl32.QuatIdent()
	to := mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1})

	half := RotateTowards(from, to, math.Pi/4)
	if got := QuatAngle(from, half); math.Abs(float64(got)-math.Pi/4) > eps {
		t.Errorf("step angle = %v, want %v", got, math.Pi/4)
	}
	if got := QuatAngle(half, to); math.Abs(float64(got)-math.Pi/4) > eps {
		t.Errorf("remaining angle = %v, want %v", got, math.Pi/4)
	}

	full := RotateTowards(from, to, math.Pi)
	if full != to {
		t.Errorf("RotateTowards with large budget = %v, want target %v", full, to)
	}
}

func TestAngularVelocityRotation(t *testing.T) {
	w := mgl32.Vec3{0, 2, 0}
	q := AngularVelocityRotation(w, 0.5)
	if got := QuatAngle(mgl32.QuatIdent(), q); math.Abs(float64(got)-1) > eps {
		t.Errorf("rotation angle = %v, want 1", got)
	}

	v := q.Rotate(mgl32.Vec3{1, 0, 0})
	want := mgl32.Vec3{float32(math.Cos(1)), 0, -float32(math.Sin(1))}
	if !v.ApproxEqualThreshold(want, eps) {
		t.Errorf("rotated vector = %v, want %v", v, want)
	}

	if got := AngularVelocityRotation(mgl32.Vec3{}, 1); got != mgl32.QuatIdent() {
		t.Errorf("zero angular velocity = %v, want identity", got)
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(mgl32.Vec3{1, 2, 3}) {
		t.Error("finite vector reported as non-finite")
	}
	if IsFinite(mgl32.Vec3{float32(math.Inf(1)), 0, 0}) {
		t.Error("infinite vector reported as finite")
	}
}

func TestIsFiniteQuat(t *testing.T) {
	if !IsFiniteQuat(mgl32.QuatIdent()) {
		t.Error("identity reported as non-finite")
	}
	if IsFiniteQuat(mgl32.Quat{W: float32(math.NaN())}) {
		t.Error("NaN quaternion reported as finite")
	}
}
