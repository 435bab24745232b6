// Package mathutil holds the vector and quaternion helpers shared by the
// publisher, the reconciler and the demo physics. Angles are radians.
package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Distance returns the straight-line distance between a and b.
func Distance(a, b mgl32.Vec3) float32 {
	return b.Sub(a).Len()
}

// MoveTowards moves current toward target by at most maxDelta and never
// past it. A non-positive maxDelta leaves current unchanged.
func MoveTowards(current, target mgl32.Vec3, maxDelta float32) mgl32.Vec3 {
	delta := target.Sub(current)
	dist := delta.Len()
	if dist == 0 || dist <= maxDelta {
		return target
	}
	if maxDelta <= 0 {
		return current
	}
	return current.Add(delta.Mul(maxDelta / dist))
}

// QuatAngle returns the smallest angle between two orientations. q and -q
// describe the same orientation and yield zero. The relative rotation is
// computed in float64 so nearly equal inputs do not lose the small angle.
func QuatAngle(a, b mgl32.Quat) float32 {
	a, b = a.Normalize(), b.Normalize()
	aw, ax, ay, az := float64(a.W), float64(a.V[0]), float64(a.V[1]), float64(a.V[2])
	bw, bx, by, bz := float64(b.W), float64(b.V[0]), float64(b.V[1]), float64(b.V[2])

	// conj(a) * b
	rw := aw*bw + ax*bx + ay*by + az*bz
	rx := aw*bx - bw*ax - (ay*bz - az*by)
	ry := aw*by - bw*ay - (az*bx - ax*bz)
	rz := aw*bz - bw*az - (ax*by - ay*bx)

	return float32(2 * math.Atan2(math.Sqrt(rx*rx+ry*ry+rz*rz), math.Abs(rw)))
}

// RotateTowards rotates from toward to by at most maxRadians along the
// shortest arc and never past it.
func RotateTowards(from, to mgl32.Quat, maxRadians float32) mgl32.Quat {
	angle := QuatAngle(from, to)
	if angle == 0 || angle <= maxRadians {
		return to
	}
	if maxRadians <= 0 {
		return from
	}
	return Slerp(from, to, maxRadians/angle)
}

// Slerp interpolates along the shortest arc between a and b.
func Slerp(a, b mgl32.Quat, t float32) mgl32.Quat {
	a, b = a.Normalize(), b.Normalize()
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, t).Normalize()
}

// AngularVelocityRotation returns the rotation produced by spinning at
// angular velocity w (radians per second, axis scaled by rate) for dt
// seconds.
func AngularVelocityRotation(w mgl32.Vec3, dt float32) mgl32.Quat {
	speed := w.Len()
	if speed == 0 || dt == 0 {
		return mgl32.QuatIdent()
	}
	return mgl32.QuatRotate(speed*dt, w.Mul(1/speed))
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}

// IsFiniteQuat reports whether every component of q is a finite number.
func IsFiniteQuat(q mgl32.Quat) bool {
	w := float64(q.W)
	return IsFinite(q.V) && !math.IsNaN(w) && !math.IsInf(w, 0)
}
