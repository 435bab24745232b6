// Package physics defines the rigid-body surface the synchronizer drives and a
// small integrator that implements it for headless peers and tests.
package physics

import (
	"github.com/automoto/rigidsync/shared/mathutil"
	"github.com/go-gl/mathgl/mgl32"
)

// Body is the physics engine's view of one rigid body.
type Body interface {
	Position() mgl32.Vec3
	SetPosition(mgl32.Vec3)
	Rotation() mgl32.Quat
	SetRotation(mgl32.Quat)
	Velocity() mgl32.Vec3
	SetVelocity(mgl32.Vec3)
	AngularVelocity() mgl32.Vec3
	SetAngularVelocity(mgl32.Vec3)
	IsKinematic() bool
	SetKinematic(bool)
}

// RigidBody integrates velocity into pose with semi-implicit Euler steps.
// Kinematic bodies are moved only by direct assignment.
type RigidBody struct {
	position        mgl32.Vec3
	rotation        mgl32.Quat
	velocity        mgl32.Vec3
	angularVelocity mgl32.Vec3
	kinematic       bool

	// Fraction of velocity lost per second, 0 disables damping.
	LinearDamping  float32
	AngularDamping float32
	Gravity        mgl32.Vec3
}

func NewRigidBody(position mgl32.Vec3, rotation mgl32.Quat) *RigidBody {
	return &RigidBody{
		position: position,
		rotation: rotation.Normalize(),
	}
}

func (b *RigidBody) Position() mgl32.Vec3            { return b.position }
func (b *RigidBody) SetPosition(p mgl32.Vec3)        { b.position = p }
func (b *RigidBody) Rotation() mgl32.Quat            { return b.rotation }
func (b *RigidBody) SetRotation(q mgl32.Quat)        { b.rotation = q.Normalize() }
func (b *RigidBody) Velocity() mgl32.Vec3            { return b.velocity }
func (b *RigidBody) SetVelocity(v mgl32.Vec3)        { b.velocity = v }
func (b *RigidBody) AngularVelocity() mgl32.Vec3     { return b.angularVelocity }
func (b *RigidBody) SetAngularVelocity(w mgl32.Vec3) { b.angularVelocity = w }
func (b *RigidBody) IsKinematic() bool               { return b.kinematic }
func (b *RigidBody) SetKinematic(kinematic bool)     { b.kinematic = kinematic }

// Step advances the body by dt seconds.
func (b *RigidBody) Step(dt float32) {
	if b.kinematic || dt <= 0 {
		return
	}

	b.velocity = b.velocity.Add(b.Gravity.Mul(dt))
	if b.LinearDamping > 0 {
		b.velocity = b.velocity.Mul(damp(b.LinearDamping, dt))
	}
	if b.AngularDamping > 0 {
		b.angularVelocity = b.angularVelocity.Mul(damp(b.AngularDamping, dt))
	}

	b.position = b.position.Add(b.velocity.Mul(dt))
	spin := mathutil.AngularVelocityRotation(b.angularVelocity, dt)
	b.rotation = spin.Mul(b.rotation).Normalize()
}

func damp(rate, dt float32) float32 {
	f := 1 - rate*dt
	if f < 0 {
		return 0
	}
	return f
}
