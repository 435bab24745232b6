package systems

import (
	"math"

	"github.com/automoto/rigidsync/components"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// NewDriverSystem moves owned bodies that carry a Driver. Dynamic bodies are
// steered through their velocity, kinematic ones are placed directly.
func NewDriverSystem(dt float32) func(*ecs.ECS) {
	return func(e *ecs.ECS) {
		components.Driver.Each(e.World, func(entry *donburi.Entry) {
			if !entry.HasComponent(components.SyncedBody) {
				return
			}
			synced := components.SyncedBody.Get(entry)
			if synced.View == nil || !synced.View.IsOwned() {
				return
			}
			drive(components.Driver.Get(entry), synced, dt)
		})
	}
}

func drive(d *components.DriverData, synced *components.SyncedBodyData, dt float32) {
	d.Elapsed += dt

	if d.KinematicEvery > 0 {
		phase := int(d.Elapsed / d.KinematicEvery)
		synced.Body.SetKinematic(phase%2 == 1)
	}

	theta := float64(d.Elapsed * d.AngularSpeed)
	sin, cos := float32(math.Sin(theta)), float32(math.Cos(theta))
	radial := mgl32.Vec3{cos, 0, sin}
	tangent := mgl32.Vec3{-sin, 0, cos}

	if synced.Body.IsKinematic() {
		synced.Body.SetPosition(d.Center.Add(radial.Mul(d.Radius)))
		synced.Body.SetVelocity(mgl32.Vec3{})
	} else {
		synced.Body.SetVelocity(tangent.Mul(d.Radius * d.AngularSpeed))
	}
	synced.Body.SetAngularVelocity(d.Spin)
}
