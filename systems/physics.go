package systems

import (
	"github.com/automoto/rigidsync/components"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// NewPhysicsSystem integrates every synchronized body by a fixed dt.
// Kinematic bodies are skipped by the integrator itself.
func NewPhysicsSystem(dt float32) func(*ecs.ECS) {
	return func(e *ecs.ECS) {
		components.SyncedBody.Each(e.World, func(entry *donburi.Entry) {
			components.SyncedBody.Get(entry).Body.Step(dt)
		})
	}
}
