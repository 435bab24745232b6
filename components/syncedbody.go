package components

import (
	"github.com/automoto/rigidsync/network"
	"github.com/automoto/rigidsync/physics"
	"github.com/yohamta/donburi"
)

// SyncedBodyData ties a simulated body to the view that synchronizes it.
type SyncedBodyData struct {
	Body *physics.RigidBody
	View *network.RigidbodyView
}

var SyncedBody = donburi.NewComponentType[SyncedBodyData]()
