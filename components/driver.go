package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi"
)

// DriverData steers an owned body around a circle so remote peers have
// something to reconcile. Every KinematicEvery seconds the body toggles
// between kinematic and dynamic.
type DriverData struct {
	Center         mgl32.Vec3
	Radius         float32
	AngularSpeed   float32 // radians per second around the circle
	Spin           mgl32.Vec3
	KinematicEvery float32

	Elapsed float32
}

var Driver = donburi.NewComponentType[DriverData]()
