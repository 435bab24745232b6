package netcomponents

import "github.com/yohamta/donburi"

// NetBodyStateData is the roster row the server replicates for every
// synchronized body. Pose travels separately in BodySnapshot messages.
type NetBodyStateData struct {
	ObjectID uint32
	Owner    string // peer id holding write authority, empty when unowned
	Layout   uint8
}

var NetBodyState = donburi.NewComponentType[NetBodyStateData]()
