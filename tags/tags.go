package tags

import "github.com/yohamta/donburi"

var (
	// Body marks entities created for a roster entry.
	Body = donburi.NewTag().SetName("Body")
	// Local marks bodies this peer spawned and claimed.
	Local = donburi.NewTag().SetName("Local")
)
