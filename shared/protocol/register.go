package protocol

import (
	"github.com/automoto/rigidsync/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
)

// Sync ID constants - ID 1 is reserved by necs for NetworkId
const (
	SyncIDNetBodyState uint = 10
)

// RegisterComponents registers all network components with necs for serialization.
// This must be called by both server and client before any network operations.
func RegisterComponents() error {
	// Roster rows change rarely and are never interpolated.
	return esync.RegisterComponent(
		SyncIDNetBodyState,
		netcomponents.NetBodyStateData{},
		netcomponents.NetBodyState,
	)
}
