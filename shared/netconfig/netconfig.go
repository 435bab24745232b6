// Package netconfig defines lightweight types shared between client and server
// for body synchronization. It must have zero dependencies on the transport or
// the physics engine so both binaries can import it.
package netconfig

import (
	"errors"
	"fmt"
	"math"
)

// Defaults for a freshly created synchronized body.
const (
	DefaultSynchronizeVelocity        = true
	DefaultSynchronizeAngularVelocity = false
	DefaultTeleportEnabled            = false
	DefaultTeleportDistance           = 3.0

	DefaultSerializationRate = 10
	DefaultTickRate          = 50
)

var ErrInvalidTeleportDistance = errors.New("teleport distance must be positive and finite")

// SyncConfig selects which optional fields a body publishes and how remote
// peers treat large corrections. Both ends of a body must agree on the
// velocity flags or the receiver misreads the field sequence.
type SyncConfig struct {
	SynchronizeVelocity        bool    `yaml:"synchronize_velocity"`
	SynchronizeAngularVelocity bool    `yaml:"synchronize_angular_velocity"`
	TeleportEnabled            bool    `yaml:"teleport_enabled"`
	TeleportDistance           float32 `yaml:"teleport_distance"`
}

// DefaultSyncConfig returns velocity sync on, angular velocity sync off and
// teleporting disabled with a 3 unit threshold.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		SynchronizeVelocity:        DefaultSynchronizeVelocity,
		SynchronizeAngularVelocity: DefaultSynchronizeAngularVelocity,
		TeleportEnabled:            DefaultTeleportEnabled,
		TeleportDistance:           DefaultTeleportDistance,
	}
}

func (c SyncConfig) Validate() error {
	d := float64(c.TeleportDistance)
	if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTeleportDistance, c.TeleportDistance)
	}
	return nil
}

// Layout returns the optional-field bitmask this config produces on the wire.
func (c SyncConfig) Layout() Layout {
	var l Layout
	if c.SynchronizeVelocity {
		l |= LayoutVelocity
	}
	if c.SynchronizeAngularVelocity {
		l |= LayoutAngularVelocity
	}
	return l
}

// Layout is a bitmask of the optional snapshot fields.
type Layout uint8

const (
	LayoutVelocity Layout = 1 << iota
	LayoutAngularVelocity
)

// FieldCount returns the number of fields in a snapshot with this layout.
// Position and rotation are always present.
func (l Layout) FieldCount() int {
	n := 2
	if l&LayoutVelocity != 0 {
		n++
	}
	if l&LayoutAngularVelocity != 0 {
		n++
	}
	return n
}

func (l Layout) String() string {
	switch l {
	case 0:
		return "pose"
	case LayoutVelocity:
		return "pose+velocity"
	case LayoutAngularVelocity:
		return "pose+angular"
	case LayoutVelocity | LayoutAngularVelocity:
		return "pose+velocity+angular"
	}
	return fmt.Sprintf("layout(%d)", uint8(l))
}

// EventID identifies a discrete replicated event.
type EventID uint8

const (
	EventNone EventID = iota
	EventEnableRigid
	EventCount // Must be last - used for table sizing
)

var eventNames = [EventCount]string{
	EventNone:        "none",
	EventEnableRigid: "EnableRigid",
}

func (e EventID) String() string {
	if e < EventCount {
		return eventNames[e]
	}
	return "unknown"
}
