package messages

import (
	"fmt"

	"github.com/automoto/rigidsync/shared/mathutil"
	"github.com/automoto/rigidsync/shared/netconfig"
	"github.com/go-gl/mathgl/mgl32"
)

// Snapshot is one authoritative sample of a body. Velocity and
// AngularVelocity are only meaningful when the layout carries them.
type Snapshot struct {
	Position        mgl32.Vec3
	Rotation        mgl32.Quat
	Velocity        mgl32.Vec3
	AngularVelocity mgl32.Vec3
}

// WriteSnapshot appends position, rotation, then velocity and angular
// velocity when cfg enables them.
func WriteSnapshot(s *Stream, cfg netconfig.SyncConfig, snap Snapshot) {
	s.SendVec3(snap.Position)
	s.SendQuat(snap.Rotation)
	if cfg.SynchronizeVelocity {
		s.SendVec3(snap.Velocity)
	}
	if cfg.SynchronizeAngularVelocity {
		s.SendVec3(snap.AngularVelocity)
	}
}

// ReadSnapshot reads fields in the order WriteSnapshot wrote them.
func ReadSnapshot(s *Stream, cfg netconfig.SyncConfig) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.Position, err = s.ReceiveVec3(); err != nil {
		return Snapshot{}, fmt.Errorf("position: %w", err)
	}
	if snap.Rotation, err = s.ReceiveQuat(); err != nil {
		return Snapshot{}, fmt.Errorf("rotation: %w", err)
	}
	if cfg.SynchronizeVelocity {
		if snap.Velocity, err = s.ReceiveVec3(); err != nil {
			return Snapshot{}, fmt.Errorf("velocity: %w", err)
		}
	}
	if cfg.SynchronizeAngularVelocity {
		if snap.AngularVelocity, err = s.ReceiveVec3(); err != nil {
			return Snapshot{}, fmt.Errorf("angular velocity: %w", err)
		}
	}
	return snap, nil
}

func EncodeSnapshot(cfg netconfig.SyncConfig, snap Snapshot) ([]byte, error) {
	s := NewStreamWriter()
	WriteSnapshot(s, cfg, snap)
	return s.Bytes()
}

// DecodeSnapshot decodes a full payload. Leftover fields mean the sender
// used a wider layout than cfg and are reported as ErrTrailingFields.
// NaN or infinite fields are rejected with ErrNonFinite.
func DecodeSnapshot(cfg netconfig.SyncConfig, payload []byte) (Snapshot, error) {
	s, err := NewStreamReader(payload)
	if err != nil {
		return Snapshot{}, err
	}
	snap, err := ReadSnapshot(s, cfg)
	if err != nil {
		return Snapshot{}, err
	}
	if n := s.Remaining(); n > 0 {
		return Snapshot{}, fmt.Errorf("%w: %d left for layout %v", ErrTrailingFields, n, cfg.Layout())
	}
	if !mathutil.IsFinite(snap.Position) || !mathutil.IsFiniteQuat(snap.Rotation) ||
		!mathutil.IsFinite(snap.Velocity) || !mathutil.IsFinite(snap.AngularVelocity) {
		return Snapshot{}, ErrNonFinite
	}
	return snap, nil
}
