package network

import (
	"errors"
	"math"

	"github.com/automoto/rigidsync/physics"
	"github.com/automoto/rigidsync/shared/mathutil"
	"github.com/automoto/rigidsync/shared/messages"
	"github.com/automoto/rigidsync/shared/netconfig"
	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

var ErrOwnedLocally = errors.New("snapshot received for a locally owned body")

// reconciliation is the receiver-side shadow target for a remote body.
type reconciliation struct {
	received bool

	targetPosition mgl32.Vec3
	targetRotation mgl32.Quat

	// Units and radians per second needed to close the gap measured when
	// the last snapshot arrived within one snapshot interval.
	linearSpeed  float32
	angularSpeed float32
}

// RigidbodyView synchronizes one rigid body. On the owning peer it publishes
// snapshots and replicates the kinematic flag. On every other peer it
// reconciles the local body toward the latest snapshot.
type RigidbodyView struct {
	ID     messages.ObjectID
	Body   physics.Body
	Config netconfig.SyncConfig

	session Session
	calls   CallChannel
	log     *log.Entry

	owned  bool
	paused bool

	recon reconciliation

	// Last kinematic flag sent by the owner or applied from the channel.
	networkKinematic bool
}

func NewRigidbodyView(id messages.ObjectID, body physics.Body, cfg netconfig.SyncConfig, session Session, calls CallChannel) *RigidbodyView {
	v := &RigidbodyView{
		ID:      id,
		Body:    body,
		Config:  cfg,
		session: session,
		calls:   calls,
		log:     log.WithField("object", id),
	}
	v.Init()
	return v
}

// Init clears reconciliation and the cached kinematic flag.
func (v *RigidbodyView) Init() {
	v.Reset()
	v.networkKinematic = false
}

// Reset discards the shadow target. Nothing is reconciled until the next
// snapshot arrives.
func (v *RigidbodyView) Reset() {
	v.recon = reconciliation{}
}

func (v *RigidbodyView) IsOwned() bool { return v.owned }

// SetOwned records whether the local peer holds write authority. Any change
// drops stale reconciliation state.
func (v *RigidbodyView) SetOwned(owned bool) {
	if v.owned == owned {
		return
	}
	v.log.WithField("owned", owned).Debug("ownership changed")
	v.owned = owned
	v.Reset()
}

// SetPaused suspends kinematic flag replication.
func (v *RigidbodyView) SetPaused(paused bool) { v.paused = paused }

// Target returns the current shadow target and whether one exists.
func (v *RigidbodyView) Target() (mgl32.Vec3, mgl32.Quat, bool) {
	return v.recon.targetPosition, v.recon.targetRotation, v.recon.received
}

// ClosingSpeeds returns the linear and angular speeds used to close the gap.
func (v *RigidbodyView) ClosingSpeeds() (linear, angular float32) {
	return v.recon.linearSpeed, v.recon.angularSpeed
}

// Serialize writes the live body state for one serialization tick.
func (v *RigidbodyView) Serialize() ([]byte, error) {
	s := messages.NewStreamWriter()
	v.write(s)
	return s.Bytes()
}

func (v *RigidbodyView) write(s *messages.Stream) {
	messages.WriteSnapshot(s, v.Config, messages.Snapshot{
		Position:        v.Body.Position(),
		Rotation:        v.Body.Rotation(),
		Velocity:        v.Body.Velocity(),
		AngularVelocity: v.Body.AngularVelocity(),
	})
}

// Deserialize consumes one snapshot sent at sentServerTime and replaces the
// shadow target.
func (v *RigidbodyView) Deserialize(payload []byte, sentServerTime float64) error {
	if v.owned {
		return ErrOwnedLocally
	}
	snap, err := messages.DecodeSnapshot(v.Config, payload)
	if err != nil {
		return err
	}
	v.apply(snap, sentServerTime)
	return nil
}

func (v *RigidbodyView) apply(snap messages.Snapshot, sentServerTime float64) {
	target := snap.Position
	rotation := snap.Rotation

	if v.Config.TeleportEnabled && mathutil.Distance(v.Body.Position(), target) > v.Config.TeleportDistance {
		v.log.WithField("target", target).Debug("teleport")
		v.Body.SetPosition(target)
	}

	if v.Config.SynchronizeVelocity || v.Config.SynchronizeAngularVelocity {
		lag := float32(math.Abs(v.session.ServerTime() - sentServerTime))

		if v.Config.SynchronizeVelocity {
			v.Body.SetVelocity(snap.Velocity)
			target = target.Add(snap.Velocity.Mul(lag))
		}
		if v.Config.SynchronizeAngularVelocity {
			v.Body.SetAngularVelocity(snap.AngularVelocity)
			rotation = mathutil.AngularVelocityRotation(snap.AngularVelocity, lag).Mul(rotation).Normalize()
		}
	}

	rate := float32(v.session.SerializationRate())
	v.recon = reconciliation{
		received:       true,
		targetPosition: target,
		targetRotation: rotation,
		linearSpeed:    mathutil.Distance(v.Body.Position(), target) * rate,
		angularSpeed:   mathutil.QuatAngle(v.Body.Rotation(), rotation) * rate,
	}
}

// FixedUpdate runs once per physics tick of dt seconds.
func (v *RigidbodyView) FixedUpdate(dt float32) {
	if !v.session.InRoom() || v.session.PlayerCount() <= 1 {
		return
	}
	if !v.owned {
		v.reconcile(dt)
		return
	}
	v.replicateKinematic()
}

func (v *RigidbodyView) reconcile(dt float32) {
	if !v.recon.received {
		return
	}
	if v.Body.IsKinematic() {
		v.Body.SetPosition(v.recon.targetPosition)
		v.Body.SetRotation(v.recon.targetRotation)
		return
	}
	v.Body.SetPosition(mathutil.MoveTowards(v.Body.Position(), v.recon.targetPosition, v.recon.linearSpeed*dt))
	v.Body.SetRotation(mathutil.RotateTowards(v.Body.Rotation(), v.recon.targetRotation, v.recon.angularSpeed*dt))
}

func (v *RigidbodyView) replicateKinematic() {
	kinematic := v.Body.IsKinematic()
	if v.paused || kinematic == v.networkKinematic {
		return
	}
	if err := v.calls.RemoveBufferedCalls(v.ID, netconfig.EventEnableRigid); err != nil {
		v.log.WithError(err).Warn("remove buffered EnableRigid")
		return
	}
	if err := v.calls.SendBuffered(v.ID, netconfig.EventEnableRigid, kinematic); err != nil {
		v.log.WithError(err).Warn("send EnableRigid")
		return
	}
	v.networkKinematic = kinematic
}

// EnableRigid applies a replicated kinematic flag.
func (v *RigidbodyView) EnableRigid(kinematic bool) {
	v.networkKinematic = kinematic
	v.Body.SetKinematic(kinematic)
}
