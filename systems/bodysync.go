package systems

import (
	"github.com/automoto/rigidsync/network"
	"github.com/automoto/rigidsync/shared/messages"
	log "github.com/sirupsen/logrus"
	"github.com/yohamta/donburi/ecs"
)

// SyncTransport is what the body sync system needs from the connection.
type SyncTransport interface {
	network.Session
	DrainSnapshots() []messages.BodySnapshot
	DrainCalls() []messages.BufferedCall
	Publish(v *network.RigidbodyView) error
}

// NewBodySyncSystem runs one physics tick of body synchronization: it hands
// received snapshots and calls to their views, ticks every view, and
// publishes owned views once per serialization interval.
func NewBodySyncSystem(t SyncTransport, views *network.Views, dt float32) func(*ecs.ECS) {
	logger := log.WithField("system", "bodysync")
	var sinceSend float32

	return func(_ *ecs.ECS) {
		for _, snap := range t.DrainSnapshots() {
			if err := views.ApplySnapshot(snap); err != nil {
				logger.WithError(err).WithField("object", snap.ObjectID).Debug("snapshot dropped")
			}
		}
		for _, call := range t.DrainCalls() {
			if err := views.ApplyCall(call); err != nil {
				logger.WithError(err).WithField("object", call.ObjectID).Warn("call dropped")
			}
		}

		views.Each(func(v *network.RigidbodyView) {
			v.FixedUpdate(dt)
		})

		rate := t.SerializationRate()
		if !t.InRoom() || t.PlayerCount() <= 1 || rate <= 0 {
			sinceSend = 0
			return
		}
		interval := 1 / float32(rate)
		sinceSend += dt
		if sinceSend < interval {
			return
		}
		sinceSend -= interval
		if sinceSend >= interval {
			sinceSend = 0
		}

		views.Each(func(v *network.RigidbodyView) {
			if !v.IsOwned() {
				return
			}
			if err := t.Publish(v); err != nil {
				logger.WithError(err).WithField("object", v.ID).Warn("publish failed")
			}
		})
	}
}
