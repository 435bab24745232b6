package systems

import (
	"github.com/automoto/rigidsync/components"
	"github.com/automoto/rigidsync/network"
	"github.com/automoto/rigidsync/physics"
	"github.com/automoto/rigidsync/shared/messages"
	"github.com/automoto/rigidsync/shared/netcomponents"
	"github.com/automoto/rigidsync/shared/netconfig"
	"github.com/automoto/rigidsync/tags"
	"github.com/leap-fish/necs/esync"
	log "github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// RosterSource delivers the replicated roster and claim outcomes.
type RosterSource interface {
	LatestRoster() *esync.WorldSnapshot
	DrainRejections() []messages.ClaimRejected
	PeerID() string
}

// Spawner builds the local body and view for a body first seen in the roster.
type Spawner func(id messages.ObjectID) (*physics.RigidBody, *network.RigidbodyView)

// Roster mirrors the server's body roster into the local world: it spawns
// shadows for new remote bodies, applies ownership, and removes bodies the
// server dropped.
type Roster struct {
	src   RosterSource
	views *network.Views
	spawn Spawner

	entities map[messages.ObjectID]donburi.Entity
	seen     map[messages.ObjectID]bool
	log      *log.Entry
}

func NewRoster(src RosterSource, views *network.Views, spawn Spawner) *Roster {
	return &Roster{
		src:      src,
		views:    views,
		spawn:    spawn,
		entities: make(map[messages.ObjectID]donburi.Entity),
		seen:     make(map[messages.ObjectID]bool),
		log:      log.WithField("system", "roster"),
	}
}

// Track registers a locally spawned entity so the roster does not shadow it.
func (r *Roster) Track(id messages.ObjectID, entity donburi.Entity) {
	r.entities[id] = entity
}

func (r *Roster) Update(e *ecs.ECS) {
	for _, rej := range r.src.DrainRejections() {
		if v, ok := r.views.Get(rej.ObjectID); ok {
			v.SetOwned(false)
		}
	}

	snap := r.src.LatestRoster()
	if snap == nil {
		return
	}

	rows := r.rosterRows(*snap)
	present := make(map[messages.ObjectID]bool, len(rows))
	me := r.src.PeerID()

	for _, row := range rows {
		id := messages.ObjectID(row.ObjectID)
		present[id] = true
		r.seen[id] = true

		v, ok := r.views.Get(id)
		if !ok {
			v = r.spawnShadow(e.World, id)
			if v == nil {
				continue
			}
		}
		if layout := netconfig.Layout(row.Layout); layout != v.Config.Layout() {
			r.log.WithFields(log.Fields{
				"object": id,
				"remote": layout,
				"local":  v.Config.Layout(),
			}).Warn("snapshot layout mismatch")
		}
		v.SetOwned(row.Owner != "" && row.Owner == me)
	}

	for id := range r.seen {
		if present[id] {
			continue
		}
		delete(r.seen, id)
		r.views.Remove(id)
		if entity, ok := r.entities[id]; ok && e.World.Valid(entity) {
			e.World.Remove(entity)
		}
		delete(r.entities, id)
		r.log.WithField("object", id).Debug("body removed")
	}
}

func (r *Roster) spawnShadow(world donburi.World, id messages.ObjectID) *network.RigidbodyView {
	body, view := r.spawn(id)
	if body == nil || view == nil {
		return nil
	}
	entity := world.Create(tags.Body, components.SyncedBody)
	components.SyncedBody.SetValue(world.Entry(entity), components.SyncedBodyData{Body: body, View: view})
	r.entities[id] = entity

	if err := r.views.Add(view); err != nil {
		r.log.WithError(err).WithField("object", id).Warn("applying parked calls")
	}
	r.log.WithField("object", id).Debug("shadow spawned")
	return view
}

func (r *Roster) rosterRows(snapshot esync.WorldSnapshot) []netcomponents.NetBodyStateData {
	var rows []netcomponents.NetBodyStateData
	for _, ent := range snapshot {
		for _, componentBytes := range ent.State {
			instance, err := esync.Mapper.Deserialize(componentBytes)
			if err != nil {
				r.log.WithError(err).WithField("entity", ent.Id).Debug("roster component skipped")
				continue
			}
			if row, ok := instance.(netcomponents.NetBodyStateData); ok {
				rows = append(rows, row)
			}
		}
	}
	return rows
}
