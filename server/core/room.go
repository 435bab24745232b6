package core

import (
	"sort"
	"sync"
	"time"

	"github.com/automoto/rigidsync/config"
	"github.com/automoto/rigidsync/shared/messages"
	"github.com/automoto/rigidsync/shared/netcomponents"
	"github.com/automoto/rigidsync/shared/netconfig"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Peer is one connected client as seen by the room.
type Peer interface {
	Id() string
	SendMessage(msg any) error
}

// RosterWriter receives roster changes on the loop goroutine.
type RosterWriter interface {
	Upsert(row netcomponents.NetBodyStateData) error
	Remove(id messages.ObjectID)
}

type peerState struct {
	peer   Peer
	name   string
	joined bool
}

type object struct {
	id     messages.ObjectID
	owner  *peerState
	layout netconfig.Layout

	// Inbound snapshot budget of the current owner for this object.
	limiter *rate.Limiter
}

// Room is the server-authoritative state of one session: who is joined, who
// owns which body, and the buffered calls late joiners must receive.
// Router callbacks call into it from necs goroutines, guarded by mu.
type Room struct {
	mu sync.Mutex

	cfg config.ServerConfig
	now func() float64
	// wall drives the snapshot limiters.
	wall func() time.Time

	peers   map[Peer]*peerState
	objects map[messages.ObjectID]*object
	buffer  *BufferStore

	// Objects whose roster row changed since the last flush.
	dirty map[messages.ObjectID]bool

	log *log.Entry
}

// NewRoom creates a room. now returns the server clock in seconds.
func NewRoom(cfg config.ServerConfig, now func() float64) *Room {
	return &Room{
		cfg:     cfg,
		now:     now,
		wall:    time.Now,
		peers:   make(map[Peer]*peerState),
		objects: make(map[messages.ObjectID]*object),
		buffer:  NewBufferStore(),
		dirty:   make(map[messages.ObjectID]bool),
		log:     log.WithField("component", "room"),
	}
}

// Connect registers a peer that has not joined yet.
func (r *Room) Connect(p Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[p] = &peerState{peer: p}
}

// Join admits a peer, replies with the session parameters and replays every
// buffered call.
func (r *Room) Join(p Peer, req messages.JoinRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ps, ok := r.peers[p]
	if !ok {
		ps = &peerState{peer: p}
		r.peers[p] = ps
	}
	if ps.joined {
		return
	}

	logger := r.log.WithFields(log.Fields{"peer": p.Id(), "name": req.PlayerName})
	if r.cfg.Version != "" && req.Version != r.cfg.Version {
		logger.WithField("version", req.Version).Info("join rejected: version mismatch")
		r.send(ps, messages.JoinRejected{Reason: "version mismatch: server requires " + r.cfg.Version})
		return
	}
	if r.cfg.MaxPlayers > 0 && r.playerCount() >= r.cfg.MaxPlayers {
		logger.Info("join rejected: room full")
		r.send(ps, messages.JoinRejected{Reason: "room full"})
		return
	}

	ps.joined = true
	ps.name = req.PlayerName

	r.send(ps, messages.JoinAccepted{
		PeerID:            p.Id(),
		RoomName:          r.cfg.Name,
		SerializationRate: r.cfg.SerializationRate,
		TickRate:          r.cfg.TickRate,
		ServerTime:        r.now(),
		PlayerCount:       r.playerCount(),
	})
	for _, call := range r.buffer.All() {
		r.send(ps, call)
	}
	logger.WithField("players", r.playerCount()).Info("peer joined")
	r.broadcastRoomState()
}

// Leave removes a peer and destroys the bodies it owned along with their
// buffered calls.
func (r *Room) Leave(p Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ps, ok := r.peers[p]
	if !ok {
		return
	}
	delete(r.peers, p)

	for id, obj := range r.objects {
		if obj.owner != ps {
			continue
		}
		delete(r.objects, id)
		r.buffer.RemoveObject(id)
		r.dirty[id] = true
	}
	if ps.joined {
		r.log.WithField("peer", p.Id()).Info("peer left")
		r.broadcastRoomState()
	}
}

// Claim grants write authority over an object, creating it on first claim.
// Authority moves to the newest claimant.
func (r *Room) Claim(p Peer, msg messages.ClaimObject) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ps := r.joinedPeer(p)
	if ps == nil {
		return
	}
	obj, ok := r.objects[msg.ObjectID]
	if !ok {
		obj = &object{id: msg.ObjectID, layout: msg.Layout}
		r.objects[msg.ObjectID] = obj
	} else if obj.layout != msg.Layout {
		r.log.WithFields(log.Fields{
			"peer":   p.Id(),
			"object": msg.ObjectID,
			"have":   obj.layout,
			"got":    msg.Layout,
		}).Warn("claim rejected: layout mismatch")
		r.send(ps, messages.ClaimRejected{ObjectID: msg.ObjectID, Reason: "layout mismatch: room uses " + obj.layout.String()})
		return
	}

	if obj.owner != ps {
		r.log.WithFields(log.Fields{"peer": p.Id(), "object": msg.ObjectID}).Debug("ownership granted")
		obj.limiter = r.newLimiter()
	}
	obj.owner = ps
	r.dirty[obj.id] = true
}

// Release gives up authority if p holds it.
func (r *Room) Release(p Peer, msg messages.ReleaseObject) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ps := r.joinedPeer(p)
	obj, ok := r.objects[msg.ObjectID]
	if ps == nil || !ok || obj.owner != ps {
		return
	}
	obj.owner = nil
	obj.limiter = nil
	r.dirty[obj.id] = true
}

// Snapshot relays a snapshot from the owner to every other joined peer.
func (r *Room) Snapshot(p Peer, msg messages.BodySnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ps, obj := r.ownerOf(p, msg.ObjectID)
	if ps == nil {
		return
	}
	if !obj.limiter.AllowN(r.wall(), 1) {
		r.log.WithFields(log.Fields{"peer": p.Id(), "object": msg.ObjectID}).Debug("snapshot over budget")
		return
	}
	r.broadcastExcept(ps, msg)
}

// Call buffers a discrete event from the owner and relays it to the others.
func (r *Room) Call(p Peer, msg messages.BufferedCall) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.Event == netconfig.EventNone || msg.Event >= netconfig.EventCount {
		r.log.WithField("event", msg.Event).Warn("unknown event")
		return
	}
	ps, _ := r.ownerOf(p, msg.ObjectID)
	if ps == nil {
		return
	}
	r.buffer.Put(msg)
	r.broadcastExcept(ps, msg)
}

// RemoveCalls drops a buffered event on behalf of the owner.
func (r *Room) RemoveCalls(p Peer, msg messages.RemoveBufferedCalls) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ps, _ := r.ownerOf(p, msg.ObjectID); ps == nil {
		return
	}
	r.buffer.Remove(msg.ObjectID, msg.Event)
}

// Ping answers a clock synchronisation request.
func (r *Room) Ping(p Peer, msg messages.TimePing) {
	if err := p.SendMessage(messages.TimePong{
		Seq:        msg.Seq,
		ClientTime: msg.ClientTime,
		ServerTime: r.now(),
	}); err != nil {
		r.log.WithError(err).WithField("peer", p.Id()).Debug("pong failed")
	}
}

// FlushRoster writes roster rows changed since the last flush.
func (r *Room) FlushRoster(w RosterWriter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]messages.ObjectID, 0, len(r.dirty))
	for id := range r.dirty {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		delete(r.dirty, id)
		obj, ok := r.objects[id]
		if !ok {
			w.Remove(id)
			continue
		}
		row := netcomponents.NetBodyStateData{ObjectID: uint32(id), Layout: uint8(obj.layout)}
		if obj.owner != nil {
			row.Owner = obj.owner.peer.Id()
		}
		if err := w.Upsert(row); err != nil {
			r.log.WithError(err).WithField("object", id).Warn("roster update failed")
			r.dirty[id] = true
		}
	}
}

func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerCount()
}

// BufferedCalls returns a copy of the buffered calls.
func (r *Room) BufferedCalls() []messages.BufferedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buffer.All()
}

// Owner returns the peer id owning id, empty if unowned or unknown.
func (r *Room) Owner(id messages.ObjectID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if obj, ok := r.objects[id]; ok && obj.owner != nil {
		return obj.owner.peer.Id()
	}
	return ""
}

func (r *Room) playerCount() int {
	n := 0
	for _, ps := range r.peers {
		if ps.joined {
			n++
		}
	}
	return n
}

func (r *Room) joinedPeer(p Peer) *peerState {
	ps, ok := r.peers[p]
	if !ok || !ps.joined {
		return nil
	}
	return ps
}

// ownerOf returns p's state and the object if p is joined and owns id.
func (r *Room) ownerOf(p Peer, id messages.ObjectID) (*peerState, *object) {
	ps := r.joinedPeer(p)
	if ps == nil {
		return nil, nil
	}
	obj, ok := r.objects[id]
	if !ok || obj.owner != ps {
		r.log.WithFields(log.Fields{"peer": p.Id(), "object": id}).Debug("write from non-owner dropped")
		return nil, nil
	}
	return ps, obj
}

// newLimiter allows SnapshotBudget times the serialization rate per object,
// with a burst of one second's worth.
func (r *Room) newLimiter() *rate.Limiter {
	budget := float64(r.cfg.SerializationRate) * r.cfg.SnapshotBudget
	return rate.NewLimiter(rate.Limit(budget), int(budget)+1)
}

func (r *Room) broadcastRoomState() {
	msg := messages.RoomState{PlayerCount: r.playerCount()}
	for _, ps := range r.peers {
		if ps.joined {
			r.send(ps, msg)
		}
	}
}

func (r *Room) broadcastExcept(from *peerState, msg any) {
	for _, ps := range r.peers {
		if ps != from && ps.joined {
			r.send(ps, msg)
		}
	}
}

func (r *Room) send(ps *peerState, msg any) {
	if err := ps.peer.SendMessage(msg); err != nil {
		r.log.WithError(err).WithField("peer", ps.peer.Id()).Debug("send failed")
	}
}
