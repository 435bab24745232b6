package core

import (
	"fmt"
	"time"

	"github.com/automoto/rigidsync/config"
	"github.com/automoto/rigidsync/shared/messages"
	"github.com/automoto/rigidsync/shared/netcomponents"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	log "github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"
)

// Server wires the room to the necs router and replicates the body roster
// through esync.
type Server struct {
	world     donburi.World
	room      *Room
	roster    *worldRoster
	loop      *GameLoop
	transport *transports.WsServerTransport
	start     time.Time
}

func NewServer(cfg config.ServerConfig) *Server {
	world := donburi.NewWorld()

	s := &Server{
		world:  world,
		roster: newWorldRoster(world),
		start:  time.Now(),
	}
	s.room = NewRoom(cfg, s.now)
	s.loop = NewGameLoop(s, cfg.TickRate)

	srvsync.UseEsync(world)
	s.setupRouterCallbacks()

	return s
}

// Start begins the server on the given port
func (s *Server) Start(port uint) error {
	go s.loop.Run()

	s.transport = transports.NewWsServerTransport(port, "", nil)
	return s.transport.Start()
}

func (s *Server) Stop() {
	s.loop.Stop()
}

func (s *Server) PlayerCount() int {
	return s.room.PlayerCount()
}

func (s *Server) Room() *Room {
	return s.room
}

// World returns the roster world replicated to clients.
func (s *Server) World() donburi.World {
	return s.world
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		log.WithField("peer", client.Id()).Info("client connected")
		s.room.Connect(client)
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		entry := log.WithField("peer", client.Id())
		if err != nil {
			entry = entry.WithError(err)
		}
		entry.Info("client disconnected")
		s.room.Leave(client)
	})

	router.On(func(client *router.NetworkClient, msg messages.JoinRequest) {
		s.room.Join(client, msg)
	})
	router.On(func(client *router.NetworkClient, msg messages.ClaimObject) {
		s.room.Claim(client, msg)
	})
	router.On(func(client *router.NetworkClient, msg messages.ReleaseObject) {
		s.room.Release(client, msg)
	})
	router.On(func(client *router.NetworkClient, msg messages.BodySnapshot) {
		s.room.Snapshot(client, msg)
	})
	router.On(func(client *router.NetworkClient, msg messages.BufferedCall) {
		s.room.Call(client, msg)
	})
	router.On(func(client *router.NetworkClient, msg messages.RemoveBufferedCalls) {
		s.room.RemoveCalls(client, msg)
	})
	router.On(func(client *router.NetworkClient, msg messages.TimePing) {
		s.room.Ping(client, msg)
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		log.WithError(err).WithField("peer", client.Id()).Warn("client error")
	})
}

// ProcessCommands applies roster changes queued by router callbacks. Runs on
// the loop goroutine, which owns the world.
func (s *Server) ProcessCommands() {
	s.room.FlushRoster(s.roster)
}

// now is the server clock in seconds since start.
func (s *Server) now() float64 {
	return time.Since(s.start).Seconds()
}

// worldRoster keeps one esync-replicated entity per body.
type worldRoster struct {
	world    donburi.World
	entities map[messages.ObjectID]donburi.Entity
}

func newWorldRoster(world donburi.World) *worldRoster {
	return &worldRoster{
		world:    world,
		entities: make(map[messages.ObjectID]donburi.Entity),
	}
}

func (w *worldRoster) Upsert(row netcomponents.NetBodyStateData) error {
	id := messages.ObjectID(row.ObjectID)
	if entity, ok := w.entities[id]; ok && w.world.Valid(entity) {
		netcomponents.NetBodyState.Set(w.world.Entry(entity), &row)
		return nil
	}

	entity := w.world.Create(netcomponents.NetBodyState)
	netcomponents.NetBodyState.Set(w.world.Entry(entity), &row)
	if err := srvsync.NetworkSync(w.world, &entity, netcomponents.NetBodyState); err != nil {
		w.world.Remove(entity)
		return fmt.Errorf("network sync object %d: %w", id, err)
	}
	w.entities[id] = entity
	return nil
}

func (w *worldRoster) Remove(id messages.ObjectID) {
	entity, ok := w.entities[id]
	if !ok {
		return
	}
	delete(w.entities, id)
	if w.world.Valid(entity) {
		w.world.Remove(entity)
	}
}
