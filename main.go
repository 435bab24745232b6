package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/rigidsync/components"
	"github.com/automoto/rigidsync/config"
	"github.com/automoto/rigidsync/network"
	"github.com/automoto/rigidsync/physics"
	"github.com/automoto/rigidsync/shared/messages"
	"github.com/automoto/rigidsync/shared/protocol"
	"github.com/automoto/rigidsync/systems"
	"github.com/automoto/rigidsync/tags"
	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

const clientVersion = "1"

// Peer is a headless participant: it drives its own bodies around and
// reconciles everyone else's.
type Peer struct {
	cfg    *config.Config
	client *network.Client
	views  *network.Views
	roster *systems.Roster
	world  *ecs.ECS
	dt     float32

	local   []messages.ObjectID
	claimed bool
}

func NewPeer(cfg *config.Config) *Peer {
	p := &Peer{
		cfg:    cfg,
		client: network.NewClient(),
		views:  network.NewViews(),
		world:  ecs.NewECS(donburi.NewWorld()),
		dt:     1 / float32(cfg.Client.PhysicsRate),
	}
	p.roster = systems.NewRoster(p.client, p.views, p.spawnRemote)

	p.world.AddSystem(p.roster.Update)
	p.world.AddSystem(systems.NewDriverSystem(p.dt))
	p.world.AddSystem(systems.NewBodySyncSystem(p.client, p.views, p.dt))
	p.world.AddSystem(systems.NewPhysicsSystem(p.dt))

	for i := 0; i < cfg.Client.Bodies; i++ {
		p.spawnLocal(messages.ObjectID(cfg.Client.FirstID+uint32(i)), i)
	}
	return p
}

func (p *Peer) spawnLocal(id messages.ObjectID, index int) {
	body := physics.NewRigidBody(mgl32.Vec3{}, mgl32.QuatIdent())
	view := network.NewRigidbodyView(id, body, p.cfg.Sync, p.client, p.client)
	view.SetOwned(true)
	if err := p.views.Add(view); err != nil {
		log.WithError(err).WithField("object", id).Warn("applying parked calls")
	}

	w := p.world.World
	entity := w.Create(tags.Body, tags.Local, components.SyncedBody, components.Driver)
	entry := w.Entry(entity)
	components.SyncedBody.SetValue(entry, components.SyncedBodyData{Body: body, View: view})
	components.Driver.SetValue(entry, components.DriverData{
		Center:         mgl32.Vec3{float32(index) * 4, 0, 0},
		Radius:         1.5,
		AngularSpeed:   1,
		Spin:           mgl32.Vec3{0, 0.5, 0},
		KinematicEvery: 5,
	})
	p.roster.Track(id, entity)
	p.local = append(p.local, id)
}

func (p *Peer) spawnRemote(id messages.ObjectID) (*physics.RigidBody, *network.RigidbodyView) {
	body := physics.NewRigidBody(mgl32.Vec3{}, mgl32.QuatIdent())
	view := network.NewRigidbodyView(id, body, p.cfg.Sync, p.client, p.client)
	return body, view
}

// claim asks for authority over the local bodies once the join completes.
func (p *Peer) claim() {
	if p.claimed || !p.client.InRoom() {
		return
	}
	layout := p.cfg.Sync.Layout()
	for _, id := range p.local {
		if err := p.client.Claim(id, layout); err != nil {
			log.WithError(err).WithField("object", id).Warn("claim failed")
			return
		}
	}
	p.claimed = true
	log.WithFields(log.Fields{"peer": p.client.PeerID(), "bodies": len(p.local)}).Info("claimed local bodies")
}

func (p *Peer) Run(stop <-chan os.Signal) {
	p.client.Connect(p.cfg.Client.Address, clientVersion, p.cfg.Client.PlayerName)
	defer p.client.Disconnect()

	tick := time.NewTicker(time.Second / time.Duration(p.cfg.Client.PhysicsRate))
	defer tick.Stop()
	ping := time.NewTicker(time.Duration(p.cfg.Client.PingInterval * float64(time.Second)))
	defer ping.Stop()

	for {
		select {
		case <-stop:
			log.Info("shutting down")
			return
		case <-ping.C:
			if p.client.InRoom() {
				if err := p.client.SendPing(); err != nil {
					log.WithError(err).Debug("ping failed")
				}
			}
		case <-tick.C:
			if p.client.State() == network.StateError {
				log.WithError(p.client.LastError()).Error("connection failed")
				return
			}
			p.claim()
			p.world.Update()
		}
	}
}

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	address := flag.String("address", "", "Server address host:port (overrides config)")
	name := flag.String("name", "", "Player name (overrides config)")
	firstID := flag.Uint("first-id", 0, "First object id for local bodies (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load config")
		}
		cfg = loaded
	}
	if *address != "" {
		cfg.Client.Address = *address
	}
	if *name != "" {
		cfg.Client.PlayerName = *name
	}
	if *firstID != 0 {
		cfg.Client.FirstID = uint32(*firstID)
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	if err := cfg.Logging.Apply(); err != nil {
		log.WithError(err).Fatal("invalid log level")
	}

	// Register network components for roster deserialization
	if err := protocol.RegisterComponents(); err != nil {
		log.WithError(err).Fatal("failed to register network components")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	log.WithFields(log.Fields{
		"address": cfg.Client.Address,
		"bodies":  cfg.Client.Bodies,
		"rate":    cfg.Client.PhysicsRate,
	}).Info("starting peer")
	NewPeer(cfg).Run(stop)
}
