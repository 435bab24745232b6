package core

import (
	"time"

	"github.com/leap-fish/necs/esync/srvsync"
	log "github.com/sirupsen/logrus"
)

type GameLoop struct {
	server   *Server
	tickRate int
	stopChan chan struct{}
}

func NewGameLoop(server *Server, tickRate int) *GameLoop {
	return &GameLoop{
		server:   server,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
	}
}

func (g *GameLoop) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(g.tickRate))
	defer ticker.Stop()

	log.WithField("tick_rate", g.tickRate).Info("game loop started")

	for {
		select {
		case <-g.stopChan:
			log.Info("game loop stopped")
			return
		case <-ticker.C:
			g.tick()
		}
	}
}

func (g *GameLoop) Stop() {
	close(g.stopChan)
}

func (g *GameLoop) tick() {
	g.server.ProcessCommands()

	if err := srvsync.DoSync(); err != nil {
		log.WithError(err).Warn("sync error")
	}
}
