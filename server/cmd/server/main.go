package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/automoto/rigidsync/config"
	"github.com/automoto/rigidsync/server/core"
	"github.com/automoto/rigidsync/shared/protocol"
	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	port := flag.Uint("port", 0, "Server port (overrides config)")
	tickRate := flag.Int("tickrate", 0, "Server tick rate (overrides config)")
	rate := flag.Int("rate", 0, "Snapshot serialization rate per second (overrides config)")
	name := flag.String("name", "", "Room name (overrides config)")
	version := flag.String("version", "", "Required client version (empty = accept any)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load config")
		}
		cfg = loaded
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *tickRate != 0 {
		cfg.Server.TickRate = *tickRate
	}
	if *rate != 0 {
		cfg.Server.SerializationRate = *rate
	}
	if *name != "" {
		cfg.Server.Name = *name
	}
	if *version != "" {
		cfg.Server.Version = *version
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	if err := cfg.Logging.Apply(); err != nil {
		log.WithError(err).Fatal("invalid log level")
	}

	if err := protocol.RegisterComponents(); err != nil {
		log.WithError(err).Fatal("failed to register components")
	}

	server := core.NewServer(cfg.Server)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down server")
		server.Stop()
		os.Exit(0)
	}()

	log.WithFields(log.Fields{
		"name":               cfg.Server.Name,
		"port":               cfg.Server.Port,
		"tick_rate":          cfg.Server.TickRate,
		"serialization_rate": cfg.Server.SerializationRate,
		"version":            cfg.Server.Version,
	}).Info("starting room server")
	if err := server.Start(cfg.Server.Port); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
