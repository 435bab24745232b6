// Package config loads the YAML file shared by the server and the demo client.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/automoto/rigidsync/shared/netconfig"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig         `yaml:"server"`
	Client  ClientConfig         `yaml:"client"`
	Sync    netconfig.SyncConfig `yaml:"sync"`
	Logging LoggingConfig        `yaml:"logging"`
}

type ServerConfig struct {
	Port              uint   `yaml:"port"`
	Name              string `yaml:"name"`
	Version           string `yaml:"version"` // required client version, empty accepts any
	MaxPlayers        int    `yaml:"max_players"`
	TickRate          int    `yaml:"tick_rate"`
	SerializationRate int    `yaml:"serialization_rate"`
	// Inbound snapshots allowed per second per peer, as a multiple of the
	// serialization rate.
	SnapshotBudget float64 `yaml:"snapshot_budget"`
}

type ClientConfig struct {
	Address      string  `yaml:"address"`
	PlayerName   string  `yaml:"player_name"`
	PhysicsRate  int     `yaml:"physics_rate"`
	Bodies       int     `yaml:"bodies"`
	FirstID      uint32  `yaml:"first_id"`
	PingInterval float64 `yaml:"ping_interval"` // seconds
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a config usable without a file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              7373,
			Name:              "rigidsync",
			MaxPlayers:        16,
			TickRate:          netconfig.DefaultTickRate,
			SerializationRate: netconfig.DefaultSerializationRate,
			SnapshotBudget:    2,
		},
		Client: ClientConfig{
			Address:      "localhost:7373",
			PlayerName:   "peer",
			PhysicsRate:  netconfig.DefaultTickRate,
			Bodies:       1,
			FirstID:      1,
			PingInterval: 2,
		},
		Sync:    netconfig.DefaultSyncConfig(),
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

var (
	ErrInvalidRate   = errors.New("rates must be positive")
	ErrInvalidBudget = errors.New("snapshot budget must be at least 1")
	ErrInvalidPing   = errors.New("ping interval must be positive")
)

func (c *Config) Validate() error {
	if c.Server.TickRate <= 0 || c.Server.SerializationRate <= 0 || c.Client.PhysicsRate <= 0 {
		return ErrInvalidRate
	}
	if c.Client.PingInterval <= 0 {
		return ErrInvalidPing
	}
	if c.Server.SnapshotBudget < 1 {
		return ErrInvalidBudget
	}
	if err := c.Sync.Validate(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// Apply sets the global logrus level.
func (l LoggingConfig) Apply() error {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}
