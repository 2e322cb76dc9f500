// Package config loads race host and terminal settings from YAML with
// environment overrides.
package config

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/selvatuple/thumb-race-rally/internal/simulation"
	"github.com/selvatuple/thumb-race-rally/internal/viewport"
)

type Config struct {
	Race     simulation.Tuning `yaml:"race"`
	Viewport viewport.Settings `yaml:"viewport"`
	Server   Server            `yaml:"server"`
	Terminal Terminal          `yaml:"terminal"`
	Log      Log               `yaml:"log"`
}

type Server struct {
	Addr string `yaml:"addr"`
	// LoopRate is how often the host feeds wall time into the race, in Hz.
	LoopRate int `yaml:"loop_rate"`
	// ReplicationRate is how often state is broadcast to clients, in Hz.
	ReplicationRate int    `yaml:"replication_rate"`
	Codec           string `yaml:"codec"`
}

type Terminal struct {
	FrameInterval time.Duration `yaml:"frame_interval"`
}

type Log struct {
	Level string `yaml:"level"`
}

func Default() Config {
	return Config{
		Race:     simulation.DefaultTuning(),
		Viewport: viewport.DefaultSettings(),
		Server: Server{
			Addr:            ":9003",
			LoopRate:        60,
			ReplicationRate: 30,
			Codec:           "json",
		},
		Terminal: Terminal{FrameInterval: 16 * time.Millisecond},
		Log:      Log{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, "open config")
	}
	defer f.Close()

	if err := decode(f, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML bytes over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := decode(bytes.NewReader(data), &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse config")
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from RACE_* variables. Values that fail to
// parse leave the field untouched.
func (c *Config) ApplyEnv(getenv func(string) string) {
	c.Server.Addr = envString(getenv, "RACE_ADDR", c.Server.Addr)
	c.Server.Codec = envString(getenv, "RACE_CODEC", c.Server.Codec)
	c.Log.Level = envString(getenv, "RACE_LOG_LEVEL", c.Log.Level)
	c.Race.TickRate = envInt(getenv, "RACE_TICK_RATE", c.Race.TickRate)
	c.Race.FinishLine = envFloat(getenv, "RACE_FINISH_LINE", c.Race.FinishLine)
}

func (c Config) Validate() error {
	if err := c.Race.Validate(); err != nil {
		return errors.Wrap(err, "race")
	}
	if err := c.Viewport.Validate(); err != nil {
		return errors.Wrap(err, "viewport")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.LoopRate <= 0 || c.Server.ReplicationRate <= 0 {
		return errors.New("server rates must be positive")
	}
	if c.Terminal.FrameInterval <= 0 {
		return errors.New("terminal.frame_interval must be positive")
	}
	return nil
}

// NewRace builds a race from the validated settings.
func (c Config) NewRace() *simulation.Race {
	return simulation.NewRace(c.Race, c.Viewport)
}

func envString(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(getenv func(string) string, key string, fallback int) int {
	v := getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(getenv func(string) string, key string, fallback float64) float64 {
	v := getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
