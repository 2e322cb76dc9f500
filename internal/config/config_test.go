package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/selvatuple/thumb-race-rally/internal/simulation"
	"github.com/selvatuple/thumb-race-rally/internal/viewport"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, simulation.DefaultTuning(), cfg.Race)
	require.Equal(t, viewport.DefaultSettings(), cfg.Viewport)
	require.Equal(t, ":9003", cfg.Server.Addr)
}

func TestLoad(t *testing.T) {
	t.Run("Empty Path", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		require.Equal(t, Default(), cfg)
	})

	t.Run("Partial File Keeps Defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "race.yaml")
		data := []byte("race:\n  finish_line: 200\n  push_duration: 120ms\nserver:\n  codec: msgpack\n")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, 200.0, cfg.Race.FinishLine)
		require.Equal(t, 120*time.Millisecond, cfg.Race.PushDuration)
		require.Equal(t, simulation.SteerForce, cfg.Race.SteerForce)
		require.Equal(t, "msgpack", cfg.Server.Codec)
		require.Equal(t, 60, cfg.Server.LoopRate)
		require.NoError(t, cfg.Validate())
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("Unknown Key", func(t *testing.T) {
		_, err := Parse([]byte("race:\n  finish_lien: 200\n"))
		require.Error(t, err)
	})

	t.Run("Empty Document", func(t *testing.T) {
		cfg, err := Parse(nil)
		require.NoError(t, err)
		require.Equal(t, Default(), cfg)
	})
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"RACE_ADDR":        ":7000",
		"RACE_LOG_LEVEL":   "debug",
		"RACE_TICK_RATE":   "120",
		"RACE_FINISH_LINE": "not-a-number",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	require.Equal(t, ":7000", cfg.Server.Addr)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 120, cfg.Race.TickRate)
	require.Equal(t, simulation.FinishLine, cfg.Race.FinishLine)
	require.Equal(t, "json", cfg.Server.Codec)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"zero mass":       func(c *Config) { c.Race.Mass = 0 },
		"full drag":       func(c *Config) { c.Race.LinearDrag = 1 },
		"bad lead":        func(c *Config) { c.Viewport.Lead = 2 },
		"no addr":         func(c *Config) { c.Server.Addr = "" },
		"zero loop rate":  func(c *Config) { c.Server.LoopRate = 0 },
		"zero frame rate": func(c *Config) { c.Terminal.FrameInterval = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestValidateKeepsSentinel(t *testing.T) {
	cfg := Default()
	cfg.Race.TickRate = 0
	require.ErrorIs(t, cfg.Validate(), simulation.ErrInvalidTuning)
}
