package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seedgen/gen"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}

func TestDefaultRunsSequential(t *testing.T) {
	// Sequential is the default so order generation sees the purchase and
	// cart signals from the event stream.
	assert.False(t, Default().Parallel)
}

func TestValidateRejectsBadValues(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"zero users":      func(c *Config) { c.Users = 0 },
		"negative events": func(c *Config) { c.EventsPerUser = -1 },
		"zero orders":     func(c *Config) { c.OrdersPerUser = 0 },
		"zero batch":      func(c *Config) { c.BatchSize = 0 },
		"zero window":     func(c *Config) { c.WindowDays = 0 },
		"empty sink":      func(c *Config) { c.Sink = "" },
		"unknown sink":    func(c *Config) { c.Sink = "duckdb" },
		"sqlite no path":  func(c *Config) { c.Sqlite.Path = "" },
		"kafka no broker": func(c *Config) { c.Sink = "kafka" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, gen.IsKind(err, gen.FaultConfiguration))
		})
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seedgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
seed: 99
users: 250
events_per_user: 3.5
sink: sqlite
sqlite:
  path: /tmp/test.db
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 250, cfg.Users)
	assert.Equal(t, 3.5, cfg.EventsPerUser)
	assert.Equal(t, "/tmp/test.db", cfg.Sqlite.Path)
	// Unset keys keep their defaults.
	assert.Equal(t, Default().BatchSize, cfg.BatchSize)
	require.NoError(t, cfg.Validate())
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seedgen.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"seed": 7, "users": 42, "sink": "sqlite"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 42, cfg.Users)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, gen.IsKind(err, gen.FaultConfiguration))
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SEEDGEN_SEED", "31337")
	t.Setenv("SEEDGEN_USERS", "77")
	t.Setenv("SEEDGEN_EVENTS_PER_USER", "1.25")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, int64(31337), cfg.Seed)
	assert.Equal(t, 77, cfg.Users)
	assert.Equal(t, 1.25, cfg.EventsPerUser)
}

func TestWindowDerivation(t *testing.T) {
	cfg := Default()
	cfg.WindowDays = 90
	now := time.Date(2025, 6, 30, 12, 0, 0, 500, time.UTC)

	w := cfg.Window(now)
	assert.Equal(t, now.Truncate(time.Second), w.End)
	assert.Equal(t, now.Truncate(time.Second).AddDate(0, 0, -90), w.Start)
}
