package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tochemey/goakt/v3/log"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1000.0, cfg.World.Width)
	assert.Equal(t, 800.0, cfg.World.Height)
	assert.Equal(t, 10, cfg.Flock.InitialCount)
	assert.Equal(t, flock.DefaultParams(), cfg.Boid)
	assert.Equal(t, 10, cfg.Index.Capacity)
	assert.Equal(t, log.InfoLevel, cfg.LogLevel())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "flock.json", `{"world": {"width": 640}, "boid": {"separationRadius": 12}, "log": {"level": "debug"}}`},
		{"yaml", "flock.yaml", "world:\n  width: 640\nboid:\n  separationRadius: 12\nlog:\n  level: debug\n"},
		{"yml", "flock.yml", "world: {width: 640}\nboid: {separationRadius: 12}\nlog: {level: debug}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeFile(t, dir, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, 640.0, cfg.World.Width)
			assert.Equal(t, 800.0, cfg.World.Height, "omitted keys keep defaults")
			assert.Equal(t, 12.0, cfg.Boid.SeparationRadius)
			assert.Equal(t, 40.0, cfg.Boid.CohesionRadius)
			assert.Equal(t, log.DebugLevel, cfg.LogLevel())
		})
	}
}

func TestLoadConfig_EmptyYAMLIsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, t.TempDir(), "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Rejects(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"negative radius", "a.json", `{"boid": {"cohesionRadius": -1}}`},
		{"zero capacity", "b.json", `{"index": {"capacity": 0}}`},
		{"unknown key", "c.json", `{"wrld": {}}`},
		{"bad level", "d.yaml", "log:\n  level: loud\n"},
		{"wrong type", "e.yaml", "world:\n  width: wide\n"},
		{"malformed json", "f.json", `{"world":`},
		{"malformed yaml", "g.yaml", "world: [1, 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, dir, tt.file, tt.content))
			require.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatch_ReloadsValidChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "flock.yaml", "boid:\n  turnFactor: 2\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan *Config, 1)
	require.NoError(t, Watch(ctx, path, log.DiscardLogger, out))

	// an invalid edit is skipped, the following valid one is delivered
	writeFile(t, dir, "flock.yaml", "boid:\n  turnFactor: -3\n")
	time.Sleep(3 * DebounceWindow)
	writeFile(t, dir, "flock.yaml", "boid:\n  turnFactor: 5\n")

	select {
	case cfg := <-out:
		assert.Equal(t, 5.0, cfg.Boid.TurnFactor)
	case <-time.After(5 * time.Second):
		t.Fatal("no config received after a valid edit")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "flock.yaml"), log.DiscardLogger, make(chan *Config))
	require.Error(t, err)
}
