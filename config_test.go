package dolly

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/dolly/trip"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3, cfg.Graph.K)
	assert.InDelta(t, 0.7, cfg.Graph.DistanceWeight, 1e-6)
	assert.InDelta(t, 0.3, cfg.Graph.AngleWeight, 1e-6)
	assert.False(t, cfg.Graph.Directed)
	assert.Equal(t, ModeDirectional, cfg.Navigation.Mode)
	assert.Equal(t, 2*time.Second, cfg.Transition.Duration())
	assert.Equal(t, "images", cfg.Manifest.AssetRoot)
	assert.Equal(t, RotationColumns, cfg.Manifest.RotationOrder)
	assert.NoError(t, cfg.Validate())

	opts := cfg.GraphOptions()
	assert.Equal(t, 3, opts.K)
	assert.True(t, opts.Symmetrize)
	assert.Equal(t, opts, DefaultGraphOptions())
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dolly.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
graph:
  k: 2
  angle_weight: 0
navigation:
  mode: random
transition:
  duration_ms: 500
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Graph.K)
	assert.Equal(t, float32(0), cfg.Graph.AngleWeight, "explicit zero survives")
	assert.InDelta(t, 0.7, cfg.Graph.DistanceWeight, 1e-6, "unset keeps default")
	assert.Equal(t, ModeRandom, cfg.Navigation.Mode)
	assert.Equal(t, 500*time.Millisecond, cfg.Transition.Duration())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("graph: [not, a, map]"), 0o644))
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, "failed to parse config")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("navigation:\n  mode: teleport\n"), 0o644))
	_, err = LoadConfig(invalid)
	var tr *trip.Trip
	require.True(t, errors.As(err, &tr))
	assert.Equal(t, trip.Config, tr.Type)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"zero k", func(c *Config) { c.Graph.K = 0 }, "graph.k"},
		{"negative weight", func(c *Config) { c.Graph.AngleWeight = -1 }, "must not be negative"},
		{"both weights zero", func(c *Config) { c.Graph.AngleWeight, c.Graph.DistanceWeight = 0, 0 }, "both be zero"},
		{"unknown mode", func(c *Config) { c.Navigation.Mode = "teleport" }, "navigation.mode"},
		{"negative nav weight", func(c *Config) { c.Navigation.DistanceWeight = -0.2 }, "navigation weights"},
		{"negative duration", func(c *Config) { c.Transition.DurationMs = -1 }, "duration_ms"},
		{"unknown order", func(c *Config) { c.Manifest.RotationOrder = "diagonal" }, "rotation_order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
