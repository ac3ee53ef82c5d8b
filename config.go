package dolly

import (
	"fmt"
	"os"
	"time"

	"github.com/teranos/dolly/trip"
	"gopkg.in/yaml.v3"
)

// Config holds every recognised option. Zero values are meaningful (an angle
// weight of 0 gives the plain-distance graph), so files are decoded on top of
// DefaultConfig rather than back-filled afterwards.
type Config struct {
	Graph      GraphConfig      `yaml:"graph"`
	Navigation NavigationConfig `yaml:"navigation"`
	Transition TransitionConfig `yaml:"transition"`
	Manifest   ManifestConfig   `yaml:"manifest"`
	Log        LogConfig        `yaml:"log"`
}

// GraphConfig controls pose graph construction.
type GraphConfig struct {
	K              int     `yaml:"k"`
	DistanceWeight float32 `yaml:"distance_weight"`
	AngleWeight    float32 `yaml:"angle_weight"`
	// Directed skips the symmetrization pass.
	Directed bool `yaml:"directed"`
}

// NavigationConfig selects the navigation policy.
type NavigationConfig struct {
	Mode Mode `yaml:"mode"`
	// Weights of the directional score. Angle is in radians.
	AngleWeight    float32 `yaml:"angle_weight"`
	DistanceWeight float32 `yaml:"distance_weight"`
	// Seed for the random policy; 0 seeds from the clock.
	Seed uint64 `yaml:"seed"`
}

// TransitionConfig controls the animated hop between two poses.
type TransitionConfig struct {
	DurationMs int `yaml:"duration_ms"`
}

// ManifestConfig controls how camera manifests are read.
type ManifestConfig struct {
	AssetRoot     string        `yaml:"asset_root"`
	RotationOrder RotationOrder `yaml:"rotation_order"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the stock configuration: a k=3 graph, directional
// navigation and two-second hops.
func DefaultConfig() Config {
	return Config{
		Graph: GraphConfig{
			K:              3,
			DistanceWeight: 0.7,
			AngleWeight:    0.3,
		},
		Navigation: NavigationConfig{
			Mode:           ModeDirectional,
			AngleWeight:    0.8,
			DistanceWeight: 0.2,
		},
		Transition: TransitionConfig{
			DurationMs: 2000,
		},
		Manifest: ManifestConfig{
			AssetRoot:     "images",
			RotationOrder: RotationColumns,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads a YAML config file on top of the defaults and validates it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first invalid option as a config trip.
func (c Config) Validate() error {
	invalid := func(msg string, ctx trip.Context) error {
		return trip.NewTrip(trip.Config, msg, ctx)
	}

	if c.Graph.K < 1 {
		return invalid("graph.k must be at least 1", trip.Context{"k": c.Graph.K})
	}
	if c.Graph.DistanceWeight < 0 || c.Graph.AngleWeight < 0 {
		return invalid("graph weights must not be negative", trip.Context{
			"distance_weight": c.Graph.DistanceWeight, "angle_weight": c.Graph.AngleWeight,
		})
	}
	if c.Graph.DistanceWeight == 0 && c.Graph.AngleWeight == 0 {
		return invalid("graph weights must not both be zero", nil)
	}
	switch c.Navigation.Mode {
	case ModeRandom, ModeDirectional:
	default:
		return invalid("navigation.mode must be random or directional", trip.Context{"mode": c.Navigation.Mode})
	}
	if c.Navigation.AngleWeight < 0 || c.Navigation.DistanceWeight < 0 {
		return invalid("navigation weights must not be negative", nil)
	}
	if c.Transition.DurationMs < 0 {
		return invalid("transition.duration_ms must not be negative", trip.Context{"duration_ms": c.Transition.DurationMs})
	}
	switch c.Manifest.RotationOrder {
	case RotationColumns, RotationRows:
	default:
		return invalid("manifest.rotation_order must be columns or rows", trip.Context{"rotation_order": c.Manifest.RotationOrder})
	}
	return nil
}

// GraphOptions converts the graph section into builder options.
func (c Config) GraphOptions() GraphOptions {
	return GraphOptions{
		K:          c.Graph.K,
		Weights:    Weights{Distance: c.Graph.DistanceWeight, Angle: c.Graph.AngleWeight},
		Symmetrize: !c.Graph.Directed,
	}
}

// Duration returns the transition duration.
func (c TransitionConfig) Duration() time.Duration {
	return time.Duration(c.DurationMs) * time.Millisecond
}
