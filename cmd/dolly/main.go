// Command dolly inspects and walks camera manifests: print the pose graph,
// film a walk to PNG frames, or walk it interactively in the terminal.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/teranos/dolly"
	"github.com/teranos/dolly/trip"
)

// maxFPS bounds the --fps flag. Faster clocks would tick in under a
// millisecond.
const maxFPS = 1000

// options holds the flags shared by every subcommand.
type options struct {
	cfgFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "dolly",
		Short: "Walk a captured space one photograph at a time",
		Long: `dolly builds a navigation graph over the camera poses of a capture
and moves a virtual camera between them, cross-fading the photographs.

Manifests are JSON or YAML files with a "cameras" list; each camera has an
id, an image, a 3x3 rotation and a translation.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file path (defaults built in)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newGraphCmd(opts))
	root.AddCommand(newFilmCmd(opts))
	root.AddCommand(newViewCmd(opts))
	return root
}

// load reads the configuration and the manifest and returns a logger
// configured from them.
func (o *options) load(manifest string) (dolly.Config, *dolly.PoseStore, *log.Logger, error) {
	cfg := dolly.DefaultConfig()
	if o.cfgFile != "" {
		var err error
		if cfg, err = dolly.LoadConfig(o.cfgFile); err != nil {
			return cfg, nil, nil, err
		}
	}

	level := cfg.Log.Level
	if o.verbose {
		level = "debug"
	}
	logger, err := dolly.NewLogger(os.Stderr, level)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	store, err := dolly.LoadPoseStore(manifest, cfg.Manifest)
	if err != nil {
		return cfg, nil, nil, err
	}
	logger.Debug("manifest loaded", "path", manifest, "poses", store.Len())
	return cfg, store, logger, nil
}

// checkFPS rejects frame rates the render loops cannot honour.
func checkFPS(fps int) error {
	if fps < 1 || fps > maxFPS {
		return fmt.Errorf("--fps must be between 1 and %d, got %d", maxFPS, fps)
	}
	return nil
}

// stumblePolicy is the trip policy for a --max-stumbles value; 0 leaves
// stumbles unbounded.
func stumblePolicy(maxStumbles int) *trip.Policy {
	policy := trip.DefaultPolicy()
	policy.MaxStumbles = maxStumbles
	return policy
}

// printDiagnostics writes the detailed trip report of every handler that
// recorded something, or of all of them when verbose.
func printDiagnostics(w io.Writer, verbose bool, handlers ...*trip.Handler) {
	for _, h := range handlers {
		if verbose || h.HasTrips() || h.HasStumbles() {
			fmt.Fprintln(w, h.DetailedReport())
		}
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
