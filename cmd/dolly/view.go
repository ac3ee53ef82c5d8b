package main

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/teranos/dolly"
	"github.com/teranos/dolly/film"
	"github.com/teranos/dolly/trip"
	"github.com/teranos/dolly/tui"
)

func newViewCmd(opts *options) *cobra.Command {
	var (
		fps     int
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "view <manifest>",
		Short: "Walk the manifest interactively in the terminal",
		Long: `Walk the capture in the terminal. Poses ahead of the camera are drawn
as dots; the pose being approached is highlighted.

Key bindings:
  Space/Enter  Hop to a neighbouring pose
  Left click   Hop towards the clicked point
  q, Ctrl+C    Quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFPS(fps); err != nil {
				return err
			}

			cfg, store, logger, err := opts.load(args[0])
			if err != nil {
				return err
			}

			rig := film.NewRig(film.DefaultConfig())
			director, err := dolly.NewDirector(store, rig.Surfaces(), cfg)
			if err != nil {
				return err
			}

			// the program owns the terminal while it runs
			var sink io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					return err
				}
				defer f.Close()
				sink = f
			}
			logger.SetOutput(sink)

			model := tui.New(director.WithLogger(logger), rig).WithLogger(logger).WithFPS(fps)
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()

			logger.SetOutput(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			logger.Info("walk finished",
				"hops", len(director.Hops()),
				"dead_ends", director.Trips().CountType(trip.Navigation),
				"unaimed_clicks", director.Trips().CountType(trip.Intent),
				"summary", director.Trips().Summary())
			printDiagnostics(cmd.ErrOrStderr(), opts.verbose, director.Trips())
			return nil
		},
	}

	cmd.Flags().IntVar(&fps, "fps", 30, "frames per second")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs here while the viewer runs")
	return cmd
}
