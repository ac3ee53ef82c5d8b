package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/teranos/dolly"
	"github.com/teranos/dolly/film"
)

func newFilmCmd(opts *options) *cobra.Command {
	var (
		outDir      string
		hops        int
		fps         int
		width       int
		height      int
		clicks      []float32
		baselineDir string
		reportDir   string
		maxStumbles int
	)

	cmd := &cobra.Command{
		Use:   "film <manifest>",
		Short: "Film a walk through the manifest as PNG frames",
		Long: `Film drives the walk on a virtual clock and renders every frame
headlessly. Without --click it performs --hops undirected hops; each
--click x,y pair performs one directional hop towards that pixel.

With --baseline, frames written to --out are compared against a directory of
earlier frames and the command fails if any differ.

With --max-stumbles, the walk stops and the command fails once more stumbles
than that have been recorded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(clicks)%2 != 0 {
				return fmt.Errorf("--click takes x,y pairs, got %d values", len(clicks))
			}
			if baselineDir != "" && outDir == "" {
				return fmt.Errorf("--baseline needs --out: frames must be written to be compared")
			}
			if maxStumbles < 0 {
				return fmt.Errorf("--max-stumbles must not be negative, got %d", maxStumbles)
			}
			if err := checkFPS(fps); err != nil {
				return err
			}

			cfg, store, logger, err := opts.load(args[0])
			if err != nil {
				return err
			}

			rc := film.DefaultConfig()
			rc.Width, rc.Height = width, height
			rig := film.NewRig(rc)
			rig.SceneFromStore(store)

			director, err := dolly.NewDirector(store, rig.Surfaces(), cfg)
			if err != nil {
				return err
			}
			director.WithLogger(logger)
			director.Trips().WithPolicy(stumblePolicy(maxStumbles))

			op := film.NewOperator(director, rig, fps).WithLogger(logger)
			op.Trips().WithPolicy(stumblePolicy(maxStumbles))
			if outDir != "" {
				op.WithOutputDir(outDir)
			}
			op.Start()
			if len(clicks) == 0 {
				op.Walk(hops)
			}
			for i := 0; i+1 < len(clicks); i += 2 {
				op.Click(clicks[i], clicks[i+1])
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "frame\tlabel\tt\tphase\tcurrent\tnext\tprogress\tmotion")
			for _, f := range op.Reel() {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%.2f\t%.4f\n",
					f.Index, f.Label, f.At, f.Phase, f.Current, f.Next, f.Progress, f.Motion)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			logger.Info(director.Trips().Summary())
			logger.Info(op.Trips().Summary())
			printDiagnostics(cmd.ErrOrStderr(), opts.verbose, director.Trips(), op.Trips())

			if reportDir != "" {
				report, err := film.NewReport(filepath.Base(args[0]), op.Reel())
				if err != nil {
					return err
				}
				report.Manifest = args[0]
				report.Summary = director.Trips().Summary()
				report.AddTrips(director.Trips(), op.Trips())
				path, err := film.WriteReport(reportDir, report)
				if err != nil {
					return err
				}
				logger.Info("report written", "path", path)
			}

			if op.Stopped() {
				return fmt.Errorf("walk stopped early after %d frames: %s; %s", len(op.Reel()),
					director.Trips().Summary(), op.Trips().Summary())
			}
			if baselineDir == "" {
				return nil
			}
			return validateReel(cmd.OutOrStdout(), film.NewSupervisor(baselineDir, outDir), op.Reel())
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory for PNG frames (none written if empty)")
	cmd.Flags().IntVar(&hops, "hops", 3, "number of undirected hops")
	cmd.Flags().IntVar(&fps, "fps", 30, "frames per second of the virtual clock")
	cmd.Flags().IntVar(&width, "width", 800, "frame width in pixels")
	cmd.Flags().IntVar(&height, "height", 600, "frame height in pixels")
	cmd.Flags().Float32SliceVar(&clicks, "click", nil, "x,y pixel to hop towards (repeatable)")
	cmd.Flags().StringVar(&baselineDir, "baseline", "", "directory of baseline frames to compare against")
	cmd.Flags().StringVar(&reportDir, "report", "", "write an HTML contact sheet of the reel to this directory")
	cmd.Flags().IntVar(&maxStumbles, "max-stumbles", 0, "stop the walk once more stumbles than this are recorded (0 for no limit)")
	return cmd
}

// validateReel checks every written frame against its baseline.
func validateReel(w io.Writer, s *film.Supervisor, reel []film.Frame) error {
	failed := 0
	for _, f := range reel {
		if f.Path == "" {
			continue
		}
		name := strings.TrimSuffix(filepath.Base(f.Path), ".png")
		if err := s.Validate(name); err != nil {
			failed++
			fmt.Fprintln(w, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d frames differ from baseline", failed, len(reel))
	}
	return nil
}
