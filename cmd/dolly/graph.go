package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/teranos/dolly"
)

func newGraphCmd(opts *options) *cobra.Command {
	var showScores bool

	cmd := &cobra.Command{
		Use:   "graph <manifest>",
		Short: "Print the pose graph built from a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, _, err := opts.load(args[0])
			if err != nil {
				return err
			}

			gopts := cfg.GraphOptions()
			graph := dolly.BuildGraph(store.Poses(), gopts)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "# %d poses, %d edges, k=%d, weights distance=%g angle=%g, symmetric=%t\n",
				store.Len(), len(graph.Edges()), gopts.K, gopts.Weights.Distance, gopts.Weights.Angle, gopts.Symmetrize)

			if !showScores {
				fmt.Fprint(out, graph.String())
				return nil
			}
			for i := 0; i < graph.Len(); i++ {
				from, _ := store.At(i)
				fmt.Fprintf(out, "%d %s:", i, from.ID)
				for _, j := range graph.Neighbors(i) {
					to, _ := store.At(j)
					fmt.Fprintf(out, " %d(%.3f)", j, dolly.Score(from, to, gopts.Weights))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showScores, "scores", false, "show pose ids and edge scores")
	return cmd
}
