package main

import (
	"github.com/spf13/cobra"

	"github.com/danpilch/weaktrack/pkg/benchmark"
)

func newBenchCmd(g *globalOptions) *cobra.Command {
	opts := benchmark.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure the per-call cost of tracked weak pointer creation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, _, err := g.logger()
			if err != nil {
				return err
			}
			logger.WithField("iterations", opts.Iterations).Debug("Running benchmark")
			results := benchmark.Run(benchmark.DefaultScenarios(), opts)
			benchmark.RenderResults(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Iterations, "iterations", opts.Iterations, "timed batches per scenario")
	cmd.Flags().IntVar(&opts.BatchSize, "batch", opts.BatchSize, "weak pointers per batch")
	cmd.Flags().IntVar(&opts.Warmup, "warmup", opts.Warmup, "untimed warmup batches")
	return cmd
}
