package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danpilch/weaktrack/pkg/baseline"
)

func newBaselineCmd(g *globalOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Save remote counts and compare against saved snapshots",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "baseline directory (default ~/.weaktrack/baselines)")

	save := &cobra.Command{
		Use:   "save NAME",
		Short: "Save the current remote counts as a baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			c, err := g.client()
			if err != nil {
				return err
			}
			entries, err := c.Entries(cmd.Context())
			if err != nil {
				return err
			}
			attrs, err := c.Attributes(cmd.Context())
			if err != nil {
				return err
			}
			b := baseline.NewBaseline(args[0], cfg.BeanName, entries)
			b.SetTracking(attrs.Enabled, attrs.StackdumpInterval)
			if err := b.Save(dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved baseline %q (%d types)\n", b.Name, len(b.Entries))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved baselines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := baseline.List(dir)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}

	compare := &cobra.Command{
		Use:   "compare NAME",
		Short: "Compare the current remote counts against a baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := baseline.Load(args[0], dir)
			if err != nil {
				return err
			}
			c, err := g.client()
			if err != nil {
				return err
			}
			entries, err := c.Entries(cmd.Context())
			if err != nil {
				return err
			}
			baseline.RenderComparison(cmd.OutOrStdout(), b, baseline.Compare(b, entries))
			return nil
		},
	}

	cmd.AddCommand(save, list, compare)
	return cmd
}
