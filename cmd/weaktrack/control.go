package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatusCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the remote tracking attributes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			attrs, err := c.Attributes(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enabled: %t\nstackdump interval: %d\n",
				attrs.Enabled, attrs.StackdumpInterval)
			return nil
		},
	}
}

func newEnableCmd(g *globalOptions, flag bool) *cobra.Command {
	use, short := "enable", "Start counting weak pointer creations"
	if !flag {
		use, short = "disable", "Stop counting weak pointer creations"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			got, err := c.SetEnabled(cmd.Context(), flag)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enabled: %t\n", got)
			return nil
		},
	}
}

func newToggleCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Flip the enabled flag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			got, err := c.ToggleEnabled(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enabled: %t\n", got)
			return nil
		},
	}
}

func newIntervalCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "interval [N]",
		Short: "Get or set the stack capture interval (values <= 0 become 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				attrs, err := c.Attributes(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), attrs.StackdumpInterval)
				return nil
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid interval %q: %w", args[0], err)
			}
			got, err := c.SetStackdumpInterval(cmd.Context(), n)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), got)
			return nil
		},
	}
}

func newResetCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear all remote counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			return c.Reset(cmd.Context())
		},
	}
}
