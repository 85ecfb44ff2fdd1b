package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/danpilch/weaktrack/pkg/mgmt"
	"github.com/danpilch/weaktrack/pkg/output"
	"github.com/danpilch/weaktrack/pkg/track"
)

type dumpOptions struct {
	order  string
	format string
	limit  int
	watch  time.Duration
}

func newDumpCmd(g *globalOptions) *cobra.Command {
	opts := &dumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the remote counts sorted by type name or count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := track.ParseOrder(opts.order)
			if err != nil {
				return err
			}
			format, err := output.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			c, err := g.client()
			if err != nil {
				return err
			}

			f := output.NewFormatter(format, order, cmd.OutOrStdout())
			f.SetLimit(opts.limit)
			if opts.watch <= 0 {
				return dumpOnce(cmd.Context(), c, f, format, order, cmd.OutOrStdout())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			f.SetTrendTracker(output.NewTrendTracker(30))
			ticker := time.NewTicker(opts.watch)
			defer ticker.Stop()
			for {
				fmt.Fprint(cmd.OutOrStdout(), "\033[H\033[2J")
				if err := dumpOnce(ctx, c, f, format, order, cmd.OutOrStdout()); err != nil {
					return err
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().StringVarP(&opts.order, "by", "b", string(track.OrderByName), "sort order: name or count")
	cmd.Flags().StringVarP(&opts.format, "format", "o", string(output.FormatText), "output format: text, table, json, tsv")
	cmd.Flags().IntVar(&opts.limit, "top", 0, "show only the N types with the largest counts")
	cmd.Flags().DurationVarP(&opts.watch, "watch", "w", 0, "refresh interval; 0 prints once")
	return cmd
}

// dumpOnce prints one report. Plain text without a limit or trend goes through
// the bean's own dump operation so the output is exactly what it renders.
func dumpOnce(ctx context.Context, c *mgmt.Client, f *output.Formatter, format output.Format, order track.Order, w io.Writer) error {
	if format == output.FormatText && !f.HasDecorations() {
		text, err := c.Dump(ctx, order)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, text)
		return err
	}
	entries, err := c.Entries(ctx)
	if err != nil {
		return err
	}
	return f.Render(entries)
}
