package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/danpilch/weaktrack/pkg/debug"
	"github.com/danpilch/weaktrack/pkg/mgmt"
	"github.com/danpilch/weaktrack/pkg/registrar"
	"github.com/danpilch/weaktrack/pkg/weakref"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	var (
		demo        bool
		demoWorkers int
		demoRate    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the management endpoint and publish tracking after the registration delay",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg, err := g.logger()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := mgmt.NewServer(nil, logger)
			hook := weakref.NewHook()

			addr, shutdown, err := server.ListenAndServe(cfg.ListenAddr)
			if err != nil {
				return err
			}
			defer shutdown()
			fmt.Fprintf(cmd.OutOrStdout(), "management endpoint on http://%s (bean %q)\n", addr, cfg.BeanName)

			opts := registrar.Options{
				Name:     cfg.BeanName,
				Delay:    cfg.RegistrationDelay,
				Config:   cfg.Tracking(),
				Capturer: debug.NewStackDumper(os.Stderr),
				Logger:   logger,
			}
			if cfg.WaitForReady {
				opts.Ready = server.Ready()
			}
			reg, err := registrar.New(server, hook, opts)
			if err != nil {
				return err
			}
			if err := reg.Start(); err != nil {
				return err
			}
			defer reg.Stop()

			if demo {
				var wg sync.WaitGroup
				runDemo(ctx, &wg, hook, demoWorkers, demoRate, logger)
				defer wg.Wait()
			}

			select {
			case <-reg.Done():
				log := logger.WithField("state", reg.State().String())
				if err := reg.Err(); err != nil {
					log.WithError(err).Warn("Tracking inactive for this process")
				} else {
					log.Info("Tracking active")
				}
			case <-ctx.Done():
			}

			<-ctx.Done()
			logger.Info("Shutting down")
			return nil
		},
	}

	cmd.Flags().BoolVar(&demo, "demo", false, "generate a synthetic weak pointer workload")
	cmd.Flags().IntVar(&demoWorkers, "demo-workers", 4, "goroutines in the demo workload")
	cmd.Flags().DurationVar(&demoRate, "demo-rate", time.Millisecond, "pause between demo allocations per worker")
	return cmd
}

type demoSession struct {
	id   int
	user string
}

type demoBuffer struct {
	data []byte
}

type demoNode struct {
	next *demoNode
	val  int
}

// runDemo makes weak pointers of a few types at uneven rates until ctx ends.
func runDemo(ctx context.Context, wg *sync.WaitGroup, hook *weakref.Hook, workers int, pause time.Duration, logger *logrus.Logger) {
	if workers < 1 {
		workers = 1
	}
	if pause <= 0 {
		pause = time.Millisecond
	}
	logger.WithFields(logrus.Fields{"workers": workers, "pause": pause}).Info("Starting demo workload")

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ticker := time.NewTicker(pause)
			defer ticker.Stop()
			for i := 0; ; i++ {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
				weakref.Make(hook, &demoNode{val: i})
				if i%3 == 0 {
					weakref.Make(hook, &demoSession{id: i, user: fmt.Sprintf("user-%d", w)})
				}
				if i%10 == 0 {
					weakref.Make(hook, &demoBuffer{data: make([]byte, 256)})
				}
				if i%50 == 0 {
					weakref.Make[demoBuffer](hook, nil)
				}
			}
		}(w)
	}
}
