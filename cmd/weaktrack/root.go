package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/danpilch/weaktrack/pkg/config"
	"github.com/danpilch/weaktrack/pkg/mgmt"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	configPath string
	addr       string
	bean       string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:          "weaktrack",
		Short:        "Count weak pointer creations by referent type",
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&opts.addr, "addr", "", "management endpoint address (default from config)")
	flags.StringVar(&opts.bean, "bean", "", "bean name (default from config)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")

	cmd.AddCommand(
		newServeCmd(opts),
		newStatusCmd(opts),
		newEnableCmd(opts, true),
		newEnableCmd(opts, false),
		newToggleCmd(opts),
		newIntervalCmd(opts),
		newResetCmd(opts),
		newDumpCmd(opts),
		newBenchCmd(opts),
		newBaselineCmd(opts),
	)
	return cmd
}

// load reads the config file and applies flag overrides.
func (o *globalOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.addr != "" {
		cfg.ListenAddr = o.addr
	}
	if o.bean != "" {
		cfg.BeanName = o.bean
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	return cfg, cfg.Normalize()
}

func (o *globalOptions) logger() (*logrus.Logger, config.Config, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, cfg, err
	}
	return cfg.NewLogger(), cfg, nil
}

func (o *globalOptions) client() (*mgmt.Client, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	return mgmt.NewClient(cfg.ListenAddr, cfg.BeanName), nil
}
