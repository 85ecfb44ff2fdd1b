// Package config loads weaktrack settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/danpilch/weaktrack/pkg/mgmt"
	"github.com/danpilch/weaktrack/pkg/registrar"
	"github.com/danpilch/weaktrack/pkg/track"
)

// Config is the on-disk configuration. When WaitForReady is set the registrar
// waits for the management endpoint to bind instead of RegistrationDelay.
type Config struct {
	ListenAddr        string        `yaml:"listen_addr"`
	BeanName          string        `yaml:"bean_name"`
	RegistrationDelay time.Duration `yaml:"registration_delay"`
	WaitForReady      bool          `yaml:"wait_for_ready"`
	Enabled           bool          `yaml:"enabled"`
	StackdumpInterval int           `yaml:"stackdump_interval"`
	LogLevel          string        `yaml:"log_level"`
	LogFormat         string        `yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:        mgmt.DefaultAddr,
		BeanName:          registrar.DefaultName,
		RegistrationDelay: registrar.DefaultDelay,
		Enabled:           true,
		StackdumpInterval: track.DefaultStackdumpInterval,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse config %q: %w", path, err)
	}
	if err := cfg.Normalize(); err != nil {
		return cfg, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

// Normalize clamps out-of-range values and rejects unusable ones.
func (c *Config) Normalize() error {
	c.StackdumpInterval = track.ClampInterval(c.StackdumpInterval)
	if c.RegistrationDelay < 0 {
		c.RegistrationDelay = 0
	}
	if c.BeanName == "" {
		c.BeanName = registrar.DefaultName
	}
	if c.ListenAddr == "" {
		c.ListenAddr = mgmt.DefaultAddr
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.New("log_format must be text or json")
	}
	return nil
}

// Tracking returns the tracking part of the configuration.
func (c Config) Tracking() track.Config {
	return track.Config{
		Enabled:           c.Enabled,
		StackdumpInterval: c.StackdumpInterval,
	}
}

// NewLogger builds a logger from the log settings.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
