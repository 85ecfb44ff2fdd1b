package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/weaktrack/pkg/track"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weaktrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, track.DefaultConfig(), cfg.Tracking())
}

func TestLoadOverridesAndClamps(t *testing.T) {
	path := writeConfig(t, `
listen_addr: 127.0.0.1:7000
bean_name: app:type=Weak
registration_delay: 250ms
enabled: false
stackdump_interval: -4
log_level: debug
log_format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.ListenAddr)
	assert.Equal(t, "app:type=Weak", cfg.BeanName)
	assert.Equal(t, 250*time.Millisecond, cfg.RegistrationDelay)
	assert.Equal(t, track.Config{Enabled: false, StackdumpInterval: 1}, cfg.Tracking())

	logger := cfg.NewLogger()
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Load(writeConfig(t, "stackdump_interval: 7\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 7, cfg.StackdumpInterval)
	assert.Equal(t, Default().BeanName, cfg.BeanName)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "enabled: [not, a, bool]\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "log_level: loud\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "log_format: xml\n"))
	assert.Error(t, err)
}
