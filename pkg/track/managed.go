package track

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Managed is the management facade over a Registry and its Config.
// It is the only object handed to the introspection endpoint.
type Managed struct {
	registry *Registry
	sampler  *Sampler
	enabled  atomic.Bool
	logger   *logrus.Logger
}

// NewManaged creates a facade with an empty registry.
func NewManaged(cfg Config, capturer Capturer, logger *logrus.Logger) *Managed {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	m := &Managed{
		registry: NewRegistry(),
		sampler:  NewSampler(cfg.StackdumpInterval, capturer),
		logger:   logger,
	}
	m.enabled.Store(cfg.Enabled)
	return m
}

// Record counts one weak pointer creation for key.
func (m *Managed) Record(key string) {
	if !m.enabled.Load() {
		return
	}
	if key == "" {
		key = NullKey
	}
	n := m.registry.Increment(key)
	m.sampler.Observe(key, n)
}

// Count returns the current count for key.
func (m *Managed) Count(key string) uint64 {
	return m.registry.Count(key)
}

// IsEnabled reports whether records are counted.
func (m *Managed) IsEnabled() bool {
	return m.enabled.Load()
}

// SetEnabled turns counting on or off.
func (m *Managed) SetEnabled(flag bool) {
	m.enabled.Store(flag)
	m.logger.WithField("enabled", flag).Debug("Tracking flag set")
}

// ToggleEnabled flips the flag and returns the value it set.
// Concurrent SetEnabled calls race as last write wins.
func (m *Managed) ToggleEnabled() bool {
	v := !m.enabled.Load()
	m.enabled.Store(v)
	m.logger.WithField("enabled", v).Debug("Tracking flag toggled")
	return v
}

// StackdumpInterval returns the sampling interval.
func (m *Managed) StackdumpInterval() int {
	return m.sampler.Interval()
}

// SetStackdumpInterval sets the sampling interval, clamping values <= 0 to 1.
func (m *Managed) SetStackdumpInterval(interval int) {
	m.sampler.SetInterval(interval)
	m.logger.WithFields(logrus.Fields{
		"requested": interval,
		"interval":  m.sampler.Interval(),
	}).Debug("Stackdump interval set")
}

// Reset clears all counts.
func (m *Managed) Reset() {
	m.registry.Reset()
	m.logger.Debug("Weak pointer counts reset")
}

// Snapshot returns a copy of the current counts in unspecified order.
func (m *Managed) Snapshot() []Entry {
	return m.registry.Snapshot()
}

// DumpByName renders "key -> count" lines sorted by key.
func (m *Managed) DumpByName() string {
	return Render(m.registry.Snapshot(), OrderByName)
}

// DumpByCount renders "count -> key" lines sorted by ascending count.
func (m *Managed) DumpByCount() string {
	return Render(m.registry.Snapshot(), OrderByCount)
}

var (
	_ ManagedBean = (*Managed)(nil)
	_ Snapshotter = (*Managed)(nil)
)
