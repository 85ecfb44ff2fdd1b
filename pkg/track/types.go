// Package track counts weak pointer creations by referent type and renders the tallies.
package track

// NullKey is recorded when a weak pointer is made from a nil referent.
const NullKey = "null"

// DefaultStackdumpInterval is the number of records per key between stack captures.
const DefaultStackdumpInterval = 100

// Entry is a single (type key, count) pair in a registry snapshot.
type Entry struct {
	Key   string `json:"key"`
	Count uint64 `json:"count"`
}

// Config holds the runtime-adjustable tracking settings.
type Config struct {
	Enabled           bool `json:"enabled" yaml:"enabled"`
	StackdumpInterval int  `json:"stackdumpInterval" yaml:"stackdump_interval"`
}

// DefaultConfig returns the default tracking settings.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		StackdumpInterval: DefaultStackdumpInterval,
	}
}

// ClampInterval returns interval, or 1 if interval is not positive.
func ClampInterval(interval int) int {
	if interval <= 0 {
		return 1
	}
	return interval
}

// ManagedBean is the management contract published to the introspection endpoint.
type ManagedBean interface {
	IsEnabled() bool
	SetEnabled(flag bool)
	// ToggleEnabled flips the flag and returns the value it set.
	ToggleEnabled() bool
	StackdumpInterval() int
	// SetStackdumpInterval stores interval, clamping values <= 0 to 1.
	SetStackdumpInterval(interval int)
	// Reset clears all counts. Flags are left untouched.
	Reset()
	DumpByName() string
	DumpByCount() string
}

// Snapshotter is implemented by beans that can hand out a copy of their counts.
type Snapshotter interface {
	Snapshot() []Entry
}

// Capturer captures and prints the calling goroutine's stack.
type Capturer interface {
	Capture(key string, count uint64)
}

// CapturerFunc adapts a function to Capturer.
type CapturerFunc func(key string, count uint64)

// Capture calls f(key, count).
func (f CapturerFunc) Capture(key string, count uint64) { f(key, count) }
