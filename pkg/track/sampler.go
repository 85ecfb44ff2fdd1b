package track

import "sync/atomic"

// Sampler triggers a stack capture every interval records of the same key.
type Sampler struct {
	interval atomic.Int64
	capturer Capturer
}

// NewSampler creates a sampler. A nil capturer disables captures but keeps the interval.
func NewSampler(interval int, capturer Capturer) *Sampler {
	s := &Sampler{capturer: capturer}
	s.SetInterval(interval)
	return s
}

// Interval returns the current sampling interval (always >= 1).
func (s *Sampler) Interval() int {
	return int(s.interval.Load())
}

// SetInterval stores interval, clamping values <= 0 to 1.
func (s *Sampler) SetInterval(interval int) {
	s.interval.Store(int64(ClampInterval(interval)))
}

// Observe captures the stack if count is a multiple of the interval.
// It reports whether a capture was triggered.
func (s *Sampler) Observe(key string, count uint64) bool {
	if count%uint64(s.interval.Load()) != 0 {
		return false
	}
	if s.capturer != nil {
		s.capturer.Capture(key, count)
	}
	return true
}
