// Package weakref wraps weak.Make so every weak pointer creation is reported
// to a published tracking facade.
package weakref

import (
	"reflect"
	"sync/atomic"
	"weak"

	"github.com/danpilch/weaktrack/pkg/track"
)

// Hook forwards weak pointer creations to a facade once one has been published.
// The zero value is ready to use and drops every record until Publish is called.
type Hook struct {
	facade atomic.Pointer[track.Managed]
}

// NewHook creates a hook with no published facade.
func NewHook() *Hook {
	return &Hook{}
}

// Publish makes m visible to the hook. Only the first call succeeds.
func (h *Hook) Publish(m *track.Managed) bool {
	if m == nil {
		return false
	}
	return h.facade.CompareAndSwap(nil, m)
}

// Facade returns the published facade, if any.
func (h *Hook) Facade() (*track.Managed, bool) {
	m := h.facade.Load()
	return m, m != nil
}

// Record counts one creation for key if a facade has been published.
func (h *Hook) Record(key string) {
	if h == nil {
		return
	}
	if m, ok := h.Facade(); ok {
		m.Record(key)
	}
}

// Observe records the dynamic type of referent. A nil referent records track.NullKey.
func (h *Hook) Observe(referent any) {
	if h == nil {
		return
	}
	if _, ok := h.Facade(); !ok {
		return
	}
	h.Record(KeyOf(referent))
}

// Make creates a weak pointer to ptr and reports it to h before returning it.
// A nil hook behaves exactly like weak.Make.
func Make[T any](h *Hook, ptr *T) weak.Pointer[T] {
	p := weak.Make(ptr)
	if h == nil {
		return p
	}
	if _, ok := h.Facade(); ok {
		if ptr == nil {
			h.Record(track.NullKey)
		} else {
			h.Record(TypeKey(reflect.TypeFor[T]()))
		}
	}
	return p
}

// KeyOf returns the type key for the referent's dynamic type.
func KeyOf(referent any) string {
	if referent == nil {
		return track.NullKey
	}
	v := reflect.ValueOf(referent)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return track.NullKey
		}
		return TypeKey(v.Type().Elem())
	}
	return TypeKey(v.Type())
}

// TypeKey returns the fully-qualified name of t: "<import path>.<Name>" for
// named types, the reflect string form otherwise.
func TypeKey(t reflect.Type) string {
	if t == nil {
		return track.NullKey
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
