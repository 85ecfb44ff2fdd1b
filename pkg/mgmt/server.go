// Package mgmt is the introspection endpoint: a registry of named management
// beans exposed over HTTP, with Prometheus export and runtime profiles.
package mgmt

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/weaktrack/pkg/track"
)

var (
	// ErrDuplicateName is returned when a bean is already registered under the name.
	ErrDuplicateName = errors.New("bean name already registered")
	// ErrNotFound is returned when no bean is registered under the name.
	ErrNotFound = errors.New("bean not found")
	// ErrUnavailable is returned once the server has been closed.
	ErrUnavailable = errors.New("management server unavailable")
)

// Server holds named beans. Registration is permanent for the server's lifetime.
type Server struct {
	mu       sync.RWMutex
	beans    map[string]track.ManagedBean
	closed   bool
	ready    chan struct{}
	once     sync.Once
	registry *prom.Registry
	logger   *logrus.Logger
}

// NewServer creates an empty server. A nil registry gets a fresh one.
func NewServer(registry *prom.Registry, logger *logrus.Logger) *Server {
	if registry == nil {
		registry = prom.NewRegistry()
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &Server{
		beans:    make(map[string]track.ManagedBean),
		ready:    make(chan struct{}),
		registry: registry,
		logger:   logger,
	}
}

// Register publishes bean under name. Beans that can snapshot their counts
// are also exported as Prometheus metrics.
func (s *Server) Register(name string, bean track.ManagedBean) error {
	if name == "" {
		return fmt.Errorf("register: empty bean name")
	}
	if bean == nil {
		return fmt.Errorf("register %q: nil bean", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("register %q: %w", name, ErrUnavailable)
	}
	if _, exists := s.beans[name]; exists {
		return fmt.Errorf("register %q: %w", name, ErrDuplicateName)
	}

	if snap, ok := bean.(track.Snapshotter); ok {
		if err := s.registry.Register(NewCollector(name, bean, snap)); err != nil {
			return fmt.Errorf("register %q metrics: %w", name, err)
		}
	}
	s.beans[name] = bean
	s.logger.WithField("bean", name).Info("Management bean registered")
	return nil
}

// Lookup returns the bean registered under name.
func (s *Server) Lookup(name string) (track.ManagedBean, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrUnavailable
	}
	bean, ok := s.beans[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return bean, nil
}

// Names returns the registered bean names in sorted order.
func (s *Server) Names() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.beans))
	for name := range s.beans {
		names = append(names, name)
	}
	s.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Ready is closed once the server is accepting management requests.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// MarkReady closes the Ready channel. Later calls are no-ops.
func (s *Server) MarkReady() {
	s.once.Do(func() { close(s.ready) })
}

// Close makes the server refuse further registrations and lookups.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Gatherer exposes the server's metric registry.
func (s *Server) Gatherer() prom.Gatherer {
	return s.registry
}
