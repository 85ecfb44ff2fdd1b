package mgmt

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// DefaultAddr is used when ListenAndServe is given an empty address.
const DefaultAddr = "localhost:6061"

// ListenAndServe serves the management handler on addr and marks the server
// ready once the listener is bound. It returns the bound address and a stop
// function that shuts the HTTP server down; registered beans stay in place.
func (s *Server) ListenAndServe(addr string) (string, func(), error) {
	if addr == "" {
		addr = DefaultAddr
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("management server failed: %w", err)
	}

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.logger.WithField("addr", ln.Addr().String()).Info("Management server starting")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Management server stopped")
		}
	}()
	s.MarkReady()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			s.logger.WithError(err).Warn("Management server shutdown failed")
		}
	}

	return ln.Addr().String(), stop, nil
}
