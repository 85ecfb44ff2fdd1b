package mgmt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/weaktrack/pkg/track"
)

// Attribute and operation names exposed for a bean.
const (
	AttrEnabled           = "enabled"
	AttrStackdumpInterval = "stackdumpInterval"

	OpToggleEnabled = "toggleEnabled"
	OpReset         = "reset"
	OpDumpByName    = "dumpByName"
	OpDumpByCount   = "dumpByCount"
)

// Attributes is the JSON view of a bean's readable attributes.
type Attributes struct {
	Enabled           bool `json:"enabled"`
	StackdumpInterval int  `json:"stackdumpInterval"`
}

// Handler returns the HTTP transport for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /beans", s.handleList)
	mux.HandleFunc("GET /beans/{name}", s.handleAttributes)
	mux.HandleFunc("GET /beans/{name}/attributes/{attr}", s.handleGetAttribute)
	mux.HandleFunc("PUT /beans/{name}/attributes/{attr}", s.handleSetAttribute)
	mux.HandleFunc("POST /beans/{name}/operations/{op}", s.handleOperation)
	mux.HandleFunc("GET /beans/{name}/entries", s.handleEntries)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Names())
}

func (s *Server) handleAttributes(w http.ResponseWriter, r *http.Request) {
	bean, ok := s.beanFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Attributes{
		Enabled:           bean.IsEnabled(),
		StackdumpInterval: bean.StackdumpInterval(),
	})
}

func (s *Server) handleGetAttribute(w http.ResponseWriter, r *http.Request) {
	bean, ok := s.beanFor(w, r)
	if !ok {
		return
	}
	switch attr := r.PathValue("attr"); attr {
	case AttrEnabled:
		writeJSON(w, http.StatusOK, bean.IsEnabled())
	case AttrStackdumpInterval:
		writeJSON(w, http.StatusOK, bean.StackdumpInterval())
	default:
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown attribute %q", attr))
	}
}

func (s *Server) handleSetAttribute(w http.ResponseWriter, r *http.Request) {
	bean, ok := s.beanFor(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<10))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return
	}

	attr := r.PathValue("attr")
	log := s.logger.WithFields(logrus.Fields{"bean": r.PathValue("name"), "attribute": attr})
	switch attr {
	case AttrEnabled:
		var flag bool
		if err := json.Unmarshal(body, &flag); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode %s: %w", attr, err))
			return
		}
		bean.SetEnabled(flag)
		log.WithField("value", flag).Info("Attribute set")
		writeJSON(w, http.StatusOK, bean.IsEnabled())
	case AttrStackdumpInterval:
		var interval int
		if err := json.Unmarshal(body, &interval); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode %s: %w", attr, err))
			return
		}
		bean.SetStackdumpInterval(interval)
		log.WithField("value", interval).Info("Attribute set")
		writeJSON(w, http.StatusOK, bean.StackdumpInterval())
	default:
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown attribute %q", attr))
	}
}

func (s *Server) handleOperation(w http.ResponseWriter, r *http.Request) {
	bean, ok := s.beanFor(w, r)
	if !ok {
		return
	}
	op := r.PathValue("op")
	s.logger.WithFields(logrus.Fields{"bean": r.PathValue("name"), "operation": op}).Debug("Invoking operation")
	switch op {
	case OpToggleEnabled:
		writeJSON(w, http.StatusOK, bean.ToggleEnabled())
	case OpReset:
		bean.Reset()
		w.WriteHeader(http.StatusNoContent)
	case OpDumpByName:
		writeText(w, bean.DumpByName())
	case OpDumpByCount:
		writeText(w, bean.DumpByCount())
	default:
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown operation %q", op))
	}
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	bean, ok := s.beanFor(w, r)
	if !ok {
		return
	}
	snap, ok := bean.(track.Snapshotter)
	if !ok {
		writeError(w, http.StatusNotImplemented, fmt.Errorf("bean %q does not expose entries", r.PathValue("name")))
		return
	}
	entries := snap.Snapshot()
	track.Sort(entries, track.OrderByName)
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) beanFor(w http.ResponseWriter, r *http.Request) (track.ManagedBean, bool) {
	bean, err := s.Lookup(r.PathValue("name"))
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err)
		return nil, false
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, err)
		return nil, false
	}
	return bean, true
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, s)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}
