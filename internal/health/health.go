// Package health provides HTTP health check endpoints.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"
)

const checkTimeout = 5 * time.Second

// Status represents the health check response.
type Status struct {
	Status    string           `json:"status"`
	Checks    map[string]Check `json:"checks"`
	Version   string           `json:"version,omitempty"`
	Timestamp string           `json:"timestamp"`
}

// Check represents an individual health check.
type Check struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// CheckFunc is a function that performs a health check.
type CheckFunc func(ctx context.Context) (bool, string)

// Server provides health check HTTP endpoints.
type Server struct {
	addr    string
	version string

	mu     sync.RWMutex
	checks map[string]CheckFunc

	server   *http.Server
	listener net.Listener
}

// NewServer creates a health server listening on addr (":8081", "127.0.0.1:0").
func NewServer(addr, version string) *Server {
	return &Server{
		addr:    addr,
		version: version,
		checks:  make(map[string]CheckFunc),
	}
}

// RegisterCheck registers a health check function.
func (s *Server) RegisterCheck(name string, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Handler returns the mux serving /health, /ready and /live.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/live", s.handleLive)
	return mux
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("health listen %s: %w", s.addr, err)
	}
	s.listener = ln

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		// Health endpoint is optional; a failed Serve must not take the app down.
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return
		}
	}()

	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop gracefully stops the health check server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Evaluate runs every registered check and reports whether all passed.
func (s *Server) Evaluate(ctx context.Context) (Status, bool) {
	s.mu.RLock()
	names := make([]string, 0, len(s.checks))
	checks := make(map[string]CheckFunc, len(s.checks))
	for k, v := range s.checks {
		names = append(names, k)
		checks[k] = v
	}
	s.mu.RUnlock()
	sort.Strings(names)

	status := Status{
		Status:    "ok",
		Checks:    make(map[string]Check, len(names)),
		Version:   s.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	allHealthy := true
	for _, name := range names {
		healthy, msg := checks[name](ctx)
		status.Checks[name] = Check{Healthy: healthy, Message: msg}
		if !healthy {
			allHealthy = false
		}
	}
	if !allHealthy {
		status.Status = "degraded"
	}
	return status, allHealthy
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	status, ok := s.Evaluate(ctx)

	w.Header().Set("Content-Type", "application/json")
	if ok {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	if _, ok := s.Evaluate(ctx); !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
