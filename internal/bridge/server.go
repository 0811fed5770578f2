// Package bridge hosts the editor command surface over loopback HTTP:
// every registered tool router is reachable at POST /command/{tool} with a
// JSON parameter bag in the body and the uniform response envelope in the
// reply. The MCP server and the CLI both talk to the editor through this
// surface.
package bridge

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

	"github.com/mooselabs/unitymcp/internal/clog"
	"github.com/mooselabs/unitymcp/internal/command"
)

// DefaultPort is the loopback port the bridge listens on. The bridge is a
// host-local surface; it is never exposed beyond the loopback interface.
const DefaultPort = 6405

// Server hosts tool routers over HTTP.
type Server struct {
	// Addr is the address to listen on (e.g., "127.0.0.1:6405").
	Addr string

	mu       sync.Mutex
	routers  map[string]*command.Router
	server   *http.Server
	listener net.Listener
	running  bool
}

// NewServer creates a bridge server listening on addr. If addr is empty it
// defaults to the loopback bridge port.
func NewServer(addr string) *Server {
	if addr == "" {
		addr = fmt.Sprintf("127.0.0.1:%d", DefaultPort)
	}
	return &Server{
		Addr:    addr,
		routers: make(map[string]*command.Router),
	}
}

// Register mounts a tool router under its tool name. Registering a second
// router for the same tool replaces the first.
func (s *Server) Register(r *command.Router) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routers[r.Tool()] = r
}

// Tools returns the registered tool names, sorted.
func (s *Server) Tools() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.routers))
	for name := range s.routers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start begins accepting connections. It returns an error if the server is
// already running or the listener cannot be created.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("bridge server already running")
	}

	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /command/{tool}", s.handleCommand)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.listener = listener
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 30 * time.Second,
	}
	s.running = true

	go func() {
		_ = s.server.Serve(listener)
	}()

	clog.Info("bridge listening on %s", listener.Addr())
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	return s.server.Shutdown(ctx)
}

// ListenAddr returns the actual address the server is listening on. This
// is useful when the server was started with port 0 (random port).
// Returns empty string if the server is not running.
func (s *Server) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// handleCommand handles POST /command/{tool} requests. Dispatch never
// fails outward: handler errors and panics come back as error envelopes
// with HTTP 200, so the status code only signals transport-level problems.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	tool := r.PathValue("tool")

	s.mu.Lock()
	router, ok := s.routers[tool]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, command.Errorf("unknown tool: %q. Valid tools are: %v", tool, s.Tools()))
		return
	}

	var params command.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, command.Errorf("invalid JSON body: %s", err))
		return
	}

	writeJSON(w, http.StatusOK, router.Dispatch(params))
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status string   `json:"status"`
	Tools  []string `json:"tools"`
}

// handleHealth handles GET /health requests, used by clients probing
// whether the bridge is up after an editor restart.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Tools: s.Tools()})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
