// Package gateway exposes the conversation loop over HTTP.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dohr-michael/taskpilot/internal/agent"
	"github.com/dohr-michael/taskpilot/internal/store"
)

// RunnerFunc executes one conversation for an incoming message and returns
// the final answer. Implementations open and close their own tool session.
type RunnerFunc func(ctx context.Context, text string) (string, error)

// Server is the TaskPilot HTTP gateway.
type Server struct {
	httpServer *http.Server
	run        RunnerFunc
	store      *store.Store // read-only task listing; may be nil
	host       string
	port       int
}

// NewServer creates a gateway server.
func NewServer(run RunnerFunc, st *store.Store, host string, port int) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	s := &Server{
		run:   run,
		store: st,
		host:  host,
		port:  port,
	}

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/message", s.handleMessage)
	r.Get("/api/tasks", s.handleTasks)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: r,
	}

	return s
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("TaskPilot gateway listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing text"})
		return
	}

	reply, err := s.run(r.Context(), payload.Text)
	if err != nil {
		slog.Error("conversation failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": agent.ModelErrorReply})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "task store not available", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.store.List())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
