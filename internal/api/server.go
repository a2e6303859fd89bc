// Package api exposes the monitor over a small pull-only JSON API. Every
// endpoint re-derives its response on request; nothing is pushed or
// streamed.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"

	"github.com/pixel-agents/backend/internal/config"
	"github.com/pixel-agents/backend/internal/monitor"
	"github.com/pixel-agents/backend/internal/settings"
)

type Server struct {
	config  *config.Config
	monitor *monitor.Monitor
}

func NewServer(cfg *config.Config, mon *monitor.Monitor) *Server {
	return &Server{config: cfg, monitor: mon}
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/tick", s.handleTick)
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/api/bindings", s.handleBindings)
	mux.HandleFunc("/api/sessions-folder", s.handleSessionsFolder)
	mux.HandleFunc("/api/health", s.handleHealth)
}

func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	addr := net.JoinHostPort(s.config.Server.Host, strconv.Itoa(s.config.Server.Port))
	log.Printf("[api] listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.monitor.Tick())
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, settings.ReadMonitorSettings())

	case http.MethodPut:
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		st := settings.DefaultMonitorSettings()
		if err := json.Unmarshal(body, &st); err != nil {
			http.Error(w, fmt.Sprintf("invalid settings: %v", err), http.StatusBadRequest)
			return
		}
		if err := settings.WriteMonitorSettings(st); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, st)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleBindings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, settings.ReadRepoBindings())

	case http.MethodPost:
		var req struct {
			Key      string `json:"key"`
			RepoPath string `json:"repoPath"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("invalid binding: %v", err), http.StatusBadRequest)
			return
		}
		if err := settings.BindRepo(req.Key, req.RepoPath); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, settings.ReadRepoBindings())

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSessionsFolder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]string{"path": monitor.SessionsFolder()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{"sources": s.monitor.Health()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode response: %v", err)
	}
}
