// Package api serves the run archive over HTTP, read-only: recent
// runs, one run's cells, and a rendered PNG of its map. The live
// engine is never exposed — the solver owns its grid exclusively, so
// the API only serves finished runs out of the archive.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/talgya/wavemap/internal/grid"
	"github.com/talgya/wavemap/internal/persistence"
	"github.com/talgya/wavemap/internal/render"
	"github.com/talgya/wavemap/internal/terrain"
)

// Server serves archived runs over HTTP.
type Server struct {
	DB      *persistence.DB
	Catalog *terrain.Catalog
	Port    int
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Handler returns the route mux. Split out from Start so tests can
// drive it with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	mux.HandleFunc("/api/v1/runs/", s.handleRunRoutes)
	return mux
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	runs, err := s.DB.RecentRuns(limit)
	if err != nil {
		slog.Error("list runs failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"runs": runs})
}

// handleRunRoutes dispatches /api/v1/runs/{id} and /api/v1/runs/{id}/map.png.
func (s *Server) handleRunRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
	if id, ok := strings.CutSuffix(rest, "/map.png"); ok {
		s.handleRunPNG(w, r, id)
		return
	}
	s.handleRunDetail(w, r, rest)
}

func (s *Server) handleRunDetail(w http.ResponseWriter, r *http.Request, id string) {
	run, cells, err := s.loadRun(id)
	if err != nil {
		s.runError(w, id, err)
		return
	}

	writeJSON(w, map[string]any{"run": run, "cells": cells})
}

func (s *Server) handleRunPNG(w http.ResponseWriter, r *http.Request, id string) {
	run, cells, err := s.loadRun(id)
	if err != nil {
		s.runError(w, id, err)
		return
	}

	g := grid.New(run.Width, run.Height, s.Catalog.Full())
	for _, c := range cells {
		cell := g.Cell(c.I, c.J)
		cell.Resolved = true
		cell.Category = terrain.Category(c.Category)
		cell.Domain = 0
	}

	scale := 4
	if q := r.URL.Query().Get("scale"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n >= 1 && n <= 32 {
			scale = n
		}
	}

	w.Header().Set("Content-Type", "image/png")
	if err := render.EncodePNG(w, g, s.Catalog, scale); err != nil {
		slog.Error("render run failed", "run", id, "error", err)
	}
}

func (s *Server) loadRun(id string) (persistence.Run, []persistence.CellRow, error) {
	run, err := s.DB.LoadRun(id)
	if err != nil {
		return persistence.Run{}, nil, err
	}
	cells, err := s.DB.LoadRunCells(id)
	if err != nil {
		return persistence.Run{}, nil, err
	}
	return run, cells, nil
}

func (s *Server) runError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	slog.Error("load run failed", "run", id, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}
