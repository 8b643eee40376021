// Package api exposes a read-only HTTP view over the checkpoint and the run
// archive, for dashboards watching a long crawl. No endpoint mutates state.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/pawmetric/survey-cli/internal/checkpoint"
	"github.com/pawmetric/survey-cli/internal/cost"
	"github.com/pawmetric/survey-cli/internal/store"
)

// Server wires the HTTP handlers to the checkpoint store and run archive.
type Server struct {
	router      chi.Router
	checkpoints checkpoint.Store
	archive     store.Store
	calc        *cost.Calculator
}

// StatusResponse summarizes the current checkpoint.
type StatusResponse struct {
	InProgress     bool           `json:"in_progress"`
	CompletedZones []string       `json:"completed_zones,omitempty"`
	Records        int            `json:"records"`
	APICalls       int            `json:"api_calls"`
	Stats          map[string]int `json:"stats,omitempty"`
	CostUSD        float64        `json:"cost_usd"`
}

// NewServer constructs a Server with routes and CORS for local dashboards.
func NewServer(checkpoints checkpoint.Store, archive store.Store, calc *cost.Calculator) *Server {
	s := &Server{
		checkpoints: checkpoints,
		archive:     archive,
		calc:        calc,
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/healthz", s.healthz)
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.getStatus)
		r.Get("/runs", s.listRuns)
		r.Route("/runs/{run_id}", func(r chi.Router) {
			r.Get("/", s.getRun)
			r.Get("/records", s.listRecords)
		})
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler for mounting or serving.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	progress, err := s.checkpoints.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if progress == nil {
		writeJSON(w, http.StatusOK, StatusResponse{})
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		InProgress:     true,
		CompletedZones: progress.CompletedZones,
		Records:        len(progress.Records),
		APICalls:       progress.APICalls,
		Stats:          progress.Stats,
		CostUSD:        s.calc.Actual(progress).TotalUSD,
	})
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.archive.ListRuns(r.Context(), 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.archive.GetRun(r.Context(), chi.URLParam(r, "run_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "run_id")
	if _, err := s.archive.GetRun(r.Context(), runID); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	records, err := s.archive.ListRecords(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
