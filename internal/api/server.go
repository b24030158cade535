// Package api exposes the filtered-analytics HTTP surface.
//
// Routes:
//
//	GET  /healthz       → liveness probe
//	GET  /api/filtered  → filter via query parameters
//	POST /api/filtered  → filter via a JSON FilterSpec body
//
// Query parameters mirror FilterSpec's predicate semantics: an absent
// parameter omits the predicate entirely, while a present-but-empty
// parameter (e.g. "?contract_type=") is an explicit empty set that
// matches nothing.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/analytics"
)

// Config controls server startup.
type Config struct {
	Addr string
}

// Server wraps http.Server around the analytics service.
type Server struct {
	cfg Config
	svc *analytics.Service
	mux *http.ServeMux
	log *slog.Logger
}

func NewServer(cfg Config, svc *analytics.Service, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{cfg: cfg, svc: svc, mux: http.NewServeMux(), log: log}
	s.routes()
	return s
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log.Info("api listening", "addr", s.cfg.Addr)
	return http.ListenAndServe(s.cfg.Addr, s.mux)
}

// Handler returns the routed handler, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/api/filtered", s.handleFiltered)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleFiltered(w http.ResponseWriter, r *http.Request) {
	var (
		spec analytics.FilterSpec
		err  error
	)
	switch r.Method {
	case http.MethodGet:
		spec, err = specFromQuery(r)
	case http.MethodPost:
		err = json.NewDecoder(r.Body).Decode(&spec)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		http.Error(w, "bad filter: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := spec.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := s.svc.GetFiltered(r.Context(), spec)
	if err != nil {
		s.log.Error("filtered query failed", "err", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.log.Error("encode response", "err", err)
	}
}

// specFromQuery builds a FilterSpec from URL parameters. Repeatable set
// parameters: contract_type, churn_state. Range parameters: monthly_min,
// monthly_max.
func specFromQuery(r *http.Request) (analytics.FilterSpec, error) {
	q := r.URL.Query()
	var spec analytics.FilterSpec

	if q.Has("contract_type") {
		set := nonEmpty(q["contract_type"])
		spec.ContractTypes = &set
	}
	if q.Has("churn_state") {
		vals := nonEmpty(q["churn_state"])
		states := make([]analytics.ChurnState, 0, len(vals))
		for _, v := range vals {
			states = append(states, analytics.ChurnState(strings.ToLower(v)))
		}
		spec.ChurnStates = &states
	}
	if q.Has("monthly_min") || q.Has("monthly_max") {
		var rng analytics.Range
		if v := q.Get("monthly_min"); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return spec, err
			}
			rng.Min = &d
		}
		if v := q.Get("monthly_max"); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return spec, err
			}
			rng.Max = &d
		}
		spec.MonthlyRange = &rng
	}
	return spec, nil
}

func nonEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
