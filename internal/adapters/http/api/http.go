// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/tally/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Availability resolves a whole batch of keys positionally.
	Availability(ctx context.Context, keys []model.Key) ([]int64, error)

	// Load resolves one key through the accumulation window.
	Load(ctx context.Context, key model.Key) (int64, error)

	// MaxLineQuantity exposes the configured per-line cap.
	MaxLineQuantity() int64
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	availabilityHandler *AvailabilityHandler
}

// NewServer creates a new API server with all handlers. maxBatchKeys
// bounds how many keys one POST /availability request may carry.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxBatchKeys int) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		availabilityHandler: NewAvailabilityHandler(deps, maxBatchKeys),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/availability", RequestIDMiddleware(MetricsMiddleware(s.availabilityHandler.HandlePostAvailability, "availability")))
	mux.HandleFunc("/availability/", RequestIDMiddleware(MetricsMiddleware(s.availabilityHandler.HandleGetAvailability, "availability_single")))
}

// keyPayload mirrors one lookup key on the wire.
type keyPayload struct {
	VariantID int64  `json:"variant_id"`
	Zone      string `json:"zone,omitempty"`
}

// availabilityRequest mirrors the POST /availability body.
type availabilityRequest struct {
	Keys []keyPayload `json:"keys"`
}

func (a availabilityRequest) validate(maxKeys int) error {
	if len(a.Keys) == 0 {
		return errors.New("missing keys")
	}
	if len(a.Keys) > maxKeys {
		return errors.New("too many keys")
	}
	for _, k := range a.Keys {
		if k.VariantID <= 0 {
			return errors.New("variant_id must be positive")
		}
	}
	return nil
}

// availabilityResponse answers keys positionally.
type availabilityResponse struct {
	Quantities []int64 `json:"quantities"`
}

// singleAvailabilityResponse answers GET /availability/{variantID}.
type singleAvailabilityResponse struct {
	VariantID int64  `json:"variant_id"`
	Zone      string `json:"zone,omitempty"`
	Quantity  int64  `json:"quantity"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
