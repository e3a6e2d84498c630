// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/tally/internal/domain/model"
)

// AvailabilityHandler handles availability lookups.
type AvailabilityHandler struct {
	deps         Dependencies
	maxBatchKeys int
}

// NewAvailabilityHandler creates a new availability handler.
func NewAvailabilityHandler(deps Dependencies, maxBatchKeys int) *AvailabilityHandler {
	return &AvailabilityHandler{
		deps:         deps,
		maxBatchKeys: maxBatchKeys,
	}
}

// HandlePostAvailability handles POST /availability requests: a whole
// batch of keys resolved in one call, answered positionally.
func (h *AvailabilityHandler) HandlePostAvailability(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_availability"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(h.maxBatchKeys); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	keys := make([]model.Key, len(req.Keys))
	for i, k := range req.Keys {
		keys[i] = model.Key{VariantID: k.VariantID, Zone: k.Zone}
	}

	quantities, err := h.deps.Availability(r.Context(), keys)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{Quantities: quantities})
}

// HandleGetAvailability handles GET /availability/{variantID}?zone=Z.
// Single lookups go through the accumulation window, so concurrent
// requests for the same window share one store round-trip.
func (h *AvailabilityHandler) HandleGetAvailability(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_availability"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/availability/")
	variantID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || variantID <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	zone := r.URL.Query().Get("zone")

	key := model.Key{VariantID: variantID, Zone: zone}
	quantity, err := h.deps.Load(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, singleAvailabilityResponse{
		VariantID: variantID,
		Zone:      zone,
		Quantity:  quantity,
	})
}
