package api

import (
	"fmt"
	"net/http"

	"github.com/okian/woke/internal/domain/model"
)

type matchRequest struct {
	ServiceID string          `json:"service_id"`
	Spec      map[string]any  `json:"spec"`
	Location  *model.Location `json:"location"`
}

func (m matchRequest) validate() error {
	if m.Location == nil {
		return nil
	}
	if m.Location.Lat < -90 || m.Location.Lat > 90 {
		return fmt.Errorf("location.lat %v out of range", m.Location.Lat)
	}
	if m.Location.Lng < -180 || m.Location.Lng > 180 {
		return fmt.Errorf("location.lng %v out of range", m.Location.Lng)
	}
	return nil
}

type matchResponse struct {
	Providers []model.MatchResult `json:"providers"`
}

// MatchHandler serves the provider shortlist endpoint.
type MatchHandler struct {
	deps Dependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps Dependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

// HandleMatch handles POST /api/match requests.
func (h *MatchHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.match"
	if !allowMethod(w, r, http.MethodPost) || !ensureReady(w, h.deps, op) {
		return
	}
	var req matchRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Match(r.Context(), req.ServiceID, req.Spec, req.Location)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	providers := res.Providers
	if providers == nil {
		providers = []model.MatchResult{}
	}
	writeJSON(w, http.StatusOK, matchResponse{Providers: providers})
}
