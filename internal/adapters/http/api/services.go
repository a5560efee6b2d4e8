package api

import (
	"net/http"

	"github.com/okian/woke/internal/domain/model"
)

type serviceEntry struct {
	ID            string           `json:"id"`
	Label         string           `json:"label"`
	EstimateHours [2]float64       `json:"estimate_hours"`
	Followups     []model.Followup `json:"followups"`
}

type servicesResponse struct {
	Services []serviceEntry `json:"services"`
}

// ServicesHandler lists the service catalog.
type ServicesHandler struct {
	deps Dependencies
}

// NewServicesHandler creates a new services handler.
func NewServicesHandler(deps Dependencies) *ServicesHandler {
	return &ServicesHandler{deps: deps}
}

// HandleList handles GET /api/services requests.
func (h *ServicesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.services"
	if !allowMethod(w, r, http.MethodGet) || !ensureReady(w, h.deps, op) {
		return
	}
	services, err := h.deps.Services(r.Context())
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	out := make([]serviceEntry, len(services))
	for i, s := range services {
		fus := s.Followups
		if fus == nil {
			fus = []model.Followup{}
		}
		out[i] = serviceEntry{ID: s.ID, Label: s.Label, EstimateHours: s.Estimate(), Followups: fus}
	}
	writeJSON(w, http.StatusOK, servicesResponse{Services: out})
}
