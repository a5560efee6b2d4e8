package api

import (
	"net/http"
	"strconv"

	"github.com/okian/woke/internal/domain/model"
)

// Response headers describing how a classification was produced.
const (
	headerClassifierSource = "X-Classifier-Source"
	headerDegraded         = "X-Classifier-Degraded"
)

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Candidates []model.Candidate `json:"candidates"`
}

type followupsRequest struct {
	ServiceID string         `json:"service_id"`
	Answers   map[string]any `json:"answers"`
}

// BotHandler serves the classify and followup endpoints.
type BotHandler struct {
	deps Dependencies
}

// NewBotHandler creates a new bot handler.
func NewBotHandler(deps Dependencies) *BotHandler {
	return &BotHandler{deps: deps}
}

// HandleClassify handles POST /api/bot/classify requests.
func (h *BotHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	const op = "api.classify"
	if !allowMethod(w, r, http.MethodPost) || !ensureReady(w, h.deps, op) {
		return
	}
	var req classifyRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	out, err := h.deps.Classify(r.Context(), req.Text)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	candidates := out.Candidates
	if candidates == nil {
		candidates = []model.Candidate{}
	}
	w.Header().Set(headerClassifierSource, string(out.Source))
	w.Header().Set(headerDegraded, strconv.FormatBool(out.Degraded))
	writeJSON(w, http.StatusOK, classifyResponse{Candidates: candidates})
}

// HandleFollowups handles POST /api/bot/followups requests.
func (h *BotHandler) HandleFollowups(w http.ResponseWriter, r *http.Request) {
	const op = "api.followups"
	if !allowMethod(w, r, http.MethodPost) || !ensureReady(w, h.deps, op) {
		return
	}
	var req followupsRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	res, err := h.deps.Followups(r.Context(), req.ServiceID, req.Answers)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	if res.Next == nil {
		res.Next = []model.Followup{}
	}
	writeJSON(w, http.StatusOK, res)
}
