// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/woke/internal/domain/catalog"
	"github.com/okian/woke/internal/domain/followup"
	"github.com/okian/woke/internal/domain/intent"
	"github.com/okian/woke/internal/domain/matching"
	"github.com/okian/woke/internal/domain/model"
	"github.com/okian/woke/pkg/logger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Classify(ctx context.Context, text string) (intent.Outcome, error)
	Followups(ctx context.Context, serviceID string, answers map[string]any) (followup.Result, error)
	Match(ctx context.Context, serviceID string, spec map[string]any, loc *model.Location) (matching.Result, error)
	Services(ctx context.Context) ([]model.ServiceCategory, error)
	Ready() bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	botHandler      *BotHandler
	matchHandler    *MatchHandler
	servicesHandler *ServicesHandler
	logger          logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(deps),
		statsHandler:    NewStatsHandler(statsProvider),
		botHandler:      NewBotHandler(deps),
		matchHandler:    NewMatchHandler(deps),
		servicesHandler: NewServicesHandler(deps),
		logger:          logger.Get().Named("http"),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.wrap(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", MetricsHandler())
	mux.HandleFunc("/stats", s.wrap(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/services", s.wrap(s.servicesHandler.HandleList, "services"))
	mux.HandleFunc("/api/bot/classify", s.wrap(s.botHandler.HandleClassify, "classify"))
	mux.HandleFunc("/api/bot/followups", s.wrap(s.botHandler.HandleFollowups, "followups"))
	mux.HandleFunc("/api/match", s.wrap(s.matchHandler.HandleMatch, "match"))
}

func (s *Server) wrap(h http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(RecoveryMiddleware(MetricsMiddleware(h, endpoint), s.logger))
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	resp := errorResponse{Error: code}
	if err != nil {
		resp.Message = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps errors returned by Dependencies onto HTTP responses.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownService):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown_service"})
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
	}
}

// ensureReady answers 503 until the dependencies have started.
func ensureReady(w http.ResponseWriter, deps Dependencies, op string) bool {
	if deps.Ready() {
		return true
	}
	writeError(w, http.StatusServiceUnavailable, "unavailable", NewKind(op, ErrUnavailable))
	return false
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	return false
}
