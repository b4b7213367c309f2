package api

import (
	"encoding/json"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Scorecard/internal/broker"
	"github.com/MikeSquared-Agency/Scorecard/internal/hermes"
	"github.com/MikeSquared-Agency/Scorecard/internal/profile"
)

type ScoreHandler struct {
	broker *broker.Broker
}

func NewScoreHandler(b *broker.Broker) *ScoreHandler {
	return &ScoreHandler{broker: b}
}

type ScoreRequest struct {
	ProfileID string                    `json:"profile_id,omitempty"`
	Profile   *profile.Description      `json:"profile,omitempty"`
	Records   map[string]map[string]any `json:"records"`
}

// Score scores a batch of records and returns per-record results, the
// ranking and the Pareto frontier.
// POST /api/v1/score
func (h *ScoreHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Records == nil {
		badRequest(w, "records required")
		return
	}

	requestID := chiMiddleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = uuid.NewString()
	}
	out, err := h.broker.Handle(r.Context(), hermes.ScoreRequestEvent{
		RequestID: requestID,
		ProfileID: req.ProfileID,
		Profile:   req.Profile,
		Records:   req.Records,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type ExplainRequest struct {
	ProfileID string               `json:"profile_id,omitempty"`
	Profile   *profile.Description `json:"profile,omitempty"`
	Record    map[string]any       `json:"record"`
}

// Explain scores one record and returns its per-objective breakdown.
// POST /api/v1/score/explain
func (h *ScoreHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var req ExplainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Record == nil {
		badRequest(w, "record required")
		return
	}

	sc, err := h.broker.Resolve(r.Context(), req.ProfileID, req.Profile)
	if err != nil {
		writeError(w, err)
		return
	}
	exp, err := sc.Explain(req.Record)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}
