package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/Scorecard/internal/broker"
	"github.com/MikeSquared-Agency/Scorecard/internal/profile"
	"github.com/MikeSquared-Agency/Scorecard/internal/scoring"
	"github.com/MikeSquared-Agency/Scorecard/internal/store"
	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

type issueJSON struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type errorResponse struct {
	Error  string      `json:"error"`
	Issues []issueJSON `json:"issues,omitempty"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, profile.ErrProfileInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, broker.ErrProfileNotFound), errors.Is(err, strategy.ErrUnknownStrategy):
		return http.StatusNotFound
	case errors.Is(err, store.ErrNameTaken):
		return http.StatusConflict
	case errors.Is(err, broker.ErrBatchTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, broker.ErrInvalidRequest),
		errors.Is(err, scoring.ErrMissingObjective),
		errors.Is(err, strategy.ErrTypeMismatch),
		errors.Is(err, strategy.ErrOutOfRange),
		errors.Is(err, strategy.ErrMissingParameter),
		errors.Is(err, strategy.ErrUnknownParameter),
		errors.Is(err, strategy.ErrInvalidInputShape):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var verr *profile.ValidationError
	if errors.As(err, &verr) {
		for _, i := range verr.Issues {
			resp.Issues = append(resp.Issues, issueJSON{Path: i.Path, Error: i.Err.Error()})
		}
	}
	writeJSON(w, statusFor(err), resp)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
