package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Scorecard/internal/aggregation"
	"github.com/MikeSquared-Agency/Scorecard/internal/desirability"
	"github.com/MikeSquared-Agency/Scorecard/internal/profile"
	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

type CatalogueHandler struct {
	cats profile.Catalogues
}

func NewCatalogueHandler(cats profile.Catalogues) *CatalogueHandler {
	return &CatalogueHandler{cats: cats}
}

type describer interface {
	Describe(key string) (strategy.Descriptor, error)
	DescribeAll() ([]strategy.Descriptor, error)
}

func (h *CatalogueHandler) family(w http.ResponseWriter, r *http.Request) (describer, bool) {
	switch f := chi.URLParam(r, "family"); f {
	case desirability.Family:
		return h.cats.Desirability, true
	case aggregation.Family:
		return h.cats.Aggregation, true
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("unknown family %q (want %s or %s)", f, desirability.Family, aggregation.Family),
		})
		return nil, false
	}
}

// List returns every strategy of a family.
// GET /api/v1/catalogue/{family}
func (h *CatalogueHandler) List(w http.ResponseWriter, r *http.Request) {
	c, ok := h.family(w, r)
	if !ok {
		return
	}
	all, err := c.DescribeAll()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// Get describes one strategy.
// GET /api/v1/catalogue/{family}/{name}
func (h *CatalogueHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.family(w, r)
	if !ok {
		return
	}
	d, err := c.Describe(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type DesirabilityComputeRequest struct {
	Parameters map[string]any `json:"parameters"`
	// X is a single input or an array of inputs.
	X json.RawMessage `json:"x"`
}

// ComputeDesirability configures a desirability function and applies it.
// POST /api/v1/desirability/{name}/compute
func (h *CatalogueHandler) ComputeDesirability(w http.ResponseWriter, r *http.Request) {
	var req DesirabilityComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if len(req.X) == 0 {
		badRequest(w, "x required")
		return
	}

	fn, err := h.cats.NewDesirability(profile.FunctionRef{Name: chi.URLParam(r, "name"), Parameters: req.Parameters})
	if err != nil {
		writeError(w, err)
		return
	}

	if trimmed := bytes.TrimSpace(req.X); len(trimmed) > 0 && trimmed[0] == '[' {
		var xs []any
		if err := json.Unmarshal(trimmed, &xs); err != nil {
			badRequest(w, "invalid x")
			return
		}
		results := make([]*float64, len(xs))
		for i, x := range xs {
			v, err := fn.Compute(x)
			if err != nil {
				writeError(w, fmt.Errorf("x[%d]: %w", i, err))
				return
			}
			results[i] = finite(v)
		}
		writeJSON(w, http.StatusOK, map[string][]*float64{"results": results})
		return
	}

	var x any
	if err := json.Unmarshal(req.X, &x); err != nil {
		badRequest(w, "invalid x")
		return
	}
	v, err := fn.Compute(x)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*float64{"result": finite(v)})
}

type AggregationComputeRequest struct {
	Parameters map[string]any `json:"parameters"`
	Values     []any          `json:"values"`
	Weights    []any          `json:"weights,omitempty"`
}

// ComputeAggregation configures an aggregation and applies it. Null values
// are treated as absent.
// POST /api/v1/aggregation/{name}/compute
func (h *CatalogueHandler) ComputeAggregation(w http.ResponseWriter, r *http.Request) {
	var req AggregationComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	fn, err := h.cats.NewAggregation(profile.FunctionRef{Name: chi.URLParam(r, "name"), Parameters: req.Parameters})
	if err != nil {
		writeError(w, err)
		return
	}

	var weights any
	if req.Weights != nil {
		weights = req.Weights
	}
	v, err := aggregation.Aggregate(fn, req.Values, weights)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*float64{"result": finite(v)})
}

// finite returns nil for NaN so absent scores encode as null.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
