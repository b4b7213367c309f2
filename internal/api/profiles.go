package api

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Scorecard/internal/broker"
	"github.com/MikeSquared-Agency/Scorecard/internal/hermes"
	"github.com/MikeSquared-Agency/Scorecard/internal/profile"
	"github.com/MikeSquared-Agency/Scorecard/internal/store"
)

// ValidationRecorder counts profile validation outcomes.
type ValidationRecorder interface {
	RecordValidation(ok bool)
}

type nopValidationRecorder struct{}

func (nopValidationRecorder) RecordValidation(bool) {}

type ProfilesHandler struct {
	store    store.Store
	hermes   hermes.Client
	scorers  *broker.Scorers
	cats     profile.Catalogues
	recorder ValidationRecorder
	logger   *slog.Logger
}

func NewProfilesHandler(s store.Store, h hermes.Client, scorers *broker.Scorers, cats profile.Catalogues, rec ValidationRecorder, logger *slog.Logger) *ProfilesHandler {
	if rec == nil {
		rec = nopValidationRecorder{}
	}
	return &ProfilesHandler{store: s, hermes: h, scorers: scorers, cats: cats, recorder: rec, logger: logger}
}

type ValidateResponse struct {
	Valid       bool     `json:"valid"`
	Objectives  []string `json:"objectives"`
	Aggregation string   `json:"aggregation"`
}

func (h *ProfilesHandler) validate(desc profile.Description) (*profile.Profile, error) {
	p, err := profile.Validate(desc, h.cats)
	h.recorder.RecordValidation(err == nil)
	return p, err
}

// Validate checks a profile document without storing it. JSON is expected
// unless the request declares a YAML content type.
// POST /api/v1/profiles/validate
func (h *ProfilesHandler) Validate(w http.ResponseWriter, r *http.Request) {
	desc, err := profile.Decode(r.Body, requestFormat(r))
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.validate(desc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{
		Valid:       true,
		Objectives:  p.ObjectiveNames(),
		Aggregation: p.Aggregation().Name,
	})
}

func requestFormat(r *http.Request) profile.Format {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return profile.FormatYAML
	default:
		return profile.FormatJSON
	}
}

type CreateProfileRequest struct {
	Name    string          `json:"name"`
	Notes   string          `json:"notes,omitempty"`
	Profile json.RawMessage `json:"profile"`
}

// Create validates and stores a named profile.
// POST /api/v1/profiles
func (h *ProfilesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Name == "" || len(req.Profile) == 0 {
		badRequest(w, "name and profile required")
		return
	}

	desc, err := profile.ParseJSON(req.Profile)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.validate(desc)
	if err != nil {
		writeError(w, err)
		return
	}

	sp := &store.StoredProfile{Name: req.Name, Notes: req.Notes, Description: p.Description()}
	if err := h.store.CreateProfile(r.Context(), sp); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("profile created", "profile_id", sp.ID, "name", sp.Name)
	if h.hermes != nil {
		_ = h.hermes.Publish(hermes.SubjectProfileCreated(sp.ID.String()), hermes.ProfileEvent{
			ProfileID: sp.ID.String(),
			Name:      sp.Name,
		})
	}
	writeJSON(w, http.StatusCreated, sp)
}

func (h *ProfilesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ProfileFilter{NamePrefix: q.Get("name_prefix")}
	for key, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				badRequest(w, "invalid "+key)
				return
			}
			*dst = n
		}
	}

	profiles, err := h.store.ListProfiles(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if profiles == nil {
		profiles = []*store.StoredProfile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid profile id")
		return
	}

	sp, err := h.store.GetProfile(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if sp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

// Delete removes a stored profile and drops any cached scorer for it.
// DELETE /api/v1/profiles/{id}
func (h *ProfilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid profile id")
		return
	}

	deleted, err := h.store.DeleteProfile(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return
	}
	if h.scorers != nil {
		h.scorers.Evict(id)
	}
	h.logger.Info("profile deleted", "profile_id", id)
	if h.hermes != nil {
		_ = h.hermes.Publish(hermes.SubjectProfileDeleted(id.String()), hermes.ProfileEvent{ProfileID: id.String()})
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "profile_id": id.String()})
}
