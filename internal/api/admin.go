package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Scorecard/internal/broker"
	"github.com/MikeSquared-Agency/Scorecard/internal/store"
)

type AdminHandler struct {
	store  store.Store
	broker *broker.Broker
}

func NewAdminHandler(s store.Store, b *broker.Broker) *AdminHandler {
	return &AdminHandler{store: s, broker: b}
}

type StatsResponse struct {
	Requests       int64 `json:"requests"`
	Completed      int64 `json:"completed"`
	Failed         int64 `json:"failed"`
	CachedProfiles int   `json:"cached_profiles"`
	StoredProfiles int   `json:"stored_profiles"`
}

// Stats reports broker counters and the number of stored profiles, capped at
// the store's default page size.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.ListProfiles(r.Context(), store.ProfileFilter{})
	if err != nil {
		writeError(w, err)
		return
	}
	s := h.broker.Stats()
	writeJSON(w, http.StatusOK, StatsResponse{
		Requests:       s.Requests,
		Completed:      s.Completed,
		Failed:         s.Failed,
		CachedProfiles: s.CachedProfiles,
		StoredProfiles: len(profiles),
	})
}
