package httpx

import (
	"net/http"

	"github.com/target/spotify-auth/internal/configstore"
	apperrors "github.com/target/spotify-auth/internal/errors"
)

// ConfigHandlers exposes the registered plugin entries.
type ConfigHandlers struct {
	Registry *configstore.Registry
}

type configResponse struct {
	Entries  []configstore.View `json:"entries"`
	Problems int                `json:"problems"`
}

type setEntryRequest struct {
	Value string `json:"value"`
}

type choicesResponse struct {
	Choices []configstore.Choice `json:"choices"`
}

// List renders every entry and counts the ones with problems.
func (h *ConfigHandlers) List(w http.ResponseWriter, r *http.Request) {
	entries := h.Registry.Entries()
	resp := configResponse{Entries: make([]configstore.View, 0, len(entries))}
	for _, e := range entries {
		v, err := e.View(r.Context())
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		if v.Problem != "" {
			resp.Problems++
		}
		resp.Entries = append(resp.Entries, v)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Set stores a new value given in stored form.
func (h *ConfigHandlers) Set(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.find(w, r)
	if !ok {
		return
	}
	var req setEntryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := entry.SetRaw(r.Context(), req.Value); err != nil {
		WriteServiceError(w, err)
		return
	}
	v, err := entry.View(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

// Choices loads the options of a choice entry.
func (h *ConfigHandlers) Choices(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.find(w, r)
	if !ok {
		return
	}
	choices, err := entry.Choices(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if choices == nil {
		choices = []configstore.Choice{}
	}
	WriteJSON(w, http.StatusOK, choicesResponse{Choices: choices})
}

// Action runs the action button of an entry.
func (h *ConfigHandlers) Action(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.find(w, r)
	if !ok {
		return
	}
	done, err := entry.RunAction(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, actionStatus(done))
}

func (h *ConfigHandlers) find(w http.ResponseWriter, r *http.Request) (configstore.Entry, bool) {
	scope := configstore.Scope(r.PathValue("scope"))
	id := r.PathValue("id")
	entry, ok := h.Registry.Find(scope, id)
	if !ok {
		WriteServiceError(w, apperrors.NotFoundf("config entry %s/%s not found", scope, id))
		return nil, false
	}
	return entry, true
}
