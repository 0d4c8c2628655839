// internal/server/handlers/share.go

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"poidash/internal/domain/dashboard"
)

// ShareHandler handles share link requests
type ShareHandler struct {
	store dashboard.ShareStore
}

// NewShareHandler creates a new share handler
func NewShareHandler(store dashboard.ShareStore) *ShareHandler {
	return &ShareHandler{
		store: store,
	}
}

// CreateShareRequest is the body of a share creation request
type CreateShareRequest struct {
	Query string `json:"query"`
}

// CreateShare stores the given persisted query and returns its share link
func (h *ShareHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	var req CreateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	share, err := h.store.SaveShare(r.Context(), req.Query)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save share", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, share)
}

// GetShare returns a stored share link
func (h *ShareHandler) GetShare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing share ID", nil)
		return
	}

	share, err := h.store.GetShare(r.Context(), id)
	if err != nil {
		if errors.Is(err, dashboard.ErrShareNotFound) {
			respondWithError(w, http.StatusNotFound, "Share not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to get share", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, share)
}
