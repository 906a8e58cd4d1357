package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/hongminglow/medtour-be/internal/http/respond"
	"github.com/hongminglow/medtour-be/internal/models"
	"github.com/hongminglow/medtour-be/internal/storage"
)

// StateHandler serves the remote half of planner state synchronization. The
// subject always comes from the caller's session, never from the URL.
type StateHandler struct {
	store storage.StateStore
}

// NewStateHandler constructs the handler.
func NewStateHandler(store storage.StateStore) *StateHandler {
	return &StateHandler{store: store}
}

// Register attaches routes to the mux.
func (h *StateHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/state/{scope}/{key}", h.handle)
}

func (h *StateHandler) handle(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	key := models.StateKey{
		SubjectID: s.SubjectID,
		ScopeID:   strings.TrimSpace(r.PathValue("scope")),
		StateKey:  strings.TrimSpace(r.PathValue("key")),
	}
	if key.ScopeID == "" || key.StateKey == "" {
		respond.Error(w, http.StatusBadRequest, "scope and key are required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.read(w, r, key)
	case http.MethodPut:
		h.upsert(w, r, key)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *StateHandler) read(w http.ResponseWriter, r *http.Request, key models.StateKey) {
	rec, err := h.store.ReadState(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "state not found")
			return
		}
		log.Printf("read state %s/%s: %v", key.ScopeID, key.StateKey, err)
		respond.Error(w, http.StatusInternalServerError, "failed to read state")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", rec)
}

func (h *StateHandler) upsert(w http.ResponseWriter, r *http.Request, key models.StateKey) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respond.Error(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}
	if len(body) == 0 || !json.Valid(body) {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	rec, err := h.store.UpsertState(r.Context(), key, json.RawMessage(body))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		log.Printf("upsert state %s/%s: %v", key.ScopeID, key.StateKey, err)
		respond.Error(w, http.StatusInternalServerError, "failed to save state")
		return
	}
	respond.JSON(w, http.StatusOK, "saved", rec)
}
