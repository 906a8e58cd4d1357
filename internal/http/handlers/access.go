package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/hongminglow/medtour-be/internal/access"
	"github.com/hongminglow/medtour-be/internal/http/respond"
	"github.com/hongminglow/medtour-be/internal/middleware"
	"github.com/hongminglow/medtour-be/internal/models"
	"github.com/hongminglow/medtour-be/internal/models/dto"
	"github.com/hongminglow/medtour-be/internal/storage"
)

// AccessHandler exposes the navigation gate, the caller's session, provider
// onboarding and admin role management.
type AccessHandler struct {
	gate     access.Gate
	roles    storage.RoleStore
	profiles storage.ProfileStore
}

// NewAccessHandler constructs the handler.
func NewAccessHandler(gate access.Gate, roles storage.RoleStore, profiles storage.ProfileStore) *AccessHandler {
	return &AccessHandler{gate: gate, roles: roles, profiles: profiles}
}

// Register attaches routes to the mux.
func (h *AccessHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/access", h.handleAccess)
	mux.HandleFunc("/api/me", h.handleMe)
	mux.HandleFunc("/api/provider/onboarding", h.handleCompleteOnboarding)
	mux.HandleFunc("/api/admin/roles", h.handleGrantRole)
}

func (h *AccessHandler) handleAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" || !strings.HasPrefix(path, "/") {
		respond.Error(w, http.StatusBadRequest, "path must be an absolute page path")
		return
	}
	d := h.gate.Decide(middleware.SessionFrom(r.Context()), path)
	respond.JSON(w, http.StatusOK, "ok", dto.AccessResponse{
		Path:    path,
		Outcome: string(d.Outcome),
		Target:  d.Target,
	})
}

func (h *AccessHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, "ok", sessionResponse(s))
}

func (h *AccessHandler) handleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	if !s.IsProvider {
		respond.Error(w, http.StatusForbidden, "only providers can complete onboarding")
		return
	}
	profile, err := h.profiles.CompleteOnboarding(r.Context(), s.SubjectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusForbidden, "only providers can complete onboarding")
			return
		}
		log.Printf("complete onboarding for %s: %v", s.SubjectID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to complete onboarding")
		return
	}
	respond.JSON(w, http.StatusOK, "onboarding complete", profile)
}

func (h *AccessHandler) handleGrantRole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	// Impersonation narrows the view only; privilege comes from IsAdmin.
	if !s.IsAdmin {
		respond.Error(w, http.StatusForbidden, "admin role required")
		return
	}
	var req dto.GrantRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if req.UserID == "" || !models.ValidRole(req.Role) {
		respond.Error(w, http.StatusBadRequest, "user_id and a valid role are required")
		return
	}
	if err := h.roles.GrantRole(r.Context(), req.UserID, req.Role); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("grant role %s to %s: %v", req.Role, req.UserID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to grant role")
		return
	}
	respond.JSON(w, http.StatusOK, "role granted", req)
}

func sessionResponse(s access.Session) dto.SessionResponse {
	return dto.SessionResponse{
		SubjectID:          s.SubjectID,
		IsAdmin:            s.IsAdmin,
		IsProvider:         s.IsProvider,
		OnboardingComplete: s.OnboardingComplete,
		ViewAs:             string(s.ViewAs()),
		EffectiveRole:      s.EffectiveRole(),
	}
}
