package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hongminglow/medtour-be/internal/access"
	"github.com/hongminglow/medtour-be/internal/http/respond"
	"github.com/hongminglow/medtour-be/internal/middleware"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "payload too large")
			return false
		}
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

// requireSession writes 401 and reports false for anonymous callers.
func requireSession(w http.ResponseWriter, r *http.Request) (access.Session, bool) {
	s := middleware.SessionFrom(r.Context())
	if !s.Authenticated() {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return access.Session{}, false
	}
	return s, true
}
