package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/hongminglow/medtour-be/internal/http/respond"
	"github.com/hongminglow/medtour-be/internal/storage"
)

// HealthHandler returns uptime and database reachability.
type HealthHandler struct {
	startedAt time.Time
	db        storage.Pinger
}

// NewHealthHandler creates a health endpoint handler. db may be nil.
func NewHealthHandler(startedAt time.Time, db storage.Pinger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, db: db}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	status, code := "ok", http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			log.Printf("health: database ping failed: %v", err)
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	respond.JSON(w, code, status, map[string]string{
		"status": status,
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}
