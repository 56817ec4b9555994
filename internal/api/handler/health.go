package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/mcoot/signupgate/internal/api/apierr"
	"github.com/mcoot/signupgate/internal/api/response"
	"github.com/mcoot/signupgate/internal/services/signup"
	"github.com/mcoot/signupgate/internal/storage"
)

const pingTimeout = 2 * time.Second

// HealthHandler reports liveness and storage reachability
type HealthHandler struct {
	storage storage.Storage
	manager *signup.Manager
}

// NewHealthHandler creates a new health handler. Either dependency may be nil.
func NewHealthHandler(store storage.Storage, manager *signup.Manager) *HealthHandler {
	return &HealthHandler{storage: store, manager: manager}
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := response.Health{Status: "ok", Storage: "unknown"}
	if h.manager != nil {
		resp.Sessions = h.manager.Count()
	}

	if h.storage != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.storage.Ping(ctx); err != nil {
			WriteError(w, apierr.NewUnavailableError("storage unreachable"))
			return
		}
		resp.Storage = "ok"
	}

	response.JSON(w, http.StatusOK, resp)
}
