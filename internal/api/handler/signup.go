package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/signupgate/internal/api/request"
	"github.com/mcoot/signupgate/internal/api/response"
	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/services/signup"
	"github.com/mcoot/signupgate/internal/web/sse"
)

// SignupHandler drives signup gates over JSON
type SignupHandler struct {
	manager    *signup.Manager
	hubManager *sse.HubManager
	logger     *slog.Logger
}

// NewSignupHandler creates a new signup handler
func NewSignupHandler(manager *signup.Manager, hubManager *sse.HubManager, logger *slog.Logger) *SignupHandler {
	return &SignupHandler{
		manager:    manager,
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "api.signup")),
	}
}

// Create handles POST /api/v1/signup
func (h *SignupHandler) Create(w http.ResponseWriter, r *http.Request) {
	gate := h.manager.Create()
	response.JSON(w, http.StatusCreated, gate.Snapshot())
}

// Get handles GET /api/v1/signup/{id}
// With ?wait=true it first waits for an in-flight registration call.
func (h *SignupHandler) Get(w http.ResponseWriter, r *http.Request) {
	gate, ok := h.gate(w, r)
	if !ok {
		return
	}
	if err := h.maybeAwait(r, gate); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, gate.Snapshot())
}

// Leave handles DELETE /api/v1/signup/{id}
func (h *SignupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Leave(mux.Vars(r)["id"]); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// SetField handles PUT /api/v1/signup/{id}/fields/{field}
func (h *SignupHandler) SetField(w http.ResponseWriter, r *http.Request) {
	gate, ok := h.gate(w, r)
	if !ok {
		return
	}

	var req request.SetFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := gate.SetField(mux.Vars(r)["field"], req.Value); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, gate.Snapshot())
}

// Submit handles POST /api/v1/signup/{id}/submit
// The body is optional; fields it carries are set before submitting.
func (h *SignupHandler) Submit(w http.ResponseWriter, r *http.Request) {
	gate, ok := h.gate(w, r)
	if !ok {
		return
	}

	var req request.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	fields := []struct {
		name  string
		value *string
	}{
		{model.FieldUsername, req.Username},
		{model.FieldEmail, req.Email},
		{model.FieldPassword, req.Password},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if err := gate.SetField(f.name, *f.value); err != nil {
			WriteError(w, err)
			return
		}
	}

	if err := gate.Submit(); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, gate.Snapshot())
}

// Challenge handles POST /api/v1/signup/{id}/challenge
// With ?wait=true a verifying input waits for the registration outcome.
func (h *SignupHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	gate, ok := h.gate(w, r)
	if !ok {
		return
	}

	var action request.ChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := gate.Act(action); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.maybeAwait(r, gate); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, gate.Snapshot())
}

// Dismiss handles DELETE /api/v1/signup/{id}/challenge
func (h *SignupHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	gate, ok := h.gate(w, r)
	if !ok {
		return
	}
	if err := gate.Dismiss(); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, gate.Snapshot())
}

// Events handles GET /api/v1/signup/{id}/events
func (h *SignupHandler) Events(w http.ResponseWriter, r *http.Request) {
	gate, ok := h.gate(w, r)
	if !ok {
		return
	}

	initial, err := sse.EncodeEvent(sse.EventState, gate.Snapshot())
	if err != nil {
		h.logger.Error("encode initial state", slog.Any("error", err))
		WriteError(w, err)
		return
	}
	sse.ServeSSE(w, r, h.hubManager.GetOrCreateHub(gate.ID()), initial)
}

func (h *SignupHandler) gate(w http.ResponseWriter, r *http.Request) (*signup.Gate, bool) {
	gate, err := h.manager.Get(mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return nil, false
	}
	return gate, true
}

func (h *SignupHandler) maybeAwait(r *http.Request, gate *signup.Gate) error {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if !wait {
		return nil
	}
	return gate.Await(r.Context())
}
