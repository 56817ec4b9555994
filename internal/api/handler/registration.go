package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/signupgate/internal/api/request"
	"github.com/mcoot/signupgate/internal/api/response"
	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/services/registration"
	"github.com/mcoot/signupgate/internal/services/signup"
)

// RegistrationHandler exposes the registration backend
type RegistrationHandler struct {
	registrar signup.Registrar
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registrar signup.Registrar) *RegistrationHandler {
	return &RegistrationHandler{registrar: registrar}
}

// Register handles POST /api/v1/register
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	result, err := h.registrar.Register(r.Context(), req)
	if err != nil {
		WriteError(w, err)
		return
	}

	if result.Success {
		response.JSON(w, http.StatusCreated, response.RegistrationResult{Success: true, Message: result.Message})
		return
	}
	response.JSON(w, rejectionStatus(result), response.RegistrationResult{
		Success: false,
		Message: result.Message,
		Error:   &response.ErrorEnvelope{Code: CodeRegistrationRejected, Message: result.Message},
	})
}

// rejectionStatus is 409 for a taken identity and 400 for anything else
func rejectionStatus(result model.RegistrationResult) int {
	switch result.Message {
	case registration.MsgEmailTaken, registration.MsgUsernameTaken:
		return http.StatusConflict
	}
	return http.StatusBadRequest
}
