package apierr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/services/auth"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrMissingFields, http.StatusBadRequest, CodeValidationError},
		{model.ErrUnknownField, http.StatusBadRequest, CodeUnknownField},
		{model.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound},
		{model.ErrGateClosed, http.StatusGone, CodeSessionClosed},
		{model.ErrNotChallenging, http.StatusConflict, CodeNotChallenging},
		{model.ErrChallengeIncorrect, http.StatusUnprocessableEntity, CodeChallengeIncorrect},
		{model.ErrTokenMissing, http.StatusBadRequest, CodeTokenMissing},
		{model.ErrSubmissionInFlight, http.StatusConflict, CodeSubmissionInFlight},
		{fmt.Errorf("call backend: %w", model.ErrRegistrationTransport), http.StatusBadGateway, CodeRegistrationTransport},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
		{NewInvalidRequestError("bad"), http.StatusBadRequest, CodeInvalidRequest},
		{NewUnavailableError("storage unreachable"), http.StatusServiceUnavailable, CodeUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.status, Status(tt.err))
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}
