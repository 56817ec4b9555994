package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeValidationError       = "VALIDATION_ERROR"
	CodeUnknownField          = "UNKNOWN_FIELD"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeSessionNotFound       = "SESSION_NOT_FOUND"
	CodeSessionClosed         = "SESSION_CLOSED"
	CodeNotChallenging        = "NOT_CHALLENGING"
	CodeChallengeIncorrect    = "CHALLENGE_INCORRECT"
	CodeChallengeExpired      = "CHALLENGE_EXPIRED"
	CodeTokenMissing          = "TOKEN_MISSING"
	CodeInvalidAction         = "INVALID_ACTION"
	CodeSubmissionInFlight    = "SUBMISSION_IN_FLIGHT"
	CodeRegistrationRejected  = "REGISTRATION_REJECTED"
	CodeRegistrationTransport = "REGISTRATION_UNAVAILABLE"
	CodeUserNotFound          = "USER_NOT_FOUND"
	CodeUsernameTaken         = "USERNAME_TAKEN"
	CodeEmailTaken            = "EMAIL_TAKEN"
	CodeUnavailable           = "UNAVAILABLE"
	CodeInternalError         = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrMissingFields):
		return &httpError{http.StatusBadRequest, APIError{CodeValidationError, "All fields are required."}}
	case errors.Is(err, model.ErrUnknownField):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownField, "Unknown form field"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Signup session not found"}}
	case errors.Is(err, model.ErrGateClosed):
		return &httpError{http.StatusGone, APIError{CodeSessionClosed, "Signup session closed"}}
	case errors.Is(err, model.ErrNotChallenging):
		return &httpError{http.StatusConflict, APIError{CodeNotChallenging, "No challenge in progress"}}
	case errors.Is(err, model.ErrChallengeIncorrect):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeChallengeIncorrect, "Incorrect, try again."}}
	case errors.Is(err, model.ErrChallengeExpired):
		return &httpError{http.StatusConflict, APIError{CodeChallengeExpired, "Verification ended. Please submit again."}}
	case errors.Is(err, model.ErrTokenMissing):
		return &httpError{http.StatusBadRequest, APIError{CodeTokenMissing, "Please complete the CAPTCHA."}}
	case errors.Is(err, model.ErrInvalidAction):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidAction, "Action does not fit the current challenge"}}
	case errors.Is(err, model.ErrSubmissionInFlight):
		return &httpError{http.StatusConflict, APIError{CodeSubmissionInFlight, "Registration already in progress"}}
	case errors.Is(err, model.ErrRegistrationTransport):
		return &httpError{http.StatusBadGateway, APIError{CodeRegistrationTransport, "Registration backend unavailable"}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, APIError{CodeUsernameTaken, "Username already taken"}}
	case errors.Is(err, model.ErrEmailTaken):
		return &httpError{http.StatusConflict, APIError{CodeEmailTaken, "Email already in use"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewUnavailableError reports a dependency the server cannot reach
func NewUnavailableError(message string) error {
	return &httpError{http.StatusServiceUnavailable, APIError{CodeUnavailable, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
