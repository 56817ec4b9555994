package response

import (
	"time"

	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/services/auth"
)

// User represents a registered user in API responses
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:        string(u.ID),
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	User         User      `json:"user"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		User:         UserFromModel(&s.User),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Signup is a signup session as the API reports it
type Signup = model.GateSnapshot

// RegistrationResult is the registration backend's answer. Rejections also
// carry the error envelope so generic clients can read them.
type RegistrationResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Error   *ErrorEnvelope `json:"error,omitempty"`
}

// ErrorEnvelope mirrors the API error body
type ErrorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Health reports service and dependency status
type Health struct {
	Status   string `json:"status"`
	Storage  string `json:"storage"`
	Sessions int    `json:"sessions"`
}
