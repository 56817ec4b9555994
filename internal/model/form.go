package model

import "strings"

// Registration form field names
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// RegistrationForm holds what the user has typed so far
type RegistrationForm struct {
	Username string
	Email    string
	Password string
}

// Set writes the named field
func (f *RegistrationForm) Set(name, value string) error {
	switch name {
	case FieldUsername:
		f.Username = value
	case FieldEmail:
		f.Email = value
	case FieldPassword:
		f.Password = value
	default:
		return ErrUnknownField
	}
	return nil
}

// Complete reports whether every field is non-empty after trimming
func (f RegistrationForm) Complete() bool {
	return strings.TrimSpace(f.Username) != "" &&
		strings.TrimSpace(f.Email) != "" &&
		strings.TrimSpace(f.Password) != ""
}

// RegisterRequest is the payload of a registration call
type RegisterRequest struct {
	Username          string `json:"username"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	VerificationToken string `json:"verification_token,omitempty"`
}

// Request builds the registration payload for this form
func (f RegistrationForm) Request(token string) RegisterRequest {
	return RegisterRequest{
		Username:          f.Username,
		Email:             f.Email,
		Password:          f.Password,
		VerificationToken: token,
	}
}

// RegistrationResult is the outcome reported by the registration backend
type RegistrationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
