package request

import "github.com/mcoot/signupgate/internal/model"

// RegisterRequest is the request body for the registration backend
type RegisterRequest = model.RegisterRequest

// LoginRequest is the request body for logging in.
// Identifier is a username or an email address.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// SetFieldRequest is the request body for changing one signup form field
type SetFieldRequest struct {
	Value string `json:"value"`
}

// SubmitRequest optionally sets every field before submitting.
// Fields left nil keep their current value.
type SubmitRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// ChallengeRequest is one input to the live challenge
type ChallengeRequest = model.ChallengeAction
