package model

import "time"

// VerificationState is the state of a signup gate
type VerificationState string

const (
	StateIdle        VerificationState = "idle"
	StateChallenging VerificationState = "challenging"
	StateVerified    VerificationState = "verified"
	StateFailed      VerificationState = "failed"
)

// ChallengeKind names a verification strategy
type ChallengeKind string

const (
	ChallengeToken  ChallengeKind = "token"  // external widget supplies an opaque token
	ChallengeDelay  ChallengeKind = "delay"  // acknowledge, then wait
	ChallengePairs  ChallengeKind = "pairs"  // match every pair of symbols
	ChallengeTarget ChallengeKind = "target" // pick the named symbol
)

// Valid reports whether k is a known strategy
func (k ChallengeKind) Valid() bool {
	switch k {
	case ChallengeToken, ChallengeDelay, ChallengePairs, ChallengeTarget:
		return true
	}
	return false
}

// ChallengeCard is one entry of a shuffled symbol deck.
// Symbol is empty for face-down pairs cards.
type ChallengeCard struct {
	Index    int    `json:"index"`
	Symbol   string `json:"symbol,omitempty"`
	Revealed bool   `json:"revealed,omitempty"`
	Solved   bool   `json:"solved,omitempty"`
}

// ChallengeView is the renderable part of a live challenge
type ChallengeView struct {
	Kind         ChallengeKind   `json:"kind"`
	Cards        []ChallengeCard `json:"cards,omitempty"`
	Target       string          `json:"target,omitempty"`
	Acknowledged bool            `json:"acknowledged,omitempty"`
	ReadyAt      *time.Time      `json:"ready_at,omitempty"`
	SiteKey      string          `json:"site_key,omitempty"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// ChallengeAction is one user input to a challenge. Exactly one field is used,
// depending on the challenge kind.
type ChallengeAction struct {
	Token       string `json:"token,omitempty"`
	Acknowledge bool   `json:"acknowledge,omitempty"`
	Select      *int   `json:"select,omitempty"`
}

// SelectAction builds a ChallengeAction selecting the entry at index
func SelectAction(index int) ChallengeAction {
	return ChallengeAction{Select: &index}
}

// GateSnapshot is a read-only view of a signup gate
type GateSnapshot struct {
	SessionID  string              `json:"session_id"`
	State      VerificationState   `json:"state"`
	Strategy   ChallengeKind       `json:"strategy"`
	Username   string              `json:"username"`
	Email      string              `json:"email"`
	Error      string              `json:"error,omitempty"`
	Challenge  *ChallengeView      `json:"challenge,omitempty"`
	Submitting bool                `json:"submitting"`
	LastResult *RegistrationResult `json:"last_result,omitempty"`
}

// NotificationLevel classifies a user-facing notification
type NotificationLevel string

const (
	NotifySuccess NotificationLevel = "success"
	NotifyError   NotificationLevel = "error"
	NotifyInfo    NotificationLevel = "info"
)

// Notification is a transient message shown to the user
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}
