package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/signupgate/internal/dependencies/clock"
	"github.com/mcoot/signupgate/internal/metrics"
	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/storage"
)

// Result messages returned to the signup form
const (
	MsgRegistered         = "Registered successfully!"
	MsgMissingFields      = "All fields are required."
	MsgInvalidEmail       = "Please enter a valid email address."
	MsgUsernameLength     = "Username must be between 3 and 32 characters."
	MsgPasswordLength     = "Password must be at least 6 characters."
	MsgVerificationFailed = "CAPTCHA verification failed."
	MsgEmailTaken         = "Email already in use"
	MsgUsernameTaken      = "Username already taken"
)

// Field limits
const (
	MinUsernameLength = 3
	MaxUsernameLength = 32
	MinPasswordLength = 6
)

// TokenVerifier checks a verification token with the widget provider
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// Config holds configuration for the registration service
type Config struct {
	HashCost int
}

// DefaultConfig returns default registration configuration
func DefaultConfig() Config {
	return Config{HashCost: bcrypt.DefaultCost}
}

// Service is the registration backend. Invalid or conflicting input comes
// back as an unsuccessful result; only infrastructure failures are errors.
type Service struct {
	storage  storage.Storage
	clock    clock.Clock
	verifier TokenVerifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	hashCost int
}

// New creates a registration service. A nil verifier accepts any token.
func New(
	storage storage.Storage,
	clock clock.Clock,
	verifier TokenVerifier,
	m *metrics.Metrics,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.HashCost == 0 {
		cfg.HashCost = DefaultConfig().HashCost
	}
	return &Service{
		storage:  storage,
		clock:    clock,
		verifier: verifier,
		metrics:  m,
		logger:   logger.With(slog.String("component", "registration")),
		hashCost: cfg.HashCost,
	}
}

// Register validates the request and creates the user
func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (model.RegistrationResult, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if msg := validate(username, email, req.Password); msg != "" {
		return rejected(msg), nil
	}

	if s.verifier != nil {
		ok, err := s.verifier.Verify(ctx, req.VerificationToken)
		if err != nil {
			return model.RegistrationResult{}, fmt.Errorf("verify token: %w", err)
		}
		if !ok {
			s.logger.Info("verification token rejected")
			return rejected(MsgVerificationFailed), nil
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return model.RegistrationResult{}, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           model.UserID(uuid.NewString()),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}

	err = s.storage.CreateUser(ctx, user)
	switch {
	case errors.Is(err, model.ErrEmailTaken):
		return rejected(MsgEmailTaken), nil
	case errors.Is(err, model.ErrUsernameTaken):
		return rejected(MsgUsernameTaken), nil
	case err != nil:
		return model.RegistrationResult{}, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncrementUsersRegistered()
	s.logger.Info("user registered",
		slog.String("user_id", string(user.ID)),
		slog.String("username", user.Username),
	)
	return model.RegistrationResult{Success: true, Message: MsgRegistered}, nil
}

func validate(username, email, password string) string {
	if username == "" || email == "" || strings.TrimSpace(password) == "" {
		return MsgMissingFields
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return MsgInvalidEmail
	}
	if n := utf8.RuneCountInString(username); n < MinUsernameLength || n > MaxUsernameLength {
		return MsgUsernameLength
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return MsgPasswordLength
	}
	return ""
}

func rejected(msg string) model.RegistrationResult {
	return model.RegistrationResult{Success: false, Message: msg}
}
