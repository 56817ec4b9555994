package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/signupgate/internal/dependencies/mocks"
	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/services/registration"
	"github.com/mcoot/signupgate/internal/services/signup"
	"github.com/mcoot/signupgate/internal/storage/memory"
	"github.com/mcoot/signupgate/internal/testutil"
)

// TestStart is the mock clock's starting time in test apps
var TestStart = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
// and the default delay strategy
func NewTestApp() *TestApp {
	return NewTestAppWithStrategy(signup.DefaultConfig())
}

// NewTestAppWithStrategy creates a test App whose gates use the given config
func NewTestAppWithStrategy(signupCfg signup.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(TestStart)
	mockRandom := mocks.NewMockRandom()

	app, err := newWithDependencies(store, mockClock, mockRandom, Config{
		Signup:       signupCfg,
		Registration: registration.Config{HashCost: bcrypt.MinCost},
	}, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// TokenConfig returns a signup config using the token strategy
func TokenConfig() signup.Config {
	cfg := signup.DefaultConfig()
	cfg.Strategy = model.ChallengeToken
	cfg.SiteKey = "test-site-key"
	return cfg
}
