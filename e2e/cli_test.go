package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/signupgate/internal/api"
	"github.com/mcoot/signupgate/internal/factory"
	"github.com/mcoot/signupgate/internal/web"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath  string
	serverURL   string
	tokenFile   string
	sessionFile string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	binaryPath := filepath.Join(projectRoot, "bin", "signup-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/signup")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	dir := t.TempDir()
	return &cliRunner{
		binaryPath:  binaryPath,
		serverURL:   serverURL,
		tokenFile:   filepath.Join(dir, "token"),
		sessionFile: filepath.Join(dir, "session"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--session-file", r.sessionFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	// Keep the developer's own state out of the test
	cmd.Env = append(os.Environ(), "SIGNUP_TOKEN=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// Token strategy: any non-empty token passes without a captcha secret
	app, err := factory.New(context.Background(), factory.Config{
		Logger: logger,
		Signup: factory.TokenConfig(),
	})
	require.NoError(t, err)

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		AuthService:   app.AuthService,
		Registrar:     app.RegistrationService,
		SignupManager: app.SignupManager,
		HubManager:    app.HubManager,
		Storage:       app.Storage,
		Metrics:       app.Metrics,
		Registry:      app.Registry,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:        logger,
		AuthService:   app.AuthService,
		SignupManager: app.SignupManager,
		HubManager:    app.HubManager,
		Outbox:        app.Outbox,
		Clock:         app.Clock,
		Metrics:       app.Metrics,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			app.SignupManager.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type authResponse struct {
	User         userResponse `json:"user"`
	SessionToken string       `json:"session_token"`
}

type signupResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	Strategy  string `json:"strategy"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Error     string `json:"error"`
	Challenge *struct {
		Kind    string `json:"kind"`
		SiteKey string `json:"site_key"`
	} `json:"challenge"`
	LastResult *registrationResponse `json:"last_result"`
}

type registrationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Storage  string `json:"storage"`
	Sessions int    `json:"sessions"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func decodeOutput[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	resp := decodeOutput[healthResponse](t, output)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Storage)
	assert.Equal(t, 0, resp.Sessions)
}

func TestCLI_RegisterLoginLogout(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("register", "--user", "alice", "--email", "alice@example.com", "--pass", "password123")
	require.NoError(t, err, "output: %s", output)
	result := decodeOutput[registrationResponse](t, output)
	assert.True(t, result.Success)
	assert.Equal(t, "Registered successfully!", result.Message)

	// Same email again is rejected
	output, err = cli.run("register", "--user", "alice2", "--email", "alice@example.com", "--pass", "password123")
	require.Error(t, err)
	assert.Contains(t, output, "Email already in use")

	output, err = cli.run("login", "--user", "alice@example.com", "--pass", "password123")
	require.NoError(t, err, "output: %s", output)
	auth := decodeOutput[authResponse](t, output)
	assert.Equal(t, "alice", auth.User.Username)
	assert.NotEmpty(t, auth.SessionToken)

	// Token is read back from the token file
	output, err = cli.run("me")
	require.NoError(t, err, "output: %s", output)
	me := decodeOutput[userResponse](t, output)
	assert.Equal(t, auth.User.ID, me.ID)
	assert.Equal(t, "alice@example.com", me.Email)

	output, err = cli.run("logout")
	require.NoError(t, err, "output: %s", output)
	msg := decodeOutput[messageResponse](t, output)
	assert.Equal(t, "Logged out", msg.Message)

	_, err = cli.run("me")
	assert.Error(t, err)
}

func TestCLI_GateFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("gate", "start")
	require.NoError(t, err, "output: %s", output)
	started := decodeOutput[signupResponse](t, output)
	assert.Equal(t, "idle", started.State)
	assert.Equal(t, "token", started.Strategy)
	require.NotEmpty(t, started.SessionID)

	// Session id is saved for later commands
	output, err = cli.run("gate", "set", "username", "bob")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "bob", decodeOutput[signupResponse](t, output).Username)

	output, err = cli.run("gate", "set", "email", "bob@example.com")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("gate", "submit", "--pass", "hunter22")
	require.NoError(t, err, "output: %s", output)
	challenging := decodeOutput[signupResponse](t, output)
	assert.Equal(t, "challenging", challenging.State)
	require.NotNil(t, challenging.Challenge)
	assert.Equal(t, "token", challenging.Challenge.Kind)
	assert.Equal(t, "test-site-key", challenging.Challenge.SiteKey)

	output, err = cli.run("gate", "token", "widget-token", "--wait")
	require.NoError(t, err, "output: %s", output)
	done := decodeOutput[signupResponse](t, output)
	require.NotNil(t, done.LastResult, "output: %s", output)
	assert.True(t, done.LastResult.Success)
	assert.Equal(t, "Registered successfully!", done.LastResult.Message)

	output, err = cli.run("login", "--user", "bob", "--pass", "hunter22")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "bob@example.com", decodeOutput[authResponse](t, output).User.Email)

	output, err = cli.run("gate", "leave")
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, decodeOutput[messageResponse](t, output).Message, started.SessionID)

	// The saved session is forgotten
	output, err = cli.run("gate", "show")
	require.Error(t, err)
	assert.Contains(t, output, "no signup session")
}

func TestCLI_GateErrors(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("gate", "start")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("gate", "submit")
	require.Error(t, err)
	assert.Contains(t, output, "VALIDATION_ERROR")

	output, err = cli.run("gate", "set", "nickname", "x")
	require.Error(t, err)
	assert.Contains(t, output, "UNKNOWN_FIELD")

	output, err = cli.run("gate", "token", "early")
	require.Error(t, err)
	assert.Contains(t, output, "NOT_CHALLENGING")

	output, err = cli.run("gate", "submit", "--user", "carol", "--email", "carol@example.com", "--pass", "secret99")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("gate", "dismiss")
	require.NoError(t, err, "output: %s", output)
	dismissed := decodeOutput[signupResponse](t, output)
	assert.Equal(t, "idle", dismissed.State)
	assert.Nil(t, dismissed.Challenge)

	output, err = cli.run("gate", "show", "--session", "does-not-exist")
	require.Error(t, err)
	assert.Contains(t, output, "SESSION_NOT_FOUND")
}
