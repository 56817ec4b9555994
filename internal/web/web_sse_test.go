package web_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/services/registration"
	"github.com/mcoot/signupgate/internal/services/signup"
	"github.com/mcoot/signupgate/internal/web/middleware"
)

// TestSSE_EndpointHeaders verifies the SSE endpoint returns correct headers
func TestSSE_EndpointHeaders(t *testing.T) {
	ts := newWebTestServer(t)
	ts.openSignup()

	req := httptest.NewRequest(http.MethodGet, "/register/events", nil)
	ts.cookies.addTo(req)

	// Use a context with timeout since SSE is a long-running connection
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rr.Header().Get("Connection"))
	assert.Equal(t, "no", rr.Header().Get("X-Accel-Buffering"))
}

// TestSSE_InitialEvents verifies the stream opens with retry, connected and the current state
func TestSSE_InitialEvents(t *testing.T) {
	ts := newWebTestServer(t)
	ts.openSignup()
	require.NoError(t, ts.gate().SetField(model.FieldUsername, "alice"))

	req := httptest.NewRequest(http.MethodGet, "/register/events", nil)
	ts.cookies.addTo(req)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	body := rr.Body.String()
	assert.Contains(t, body, "retry: 3000")
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, `data: {"status":"connected"}`)
	assert.Contains(t, body, "event: state")
	assert.Contains(t, body, `"state":"idle"`)
	assert.Contains(t, body, `"username":"alice"`)
	assert.Less(t, strings.Index(body, "event: connected"), strings.Index(body, "event: state"))
}

// sseEvent is one parsed server-sent event
type sseEvent struct {
	name string
	data string
}

// streamEvents parses events from an SSE body until it closes
func streamEvents(body *bufio.Reader) <-chan sseEvent {
	ch := make(chan sseEvent, 16)
	go func() {
		defer close(ch)
		var ev sseEvent
		for {
			line, err := body.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				ev.data += strings.TrimPrefix(line, "data: ")
			case line == "" && ev.name != "":
				ch <- ev
				ev = sseEvent{}
			}
		}
	}()
	return ch
}

// waitForEvent returns the first event with the given name
func waitForEvent(t *testing.T, events <-chan sseEvent, name string) sseEvent {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "stream closed before %q event", name)
			if ev.name == name {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q event", name)
		}
	}
}

// TestSSE_SignupEventsReceived follows a whole signup over a live stream
func TestSSE_SignupEventsReceived(t *testing.T) {
	ts := newWebTestServer(t)
	ts.openSignup()

	server := httptest.NewServer(ts.handler)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/register/events", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: middleware.SignupCookieName, Value: ts.cookies.signupID()})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	events := streamEvents(bufio.NewReader(resp.Body))
	waitForEvent(t, events, "connected")
	initial := waitForEvent(t, events, "state")
	assert.Contains(t, initial.data, `"state":"idle"`)

	gate := ts.gate()
	require.NoError(t, gate.SetField(model.FieldUsername, "alice"))
	require.NoError(t, gate.SetField(model.FieldEmail, "alice@example.com"))
	require.NoError(t, gate.SetField(model.FieldPassword, "secret123"))
	require.NoError(t, gate.Submit())

	ev := waitForEvent(t, events, "state")
	assert.Contains(t, ev.data, `"state":"challenging"`)

	frag := waitForEvent(t, events, "fragment")
	doc := parseHTML(strings.NewReader(frag.data))
	assertContainsElement(t, doc, "#challenge-slot #challenge[data-kind='delay']")
	assertContainsElement(t, doc, "#challenge-slot button#acknowledge")

	require.NoError(t, gate.Act(model.ChallengeAction{Acknowledge: true}))
	ts.app.MockClock.Advance(signup.DefaultVerifyDelay)

	notify := waitForEvent(t, events, "notify")
	assert.Contains(t, notify.data, registration.MsgRegistered)
	assert.Contains(t, notify.data, `"level":"success"`)

	nav := waitForEvent(t, events, "navigate")
	assert.Equal(t, signup.LoginPath, nav.data)
}

// TestSSE_LeaveClosesStream verifies leaving ends the stream with a closed event
func TestSSE_LeaveClosesStream(t *testing.T) {
	ts := newWebTestServer(t)
	ts.openSignup()

	server := httptest.NewServer(ts.handler)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/register/events", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: middleware.SignupCookieName, Value: ts.cookies.signupID()})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	events := streamEvents(bufio.NewReader(resp.Body))
	waitForEvent(t, events, "state")

	require.NoError(t, ts.app.SignupManager.Leave(ts.cookies.signupID()))

	waitForEvent(t, events, "closed")
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("stream stayed open after leave")
		}
	}
}
