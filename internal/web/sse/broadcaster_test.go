package sse

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/testutil"
)

func setupBroadcaster(t *testing.T) (*Broadcaster, *HubManager, *Client) {
	t.Helper()
	manager := NewHubManager(testutil.NopLogger())
	t.Cleanup(manager.Close)

	hub := manager.GetOrCreateHub("session-1")
	client := NewClient(hub)
	require.True(t, hub.Register(client))
	waitForClients(t, hub, 1)

	return NewBroadcaster(manager, testutil.NopLogger()), manager, client
}

func receive(t *testing.T, c *Client) string {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("client did not receive message")
		return ""
	}
}

// dataOf returns the joined data lines of a single SSE message
func dataOf(msg string) string {
	var lines []string
	for _, line := range strings.Split(msg, "\n") {
		if rest, ok := strings.CutPrefix(line, "data: "); ok {
			lines = append(lines, rest)
		}
	}
	return strings.Join(lines, "\n")
}

func TestBroadcaster_Notify(t *testing.T) {
	b, _, client := setupBroadcaster(t)

	b.Notify("session-1", model.Notification{Level: model.NotifySuccess, Message: "Registered successfully!"})

	msg := receive(t, client)
	assert.True(t, strings.HasPrefix(msg, "event: notify\n"))

	var n model.Notification
	require.NoError(t, json.Unmarshal([]byte(dataOf(msg)), &n))
	assert.Equal(t, model.NotifySuccess, n.Level)
	assert.Equal(t, "Registered successfully!", n.Message)
}

func TestBroadcaster_Navigate(t *testing.T) {
	b, _, client := setupBroadcaster(t)

	b.Navigate("session-1", "/login")

	assert.Equal(t, "event: navigate\ndata: /login\n\n", receive(t, client))
}

func TestBroadcaster_StateChanged(t *testing.T) {
	b, _, client := setupBroadcaster(t)

	b.StateChanged(model.GateSnapshot{
		SessionID: "session-1",
		State:     model.StateChallenging,
		Strategy:  model.ChallengeTarget,
		Challenge: &model.ChallengeView{Kind: model.ChallengeTarget, Target: "🍎"},
	})

	msg := receive(t, client)
	assert.True(t, strings.HasPrefix(msg, "event: state\n"))

	var snap model.GateSnapshot
	require.NoError(t, json.Unmarshal([]byte(dataOf(msg)), &snap))
	assert.Equal(t, model.StateChallenging, snap.State)
	require.NotNil(t, snap.Challenge)
	assert.Equal(t, "🍎", snap.Challenge.Target)

	msg = receive(t, client)
	assert.True(t, strings.HasPrefix(msg, "event: fragment\n"))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(dataOf(msg)))
	require.NoError(t, err)
	slot := doc.Find("#challenge-slot[hx-swap-oob]")
	require.Equal(t, 1, slot.Length())
	assert.Equal(t, "🍎", slot.Find("#challenge-target").Text())
	assert.Equal(t, 1, doc.Find("#form-error[hx-swap-oob]").Length())
}

func TestBroadcaster_IgnoresSessionsWithoutHub(t *testing.T) {
	b, manager, client := setupBroadcaster(t)

	b.Notify("other", model.Notification{Level: model.NotifyInfo, Message: "x"})
	b.Navigate("other", "/login")
	b.StateChanged(model.GateSnapshot{SessionID: "other"})
	b.Closed("other")

	assert.Nil(t, manager.GetHub("other"))
	select {
	case msg := <-client.send:
		t.Fatalf("unexpected message %q", msg)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBroadcaster_ClosedRemovesHub(t *testing.T) {
	b, manager, _ := setupBroadcaster(t)

	b.Closed("session-1")

	assert.Nil(t, manager.GetHub("session-1"))
}

func TestServeSSE_StreamsInitialAndBroadcastEvents(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()
	hub := manager.GetOrCreateHub("session-1")

	initial, err := EncodeEvent(EventState, model.GateSnapshot{SessionID: "session-1", State: model.StateIdle})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	rr := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		ServeSSE(rr, req, hub, initial)
		close(done)
	}()

	waitForClients(t, hub, 1)
	hub.BroadcastEvent(EventNavigate, "/login")
	time.Sleep(20 * time.Millisecond)
	hub.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ServeSSE did not return after hub closed")
	}

	body := rr.Body.String()
	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	assert.Contains(t, body, "retry: 3000")
	assert.Contains(t, body, `data: {"status":"connected"}`)
	assert.Contains(t, body, "event: state\n")
	assert.Contains(t, body, "event: navigate\ndata: /login\n")
}
