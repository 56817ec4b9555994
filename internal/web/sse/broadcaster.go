package sse

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/signupgate/internal/model"
)

// Event names sent on a signup stream
const (
	EventConnected = "connected"
	EventState     = "state"
	EventFragment  = "fragment"
	EventNotify    = "notify"
	EventNavigate  = "navigate"
	EventClosed    = "closed"
)

// Broadcaster forwards gate effects to the SSE clients of each session
type Broadcaster struct {
	hubManager *HubManager
	renderer   *Renderer
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		renderer:   NewRenderer(),
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Notify sends a notify event with the notification as JSON
func (b *Broadcaster) Notify(sessionID string, n model.Notification) {
	b.sendJSON(sessionID, EventNotify, n)
}

// Navigate sends a navigate event carrying the target path
func (b *Broadcaster) Navigate(sessionID string, path string) {
	hub := b.hubManager.GetHub(sessionID)
	if hub == nil {
		return
	}
	hub.BroadcastEvent(EventNavigate, path)
}

// StateChanged sends a state event with the snapshot as JSON, then a fragment
// event with the register page markup for that state
func (b *Broadcaster) StateChanged(snapshot model.GateSnapshot) {
	hub := b.hubManager.GetHub(snapshot.SessionID)
	if hub == nil {
		return
	}
	b.sendJSON(snapshot.SessionID, EventState, snapshot)

	html, err := b.renderer.RenderSignup(context.Background(), snapshot)
	if err != nil {
		b.logger.Error("sse failed to render fragment",
			slog.String("session_id", snapshot.SessionID),
			slog.Any("error", err))
		return
	}
	hub.BroadcastEvent(EventFragment, html)
}

// Closed tells clients the session is gone and removes its hub
func (b *Broadcaster) Closed(sessionID string) {
	hub := b.hubManager.GetHub(sessionID)
	if hub == nil {
		return
	}
	hub.BroadcastEvent(EventClosed, "closed")
	b.hubManager.RemoveHub(sessionID)
}

func (b *Broadcaster) sendJSON(sessionID, event string, v any) {
	hub := b.hubManager.GetHub(sessionID)
	if hub == nil {
		return
	}
	data, err := EncodeEvent(event, v)
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("session_id", sessionID),
			slog.String("event", event),
			slog.Any("error", err))
		return
	}
	hub.Broadcast(data)
}

// EncodeEvent formats v as a JSON SSE event
func EncodeEvent(event string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return formatSSEMessage(event, string(data)), nil
}
