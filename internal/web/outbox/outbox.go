// Package outbox keeps the notifications and navigation a signup gate emits
// until the browser next loads a page, so flows work without a live stream.
// Notifications already delivered to a live stream are not kept.
package outbox

import (
	"sync"

	"github.com/mcoot/signupgate/internal/model"
)

// maxPending bounds the notifications kept per session; older ones are dropped
const maxPending = 8

type entry struct {
	notifications []model.Notification
	navigate      string
}

// Outbox collects gate effects per signup session
type Outbox struct {
	mu      sync.Mutex
	entries map[string]*entry
	online  func(sessionID string) bool
}

// Option configures an Outbox
type Option func(*Outbox)

// WithPresence skips notifications for sessions where online reports a
// connected stream
func WithPresence(online func(sessionID string) bool) Option {
	return func(o *Outbox) {
		o.online = online
	}
}

// New creates an empty Outbox
func New(opts ...Option) *Outbox {
	o := &Outbox{entries: make(map[string]*entry)}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Outbox) entryLocked(sessionID string) *entry {
	e, ok := o.entries[sessionID]
	if !ok {
		e = &entry{}
		o.entries[sessionID] = e
	}
	return e
}

// Notify queues a notification for the session unless it is online
func (o *Outbox) Notify(sessionID string, n model.Notification) {
	if o.online != nil && o.online(sessionID) {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	e := o.entryLocked(sessionID)
	e.notifications = append(e.notifications, n)
	if len(e.notifications) > maxPending {
		e.notifications = e.notifications[len(e.notifications)-maxPending:]
	}
}

// Navigate records where the session should go next. A later call replaces
// an earlier one. Navigation is kept even for online sessions since the
// pages that follow it consume it.
func (o *Outbox) Navigate(sessionID string, path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entryLocked(sessionID).navigate = path
}

// StateChanged is ignored; pages render the gate snapshot directly
func (o *Outbox) StateChanged(model.GateSnapshot) {}

// Closed forgets everything queued for the session
func (o *Outbox) Closed(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.entries, sessionID)
}

// PendingNavigation returns the queued navigation target without consuming it
func (o *Outbox) PendingNavigation(sessionID string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.entries[sessionID]; ok {
		return e.navigate
	}
	return ""
}

// Drain returns and clears everything queued for the session
func (o *Outbox) Drain(sessionID string) ([]model.Notification, string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.entries[sessionID]
	if !ok {
		return nil, ""
	}
	delete(o.entries, sessionID)
	return e.notifications, e.navigate
}

// DrainNotifications returns and clears the queued notifications, leaving any
// navigation in place
func (o *Outbox) DrainNotifications(sessionID string) []model.Notification {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.entries[sessionID]
	if !ok {
		return nil
	}
	notes := e.notifications
	e.notifications = nil
	if e.navigate == "" {
		delete(o.entries, sessionID)
	}
	return notes
}
