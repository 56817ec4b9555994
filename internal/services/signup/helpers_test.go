package signup

import (
	"context"
	"sync"

	"github.com/mcoot/signupgate/internal/model"
)

type recordingListener struct {
	mu            sync.Mutex
	notifications []model.Notification
	navigations   []string
	snapshots     []model.GateSnapshot
	closed        []string
}

func (l *recordingListener) Notify(_ string, n model.Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notifications = append(l.notifications, n)
}

func (l *recordingListener) Navigate(_ string, path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.navigations = append(l.navigations, path)
}

func (l *recordingListener) StateChanged(snapshot model.GateSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshots = append(l.snapshots, snapshot)
}

func (l *recordingListener) Closed(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = append(l.closed, sessionID)
}

func (l *recordingListener) Notifications() []model.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Notification(nil), l.notifications...)
}

func (l *recordingListener) Navigations() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.navigations...)
}

func (l *recordingListener) States() []model.VerificationState {
	l.mu.Lock()
	defer l.mu.Unlock()
	states := make([]model.VerificationState, 0, len(l.snapshots))
	for _, s := range l.snapshots {
		if len(states) > 0 && states[len(states)-1] == s.State {
			continue
		}
		states = append(states, s.State)
	}
	return states
}

func (l *recordingListener) ClosedSessions() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.closed...)
}

// fakeRegistrar records calls. When release is set, calls block until it is
// closed or the context ends.
type fakeRegistrar struct {
	mu         sync.Mutex
	requests   []model.RegisterRequest
	result     model.RegistrationResult
	err        error
	panicValue any
	release    chan struct{}
}

func (r *fakeRegistrar) Register(ctx context.Context, req model.RegisterRequest) (model.RegistrationResult, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	result, err, panicValue, release := r.result, r.err, r.panicValue, r.release
	r.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return model.RegistrationResult{}, ctx.Err()
		}
	}
	if panicValue != nil {
		panic(panicValue)
	}
	return result, err
}

func (r *fakeRegistrar) Requests() []model.RegisterRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.RegisterRequest(nil), r.requests...)
}

func (r *fakeRegistrar) Calls() int {
	return len(r.Requests())
}
