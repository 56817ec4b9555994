package signup

import "github.com/mcoot/signupgate/internal/model"

// Listener receives the effects of a gate. Calls are made after the gate lock
// is released, possibly from timer or submission goroutines.
type Listener interface {
	Notify(sessionID string, n model.Notification)
	Navigate(sessionID string, path string)
	StateChanged(snapshot model.GateSnapshot)
	Closed(sessionID string)
}

// NopListener discards every effect
type NopListener struct{}

func (NopListener) Notify(string, model.Notification) {}
func (NopListener) Navigate(string, string)           {}
func (NopListener) StateChanged(model.GateSnapshot)   {}
func (NopListener) Closed(string)                     {}

// Listeners fans every effect out to each listener in order
type Listeners []Listener

func (ls Listeners) Notify(sessionID string, n model.Notification) {
	for _, l := range ls {
		l.Notify(sessionID, n)
	}
}

func (ls Listeners) Navigate(sessionID string, path string) {
	for _, l := range ls {
		l.Navigate(sessionID, path)
	}
}

func (ls Listeners) StateChanged(snapshot model.GateSnapshot) {
	for _, l := range ls {
		l.StateChanged(snapshot)
	}
}

func (ls Listeners) Closed(sessionID string) {
	for _, l := range ls {
		l.Closed(sessionID)
	}
}
