package handler

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/mcoot/signupgate/internal/dependencies/clock"
	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/services/signup"
	"github.com/mcoot/signupgate/internal/web/middleware"
	"github.com/mcoot/signupgate/internal/web/outbox"
	"github.com/mcoot/signupgate/internal/web/sse"
	"github.com/mcoot/signupgate/internal/web/templates/layout"
	"github.com/mcoot/signupgate/internal/web/templates/pages"
)

// widgetTokenField is the form field the hosted widget fills in
const widgetTokenField = "g-recaptcha-response"

// SignupHandler serves the registration page and drives its gate
type SignupHandler struct {
	manager    *signup.Manager
	hubManager *sse.HubManager
	outbox     *outbox.Outbox
	clock      clock.Clock
	logger     *slog.Logger
}

// NewSignupHandler creates a new SignupHandler
func NewSignupHandler(manager *signup.Manager, hubManager *sse.HubManager, box *outbox.Outbox, clk clock.Clock, logger *slog.Logger) *SignupHandler {
	return &SignupHandler{
		manager:    manager,
		hubManager: hubManager,
		outbox:     box,
		clock:      clk,
		logger:     logger.With(slog.String("component", "web.signup")),
	}
}

// Page renders the registration page, or follows a navigation the gate asked for
func (h *SignupHandler) Page(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	gate := middleware.GetGate(r.Context())

	if path := h.outbox.PendingNavigation(gate.ID()); path != "" {
		http.Redirect(w, r, path, http.StatusSeeOther)
		return
	}

	flashes := middleware.GetFlashes(r.Context())
	flashes = append(flashes, layout.FlashesFromNotifications(h.outbox.DrainNotifications(gate.ID()))...)

	snap := gate.Snapshot()
	data := pages.RegisterData{
		PageData: layout.PageData{
			Title:          "Sign up",
			Flashes:        flashes,
			RefreshSeconds: h.refreshSeconds(snap),
		},
		Gate: snap,
	}
	render(w, r, http.StatusOK, pages.Register(data))
}

// refreshSeconds is how long a script-less page should wait before reloading
func (h *SignupHandler) refreshSeconds(snap model.GateSnapshot) int {
	if snap.Submitting || snap.State == model.StateVerified {
		return 1
	}
	c := snap.Challenge
	if snap.State != model.StateChallenging || c == nil || c.ReadyAt == nil {
		return 0
	}
	wait := c.ReadyAt.Sub(h.clock.Now()).Seconds()
	return max(1, int(math.Ceil(wait)))
}

// Submit records the posted fields and submits the form
func (h *SignupHandler) Submit(w http.ResponseWriter, r *http.Request) {
	gate := middleware.GetGate(r.Context())
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, "error", "Invalid form data")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	for _, name := range []string{model.FieldUsername, model.FieldEmail, model.FieldPassword} {
		if !r.PostForm.Has(name) {
			continue
		}
		if err := gate.SetField(name, r.PostForm.Get(name)); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	if err := gate.Submit(); err != nil && !errors.Is(err, model.ErrMissingFields) {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

// Field records a single field change
func (h *SignupHandler) Field(w http.ResponseWriter, r *http.Request) {
	gate := middleware.GetGate(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	err := gate.SetField(r.PostForm.Get("name"), r.PostForm.Get("value"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, model.ErrUnknownField):
		http.Error(w, "Unknown field", http.StatusBadRequest)
	case errors.Is(err, model.ErrGateClosed):
		http.Error(w, "Signup session closed", http.StatusGone)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Challenge feeds one input to the live challenge. If that verifies the gate,
// the response waits for the registration call so the redirect lands on the
// outcome.
func (h *SignupHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	gate := middleware.GetGate(r.Context())
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, "error", "Invalid form data")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	action, err := actionFromForm(r)
	if err == nil {
		err = gate.Act(action)
	}
	switch {
	case err == nil, errors.Is(err, model.ErrChallengeIncorrect), errors.Is(err, model.ErrTokenMissing):
		// The gate reports these through its notifications and form error
	default:
		h.fail(w, r, err)
		return
	}

	if gate.Snapshot().Submitting {
		if err := gate.Await(r.Context()); err != nil {
			h.logger.Warn("request ended before registration settled", slog.Any("error", err))
		}
	}
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

// Dismiss abandons the current challenge
func (h *SignupHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if err := middleware.GetGate(r.Context()).Dismiss(); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

// Leave closes the signup session
func (h *SignupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if gate := middleware.GetGate(r.Context()); gate != nil {
		_ = h.manager.Leave(gate.ID())
	}
	middleware.ClearSignupCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Events streams the gate's state, notifications and navigation over SSE
func (h *SignupHandler) Events(w http.ResponseWriter, r *http.Request) {
	gate := middleware.GetGate(r.Context())
	if gate == nil {
		http.Error(w, "Signup session not found", http.StatusNotFound)
		return
	}

	initial, err := sse.EncodeEvent(sse.EventState, gate.Snapshot())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	sse.ServeSSE(w, r, h.hubManager.GetOrCreateHub(gate.ID()), initial)
}

// fail turns a gate error into a flash and sends the user back to the form
func (h *SignupHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrSubmissionInFlight):
		middleware.SetFlash(w, "info", "Your account is being created.")
	case errors.Is(err, model.ErrNotChallenging):
		middleware.SetFlash(w, "error", "There is no verification in progress.")
	case errors.Is(err, model.ErrChallengeExpired):
		// The gate already shows why verification ended
	case errors.Is(err, model.ErrInvalidAction):
		middleware.SetFlash(w, "error", "That input does not fit the current challenge.")
	case errors.Is(err, model.ErrUnknownField):
		middleware.SetFlash(w, "error", "Invalid form data")
	case errors.Is(err, model.ErrGateClosed):
		middleware.ClearSignupCookie(w)
		middleware.SetFlash(w, "info", "Your signup session ended. Please start again.")
	default:
		h.logger.Error("signup request failed", slog.Any("error", err))
		middleware.SetFlash(w, "error", "Something went wrong. Please try again.")
	}
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

func actionFromForm(r *http.Request) (model.ChallengeAction, error) {
	form := r.PostForm
	switch {
	case form.Has("select"):
		i, err := strconv.Atoi(strings.TrimSpace(form.Get("select")))
		if err != nil {
			return model.ChallengeAction{}, model.ErrInvalidAction
		}
		return model.SelectAction(i), nil
	case form.Has("acknowledge"):
		return model.ChallengeAction{Acknowledge: true}, nil
	case form.Has(widgetTokenField) && form.Get(widgetTokenField) != "":
		return model.ChallengeAction{Token: form.Get(widgetTokenField)}, nil
	case form.Has("token"), form.Has(widgetTokenField):
		return model.ChallengeAction{Token: form.Get("token")}, nil
	default:
		return model.ChallengeAction{}, model.ErrInvalidAction
	}
}
