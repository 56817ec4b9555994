package signup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/signupgate/internal/model"
)

// Registrar performs the remote registration call
type Registrar interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.RegistrationResult, error)
}

// RegistrarFunc adapts a function to Registrar
type RegistrarFunc func(ctx context.Context, req model.RegisterRequest) (model.RegistrationResult, error)

func (f RegistrarFunc) Register(ctx context.Context, req model.RegisterRequest) (model.RegistrationResult, error) {
	return f(ctx, req)
}

// Controller makes the registration call for a verified gate
type Controller struct {
	registrar Registrar
	timeout   time.Duration
	logger    *slog.Logger
}

// NewController creates a submission controller. A zero timeout leaves the
// call bounded only by the caller's context.
func NewController(registrar Registrar, timeout time.Duration, logger *slog.Logger) *Controller {
	return &Controller{
		registrar: registrar,
		timeout:   timeout,
		logger:    logger.With(slog.String("component", "signup.controller")),
	}
}

// Submit invokes the registrar once. Any failure to get an answer, including
// a panic inside the registrar, is returned wrapped in ErrRegistrationTransport.
func (c *Controller) Submit(ctx context.Context, req model.RegisterRequest) (result model.RegistrationResult, err error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("registrar panicked", slog.Any("panic", r))
			result = model.RegistrationResult{}
			err = fmt.Errorf("%w: panic: %v", model.ErrRegistrationTransport, r)
		}
	}()

	result, err = c.registrar.Register(ctx, req)
	if err != nil {
		return model.RegistrationResult{}, fmt.Errorf("%w: %w", model.ErrRegistrationTransport, err)
	}
	return result, nil
}
