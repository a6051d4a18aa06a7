package notify

import (
	"context"

	"github.com/atvtrailers/shop-api/internal/auth"
)

// PasswordResetDispatcher delivers password reset instructions. The HTTP
// surface answers identically whether or not the account exists, so the
// dispatcher is only invoked for accounts that do.
type PasswordResetDispatcher interface {
	DispatchPasswordReset(ctx context.Context, email string) error
}

// LogDispatcher records the reset request without sending anything.
// Deployments wanting real delivery plug in their own dispatcher.
type LogDispatcher struct {
	Logger auth.Logger
}

// DispatchPasswordReset implements PasswordResetDispatcher
func (d *LogDispatcher) DispatchPasswordReset(_ context.Context, email string) error {
	logger := d.Logger
	if logger == nil {
		logger = auth.DefaultLogger()
	}
	logger.Info("password reset instructions dispatched for %s", email)
	return nil
}
