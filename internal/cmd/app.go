package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/fitdesk/fitdesk-cli/internal/config"
	errs "github.com/fitdesk/fitdesk-cli/internal/errors"
	"github.com/fitdesk/fitdesk-cli/session"
	"github.com/fitdesk/fitdesk-cli/users"
)

// app bundles the session manager with configuration for command handlers.
// Built fresh per invocation; the persisted session store carries state
// between runs.
type app struct {
	cfg     config.Config
	manager *session.Manager
}

func newApp() (*app, error) {
	cfg := config.New()
	manager, err := session.NewManager(cfg, session.WithOnSessionEnd(func() {
		fmt.Fprintln(os.Stderr, "Your session has expired. Run 'fitdesk login' to sign in again.")
	}))
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, manager: manager}, nil
}

// requireSession restores the persisted session or tells the user to log
// in.
func (a *app) requireSession(ctx context.Context) (*users.User, error) {
	user, err := a.manager.Restore(ctx)
	if err != nil {
		if errs.Is(err, errs.ErrNoSession) {
			return nil, errors.New("not logged in, run 'fitdesk login' first")
		}
		return nil, err
	}
	return user, nil
}
