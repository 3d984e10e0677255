package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/metocast/castctl/internal/auth"
	"github.com/metocast/castctl/internal/shared"
)

// AuthLogin signs in against the backend and stores the session token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	password := cmd.String("password")

	if password == "" {
		if err := r.writePlain("Password: "); err != nil {
			return err
		}
		line, err := bufio.NewReader(r.input).ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if password == "" {
		return fmt.Errorf("%w: password is required", shared.ErrMissingArgument)
	}

	r.logger.Info("signing in", "email", email)

	user, err := r.controller.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			return fmt.Errorf("%w: check email and password", shared.ErrInvalidCredentials)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	return r.writePlain("✓ Signed in as %s\n", user.DisplayName())
}

// AuthLogout discards the stored session. Always succeeds locally.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.controller.Logout()
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus verifies the stored session against the backend.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking session")

	state := r.controller.Begin(ctx)
	switch state.Kind {
	case auth.StateAuthenticated:
		r.writePlain("✓ Session is valid\n")
		return r.writePlain("Signed in as: %s\n", state.User.DisplayName())
	case auth.StateUnauthenticated:
		if token, err := r.sessions.Token(); err == nil && token != "" {
			// Token survived the check, the backend was unreachable
			return r.writePlain("? Could not verify session, backend unreachable\n")
		}
		return r.writePlain("✗ Not signed in\n")
	default:
		return r.writePlain("Session check still running\n")
	}
}
