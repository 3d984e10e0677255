package auth

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/metocast/castctl/internal/api"
	"github.com/metocast/castctl/internal/models"
	"github.com/metocast/castctl/internal/session"
	"github.com/metocast/castctl/internal/shared"
)

// Service encapsulates the backend auth interactions and their session-store
// side effects.
type Service struct {
	client   *api.Client
	sessions *session.Store
	logger   *log.Logger
}

// NewService creates an auth [Service] over the given gateway client and session store.
func NewService(client *api.Client, sessions *session.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Service{client: client, sessions: sessions, logger: logger}
}

// Login exchanges credentials for a token, persists it, then fetches and
// persists the user profile. When the profile fetch fails the login still
// succeeds with a minimal record derived from the email.
func (s *Service) Login(ctx context.Context, email, password string) (models.User, error) {
	token, err := s.client.Login(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}

	if err := s.sessions.SetToken(token); err != nil {
		return models.User{}, fmt.Errorf("failed to persist token: %w", err)
	}

	user, err := s.client.Me(ctx)
	if err != nil {
		s.logger.Warn("profile fetch after login failed, using minimal user", "email", email, "error", err)
		minimal := models.MinimalUser(email)
		user = &minimal
	}

	if err := s.sessions.SetUser(*user); err != nil {
		return models.User{}, fmt.Errorf("failed to persist user: %w", err)
	}

	s.logger.Info("login successful", "email", user.Email)
	return *user, nil
}

// Logout removes the token and cached user. Purely local, no backend call,
// and never reported as a failure to the caller.
func (s *Service) Logout() {
	if err := s.sessions.Clear(); err != nil {
		s.logger.Warn("failed to clear session on logout", "error", err)
	}
}

// Verify checks whether the stored token still denotes a valid session.
// With no stored token it reports invalid immediately, without a network
// call. On success the cached user is overwritten with the fresh profile.
// A rejected token is cleared by the gateway client; a transport failure
// leaves stored state untouched.
func (s *Service) Verify(ctx context.Context) (*models.User, error) {
	token, err := s.sessions.Token()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	user, err := s.client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("verification failed: %w", err)
	}

	if err := s.sessions.SetUser(*user); err != nil {
		return nil, fmt.Errorf("failed to refresh cached user: %w", err)
	}

	return user, nil
}

// CachedUser returns the locally cached user record, if any.
func (s *Service) CachedUser() *models.User {
	user, err := s.sessions.User()
	if err != nil {
		s.logger.Warn("failed to read cached user", "error", err)
		return nil
	}
	return user
}
