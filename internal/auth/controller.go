package auth

import (
	"context"
	"sync"

	"github.com/metocast/castctl/internal/models"
)

// StateKind enumerates the authentication states.
type StateKind int

const (
	StateVerifying StateKind = iota
	StateAuthenticated
	StateUnauthenticated
)

// String returns the lowercase name of the state.
func (k StateKind) String() string {
	switch k {
	case StateVerifying:
		return "verifying"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// State is a read-only snapshot of the session state.
// User is set only while authenticated.
type State struct {
	Kind StateKind
	User *models.User
}

// SessionController drives the verify-on-load handshake and holds the
// authoritative session state for one application run.
type SessionController struct {
	service *Service

	mu    sync.Mutex
	state State
	begun bool
	gen   int
}

// NewSessionController creates a controller in the initial [StateVerifying] state.
func NewSessionController(service *Service) *SessionController {
	return &SessionController{
		service: service,
		state:   State{Kind: StateVerifying},
	}
}

// Current returns the state snapshot. Never blocks on network activity.
func (c *SessionController) Current() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Begin runs the one-time verification handshake and returns the resolved
// state. Repeat calls return the current state without a second verification;
// an in-flight result superseded by an explicit login or logout is discarded.
func (c *SessionController) Begin(ctx context.Context) State {
	c.mu.Lock()
	if c.begun {
		state := c.state
		c.mu.Unlock()
		return state
	}
	c.begun = true
	gen := c.gen
	c.mu.Unlock()

	user, err := c.service.Verify(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Only the generation that started this check may apply its result
	if c.gen != gen {
		return c.state
	}

	if err != nil {
		c.state = State{Kind: StateUnauthenticated}
	} else {
		c.state = State{Kind: StateAuthenticated, User: user}
	}
	return c.state
}

// Login delegates to the auth service and, on success, transitions to
// [StateAuthenticated]. On failure the state is [StateUnauthenticated] and
// the reason is returned.
func (c *SessionController) Login(ctx context.Context, email, password string) (models.User, error) {
	user, err := c.service.Login(ctx, email, password)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.begun = true
	c.gen++

	if err != nil {
		c.state = State{Kind: StateUnauthenticated}
		return models.User{}, err
	}

	c.state = State{Kind: StateAuthenticated, User: &user}
	return user, nil
}

// Logout clears the session and transitions to [StateUnauthenticated].
// Always succeeds locally, whatever the backend's reachability.
func (c *SessionController) Logout() {
	c.service.Logout()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.begun = true
	c.gen++
	c.state = State{Kind: StateUnauthenticated}
}
