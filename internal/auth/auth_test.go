package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/metocast/castctl/internal/api"
	"github.com/metocast/castctl/internal/models"
	"github.com/metocast/castctl/internal/session"
	"github.com/metocast/castctl/internal/shared"
)

func newTestSessions(t *testing.T) *session.Store {
	t.Helper()
	sessions, err := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("failed to create session store: %v", err)
	}
	return sessions
}

func newTestService(t *testing.T, backendURL string, sessions *session.Store) *Service {
	t.Helper()
	client := api.NewClient(backendURL, sessions, nil, nil)
	return NewService(client, sessions, nil)
}

func TestSessionController(t *testing.T) {
	t.Run("Begin Without Token Resolves Unauthenticated Without Network", func(t *testing.T) {
		var calls atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		sessions := newTestSessions(t)
		ctrl := NewSessionController(newTestService(t, server.URL, sessions))

		if got := ctrl.Current().Kind; got != StateVerifying {
			t.Errorf("initial state = %v, want verifying", got)
		}

		state := ctrl.Begin(context.Background())
		if state.Kind != StateUnauthenticated {
			t.Errorf("state = %v, want unauthenticated", state.Kind)
		}
		if calls.Load() != 0 {
			t.Errorf("expected no backend calls, got %d", calls.Load())
		}
	})

	t.Run("Begin With Accepted Token Resolves Authenticated With Fresh User", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(models.User{Email: "admin@metocast.com", Name: "Fresh Name"})
		}))
		defer server.Close()

		sessions := newTestSessions(t)
		if err := sessions.SetToken("T"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}
		if err := sessions.SetUser(models.User{Email: "admin@metocast.com", Name: "Stale Name"}); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}

		ctrl := NewSessionController(newTestService(t, server.URL, sessions))
		state := ctrl.Begin(context.Background())

		if state.Kind != StateAuthenticated {
			t.Fatalf("state = %v, want authenticated", state.Kind)
		}
		if state.User == nil || state.User.Name != "Fresh Name" {
			t.Errorf("expected verification response user, got %+v", state.User)
		}

		cached, _ := sessions.User()
		if cached == nil || cached.Name != "Fresh Name" {
			t.Errorf("cached user not refreshed: %+v", cached)
		}
	})

	t.Run("Begin With Rejected Token Resolves Unauthenticated", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "revoked", http.StatusUnauthorized)
		}))
		defer server.Close()

		sessions := newTestSessions(t)
		if err := sessions.SetToken("stale"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		ctrl := NewSessionController(newTestService(t, server.URL, sessions))
		if state := ctrl.Begin(context.Background()); state.Kind != StateUnauthenticated {
			t.Errorf("state = %v, want unauthenticated", state.Kind)
		}

		// Rejected token is cleared by the gateway client
		token, _ := sessions.Token()
		if token != "" {
			t.Errorf("expected rejected token cleared, got %q", token)
		}
	})

	t.Run("Begin With Unreachable Backend Resolves Unauthenticated", func(t *testing.T) {
		sessions := newTestSessions(t)
		if err := sessions.SetToken("T"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		ctrl := NewSessionController(newTestService(t, "http://127.0.0.1:1", sessions))
		if state := ctrl.Begin(context.Background()); state.Kind != StateUnauthenticated {
			t.Errorf("state = %v, want unauthenticated", state.Kind)
		}

		// Transport failure is not a rejection; stored state is untouched
		token, _ := sessions.Token()
		if token != "T" {
			t.Errorf("network failure should leave token stored, got %q", token)
		}
	})

	t.Run("Begin Is Idempotent", func(t *testing.T) {
		var calls atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			json.NewEncoder(w).Encode(models.User{Email: "admin@metocast.com"})
		}))
		defer server.Close()

		sessions := newTestSessions(t)
		if err := sessions.SetToken("T"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		ctrl := NewSessionController(newTestService(t, server.URL, sessions))

		var wg sync.WaitGroup
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ctrl.Begin(context.Background())
			}()
		}
		wg.Wait()

		if calls.Load() != 1 {
			t.Errorf("expected exactly one verification call, got %d", calls.Load())
		}
		if state := ctrl.Current(); state.Kind != StateAuthenticated {
			t.Errorf("state = %v, want authenticated", state.Kind)
		}
	})

	t.Run("Logout Always Clears And Never Fails", func(t *testing.T) {
		// No backend at all; logout is purely local
		sessions := newTestSessions(t)
		if err := sessions.SetToken("T"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}
		if err := sessions.SetUser(models.User{Email: "admin@metocast.com"}); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}

		ctrl := NewSessionController(newTestService(t, "http://127.0.0.1:1", sessions))
		ctrl.Logout()

		if state := ctrl.Current(); state.Kind != StateUnauthenticated {
			t.Errorf("state = %v, want unauthenticated", state.Kind)
		}
		token, _ := sessions.Token()
		if token != "" {
			t.Errorf("expected token cleared, got %q", token)
		}
		user, _ := sessions.User()
		if user != nil {
			t.Errorf("expected cached user cleared, got %+v", user)
		}
	})

	t.Run("Login Failure Leaves Unauthenticated", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
		}))
		defer server.Close()

		sessions := newTestSessions(t)
		ctrl := NewSessionController(newTestService(t, server.URL, sessions))
		ctrl.Begin(context.Background())

		_, err := ctrl.Login(context.Background(), "admin@metocast.com", "wrong")
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
		if state := ctrl.Current(); state.Kind != StateUnauthenticated {
			t.Errorf("state = %v, want unauthenticated", state.Kind)
		}
	})

	t.Run("Login End To End", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"access_token": "T"})
		})
		mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer T" {
				t.Errorf("profile fetch should carry the fresh token, got %q", got)
			}
			json.NewEncoder(w).Encode(models.User{Email: "admin@metocast.com", Name: "Admin"})
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		sessions := newTestSessions(t)
		ctrl := NewSessionController(newTestService(t, server.URL, sessions))
		ctrl.Begin(context.Background())

		user, err := ctrl.Login(context.Background(), "admin@metocast.com", "correct-password")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.Email != "admin@metocast.com" || user.Name != "Admin" {
			t.Errorf("unexpected user: %+v", user)
		}

		token, _ := sessions.Token()
		if token != "T" {
			t.Errorf("expected stored token T, got %q", token)
		}
		cached, _ := sessions.User()
		if cached == nil || cached.Email != "admin@metocast.com" || cached.Name != "Admin" {
			t.Errorf("unexpected cached user: %+v", cached)
		}
		if state := ctrl.Current(); state.Kind != StateAuthenticated {
			t.Errorf("state = %v, want authenticated", state.Kind)
		}
	})

	t.Run("Login Survives Failed Profile Fetch", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"access_token": "T"})
		})
		mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "flaky", http.StatusInternalServerError)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		sessions := newTestSessions(t)
		ctrl := NewSessionController(newTestService(t, server.URL, sessions))

		user, err := ctrl.Login(context.Background(), "admin@metocast.com", "correct-password")
		if err != nil {
			t.Fatalf("expected login to succeed with minimal user, got %v", err)
		}
		if user.Email != "admin@metocast.com" || user.Name != "" {
			t.Errorf("expected minimal user, got %+v", user)
		}

		token, _ := sessions.Token()
		if token != "T" {
			t.Errorf("expected token persisted, got %q", token)
		}
	})

	t.Run("Stale In-Flight Verification Does Not Clobber Logout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
			json.NewEncoder(w).Encode(models.User{Email: "admin@metocast.com"})
		}))
		defer server.Close()

		sessions := newTestSessions(t)
		if err := sessions.SetToken("T"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		ctrl := NewSessionController(newTestService(t, server.URL, sessions))

		done := make(chan State)
		go func() { done <- ctrl.Begin(context.Background()) }()

		ctrl.Logout()
		close(release)

		if state := <-done; state.Kind != StateUnauthenticated {
			t.Errorf("stale verification overrode logout: %v", state.Kind)
		}
		if state := ctrl.Current(); state.Kind != StateUnauthenticated {
			t.Errorf("state = %v, want unauthenticated", state.Kind)
		}
	})
}
