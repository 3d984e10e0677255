package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

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

func TestClient(t *testing.T) {
	t.Run("Login", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
					t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				}

				var creds map[string]string
				if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
					t.Fatalf("failed to decode credentials: %v", err)
				}
				if creds["email"] != "admin@metocast.com" || creds["password"] != "correct-password" {
					t.Errorf("unexpected credentials: %v", creds)
				}

				json.NewEncoder(w).Encode(map[string]string{"access_token": "T"})
			}))
			defer server.Close()

			client := NewClient(server.URL, newTestSessions(t), nil, nil)
			token, err := client.Login(context.Background(), "admin@metocast.com", "correct-password")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if token != "T" {
				t.Errorf("expected token T, got %q", token)
			}
		})

		t.Run("Rejected Credentials", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad credentials", http.StatusUnauthorized)
			}))
			defer server.Close()

			client := NewClient(server.URL, newTestSessions(t), nil, nil)
			_, err := client.Login(context.Background(), "admin@metocast.com", "wrong")
			if !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})

		t.Run("Missing Token In Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{})
			}))
			defer server.Close()

			client := NewClient(server.URL, newTestSessions(t), nil, nil)
			if _, err := client.Login(context.Background(), "a@b.c", "pw"); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("Bearer Token Attachment", func(t *testing.T) {
		t.Run("Authorized Request Carries Stored Token", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer T" {
					t.Errorf("expected Authorization 'Bearer T', got %q", got)
				}
				json.NewEncoder(w).Encode(models.User{Email: "admin@metocast.com", Name: "Admin"})
			}))
			defer server.Close()

			sessions := newTestSessions(t)
			if err := sessions.SetToken("T"); err != nil {
				t.Fatalf("failed to seed token: %v", err)
			}

			client := NewClient(server.URL, sessions, nil, nil)
			user, err := client.Me(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if user.Name != "Admin" {
				t.Errorf("unexpected user: %+v", user)
			}
		})

		t.Run("Public Request Carries No Token", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "" {
					t.Errorf("expected no Authorization header, got %q", got)
				}
				json.NewEncoder(w).Encode([]models.Episode{})
			}))
			defer server.Close()

			sessions := newTestSessions(t)
			if err := sessions.SetToken("T"); err != nil {
				t.Fatalf("failed to seed token: %v", err)
			}

			client := NewClient(server.URL, sessions, nil, nil)
			if _, err := client.Episodes(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Authorized Request Without Token Fails Before Network", func(t *testing.T) {
			client := NewClient("http://127.0.0.1:1", newTestSessions(t), nil, nil)
			_, err := client.Me(context.Background())
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	})

	t.Run("Session Expiry", func(t *testing.T) {
		t.Run("401 Clears Stored Session", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "token revoked", http.StatusUnauthorized)
			}))
			defer server.Close()

			sessions := newTestSessions(t)
			if err := sessions.SetToken("stale"); err != nil {
				t.Fatalf("failed to seed token: %v", err)
			}
			if err := sessions.SetUser(models.User{Email: "admin@metocast.com"}); err != nil {
				t.Fatalf("failed to seed user: %v", err)
			}

			client := NewClient(server.URL, sessions, nil, nil)
			_, err := client.AdminEpisodes(context.Background())
			if !errors.Is(err, shared.ErrSessionExpired) {
				t.Errorf("expected ErrSessionExpired, got %v", err)
			}

			token, _ := sessions.Token()
			if token != "" {
				t.Errorf("expected token cleared after 401, got %q", token)
			}
			user, _ := sessions.User()
			if user != nil {
				t.Errorf("expected cached user cleared after 401, got %+v", user)
			}
		})

		t.Run("401 On Public Endpoint Does Not Clear Session", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusUnauthorized)
			}))
			defer server.Close()

			sessions := newTestSessions(t)
			if err := sessions.SetToken("T"); err != nil {
				t.Fatalf("failed to seed token: %v", err)
			}

			client := NewClient(server.URL, sessions, nil, nil)
			if _, err := client.Episodes(context.Background()); err == nil {
				t.Error("expected error")
			}

			token, _ := sessions.Token()
			if token != "T" {
				t.Errorf("public 401 should not clear session, token = %q", token)
			}
		})
	})

	t.Run("Links Sorted By Order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]models.OfficialLink{
				{ID: 1, Label: "c", URL: "https://c", Order: 3},
				{ID: 2, Label: "a", URL: "https://a", Order: 1},
				{ID: 3, Label: "b", URL: "https://b", Order: 2},
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, newTestSessions(t), nil, nil)
		links, err := client.Links(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		for i, want := range []int{1, 2, 3} {
			if links[i].Order != want {
				t.Errorf("links[%d].Order = %d, want %d", i, links[i].Order, want)
			}
		}
	})

	t.Run("Episode Tags Normalized From String Form", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Older backend revisions send tags as a delimited string
			w.Write([]byte(`{"id": 7, "title": "t", "description": "d", "tags": "ENEM,  Educação ,,Carreira", "status": "published", "created_at": "2025-01-02T10:00:00Z"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, newTestSessions(t), nil, nil)
		episode, err := client.Episode(context.Background(), 7)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := models.TagList{"ENEM", "Educação", "Carreira"}
		if len(episode.Tags) != len(want) {
			t.Fatalf("tags = %v, want %v", episode.Tags, want)
		}
		for i := range want {
			if episode.Tags[i] != want[i] {
				t.Errorf("tags[%d] = %q, want %q", i, episode.Tags[i], want[i])
			}
		}
	})

	t.Run("Validation Blocks Dispatch", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		sessions := newTestSessions(t)
		if err := sessions.SetToken("T"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		client := NewClient(server.URL, sessions, nil, nil)
		_, err := client.CreateEpisode(context.Background(), models.EpisodeParams{Description: "d"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if called {
			t.Error("invalid payload must not reach the backend")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		client := NewClient(server.URL, newTestSessions(t), nil, nil)
		if _, err := client.Episode(context.Background(), 99); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ReorderLinks Payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPatch || r.URL.Path != "/admin/links/reorder" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}

			var payload map[string][]int64
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode payload: %v", err)
			}
			if len(payload["ids"]) != 3 || payload["ids"][0] != 3 {
				t.Errorf("unexpected ids: %v", payload["ids"])
			}
		}))
		defer server.Close()

		sessions := newTestSessions(t)
		if err := sessions.SetToken("T"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		client := NewClient(server.URL, sessions, nil, nil)
		if err := client.ReorderLinks(context.Background(), []int64{3, 1, 2}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}
