package site

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/metocast/castctl/internal/api"
	"github.com/metocast/castctl/internal/models"
	"github.com/metocast/castctl/internal/session"
	"github.com/metocast/castctl/internal/shared"
)

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	episodes := []models.Episode{
		{ID: 1, Title: "Aquecimento ENEM", Status: models.StatusPublished, Tags: models.TagList{"ENEM"}},
		{ID: 2, Title: "Rascunho Secreto", Status: models.StatusDraft},
	}
	links := []models.OfficialLink{
		{ID: 1, Label: "Spotify", URL: "https://open.spotify.com/show/x", Type: models.LinkSpotify, Order: 1},
		{ID: 2, Label: "YouTube", URL: "https://youtube.com/@x", Type: models.LinkYouTube, Order: 2},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/episodes", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(episodes)
	})
	mux.HandleFunc("/episodes/1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(episodes[0])
	})
	mux.HandleFunc("/episodes/2", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(episodes[1])
	})
	mux.HandleFunc("/links", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(links)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestServer(t *testing.T, backendURL string) *Server {
	t.Helper()

	sessions, err := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("failed to create session store: %v", err)
	}

	client := api.NewClient(backendURL, sessions, nil, nil)
	server, err := NewServer(client, shared.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("failed to create site server: %v", err)
	}
	return server
}

func TestSiteServer(t *testing.T) {
	t.Run("Home Shows Published Episodes Only", func(t *testing.T) {
		backend := fakeBackend(t)
		server := newTestServer(t, backend.URL)

		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		body := rec.Body.String()
		if !strings.Contains(body, "Aquecimento ENEM") {
			t.Error("expected published episode on home page")
		}
		if strings.Contains(body, "Rascunho Secreto") {
			t.Error("draft episode should not appear on home page")
		}
		if !strings.Contains(body, "https://open.spotify.com/show/x") {
			t.Error("expected official links in footer")
		}
	})

	t.Run("Episode Detail", func(t *testing.T) {
		backend := fakeBackend(t)
		server := newTestServer(t, backend.URL)

		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/episodes/1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Aquecimento ENEM") {
			t.Error("expected episode title on detail page")
		}
	})

	t.Run("Draft Episode Is Hidden", func(t *testing.T) {
		backend := fakeBackend(t)
		server := newTestServer(t, backend.URL)

		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/episodes/2", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for draft episode, got %d", rec.Code)
		}
	})

	t.Run("Invalid Episode ID", func(t *testing.T) {
		backend := fakeBackend(t)
		server := newTestServer(t, backend.URL)

		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/episodes/abc", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for bad id, got %d", rec.Code)
		}
	})

	t.Run("Backend Unreachable", func(t *testing.T) {
		server := newTestServer(t, "http://127.0.0.1:1")

		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502 when backend is down, got %d", rec.Code)
		}
	})

	t.Run("Static Pages", func(t *testing.T) {
		backend := fakeBackend(t)
		server := newTestServer(t, backend.URL)

		for path, want := range map[string]string{
			"/about":       "Sobre o MetôCast",
			"/participate": "Participe do MetôCast",
		} {
			rec := httptest.NewRecorder()
			server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			if rec.Code != http.StatusOK {
				t.Errorf("%s: expected 200, got %d", path, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), want) {
				t.Errorf("%s: expected body to contain %q", path, want)
			}
		}
	})

	t.Run("Method Filtering", func(t *testing.T) {
		backend := fakeBackend(t)
		server := newTestServer(t, backend.URL)

		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/about", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestClientLimiter(t *testing.T) {
	t.Run("Allows Within Burst", func(t *testing.T) {
		limiter := NewClientLimiter(1, time.Hour, 3, time.Minute)

		for i := 0; i < 3; i++ {
			if !limiter.Allow("10.0.0.1") {
				t.Fatalf("request %d should be allowed within burst", i+1)
			}
		}
		if limiter.Allow("10.0.0.1") {
			t.Error("request over burst should be denied")
		}
	})

	t.Run("Keys Are Independent", func(t *testing.T) {
		limiter := NewClientLimiter(1, time.Hour, 1, time.Minute)

		if !limiter.Allow("10.0.0.1") {
			t.Fatal("first client should be allowed")
		}
		if !limiter.Allow("10.0.0.2") {
			t.Error("second client should have its own bucket")
		}
	})

	t.Run("Idle Entries Expire", func(t *testing.T) {
		limiter := NewClientLimiter(1, time.Hour, 1, time.Minute)
		current := time.Now()
		limiter.now = func() time.Time { return current }

		limiter.Allow("10.0.0.1")
		current = current.Add(2 * time.Minute)
		limiter.Allow("10.0.0.2")

		limiter.mu.Lock()
		_, stale := limiter.visitors["10.0.0.1"]
		limiter.mu.Unlock()
		if stale {
			t.Error("expired visitor should have been garbage collected")
		}
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewClientLimiter(1, time.Hour, 1, time.Minute)
	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:12345"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request should be limited, got %d", rec.Code)
	}
}
