package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/metocast/castctl/internal/models"
)

// Backend is an in-memory fake of the content API for integration-style tests.
//
// It implements the public and admin REST surface with a fixed credential pair
// and token, mutating its in-memory collections on admin writes.
type Backend struct {
	mu       sync.Mutex
	Email    string
	Password string
	Token    string
	User     models.User
	Episodes []models.Episode
	Links    []models.OfficialLink
	nextID   int64

	server *httptest.Server
}

// NewBackend starts a fake backend pre-seeded with credentials and empty content.
// The server is shut down automatically at test cleanup.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		Email:    "admin@metocast.com",
		Password: "correct-password",
		Token:    "test-token",
		User:     models.User{ID: 1, Email: "admin@metocast.com", Name: "Admin"},
		nextID:   1,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", b.handleLogin)
	mux.HandleFunc("/auth/me", b.authed(b.handleMe))
	mux.HandleFunc("/episodes", b.handlePublicEpisodes)
	mux.HandleFunc("/episodes/", b.handlePublicEpisode)
	mux.HandleFunc("/links", b.handlePublicLinks)
	mux.HandleFunc("/admin/episodes", b.authed(b.handleAdminEpisodes))
	mux.HandleFunc("/admin/episodes/", b.authed(b.handleAdminEpisode))
	mux.HandleFunc("/admin/links", b.authed(b.handleAdminLinks))
	mux.HandleFunc("/admin/links/", b.authed(b.handleAdminLink))

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the backend's base URL.
func (b *Backend) URL() string { return b.server.URL }

// Seed replaces the backend's content under lock.
func (b *Backend) Seed(episodes []models.Episode, links []models.OfficialLink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Episodes = episodes
	b.Links = links
	for _, ep := range episodes {
		if ep.ID >= b.nextID {
			b.nextID = ep.ID + 1
		}
	}
	for _, link := range links {
		if link.ID >= b.nextID {
			b.nextID = link.ID + 1
		}
	}
}

func (b *Backend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+b.Token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds map[string]string
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	ok := creds["email"] == b.Email && creds["password"] == b.Password
	token := b.Token
	b.mu.Unlock()

	if !ok {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"access_token": token})
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	user := b.User
	b.mu.Unlock()
	json.NewEncoder(w).Encode(user)
}

func (b *Backend) handlePublicEpisodes(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	published := []models.Episode{}
	for _, ep := range b.Episodes {
		if ep.Status == models.StatusPublished {
			published = append(published, ep)
		}
	}
	json.NewEncoder(w).Encode(published)
}

func (b *Backend) handlePublicEpisode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/episodes/"), 10, 64)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ep := range b.Episodes {
		if ep.ID == id {
			json.NewEncoder(w).Encode(ep)
			return
		}
	}
	http.Error(w, "not found", http.StatusNotFound)
}

func (b *Backend) handlePublicLinks(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Links == nil {
		json.NewEncoder(w).Encode([]models.OfficialLink{})
		return
	}
	json.NewEncoder(w).Encode(b.Links)
}

func (b *Backend) handleAdminEpisodes(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		if b.Episodes == nil {
			json.NewEncoder(w).Encode([]models.Episode{})
			return
		}
		json.NewEncoder(w).Encode(b.Episodes)
	case http.MethodPost:
		var params models.EpisodeParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		ep := models.Episode{
			ID:           b.nextID,
			Title:        params.Title,
			Description:  params.Description,
			ThumbnailURL: params.ThumbnailURL,
			SpotifyURL:   params.SpotifyURL,
			YouTubeURL:   params.YouTubeURL,
			Tags:         params.Tags,
			Status:       models.StatusDraft,
			CreatedAt:    time.Now().UTC(),
		}
		b.nextID++
		b.Episodes = append(b.Episodes, ep)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(ep)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (b *Backend) handleAdminEpisode(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/episodes/")
	action := ""
	if idx := strings.Index(rest, "/"); idx >= 0 {
		action = rest[idx+1:]
		rest = rest[:idx]
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	pos := -1
	for i, ep := range b.Episodes {
		if ep.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	switch {
	case r.Method == http.MethodPatch && action == "publish":
		now := time.Now().UTC()
		b.Episodes[pos].Status = models.StatusPublished
		b.Episodes[pos].PublishedAt = &now
		json.NewEncoder(w).Encode(b.Episodes[pos])
	case r.Method == http.MethodPatch && action == "unpublish":
		b.Episodes[pos].Status = models.StatusDraft
		b.Episodes[pos].PublishedAt = nil
		json.NewEncoder(w).Encode(b.Episodes[pos])
	case r.Method == http.MethodPut:
		var params models.EpisodeParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		ep := &b.Episodes[pos]
		ep.Title = params.Title
		ep.Description = params.Description
		ep.ThumbnailURL = params.ThumbnailURL
		ep.SpotifyURL = params.SpotifyURL
		ep.YouTubeURL = params.YouTubeURL
		ep.Tags = params.Tags
		// PUT replaces the whole record, status included.
		ep.Status = params.Status
		json.NewEncoder(w).Encode(ep)
	case r.Method == http.MethodDelete:
		b.Episodes = append(b.Episodes[:pos], b.Episodes[pos+1:]...)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (b *Backend) handleAdminLinks(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		if b.Links == nil {
			json.NewEncoder(w).Encode([]models.OfficialLink{})
			return
		}
		json.NewEncoder(w).Encode(b.Links)
	case http.MethodPost:
		var params models.LinkParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		link := models.OfficialLink{
			ID:    b.nextID,
			Label: params.Label,
			URL:   params.URL,
			Type:  params.Type,
			Order: len(b.Links) + 1,
		}
		b.nextID++
		b.Links = append(b.Links, link)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(link)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (b *Backend) handleAdminLink(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/links/")

	if rest == "reorder" && r.Method == http.MethodPatch {
		b.handleReorder(w, r)
		return
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	pos := -1
	for i, link := range b.Links {
		if link.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var params models.LinkParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		link := &b.Links[pos]
		link.Label = params.Label
		link.URL = params.URL
		link.Type = params.Type
		// PUT replaces the record, display order included.
		link.Order = params.Order
		json.NewEncoder(w).Encode(link)
	case http.MethodDelete:
		b.Links = append(b.Links[:pos], b.Links[pos+1:]...)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (b *Backend) handleReorder(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	byID := make(map[int64]models.OfficialLink, len(b.Links))
	for _, link := range b.Links {
		byID[link.ID] = link
	}

	reordered := make([]models.OfficialLink, 0, len(payload.IDs))
	for i, id := range payload.IDs {
		link, ok := byID[id]
		if !ok {
			http.Error(w, "unknown link id", http.StatusUnprocessableEntity)
			return
		}
		link.Order = i + 1
		reordered = append(reordered, link)
	}

	b.Links = reordered
	json.NewEncoder(w).Encode(b.Links)
}
