package site

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/metocast/castctl/internal/api"
	"github.com/metocast/castctl/internal/models"
	"github.com/metocast/castctl/internal/shared"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Server renders the public site from the backend's published content.
type Server struct {
	client    *api.Client
	logger    *log.Logger
	templates map[string]*template.Template
}

// NewServer creates a site [Server] backed by the given API client.
func NewServer(client *api.Client, logger *log.Logger) (*Server, error) {
	pages := []string{"home.html", "episode.html", "about.html", "participate.html"}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFS(templateFiles, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &Server{client: client, logger: logger, templates: templates}, nil
}

// Router builds the site's [Router] with logging and rate limiting applied.
func (s *Server) Router() *BasicRouter {
	router := NewBasicRouter()
	router.Use(RequestLogger(s.logger))
	router.Use(RateLimit(NewClientLimiter(60, time.Minute, 10, 5*time.Minute)))

	router.Handle(http.MethodGet, "/", http.HandlerFunc(s.handleHome))
	router.Handle(http.MethodGet, "/episodes/", http.HandlerFunc(s.handleEpisode))
	router.Handle(http.MethodGet, "/about", s.staticPage("about.html"))
	router.Handle(http.MethodGet, "/participate", s.staticPage("participate.html"))

	return router
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context, host string, port int) error {
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("site listening", "addr", server.Addr)
		errs <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// pageData is the payload every template receives. Links feed the shared footer.
type pageData struct {
	Episodes []models.Episode
	Episode  *models.Episode
	Links    []models.OfficialLink
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	episodes, err := s.client.Episodes(r.Context())
	if err != nil {
		s.renderError(w, err)
		return
	}

	data := pageData{
		Episodes: publishedOnly(episodes),
		Links:    s.footerLinks(r.Context()),
	}
	s.render(w, "home.html", data)
}

func (s *Server) handleEpisode(w http.ResponseWriter, r *http.Request) {
	rawID := strings.TrimPrefix(r.URL.Path, "/episodes/")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	episode, err := s.client.Episode(r.Context(), id)
	if err != nil {
		s.renderError(w, err)
		return
	}

	// Drafts are never exposed publicly even if the backend returns one.
	if episode.Status != models.StatusPublished {
		http.NotFound(w, r)
		return
	}

	data := pageData{Episode: episode, Links: s.footerLinks(r.Context())}
	s.render(w, "episode.html", data)
}

func (s *Server) staticPage(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, page, pageData{Links: s.footerLinks(r.Context())})
	}
}

// footerLinks fetches the official links for the footer. A failed fetch
// degrades to an empty footer rather than failing the page.
func (s *Server) footerLinks(ctx context.Context) []models.OfficialLink {
	links, err := s.client.Links(ctx)
	if err != nil {
		s.logger.Warn("failed to load official links", "error", err)
		return nil
	}
	return links
}

func (s *Server) render(w http.ResponseWriter, page string, data pageData) {
	tmpl, ok := s.templates[page]
	if !ok {
		s.logger.Error("unknown template", "page", page)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		s.logger.Error("failed to render template", "page", page, "error", err)
	}
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	s.logger.Error("backend request failed", "error", err)
	http.Error(w, "Service unavailable", http.StatusBadGateway)
}

func publishedOnly(episodes []models.Episode) []models.Episode {
	published := make([]models.Episode, 0, len(episodes))
	for _, ep := range episodes {
		if ep.Status == models.StatusPublished {
			published = append(published, ep)
		}
	}
	return published
}
