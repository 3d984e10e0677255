package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/metocast/castctl/internal/models"
	"github.com/metocast/castctl/internal/session"
	"github.com/metocast/castctl/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is used when no backend URL is configured.
const DefaultBaseURL = "http://localhost:8000/api"

// sessionTokenSource adapts the session store to [oauth2.TokenSource], so the
// transport always sees the current stored token rather than a cached one.
type sessionTokenSource struct {
	sessions *session.Store
}

func (ts sessionTokenSource) Token() (*oauth2.Token, error) {
	token, err := ts.sessions.Token()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: token}, nil
}

// Client talks to the MetôCast backend.
type Client struct {
	baseURL  string
	public   *http.Client
	authed   *http.Client
	sessions *session.Store
	logger   *log.Logger
}

// NewClient creates a gateway client for the backend at baseURL.
// A nil httpClient falls back to [http.DefaultClient]'s transport.
func NewClient(baseURL string, sessions *session.Store, httpClient *http.Client, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	authed := &http.Client{
		Transport: &oauth2.Transport{
			Source: sessionTokenSource{sessions: sessions},
			Base:   httpClient.Transport,
		},
		Timeout: httpClient.Timeout,
	}

	return &Client{
		baseURL:  baseURL,
		public:   httpClient,
		authed:   authed,
		sessions: sessions,
		logger:   logger,
	}
}

// loginResponse is the backend's answer to a credential login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges credentials for a bearer token. The token is returned, not
// stored; persistence is the auth service's concern.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	payload := map[string]string{"email": email, "password": password}

	var resp loginResponse
	status, err := c.do(ctx, c.public, http.MethodPost, "/auth/login", payload, &resp)
	if err != nil {
		if status == http.StatusUnauthorized || status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
			return "", fmt.Errorf("%w: backend rejected login for %s", shared.ErrInvalidCredentials, email)
		}
		return "", err
	}

	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: login response missing access_token", shared.ErrAPIRequest)
	}
	return resp.AccessToken, nil
}

// Me fetches the authenticated user's profile. A 401 invalidates the session.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if _, err := c.do(ctx, c.authed, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Episodes returns the published episodes visible to the public site.
func (c *Client) Episodes(ctx context.Context) ([]models.Episode, error) {
	var episodes []models.Episode
	if _, err := c.do(ctx, c.public, http.MethodGet, "/episodes", nil, &episodes); err != nil {
		return nil, err
	}
	return episodes, nil
}

// Episode returns a single published episode by ID.
func (c *Client) Episode(ctx context.Context, id int64) (*models.Episode, error) {
	var episode models.Episode
	if _, err := c.do(ctx, c.public, http.MethodGet, "/episodes/"+strconv.FormatInt(id, 10), nil, &episode); err != nil {
		return nil, err
	}
	return &episode, nil
}

// Links returns the public official links, sorted by display order.
func (c *Client) Links(ctx context.Context) ([]models.OfficialLink, error) {
	var links []models.OfficialLink
	if _, err := c.do(ctx, c.public, http.MethodGet, "/links", nil, &links); err != nil {
		return nil, err
	}
	models.SortLinks(links)
	return links, nil
}

// AdminEpisodes returns all episodes, drafts included.
func (c *Client) AdminEpisodes(ctx context.Context) ([]models.Episode, error) {
	var episodes []models.Episode
	if _, err := c.do(ctx, c.authed, http.MethodGet, "/admin/episodes", nil, &episodes); err != nil {
		return nil, err
	}
	return episodes, nil
}

// CreateEpisode creates an episode from the given payload.
func (c *Client) CreateEpisode(ctx context.Context, params models.EpisodeParams) (*models.Episode, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var episode models.Episode
	if _, err := c.do(ctx, c.authed, http.MethodPost, "/admin/episodes", params, &episode); err != nil {
		return nil, err
	}
	return &episode, nil
}

// UpdateEpisode replaces an episode's editable fields.
func (c *Client) UpdateEpisode(ctx context.Context, id int64, params models.EpisodeParams) (*models.Episode, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var episode models.Episode
	if _, err := c.do(ctx, c.authed, http.MethodPut, "/admin/episodes/"+strconv.FormatInt(id, 10), params, &episode); err != nil {
		return nil, err
	}
	return &episode, nil
}

// DeleteEpisode removes an episode.
func (c *Client) DeleteEpisode(ctx context.Context, id int64) error {
	_, err := c.do(ctx, c.authed, http.MethodDelete, "/admin/episodes/"+strconv.FormatInt(id, 10), nil, nil)
	return err
}

// PublishEpisode transitions an episode to published.
func (c *Client) PublishEpisode(ctx context.Context, id int64) error {
	_, err := c.do(ctx, c.authed, http.MethodPatch, "/admin/episodes/"+strconv.FormatInt(id, 10)+"/publish", nil, nil)
	return err
}

// UnpublishEpisode transitions an episode back to draft.
func (c *Client) UnpublishEpisode(ctx context.Context, id int64) error {
	_, err := c.do(ctx, c.authed, http.MethodPatch, "/admin/episodes/"+strconv.FormatInt(id, 10)+"/unpublish", nil, nil)
	return err
}

// AdminLinks returns all official links, sorted by display order.
func (c *Client) AdminLinks(ctx context.Context) ([]models.OfficialLink, error) {
	var links []models.OfficialLink
	if _, err := c.do(ctx, c.authed, http.MethodGet, "/admin/links", nil, &links); err != nil {
		return nil, err
	}
	models.SortLinks(links)
	return links, nil
}

// CreateLink creates an official link from the given payload.
func (c *Client) CreateLink(ctx context.Context, params models.LinkParams) (*models.OfficialLink, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var link models.OfficialLink
	if _, err := c.do(ctx, c.authed, http.MethodPost, "/admin/links", params, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// UpdateLink replaces a link's editable fields.
func (c *Client) UpdateLink(ctx context.Context, id int64, params models.LinkParams) (*models.OfficialLink, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var link models.OfficialLink
	if _, err := c.do(ctx, c.authed, http.MethodPut, "/admin/links/"+strconv.FormatInt(id, 10), params, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// DeleteLink removes an official link.
func (c *Client) DeleteLink(ctx context.Context, id int64) error {
	_, err := c.do(ctx, c.authed, http.MethodDelete, "/admin/links/"+strconv.FormatInt(id, 10), nil, nil)
	return err
}

// ReorderLinks assigns display order from the given ID sequence.
func (c *Client) ReorderLinks(ctx context.Context, ids []int64) error {
	payload := map[string][]int64{"ids": ids}
	_, err := c.do(ctx, c.authed, http.MethodPatch, "/admin/links/reorder", payload, nil)
	return err
}

// do performs one request and decodes a JSON response into out when non-nil.
// It returns the HTTP status code when a response was received, 0 otherwise.
func (c *Client) do(ctx context.Context, client *http.Client, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return 0, fmt.Errorf("%w: %s %s", shared.ErrNotAuthenticated, method, path)
		}
		return 0, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized && client == c.authed:
		// A rejected token is cleared immediately so the next action
		// starts from a clean unauthenticated state.
		if clearErr := c.sessions.Clear(); clearErr != nil {
			c.logger.Warn("failed to clear rejected session", "error", clearErr)
		}
		return resp.StatusCode, fmt.Errorf("%w: %s %s", shared.ErrSessionExpired, method, path)
	case resp.StatusCode == http.StatusNotFound:
		return resp.StatusCode, fmt.Errorf("%w: %s %s", shared.ErrNotFound, method, path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return resp.StatusCode, fmt.Errorf("%w: %s %s returned %d: %s", shared.ErrAPIRequest, method, path, resp.StatusCode, truncate(data, 200))
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

func truncate(data []byte, n int) string {
	if len(data) > n {
		return string(data[:n]) + "…"
	}
	return string(data)
}
