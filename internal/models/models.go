package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/metocast/castctl/internal/shared"
)

// EpisodeStatus is the publication state of an episode. Exactly two values exist.
type EpisodeStatus string

const (
	StatusDraft     EpisodeStatus = "draft"
	StatusPublished EpisodeStatus = "published"
)

// Valid reports whether the status is one of the two known values.
func (s EpisodeStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// TagList is the canonical representation of episode tags: trimmed, non-empty entries.
type TagList []string

// ParseTags splits a comma-delimited string into a normalized [TagList].
func ParseTags(s string) TagList {
	return normalizeTags(strings.Split(s, ","))
}

func normalizeTags(raw []string) TagList {
	tags := make(TagList, 0, len(raw))
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// UnmarshalJSON accepts either a JSON array of strings or a single
// comma-delimited string and normalizes both into the canonical list form.
func (t *TagList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*t = normalizeTags(arr)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = ParseTags(s)
		return nil
	}

	return fmt.Errorf("%w: tags must be a list or a comma-delimited string", shared.ErrInvalidInput)
}

// MarshalJSON always emits the array form, never the delimited-string form.
func (t TagList) MarshalJSON() ([]byte, error) {
	normalized := normalizeTags(t)
	if len(normalized) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(normalized))
}

// String joins the tags for display.
func (t TagList) String() string {
	return strings.Join(t, ", ")
}

// Episode represents a podcast installment owned by the backend.
type Episode struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty"`
	SpotifyURL   string        `json:"spotify_url,omitempty"`
	YouTubeURL   string        `json:"youtube_url,omitempty"`
	Tags         TagList       `json:"tags"`
	Status       EpisodeStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	PublishedAt  *time.Time    `json:"published_at,omitempty"`
}

// Params returns the write payload corresponding to the episode's current fields.
func (e *Episode) Params() EpisodeParams {
	return EpisodeParams{
		Title:        e.Title,
		Description:  e.Description,
		ThumbnailURL: e.ThumbnailURL,
		SpotifyURL:   e.SpotifyURL,
		YouTubeURL:   e.YouTubeURL,
		Tags:         e.Tags,
		Status:       e.Status,
	}
}

// EpisodeParams is the payload for episode create/update calls.
type EpisodeParams struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	ThumbnailURL string        `json:"thumbnail_url"`
	SpotifyURL   string        `json:"spotify_url"`
	YouTubeURL   string        `json:"youtube_url"`
	Tags         TagList       `json:"tags"`
	Status       EpisodeStatus `json:"status"`
}

// FieldErrors returns a message per invalid field, keyed by field name.
// An empty map means the payload may be sent.
func (p EpisodeParams) FieldErrors() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(p.Title) == "" {
		errs["title"] = "title is required"
	}
	if strings.TrimSpace(p.Description) == "" {
		errs["description"] = "description is required"
	}
	if p.Status != "" && !p.Status.Valid() {
		errs["status"] = fmt.Sprintf("unknown status %q", p.Status)
	}
	return errs
}

// Validate checks if the payload's data is valid and returns an error if not.
func (p EpisodeParams) Validate() error {
	if errs := p.FieldErrors(); len(errs) > 0 {
		fields := make([]string, 0, len(errs))
		for f := range errs {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, strings.Join(fields, ", "))
	}
	return nil
}

// LinkType categorizes an official link.
type LinkType string

const (
	LinkSpotify   LinkType = "spotify"
	LinkYouTube   LinkType = "youtube"
	LinkInstagram LinkType = "instagram"
	LinkWebsite   LinkType = "website"
	LinkOther     LinkType = "other"
)

// LinkTypes returns all known link types in display order.
func LinkTypes() []LinkType {
	return []LinkType{LinkSpotify, LinkYouTube, LinkInstagram, LinkWebsite, LinkOther}
}

// Valid reports whether the type is drawn from the known enumeration.
func (t LinkType) Valid() bool {
	for _, known := range LinkTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// OfficialLink represents a curated outbound URL owned by the backend.
type OfficialLink struct {
	ID    int64    `json:"id"`
	Label string   `json:"label"`
	URL   string   `json:"url"`
	Type  LinkType `json:"type"`
	Order int      `json:"order"`
}

// Params returns the write payload corresponding to the link's current fields.
func (l *OfficialLink) Params() LinkParams {
	return LinkParams{Label: l.Label, URL: l.URL, Type: l.Type, Order: l.Order}
}

// LinkParams is the payload for link create/update calls.
type LinkParams struct {
	Label string   `json:"label"`
	URL   string   `json:"url"`
	Type  LinkType `json:"type"`
	Order int      `json:"order"`
}

// FieldErrors returns a message per invalid field, keyed by field name.
func (p LinkParams) FieldErrors() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(p.Label) == "" {
		errs["label"] = "label is required"
	}
	if strings.TrimSpace(p.URL) == "" {
		errs["url"] = "url is required"
	}
	if p.Type != "" && !p.Type.Valid() {
		errs["type"] = fmt.Sprintf("unknown link type %q", p.Type)
	}
	return errs
}

// Validate checks if the payload's data is valid and returns an error if not.
func (p LinkParams) Validate() error {
	if errs := p.FieldErrors(); len(errs) > 0 {
		fields := make([]string, 0, len(errs))
		for f := range errs {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, strings.Join(fields, ", "))
	}
	return nil
}

// SortLinks orders links by ascending display order in place.
// Equal order values keep their original relative position.
func SortLinks(links []OfficialLink) {
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Order < links[j].Order
	})
}

// User is the authenticated principal as reported by the backend.
// The locally cached copy is display-only and may be stale between verifications.
type User struct {
	ID    int64  `json:"id,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// MinimalUser builds a user record from just an email address, used when
// login succeeds but the follow-up profile fetch does not.
func MinimalUser(email string) User {
	return User{Email: email}
}

// DisplayName returns the best available label for the user.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
