package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/metocast/castctl/internal/models"
	"github.com/metocast/castctl/internal/shared"
)

// Snapshot is a point-in-time capture of the backend's content.
type Snapshot struct {
	ID        string
	Sequence  int
	CreatedAt time.Time
	Episodes  []models.Episode
	Links     []models.OfficialLink
}

// NextSequence atomically increments and returns the next snapshot sequence number.
//
// Sequence numbers provide human-readable ordering (snapshot #3) alongside the
// opaque UUID primary key.
func NextSequence(db *sql.DB) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE snapshots_sequence SET value = value + 1 WHERE id = 1"); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err := tx.QueryRow("SELECT value FROM snapshots_sequence WHERE id = 1").Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}

// SnapshotRepository persists [Snapshot] records.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new [SnapshotRepository] with the given database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create captures the given episodes and links as a new snapshot.
func (r *SnapshotRepository) Create(episodes []models.Episode, links []models.OfficialLink) (*Snapshot, error) {
	sequence, err := NextSequence(r.db)
	if err != nil {
		return nil, fmt.Errorf("failed to generate sequence: %w", err)
	}

	snapshot := &Snapshot{
		ID:        shared.GenerateID(),
		Sequence:  sequence,
		CreatedAt: time.Now().UTC(),
		Episodes:  episodes,
		Links:     links,
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO snapshots (id, sequence, created_at, episode_count, link_count) VALUES (?, ?, ?, ?, ?)",
		snapshot.ID, snapshot.Sequence, snapshot.CreatedAt, len(episodes), len(links),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	for i, ep := range episodes {
		_, err = tx.Exec(`
			INSERT INTO snapshot_episodes
				(snapshot_id, episode_id, title, description, thumbnail_url, spotify_url, youtube_url, tags, status, created_at, published_at, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, snapshot.ID, ep.ID, ep.Title, ep.Description, ep.ThumbnailURL, ep.SpotifyURL, ep.YouTubeURL,
			strings.Join(ep.Tags, ","), string(ep.Status), ep.CreatedAt, ep.PublishedAt, i)
		if err != nil {
			return nil, fmt.Errorf("failed to insert snapshot episode %d: %w", ep.ID, err)
		}
	}

	for i, link := range links {
		_, err = tx.Exec(`
			INSERT INTO snapshot_links (snapshot_id, link_id, label, url, type, display_order, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, snapshot.ID, link.ID, link.Label, link.URL, string(link.Type), link.Order, i)
		if err != nil {
			return nil, fmt.Errorf("failed to insert snapshot link %d: %w", link.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return snapshot, nil
}

// Get retrieves a full snapshot by ID, episodes and links in captured order.
func (r *SnapshotRepository) Get(id string) (*Snapshot, error) {
	snapshot := &Snapshot{ID: id}

	err := r.db.QueryRow("SELECT sequence, created_at FROM snapshots WHERE id = ?", id).
		Scan(&snapshot.Sequence, &snapshot.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: snapshot %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	episodes, err := r.snapshotEpisodes(id)
	if err != nil {
		return nil, err
	}
	snapshot.Episodes = episodes

	links, err := r.snapshotLinks(id)
	if err != nil {
		return nil, err
	}
	snapshot.Links = links

	return snapshot, nil
}

// List retrieves snapshot metadata ordered by sequence, newest last.
// Episodes and Links are not populated; use [SnapshotRepository.Get].
func (r *SnapshotRepository) List() ([]Snapshot, error) {
	rows, err := r.db.Query("SELECT id, sequence, created_at FROM snapshots ORDER BY sequence ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.Sequence, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return snapshots, nil
}

// Delete removes a snapshot and its captured rows.
func (r *SnapshotRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: snapshot %s", shared.ErrNotFound, id)
	}

	// Cascade is not guaranteed when foreign keys are off, clean up explicitly
	if _, err := r.db.Exec("DELETE FROM snapshot_episodes WHERE snapshot_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete snapshot episodes: %w", err)
	}
	if _, err := r.db.Exec("DELETE FROM snapshot_links WHERE snapshot_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete snapshot links: %w", err)
	}

	return nil
}

func (r *SnapshotRepository) snapshotEpisodes(id string) ([]models.Episode, error) {
	rows, err := r.db.Query(`
		SELECT episode_id, title, description, thumbnail_url, spotify_url, youtube_url, tags, status, created_at, published_at
		FROM snapshot_episodes
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot episodes: %w", err)
	}
	defer rows.Close()

	var episodes []models.Episode
	for rows.Next() {
		var (
			ep          models.Episode
			tags        string
			status      string
			publishedAt sql.NullTime
		)

		err := rows.Scan(&ep.ID, &ep.Title, &ep.Description, &ep.ThumbnailURL, &ep.SpotifyURL, &ep.YouTubeURL,
			&tags, &status, &ep.CreatedAt, &publishedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot episode: %w", err)
		}

		ep.Tags = models.ParseTags(tags)
		ep.Status = models.EpisodeStatus(status)
		if publishedAt.Valid {
			ep.PublishedAt = &publishedAt.Time
		}

		episodes = append(episodes, ep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return episodes, nil
}

func (r *SnapshotRepository) snapshotLinks(id string) ([]models.OfficialLink, error) {
	rows, err := r.db.Query(`
		SELECT link_id, label, url, type, display_order
		FROM snapshot_links
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot links: %w", err)
	}
	defer rows.Close()

	var links []models.OfficialLink
	for rows.Next() {
		var (
			link     models.OfficialLink
			linkType string
		)

		if err := rows.Scan(&link.ID, &link.Label, &link.URL, &linkType, &link.Order); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot link: %w", err)
		}

		link.Type = models.LinkType(linkType)
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return links, nil
}
