// package formatter provides functions to export captured content to various formats (CSV, Markdown, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/metocast/castctl/internal/models"
	"github.com/metocast/castctl/internal/store"
)

// EpisodesToCSV converts episodes to CSV with columns: ID, Title, Status, Tags, Spotify, YouTube, CreatedAt, PublishedAt
func EpisodesToCSV(episodes []models.Episode) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Status", "Tags", "Spotify", "YouTube", "CreatedAt", "PublishedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, ep := range episodes {
		publishedAt := ""
		if ep.PublishedAt != nil {
			publishedAt = ep.PublishedAt.Format(time.RFC3339)
		}

		record := []string{
			strconv.FormatInt(ep.ID, 10),
			ep.Title,
			string(ep.Status),
			ep.Tags.String(),
			ep.SpotifyURL,
			ep.YouTubeURL,
			ep.CreatedAt.Format(time.RFC3339),
			publishedAt,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// LinksToCSV converts official links to CSV with columns: ID, Label, URL, Type, Order
func LinksToCSV(links []models.OfficialLink) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Label", "URL", "Type", "Order"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, link := range links {
		record := []string{
			strconv.FormatInt(link.ID, 10),
			link.Label,
			link.URL,
			string(link.Type),
			strconv.Itoa(link.Order),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// SnapshotToMarkdown converts a snapshot to a Markdown document.
func SnapshotToMarkdown(snapshot *store.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Snapshot #%d\n\n", snapshot.Sequence))
	buf.WriteString(fmt.Sprintf("**Captured**: %s\n", snapshot.CreatedAt.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("**Episodes**: %d\n", len(snapshot.Episodes)))
	buf.WriteString(fmt.Sprintf("**Links**: %d\n\n", len(snapshot.Links)))

	buf.WriteString("## Episodes\n\n")
	for i, ep := range snapshot.Episodes {
		buf.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, ep.Title, ep.Status))
		if len(ep.Tags) > 0 {
			buf.WriteString(fmt.Sprintf("   Tags: %s\n", ep.Tags))
		}
	}

	buf.WriteString("\n## Official Links\n\n")
	for i, link := range snapshot.Links {
		buf.WriteString(fmt.Sprintf("%d. [%s](%s) (%s)\n", i+1, link.Label, link.URL, link.Type))
	}

	return buf.Bytes(), nil
}

// snapshotJSON is the export shape for [SnapshotToJSON].
type snapshotJSON struct {
	ID        string                `json:"id"`
	Sequence  int                   `json:"sequence"`
	CreatedAt time.Time             `json:"created_at"`
	Episodes  []models.Episode      `json:"episodes"`
	Links     []models.OfficialLink `json:"links"`
}

// SnapshotToJSON converts a snapshot to pretty-printed JSON.
func SnapshotToJSON(snapshot *store.Snapshot) ([]byte, error) {
	out := snapshotJSON{
		ID:        snapshot.ID,
		Sequence:  snapshot.Sequence,
		CreatedAt: snapshot.CreatedAt,
		Episodes:  snapshot.Episodes,
		Links:     snapshot.Links,
	}
	if out.Episodes == nil {
		out.Episodes = []models.Episode{}
	}
	if out.Links == nil {
		out.Links = []models.OfficialLink{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}
