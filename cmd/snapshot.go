package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/metocast/castctl/internal/formatter"
	"github.com/metocast/castctl/internal/shared"
	"github.com/metocast/castctl/internal/store"
)

// openSnapshotDB opens the configured snapshot database with migrations applied.
func (r *Runner) openSnapshotDB(configPath string) (*sql.DB, error) {
	config := r.loadOrCreateConfig(configPath)

	db, err := store.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := store.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// SnapshotSave captures the backend's current content into the local database.
func (r *Runner) SnapshotSave(ctx context.Context, cmd *cli.Command) error {
	episodes, err := r.client.AdminEpisodes(ctx)
	if err != nil {
		return err
	}

	links, err := r.client.AdminLinks(ctx)
	if err != nil {
		return err
	}

	db, err := r.openSnapshotDB(cmd.String("config"))
	if err != nil {
		return err
	}
	defer db.Close()

	snapshot, err := store.NewSnapshotRepository(db).Create(episodes, links)
	if err != nil {
		return err
	}

	r.logger.Info("snapshot saved", "id", snapshot.ID, "sequence", snapshot.Sequence)
	return r.writePlain("✓ Saved snapshot #%d (%d episodes, %d links)\nID: %s\n",
		snapshot.Sequence, len(episodes), len(links), snapshot.ID)
}

// SnapshotList prints stored snapshots.
func (r *Runner) SnapshotList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openSnapshotDB(cmd.String("config"))
	if err != nil {
		return err
	}
	defer db.Close()

	snapshots, err := store.NewSnapshotRepository(db).List()
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Snapshots (%d)", len(snapshots)))
	for _, s := range snapshots {
		r.writePlain("#%d  %s  %s\n", s.Sequence, s.CreatedAt.Format(time.RFC3339), s.ID)
	}
	return nil
}

// SnapshotExport writes a snapshot in the requested format.
func (r *Runner) SnapshotExport(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: snapshot id argument is required", shared.ErrMissingArgument)
	}

	db, err := r.openSnapshotDB(cmd.String("config"))
	if err != nil {
		return err
	}
	defer db.Close()

	snapshot, err := store.NewSnapshotRepository(db).Get(id)
	if err != nil {
		return err
	}

	var data []byte
	switch format := strings.ToLower(cmd.String("format")); format {
	case "json":
		data, err = formatter.SnapshotToJSON(snapshot)
	case "markdown", "md":
		data, err = formatter.SnapshotToMarkdown(snapshot)
	case "csv":
		// CSV has no single-document shape, episodes and links are
		// concatenated with a blank line between sections
		var episodes, links []byte
		if episodes, err = formatter.EpisodesToCSV(snapshot.Episodes); err == nil {
			if links, err = formatter.LinksToCSV(snapshot.Links); err == nil {
				data = append(episodes, '\n')
				data = append(data, links...)
			}
		}
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return err
	}

	if outputPath := cmd.String("output"); outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		return r.writePlain("✓ Exported snapshot #%d to %s\n", snapshot.Sequence, outputPath)
	}

	_, err = r.output.Write(data)
	return err
}
