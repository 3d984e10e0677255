package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/metocast/castctl/internal/models"
	"github.com/metocast/castctl/internal/shared"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func testEpisodes() []models.Episode {
	published := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	return []models.Episode{
		{
			ID:          1,
			Title:       "Aquecimento ENEM",
			Description: "Estudo dirigido",
			Tags:        models.TagList{"ENEM", "Educação"},
			Status:      models.StatusPublished,
			CreatedAt:   time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC),
			PublishedAt: &published,
		},
		{
			ID:          2,
			Title:       "Carreiras",
			Description: "Mercado de trabalho",
			Status:      models.StatusDraft,
			CreatedAt:   time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC),
		},
	}
}

func testLinks() []models.OfficialLink {
	return []models.OfficialLink{
		{ID: 1, Label: "Spotify", URL: "https://open.spotify.com/show/x", Type: models.LinkSpotify, Order: 1},
		{ID: 2, Label: "YouTube", URL: "https://youtube.com/@x", Type: models.LinkYouTube, Order: 2},
	}
}

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for _, m := range migrations {
			if m.Up == "" {
				t.Errorf("migration version %d missing up SQL", m.Version)
			}
			if m.Down == "" {
				t.Errorf("migration version %d missing down SQL", m.Version)
			}
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM snapshots LIMIT 1"); err != nil {
			t.Errorf("snapshots table should exist after migrations: %v", err)
		}

		// Re-running is a no-op
		if err := RunMigrations(db); err != nil {
			t.Errorf("re-running migrations should succeed: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM snapshots LIMIT 1"); err == nil {
			t.Error("snapshots table should be gone after rollback")
		}
	})
}

func TestSnapshotRepository(t *testing.T) {
	t.Run("Create And Get", func(t *testing.T) {
		repo := NewSnapshotRepository(newTestDB(t))

		created, err := repo.Create(testEpisodes(), testLinks())
		if err != nil {
			t.Fatalf("failed to create snapshot: %v", err)
		}
		if created.ID == "" {
			t.Error("expected generated snapshot ID")
		}
		if created.Sequence != 1 {
			t.Errorf("expected sequence 1, got %d", created.Sequence)
		}

		got, err := repo.Get(created.ID)
		if err != nil {
			t.Fatalf("failed to get snapshot: %v", err)
		}

		if len(got.Episodes) != 2 {
			t.Fatalf("expected 2 episodes, got %d", len(got.Episodes))
		}
		if got.Episodes[0].Title != "Aquecimento ENEM" {
			t.Errorf("unexpected first episode: %+v", got.Episodes[0])
		}
		if got.Episodes[0].Tags.String() != "ENEM, Educação" {
			t.Errorf("tags not round-tripped: %v", got.Episodes[0].Tags)
		}
		if got.Episodes[0].PublishedAt == nil {
			t.Error("expected published_at preserved")
		}
		if got.Episodes[1].PublishedAt != nil {
			t.Error("draft should have nil published_at")
		}

		if len(got.Links) != 2 {
			t.Fatalf("expected 2 links, got %d", len(got.Links))
		}
		if got.Links[0].Type != models.LinkSpotify || got.Links[0].Order != 1 {
			t.Errorf("unexpected first link: %+v", got.Links[0])
		}
	})

	t.Run("Sequence Increments", func(t *testing.T) {
		repo := NewSnapshotRepository(newTestDB(t))

		first, err := repo.Create(nil, nil)
		if err != nil {
			t.Fatalf("failed to create snapshot: %v", err)
		}
		second, err := repo.Create(nil, nil)
		if err != nil {
			t.Fatalf("failed to create snapshot: %v", err)
		}

		if second.Sequence != first.Sequence+1 {
			t.Errorf("expected sequence %d, got %d", first.Sequence+1, second.Sequence)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewSnapshotRepository(newTestDB(t))

		if _, err := repo.Create(testEpisodes(), nil); err != nil {
			t.Fatalf("failed to create snapshot: %v", err)
		}
		if _, err := repo.Create(nil, testLinks()); err != nil {
			t.Fatalf("failed to create snapshot: %v", err)
		}

		snapshots, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list snapshots: %v", err)
		}
		if len(snapshots) != 2 {
			t.Fatalf("expected 2 snapshots, got %d", len(snapshots))
		}
		if snapshots[0].Sequence != 1 || snapshots[1].Sequence != 2 {
			t.Errorf("snapshots out of order: %+v", snapshots)
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		repo := NewSnapshotRepository(newTestDB(t))
		if _, err := repo.Get("no-such-id"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewSnapshotRepository(newTestDB(t))

		created, err := repo.Create(testEpisodes(), testLinks())
		if err != nil {
			t.Fatalf("failed to create snapshot: %v", err)
		}

		if err := repo.Delete(created.ID); err != nil {
			t.Fatalf("failed to delete snapshot: %v", err)
		}
		if _, err := repo.Get(created.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Delete(created.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound for double delete, got %v", err)
		}
	})
}
