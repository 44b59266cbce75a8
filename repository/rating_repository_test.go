package repository

import (
	"context"
	"path/filepath"
	"testing"

	"CalicoFM/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestRepo creates a repository backed by a temporary sqlite database
// with the same unique constraint the production schema carries.
func setupTestRepo(t *testing.T) RatingRepository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "ratings.sqlite3")
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&model.Rating{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return NewGormRatingRepository(gdb)
}

func submit(t *testing.T, repo RatingRepository, artist, title, fingerprint string, rating int) *model.Rating {
	t.Helper()
	stored, err := repo.Upsert(context.Background(), &model.Rating{
		Artist:          artist,
		Title:           title,
		UserFingerprint: fingerprint,
		Rating:          rating,
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	return stored
}

func TestUpsertCreatesRow(t *testing.T) {
	repo := setupTestRepo(t)

	stored := submit(t, repo, "Test Artist", "Test Song", "fp-1", 1)
	if stored.ID == 0 {
		t.Error("expected stored row to have an ID")
	}
	if stored.Rating != 1 {
		t.Errorf("expected rating 1, got %d", stored.Rating)
	}
	if stored.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestUpsertOverwritesSameTriple(t *testing.T) {
	repo := setupTestRepo(t)

	first := submit(t, repo, "Test Artist", "Test Song", "fp-1", 1)
	second := submit(t, repo, "Test Artist", "Test Song", "fp-1", -1)

	if second.Rating != -1 {
		t.Errorf("expected second submission to win, got %d", second.Rating)
	}
	if second.ID != first.ID {
		t.Errorf("expected the same row to be updated, got IDs %d and %d", first.ID, second.ID)
	}

	// Exactly one row for the triple.
	up, down, err := repo.CountsFor(context.Background(), "Test Artist", "Test Song")
	if err != nil {
		t.Fatalf("counts failed: %v", err)
	}
	if up != 0 || down != 1 {
		t.Errorf("expected counts 0/1 after overwrite, got %d/%d", up, down)
	}
}

func TestCountsForUnratedTrack(t *testing.T) {
	repo := setupTestRepo(t)

	up, down, err := repo.CountsFor(context.Background(), "Nobody", "Nothing")
	if err != nil {
		t.Fatalf("expected zero counts for unrated track, got error %v", err)
	}
	if up != 0 || down != 0 {
		t.Errorf("expected 0/0, got %d/%d", up, down)
	}
}

func TestCountsAggregateAcrossListeners(t *testing.T) {
	repo := setupTestRepo(t)

	submit(t, repo, "Artist", "Song", "user1", 1)
	submit(t, repo, "Artist", "Song", "user2", 1)
	submit(t, repo, "Artist", "Song", "user3", -1)
	// Different track, must not leak into the aggregate.
	submit(t, repo, "Artist", "Other Song", "user1", -1)

	up, down, err := repo.CountsFor(context.Background(), "Artist", "Song")
	if err != nil {
		t.Fatalf("counts failed: %v", err)
	}
	if up != 2 || down != 1 {
		t.Errorf("expected 2/1, got %d/%d", up, down)
	}
}

func TestCountsAreCaseSensitive(t *testing.T) {
	repo := setupTestRepo(t)

	submit(t, repo, "Artist", "Song", "user1", 1)

	up, down, err := repo.CountsFor(context.Background(), "artist", "song")
	if err != nil {
		t.Fatalf("counts failed: %v", err)
	}
	if up != 0 || down != 0 {
		t.Errorf("lowercased lookup should not match, got %d/%d", up, down)
	}
}

func TestUserRatingAbsent(t *testing.T) {
	repo := setupTestRepo(t)

	rating, err := repo.UserRating(context.Background(), "Artist", "Song", "fp-1")
	if err != nil {
		t.Fatalf("expected nil row for unrated triple, got error %v", err)
	}
	if rating != nil {
		t.Errorf("expected nil row, got %+v", rating)
	}
}

func TestUserRatingPerListener(t *testing.T) {
	repo := setupTestRepo(t)

	submit(t, repo, "Artist", "Song", "user1", 1)
	submit(t, repo, "Artist", "Song", "user2", -1)

	r1, err := repo.UserRating(context.Background(), "Artist", "Song", "user1")
	if err != nil || r1 == nil || r1.Rating != 1 {
		t.Errorf("user1: expected rating 1, got %+v (err %v)", r1, err)
	}
	r2, err := repo.UserRating(context.Background(), "Artist", "Song", "user2")
	if err != nil || r2 == nil || r2.Rating != -1 {
		t.Errorf("user2: expected rating -1, got %+v (err %v)", r2, err)
	}
}

func TestVotingWorkflow(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	// A votes up, B votes down.
	submit(t, repo, "Artist", "Song", "userA", 1)
	submit(t, repo, "Artist", "Song", "userB", -1)

	up, down, err := repo.CountsFor(ctx, "Artist", "Song")
	if err != nil {
		t.Fatalf("counts failed: %v", err)
	}
	if up != 1 || down != 1 {
		t.Fatalf("expected 1/1, got %d/%d", up, down)
	}

	// A changes their mind.
	submit(t, repo, "Artist", "Song", "userA", -1)

	up, down, err = repo.CountsFor(ctx, "Artist", "Song")
	if err != nil {
		t.Fatalf("counts failed: %v", err)
	}
	if up != 0 || down != 2 {
		t.Fatalf("expected 0/2 after the switch, got %d/%d", up, down)
	}

	rating, err := repo.UserRating(ctx, "Artist", "Song", "userA")
	if err != nil || rating == nil {
		t.Fatalf("expected userA to have a rating, got %+v (err %v)", rating, err)
	}
	if rating.Rating != -1 {
		t.Errorf("expected userA's rating to be -1, got %d", rating.Rating)
	}
}

func TestSpecialCharactersSurvive(t *testing.T) {
	repo := setupTestRepo(t)

	artist := "Artist's Name & Co."
	title := `Song "Title" (Remix)`
	stored := submit(t, repo, artist, title, "fp-1", 1)

	if stored.Artist != artist || stored.Title != title {
		t.Errorf("special characters mangled: %+v", stored)
	}

	up, _, err := repo.CountsFor(context.Background(), artist, title)
	if err != nil || up != 1 {
		t.Errorf("expected 1 thumb up for the exact strings, got %d (err %v)", up, err)
	}
}
