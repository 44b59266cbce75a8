package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CalicoFM/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingRepository defines the interface for rating data operations.
type RatingRepository interface {
	// Upsert inserts the rating, or overwrites rating value and timestamp if
	// the (artist, title, user_fingerprint) triple already exists. Returns the
	// resulting row.
	Upsert(ctx context.Context, rating *model.Rating) (*model.Rating, error)
	// CountsFor returns the number of +1 and -1 votes for the exact
	// (artist, title) pair. Unknown tracks yield zero counts, not an error.
	CountsFor(ctx context.Context, artist, title string) (thumbsUp, thumbsDown int64, err error)
	// UserRating returns the row for the exact triple, or nil if the listener
	// has not rated the track.
	UserRating(ctx context.Context, artist, title, fingerprint string) (*model.Rating, error)
}

// gormRatingRepository implements RatingRepository on GORM.
type gormRatingRepository struct {
	db *gorm.DB
}

// NewGormRatingRepository creates a new instance of gormRatingRepository.
func NewGormRatingRepository(db *gorm.DB) RatingRepository {
	return &gormRatingRepository{db: db}
}

func (r *gormRatingRepository) Upsert(ctx context.Context, rating *model.Rating) (*model.Rating, error) {
	rating.CreatedAt = time.Now()

	// Native insert-or-update on the unique key. Concurrent submissions for
	// the same triple resolve inside the store; last commit wins and the
	// constraint guarantees a single surviving row.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "artist"}, {Name: "title"}, {Name: "user_fingerprint"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"rating":     rating.Rating,
			"created_at": rating.CreatedAt,
		}),
	}).Create(rating).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert rating: %w", err)
	}

	// Re-read so the caller gets the stored row (the conflict path does not
	// report the existing row's ID).
	stored, err := r.UserRating(ctx, rating.Artist, rating.Title, rating.UserFingerprint)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("rating row missing after upsert")
	}
	return stored, nil
}

func (r *gormRatingRepository) CountsFor(ctx context.Context, artist, title string) (int64, int64, error) {
	var row struct {
		ThumbsUp   int64
		ThumbsDown int64
	}

	err := r.db.WithContext(ctx).
		Model(&model.Rating{}).
		Select("COALESCE(SUM(CASE WHEN rating = 1 THEN 1 ELSE 0 END), 0) AS thumbs_up, "+
			"COALESCE(SUM(CASE WHEN rating = -1 THEN 1 ELSE 0 END), 0) AS thumbs_down").
		Where("artist = ? AND title = ?", artist, title).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count ratings for %q/%q: %w", artist, title, err)
	}

	return row.ThumbsUp, row.ThumbsDown, nil
}

func (r *gormRatingRepository) UserRating(ctx context.Context, artist, title, fingerprint string) (*model.Rating, error) {
	rating := &model.Rating{}
	err := r.db.WithContext(ctx).
		Where("artist = ? AND title = ? AND user_fingerprint = ?", artist, title, fingerprint).
		First(rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not rated
		}
		return nil, fmt.Errorf("failed to query user rating: %w", err)
	}
	return rating, nil
}
