package model

import (
	"errors"
	"time"
	"unicode/utf8"
)

// MaxFieldLength is the VARCHAR(255) limit on artist, title and fingerprint.
// Measured in characters, not bytes.
const MaxFieldLength = 255

// Rating is one listener's vote on one track. At most one row may exist per
// (artist, title, user_fingerprint) triple; repeat votes overwrite in place.
type Rating struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Artist          string    `json:"artist" gorm:"type:varchar(255);not null;uniqueIndex:uq_song_user,priority:1"`
	Title           string    `json:"title" gorm:"type:varchar(255);not null;uniqueIndex:uq_song_user,priority:2"`
	UserFingerprint string    `json:"userFingerprint" gorm:"column:user_fingerprint;type:varchar(255);not null;uniqueIndex:uq_song_user,priority:3"`
	Rating          int       `json:"rating" gorm:"not null"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TableName overrides the default pluralization.
func (Rating) TableName() string {
	return "song_ratings"
}

// RatingCounts is the aggregate for one track.
type RatingCounts struct {
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	ThumbsUp   int64  `json:"thumbsUp"`
	ThumbsDown int64  `json:"thumbsDown"`
}

// Validation failures for rating submissions. The message text is part of the
// API contract and is returned verbatim in 400 responses.
var (
	ErrMissingFields      = errors.New("Missing required fields")
	ErrFieldsNotStrings   = errors.New("Artist, title, and userFingerprint must be strings")
	ErrRatingOutOfDomain  = errors.New("Rating must be 1 or -1")
	ErrArtistTooLong      = errors.New("Artist name exceeds maximum length of 255 characters")
	ErrTitleTooLong       = errors.New("Title exceeds maximum length of 255 characters")
	ErrFingerprintTooLong = errors.New("User fingerprint exceeds maximum length of 255 characters")
)

// RatingSubmission is the raw POST /api/ratings body. Fields stay untyped so a
// client sending a number or object where a string belongs gets the documented
// validation message instead of a decode error.
type RatingSubmission struct {
	Artist          interface{} `json:"artist"`
	Title           interface{} `json:"title"`
	Rating          interface{} `json:"rating"`
	UserFingerprint interface{} `json:"userFingerprint"`
}

// Validate checks a submission and, if it passes, returns the typed rating row
// to upsert. Checks run in a fixed order and the first failure wins:
// presence, string types, rating domain, then per-field length.
func (s *RatingSubmission) Validate() (*Rating, error) {
	if isMissing(s.Artist) || isMissing(s.Title) || isMissing(s.Rating) || isMissing(s.UserFingerprint) {
		return nil, ErrMissingFields
	}

	artist, artistOK := s.Artist.(string)
	title, titleOK := s.Title.(string)
	fingerprint, fingerprintOK := s.UserFingerprint.(string)
	if !artistOK || !titleOK || !fingerprintOK {
		return nil, ErrFieldsNotStrings
	}

	// JSON numbers arrive as float64. Anything that is not exactly 1 or -1,
	// including non-numeric values, is out of domain.
	value, ok := s.Rating.(float64)
	if !ok || (value != 1 && value != -1) {
		return nil, ErrRatingOutOfDomain
	}

	if utf8.RuneCountInString(artist) > MaxFieldLength {
		return nil, ErrArtistTooLong
	}
	if utf8.RuneCountInString(title) > MaxFieldLength {
		return nil, ErrTitleTooLong
	}
	if utf8.RuneCountInString(fingerprint) > MaxFieldLength {
		return nil, ErrFingerprintTooLong
	}

	return &Rating{
		Artist:          artist,
		Title:           title,
		UserFingerprint: fingerprint,
		Rating:          int(value),
	}, nil
}

// isMissing treats absent, empty string, zero and false all as missing.
func isMissing(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case float64:
		return val == 0
	case bool:
		return !val
	default:
		return false
	}
}
