package radio

import "errors"

// Vote pre-checks, run before any network call. The server re-validates
// everything; this only short-circuits obviously invalid submissions.
var (
	ErrNoCurrentSong        = errors.New("No song currently playing")
	ErrInvalidVote          = errors.New("Rating must be 1 or -1")
	ErrFingerprintNotLoaded = errors.New("User fingerprint not available")
)

// ValidateVote mirrors the server's shape checks for a rating submission.
func ValidateVote(artist, title string, rating int, fingerprint string) error {
	if artist == "" || title == "" {
		return ErrNoCurrentSong
	}
	if rating != 1 && rating != -1 {
		return ErrInvalidVote
	}
	if fingerprint == "" {
		return ErrFingerprintNotLoaded
	}
	return nil
}
