package radio

import "sync"

// Session owns the listener-side mutable state: the currently displayed track,
// the cached fingerprint, the elapsed-play counter and the last known rating
// state. The poller, the elapsed ticker and the vote path all go through it
// instead of sharing loose variables.
type Session struct {
	mu          sync.Mutex
	current     TrackRef
	fingerprint string
	elapsed     int
	thumbsUp    int64
	thumbsDown  int64
	ownRating   *int
}

// NewSession creates a session for one listener.
func NewSession(fingerprint string) *Session {
	return &Session{fingerprint: fingerprint}
}

// Fingerprint returns the listener's fingerprint.
func (s *Session) Fingerprint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fingerprint
}

// CurrentTrack returns the currently displayed track identity.
func (s *Session) CurrentTrack() TrackRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// UpdateTrack records the fetched track identity and reports whether it
// differs from the previously displayed one.
func (s *Session) UpdateTrack(track TrackRef) (changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == track {
		return false
	}
	s.current = track
	return true
}

// TickElapsed advances the elapsed-play counter by one second and returns it.
func (s *Session) TickElapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elapsed++
	return s.elapsed
}

// ResetElapsed zeroes the elapsed-play counter.
func (s *Session) ResetElapsed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elapsed = 0
}

// SetRatings records the latest counts and the listener's own vote.
func (s *Session) SetRatings(thumbsUp, thumbsDown int64, ownRating *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thumbsUp = thumbsUp
	s.thumbsDown = thumbsDown
	s.ownRating = ownRating
}

// Ratings returns the last known counts and own vote.
func (s *Session) Ratings() (thumbsUp, thumbsDown int64, ownRating *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thumbsUp, s.thumbsDown, s.ownRating
}
