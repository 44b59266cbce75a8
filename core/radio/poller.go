package radio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CalicoFM/logger"
)

// Default quality lines shown when the feed omits them.
const (
	DefaultSourceQuality = "16-bit 44.1kHz"
	DefaultStreamQuality = "48kHz FLAC / HLS Lossless"
)

// Display receives everything the poller wants shown. Implementations render
// to a terminal, a websocket hub, or a test fake.
type Display interface {
	NowPlaying(m *Metadata)
	Quality(source, stream string)
	RecentlyPlayed(tracks []TrackRef)
	Ratings(thumbsUp, thumbsDown int64, ownRating *int)
	// CoverArt receives a fresh cover image URL whenever the track changes.
	CoverArt(url string)
	Elapsed(text string)
	// Unavailable replaces the now-playing area with a fixed
	// "unable to load" state and blanks the dependent fields.
	Unavailable()
	Notice(msg string)
}

// Poller drives the metadata loop: fetch, update the display, detect track
// changes and refresh ratings when one happens.
type Poller struct {
	client   *Client
	session  *Session
	display  Display
	interval time.Duration
	coverURL string // empty disables cover updates
}

// NewPoller 创建新的元数据轮询器
func NewPoller(client *Client, session *Session, display Display, interval time.Duration, coverURL string) *Poller {
	return &Poller{
		client:   client,
		session:  session,
		display:  display,
		interval: interval,
		coverURL: coverURL,
	}
}

// Run polls once immediately, then on every tick until the context is
// cancelled. A failed cycle degrades the display but never stops the loop;
// the next tick retries unconditionally.
func (p *Poller) Run(ctx context.Context) {
	p.pollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	meta, err := p.client.FetchMetadata(ctx)
	if err != nil {
		logger.Warn("metadata fetch failed", logger.ErrorField(err))
		p.display.Unavailable()
		return
	}

	// Now-playing and quality update on every cycle, changed or not.
	p.display.NowPlaying(meta)

	source := meta.SourceQuality
	if source == "" {
		source = DefaultSourceQuality
	}
	stream := meta.StreamQuality
	if stream == "" {
		stream = DefaultStreamQuality
	}
	p.display.Quality(source, stream)

	if p.session.UpdateTrack(meta.Track()) {
		if err := p.RefreshRatings(ctx); err != nil {
			logger.Warn("rating refresh failed", logger.ErrorField(err))
		}
		if p.coverURL != "" {
			p.display.CoverArt(coverArtURL(p.coverURL))
		}
		p.session.ResetElapsed()
		p.display.Elapsed(FormatElapsedTime(0))
	}

	p.display.RecentlyPlayed(meta.RecentlyPlayed())
}

// coverArtURL appends a millisecond timestamp so a cached copy from the
// previous track is never reused.
func coverArtURL(base string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%st=%d", base, sep, time.Now().UnixMilli())
}

// RefreshRatings re-queries the aggregate counts and the listener's own vote
// for the current track, then updates session and display.
func (p *Poller) RefreshRatings(ctx context.Context) error {
	track := p.session.CurrentTrack()
	if track.Artist == "" || track.Title == "" {
		return nil
	}

	thumbsUp, thumbsDown, err := p.client.RatingCounts(ctx, track.Artist, track.Title)
	if err != nil {
		return err
	}

	var own *int
	hasRated, rating, err := p.client.UserRating(ctx, track.Artist, track.Title, p.session.Fingerprint())
	if err != nil {
		return err
	}
	if hasRated {
		own = &rating
	}

	p.session.SetRatings(thumbsUp, thumbsDown, own)
	p.display.Ratings(thumbsUp, thumbsDown, own)
	return nil
}

// Vote validates and submits a thumb vote for the current track, then
// refreshes the rating display.
func (p *Poller) Vote(ctx context.Context, rating int) error {
	track := p.session.CurrentTrack()
	if err := ValidateVote(track.Artist, track.Title, rating, p.session.Fingerprint()); err != nil {
		return err
	}

	if err := p.client.SubmitRating(ctx, track.Artist, track.Title, rating, p.session.Fingerprint()); err != nil {
		return err
	}
	return p.RefreshRatings(ctx)
}
