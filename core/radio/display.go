package radio

import (
	"fmt"
	"io"
	"sync"
)

// TerminalDisplay renders the player state as plain lines on a writer.
type TerminalDisplay struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTerminalDisplay creates a display writing to out.
func NewTerminalDisplay(out io.Writer) *TerminalDisplay {
	return &TerminalDisplay{out: out}
}

func (d *TerminalDisplay) NowPlaying(m *Metadata) {
	title := m.Title
	if title == "" {
		title = "Unknown Title"
	}
	if m.Date != "" {
		title = fmt.Sprintf("%s (%s)", title, m.Date)
	}

	artist := m.Artist
	if artist == "" {
		artist = "Unknown Artist"
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if m.Album != "" {
		fmt.Fprintf(d.out, "♪ %s — %s [%s]\n", artist, title, m.Album)
	} else {
		fmt.Fprintf(d.out, "♪ %s — %s\n", artist, title)
	}
}

func (d *TerminalDisplay) Quality(source, stream string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, "  Source quality: %s | Stream quality: %s\n", source, stream)
}

func (d *TerminalDisplay) RecentlyPlayed(tracks []TrackRef) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(tracks) == 0 {
		return
	}
	fmt.Fprintln(d.out, "  Recently played:")
	for _, t := range tracks {
		fmt.Fprintf(d.out, "    %s: %s\n", t.Artist, t.Title)
	}
}

func (d *TerminalDisplay) Ratings(thumbsUp, thumbsDown int64, ownRating *int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	own := ""
	if ownRating != nil {
		if *ownRating == 1 {
			own = " (you voted 👍)"
		} else {
			own = " (you voted 👎)"
		}
	}
	fmt.Fprintf(d.out, "  👍 %d  👎 %d%s\n", thumbsUp, thumbsDown, own)
}

func (d *TerminalDisplay) CoverArt(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, "  Cover art: %s\n", url)
}

func (d *TerminalDisplay) Elapsed(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, "  Elapsed: %s\n", text)
}

func (d *TerminalDisplay) Unavailable() {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintln(d.out, "♪ Unable to load track info")
}

func (d *TerminalDisplay) Notice(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, "! %s\n", msg)
}
