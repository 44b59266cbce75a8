package radio

import (
	"bytes"
	"strings"
	"testing"
)

func TestTerminalDisplayNowPlaying(t *testing.T) {
	var buf bytes.Buffer
	d := NewTerminalDisplay(&buf)

	d.NowPlaying(&Metadata{
		Artist: "Fleetwood Mac",
		Title:  "Dreams",
		Album:  "Rumours",
		Date:   "1977",
	})

	got := buf.String()
	want := "♪ Fleetwood Mac — Dreams (1977) [Rumours]\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTerminalDisplayFallbacks(t *testing.T) {
	var buf bytes.Buffer
	d := NewTerminalDisplay(&buf)

	d.NowPlaying(&Metadata{})

	got := buf.String()
	if !strings.Contains(got, "Unknown Artist") || !strings.Contains(got, "Unknown Title") {
		t.Errorf("expected placeholder names, got %q", got)
	}
}

func TestTerminalDisplayUnavailable(t *testing.T) {
	var buf bytes.Buffer
	d := NewTerminalDisplay(&buf)

	d.Unavailable()

	if got := buf.String(); got != "♪ Unable to load track info\n" {
		t.Errorf("unexpected degraded line: %q", got)
	}
}

func TestTerminalDisplayRatings(t *testing.T) {
	var buf bytes.Buffer
	d := NewTerminalDisplay(&buf)

	down := -1
	d.Ratings(3, 1, &down)

	got := buf.String()
	if !strings.Contains(got, "👍 3") || !strings.Contains(got, "👎 1") {
		t.Errorf("counts missing from %q", got)
	}
	if !strings.Contains(got, "you voted 👎") {
		t.Errorf("own vote missing from %q", got)
	}
}

func TestTerminalDisplayCoverArt(t *testing.T) {
	var buf bytes.Buffer
	d := NewTerminalDisplay(&buf)

	d.CoverArt("https://cdn.example/cover.jpg?t=123")

	if got := buf.String(); got != "  Cover art: https://cdn.example/cover.jpg?t=123\n" {
		t.Errorf("unexpected cover line: %q", got)
	}
}

func TestTerminalDisplayRecentlyPlayedEmpty(t *testing.T) {
	var buf bytes.Buffer
	d := NewTerminalDisplay(&buf)

	d.RecentlyPlayed(nil)

	if buf.Len() != 0 {
		t.Errorf("expected no output for empty history, got %q", buf.String())
	}
}
