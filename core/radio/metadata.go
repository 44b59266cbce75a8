package radio

// Metadata is the now-playing document published by the stream CDN,
// polled by the player and the server-side relay.
type Metadata struct {
	Artist        string `json:"artist"`
	Title         string `json:"title"`
	Album         string `json:"album"`
	Date          string `json:"date"` // release year
	SourceQuality string `json:"source_quality"`
	StreamQuality string `json:"stream_quality"`

	PrevArtist1 string `json:"prev_artist_1"`
	PrevTitle1  string `json:"prev_title_1"`
	PrevArtist2 string `json:"prev_artist_2"`
	PrevTitle2  string `json:"prev_title_2"`
	PrevArtist3 string `json:"prev_artist_3"`
	PrevTitle3  string `json:"prev_title_3"`
	PrevArtist4 string `json:"prev_artist_4"`
	PrevTitle4  string `json:"prev_title_4"`
	PrevArtist5 string `json:"prev_artist_5"`
	PrevTitle5  string `json:"prev_title_5"`
}

// TrackRef identifies the currently displayed song. Comparison is exact and
// case-sensitive on both fields.
type TrackRef struct {
	Artist string
	Title  string
}

// Track returns the current track identity.
func (m *Metadata) Track() TrackRef {
	return TrackRef{Artist: m.Artist, Title: m.Title}
}

// RecentlyPlayed returns the previous-track slots in order 1..5, skipping any
// slot where artist or title is absent.
func (m *Metadata) RecentlyPlayed() []TrackRef {
	slots := []TrackRef{
		{m.PrevArtist1, m.PrevTitle1},
		{m.PrevArtist2, m.PrevTitle2},
		{m.PrevArtist3, m.PrevTitle3},
		{m.PrevArtist4, m.PrevTitle4},
		{m.PrevArtist5, m.PrevTitle5},
	}

	tracks := make([]TrackRef, 0, len(slots))
	for _, slot := range slots {
		if slot.Artist == "" || slot.Title == "" {
			continue
		}
		tracks = append(tracks, slot)
	}
	return tracks
}
