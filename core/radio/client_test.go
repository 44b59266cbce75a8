package radio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// fakeBackend stands in for both the metadata CDN and the rating API.
// The feed document and stored votes are mutable between requests.
type fakeBackend struct {
	mu    sync.Mutex
	meta  *Metadata
	feed  int // requests served by the feed endpoint
	votes map[string]int
	fail  bool // when set, every endpoint answers 500
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{votes: make(map[string]int)}
}

func (b *fakeBackend) setMetadata(meta *Metadata) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.meta = meta
}

func (b *fakeBackend) voteKey(artist, title, fingerprint string) string {
	return artist + "\x00" + title + "\x00" + fingerprint
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fail {
		http.Error(w, "backend down", http.StatusInternalServerError)
		return
	}

	writeJSON := func(v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}

	switch {
	case r.URL.Path == "/feed":
		b.feed++
		writeJSON(b.meta)

	case r.URL.Path == "/api/client-ip":
		writeJSON(map[string]string{"ip": "203.0.113.7"})

	case r.URL.Path == "/api/ratings" && r.Method == http.MethodPost:
		var body struct {
			Artist      string `json:"artist"`
			Title       string `json:"title"`
			Rating      int    `json:"rating"`
			Fingerprint string `json:"userFingerprint"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			writeJSON(map[string]string{"error": "Invalid request body"})
			return
		}
		if body.Rating != 1 && body.Rating != -1 {
			w.WriteHeader(http.StatusBadRequest)
			writeJSON(map[string]string{"error": "Rating must be 1 or -1"})
			return
		}
		b.votes[b.voteKey(body.Artist, body.Title, body.Fingerprint)] = body.Rating
		writeJSON(map[string]interface{}{"success": true})

	case strings.HasPrefix(r.URL.Path, "/api/ratings/"):
		// /api/ratings/{artist}/{title} or .../user/{fingerprint},
		// segments arrive percent-encoded.
		parts := strings.Split(strings.TrimPrefix(r.URL.EscapedPath(), "/api/ratings/"), "/")
		decode := func(s string) string {
			v, _ := url.PathUnescape(s)
			return v
		}

		switch {
		case len(parts) == 4 && parts[2] == "user":
			key := b.voteKey(decode(parts[0]), decode(parts[1]), decode(parts[3]))
			if rating, ok := b.votes[key]; ok {
				writeJSON(map[string]interface{}{"hasRated": true, "rating": rating})
			} else {
				writeJSON(map[string]interface{}{"hasRated": false, "rating": nil})
			}

		case len(parts) == 2:
			artist, title := decode(parts[0]), decode(parts[1])
			var up, down int64
			for key, rating := range b.votes {
				fields := strings.Split(key, "\x00")
				if fields[0] != artist || fields[1] != title {
					continue
				}
				if rating == 1 {
					up++
				} else {
					down++
				}
			}
			writeJSON(map[string]interface{}{
				"artist": artist, "title": title,
				"thumbsUp": up, "thumbsDown": down,
			})

		default:
			http.NotFound(w, r)
		}

	default:
		http.NotFound(w, r)
	}
}

// newTestClient starts a fake backend and returns a client pointed at it.
func newTestClient(t *testing.T) (*Client, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.URL+"/feed"), backend
}

func TestFetchMetadata(t *testing.T) {
	client, backend := newTestClient(t)
	backend.setMetadata(&Metadata{
		Artist:        "Fleetwood Mac",
		Title:         "Dreams",
		SourceQuality: "24-bit 96kHz",
	})

	meta, err := client.FetchMetadata(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Artist != "Fleetwood Mac" || meta.Title != "Dreams" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
}

func TestFetchMetadataServerError(t *testing.T) {
	client, backend := newTestClient(t)
	backend.fail = true

	if _, err := client.FetchMetadata(context.Background()); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestClientIP(t *testing.T) {
	client, _ := newTestClient(t)

	ip, err := client.ClientIP(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ip != "203.0.113.7" {
		t.Errorf("expected 203.0.113.7, got %q", ip)
	}
}

func TestSubmitAndReadBackRating(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	if err := client.SubmitRating(ctx, "Artist", "Song", 1, "fp-1"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	up, down, err := client.RatingCounts(ctx, "Artist", "Song")
	if err != nil {
		t.Fatalf("counts failed: %v", err)
	}
	if up != 1 || down != 0 {
		t.Errorf("expected 1/0, got %d/%d", up, down)
	}

	hasRated, rating, err := client.UserRating(ctx, "Artist", "Song", "fp-1")
	if err != nil {
		t.Fatalf("user rating failed: %v", err)
	}
	if !hasRated || rating != 1 {
		t.Errorf("expected own vote 1, got hasRated=%v rating=%d", hasRated, rating)
	}
}

func TestSubmitRatingSurfacesServerMessage(t *testing.T) {
	client, _ := newTestClient(t)

	err := client.SubmitRating(context.Background(), "Artist", "Song", 7, "fp")
	if err == nil {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(err.Error(), "Rating must be 1 or -1") {
		t.Errorf("expected server message in error, got %q", err.Error())
	}
}

func TestUserRatingAbsent(t *testing.T) {
	client, _ := newTestClient(t)

	hasRated, rating, err := client.UserRating(context.Background(), "Artist", "Song", "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasRated || rating != 0 {
		t.Errorf("expected no vote, got hasRated=%v rating=%d", hasRated, rating)
	}
}

func TestRatingCountsEscapesPathSegments(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	artist := "AC/DC"
	title := "Back & Forth?"
	if err := client.SubmitRating(ctx, artist, title, -1, "fp"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	up, down, err := client.RatingCounts(ctx, artist, title)
	if err != nil {
		t.Fatalf("counts failed: %v", err)
	}
	if up != 0 || down != 1 {
		t.Errorf("expected 0/1 for escaped track, got %d/%d", up, down)
	}
}
