package radio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the metadata feed and the rating backend.
type Client struct {
	apiBaseURL  string
	metadataURL string
	httpClient  *http.Client
}

// NewClient 创建新的API客户端
func NewClient(apiBaseURL, metadataURL string) *Client {
	return &Client{
		apiBaseURL:  apiBaseURL,
		metadataURL: metadataURL,
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

// FetchMetadata retrieves the current now-playing document from the feed.
func (c *Client) FetchMetadata(ctx context.Context) (*Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.metadataURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata feed returned status %d", resp.StatusCode)
	}

	meta := &Metadata{}
	if err := json.NewDecoder(resp.Body).Decode(meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return meta, nil
}

// ClientIP asks the backend for the caller's apparent public IP.
func (c *Client) ClientIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/api/client-ip", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build client-ip request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch client ip: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode client ip: %w", err)
	}
	return body.IP, nil
}

// SubmitRating casts or updates a vote for the given track.
func (c *Client) SubmitRating(ctx context.Context, artist, title string, rating int, fingerprint string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"artist":          artist,
		"title":           title,
		"rating":          rating,
		"userFingerprint": fingerprint,
	})
	if err != nil {
		return fmt.Errorf("failed to encode rating: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+"/api/ratings", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build rating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to submit rating: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
			return fmt.Errorf("rating rejected: %s", body.Error)
		}
		return fmt.Errorf("rating submission returned status %d", resp.StatusCode)
	}
	return nil
}

// RatingCounts fetches the aggregate thumbs up/down counts for a track.
func (c *Client) RatingCounts(ctx context.Context, artist, title string) (thumbsUp, thumbsDown int64, err error) {
	endpoint := fmt.Sprintf("%s/api/ratings/%s/%s",
		c.apiBaseURL, url.PathEscape(artist), url.PathEscape(title))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build counts request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch rating counts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("rating counts returned status %d", resp.StatusCode)
	}

	var body struct {
		ThumbsUp   int64 `json:"thumbsUp"`
		ThumbsDown int64 `json:"thumbsDown"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, 0, fmt.Errorf("failed to decode rating counts: %w", err)
	}
	return body.ThumbsUp, body.ThumbsDown, nil
}

// UserRating fetches this listener's own vote on a track, if any.
func (c *Client) UserRating(ctx context.Context, artist, title, fingerprint string) (hasRated bool, rating int, err error) {
	endpoint := fmt.Sprintf("%s/api/ratings/%s/%s/user/%s",
		c.apiBaseURL, url.PathEscape(artist), url.PathEscape(title), url.PathEscape(fingerprint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, 0, fmt.Errorf("failed to build user rating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, 0, fmt.Errorf("failed to fetch user rating: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, 0, fmt.Errorf("user rating returned status %d", resp.StatusCode)
	}

	var body struct {
		HasRated bool `json:"hasRated"`
		Rating   *int `json:"rating"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, 0, fmt.Errorf("failed to decode user rating: %w", err)
	}
	if body.HasRated && body.Rating != nil {
		return true, *body.Rating, nil
	}
	return false, 0, nil
}
