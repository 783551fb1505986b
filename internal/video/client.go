package video

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Stream is one playable rendition of a hosted video.
type Stream struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
}

// Client resolves content IDs against the third-party video host API.
// The platform stores no video bytes itself.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a video host API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether a host API base is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// BaseHost returns the host of the configured API base, or "" when disabled.
func (c *Client) BaseHost() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// ResolveStreams fetches the playable stream URLs for a content ID.
func (c *Client) ResolveStreams(ctx context.Context, contentID string) ([]Stream, error) {
	endpoint := fmt.Sprintf("%s/videos/%s/streams", c.baseURL, contentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("video host returned %d", resp.StatusCode)
	}

	var payload struct {
		Streams []Stream `json:"streams"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode streams: %w", err)
	}
	if len(payload.Streams) == 0 {
		return nil, fmt.Errorf("no streams for content %s", contentID)
	}
	return payload.Streams, nil
}

// Fetch streams an arbitrary upstream URL, used by the proxy endpoint for
// playlist segments. The caller must close the returned body.
func (c *Client) Fetch(ctx context.Context, srcURL string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", fmt.Errorf("upstream returned %d", resp.StatusCode)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// FetchPlaylist downloads playlist bytes from a resolved stream URL.
func (c *Client) FetchPlaylist(ctx context.Context, streamURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("playlist fetch returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
