// Package pexels is a minimal client for the Pexels photo search API.
package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/saabsa/site-builder/internal/blog"
)

// DefaultBaseURL is the public API host.
const DefaultBaseURL = "https://api.pexels.com"

const maxErrorBody = 512

// Config controls the client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client searches Pexels for a single landscape photo per keyword.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// New builds a Client. An empty BaseURL selects DefaultBaseURL.
func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
	}
}

type searchResponse struct {
	Photos []struct {
		URL             string `json:"url"`
		Photographer    string `json:"photographer"`
		PhotographerURL string `json:"photographer_url"`
		Src             struct {
			Large2x string `json:"large2x"`
			Large   string `json:"large"`
			Medium  string `json:"medium"`
		} `json:"src"`
	} `json:"photos"`
}

// Search returns the first hit for keyword, or nil when there are none.
func (c *Client) Search(ctx context.Context, keyword string) (*blog.Photo, error) {
	q := url.Values{}
	q.Set("query", keyword)
	q.Set("per_page", "1")
	q.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build pexels request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels search %q: %w", keyword, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("pexels search %q: status %d: %s", keyword, resp.StatusCode, body)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode pexels response: %w", err)
	}
	if len(decoded.Photos) == 0 {
		return nil, nil
	}

	hit := decoded.Photos[0]
	primary := hit.Src.Large2x
	if primary == "" {
		primary = hit.Src.Large
	}
	return &blog.Photo{
		URL:             primary,
		Medium:          hit.Src.Medium,
		Photographer:    hit.Photographer,
		PhotographerURL: hit.PhotographerURL,
		PageURL:         hit.URL,
	}, nil
}
