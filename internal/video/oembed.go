// Package video resolves lesson video URLs to Vimeo oEmbed metadata.
package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"fxacademy/internal/config"
)

var ErrNotFound = errors.New("video not found")

// Metadata is the subset of the oEmbed response exposed with a lesson.
type Metadata struct {
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
	Duration     int    `json:"duration"`
	HTML         string `json:"html"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	VideoID      int64  `json:"video_id,omitempty"`
}

// Cache stores resolved metadata. A miss returns (false, nil).
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}

// Client fetches oEmbed metadata, consulting the cache first when one is configured.
type Client struct {
	endpoint string
	http     *http.Client
	cache    Cache
	cacheTTL time.Duration
}

// NewClient builds a client whose outbound requests are traced. cache may be nil.
func NewClient(c config.VimeoConfig, cache Cache) *Client {
	return &Client{
		endpoint: c.OEmbedURL,
		http: &http.Client{
			Timeout:   c.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cache:    cache,
		cacheTTL: c.CacheTTL,
	}
}

// Lookup resolves videoURL. Cache errors are ignored; the origin is asked instead.
func (c *Client) Lookup(ctx context.Context, videoURL string) (*Metadata, error) {
	if videoURL == "" {
		return nil, ErrNotFound
	}
	if c.cache != nil {
		var m Metadata
		if hit, err := c.cache.Get(ctx, videoURL, &m); err == nil && hit {
			return &m, nil
		}
	}

	m, err := c.fetch(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		_ = c.cache.Set(ctx, videoURL, m, c.cacheTTL)
	}
	return m, nil
}

func (c *Client) fetch(ctx context.Context, videoURL string) (*Metadata, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse oembed endpoint: %w", err)
	}
	q := u.Query()
	q.Set("url", videoURL)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oembed request: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound, res.StatusCode == http.StatusForbidden:
		return nil, ErrNotFound
	case res.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("oembed status %d", res.StatusCode)
	}

	var m Metadata
	if err := json.NewDecoder(res.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode oembed: %w", err)
	}
	return &m, nil
}
