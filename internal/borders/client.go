package borders

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultURL is the public world atlas at 1:110m resolution.
const DefaultURL = "https://cdn.jsdelivr.net/npm/world-atlas@2/countries-110m.json"

// maxBody bounds the dataset download.
const maxBody = 32 << 20

// Client downloads the border dataset.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a client for url, or DefaultURL when url is empty.
func NewClient(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url:        strings.TrimSpace(url),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// URL returns the dataset location.
func (c *Client) URL() string {
	return c.url
}

// Fetch downloads the dataset once.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("border request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("border request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read border dataset: %w", err)
	}
	return body, nil
}
