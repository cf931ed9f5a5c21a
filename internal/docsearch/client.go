// Package docsearch consumes the hosted document-search service as a
// black box: a query in, ranked text chunks out. Vector indexing and
// ranking live on the service side.
package docsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Chunk is one ranked fragment of an indexed community document.
type Chunk struct {
	DocumentID string  `json:"documentId"`
	Title      string  `json:"title"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// Searcher is the surface the search handler consumes.
type Searcher interface {
	Search(ctx context.Context, communityID, query string) ([]Chunk, error)
}

// Client talks to the search service over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a search client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Search asks the service for chunks relevant to the query within one
// community's document set.
func (c *Client) Search(ctx context.Context, communityID, query string) ([]Chunk, error) {
	u := fmt.Sprintf("%s/search?community=%s&q=%s",
		c.baseURL, url.QueryEscape(communityID), url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Chunks []Chunk `json:"chunks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return payload.Chunks, nil
}
