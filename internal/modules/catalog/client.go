package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultSearchURL is the catalog's keyword search endpoint.
	DefaultSearchURL = "https://www.ediblearrangements.com/api/search/"
	// DefaultBaseURL prefixes relative product page paths.
	DefaultBaseURL = "https://www.ediblearrangements.com"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client fetches products for one keyword at a time from the catalog search endpoint.
type Client struct {
	httpClient *http.Client
	searchURL  string
	baseURL    string
}

// NewClient creates a Client. Zero values fall back to the public endpoint and a 15s timeout.
func NewClient(searchURL, baseURL string, timeout time.Duration) *Client {
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		searchURL:  searchURL,
		baseURL:    baseURL,
	}
}

type searchRequest struct {
	Keyword string `json:"keyword"`
}

// FetchKeyword posts one keyword and parses the returned list.
// A response that is not a JSON array yields no products; unparseable records are skipped.
func (c *Client) FetchKeyword(ctx context.Context, keyword string) ([]Product, error) {
	body, err := json.Marshal(searchRequest{Keyword: keyword})
	if err != nil {
		return nil, fmt.Errorf("catalog: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("catalog: unexpected status %d for keyword %q", resp.StatusCode, keyword)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("catalog: decode response: %w", err)
	}

	rawList, ok := data.([]any)
	if !ok {
		return []Product{}, nil
	}
	products := make([]Product, 0, len(rawList))
	for _, item := range rawList {
		raw, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if p, ok := ParseProduct(raw, c.baseURL); ok {
			products = append(products, p)
		}
	}
	return products, nil
}
