package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the Mercado Libre API host.
const DefaultBaseURL = "https://api.mercadolibre.com"

const (
	DefaultSort  = "relevance"
	DefaultLimit = 10
)

var (
	// ErrInvalidQuery means the search query was empty or whitespace;
	// no network call was made.
	ErrInvalidQuery = errors.New("marketplace: search query cannot be empty")

	// ErrMalformedResponse means the search endpoint answered 2xx but
	// the body did not have the expected shape.
	ErrMalformedResponse = errors.New("marketplace: malformed search response")
)

// UpstreamError means the search endpoint returned an error status, or
// the request never completed (Status 0).
type UpstreamError struct {
	Status int
	Body   string
	cause  error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("marketplace: search returned HTTP %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("marketplace: search request failed: %v", e.cause)
}

func (e *UpstreamError) Unwrap() error { return e.cause }

// Product is one normalized search hit.
type Product struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	CurrencyID string  `json:"currency_id"`
	Thumbnail  string  `json:"thumbnail"`
	Permalink  string  `json:"permalink"`
}

// Paging mirrors the upstream paging block.
type Paging struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SearchResult holds normalized products in upstream (relevance) order.
type SearchResult struct {
	Products []Product `json:"products"`
	Paging   Paging    `json:"paging"`
}

// SearchOptions tune sorting and pagination. Zero values get the
// upstream defaults.
type SearchOptions struct {
	Sort   string
	Offset int
	Limit  int
}

// Client calls the Mercado Libre search API. One upstream round trip
// per call: no retries, no caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a search client with a bounded request timeout.
func NewClient(timeout time.Duration) *Client {
	return NewClientWith(DefaultBaseURL, &http.Client{Timeout: timeout})
}

// NewClientWith creates a search client against a specific base URL
// with the given HTTP client.
func NewClientWith(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Search queries sites/{siteID}/search with the given access token and
// returns the normalized result list.
func (c *Client) Search(ctx context.Context, siteID, accessToken, query string, opts SearchOptions) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrInvalidQuery
	}
	if opts.Sort == "" {
		opts.Sort = DefaultSort
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	url := fmt.Sprintf("%s/sites/%s/search", c.baseURL, siteID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &UpstreamError{cause: err}
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("sort", opts.Sort)
	q.Set("offset", strconv.Itoa(opts.Offset))
	q.Set("limit", strconv.Itoa(opts.Limit))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload struct {
		Results json.RawMessage `json:"results"`
		Paging  Paging          `json:"paging"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Results == nil {
		return nil, fmt.Errorf("%w: missing results field", ErrMalformedResponse)
	}

	var items []Product
	if err := json.Unmarshal(payload.Results, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return &SearchResult{Products: items, Paging: payload.Paging}, nil
}
