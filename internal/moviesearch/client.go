package moviesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnavailable is returned when the upstream movie database cannot serve
// the search.
var ErrUnavailable = errors.New("moviesearch: upstream unavailable")

// Result is one catalog hit from the external movie database.
type Result struct {
	ExternalID  string  `json:"id"`
	Title       string  `json:"title"`
	ReleaseYear *int    `json:"year,omitempty"`
	Overview    *string `json:"overview,omitempty"`
	PosterURL   *string `json:"posterUrl,omitempty"`
}

// Client defines the contract for querying the upstream movie database.
type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *log.Logger
}

// NewHTTPClient constructs a new HTTP-backed movie search client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *log.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = log.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse movie search url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// Search queries the upstream database by free-text title. An empty result
// list is a successful response, not an error.
func (c *HTTPClient) Search(ctx context.Context, query string) ([]Result, error) {
	rel := &url.URL{Path: "/search"}
	q := rel.Query()
	q.Set("query", query)
	rel.RawQuery = q.Encode()
	endpoint := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload struct {
			Results []Result `json:"results"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode search response: %w", err)
		}
		if payload.Results == nil {
			payload.Results = []Result{}
		}
		return payload.Results, nil
	case http.StatusNotFound:
		return []Result{}, nil
	default:
		c.logger.Printf("moviesearch: unexpected status %d for query %q", resp.StatusCode, query)
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
}
