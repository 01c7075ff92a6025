package kg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vkuksa/factgraph/internal/util"
)

// Waiter throttles requests per endpoint host
type Waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// SPARQLClient speaks the SPARQL 1.1 protocol (query via GET, JSON
// results) against a single endpoint.
type SPARQLClient struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
	limiter    Waiter
}

// NewSPARQLClient creates a client for one endpoint. limiter may be nil.
func NewSPARQLClient(endpoint string, timeout time.Duration, userAgent string, limiter Waiter, httpProxy, httpsProxy, noProxy string) *SPARQLClient {
	return &SPARQLClient{
		endpoint:   endpoint,
		httpClient: util.NewHTTPClient(timeout, httpProxy, httpsProxy, noProxy),
		userAgent:  userAgent,
		limiter:    limiter,
	}
}

// Endpoint returns the endpoint URL this client queries
func (c *SPARQLClient) Endpoint() string { return c.endpoint }

// bindingValue is one cell of a SPARQL JSON result row
type bindingValue struct {
	Type  string `json:"type"` // "uri" | "literal" | "bnode"
	Value string `json:"value"`
	Lang  string `json:"xml:lang,omitempty"`
}

// Binding is one result row, keyed by variable name
type Binding map[string]bindingValue

type sparqlResponse struct {
	Results struct {
		Bindings []Binding `json:"bindings"`
	} `json:"results"`
}

// Query runs a SPARQL query and returns the result rows
func (c *SPARQLClient) Query(ctx context.Context, query string) ([]Binding, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sparql query: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// drain a little for connection reuse before bailing
		_, _ = io.CopyN(io.Discard, resp.Body, 1024)
		return nil, fmt.Errorf("sparql endpoint returned %d", resp.StatusCode)
	}

	var parsed sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode sparql response: %w", err)
	}
	return parsed.Results.Bindings, nil
}
