// Package search implements the web evidence branch: query
// paraphrasing, the search API client, and optional page expansion.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vkuksa/factgraph/internal/config"
	"github.com/vkuksa/factgraph/internal/model"
	"github.com/vkuksa/factgraph/internal/util"
)

// WebSearch returns organic results for a query
type WebSearch interface {
	Search(ctx context.Context, query string) ([]model.SearchResult, error)
}

// SearchAPIClient queries a searchapi.io-compatible endpoint
type SearchAPIClient struct {
	endpoint   string
	apiKey     string
	numResults int
	httpClient *http.Client
	userAgent  string
}

// NewSearchAPIClient creates a web search client from config
func NewSearchAPIClient(cfg config.SearchConfig, httpCfg config.HTTPConfig) *SearchAPIClient {
	return &SearchAPIClient{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		numResults: cfg.NumResults,
		httpClient: util.NewHTTPClient(cfg.Timeout, httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
		userAgent:  httpCfg.UserAgent,
	}
}

type searchResponse struct {
	OrganicResults []model.SearchResult `json:"organic_results"`
}

// Search runs one query and returns the organic results in rank order
func (c *SearchAPIClient) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("web search is disabled: no API key configured")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("engine", "google")
	params.Set("num", strconv.Itoa(c.numResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return parsed.OrganicResults, nil
}
