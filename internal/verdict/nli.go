package verdict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vkuksa/factgraph/internal/model"
)

// RemoteNLI calls a served MNLI model over HTTP
type RemoteNLI struct {
	url        string
	httpClient *http.Client
	userAgent  string
}

// NewRemoteNLI creates a client for the NLI scoring service
func NewRemoteNLI(url string, timeout time.Duration, userAgent string) *RemoteNLI {
	return &RemoteNLI{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

type nliRequest struct {
	Hypothesis string   `json:"hypothesis"`
	Premises   []string `json:"premises"`
}

// Batch classifies every premise against the hypothesis, in input order
func (c *RemoteNLI) Batch(ctx context.Context, hypothesis string, premises []string) ([]model.NLIResult, error) {
	if len(premises) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(nliRequest{Hypothesis: hypothesis, Premises: premises})
	if err != nil {
		return nil, fmt.Errorf("marshal nli request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nli request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nli service returned %d", resp.StatusCode)
	}

	var results []model.NLIResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode nli response: %w", err)
	}
	if len(results) != len(premises) {
		return nil, fmt.Errorf("nli result count mismatch: want %d, got %d", len(premises), len(results))
	}
	return results, nil
}
