package rank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RemoteCrossEncoder calls a remotely served reranking model (a
// sentence-transformers cross-encoder behind an HTTP endpoint).
type RemoteCrossEncoder struct {
	url        string
	httpClient *http.Client
	userAgent  string
}

// NewRemoteCrossEncoder creates a client for the scoring service
func NewRemoteCrossEncoder(url string, timeout time.Duration, userAgent string) *RemoteCrossEncoder {
	return &RemoteCrossEncoder{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankResponse struct {
	Scores []float64 `json:"scores"`
}

// Score returns one relevance score per text, in input order
func (c *RemoteCrossEncoder) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(rerankRequest{Query: query, Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank service returned %d", resp.StatusCode)
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}
	if len(parsed.Scores) != len(texts) {
		return nil, fmt.Errorf("rerank score count mismatch: want %d, got %d", len(texts), len(parsed.Scores))
	}
	return parsed.Scores, nil
}
