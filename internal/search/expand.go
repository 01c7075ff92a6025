package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/vkuksa/factgraph/internal/util"
)

// Waiter grants per-domain rate clearance before an outbound fetch
type Waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// PageExpander fetches a result page when its snippet is empty and
// extracts paragraph text. Respects robots.txt and the per-domain
// rate limit.
type PageExpander struct {
	httpClient *http.Client
	robots     *util.RobotsChecker
	limiter    Waiter
	userAgent  string
	maxBytes   int64
}

// NewPageExpander creates a polite page fetcher
func NewPageExpander(robots *util.RobotsChecker, limiter Waiter, userAgent string, timeout time.Duration, maxBytes int64) *PageExpander {
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}
	return &PageExpander{
		httpClient: &http.Client{Timeout: timeout},
		robots:     robots,
		limiter:    limiter,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
	}
}

// Expand fetches the page and returns its leading paragraph text
func (e *PageExpander) Expand(ctx context.Context, pageURL string) (string, error) {
	allowed, crawlDelay, err := e.robots.CanFetch(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("robots check: %w", err)
	}
	if !allowed {
		return "", fmt.Errorf("disallowed by robots.txt: %s", pageURL)
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, pageURL); err != nil {
			return "", err
		}
	}
	if crawlDelay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(crawlDelay):
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %d", resp.StatusCode)
	}

	text, err := extractParagraphs(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	return text, nil
}

// extractParagraphs collects the text content of <p> elements
func extractParagraphs(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var paragraphs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			if text := strings.TrimSpace(nodeText(n)); text != "" {
				paragraphs = append(paragraphs, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(paragraphs, "\n"), nil
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}
