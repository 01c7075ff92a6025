package search

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vkuksa/factgraph/internal/config"
	"github.com/vkuksa/factgraph/internal/model"
)

// TrustScorer assigns a source-reliability prior to a link
type TrustScorer interface {
	Score(source string) float64
}

// Retriever gathers web evidence for a claim: query construction,
// search, and conversion of hits into trust-scored evidence items.
type Retriever struct {
	cfg      config.SearchConfig
	search   WebSearch
	para     Paraphraser
	trust    TrustScorer
	expander *PageExpander
}

// NewRetriever assembles the web branch. para and expander are
// optional; without a paraphraser the raw claim is the query.
func NewRetriever(cfg config.SearchConfig, search WebSearch, para Paraphraser, trust TrustScorer, expander *PageExpander) *Retriever {
	return &Retriever{cfg: cfg, search: search, para: para, trust: trust, expander: expander}
}

// Gather searches the web and returns evidence items with trust
// priors attached. Results without usable text are dropped.
func (r *Retriever) Gather(ctx context.Context, claim string, triple *model.Triple) ([]model.EvidenceItem, error) {
	query := r.buildQuery(ctx, claim, triple)

	results, err := r.search.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}

	var items []model.EvidenceItem
	for _, res := range results {
		snippet := strings.TrimSpace(res.Snippet)
		if snippet == "" && r.cfg.ExpandPages && r.expander != nil && res.Link != "" {
			text, err := r.expander.Expand(ctx, res.Link)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: page expansion failed for %s: %v\n", res.Link, err)
				continue
			}
			snippet = strings.TrimSpace(text)
		}
		if snippet == "" {
			continue
		}

		items = append(items, model.EvidenceItem{
			Snippet: snippet,
			Title:   res.Title,
			Source:  res.Link,
			Trust:   r.trust.Score(res.Link),
		})
	}
	return items, nil
}

// buildQuery prefers the exact-phrase triple query; free-form claims
// go through the paraphraser when one is configured.
func (r *Retriever) buildQuery(ctx context.Context, claim string, triple *model.Triple) string {
	if triple != nil {
		return fmt.Sprintf("%q %q %q", triple.Subject, triple.Predicate, triple.Object)
	}
	if r.para != nil {
		if queries, err := r.para.Queries(ctx, claim); err == nil && len(queries) > 0 {
			return queries[0]
		}
	}
	return claim
}
