package rank

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/vkuksa/factgraph/internal/config"
	"github.com/vkuksa/factgraph/internal/model"
)

// Ranker runs the evidence scoring cascade: noise filter, triple-key
// dedupe, optional bi-encoder prefilter, cross-encoder rerank, and the
// relevance/trust combination.
type Ranker struct {
	cfg   config.RankerConfig
	bi    BiEncoder
	cross CrossEncoder
}

// NewRanker creates a ranker; bi and cross may be nil, disabling the
// corresponding stage.
func NewRanker(cfg config.RankerConfig, bi BiEncoder, cross CrossEncoder) *Ranker {
	return &Ranker{cfg: cfg, bi: bi, cross: cross}
}

// Rank returns the top-k evidence items for the claim, sorted by
// non-increasing combined score. Ties keep retrieval order. triple is
// optional and only feeds the entity-similarity boost in bi-encoder
// mode. Empty input yields empty output.
func (r *Ranker) Rank(ctx context.Context, claim string, triple *model.Triple, items []model.EvidenceItem, k int, usePrefilter bool) ([]model.EvidenceItem, error) {
	if len(items) == 0 || k <= 0 {
		return nil, nil
	}

	pool := r.prepare(items)
	if len(pool) == 0 {
		return nil, nil
	}

	var biSims []float64
	if usePrefilter && r.bi != nil {
		sims, err := r.biEncoderSims(ctx, claim, pool)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: bi-encoder prefilter failed: %v\n", err)
		} else {
			biSims = sims
			pool, biSims = topByScore(pool, biSims, r.filterK())
		}
	}

	relevance := r.relevance(ctx, claim, triple, pool, biSims)

	for i := range pool {
		pool[i].Relevance = relevance[i]
		pool[i].Combined = r.cfg.RelevanceWeight*relevance[i] + r.cfg.TrustWeight*pool[i].Trust
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Combined > pool[j].Combined })
	if len(pool) > k {
		pool = pool[:k]
	}
	return pool, nil
}

// prepare drops noisy and duplicate items and those with no scorable text
func (r *Ranker) prepare(items []model.EvidenceItem) []model.EvidenceItem {
	seen := make(map[string]bool, len(items))
	var pool []model.EvidenceItem
	for _, item := range items {
		if item.Text() == "" || r.weak(item) {
			continue
		}
		if key := item.Key(); !seen[key] {
			seen[key] = true
			pool = append(pool, item)
		}
	}
	return pool
}

// weak reports whether a path item's predicates match the
// weak-predicate heuristic. Snippet items carry no predicate.
func (r *Ranker) weak(item model.EvidenceItem) bool {
	if !item.IsPath() {
		return false
	}
	for _, e := range item.Path {
		local := strings.ToLower(model.LocalName(e.Predicate))
		for _, w := range r.cfg.WeakPredicates {
			if strings.Contains(local, strings.ToLower(w)) {
				return true
			}
		}
	}
	return false
}

// relevance produces the stage-B score per item: cross-encoder when
// available, bi-encoder similarity (with optional entity boost) as the
// fallback path.
func (r *Ranker) relevance(ctx context.Context, claim string, triple *model.Triple, pool []model.EvidenceItem, biSims []float64) []float64 {
	if r.cfg.UseCrossEncoder && r.cross != nil {
		texts := make([]string, len(pool))
		for i, item := range pool {
			texts[i] = item.Text()
		}
		scores, err := r.cross.Score(ctx, claim, texts)
		if err == nil {
			return scores
		}
		fmt.Fprintf(os.Stderr, "Warning: cross-encoder failed, falling back to bi-encoder: %v\n", err)
	}

	if biSims == nil {
		sims, err := r.biEncoderSims(ctx, claim, pool)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: bi-encoder scoring failed: %v\n", err)
			return make([]float64, len(pool))
		}
		biSims = sims
	}

	if triple != nil && r.bi != nil {
		if boosted, err := r.entityBoost(ctx, triple, pool, biSims); err == nil {
			return boosted
		}
	}
	return biSims
}

// biEncoderSims embeds the claim and all item texts in one batch and
// returns cosine similarities.
func (r *Ranker) biEncoderSims(ctx context.Context, claim string, pool []model.EvidenceItem) ([]float64, error) {
	texts := make([]string, 0, len(pool)+1)
	texts = append(texts, claim)
	for _, item := range pool {
		texts = append(texts, item.Text())
	}

	embs, err := r.bi.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	claimEmb := embs[0]
	sims := make([]float64, len(pool))
	for i := range pool {
		sims[i] = Cosine(claimEmb, embs[i+1])
	}
	return sims, nil
}

// entityBoost blends sentence similarity with the similarity between
// the claim's subject/object and the path endpoints:
// 0.5*sentence + 0.25*subject + 0.25*object. Snippet items keep their
// sentence similarity untouched.
func (r *Ranker) entityBoost(ctx context.Context, triple *model.Triple, pool []model.EvidenceItem, sims []float64) ([]float64, error) {
	texts := []string{triple.Subject, triple.Object}
	idx := make(map[string]int) // endpoint text -> embedding slot
	for _, item := range pool {
		if !item.IsPath() {
			continue
		}
		for _, endpoint := range []string{model.LocalName(item.Path[0].Subject), model.LocalName(item.Path[len(item.Path)-1].Object)} {
			if _, ok := idx[endpoint]; !ok {
				idx[endpoint] = len(texts)
				texts = append(texts, endpoint)
			}
		}
	}
	if len(texts) == 2 {
		return sims, nil
	}

	embs, err := r.bi.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	subjEmb, objEmb := embs[0], embs[1]

	boosted := make([]float64, len(pool))
	for i, item := range pool {
		if !item.IsPath() {
			boosted[i] = sims[i]
			continue
		}
		start := embs[idx[model.LocalName(item.Path[0].Subject)]]
		end := embs[idx[model.LocalName(item.Path[len(item.Path)-1].Object)]]
		boosted[i] = sims[i]*0.5 + Cosine(subjEmb, start)*0.25 + Cosine(objEmb, end)*0.25
	}
	return boosted, nil
}

// topByScore keeps the n best items by score, preserving input order
// among the kept items.
func topByScore(pool []model.EvidenceItem, scores []float64, n int) ([]model.EvidenceItem, []float64) {
	if n <= 0 || len(pool) <= n {
		return pool, scores
	}

	order := make([]int, len(pool))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	keep := make(map[int]bool, n)
	for _, i := range order[:n] {
		keep[i] = true
	}

	outPool := make([]model.EvidenceItem, 0, n)
	outScores := make([]float64, 0, n)
	for i := range pool {
		if keep[i] {
			outPool = append(outPool, pool[i])
			outScores = append(outScores, scores[i])
		}
	}
	return outPool, outScores
}

func (r *Ranker) filterK() int {
	if r.cfg.FilterK > 0 {
		return r.cfg.FilterK
	}
	return 150
}
