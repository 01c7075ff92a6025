// Package pipeline orchestrates claim verification: triple extraction,
// entity linking, KG path retrieval, ranking, verdict, and the web
// fallback branch.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/vkuksa/factgraph/internal/config"
	"github.com/vkuksa/factgraph/internal/extract"
	"github.com/vkuksa/factgraph/internal/link"
	"github.com/vkuksa/factgraph/internal/model"
	"github.com/vkuksa/factgraph/internal/verdict"
)

// PathFinder discovers KG paths between linked entity candidates
type PathFinder interface {
	FetchPaths(ctx context.Context, subjects, objects []model.EntityCandidate, maxHops int) ([]model.Path, error)
}

// Ranker orders candidate evidence by combined relevance and trust
type Ranker interface {
	Rank(ctx context.Context, claim string, triple *model.Triple, items []model.EvidenceItem, k int, usePrefilter bool) ([]model.EvidenceItem, error)
}

// WebRetriever gathers web evidence for the fallback branch
type WebRetriever interface {
	Gather(ctx context.Context, claim string, triple *model.Triple) ([]model.EvidenceItem, error)
}

// Pipeline wires the verification stages together. The KG branch
// always runs before the web branch; a decisive KG verdict terminates
// the flow without touching the web.
type Pipeline struct {
	cfg       *config.Config
	extractor extract.Extractor
	linker    link.Linker
	paths     PathFinder
	ranker    Ranker
	web       WebRetriever
	classify  verdict.Classifier
}

// New creates a pipeline. web may be nil, which disables escalation.
func New(cfg *config.Config, extractor extract.Extractor, linker link.Linker, paths PathFinder, ranker Ranker, web WebRetriever, classify verdict.Classifier) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		extractor: extractor,
		linker:    linker,
		paths:     paths,
		ranker:    ranker,
		web:       web,
		classify:  classify,
	}
}

// Verify runs one claim through the flow for the given mode. Stage
// failures degrade the verdict instead of failing the call; the caller
// always receives a final three-way label.
func (p *Pipeline) Verify(ctx context.Context, claim string, mode model.Mode) (*model.VerifyResult, error) {
	result := &model.VerifyResult{Claim: claim, Label: model.LabelNotEnoughInfo}
	state := StateInit

	triple, err := p.extractor.Extract(ctx, claim)
	if err != nil {
		result.Reason = fmt.Sprintf("could not extract a triple from the claim: %v", err)
		return result, nil
	}
	result.Triple = triple

	if mode != model.ModeWebOnly {
		done := p.runKGBranch(ctx, claim, triple, &state, result)
		if done || mode == model.ModeKGOnly {
			return result, nil
		}
	}

	if p.web == nil {
		if result.Reason == "" {
			result.Reason = "web search is not configured"
		}
		return result, nil
	}
	p.runWebBranch(ctx, claim, triple, &state, result)
	return result, nil
}

// runKGBranch links entities, fetches paths, ranks and classifies.
// Returns done=true when the flow terminates here: a decisive KG
// verdict, or entities that cannot be linked at all. Linking failure
// is terminal regardless of mode; retrieval and classification
// failures leave done=false so hybrid mode can fall through to web.
func (p *Pipeline) runKGBranch(ctx context.Context, claim string, triple *model.Triple, state *State, result *model.VerifyResult) bool {
	subjects, objects := p.linkEntities(ctx, triple)
	result.EntityLinking = model.EntityLinking{
		SubjectCandidates: subjects,
		ObjectCandidates:  objects,
	}

	if len(subjects) == 0 || len(objects) == 0 {
		result.Reason = "could not link entities"
		*state = StateDone
		return true
	}
	*state = StateLinked

	paths, err := p.paths.FetchPaths(ctx, subjects, objects, p.cfg.KG.MaxHops)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: KG retrieval failed: %v\n", err)
		result.Reason = fmt.Sprintf("KG retrieval failed: %v", err)
		return false
	}
	*state = StateKGRetrieved

	if len(paths) == 0 {
		result.Reason = "no KG paths found between the linked entities"
		return false
	}

	items := make([]model.EvidenceItem, len(paths))
	for i, path := range paths {
		items[i] = model.EvidenceItem{
			Path:   path,
			Source: path[0].Source,
			Trust:  p.cfg.Verdict.KGTrust,
		}
	}

	ranked, err := p.ranker.Rank(ctx, claim, triple, items, p.cfg.Ranker.TopK, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ranking KG evidence failed: %v\n", err)
		result.Reason = fmt.Sprintf("ranking KG evidence failed: %v", err)
		return false
	}
	for _, item := range ranked {
		result.AllTopPaths = append(result.AllTopPaths, item.Path)
	}

	v, err := p.classify.Classify(ctx, claim, ranked)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: KG verdict classification failed: %v\n", err)
		result.Reason = fmt.Sprintf("verdict classification failed: %v", err)
		return false
	}
	*state = StateKGVerdict
	p.applyVerdict(result, v)

	if v.Label != model.LabelNotEnoughInfo {
		*state = StateDone
		return true
	}
	return false
}

// runWebBranch gathers web evidence, ranks and classifies it. Every
// failure, timeouts included, keeps the Not Enough Info verdict with
// the cause in the reason.
func (p *Pipeline) runWebBranch(ctx context.Context, claim string, triple *model.Triple, state *State, result *model.VerifyResult) {
	items, err := p.web.Gather(ctx, claim, triple)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: web retrieval failed: %v\n", err)
		if result.Reason == "" {
			result.Reason = fmt.Sprintf("web retrieval failed: %v", err)
		}
		return
	}
	*state = StateWebRetrieved

	if len(items) == 0 {
		if result.Reason == "" {
			result.Reason = "no relevant search results found on the web"
		}
		return
	}

	ranked, err := p.ranker.Rank(ctx, claim, triple, items, p.cfg.Ranker.TopK, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ranking web evidence failed: %v\n", err)
		result.Reason = fmt.Sprintf("ranking web evidence failed: %v", err)
		return
	}

	v, err := p.classify.Classify(ctx, claim, ranked)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: web verdict classification failed: %v\n", err)
		result.Label = model.LabelNotEnoughInfo
		result.Confidence = 0
		result.Reason = fmt.Sprintf("verdict classification failed: %v", err)
		*state = StateDone
		return
	}
	*state = StateWebVerdict
	p.applyVerdict(result, v)
	*state = StateDone
}

// linkEntities resolves both surface forms concurrently. A failed side
// degrades to no candidates.
func (p *Pipeline) linkEntities(ctx context.Context, triple *model.Triple) ([]model.EntityCandidate, []model.EntityCandidate) {
	var subjects, objects []model.EntityCandidate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cands, err := p.linker.Link(gctx, triple.Subject, p.cfg.Linker.TopK)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: linking %q failed: %v\n", triple.Subject, err)
			return nil
		}
		subjects = cands
		return nil
	})
	g.Go(func() error {
		cands, err := p.linker.Link(gctx, triple.Object, p.cfg.Linker.TopK)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: linking %q failed: %v\n", triple.Object, err)
			return nil
		}
		objects = cands
		return nil
	})
	_ = g.Wait()
	return subjects, objects
}

func (p *Pipeline) applyVerdict(result *model.VerifyResult, v *model.Verdict) {
	result.Label = v.Label
	result.Confidence = v.Confidence
	result.Reason = v.Reason
	result.Evidence = v.Evidence
}
