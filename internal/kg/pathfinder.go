package kg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vkuksa/factgraph/internal/cache"
	"github.com/vkuksa/factgraph/internal/config"
	"github.com/vkuksa/factgraph/internal/model"
)

// PathFinder discovers 1- and 2-hop paths between candidate subject and
// object URIs across all configured KG sources. Sources run
// concurrently; a failing source contributes zero paths.
type PathFinder struct {
	sources []Source
	cfg     config.KGConfig
	store   cache.Cache
	ttl     time.Duration
}

// NewPathFinder creates a path finder. store may be nil to disable caching.
func NewPathFinder(sources []Source, cfg config.KGConfig, store cache.Cache, ttl time.Duration) *PathFinder {
	return &PathFinder{sources: sources, cfg: cfg, store: store, ttl: ttl}
}

// FetchPaths returns deduplicated candidate paths between the linked
// subject and object URI sets. maxHops must be 1 or 2.
func (pf *PathFinder) FetchPaths(ctx context.Context, subjects, objects []model.EntityCandidate, maxHops int) ([]model.Path, error) {
	if maxHops < 1 {
		maxHops = 1
	} else if maxHops > 2 {
		maxHops = 2
	}

	allSubj := candidateURIs(subjects, "")
	allObj := candidateURIs(objects, "")
	key := cache.PathKey(allSubj, allObj, maxHops)

	if pf.store != nil {
		if data, ok := pf.store.Get(key); ok {
			var cached []model.Path
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	// one result slot per source keeps ordering deterministic across runs
	results := make([][]model.Path, len(pf.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range pf.sources {
		i, src := i, src
		g.Go(func() error {
			subjURIs := candidateURIs(subjects, src.Name())
			objURIs := candidateURIs(objects, src.Name())
			if len(subjURIs) == 0 && len(objURIs) == 0 {
				return nil
			}
			results[i] = pf.fetchFromSource(gctx, src, subjURIs, objURIs, maxHops)
			return nil
		})
	}
	_ = g.Wait() // workers only report via their slots

	var paths []model.Path
	seen := make(map[string]bool)
	for _, batch := range results {
		for _, p := range batch {
			if !p.Valid() || !pf.cleanPath(p) {
				continue
			}
			if k := p.Key(); !seen[k] {
				seen[k] = true
				paths = append(paths, p)
			}
		}
	}

	if pf.store != nil && len(paths) > 0 {
		if data, err := json.Marshal(paths); err == nil {
			_ = pf.store.Set(key, data, pf.ttl)
		}
	}
	return paths, nil
}

// fetchFromSource runs the per-URI adaptive strategy against one KG.
// Every sub-query failure degrades to zero results for that sub-query.
func (pf *PathFinder) fetchFromSource(ctx context.Context, src Source, subjURIs, objURIs []string, maxHops int) []model.Path {
	candidates := unionURIs(subjURIs, objURIs)
	high := pf.highDegree(ctx, src, candidates)

	var paths []model.Path
	add := func(edges []model.Edge, err error, what string) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s %s: %v\n", src.Name(), what, err)
			return
		}
		for _, e := range edges {
			paths = append(paths, model.Path{e})
		}
	}

	restricted := make(map[string]bool)
	for _, uri := range candidates {
		if !high[uri] {
			continue
		}
		// restricted strategy: only edges into the candidate set plus
		// language-filtered literal attributes, never a full dump
		restricted[uri] = true
		edges, err := src.ConnectingEdges(ctx, uri, candidates)
		add(edges, err, "connecting edges")
		lits, err := src.LiteralAttributes(ctx, uri, pf.cfg.Language, pf.cfg.PageSize)
		add(lits, err, "literal attributes")
	}

	for _, s := range subjURIs {
		if restricted[s] {
			continue
		}
		edges, err := src.OutgoingEdges(ctx, s, pf.cfg.EdgeLimit)
		add(edges, err, "outgoing edges")
	}
	for _, o := range objURIs {
		if restricted[o] {
			continue
		}
		edges, err := src.IncomingEdges(ctx, o, pf.cfg.EdgeLimit)
		add(edges, err, "incoming edges")
	}

	if maxHops >= 2 {
		for _, s := range subjURIs {
			for _, o := range objURIs {
				if s == o {
					continue
				}
				two, err := src.TwoHopPaths(ctx, s, o, pf.cfg.TwoHopLimit)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Warning: %s two-hop %s -> %s: %v\n", src.Name(), s, o, err)
					continue
				}
				paths = append(paths, two...)
			}
		}
	}
	return paths
}

// highDegree probes each URI's degree; probe failures fail open to the
// unrestricted strategy.
func (pf *PathFinder) highDegree(ctx context.Context, src Source, uris []string) map[string]bool {
	high := make(map[string]bool, len(uris))
	if pf.cfg.HighDegreeThreshold <= 0 {
		return high
	}
	for _, uri := range uris {
		deg, err := src.Degree(ctx, uri)
		if err != nil {
			continue
		}
		if deg > pf.cfg.HighDegreeThreshold {
			high[uri] = true
		}
	}
	return high
}

// cleanPath re-checks every predicate against the configured deny-list
func (pf *PathFinder) cleanPath(p model.Path) bool {
	for _, e := range p {
		for _, deny := range pf.cfg.BlacklistPredicates {
			if e.Predicate == deny {
				return false
			}
		}
	}
	return true
}

// candidateURIs extracts the URIs for one KB; empty kb selects all
func candidateURIs(cands []model.EntityCandidate, kb string) []string {
	var uris []string
	seen := make(map[string]bool)
	for _, c := range cands {
		if c.URI == "" || (kb != "" && c.KB != kb) {
			continue
		}
		if !seen[c.URI] {
			seen[c.URI] = true
			uris = append(uris, c.URI)
		}
	}
	return uris
}

func unionURIs(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool)
	for _, uri := range append(append([]string{}, a...), b...) {
		if !seen[uri] {
			seen[uri] = true
			out = append(out, uri)
		}
	}
	return out
}
