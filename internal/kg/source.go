package kg

import (
	"context"
	"fmt"
	"strings"

	"github.com/vkuksa/factgraph/internal/model"
)

// Source is one knowledge graph a path finder can draw evidence from
type Source interface {
	// Name is the KB identifier used on edges and entity candidates
	Name() string

	// Degree estimates the incident edge count of a URI with a single
	// aggregate query.
	Degree(ctx context.Context, uri string) (int, error)

	// OutgoingEdges fetches uri ?p ?o edges, paged to completion up to limit
	OutgoingEdges(ctx context.Context, uri string, limit int) ([]model.Edge, error)

	// IncomingEdges fetches ?s ?p uri edges, paged to completion up to limit
	IncomingEdges(ctx context.Context, uri string, limit int) ([]model.Edge, error)

	// ConnectingEdges fetches only edges between uri and the given
	// candidate URIs, in both directions. This is the restricted
	// strategy for high-degree nodes: no full edge dump.
	ConnectingEdges(ctx context.Context, uri string, candidates []string) ([]model.Edge, error)

	// LiteralAttributes fetches literal-valued edges (abstracts and the
	// like) of a URI, restricted to one language.
	LiteralAttributes(ctx context.Context, uri, lang string, limit int) ([]model.Edge, error)

	// TwoHopPaths finds subject --p1--> x --p2--> object paths with an
	// IRI intermediate.
	TwoHopPaths(ctx context.Context, subject, object string, limit int) ([]model.Path, error)
}

// graphSource implements Source on top of a primary SPARQL endpoint
// with an optional public fallback. A query that errors degrades to
// zero rows; a required query that legitimately returns zero rows is
// retried once against the fallback when one is configured.
type graphSource struct {
	name     string
	primary  *SPARQLClient
	fallback *SPARQLClient
	filter   *PredicateFilter
	pageSize int
	language string

	// abstractPredicate, when set, gets the language filter applied to
	// its literal objects on full edge dumps.
	abstractPredicate string
}

func (g *graphSource) Name() string { return g.name }

// query runs against the primary endpoint, falling back on empty
// results when a distinct fallback endpoint exists.
func (g *graphSource) query(ctx context.Context, q string) []Binding {
	rows, err := g.primary.Query(ctx, q)
	if err != nil {
		rows = nil
	}
	if len(rows) == 0 && g.fallback != nil && g.fallback.Endpoint() != g.primary.Endpoint() {
		if fbRows, fbErr := g.fallback.Query(ctx, q); fbErr == nil {
			rows = fbRows
		}
	}
	return rows
}

// page loops LIMIT/OFFSET until an empty page or max rows
func (g *graphSource) page(ctx context.Context, q string, max int) []Binding {
	var rows []Binding
	for offset := 0; ; offset += g.pageSize {
		size := g.pageSize
		if max > 0 && max-len(rows) < size {
			size = max - len(rows)
		}
		if size <= 0 {
			break
		}
		batch := g.query(ctx, fmt.Sprintf("%s\nLIMIT %d OFFSET %d", q, size, offset))
		if len(batch) == 0 {
			break
		}
		rows = append(rows, batch...)
		if len(batch) < size {
			break
		}
	}
	return rows
}

func (g *graphSource) Degree(ctx context.Context, uri string) (int, error) {
	q := fmt.Sprintf(
		"SELECT (COUNT(*) AS ?c) WHERE { { <%s> ?p ?o } UNION { ?s ?p <%s> } }",
		uri, uri,
	)
	rows, err := g.primary.Query(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("degree estimate: %w", err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("degree estimate: empty result")
	}
	var count int
	if _, scanErr := fmt.Sscanf(rows[0]["c"].Value, "%d", &count); scanErr != nil {
		return 0, fmt.Errorf("degree estimate: parse %q: %w", rows[0]["c"].Value, scanErr)
	}
	return count, nil
}

func (g *graphSource) OutgoingEdges(ctx context.Context, uri string, limit int) ([]model.Edge, error) {
	q := fmt.Sprintf("SELECT ?p ?o WHERE {\n  <%s> ?p ?o .\n  %s\n  %s\n}", uri, g.filter.Clause("p"), g.abstractLangClause())
	var edges []model.Edge
	for _, row := range g.page(ctx, q, limit) {
		edges = append(edges, model.Edge{Subject: uri, Predicate: row["p"].Value, Object: row["o"].Value, Source: g.name})
	}
	return edges, nil
}

func (g *graphSource) IncomingEdges(ctx context.Context, uri string, limit int) ([]model.Edge, error) {
	q := fmt.Sprintf("SELECT ?s ?p WHERE {\n  ?s ?p <%s> .\n  %s\n}", uri, g.filter.Clause("p"))
	var edges []model.Edge
	for _, row := range g.page(ctx, q, limit) {
		edges = append(edges, model.Edge{Subject: row["s"].Value, Predicate: row["p"].Value, Object: uri, Source: g.name})
	}
	return edges, nil
}

func (g *graphSource) ConnectingEdges(ctx context.Context, uri string, candidates []string) ([]model.Edge, error) {
	others := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c != uri {
			others = append(others, "<"+c+">")
		}
	}
	if len(others) == 0 {
		return nil, nil
	}
	values := strings.Join(others, " ")

	var edges []model.Edge
	outQ := fmt.Sprintf("SELECT ?p ?o WHERE {\n  VALUES ?o { %s }\n  <%s> ?p ?o .\n  %s\n}", values, uri, g.filter.Clause("p"))
	for _, row := range g.query(ctx, outQ) {
		edges = append(edges, model.Edge{Subject: uri, Predicate: row["p"].Value, Object: row["o"].Value, Source: g.name})
	}

	inQ := fmt.Sprintf("SELECT ?s ?p WHERE {\n  VALUES ?s { %s }\n  ?s ?p <%s> .\n  %s\n}", values, uri, g.filter.Clause("p"))
	for _, row := range g.query(ctx, inQ) {
		edges = append(edges, model.Edge{Subject: row["s"].Value, Predicate: row["p"].Value, Object: uri, Source: g.name})
	}
	return edges, nil
}

func (g *graphSource) LiteralAttributes(ctx context.Context, uri, lang string, limit int) ([]model.Edge, error) {
	if lang == "" {
		lang = g.language
	}
	q := fmt.Sprintf(
		"SELECT ?p ?o WHERE {\n  <%s> ?p ?o .\n  FILTER(isLiteral(?o))\n  FILTER(lang(?o) = '' || langMatches(lang(?o), '%s'))\n  %s\n}",
		uri, lang, g.filter.Clause("p"),
	)
	var edges []model.Edge
	for _, row := range g.page(ctx, q, limit) {
		edges = append(edges, model.Edge{Subject: uri, Predicate: row["p"].Value, Object: row["o"].Value, Source: g.name})
	}
	return edges, nil
}

func (g *graphSource) TwoHopPaths(ctx context.Context, subject, object string, limit int) ([]model.Path, error) {
	if subject == object {
		return nil, nil
	}
	q := fmt.Sprintf(
		"SELECT ?p1 ?x ?p2 WHERE {\n  <%s> ?p1 ?x .\n  ?x ?p2 <%s> .\n  FILTER isIRI(?x)\n  %s\n  %s\n} LIMIT %d",
		subject, object, g.filter.Clause("p1"), g.filter.Clause("p2"), limit,
	)
	var paths []model.Path
	for _, row := range g.query(ctx, q) {
		mid := row["x"].Value
		paths = append(paths, model.Path{
			{Subject: subject, Predicate: row["p1"].Value, Object: mid, Source: g.name},
			{Subject: mid, Predicate: row["p2"].Value, Object: object, Source: g.name},
		})
	}
	return paths, nil
}

// abstractLangClause drops non-matching-language abstracts while
// keeping every other triple.
func (g *graphSource) abstractLangClause() string {
	if g.language == "" || g.abstractPredicate == "" {
		return ""
	}
	return fmt.Sprintf(
		"FILTER(!( ?p = <%s> && !langMatches(lang(?o),'%s') ))",
		g.abstractPredicate, g.language,
	)
}
