package model

import "strings"

// Edge is one RDF relation instance. Immutable value.
type Edge struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Source    string `json:"source"` // KG name, e.g. "dbpedia", "wikidata"
}

// Key returns the triple-key used for deduplication across retrieval calls
func (e Edge) Key() string {
	return e.Subject + "|" + e.Predicate + "|" + e.Object
}

// Path is an ordered chain of 1 or 2 edges. For 2-hop paths the first
// edge's object is the intermediate node and must equal the second
// edge's subject.
type Path []Edge

// Valid reports whether the path satisfies the length and chaining invariants
func (p Path) Valid() bool {
	switch len(p) {
	case 1:
		return true
	case 2:
		return p[0].Object == p[1].Subject
	default:
		return false
	}
}

// Key returns the concatenated triple-keys of all edges
func (p Path) Key() string {
	keys := make([]string, len(p))
	for i, e := range p {
		keys[i] = e.Key()
	}
	return strings.Join(keys, "||")
}

// Text projects the path into a pseudo-sentence: the subject's local
// name followed by each hop's predicate and object local names.
func (p Path) Text() string {
	if len(p) == 0 {
		return ""
	}
	parts := []string{LocalName(p[0].Subject)}
	for _, e := range p {
		parts = append(parts, Decamel(LocalName(e.Predicate)), LocalName(e.Object))
	}
	return strings.Join(parts, " ")
}

// Arrow renders the path as a human-readable chain for LLM prompts,
// e.g. "Paris → capital → France".
func (p Path) Arrow() string {
	if len(p) == 0 {
		return ""
	}
	parts := []string{LocalName(p[0].Subject)}
	for _, e := range p {
		parts = append(parts, LocalName(e.Predicate), LocalName(e.Object))
	}
	return strings.Join(parts, " → ")
}

// EvidenceItem is a single candidate piece of evidence: either a KG
// path or a web snippet, never both.
type EvidenceItem struct {
	Path    Path   `json:"path,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Title   string `json:"title,omitempty"`

	Source    string  `json:"source"`    // KG name or source URL
	Trust     float64 `json:"trust"`     // [0,1]
	Relevance float64 `json:"relevance"` // ranker output
	Combined  float64 `json:"combined"`  // 0.8*relevance + 0.2*trust
}

// IsPath reports whether the item carries KG path evidence
func (e EvidenceItem) IsPath() bool { return len(e.Path) > 0 }

// Text returns the representation scored against the claim
func (e EvidenceItem) Text() string {
	if e.IsPath() {
		return e.Path.Text()
	}
	return e.Snippet
}

// Key returns the dedupe key: the path's triple-key, or the snippet
// text for web evidence.
func (e EvidenceItem) Key() string {
	if e.IsPath() {
		return e.Path.Key()
	}
	return e.Snippet
}

// NLILabel is the three-way entailment classification of one premise
type NLILabel string

const (
	NLIEntailment    NLILabel = "entailment"
	NLIContradiction NLILabel = "contradiction"
	NLINeutral       NLILabel = "neutral"
)

// NLIResult is the oracle's judgement for a single (premise, hypothesis) pair
type NLIResult struct {
	Label      NLILabel `json:"label"`
	Confidence float64  `json:"confidence"`
}

// ClassifiedEvidence is an evidence item annotated with its NLI (or
// judge) label. Weight is trust * confidence and is what the verdict
// vote accumulates.
type ClassifiedEvidence struct {
	EvidenceItem
	Label      NLILabel `json:"nli"`
	Confidence float64  `json:"confidence"`
	Weight     float64  `json:"weight"`
}
