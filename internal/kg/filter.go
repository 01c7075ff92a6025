package kg

import (
	"fmt"
	"strings"
)

// PredicateFilter is the explicit allow/deny predicate configuration
// applied to every edge query: an allow-list of informative namespaces
// intersected with a deny-list of administrative noise.
type PredicateFilter struct {
	allowedPrefixes []string
	denyPrefixes    []string
	denySet         map[string]bool
}

// NewPredicateFilter builds a filter from explicit prefix lists
func NewPredicateFilter(allowedPrefixes, blacklist []string) *PredicateFilter {
	denySet := make(map[string]bool, len(blacklist))
	for _, p := range blacklist {
		denySet[p] = true
	}
	return &PredicateFilter{
		allowedPrefixes: allowedPrefixes,
		denyPrefixes:    blacklist,
		denySet:         denySet,
	}
}

// Clause renders the filter as a SPARQL FILTER over the given variable.
// Empty when no allow-list is configured (Wikidata properties live in a
// single namespace, so only the deny side applies there).
func (f *PredicateFilter) Clause(v string) string {
	if f == nil || (len(f.allowedPrefixes) == 0 && len(f.denyPrefixes) == 0) {
		return ""
	}

	var allow, deny []string
	for _, p := range f.allowedPrefixes {
		allow = append(allow, fmt.Sprintf("STRSTARTS(STR(?%s),'%s')", v, p))
	}
	for _, p := range f.denyPrefixes {
		deny = append(deny, fmt.Sprintf("STRSTARTS(STR(?%s),'%s')", v, p))
	}

	switch {
	case len(allow) == 0:
		return fmt.Sprintf("FILTER(!(%s))", strings.Join(deny, " || "))
	case len(deny) == 0:
		return fmt.Sprintf("FILTER(%s)", strings.Join(allow, " || "))
	default:
		return fmt.Sprintf("FILTER((%s) && !(%s))", strings.Join(allow, " || "), strings.Join(deny, " || "))
	}
}

// Allowed reports whether a predicate URI survives the filter. Applied
// again client-side so paths stay clean even when an endpoint ignores
// the FILTER clause.
func (f *PredicateFilter) Allowed(pred string) bool {
	if f == nil {
		return true
	}
	if f.denySet[pred] {
		return false
	}
	for _, p := range f.denyPrefixes {
		if strings.HasPrefix(pred, p) {
			return false
		}
	}
	if len(f.allowedPrefixes) == 0 {
		return true
	}
	for _, p := range f.allowedPrefixes {
		if strings.HasPrefix(pred, p) {
			return true
		}
	}
	return false
}
