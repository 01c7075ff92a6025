package model

import (
	"regexp"
	"strings"
)

// Triple is the semantic parse of a claim, produced by the extraction
// oracle and consumed read-only by the rest of the pipeline.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// Mode selects which evidence branches the pipeline may use
type Mode string

const (
	ModeHybrid  Mode = "hybrid"   // KG first, web fallback
	ModeKGOnly  Mode = "kg_only"  // never escalate to web
	ModeWebOnly Mode = "web_only" // skip the KG branch entirely
)

// ParseMode maps a request string to a Mode, defaulting to hybrid
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeKGOnly:
		return ModeKGOnly
	case ModeWebOnly:
		return ModeWebOnly
	default:
		return ModeHybrid
	}
}

var camelRe = regexp.MustCompile(`(?:^|[a-z0-9])[A-Z]`)

// LocalName returns the fragment of a URI after the last '/' or '#',
// with underscores replaced by spaces.
func LocalName(uri string) string {
	frag := uri
	if i := strings.LastIndex(frag, "/"); i >= 0 {
		frag = frag[i+1:]
	}
	if i := strings.LastIndex(frag, "#"); i >= 0 {
		frag = frag[i+1:]
	}
	return strings.ReplaceAll(frag, "_", " ")
}

// Decamel splits a camelCase predicate name into lowercase words,
// e.g. "birthPlace" -> "birth place".
func Decamel(s string) string {
	out := camelRe.ReplaceAllStringFunc(s, func(m string) string {
		if len(m) == 1 {
			return m
		}
		return m[:1] + " " + m[1:]
	})
	return strings.ToLower(strings.TrimSpace(out))
}
