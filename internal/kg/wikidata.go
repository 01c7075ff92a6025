package kg

import (
	"github.com/vkuksa/factgraph/internal/config"
)

// wikidataBlacklist drops the generic administrative predicates; truthy
// statements all live under one namespace so no allow-list is needed.
var wikidataBlacklist = []string{
	"http://www.w3.org/1999/02/22-rdf-syntax-ns#type",
	"http://www.w3.org/2000/01/rdf-schema#label",
	"http://www.w3.org/2002/07/owl#sameAs",
	"http://schema.org/description",
	"http://schema.org/about",
	"http://wikiba.se/ontology#",
}

// NewWikidataSource builds the Wikidata source. The public query
// service is the primary endpoint; a fallback is rarely configured.
func NewWikidataSource(cfg config.KGConfig, http config.HTTPConfig, limiter Waiter) Source {
	filter := NewPredicateFilter(nil, wikidataBlacklist)

	primary := NewSPARQLClient(cfg.Wikidata.Primary, cfg.Timeout, http.UserAgent, limiter, http.HTTPProxy, http.HTTPSProxy, http.NoProxy)
	var fallback *SPARQLClient
	if cfg.Wikidata.Fallback != "" && cfg.Wikidata.Fallback != cfg.Wikidata.Primary {
		fallback = NewSPARQLClient(cfg.Wikidata.Fallback, cfg.Timeout, http.UserAgent, limiter, http.HTTPProxy, http.HTTPSProxy, http.NoProxy)
	}

	return &graphSource{
		name:     "wikidata",
		primary:  primary,
		fallback: fallback,
		filter:   filter,
		pageSize: cfg.PageSize,
		language: cfg.Language,
	}
}
