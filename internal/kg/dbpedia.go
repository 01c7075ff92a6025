package kg

import (
	"github.com/vkuksa/factgraph/internal/config"
)

// NewDBpediaSource builds the DBpedia source from configuration. The
// predicate allow/deny lists and the English-abstract restriction come
// straight from config; nothing is inferred.
func NewDBpediaSource(cfg config.KGConfig, http config.HTTPConfig, limiter Waiter) Source {
	filter := NewPredicateFilter(cfg.AllowedPrefixes, cfg.BlacklistPredicates)

	primary := NewSPARQLClient(cfg.DBpedia.Primary, cfg.Timeout, http.UserAgent, limiter, http.HTTPProxy, http.HTTPSProxy, http.NoProxy)
	var fallback *SPARQLClient
	if cfg.DBpedia.Fallback != "" && cfg.DBpedia.Fallback != cfg.DBpedia.Primary {
		fallback = NewSPARQLClient(cfg.DBpedia.Fallback, cfg.Timeout, http.UserAgent, limiter, http.HTTPProxy, http.HTTPSProxy, http.NoProxy)
	}

	return &graphSource{
		name:              "dbpedia",
		primary:           primary,
		fallback:          fallback,
		filter:            filter,
		pageSize:          cfg.PageSize,
		language:          cfg.Language,
		abstractPredicate: "http://dbpedia.org/ontology/abstract",
	}
}
