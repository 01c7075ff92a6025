package kg

import (
	"strings"
	"testing"

	"github.com/vkuksa/factgraph/internal/config"
)

func TestPredicateFilter_Clause(t *testing.T) {
	f := NewPredicateFilter(
		[]string{"http://dbpedia.org/ontology/"},
		[]string{"http://dbpedia.org/ontology/wikiPageWikiLink"},
	)

	clause := f.Clause("p")
	if !strings.Contains(clause, "STRSTARTS(STR(?p),'http://dbpedia.org/ontology/')") {
		t.Errorf("allow prefix missing from clause: %s", clause)
	}
	if !strings.Contains(clause, "!(STRSTARTS(STR(?p),'http://dbpedia.org/ontology/wikiPageWikiLink')") {
		t.Errorf("deny prefix missing from clause: %s", clause)
	}
}

func TestPredicateFilter_ClauseDenyOnly(t *testing.T) {
	f := NewPredicateFilter(nil, []string{"http://www.w3.org/2002/07/owl#sameAs"})

	clause := f.Clause("p")
	if !strings.HasPrefix(clause, "FILTER(!(") {
		t.Errorf("expected pure negative filter, got %s", clause)
	}
}

func TestPredicateFilter_Allowed(t *testing.T) {
	f := NewPredicateFilter(config.DefaultAllowedPrefixes(), config.DefaultBlacklistPredicates())

	tests := []struct {
		pred string
		want bool
	}{
		{"http://dbpedia.org/ontology/capital", true},
		{"http://dbpedia.org/property/leaderName", true},
		{"http://dbpedia.org/ontology/wikiPageWikiLink", false},
		{"http://www.w3.org/2002/07/owl#sameAs", false},
		{"http://www.w3.org/1999/02/22-rdf-syntax-ns#type", false},
		{"http://xmlns.com/foaf/0.1/depiction", false}, // outside allow-list
	}
	for _, tt := range tests {
		if got := f.Allowed(tt.pred); got != tt.want {
			t.Errorf("Allowed(%q) = %v, want %v", tt.pred, got, tt.want)
		}
	}
}

func TestPredicateFilter_NilIsPermissive(t *testing.T) {
	var f *PredicateFilter
	if !f.Allowed("http://example.org/anything") {
		t.Error("nil filter should allow everything")
	}
	if f.Clause("p") != "" {
		t.Error("nil filter should render no clause")
	}
}
