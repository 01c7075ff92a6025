package trust

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scorer maps a source (URL or KG name) to a trust weight in [0,1].
// Priors come from built-in defaults merged with an optional YAML table.
type Scorer struct {
	priors map[string]float64
}

// defaults mirror the curated table the verdict weights were tuned
// against. "*" is the catch-all for unknown domains.
func defaults() map[string]float64 {
	return map[string]float64{
		"wikidata.org": 1.0,
		"dbpedia.org":  1.0,
		".gov":         0.95,
		".edu":         0.95,
		"nytimes.com":  0.9,
		"bbc.co.uk":    0.9,
		"reuters.com":  0.9,
		"nature.com":   0.9,
		"reddit.com":   0.1,
		"*":            0.5,
	}
}

// NewScorer builds a scorer from defaults plus an optional override file
func NewScorer(tablePath string) (*Scorer, error) {
	priors := defaults()

	if tablePath != "" {
		data, err := os.ReadFile(tablePath)
		if err != nil {
			return nil, fmt.Errorf("read trust table: %w", err)
		}
		overrides := map[string]float64{}
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return nil, fmt.Errorf("parse trust table: %w", err)
		}
		for k, v := range overrides {
			priors[k] = v
		}
	}

	return &Scorer{priors: priors}, nil
}

// Score returns the trust weight for a URL or bare KG name
func (s *Scorer) Score(source string) float64 {
	switch strings.ToLower(source) {
	case "dbpedia", "wikidata":
		return 1.0
	}

	domain := registeredDomain(source)
	if domain == "" {
		return s.priors["*"]
	}

	if score, ok := s.priors[domain]; ok {
		return score
	}

	// suffix rules like ".gov"
	for key, score := range s.priors {
		if strings.HasPrefix(key, ".") && strings.HasSuffix(domain, key) {
			return score
		}
	}

	return s.priors["*"]
}

// registeredDomain reduces a URL or hostname to its registrable part.
// Two labels cover the common case; three when the eTLD itself is
// two labels (co.uk, com.au, ...).
func registeredDomain(source string) string {
	host := source
	if strings.Contains(source, "://") {
		if parsed, err := url.Parse(source); err == nil {
			host = parsed.Hostname()
		}
	}
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	if host == "" || strings.ContainsAny(host, " \t") {
		return ""
	}

	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}

	// second-level country TLDs keep three labels
	secondLevel := map[string]bool{"co": true, "com": true, "org": true, "net": true, "ac": true, "gov": true, "edu": true}
	if len(labels[len(labels)-1]) == 2 && secondLevel[labels[len(labels)-2]] {
		return strings.Join(labels[len(labels)-3:], ".")
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
