package worker

import (
	"context"
	"testing"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://dbpedia.org/sparql"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "https://query.wikidata.org/sparql"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_DomainsAreIndependent(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://dbpedia.org/sparql"); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// token for dbpedia.org is spent, but other hosts are untouched
	if limiter.Allow("https://dbpedia.org/sparql") {
		t.Errorf("expected allow to fail after the burst token was spent")
	}
	if !limiter.Allow("https://query.wikidata.org/sparql") {
		t.Errorf("expected allow for an untouched domain")
	}
}

func TestExtractDomain(t *testing.T) {
	domain, err := extractDomain("https://dbpedia.org/sparql")
	if err != nil {
		t.Fatalf("extractDomain failed: %v", err)
	}
	if domain != "dbpedia.org" {
		t.Errorf("expected dbpedia.org, got %s", domain)
	}

	if _, err = extractDomain("::invalid"); err == nil {
		t.Errorf("expected error for invalid URL")
	}
}
