package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vkuksa/factgraph/internal/config"
	"github.com/vkuksa/factgraph/internal/model"
	"github.com/vkuksa/factgraph/internal/util"
)

type fakeSearch struct {
	results []model.SearchResult
	err     error
	gotQ    string
}

func (f *fakeSearch) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	f.gotQ = query
	return f.results, f.err
}

type fixedTrust struct{ score float64 }

func (t fixedTrust) Score(string) float64 { return t.score }

func TestSearchAPIClient_ParsesOrganicResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "paris capital" {
			t.Errorf("query = %q", got)
		}
		if got := r.URL.Query().Get("engine"); got != "google" {
			t.Errorf("engine = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"organic_results":[
			{"title":"Paris","snippet":"Paris is the capital of France.","link":"https://en.wikipedia.org/wiki/Paris"},
			{"title":"France","snippet":"","link":"https://example.com/france"}
		]}`))
	}))
	defer srv.Close()

	cfg := config.Default().Search
	cfg.Endpoint = srv.URL
	cfg.APIKey = "test-key"
	c := NewSearchAPIClient(cfg, config.Default().HTTP)

	results, err := c.Search(context.Background(), "paris capital")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Title != "Paris" || results[0].Link != "https://en.wikipedia.org/wiki/Paris" {
		t.Errorf("first result = %+v", results[0])
	}
}

func TestSearchAPIClient_NoAPIKey(t *testing.T) {
	cfg := config.Default().Search
	cfg.APIKey = ""
	c := NewSearchAPIClient(cfg, config.Default().HTTP)
	if _, err := c.Search(context.Background(), "anything"); err == nil {
		t.Fatal("expected error without an API key")
	}
}

func TestRetriever_TripleQueryAndTrust(t *testing.T) {
	search := &fakeSearch{results: []model.SearchResult{
		{Title: "A", Snippet: "Paris is the capital of France.", Link: "https://www.bbc.com/a"},
		{Title: "B", Snippet: "", Link: "https://example.com/empty"},
	}}
	r := NewRetriever(config.Default().Search, search, nil, fixedTrust{0.9}, nil)

	triple := &model.Triple{Subject: "Paris", Predicate: "capital of", Object: "France"}
	items, err := r.Gather(context.Background(), "Paris is the capital of France", triple)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	if search.gotQ != `"Paris" "capital of" "France"` {
		t.Errorf("query = %q", search.gotQ)
	}
	if len(items) != 1 {
		t.Fatalf("expected snippetless result dropped, got %d items", len(items))
	}
	if items[0].Trust != 0.9 {
		t.Errorf("trust = %v", items[0].Trust)
	}
	if items[0].IsPath() {
		t.Error("web item must not carry a path")
	}
}

type fakePara struct{ queries []string }

func (f fakePara) Queries(ctx context.Context, claim string) ([]string, error) {
	return f.queries, nil
}

func TestRetriever_ParaphrasedQueryWithoutTriple(t *testing.T) {
	search := &fakeSearch{}
	r := NewRetriever(config.Default().Search, search, fakePara{[]string{"statue of liberty location"}}, fixedTrust{0.5}, nil)

	if _, err := r.Gather(context.Background(), "The Statue of Liberty is in Paris", nil); err != nil {
		t.Fatalf("gather: %v", err)
	}
	if search.gotQ != "statue of liberty location" {
		t.Errorf("query = %q", search.gotQ)
	}
}

func TestExtractParagraphs(t *testing.T) {
	page := `<html><body>
		<nav>menu junk</nav>
		<p>First paragraph.</p>
		<div><p>Nested <b>second</b> paragraph.</p></div>
	</body></html>`

	text, err := extractParagraphs(strings.NewReader(page))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "First paragraph.") || !strings.Contains(text, "Nested second paragraph.") {
		t.Errorf("paragraph text missing: %q", text)
	}
	if strings.Contains(text, "menu junk") {
		t.Errorf("non-paragraph text leaked: %q", text)
	}
}

func TestPageExpander_RespectsRobots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		_, _ = w.Write([]byte("<html><body><p>open content</p></body></html>"))
	}))
	defer srv.Close()

	robots := util.NewRobotsChecker("factgraph", 2*time.Second)
	e := NewPageExpander(robots, nil, "factgraph", 2*time.Second, 0)

	if _, err := e.Expand(context.Background(), srv.URL+"/private/page"); err == nil {
		t.Fatal("expected robots.txt to block the fetch")
	}

	text, err := e.Expand(context.Background(), srv.URL+"/public/page")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if !strings.Contains(text, "open content") {
		t.Errorf("text = %q", text)
	}
}
