package kg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func sparqlJSON(rows string) string {
	return `{"head":{"vars":["p","o"]},"results":{"bindings":[` + rows + `]}}`
}

func TestSPARQLClient_Query(t *testing.T) {
	var gotQuery, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/sparql-results+json")
		_, _ = w.Write([]byte(sparqlJSON(
			`{"p":{"type":"uri","value":"http://dbpedia.org/ontology/capital"},"o":{"type":"uri","value":"http://dbpedia.org/resource/France"}}`,
		)))
	}))
	defer srv.Close()

	c := NewSPARQLClient(srv.URL, 5*time.Second, "factgraph-test", nil, "", "", "")
	rows, err := c.Query(context.Background(), "SELECT ?p ?o WHERE { <x> ?p ?o }")
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if gotQuery != "SELECT ?p ?o WHERE { <x> ?p ?o }" {
		t.Errorf("query param = %q", gotQuery)
	}
	if gotAccept != "application/sparql-results+json" {
		t.Errorf("accept header = %q", gotAccept)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["o"].Value != "http://dbpedia.org/resource/France" {
		t.Errorf("binding value = %q", rows[0]["o"].Value)
	}
}

func TestSPARQLClient_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "endpoint overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewSPARQLClient(srv.URL, 5*time.Second, "factgraph-test", nil, "", "", "")
	if _, err := c.Query(context.Background(), "SELECT * WHERE { ?s ?p ?o }"); err == nil {
		t.Error("expected error for 503 response")
	}
}

func TestSPARQLClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not sparql</html>"))
	}))
	defer srv.Close()

	c := NewSPARQLClient(srv.URL, 5*time.Second, "factgraph-test", nil, "", "", "")
	if _, err := c.Query(context.Background(), "SELECT * WHERE { ?s ?p ?o }"); err == nil {
		t.Error("expected error for malformed response body")
	}
}
