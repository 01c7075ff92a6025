package trust

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScore_KGNames(t *testing.T) {
	s, err := NewScorer("")
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}

	for _, kg := range []string{"dbpedia", "wikidata"} {
		if got := s.Score(kg); got != 1.0 {
			t.Errorf("Score(%q) = %v, want 1.0", kg, got)
		}
	}
}

func TestScore_DomainTable(t *testing.T) {
	s, err := NewScorer("")
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}

	tests := []struct {
		url  string
		want float64
	}{
		{"https://www.nytimes.com/2024/article.html", 0.9},
		{"https://www.bbc.co.uk/news/world", 0.9},
		{"https://data.census.gov/table", 0.95},
		{"https://old.reddit.com/r/askhistorians", 0.1},
		{"https://random-blog.example.com/post", 0.5},
	}
	for _, tt := range tests {
		if got := s.Score(tt.url); got != tt.want {
			t.Errorf("Score(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestScore_OverrideTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trust.yaml")
	if err := os.WriteFile(path, []byte("example.org: 0.85\nreddit.com: 0.3\n"), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}

	s, err := NewScorer(path)
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}

	if got := s.Score("https://example.org/page"); got != 0.85 {
		t.Errorf("override example.org = %v, want 0.85", got)
	}
	if got := s.Score("https://reddit.com/r/x"); got != 0.3 {
		t.Errorf("override reddit.com = %v, want 0.3", got)
	}
	// untouched defaults survive a partial override
	if got := s.Score("https://nytimes.com/a"); got != 0.9 {
		t.Errorf("default nytimes.com = %v, want 0.9", got)
	}
}

func TestScore_MalformedSource(t *testing.T) {
	s, _ := NewScorer("")
	if got := s.Score("not a url at all"); got != 0.5 {
		t.Errorf("malformed source = %v, want fallback 0.5", got)
	}
}
