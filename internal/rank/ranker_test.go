package rank

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vkuksa/factgraph/internal/config"
	"github.com/vkuksa/factgraph/internal/model"
)

// fakeBiEncoder maps known texts to fixed 2-d vectors
type fakeBiEncoder struct {
	vectors map[string][]float32
	calls   int
	err     error
}

func (f *fakeBiEncoder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, txt := range texts {
		if v, ok := f.vectors[txt]; ok {
			out[i] = v
		} else {
			out[i] = []float32{1, 0}
		}
	}
	return out, nil
}

type fakeCrossEncoder struct {
	scores map[string]float64
	err    error
	calls  int
}

func (f *fakeCrossEncoder) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float64, len(texts))
	for i, txt := range texts {
		out[i] = f.scores[txt]
	}
	return out, nil
}

func pathItem(pred string, trust float64) model.EvidenceItem {
	return model.EvidenceItem{
		Path: model.Path{{
			Subject:   "http://dbpedia.org/resource/Paris",
			Predicate: pred,
			Object:    "http://dbpedia.org/resource/France",
			Source:    "dbpedia",
		}},
		Source: "dbpedia",
		Trust:  trust,
	}
}

func snippetItem(text, link string, trust float64) model.EvidenceItem {
	return model.EvidenceItem{Snippet: text, Source: link, Trust: trust}
}

func rankerCfg() config.RankerConfig {
	cfg := config.Default().Ranker
	cfg.TopK = 10
	return cfg
}

func TestRank_EmptyInput(t *testing.T) {
	r := NewRanker(rankerCfg(), nil, nil)
	out, err := r.Rank(context.Background(), "claim", nil, nil, 5, true)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty output, got %d items", len(out))
	}
}

func TestRank_CrossEncoderOrderingAndCap(t *testing.T) {
	cross := &fakeCrossEncoder{scores: map[string]float64{
		"snippet a": 0.2,
		"snippet b": 0.9,
		"snippet c": 0.5,
	}}
	r := NewRanker(rankerCfg(), nil, cross)

	items := []model.EvidenceItem{
		snippetItem("snippet a", "https://a.example.com", 0.5),
		snippetItem("snippet b", "https://b.example.com", 0.5),
		snippetItem("snippet c", "https://c.example.com", 0.5),
	}
	out, err := r.Rank(context.Background(), "claim", nil, items, 2, false)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("expected k=2 items, got %d", len(out))
	}
	if out[0].Snippet != "snippet b" || out[1].Snippet != "snippet c" {
		t.Errorf("wrong order: %q then %q", out[0].Snippet, out[1].Snippet)
	}
	for i := 1; i < len(out); i++ {
		if out[i].Combined > out[i-1].Combined {
			t.Error("combined scores not non-increasing")
		}
	}
}

func TestRank_CombinedBlendsTrust(t *testing.T) {
	cross := &fakeCrossEncoder{scores: map[string]float64{"same snippet text": 0.5, "other snippet": 0.5}}
	r := NewRanker(rankerCfg(), nil, cross)

	items := []model.EvidenceItem{
		snippetItem("same snippet text", "https://low.example.com", 0.1),
		snippetItem("other snippet", "https://high.example.com", 1.0),
	}
	out, err := r.Rank(context.Background(), "claim", nil, items, 2, false)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}

	// equal relevance, so trust decides: 0.8*0.5+0.2*1.0 vs 0.8*0.5+0.2*0.1
	if out[0].Source != "https://high.example.com" {
		t.Errorf("expected trust to break the tie, got %q first", out[0].Source)
	}
	if got, want := out[0].Combined, 0.8*0.5+0.2*1.0; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("combined = %v, want %v", got, want)
	}
}

func TestRank_WeakPredicatesDropped(t *testing.T) {
	cross := &fakeCrossEncoder{scores: map[string]float64{}}
	r := NewRanker(rankerCfg(), nil, cross)

	items := []model.EvidenceItem{
		pathItem("http://dbpedia.org/ontology/wikiPageWikiLink", 1.0),
		pathItem("http://www.w3.org/2002/07/owl#sameAs", 1.0),
		pathItem("http://www.w3.org/2000/01/rdf-schema#seeAlso", 1.0),
		pathItem("http://dbpedia.org/ontology/capital", 1.0),
	}
	out, err := r.Rank(context.Background(), "claim", nil, items, 10, false)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("expected only the informative path to survive, got %d", len(out))
	}
	if !strings.HasSuffix(out[0].Path[0].Predicate, "capital") {
		t.Errorf("wrong survivor: %s", out[0].Path[0].Predicate)
	}
}

func TestRank_DuplicateTripleScoredOnce(t *testing.T) {
	cross := &fakeCrossEncoder{scores: map[string]float64{}}
	r := NewRanker(rankerCfg(), nil, cross)

	// the same (s,p,o) arriving from two retrieval calls
	items := []model.EvidenceItem{
		pathItem("http://dbpedia.org/ontology/capital", 1.0),
		pathItem("http://dbpedia.org/ontology/capital", 1.0),
	}
	out, err := r.Rank(context.Background(), "claim", nil, items, 10, false)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("expected duplicate triple deduplicated before scoring, got %d items", len(out))
	}
}

func TestRank_PrefilterBoundsCrossEncoderInput(t *testing.T) {
	cfg := rankerCfg()
	cfg.FilterK = 2

	bi := &fakeBiEncoder{vectors: map[string][]float32{
		"claim":     {1, 0},
		"snippet a": {1, 0},   // sim 1.0
		"snippet b": {0.9, 1}, // lower
		"snippet c": {0, 1},   // sim 0.0
	}}
	var crossTexts []string
	cross := &fakeCrossEncoder{scores: map[string]float64{}}
	r := NewRanker(cfg, bi, &recordingCross{inner: cross, texts: &crossTexts})

	items := []model.EvidenceItem{
		snippetItem("snippet a", "https://a.example.com", 0.5),
		snippetItem("snippet b", "https://b.example.com", 0.5),
		snippetItem("snippet c", "https://c.example.com", 0.5),
	}
	if _, err := r.Rank(context.Background(), "claim", nil, items, 3, true); err != nil {
		t.Fatalf("rank: %v", err)
	}

	if len(crossTexts) != 2 {
		t.Errorf("expected cross-encoder to see filter_k=2 texts, got %d", len(crossTexts))
	}
	for _, txt := range crossTexts {
		if txt == "snippet c" {
			t.Error("lowest-similarity item survived the prefilter")
		}
	}
}

type recordingCross struct {
	inner CrossEncoder
	texts *[]string
}

func (r *recordingCross) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	*r.texts = append(*r.texts, texts...)
	return r.inner.Score(ctx, query, texts)
}

func TestRank_CrossEncoderFailureFallsBackToBiEncoder(t *testing.T) {
	bi := &fakeBiEncoder{vectors: map[string][]float32{
		"claim":     {1, 0},
		"snippet a": {1, 0},
		"snippet b": {0, 1},
	}}
	cross := &fakeCrossEncoder{err: errors.New("service down")}
	r := NewRanker(rankerCfg(), bi, cross)

	items := []model.EvidenceItem{
		snippetItem("snippet b", "https://b.example.com", 0.5),
		snippetItem("snippet a", "https://a.example.com", 0.5),
	}
	out, err := r.Rank(context.Background(), "claim", nil, items, 2, false)
	if err != nil {
		t.Fatalf("rank must not fail when the cross-encoder does: %v", err)
	}
	if out[0].Snippet != "snippet a" {
		t.Errorf("expected bi-encoder fallback ordering, got %q first", out[0].Snippet)
	}
}

func TestRank_EntityBoostInBiEncoderMode(t *testing.T) {
	cfg := rankerCfg()
	cfg.UseCrossEncoder = false

	// both paths read identically to the claim encoder, but only one has
	// matching endpoints
	bi := &fakeBiEncoder{vectors: map[string][]float32{
		"Paris":   {1, 0},
		"France":  {0, 1},
		"Berlin":  {-1, 0},
		"Germany": {0, -1},
	}}
	r := NewRanker(cfg, bi, nil)

	triple := &model.Triple{Subject: "Paris", Predicate: "capital of", Object: "France"}
	items := []model.EvidenceItem{
		{
			Path: model.Path{{
				Subject:   "http://dbpedia.org/resource/Berlin",
				Predicate: "http://dbpedia.org/ontology/capital",
				Object:    "http://dbpedia.org/resource/Germany",
				Source:    "dbpedia",
			}},
			Source: "dbpedia",
			Trust:  1.0,
		},
		{
			Path: model.Path{{
				Subject:   "http://dbpedia.org/resource/Paris",
				Predicate: "http://dbpedia.org/ontology/capital",
				Object:    "http://dbpedia.org/resource/France",
				Source:    "dbpedia",
			}},
			Source: "dbpedia",
			Trust:  1.0,
		},
	}
	out, err := r.Rank(context.Background(), "Paris is the capital of France", triple, items, 2, false)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if !strings.Contains(out[0].Path[0].Subject, "Paris") {
		t.Errorf("expected entity boost to prefer the matching endpoints, got %s", out[0].Path[0].Subject)
	}
}
