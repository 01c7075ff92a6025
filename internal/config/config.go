package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config is the full factgraph configuration tree. Everything the
// pipeline tunes at runtime lives here; nothing is hardcoded in the
// retrieval or verdict code.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http" mapstructure:"http"`
	KG      KGConfig      `yaml:"kg" mapstructure:"kg"`
	Linker  LinkerConfig  `yaml:"linker" mapstructure:"linker"`
	Ranker  RankerConfig  `yaml:"ranker" mapstructure:"ranker"`
	Verdict VerdictConfig `yaml:"verdict" mapstructure:"verdict"`
	Trust   TrustConfig   `yaml:"trust" mapstructure:"trust"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	LLM     LLMConfig     `yaml:"llm" mapstructure:"llm"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Workers WorkerConfig  `yaml:"workers" mapstructure:"workers"`
}

// HTTPConfig covers outbound HTTP behavior shared by all clients
type HTTPConfig struct {
	UserAgent  string `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// KGEndpoint is one SPARQL endpoint with an optional public fallback
type KGEndpoint struct {
	Primary  string `yaml:"primary" mapstructure:"primary"`
	Fallback string `yaml:"fallback" mapstructure:"fallback"`
}

// KGConfig tunes path discovery
type KGConfig struct {
	DBpedia  KGEndpoint    `yaml:"dbpedia" mapstructure:"dbpedia"`
	Wikidata KGEndpoint    `yaml:"wikidata" mapstructure:"wikidata"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`

	PageSize    int `yaml:"page_size" mapstructure:"page_size"`
	EdgeLimit   int `yaml:"edge_limit" mapstructure:"edge_limit"`
	TwoHopLimit int `yaml:"two_hop_limit" mapstructure:"two_hop_limit"`
	MaxHops     int `yaml:"max_hops" mapstructure:"max_hops"`

	// HighDegreeThreshold switches a URI to the restricted retrieval
	// strategy when its incident edge count exceeds it.
	HighDegreeThreshold int `yaml:"high_degree_threshold" mapstructure:"high_degree_threshold"`

	// Language filter for literal attributes such as abstracts
	Language string `yaml:"language" mapstructure:"language"`

	AllowedPrefixes     []string `yaml:"allowed_prefixes" mapstructure:"allowed_prefixes"`
	BlacklistPredicates []string `yaml:"blacklist_predicates" mapstructure:"blacklist_predicates"`

	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// LinkerConfig tunes entity linking
type LinkerConfig struct {
	WikidataAPI   string        `yaml:"wikidata_api" mapstructure:"wikidata_api"`
	DBpediaLookup string        `yaml:"dbpedia_lookup" mapstructure:"dbpedia_lookup"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	TopK          int           `yaml:"top_k" mapstructure:"top_k"`
}

// RankerConfig tunes the two-stage evidence ranker
type RankerConfig struct {
	TopK            int     `yaml:"top_k" mapstructure:"top_k"`
	FilterK         int     `yaml:"filter_k" mapstructure:"filter_k"`
	UseBiEncoder    bool    `yaml:"use_bi_encoder" mapstructure:"use_bi_encoder"`
	UseCrossEncoder bool    `yaml:"use_cross_encoder" mapstructure:"use_cross_encoder"`
	RelevanceWeight float64 `yaml:"relevance_weight" mapstructure:"relevance_weight"`
	TrustWeight     float64 `yaml:"trust_weight" mapstructure:"trust_weight"`

	// CrossEncoderURL points at a remote relevance-scoring service
	CrossEncoderURL string        `yaml:"cross_encoder_url" mapstructure:"cross_encoder_url"`
	EmbeddingModel  string        `yaml:"embedding_model" mapstructure:"embedding_model"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// WeakPredicates drops noisy KG items before any scoring
	WeakPredicates []string `yaml:"weak_predicates" mapstructure:"weak_predicates"`
}

// VerdictConfig tunes verdict aggregation
type VerdictConfig struct {
	// Strategy: "nli" (weighted vote) or "llm" (judge)
	Strategy string `yaml:"strategy" mapstructure:"strategy"`

	NLIServiceURL    string        `yaml:"nli_service_url" mapstructure:"nli_service_url"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout"`
	SupportThreshold float64       `yaml:"support_threshold" mapstructure:"support_threshold"`
	MarginThreshold  float64       `yaml:"margin_threshold" mapstructure:"margin_threshold"`

	// KGTrust is the fixed trust constant for KG-sourced evidence
	KGTrust float64 `yaml:"kg_trust" mapstructure:"kg_trust"`
}

// TrustConfig points at the optional domain-trust override table
type TrustConfig struct {
	TablePath string `yaml:"table_path" mapstructure:"table_path"`
}

// SearchConfig tunes the web fallback branch
type SearchConfig struct {
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey     string        `yaml:"api_key" mapstructure:"api_key"`
	NumResults int           `yaml:"num_results" mapstructure:"num_results"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// ExpandPages fetches a result page when its snippet is empty
	ExpandPages       bool    `yaml:"expand_pages" mapstructure:"expand_pages"`
	MaxPageBytes      int64   `yaml:"max_page_bytes" mapstructure:"max_page_bytes"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// LLMConfig configures the LLM collaborators (judge, extractor, paraphraser)
type LLMConfig struct {
	APIKey    string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	Model     string        `yaml:"model" mapstructure:"model"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CacheConfig tunes the TTL caches
type CacheConfig struct {
	PathTTL time.Duration `yaml:"path_ttl" mapstructure:"path_ttl"`
	LinkTTL time.Duration `yaml:"link_ttl" mapstructure:"link_ttl"`
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
}

// WorkerConfig tunes batch evaluation concurrency
type WorkerConfig struct {
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			UserAgent: "factgraph/0.2 (+https://github.com/vkuksa/factgraph)",
		},
		KG: KGConfig{
			DBpedia: KGEndpoint{
				Primary:  "https://dbpedia.org/sparql",
				Fallback: "https://dbpedia.org/sparql",
			},
			Wikidata: KGEndpoint{
				Primary: "https://query.wikidata.org/sparql",
			},
			Timeout:             30 * time.Second,
			PageSize:            1000,
			EdgeLimit:           10000,
			TwoHopLimit:         10000,
			MaxHops:             2,
			HighDegreeThreshold: 10000,
			Language:            "en",
			AllowedPrefixes:     DefaultAllowedPrefixes(),
			BlacklistPredicates: DefaultBlacklistPredicates(),
			RequestsPerSecond:   4,
		},
		Linker: LinkerConfig{
			WikidataAPI:   "https://www.wikidata.org/w/api.php",
			DBpediaLookup: "https://lookup.dbpedia.org/api/search",
			Timeout:       6 * time.Second,
			TopK:          3,
		},
		Ranker: RankerConfig{
			TopK:            10,
			FilterK:         150,
			UseBiEncoder:    true,
			UseCrossEncoder: true,
			RelevanceWeight: 0.8,
			TrustWeight:     0.2,
			EmbeddingModel:  "text-embedding-3-small",
			Timeout:         15 * time.Second,
			WeakPredicates:  DefaultWeakPredicates(),
		},
		Verdict: VerdictConfig{
			Strategy:         "nli",
			Timeout:          20 * time.Second,
			SupportThreshold: 0.6,
			MarginThreshold:  0.7,
			KGTrust:          1.0,
		},
		Search: SearchConfig{
			Endpoint:          "https://www.searchapi.io/api/v1/search",
			NumResults:        40,
			Timeout:           20 * time.Second,
			ExpandPages:       false,
			MaxPageBytes:      2_000_000,
			RequestsPerSecond: 1,
		},
		LLM: LLMConfig{
			Model:     "gpt-4o-mini",
			Timeout:   30 * time.Second,
			MaxTokens: 500,
		},
		Cache: CacheConfig{
			PathTTL: 24 * time.Hour,
			LinkTTL: 24 * time.Hour,
			Enabled: true,
		},
		Workers: WorkerConfig{
			BatchWorkers: 4,
		},
	}
}

// DefaultAllowedPrefixes returns the informative predicate namespaces
func DefaultAllowedPrefixes() []string {
	return []string{
		"http://dbpedia.org/ontology/",
		"http://dbpedia.org/property/",
		"http://www.w3.org/2000/01/rdf-schema#",
	}
}

// DefaultBlacklistPredicates returns the administrative/noise predicates
// dropped from every KG query.
func DefaultBlacklistPredicates() []string {
	return []string{
		"http://dbpedia.org/ontology/wikiPageWikiLink",
		"http://dbpedia.org/ontology/wikiPageExternalLink",
		"http://dbpedia.org/ontology/wikiPageRevisionID",
		"http://dbpedia.org/ontology/wikiPageLength",
		"http://dbpedia.org/ontology/wikiPageID",
		"http://dbpedia.org/ontology/wikiPageRedirects",
		"http://dbpedia.org/ontology/wikiPageDisambiguates",
		"http://dbpedia.org/ontology/thumbnail",
		"http://dbpedia.org/property/wikiPageUsesTemplate",
		"http://dbpedia.org/property/image",
		"http://dbpedia.org/property/imageCaption",
		"http://dbpedia.org/property/imageWidth",
		"http://dbpedia.org/property/caption",
		"http://dbpedia.org/property/note",
		"http://dbpedia.org/property/reason",
		"http://dbpedia.org/property/date",
		"http://dbpedia.org/property/name",
		"http://www.w3.org/1999/02/22-rdf-syntax-ns#type",
		"http://www.w3.org/2000/01/rdf-schema#comment",
		"http://www.w3.org/2000/01/rdf-schema#label",
		"http://www.w3.org/2000/01/rdf-schema#seeAlso",
		"http://www.w3.org/2002/07/owl#sameAs",
	}
}

// DefaultWeakPredicates returns substrings that mark an evidence item
// as noise before ranking.
func DefaultWeakPredicates() []string {
	return []string{
		"wikiPage",
		"sameAs",
		"seeAlso",
		"label",
		"comment",
		"type",
		"url",
	}
}

// Load builds the config from viper state (defaults <- file <- env),
// resolving API keys from the conventional environment variables when
// the config leaves them empty.
func Load() (*Config, error) {
	cfg := Default()
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = os.Getenv("SEARCHAPI_KEY")
	}
	return &cfg, nil
}
