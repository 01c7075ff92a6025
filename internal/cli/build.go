package cli

import (
	"fmt"
	"time"

	"github.com/vkuksa/factgraph/internal/cache"
	"github.com/vkuksa/factgraph/internal/config"
	"github.com/vkuksa/factgraph/internal/extract"
	"github.com/vkuksa/factgraph/internal/kg"
	"github.com/vkuksa/factgraph/internal/link"
	"github.com/vkuksa/factgraph/internal/llm"
	"github.com/vkuksa/factgraph/internal/pipeline"
	"github.com/vkuksa/factgraph/internal/rank"
	"github.com/vkuksa/factgraph/internal/search"
	"github.com/vkuksa/factgraph/internal/trust"
	"github.com/vkuksa/factgraph/internal/util"
	"github.com/vkuksa/factgraph/internal/verdict"
	"github.com/vkuksa/factgraph/internal/worker"
)

// buildPipeline assembles the full verification flow from config
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("LLM client: %w", err)
	}
	extractor := extract.NewLLMExtractor(llmClient)

	var store cache.Cache
	if cfg.Cache.Enabled {
		store = cache.NewMemoryCache(cfg.Cache.PathTTL, 10*time.Minute)
	}

	limiter := worker.NewLimiter(cfg.KG.RequestsPerSecond, 5)
	sources := []kg.Source{
		kg.NewDBpediaSource(cfg.KG, cfg.HTTP, limiter),
		kg.NewWikidataSource(cfg.KG, cfg.HTTP, limiter),
	}
	paths := kg.NewPathFinder(sources, cfg.KG, store, cfg.Cache.PathTTL)

	sameAs := kg.NewSPARQLClient(cfg.KG.DBpedia.Primary, cfg.KG.Timeout, cfg.HTTP.UserAgent,
		limiter, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	linker := link.NewClient(cfg.Linker, cfg.HTTP, sameAs, store, cfg.Cache.LinkTTL)

	bi := rank.NewOpenAIBiEncoder(llmClient.API(), cfg.Ranker.EmbeddingModel)
	var cross rank.CrossEncoder
	if cfg.Ranker.UseCrossEncoder && cfg.Ranker.CrossEncoderURL != "" {
		cross = rank.NewRemoteCrossEncoder(cfg.Ranker.CrossEncoderURL, cfg.Ranker.Timeout, cfg.HTTP.UserAgent)
	}
	ranker := rank.NewRanker(cfg.Ranker, bi, cross)

	classifier, err := buildClassifier(cfg, llmClient)
	if err != nil {
		return nil, err
	}

	trustScorer, err := trust.NewScorer(cfg.Trust.TablePath)
	if err != nil {
		return nil, fmt.Errorf("trust table: %w", err)
	}

	var web pipeline.WebRetriever
	if cfg.Search.APIKey != "" {
		searchClient := search.NewSearchAPIClient(cfg.Search, cfg.HTTP)
		para := search.NewLLMParaphraser(llmClient)

		var expander *search.PageExpander
		if cfg.Search.ExpandPages {
			robots := util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.Search.Timeout)
			webLimiter := worker.NewLimiter(cfg.Search.RequestsPerSecond, 2)
			expander = search.NewPageExpander(robots, webLimiter, cfg.HTTP.UserAgent,
				cfg.Search.Timeout, cfg.Search.MaxPageBytes)
		}
		web = search.NewRetriever(cfg.Search, searchClient, para, trustScorer, expander)
	}

	return pipeline.New(cfg, extractor, linker, paths, ranker, web, classifier), nil
}

// buildClassifier picks the verdict strategy. The NLI vote needs a
// served model; without one the LLM judge takes over.
func buildClassifier(cfg *config.Config, llmClient *llm.Client) (verdict.Classifier, error) {
	switch cfg.Verdict.Strategy {
	case "llm":
		return verdict.NewJudgeClassifier(llmClient), nil
	case "nli", "":
		if cfg.Verdict.NLIServiceURL == "" {
			return verdict.NewJudgeClassifier(llmClient), nil
		}
		nli := verdict.NewRemoteNLI(cfg.Verdict.NLIServiceURL, cfg.Verdict.Timeout, cfg.HTTP.UserAgent)
		return verdict.NewVoteClassifier(nli, cfg.Verdict), nil
	default:
		return nil, fmt.Errorf("unknown verdict strategy %q", cfg.Verdict.Strategy)
	}
}
