// Package link resolves claim surface forms to ranked KB URI
// candidates across Wikidata and DBpedia.
package link

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vkuksa/factgraph/internal/cache"
	"github.com/vkuksa/factgraph/internal/config"
	"github.com/vkuksa/factgraph/internal/kg"
	"github.com/vkuksa/factgraph/internal/model"
	"github.com/vkuksa/factgraph/internal/util"
)

// Linker maps a surface form to ranked KB URI candidates
type Linker interface {
	Link(ctx context.Context, surface string, topK int) ([]model.EntityCandidate, error)
}

// Client chains Wikidata search, owl:sameAs DBpedia mapping, DBpedia
// Lookup, and a last-resort heuristic URI. Results are cached under a
// TTL.
type Client struct {
	cfg        config.LinkerConfig
	httpClient *http.Client
	userAgent  string
	sameAs     *kg.SPARQLClient
	store      cache.Cache
	ttl        time.Duration
}

// NewClient creates a linker. sameAs resolves Wikidata QIDs to DBpedia
// resources; store may be nil to disable caching.
func NewClient(cfg config.LinkerConfig, httpCfg config.HTTPConfig, sameAs *kg.SPARQLClient, store cache.Cache, ttl time.Duration) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: util.NewHTTPClient(cfg.Timeout, httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
		userAgent:  httpCfg.UserAgent,
		sameAs:     sameAs,
		store:      store,
		ttl:        ttl,
	}
}

// Link resolves a surface form into at most topK candidates per KB,
// sorted by descending score. An empty surface yields no candidates.
func (c *Client) Link(ctx context.Context, surface string, topK int) ([]model.EntityCandidate, error) {
	surface = strings.TrimSpace(surface)
	if surface == "" {
		return nil, nil
	}
	if topK <= 0 {
		topK = c.cfg.TopK
	}

	key := cache.LinkKey(surface, topK)
	if c.store != nil {
		if data, ok := c.store.Get(key); ok {
			var cached []model.EntityCandidate
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	cands := c.wikidataSearch(ctx, surface, topK)

	if len(cands) == 0 {
		cands = c.dbpediaLookup(ctx, surface, topK)
	}

	// heuristic last resort: a direct resource URI from the surface form
	if !hasKB(cands, "dbpedia") {
		uri := "http://dbpedia.org/resource/" + url.PathEscape(strings.ReplaceAll(surface, " ", "_"))
		cands = append(cands, model.EntityCandidate{Surface: surface, URI: uri, KB: "dbpedia", Score: 0.2})
	}

	if c.store != nil {
		if data, err := json.Marshal(cands); err == nil {
			_ = c.store.Set(key, data, c.ttl)
		}
	}
	return cands, nil
}

// wikidataSearch queries wbsearchentities and maps each QID to its
// DBpedia resource where one exists. Scores decay with rank.
func (c *Client) wikidataSearch(ctx context.Context, surface string, topK int) []model.EntityCandidate {
	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("search", surface)
	params.Set("language", "en")
	params.Set("limit", fmt.Sprint(topK))
	params.Set("format", "json")

	var parsed struct {
		Search []struct {
			ID string `json:"id"`
		} `json:"search"`
	}
	if err := c.getJSON(ctx, c.cfg.WikidataAPI+"?"+params.Encode(), &parsed); err != nil {
		return nil
	}

	var cands []model.EntityCandidate
	for rank, hit := range parsed.Search {
		if hit.ID == "" {
			continue
		}
		score := 1.0 - float64(rank)/float64(max(topK, 1))
		cands = append(cands, model.EntityCandidate{
			Surface: surface,
			URI:     "http://www.wikidata.org/entity/" + hit.ID,
			KB:      "wikidata",
			Score:   score,
		})
		if dbp := c.wikidataToDBpedia(ctx, hit.ID); dbp != "" {
			cands = append(cands, model.EntityCandidate{Surface: surface, URI: dbp, KB: "dbpedia", Score: score})
		}
	}
	return cands
}

// wikidataToDBpedia resolves a QID through owl:sameAs
func (c *Client) wikidataToDBpedia(ctx context.Context, qid string) string {
	if c.sameAs == nil {
		return ""
	}
	q := fmt.Sprintf(
		"PREFIX owl: <http://www.w3.org/2002/07/owl#>\n"+
			"SELECT ?dbp WHERE {\n"+
			"  ?dbp owl:sameAs <http://www.wikidata.org/entity/%s> .\n"+
			"  FILTER(STRSTARTS(STR(?dbp), \"http://dbpedia.org/resource/\"))\n"+
			"} LIMIT 1",
		qid,
	)
	rows, err := c.sameAs.Query(ctx, q)
	if err != nil || len(rows) == 0 {
		return ""
	}
	return rows[0]["dbp"].Value
}

// dbpediaLookup is the fallback keyword search against DBpedia Lookup
func (c *Client) dbpediaLookup(ctx context.Context, surface string, topK int) []model.EntityCandidate {
	params := url.Values{}
	params.Set("query", surface)
	params.Set("maxResults", fmt.Sprint(topK))
	params.Set("format", "JSON")

	var parsed struct {
		Docs []struct {
			Resource []string `json:"resource"`
			Score    []string `json:"score"`
		} `json:"docs"`
	}
	if err := c.getJSON(ctx, c.cfg.DBpediaLookup+"?"+params.Encode(), &parsed); err != nil {
		return nil
	}

	var cands []model.EntityCandidate
	for rank, doc := range parsed.Docs {
		if len(doc.Resource) == 0 {
			continue
		}
		score := 1.0 - float64(rank)/float64(max(topK, 1))
		if len(doc.Score) > 0 {
			var s float64
			if _, err := fmt.Sscanf(doc.Score[0], "%f", &s); err == nil && s > 0 {
				score = s
			}
		}
		cands = append(cands, model.EntityCandidate{Surface: surface, URI: doc.Resource[0], KB: "dbpedia", Score: score})
		if len(cands) >= topK {
			break
		}
	}
	return cands
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func hasKB(cands []model.EntityCandidate, kb string) bool {
	for _, c := range cands {
		if c.KB == kb {
			return true
		}
	}
	return false
}
