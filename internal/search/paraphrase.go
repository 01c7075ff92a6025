package search

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/vkuksa/factgraph/internal/llm"
)

// Paraphraser turns a claim into high-recall search queries
type Paraphraser interface {
	Queries(ctx context.Context, claim string) ([]string, error)
}

// LLMParaphraser implements Paraphraser with a forced function call
type LLMParaphraser struct {
	client *llm.Client
}

// NewLLMParaphraser creates a paraphraser on a shared LLM client
func NewLLMParaphraser(client *llm.Client) *LLMParaphraser {
	return &LLMParaphraser{client: client}
}

const paraphraseSystem = "You are an expert fact-checking assistant who writes superb Google queries."

const paraphraseDescription = "Reformulate the given claim into 3-5 concise, high-recall " +
	"web-search queries. Each query should be at most ~12 words, keep critical named " +
	"entities, dates and numbers, add quotation marks for exact phrases when it helps, " +
	"and avoid hashtags or advanced operators other than quotes."

var paraphraseSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"queries": {
			"type": "array",
			"items": {"type": "string"}
		}
	},
	"required": ["queries"]
}`)

type paraphraseReply struct {
	Queries []string `json:"queries"`
}

// Queries returns the model's query suggestions. The claim itself is
// the fallback when the model returns none.
func (p *LLMParaphraser) Queries(ctx context.Context, claim string) ([]string, error) {
	args, err := p.client.CallTool(ctx, paraphraseSystem, claim,
		"paraphrase_for_search", paraphraseDescription, paraphraseSchema)
	if err != nil {
		return []string{claim}, nil
	}

	var reply paraphraseReply
	if err := json.Unmarshal(args, &reply); err != nil {
		return []string{claim}, nil
	}

	var queries []string
	for _, q := range reply.Queries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		return []string{claim}, nil
	}
	return queries, nil
}
