// Package extract turns a natural-language claim into a
// (subject, predicate, object) triple via an OpenIE-style tool call.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vkuksa/factgraph/internal/llm"
	"github.com/vkuksa/factgraph/internal/model"
)

// Extractor parses a claim into a triple
type Extractor interface {
	Extract(ctx context.Context, claim string) (*model.Triple, error)
}

// LLMExtractor implements Extractor with a forced function call
type LLMExtractor struct {
	client *llm.Client
}

// NewLLMExtractor creates an extractor on a shared LLM client
func NewLLMExtractor(client *llm.Client) *LLMExtractor {
	return &LLMExtractor{client: client}
}

const extractSystem = "You are a precise OpenIE system. Return ONLY a tool call that " +
	"extracts every factual triple in the claim."

var extractSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"triples": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"subject": {"type": "string"},
					"predicate": {"type": "string"},
					"object": {"type": "string"}
				},
				"required": ["subject", "predicate", "object"]
			}
		}
	},
	"required": ["triples"]
}`)

type extractReply struct {
	Triples []model.Triple `json:"triples"`
}

// Extract returns the first complete triple in the claim, or an error
// when the model extracts none.
func (e *LLMExtractor) Extract(ctx context.Context, claim string) (*model.Triple, error) {
	claim = strings.TrimSpace(claim)
	if claim == "" {
		return nil, fmt.Errorf("empty claim")
	}

	args, err := e.client.CallTool(ctx, extractSystem, claim,
		"extract_triples", "Extract ONE OR MORE factual triples from the claim.", extractSchema)
	if err != nil {
		return nil, fmt.Errorf("extract triples: %w", err)
	}

	var reply extractReply
	if err := json.Unmarshal(args, &reply); err != nil {
		return nil, fmt.Errorf("parse extraction: %w", err)
	}

	for _, t := range reply.Triples {
		if t.Subject != "" && t.Predicate != "" && t.Object != "" {
			out := t
			return &out, nil
		}
	}
	return nil, fmt.Errorf("no triple extracted from claim")
}
