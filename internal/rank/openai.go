package rank

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBiEncoder implements BiEncoder on the embeddings API
type OpenAIBiEncoder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAIBiEncoder wraps an existing client; model falls back to
// text-embedding-3-small.
func NewOpenAIBiEncoder(client *openai.Client, model string) *OpenAIBiEncoder {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAIBiEncoder{client: client, model: openai.EmbeddingModel(model)}
}

// Embed encodes all texts in one batched request. Ranking must not
// proceed on a partial batch, so any failure fails the whole call.
func (e *OpenAIBiEncoder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: want %d, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
