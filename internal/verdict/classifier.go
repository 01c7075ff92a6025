// Package verdict aggregates classified evidence into a final label
package verdict

import (
	"context"

	"github.com/vkuksa/factgraph/internal/model"
)

// Classifier turns ranked evidence into a verdict. Implementations
// must return Not Enough Info rather than guessing when the evidence
// is silent.
type Classifier interface {
	Classify(ctx context.Context, claim string, evidence []model.EvidenceItem) (*model.Verdict, error)
}

// NLI labels the relation of one premise to a hypothesis
type NLI interface {
	Batch(ctx context.Context, hypothesis string, premises []string) ([]model.NLIResult, error)
}
