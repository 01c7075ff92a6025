package verdict

import (
	"context"
	"fmt"

	"github.com/vkuksa/factgraph/internal/config"
	"github.com/vkuksa/factgraph/internal/model"
)

// VoteClassifier labels each evidence item with NLI and aggregates a
// weighted vote. Each item votes with weight = trust * confidence;
// neutral items contribute nothing. The verdict is decisive only when
// total mass exceeds the support threshold and the winning side holds
// more than the margin share of it.
type VoteClassifier struct {
	nli NLI
	cfg config.VerdictConfig
}

// NewVoteClassifier creates the weighted-vote strategy
func NewVoteClassifier(nli NLI, cfg config.VerdictConfig) *VoteClassifier {
	return &VoteClassifier{nli: nli, cfg: cfg}
}

// Classify runs NLI over all evidence and tallies the vote
func (v *VoteClassifier) Classify(ctx context.Context, claim string, evidence []model.EvidenceItem) (*model.Verdict, error) {
	if len(evidence) == 0 {
		return &model.Verdict{
			Label:  model.LabelNotEnoughInfo,
			Reason: "no evidence to assess",
		}, nil
	}

	premises := make([]string, len(evidence))
	for i, ev := range evidence {
		premises[i] = ev.Text()
	}

	// an unreachable NLI service degrades to Not Enough Info; the
	// request still gets a final label
	results, err := v.nli.Batch(ctx, claim, premises)
	if err != nil {
		return &model.Verdict{
			Label:  model.LabelNotEnoughInfo,
			Reason: fmt.Sprintf("nli classification failed: %v", err),
		}, nil
	}

	var support, refute float64
	classified := make([]model.ClassifiedEvidence, len(evidence))
	for i, ev := range evidence {
		weight := ev.Trust * results[i].Confidence
		classified[i] = model.ClassifiedEvidence{
			EvidenceItem: ev,
			Label:        results[i].Label,
			Confidence:   results[i].Confidence,
			Weight:       weight,
		}
		switch results[i].Label {
		case model.NLIEntailment:
			support += weight
		case model.NLIContradiction:
			refute += weight
		}
	}

	label, reason := v.decide(support, refute)
	return &model.Verdict{
		Label:      label,
		Confidence: max(support, refute),
		Reason:     reason,
		Evidence:   classified,
	}, nil
}

func (v *VoteClassifier) decide(support, refute float64) (model.Label, string) {
	total := support + refute
	if total > v.cfg.SupportThreshold && max(support, refute)/total > v.cfg.MarginThreshold {
		if support > refute {
			return model.LabelSupported, fmt.Sprintf("support mass %.3f outweighs refute mass %.3f", support, refute)
		}
		return model.LabelRefuted, fmt.Sprintf("refute mass %.3f outweighs support mass %.3f", refute, support)
	}
	return model.LabelNotEnoughInfo, fmt.Sprintf("vote not decisive: support=%.3f refute=%.3f", support, refute)
}
