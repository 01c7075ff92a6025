package verdict

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vkuksa/factgraph/internal/llm"
	"github.com/vkuksa/factgraph/internal/model"
)

// JudgeClassifier asks the LLM for a single verdict over the whole
// evidence list. Used as an alternative to the NLI vote.
type JudgeClassifier struct {
	client *llm.Client
}

// NewJudgeClassifier creates the judge strategy
func NewJudgeClassifier(client *llm.Client) *JudgeClassifier {
	return &JudgeClassifier{client: client}
}

const judgeSystem = `You are a world-class fact-verification assistant.
Given a claim and a small numbered list of evidence snippets, decide exactly one label:
  - Supported - at least one snippet clearly confirms the claim.
  - Refuted - at least one snippet explicitly contradicts the claim.
  - Not Enough Info - the snippets neither confirm nor contradict it.
Use only the provided snippets; do not invent facts or fetch external data.
Output exactly one JSON object matching:
{"label": "<Supported|Refuted|Not Enough Info>", "reason": "<one short sentence citing snippet number(s)>"}`

// JudgeReply is the judge's JSON output contract
type JudgeReply struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// Classify renders numbered evidence and parses the judge's reply.
// Unparseable replies fall through a label scan and finally to
// Not Enough Info.
func (j *JudgeClassifier) Classify(ctx context.Context, claim string, evidence []model.EvidenceItem) (*model.Verdict, error) {
	if len(evidence) == 0 {
		return &model.Verdict{
			Label:  model.LabelNotEnoughInfo,
			Reason: "no evidence to assess",
		}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Claim: %s\n\nEvidence snippets:\n", claim)
	for i, ev := range evidence {
		text := ev.Text()
		if ev.IsPath() {
			text = ev.Path.Arrow()
		}
		fmt.Fprintf(&b, "[%2d] %s\n", i+1, text)
	}

	reply, err := j.client.Complete(ctx, judgeSystem, b.String())
	if err != nil {
		return &model.Verdict{
			Label:  model.LabelNotEnoughInfo,
			Reason: fmt.Sprintf("judge completion failed: %v", err),
		}, nil
	}

	label, reason := parseJudgeReply(reply)

	classified := make([]model.ClassifiedEvidence, len(evidence))
	for i, ev := range evidence {
		classified[i] = model.ClassifiedEvidence{EvidenceItem: ev}
	}

	confidence := 0.0
	if label != model.LabelNotEnoughInfo {
		confidence = 1.0
	}
	return &model.Verdict{
		Label:      label,
		Confidence: confidence,
		Reason:     reason,
		Evidence:   classified,
	}, nil
}

// parseJudgeReply extracts the label from the model output: strict
// JSON first, then JSON inside a code fence, then a case-insensitive
// label scan over the raw text.
func parseJudgeReply(reply string) (model.Label, string) {
	text := strings.TrimSpace(reply)

	for _, candidate := range []string{text, stripFence(text)} {
		var parsed JudgeReply
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			for _, lbl := range model.Labels {
				if strings.EqualFold(parsed.Label, string(lbl)) {
					return lbl, strings.TrimSpace(parsed.Reason)
				}
			}
		}
	}

	// scan most-specific first: "not supported" must not read as Supported
	low := strings.ToLower(text)
	switch {
	case strings.Contains(low, "not enough info"):
		return model.LabelNotEnoughInfo, text
	case strings.Contains(low, "refut"):
		return model.LabelRefuted, text
	case strings.Contains(low, "support") && !strings.Contains(low, "not support") && !strings.Contains(low, "unsupport"):
		return model.LabelSupported, text
	}
	return model.LabelNotEnoughInfo, "judge reply did not contain a recognizable label"
}

// stripFence removes a surrounding markdown code fence, if any
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
