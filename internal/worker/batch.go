package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/vkuksa/factgraph/internal/model"
)

// Verifier runs one claim through the verification flow
type Verifier interface {
	Verify(ctx context.Context, claim string, mode model.Mode) (*model.VerifyResult, error)
}

// Claim is one batch input line: the claim text plus an optional gold
// label for accuracy scoring.
type Claim struct {
	Claim string `json:"claim"`
	Label string `json:"label,omitempty"`
}

// VerifyJob verifies a single claim
type VerifyJob struct {
	Input    Claim
	Mode     model.Mode
	Verifier Verifier
}

// Execute runs the verification job
func (j *VerifyJob) Execute(ctx context.Context) Result {
	result, err := j.Verifier.Verify(ctx, j.Input.Claim, j.Mode)
	return &VerifyOutcome{
		Input:  j.Input,
		Result: result,
		Error:  err,
	}
}

// VerifyOutcome is the result of one batch job
type VerifyOutcome struct {
	Input  Claim
	Result *model.VerifyResult
	Error  error
}

// GetError returns the error from the outcome
func (o *VerifyOutcome) GetError() error {
	return o.Error
}

// Correct reports whether the predicted label matches the gold label.
// Outcomes without a gold label are never correct or incorrect.
func (o *VerifyOutcome) Correct() bool {
	if o.Input.Label == "" || o.Error != nil || o.Result == nil {
		return false
	}
	return strings.EqualFold(o.Input.Label, string(o.Result.Label))
}

// BatchProcessor verifies many claims concurrently
type BatchProcessor struct {
	verifier    Verifier
	mode        model.Mode
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(verifier Verifier, mode model.Mode, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		verifier:    verifier,
		mode:        mode,
		concurrency: concurrency,
	}
}

// ProcessClaims verifies all claims through the worker pool
func (b *BatchProcessor) ProcessClaims(ctx context.Context, claims []Claim) []*VerifyOutcome {
	if len(claims) == 0 {
		return []*VerifyOutcome{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, c := range claims {
		pool.Submit(&VerifyJob{Input: c, Mode: b.mode, Verifier: b.verifier})
	}

	results := pool.Wait()

	outcomes := make([]*VerifyOutcome, len(results))
	for i, result := range results {
		outcomes[i] = result.(*VerifyOutcome)
	}
	return outcomes
}

// ProcessFile reads claims from a file and verifies them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*VerifyOutcome, error) {
	claims, err := ReadClaimsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}
	return b.ProcessClaims(ctx, claims), nil
}

// ReadClaimsFromFile reads one claim per line. Lines are parsed as
// JSON objects when they start with '{', otherwise the whole line is
// the claim text. Empty lines and comments are skipped.
func ReadClaimsFromFile(filePath string) ([]Claim, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var claims []Claim
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var c Claim
		if strings.HasPrefix(line, "{") {
			if err := json.Unmarshal([]byte(line), &c); err != nil {
				return nil, fmt.Errorf("parse line %q: %w", line, err)
			}
		} else {
			c.Claim = line
		}
		if c.Claim == "" || seen[c.Claim] {
			continue
		}
		seen[c.Claim] = true
		claims = append(claims, c)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return claims, nil
}

// Summary aggregates batch accuracy over the labeled subset
type Summary struct {
	Total   int
	Labeled int
	Correct int
	Failed  int
}

// Summarize tallies outcomes into a summary
func Summarize(outcomes []*VerifyOutcome) Summary {
	var s Summary
	s.Total = len(outcomes)
	for _, o := range outcomes {
		if o.Error != nil {
			s.Failed++
			continue
		}
		if o.Input.Label != "" {
			s.Labeled++
			if o.Correct() {
				s.Correct++
			}
		}
	}
	return s
}

// Accuracy returns correct/labeled, or 0 when nothing was labeled
func (s Summary) Accuracy() float64 {
	if s.Labeled == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Labeled)
}
