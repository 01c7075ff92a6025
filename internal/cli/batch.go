package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vkuksa/factgraph/internal/config"
	"github.com/vkuksa/factgraph/internal/model"
	"github.com/vkuksa/factgraph/internal/worker"
)

var (
	batchMode    string
	batchWorkers int
	batchOut     string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify a file of claims concurrently",
	Long: `Batch reads one claim per line (plain text or FEVER-style JSONL with
"claim" and optional "label" fields), verifies them concurrently, and
reports accuracy over the labeled subset.

Example:
  factgraph batch claims.jsonl
  factgraph batch claims.jsonl --workers 8 --out results.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchMode, "mode", "hybrid", "evidence mode: hybrid, kg_only, web_only")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent verifications (default from config)")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "write per-claim results as JSONL (optional)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 60*time.Minute, "overall batch timeout")
}

type batchRecord struct {
	Claim      string      `json:"claim"`
	GoldLabel  string      `json:"gold_label,omitempty"`
	Label      model.Label `json:"label,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	Error      string      `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	workers := batchWorkers
	if workers <= 0 {
		workers = cfg.Workers.BatchWorkers
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	processor := worker.NewBatchProcessor(p, model.ParseMode(batchMode), workers)
	outcomes, err := processor.ProcessFile(ctx, args[0])
	if err != nil {
		return err
	}

	if batchOut != "" {
		if err := writeOutcomes(batchOut, outcomes); err != nil {
			return err
		}
	}

	s := worker.Summarize(outcomes)
	fmt.Printf("Claims:  %d\n", s.Total)
	fmt.Printf("Failed:  %d\n", s.Failed)
	for _, label := range model.Labels {
		count := 0
		for _, o := range outcomes {
			if o.Result != nil && o.Result.Label == label {
				count++
			}
		}
		fmt.Printf("%-16s %d\n", string(label)+":", count)
	}
	if s.Labeled > 0 {
		fmt.Printf("Labeled: %d\n", s.Labeled)
		fmt.Printf("Correct: %d\n", s.Correct)
		fmt.Printf("Accuracy: %.1f%%\n", s.Accuracy()*100)
	}
	return nil
}

func writeOutcomes(path string, outcomes []*worker.VerifyOutcome) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", closeErr)
		}
	}()

	enc := json.NewEncoder(f)
	for _, o := range outcomes {
		rec := batchRecord{Claim: o.Input.Claim, GoldLabel: o.Input.Label}
		if o.Error != nil {
			rec.Error = o.Error.Error()
		} else if o.Result != nil {
			rec.Label = o.Result.Label
			rec.Confidence = o.Result.Confidence
			rec.Reason = o.Result.Reason
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return nil
}
