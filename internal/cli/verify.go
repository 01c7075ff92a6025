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
)

var (
	verifyMode    string
	verifyTimeout time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <claim>",
	Short: "Verify a single claim against the knowledge graphs",
	Long: `Verify parses the claim into a triple, links its entities to DBpedia
and Wikidata, searches for connecting relation paths, and aggregates
the ranked evidence into a verdict. In hybrid mode an indecisive KG
verdict escalates to web search.

Example:
  factgraph verify "Paris is the capital of France"
  factgraph verify --mode kg_only "AlbertEinstein was born in Ulm"`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyMode, "mode", "hybrid", "evidence mode: hybrid, kg_only, web_only")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 3*time.Minute, "overall verification timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	claim := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Verifying: %s\n", claim)
		fmt.Fprintf(os.Stderr, "Mode: %s\n\n", verifyMode)
	}

	result, err := p.Verify(ctx, claim, model.ParseMode(verifyMode))
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
