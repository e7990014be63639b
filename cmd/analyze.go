package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/supplier-cli/internal/fetcher"
	"github.com/sells-group/supplier-cli/internal/ingest"
	"github.com/sells-group/supplier-cli/pkg/anthropic"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Suggest column mappings for a raw table",
	Long:  "Reads a CSV or XLSX file and prints suggested column-to-role mappings with confidence and detected case, without modifying anything. Review the output, adjust it, and feed it to ingest via --mappings.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		table, err := fetcher.ReadTableFile(ctx, args[0])
		if err != nil {
			return err
		}

		useLLM, _ := cmd.Flags().GetBool("llm")
		strategy, err := buildStrategy(useLLM)
		if err != nil {
			return err
		}

		analysis, err := strategy.Analyze(ctx, table)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}
		return printJSON(analysis)
	},
}

// buildStrategy assembles the inference strategy from config and flags.
func buildStrategy(useLLM bool) (ingest.Strategy, error) {
	pattern := &ingest.PatternStrategy{SampleSize: cfg.Ingest.SampleSize}
	if !useLLM {
		return pattern, nil
	}
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic API key is required for --llm (SUPPLIER_ANTHROPIC_KEY)")
	}
	return &ingest.LLMStrategy{
		Client:    anthropic.NewClient(cfg.Anthropic.Key),
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
		Fallback:  pattern,
	}, nil
}

func init() {
	analyzeCmd.Flags().Bool("llm", false, "use the Anthropic API for mapping suggestions (falls back to pattern matching)")
	rootCmd.AddCommand(analyzeCmd)
}
