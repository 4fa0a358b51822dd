package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobfit-pipeline/internal/observability"
	"github.com/jonathan/jobfit-pipeline/internal/scoring"
	"github.com/jonathan/jobfit-pipeline/internal/types"
)

var scoreCommand = &cobra.Command{
	Use:   "score",
	Short: "Recompute the overall score for a saved fit analysis",
	Long: `Loads a fit analysis JSON file (for example a classification checkpoint), recomputes the overall score, recommendation, and interview probability from the four dimension scores, and prints the result.

Useful for re-scoring after threshold changes without re-running the model.`,
	RunE: scoreCmd,
}

var (
	scoreAnalysisPath string
	scoreJSON         bool
)

func init() {
	scoreCommand.Flags().StringVarP(&scoreAnalysisPath, "analysis", "a", "", "Path to fit analysis JSON file")
	scoreCommand.Flags().BoolVar(&scoreJSON, "json", false, "Print the rescored analysis as JSON")
	_ = scoreCommand.MarkFlagRequired("analysis")

	rootCmd.AddCommand(scoreCommand)
}

func scoreCmd(_ *cobra.Command, _ []string) error {
	data, err := os.ReadFile(scoreAnalysisPath)
	if err != nil {
		return fmt.Errorf("failed to read analysis file: %w", err)
	}

	var fit types.FitAnalysis
	if err := json.Unmarshal(data, &fit); err != nil {
		return fmt.Errorf("failed to parse analysis JSON: %w", err)
	}

	overall, rec := scoring.Evaluate(fit.Analysis, scoring.DefaultWeights(), scoring.DefaultThresholds())
	fit.OverallScore = overall
	fit.Recommendation = rec
	fit.InterviewProbability = scoring.InterviewProbability(overall, fit.Analysis)

	if scoreJSON {
		out, err := json.MarshalIndent(&fit, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal rescored analysis: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	}

	observability.NewPrinter(os.Stdout).PrintFitAnalysis(&fit)
	return nil
}
