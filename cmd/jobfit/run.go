package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobfit-pipeline/internal/classify"
	"github.com/jonathan/jobfit-pipeline/internal/config"
	"github.com/jonathan/jobfit-pipeline/internal/db"
	"github.com/jonathan/jobfit-pipeline/internal/experience"
	"github.com/jonathan/jobfit-pipeline/internal/generate"
	"github.com/jonathan/jobfit-pipeline/internal/ingestion"
	"github.com/jonathan/jobfit-pipeline/internal/llm"
	"github.com/jonathan/jobfit-pipeline/internal/notify"
	"github.com/jonathan/jobfit-pipeline/internal/observability"
	"github.com/jonathan/jobfit-pipeline/internal/pipeline"
	"github.com/jonathan/jobfit-pipeline/internal/relevance"
	"github.com/jonathan/jobfit-pipeline/internal/scoring"
	"github.com/jonathan/jobfit-pipeline/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full job-fit pipeline over a batch of postings",
	Long: `Processes each posting end-to-end: classification -> relevance assessment -> content strategy -> guarded generation.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath    string
	runPostings      string
	runPostingID     string
	runExperience    string
	runAPIKey        string
	runDatabaseURL   string
	runNotifyWebhook string
	runConcurrency   int
	runRetryAttempts int
	runMinScore      int
	runResume        bool
	runVerbose       bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runPostings, "postings", "p", "", "Path to postings JSON file (array of job postings)")
	runCommand.Flags().StringVar(&runPostingID, "posting-id", "", "Process only the posting with this ID")
	runCommand.Flags().StringVarP(&runExperience, "experience", "e", "", "Path to experience pool JSON file")
	runCommand.Flags().IntVar(&runConcurrency, "concurrency", 0, "Postings processed in parallel")
	runCommand.Flags().IntVar(&runRetryAttempts, "retry-attempts", 0, "Model call retries on transient errors")
	runCommand.Flags().IntVar(&runMinScore, "min-score", 0, "Minimum overall score to generate content (0 disables the gate)")
	runCommand.Flags().BoolVar(&runResume, "resume", false, "Resume from saved stage checkpoints (requires a database)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed stage output")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for checkpoints and outcome tracking
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	runCommand.Flags().StringVar(&runNotifyWebhook, "notify-webhook", "", "Webhook URL for failure notifications (optional)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("postings") {
		cfg.Postings = runPostings
	}
	if cmd.Flags().Changed("experience") {
		cfg.Experience = runExperience
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("notify-webhook") {
		cfg.NotifyWebhook = runNotifyWebhook
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = runConcurrency
	}
	if cmd.Flags().Changed("retry-attempts") {
		cfg.RetryAttempts = runRetryAttempts
	}
	if cmd.Flags().Changed("min-score") {
		cfg.MinScore = runMinScore
	}
	if cmd.Flags().Changed("resume") {
		cfg.Resume = runResume
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}

	// Step 3: Apply defaults for unset values, then validate
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Step 4: Validate required fields
	if cfg.Postings == "" {
		return fmt.Errorf("--postings is required (via flag or config)")
	}
	if cfg.Experience == "" {
		return fmt.Errorf("--experience is required (via flag or config)")
	}

	// Step 5: API Key handling
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	// Step 6: Database URL handling (optional; enables checkpoints and tracking)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.Resume && cfg.DatabaseURL == "" {
		return fmt.Errorf("--resume requires a database; provide --db-url or DATABASE_URL")
	}

	log, err := newLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	postings, err := loadPostings(cfg.Postings, runPostingID)
	if err != nil {
		return err
	}
	if len(postings) == 0 {
		return fmt.Errorf("no postings to process")
	}

	pool, err := experience.LoadPool(cfg.Experience)
	if err != nil {
		return fmt.Errorf("failed to load experience pool: %w", err)
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	caller := llm.NewCaller(client, cfg.RetryAttempts, log)

	opts := pipeline.Options{
		Classifier: classify.New(caller, scoring.DefaultWeights(), scoring.DefaultThresholds(), log),
		Generator:  generate.New(caller, generate.DefaultBudgets(), log),
		Pool:       pool,
		RelevanceCfg: relevance.Config{
			HighOverlap:   cfg.HighOverlap,
			MediumOverlap: cfg.MediumOverlap,
		},
		MinScore: cfg.MinScore,
		Resume:   cfg.Resume,
		Log:      log,
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		opts.Store = database
		opts.Tracker = database
	}

	if cfg.NotifyWebhook != "" {
		opts.Notifier = notify.NewWebhookNotifier(cfg.NotifyWebhook, log)
	}

	runner, err := pipeline.NewRunner(opts)
	if err != nil {
		return err
	}

	summary, err := runner.RunBatch(ctx, postings, cfg.Concurrency)
	if err != nil {
		return fmt.Errorf("batch aborted: %w", err)
	}

	printSummary(summary, cfg.Verbose)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d postings failed", summary.Failed, summary.Processed)
	}
	return nil
}

// loadPostings reads the postings file, optionally narrowing to one ID, and
// cleans each description before the batch starts. Accepts a JSON array or
// JSONL, one posting object per line.
func loadPostings(path, onlyID string) ([]*types.JobPosting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read postings file: %w", err)
	}

	raw, err := parsePostings(data)
	if err != nil {
		return nil, err
	}

	postings := make([]*types.JobPosting, 0, len(raw))
	for i := range raw {
		posting := &raw[i]
		if onlyID != "" && posting.ID != onlyID {
			continue
		}
		if err := ingestion.Prepare(posting); err != nil {
			return nil, fmt.Errorf("posting %s: %w", posting.ID, err)
		}
		postings = append(postings, posting)
	}

	if onlyID != "" && len(postings) == 0 {
		return nil, fmt.Errorf("posting %s not found in %s", onlyID, path)
	}
	return postings, nil
}

func parsePostings(data []byte) ([]types.JobPosting, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raw []types.JobPosting
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse postings JSON: %w", err)
		}
		return raw, nil
	}

	var raw []types.JobPosting
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var posting types.JobPosting
		if err := json.Unmarshal(text, &posting); err != nil {
			return nil, fmt.Errorf("failed to parse posting on line %d: %w", line, err)
		}
		raw = append(raw, posting)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read postings: %w", err)
	}
	return raw, nil
}

func printSummary(summary *pipeline.Summary, verbose bool) {
	printer := observability.NewPrinter(os.Stdout)

	if verbose {
		for _, session := range summary.Sessions {
			fmt.Fprintf(os.Stdout, "\n=== %s (%s) ===\n", session.Posting.ID, session.Disposition)
			printer.PrintFitAnalysis(session.Fit)
			printer.PrintAssessments(session.Assessments)
			printer.PrintStrategy(session.Strategy)
			printer.PrintBundle(session.Bundle)
		}
	}

	fmt.Fprintf(os.Stdout, "\nProcessed:           %d\n", summary.Processed)
	fmt.Fprintf(os.Stdout, "Content generated:   %d\n", summary.ContentGenerated)
	fmt.Fprintf(os.Stdout, "Classification only: %d\n", summary.ClassificationOnly)
	fmt.Fprintf(os.Stdout, "Skipped:             %d\n", summary.Skipped)
	fmt.Fprintf(os.Stdout, "Failed:              %d\n", summary.Failed)
	for _, failure := range summary.Failures {
		fmt.Fprintf(os.Stdout, "  %s at %s: %v\n", failure.PostingID, failure.Stage, failure.Err)
	}
}
