// Package classify runs the fit analysis stage: one model call per posting,
// validated against a schema, with the score arithmetic recomputed locally.
package classify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/jobfit-pipeline/internal/guard"
	"github.com/jonathan/jobfit-pipeline/internal/llm"
	"github.com/jonathan/jobfit-pipeline/internal/schemas"
	"github.com/jonathan/jobfit-pipeline/internal/scoring"
	"github.com/jonathan/jobfit-pipeline/internal/types"
)

// minResponseLength is the shortest raw response that could plausibly hold
// a fit analysis object.
const minResponseLength = 100

// Generator is the model call surface the classifier needs.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

// RejectedError marks a model response the guard refused. Classification
// has no fallback content, so a rejection fails the posting.
type RejectedError struct {
	Reason guard.Reason
	Detail string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("classification rejected (%s): %s", e.Reason, e.Detail)
}

// Classifier produces a FitAnalysis for a posting. The model supplies the
// dimension scores and qualitative signals; overall score, recommendation,
// and interview probability are always computed here.
type Classifier struct {
	gen        Generator
	weights    scoring.Weights
	thresholds scoring.Thresholds
	log        *zap.Logger
}

// New creates a classifier with the given score parameters.
func New(gen Generator, weights scoring.Weights, thresholds scoring.Thresholds, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{gen: gen, weights: weights, thresholds: thresholds, log: log}
}

// modelFitAnalysis is the shape the model returns. It deliberately has no
// overall score field; the model is never asked for one.
type modelFitAnalysis struct {
	Confidence         string                `json:"confidence"`
	Analysis           types.DimensionScores `json:"analysis"`
	RequiredKeywords   []string              `json:"required_keywords_for_ats"`
	MetricsToHighlight []string              `json:"metrics_to_highlight"`
	DealBreakers       []string              `json:"deal_breakers"`
	StrategicNotes     string                `json:"strategic_notes"`
}

// Classify runs the fit analysis for one posting.
func (c *Classifier) Classify(ctx context.Context, posting *types.JobPosting, pool *types.ExperiencePool) (*types.FitAnalysis, error) {
	prompt, err := buildPrompt(posting, pool)
	if err != nil {
		return nil, err
	}

	raw, err := c.gen.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, fmt.Errorf("fit analysis call failed: %w", err)
	}

	if r := guard.Validate(raw, guard.Constraints{
		Location:  "classification",
		MinLength: minResponseLength,
	}, nil); !r.OK {
		return nil, &RejectedError{Reason: r.Reason, Detail: r.Detail}
	}

	doc := llm.ExtractJSONObject(raw)
	if err := schemas.Validate(schemas.FitAnalysis, doc); err != nil {
		return nil, fmt.Errorf("fit analysis response invalid: %w", err)
	}

	var model modelFitAnalysis
	if err := json.Unmarshal([]byte(doc), &model); err != nil {
		return nil, fmt.Errorf("failed to parse fit analysis: %w", err)
	}

	overall, rec := scoring.Evaluate(model.Analysis, c.weights, c.thresholds)

	fit := &types.FitAnalysis{
		OverallScore:         overall,
		InterviewProbability: scoring.InterviewProbability(overall, model.Analysis),
		Recommendation:       rec,
		Confidence:           model.Confidence,
		Analysis:             model.Analysis,
		RequiredKeywords:     model.RequiredKeywords,
		MetricsToHighlight:   model.MetricsToHighlight,
		DealBreakers:         model.DealBreakers,
		StrategicNotes:       model.StrategicNotes,
	}

	c.log.Info("posting classified",
		zap.String("posting_id", posting.ID),
		zap.Int("overall_score", overall),
		zap.String("recommendation", string(rec)),
		zap.Int("interview_probability", fit.InterviewProbability))

	return fit, nil
}
