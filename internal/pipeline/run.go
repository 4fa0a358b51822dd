package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/jobfit-pipeline/internal/notify"
	"github.com/jonathan/jobfit-pipeline/internal/relevance"
	"github.com/jonathan/jobfit-pipeline/internal/strategy"
	"github.com/jonathan/jobfit-pipeline/internal/types"
)

// Checkpoint stage names as stored.
const (
	StageClassification = "classification"
	StageRelevance      = "relevance"
	StageStrategy       = "strategy"
	StageContent        = "content"
)

// FitClassifier runs the fit analysis stage.
type FitClassifier interface {
	Classify(ctx context.Context, posting *types.JobPosting, pool *types.ExperiencePool) (*types.FitAnalysis, error)
}

// ContentGenerator runs the generation stage.
type ContentGenerator interface {
	Generate(ctx context.Context, posting *types.JobPosting, fit *types.FitAnalysis, strat *types.ContentStrategy, pool *types.ExperiencePool) (*types.GeneratedContentBundle, error)
}

// Store persists per-stage checkpoints keyed by posting and stage.
type Store interface {
	SaveStageResult(ctx context.Context, postingID, stage string, payload any) error
	LoadStageResult(ctx context.Context, postingID, stage string, out any) (bool, error)
}

// Outcome is the tracking row written for every classified posting.
type Outcome struct {
	PostingID            string
	OverallScore         int
	InterviewProbability int
	Recommendation       types.Recommendation
	Status               string
}

// Tracker records posting outcomes for follow-up.
type Tracker interface {
	UpsertOutcome(ctx context.Context, o Outcome) error
}

// Options configure a Runner. Store, Tracker, and Notifier are optional;
// a nil value disables that concern.
type Options struct {
	Classifier   FitClassifier
	Generator    ContentGenerator
	Pool         *types.ExperiencePool
	RelevanceCfg relevance.Config
	MinScore     int
	Resume       bool
	Store        Store
	Tracker      Tracker
	Notifier     notify.Notifier
	Log          *zap.Logger
}

// Runner executes the stage pipeline for postings.
type Runner struct {
	opts Options
	log  *zap.Logger
}

// NewRunner validates options and builds a runner.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if opts.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if opts.Pool == nil {
		return nil, fmt.Errorf("experience pool is required")
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{opts: opts, log: log}, nil
}

// Run executes every stage for one posting. The returned session is always
// non-nil and holds whatever the run produced, including on failure.
func (r *Runner) Run(ctx context.Context, posting *types.JobPosting) (*Session, error) {
	session := NewSession(posting)

	if err := r.classifyStage(ctx, session); err != nil {
		return session, r.fail(ctx, session, err)
	}
	if session.State.Terminal() {
		return session, nil
	}

	if err := ctx.Err(); err != nil {
		return session, r.fail(ctx, session, err)
	}

	if err := r.relevanceStage(ctx, session); err != nil {
		return session, r.fail(ctx, session, err)
	}
	if session.State.Terminal() {
		return session, nil
	}

	if err := ctx.Err(); err != nil {
		return session, r.fail(ctx, session, err)
	}

	if err := r.generateStage(ctx, session); err != nil {
		return session, r.fail(ctx, session, err)
	}

	session.Disposition = DispositionContentGenerated
	if err := session.Advance(StateDone); err != nil {
		return session, r.fail(ctx, session, err)
	}

	r.log.Info("run complete",
		zap.String("run_id", session.RunID),
		zap.String("posting_id", posting.ID),
		zap.String("disposition", string(session.Disposition)))
	return session, nil
}

// classifyStage produces the fit analysis, applying the minimum score gate.
func (r *Runner) classifyStage(ctx context.Context, session *Session) error {
	posting := session.Posting

	var fit types.FitAnalysis
	loaded := false
	if r.opts.Resume && r.opts.Store != nil {
		ok, err := r.opts.Store.LoadStageResult(ctx, posting.ID, StageClassification, &fit)
		if err != nil {
			r.log.Warn("checkpoint load failed", zap.String("posting_id", posting.ID), zap.Error(err))
		} else if ok {
			loaded = true
			r.log.Info("resuming from classification checkpoint", zap.String("posting_id", posting.ID))
		}
	}

	if !loaded {
		result, err := r.opts.Classifier.Classify(ctx, posting, r.opts.Pool)
		if err != nil {
			return err
		}
		fit = *result
		r.checkpoint(ctx, posting.ID, StageClassification, fit)
	}
	session.Fit = &fit

	r.track(ctx, session, "classified")

	if r.opts.MinScore > 0 && fit.OverallScore < r.opts.MinScore {
		r.log.Info("posting below minimum score, stopping after classification",
			zap.String("posting_id", posting.ID),
			zap.Int("overall_score", fit.OverallScore),
			zap.Int("min_score", r.opts.MinScore))
		session.Disposition = DispositionClassificationOnly
		return session.Advance(StateDone)
	}

	return session.Advance(StateAssessingRelevance)
}

// relevanceStage tiers the pool, short-circuiting when nothing is usable.
func (r *Runner) relevanceStage(ctx context.Context, session *Session) error {
	session.Assessments = relevance.Classify(session.Fit, r.opts.Pool, r.opts.RelevanceCfg)
	r.checkpoint(ctx, session.Posting.ID, StageRelevance, session.Assessments)

	allSkip := true
	for _, a := range session.Assessments {
		if a.Tier != types.TierSkip {
			allSkip = false
			break
		}
	}
	if allSkip {
		r.log.Info("no relevant experience, stopping with empty bundle",
			zap.String("posting_id", session.Posting.ID))
		session.Bundle = &types.GeneratedContentBundle{RoleTitle: session.Posting.Title}
		session.Disposition = DispositionSkipped
		return session.Advance(StateDone)
	}

	return session.Advance(StateGeneratingContent)
}

// generateStage plans the strategy and produces the content bundle.
func (r *Runner) generateStage(ctx context.Context, session *Session) error {
	strat := strategy.Plan(session.Fit, session.Assessments, r.opts.Pool, r.log)
	session.Strategy = &strat
	r.checkpoint(ctx, session.Posting.ID, StageStrategy, strat)

	bundle, err := r.opts.Generator.Generate(ctx, session.Posting, session.Fit, &strat, r.opts.Pool)
	if err != nil {
		return err
	}
	session.Bundle = bundle
	r.checkpoint(ctx, session.Posting.ID, StageContent, bundle)

	r.track(ctx, session, "content_generated")
	return nil
}

// fail finalizes a failed session, notifies, and returns the wrapped error.
func (r *Runner) fail(ctx context.Context, session *Session, err error) error {
	stage := session.State
	session.Fail(err)
	r.track(ctx, session, "failed")

	event := notify.FailureEvent{
		PostingID: session.Posting.ID,
		RunID:     session.RunID,
		Stage:     string(stage),
		Reason:    err.Error(),
	}
	if notifyErr := r.opts.Notifier.NotifyFailure(ctx, event); notifyErr != nil {
		r.log.Warn("failure notification failed", zap.Error(notifyErr))
	}

	r.log.Error("run failed",
		zap.String("run_id", session.RunID),
		zap.String("posting_id", session.Posting.ID),
		zap.String("stage", string(stage)),
		zap.Error(err))
	return fmt.Errorf("pipeline failed at %s for posting %s: %w", stage, session.Posting.ID, err)
}

// checkpoint saves a stage result when a store is configured. Checkpoint
// write failures are logged, not fatal; the run's output is the artifact.
func (r *Runner) checkpoint(ctx context.Context, postingID, stage string, payload any) {
	if r.opts.Store == nil {
		return
	}
	if err := r.opts.Store.SaveStageResult(ctx, postingID, stage, payload); err != nil {
		r.log.Warn("checkpoint save failed",
			zap.String("posting_id", postingID),
			zap.String("stage", stage),
			zap.Error(err))
	}
}

// track upserts the outcome row when a tracker is configured.
func (r *Runner) track(ctx context.Context, session *Session, status string) {
	if r.opts.Tracker == nil || session.Fit == nil {
		return
	}
	o := Outcome{
		PostingID:            session.Posting.ID,
		OverallScore:         session.Fit.OverallScore,
		InterviewProbability: session.Fit.InterviewProbability,
		Recommendation:       session.Fit.Recommendation,
		Status:               status,
	}
	if err := r.opts.Tracker.UpsertOutcome(ctx, o); err != nil {
		r.log.Warn("outcome tracking failed",
			zap.String("posting_id", session.Posting.ID),
			zap.Error(err))
	}
}
