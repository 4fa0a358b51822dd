package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/jobfit-pipeline/internal/types"
)

// BatchFailure records one posting that could not be processed.
type BatchFailure struct {
	PostingID string
	Stage     State
	Err       error
}

// Summary counts how a batch of postings ended.
type Summary struct {
	Processed          int
	ContentGenerated   int
	ClassificationOnly int
	Skipped            int
	Failed             int
	Failures           []BatchFailure
	Sessions           []*Session
}

// RunBatch processes postings concurrently, up to concurrency at a time.
// One posting's failure never cancels the others; failures are collected
// into the summary. Only context cancellation stops the batch early.
func (r *Runner) RunBatch(ctx context.Context, postings []*types.JobPosting, concurrency int) (*Summary, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	summary := &Summary{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, posting := range postings {
		posting := posting
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			session, err := r.Run(ctx, posting)

			mu.Lock()
			defer mu.Unlock()
			summary.Processed++
			summary.Sessions = append(summary.Sessions, session)
			if err != nil {
				summary.Failed++
				summary.Failures = append(summary.Failures, BatchFailure{
					PostingID: posting.ID,
					Stage:     session.FailureStage,
					Err:       err,
				})
				return nil
			}
			switch session.Disposition {
			case DispositionContentGenerated:
				summary.ContentGenerated++
			case DispositionClassificationOnly:
				summary.ClassificationOnly++
			case DispositionSkipped:
				summary.Skipped++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}

	r.log.Info("batch complete",
		zap.Int("processed", summary.Processed),
		zap.Int("content_generated", summary.ContentGenerated),
		zap.Int("classification_only", summary.ClassificationOnly),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))
	return summary, nil
}
