package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

// Caller wraps a Client with retry on transient provider failures. Rate
// limits and server errors are retried with exponential backoff; anything
// else fails immediately.
type Caller struct {
	client          Client
	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
	log             *zap.Logger
}

// NewCaller wraps client with up to maxRetries retries per call.
func NewCaller(client Client, maxRetries int, log *zap.Logger) *Caller {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Caller{
		client:          client,
		maxRetries:      uint64(maxRetries),
		initialInterval: 2 * time.Second,
		maxInterval:     30 * time.Second,
		log:             log,
	}
}

// GenerateContent calls the underlying client with retry.
func (c *Caller) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.call(ctx, tier, func() (string, error) {
		return c.client.GenerateContent(ctx, prompt, tier)
	})
}

// GenerateJSON calls the underlying client with retry.
func (c *Caller) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.call(ctx, tier, func() (string, error) {
		return c.client.GenerateJSON(ctx, prompt, tier)
	})
}

// GetModel returns the model name the wrapped client uses for a tier.
func (c *Caller) GetModel(tier ModelTier) string {
	return c.client.GetModel(tier)
}

// Close releases the wrapped client.
func (c *Caller) Close() error {
	return c.client.Close()
}

func (c *Caller) call(ctx context.Context, tier ModelTier, fn func() (string, error)) (string, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialInterval
	policy.MaxInterval = c.maxInterval

	attempt := 0
	return backoff.RetryNotifyWithData(func() (string, error) {
		attempt++
		out, err := fn()
		if err == nil {
			return out, nil
		}
		if !transient(err) {
			return "", backoff.Permanent(err)
		}
		return "", err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx), func(err error, wait time.Duration) {
		c.log.Warn("model call failed, retrying",
			zap.String("tier", string(tier)),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
}

// transient reports whether err is worth retrying: provider rate limits,
// server-side errors, or a timed-out attempt.
func transient(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	return errors.Is(err, context.DeadlineExceeded)
}
