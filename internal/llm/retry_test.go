package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

type scriptedClient struct {
	calls     int
	responses []func() (string, error)
}

func (c *scriptedClient) next() (string, error) {
	idx := c.calls
	c.calls++
	if idx >= len(c.responses) {
		idx = len(c.responses) - 1
	}
	return c.responses[idx]()
}

func (c *scriptedClient) GenerateContent(_ context.Context, _ string, _ ModelTier) (string, error) {
	return c.next()
}

func (c *scriptedClient) GenerateJSON(_ context.Context, _ string, _ ModelTier) (string, error) {
	return c.next()
}

func (c *scriptedClient) GetModel(ModelTier) string { return "test-model" }
func (c *scriptedClient) Close() error              { return nil }

func ok(s string) func() (string, error) {
	return func() (string, error) { return s, nil }
}

func fail(err error) func() (string, error) {
	return func() (string, error) { return "", err }
}

func TestCallerRetriesRateLimit(t *testing.T) {
	client := &scriptedClient{responses: []func() (string, error){
		fail(&googleapi.Error{Code: 429, Message: "rate limited"}),
		fail(&googleapi.Error{Code: 503, Message: "overloaded"}),
		ok("recovered"),
	}}

	caller := NewCaller(client, 3, zap.NewNop())
	caller.initialInterval = time.Millisecond
	out, err := caller.GenerateContent(context.Background(), "prompt", TierStandard)

	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Equal(t, 3, client.calls)
}

func TestCallerPermanentErrorNoRetry(t *testing.T) {
	wantErr := errors.New("invalid prompt")
	client := &scriptedClient{responses: []func() (string, error){fail(wantErr)}}

	caller := NewCaller(client, 3, zap.NewNop())
	_, err := caller.GenerateJSON(context.Background(), "prompt", TierAdvanced)

	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, client.calls)
}

func TestCallerExhaustsRetries(t *testing.T) {
	client := &scriptedClient{responses: []func() (string, error){
		fail(&googleapi.Error{Code: 500, Message: "server error"}),
	}}

	caller := NewCaller(client, 2, zap.NewNop())
	caller.initialInterval = time.Millisecond
	_, err := caller.GenerateContent(context.Background(), "prompt", TierLite)

	require.Error(t, err)
	assert.Equal(t, 3, client.calls) // initial attempt plus two retries
}

func TestCallerSucceedsFirstTry(t *testing.T) {
	client := &scriptedClient{responses: []func() (string, error){ok(`{"x":1}`)}}

	caller := NewCaller(client, 3, zap.NewNop())
	out, err := caller.GenerateJSON(context.Background(), "prompt", TierStandard)

	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, out)
	assert.Equal(t, 1, client.calls)
}
