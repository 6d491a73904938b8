package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:      3,
		InitialBackoff:   time.Millisecond,
		MaxBackoff:       5 * time.Millisecond,
		RateLimitPenalty: time.Millisecond,
	}
}

func TestDoVal_RetriesTransient(t *testing.T) {
	attempts := 0
	val, err := DoVal(context.Background(), fastConfig(), func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, NewTransientError(eris.New("flaky"), 503)
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 3, attempts)
}

func TestDoVal_StopsOnPermanentError(t *testing.T) {
	attempts := 0
	_, err := DoVal(context.Background(), fastConfig(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, eris.New("bad request")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDoVal_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	_, err := DoVal(context.Background(), fastConfig(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, NewTransientError(eris.New("still down"), 503)
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoVal_ContextCancelStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	_, err := DoVal(ctx, fastConfig(), func(ctx context.Context) (int, error) {
		attempts++
		cancel()
		return 0, NewTransientError(eris.New("flaky"), 503)
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(NewRateLimitError(eris.New("throttled"))))
	assert.True(t, IsRateLimited(NewTransientError(eris.New("x"), 429)))
	assert.False(t, IsRateLimited(eris.New("plain failure")))
}

func TestDo(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
