package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient failure")

func fastConfig(maxAttempts int, retryable func(error) bool) Config {
	return Config{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		Retryable:   retryable,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), fastConfig(3, nil), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), fastConfig(3, nil), func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errTransient
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(3, nil), func(ctx context.Context) (int, error) {
		calls++
		return 0, errTransient
	})

	// The original error comes back unwrapped, not a summary.
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnNonRetryableError(t *testing.T) {
	fatal := errors.New("bad credentials")
	calls := 0
	_, err := Do(context.Background(), fastConfig(5, func(err error) bool {
		return !errors.Is(err, fatal)
	}), func(ctx context.Context) (int, error) {
		calls++
		return 0, fatal
	})

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDo_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := Config{MaxAttempts: 3, BaseDelay: 10 * time.Second}
	calls := 0

	done := make(chan struct{})
	var err error
	go func() {
		defer close(done)
		_, err = Do(ctx, cfg, func(ctx context.Context) (int, error) {
			calls++
			return 0, errTransient
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Do did not return promptly after cancellation")
	}

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_ZeroConfigStillRuns(t *testing.T) {
	result, err := Do(context.Background(), Config{}, func(ctx context.Context) (bool, error) {
		return true, nil
	})

	require.NoError(t, err)
	assert.True(t, result)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(nil)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, time.Second, cfg.BaseDelay)
}
