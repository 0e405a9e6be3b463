package rest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/inspection-sync/internal/adapter/rest"
)

func TestDefaultRetryConfig_NoRetries(t *testing.T) {
	config := rest.DefaultRetryConfig()

	assert.Equal(t, 0, config.MaxRetries)
}

func TestRetryWithBackoff_SucceedsFirstAttempt(t *testing.T) {
	attempts := 0
	err := rest.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	}, rest.DefaultRetryConfig())

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_ZeroRetriesRunsOnce(t *testing.T) {
	attempts := 0
	wantErr := rest.NewServiceUnavailableError("github", "down")

	err := rest.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		attempts++
		return wantErr
	}, rest.DefaultRetryConfig())

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_RetriesRetryableErrors(t *testing.T) {
	attempts := 0
	config := rest.RetryConfig{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		Multiplier:     1.0,
	}

	err := rest.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return rest.NewRateLimitError("github", "slow down")
		}
		return nil
	}, config)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_NonRetryableFailsImmediately(t *testing.T) {
	attempts := 0
	config := rest.RetryConfig{
		MaxRetries:     5,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		Multiplier:     1.0,
	}

	err := rest.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		attempts++
		return rest.NewAuthenticationError("github", "bad token")
	}, config)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rest.RetryWithBackoff(ctx, func(ctx context.Context) error {
		return nil
	}, rest.DefaultRetryConfig())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestShouldRetry(t *testing.T) {
	assert.False(t, rest.ShouldRetry(nil))
	assert.False(t, rest.ShouldRetry(errors.New("generic")))
	assert.False(t, rest.ShouldRetry(rest.NewInvalidRequestError("github", "bad")))
	assert.True(t, rest.ShouldRetry(rest.NewRateLimitError("github", "limited")))
}

func TestError_Is(t *testing.T) {
	err := rest.NewRateLimitError("github", "limited")

	assert.True(t, errors.Is(err, &rest.Error{Type: rest.ErrTypeRateLimit}))
	assert.False(t, errors.Is(err, &rest.Error{Type: rest.ErrTypeAuthentication}))
}
