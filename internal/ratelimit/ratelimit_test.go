package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/glazier/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilPreviewLimiterAllows(t *testing.T) {
	var l *PreviewLimiter
	assert.False(t, l.Enabled())

	res, err := l.Allow(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestPreviewLimiterDisabledWithoutConfig(t *testing.T) {
	assert.Nil(t, NewPreviewLimiter(nil, config.Config{}, nil))
}

func TestTokenBucketRejectsInvalidBucket(t *testing.T) {
	var b *TokenBucket
	_, err := b.Allow(context.Background(), "k", 1, 1)
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.Nil(t, NewTokenBucket(nil))
}

func TestEvaluate(t *testing.T) {
	res := evaluate(true, 4, 2, 5)
	assert.Equal(t, Result{Allowed: true, Limit: 5, Remaining: 4}, res)

	res = evaluate(false, 0.5, 2, 5)
	assert.False(t, res.Allowed)
	assert.Equal(t, 250*time.Millisecond, res.RetryAfter)
}

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, 10*time.Second, bucketTTL(2, 10))
	assert.Equal(t, time.Second, bucketTTL(100, 1))
	assert.Equal(t, time.Second, bucketTTL(0, 1))
}

func TestCasts(t *testing.T) {
	assert.Equal(t, int64(1), castToInt(int64(1)))
	assert.Equal(t, int64(3), castToInt("3"))
	assert.Equal(t, 2.75, castToFloat("2.75"))
	assert.Equal(t, float64(4), castToFloat(int64(4)))
	assert.Equal(t, float64(0), castToFloat(nil))
}
