package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWait_NoDelay(t *testing.T) {
	// Large burst means tokens are immediately available; Wait should return fast.
	l := New(100, 100)
	start := time.Now()
	err := l.Wait(context.Background())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWait_NilLimiterNeverBlocks(t *testing.T) {
	var l *Limiter
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
}

func TestNew_NonPositiveRate(t *testing.T) {
	assert.Nil(t, New(0, 1))
	assert.Nil(t, New(-3, 1))
	assert.NotNil(t, New(0.5, 0))
}

func TestWait_ContextCancelled(t *testing.T) {
	// 1 QPS limiter: the second call would wait ~1s; cancelling unblocks it.
	l := New(1, 1)
	// Consume the only available token.
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWait_PacesToConfiguredRate(t *testing.T) {
	// 2 QPS with burst 1: the second token arrives ~500ms after the first.
	l := New(2, 1)
	require.NoError(t, l.Wait(context.Background()))

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, l.Wait(ctx))

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 400*time.Millisecond)
	assert.LessOrEqual(t, elapsed, time.Second)
}
