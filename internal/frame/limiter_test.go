package frame

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnlimitedDoesNotBlock(t *testing.T) {
	l := NewLimiter(0)
	start := time.Now()
	for range 100 {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, uint64(100), l.Frame())
}

func TestLimitPacesFrames(t *testing.T) {
	l := NewLimiter(100)
	start := time.Now()
	for range 5 {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)
}

func TestWaitHonoursCancel(t *testing.T) {
	l := NewLimiter(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}
