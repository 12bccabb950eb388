package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwaitQuietReturnsAfterSilence(t *testing.T) {
	activity := make(chan struct{}, 1)

	start := time.Now()
	err := awaitQuiet(context.Background(), activity, 20*time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestAwaitQuietActivityResetsWindow(t *testing.T) {
	activity := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- awaitQuiet(context.Background(), activity, 50*time.Millisecond, 5*time.Second)
	}()

	// Keep the page busy for a while; the wait must not resolve mid-burst.
	for i := 0; i < 5; i++ {
		time.Sleep(20 * time.Millisecond)
		activity <- struct{}{}
	}
	select {
	case <-done:
		t.Fatal("resolved while activity was still arriving")
	default:
	}

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("did not resolve after activity stopped")
	}
}

func TestAwaitQuietMaxBoundWins(t *testing.T) {
	activity := make(chan struct{}, 1)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case activity <- struct{}{}:
				default:
				}
			}
		}
	}()

	// A page that never goes quiet is cut off at the outer bound, not an
	// error.
	err := awaitQuiet(context.Background(), activity, 50*time.Millisecond, 200*time.Millisecond)
	require.NoError(t, err)
}

func TestAwaitQuietContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := awaitQuiet(ctx, make(chan struct{}), time.Second, 5*time.Second)
	require.ErrorIs(t, err, context.Canceled)
}
