package haptic

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicker_StartStop(t *testing.T) {
	var ticks atomic.Int32
	ticker := NewTicker(2*time.Millisecond, func(_ context.Context, interval time.Duration) {
		assert.Equal(t, 2*time.Millisecond, interval)
		ticks.Add(1)
	})

	ticker.Start()
	ticker.Start()
	assert.True(t, ticker.IsRunning())
	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

	ticker.Stop()
	ticker.Stop()
	assert.False(t, ticker.IsRunning())

	stopped := ticks.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, stopped, ticks.Load())

	// 停止后可以再次启动
	ticker.Start()
	require.Eventually(t, func() bool { return ticks.Load() > stopped }, time.Second, time.Millisecond)
	ticker.Stop()
}

func TestTicker_StopCancelsContext(t *testing.T) {
	entered := make(chan struct{})
	var once atomic.Bool
	ticker := NewTicker(time.Millisecond, func(ctx context.Context, _ time.Duration) {
		if once.CompareAndSwap(false, true) {
			close(entered)
			<-ctx.Done()
		}
	})

	ticker.Start()
	<-entered

	done := make(chan struct{})
	go func() {
		ticker.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not cancel the running tick")
	}
}

func TestTicker_DefaultInterval(t *testing.T) {
	ticker := NewTicker(0, func(context.Context, time.Duration) {})
	assert.Equal(t, DefaultTickInterval, ticker.Interval())
}
