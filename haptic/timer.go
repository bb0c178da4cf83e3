package haptic

import (
	"context"
	"sync"
	"time"
)

// DefaultTickInterval 定时器节拍
const DefaultTickInterval = 20 * time.Millisecond

// Ticker 固定节拍的后台定时器，每次触发调用 onTick
type Ticker struct {
	interval time.Duration
	onTick   func(ctx context.Context, interval time.Duration)

	mutex    sync.Mutex
	running  bool
	stopChan chan struct{}
	done     chan struct{}
	cancel   context.CancelFunc
}

// NewTicker 创建定时器，interval 非正数时使用 20ms
func NewTicker(interval time.Duration, onTick func(ctx context.Context, interval time.Duration)) *Ticker {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Ticker{interval: interval, onTick: onTick}
}

// Start 启动定时器，已在运行时不做任何事
func (t *Ticker) Start() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.stopChan = make(chan struct{})
	t.done = make(chan struct{})
	t.cancel = cancel
	t.running = true

	go t.loop(ctx, t.stopChan, t.done)
}

func (t *Ticker) loop(ctx context.Context, stopChan <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopChan:
			return
		case <-ticker.C:
			t.onTick(ctx, t.interval)
		}
	}
}

// Stop 停止定时器并等待当前一次触发结束
func (t *Ticker) Stop() {
	t.mutex.Lock()
	if !t.running {
		t.mutex.Unlock()
		return
	}
	t.running = false
	close(t.stopChan)
	t.cancel()
	done := t.done
	t.mutex.Unlock()

	<-done
}

// IsRunning 定时器是否在运行
func (t *Ticker) IsRunning() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.running
}

func (t *Ticker) Interval() time.Duration { return t.interval }
