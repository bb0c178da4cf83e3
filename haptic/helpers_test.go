package haptic

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"haptics/communication/commtest"
	"haptics/define"
	"haptics/pkg/protocol"
)

type fixture struct {
	player *Player
	dialer *commtest.Dialer
	clock  *commtest.Clock
}

// newFixture 创建使用假连接的客户端，定时器节拍设为 1 小时，由测试手动驱动 tick
func newFixture(t *testing.T, configure func(d *commtest.Dialer), options ...Option) *fixture {
	t.Helper()

	dialer := &commtest.Dialer{}
	if configure != nil {
		configure(dialer)
	}
	clock := commtest.NewClock()
	logger, _ := test.NewNullLogger()

	opts := DefaultOptions()
	opts.TickInterval = time.Hour

	base := []Option{WithDialer(dialer.Dial), WithClock(clock.Now), WithLogger(logger)}
	p := NewPlayer(opts, append(base, options...)...)
	t.Cleanup(p.Destroy)

	return &fixture{player: p, dialer: dialer, clock: clock}
}

func (f *fixture) init(t *testing.T) {
	t.Helper()
	require.NoError(t, f.player.Init(context.Background()))
}

// sent 最近一个连接上发出的消息
func (f *fixture) sent() []*protocol.PlayerRequest {
	transport := f.dialer.Last()
	if transport == nil {
		return nil
	}

	var requests []*protocol.PlayerRequest
	for _, data := range transport.Sent() {
		request, err := protocol.DecodePlayerRequest(data)
		if err != nil {
			panic(err)
		}
		requests = append(requests, request)
	}
	return requests
}

func (f *fixture) push(t *testing.T, message string) {
	t.Helper()
	transport := f.dialer.Last()
	require.NotNil(t, transport)
	transport.Push(message)
}

func leftStatus() []int {
	values := make([]int, define.MotorCount)
	values[2] = 50
	return values
}
