package communication_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haptics/communication"
	"haptics/communication/commtest"
	"haptics/pkg/errors"
)

func newTestConnection(t *testing.T, dialer *commtest.Dialer, clock *commtest.Clock) *communication.Connection {
	t.Helper()
	logger, _ := test.NewNullLogger()

	opts := communication.DefaultOptions()
	opts.Now = clock.Now
	return communication.NewConnection(opts, dialer.Dial, logger, nil)
}

func TestEndpoint_URL(t *testing.T) {
	assert.Equal(t, "ws://127.0.0.1:15881/v2/feedbacks", communication.DefaultEndpoint().URL())
	assert.Equal(t, "ws://localhost:9000/feedbacks",
		communication.Endpoint{Host: "localhost", Port: 9000, Path: "/feedbacks"}.URL())
}

func TestDefaultOptions_IOIsBounded(t *testing.T) {
	opts := communication.DefaultOptions()
	assert.Equal(t, 500*time.Millisecond, opts.HandshakeTimeout)
	assert.Equal(t, 500*time.Millisecond, opts.WriteTimeout)
	assert.Equal(t, 5*time.Second, opts.ReconnectInterval)
	assert.True(t, opts.RetryConnection)
}

func TestConnection_ConnectIsIdempotent(t *testing.T) {
	dialer := &commtest.Dialer{}
	conn := newTestConnection(t, dialer, commtest.NewClock())

	require.NoError(t, conn.Connect(context.Background()))
	require.NoError(t, conn.Connect(context.Background()))

	assert.Equal(t, 1, dialer.Dials())
	assert.True(t, conn.IsConnected())
	assert.Equal(t, communication.StateConnected, conn.State())
	assert.True(t, conn.EverConnected())
	assert.Equal(t, []string{"ws://127.0.0.1:15881/v2/feedbacks"}, dialer.URLs())
}

func TestConnection_ConnectFailureIsTransient(t *testing.T) {
	dialer := &commtest.Dialer{}
	dialer.Refuse(true)
	conn := newTestConnection(t, dialer, commtest.NewClock())

	err := conn.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
	assert.False(t, conn.IsConnected())
	assert.False(t, conn.EverConnected())
	assert.Equal(t, communication.StateDisconnected, conn.State())
}

func TestConnection_ClosedTransportIsReleased(t *testing.T) {
	dialer := &commtest.Dialer{}
	conn := newTestConnection(t, dialer, commtest.NewClock())
	require.NoError(t, conn.Connect(context.Background()))

	transport := dialer.Last()
	transport.Break()

	assert.False(t, conn.IsConnected())
	assert.Equal(t, communication.StateDisconnected, conn.State())
	assert.Equal(t, 1, transport.CloseCalls())
}

func TestConnection_ReconnectRespectsCooldown(t *testing.T) {
	dialer := &commtest.Dialer{}
	dialer.Refuse(true)
	clock := commtest.NewClock()
	conn := newTestConnection(t, dialer, clock)

	// 首次没有历史尝试，立即拨号
	assert.True(t, conn.Reconnect(context.Background()))
	assert.Equal(t, 1, dialer.Dials())

	// 20ms 一次的节拍远快于冷却时间，不会增加拨号次数
	for i := 0; i < 249; i++ {
		clock.Advance(20 * time.Millisecond)
		conn.Reconnect(context.Background())
	}
	assert.Equal(t, 1, dialer.Dials())

	clock.Advance(20 * time.Millisecond)
	assert.True(t, conn.Reconnect(context.Background()))
	assert.Equal(t, 2, dialer.Dials())
	assert.Equal(t, 2, conn.Attempts())
}

func TestConnection_ReconnectRecordsAttemptOnSuccess(t *testing.T) {
	dialer := &commtest.Dialer{}
	clock := commtest.NewClock()
	conn := newTestConnection(t, dialer, clock)

	assert.True(t, conn.Reconnect(context.Background()))
	assert.True(t, conn.IsConnected())

	// 已连接时不拨号
	clock.Advance(10 * time.Second)
	assert.False(t, conn.Reconnect(context.Background()))

	// 断开后仍需等待冷却
	dialer.Last().Break()
	clock.Advance(-9 * time.Second)
	assert.False(t, conn.Reconnect(context.Background()))
	clock.Advance(5 * time.Second)
	assert.True(t, conn.Reconnect(context.Background()))
	assert.Equal(t, 2, dialer.Dials())
	assert.True(t, conn.IsConnected())
}

func TestConnection_ReconnectDisabled(t *testing.T) {
	dialer := &commtest.Dialer{}
	conn := newTestConnection(t, dialer, commtest.NewClock())
	conn.SetRetryConnection(false)

	assert.False(t, conn.Reconnect(context.Background()))
	assert.Equal(t, 0, dialer.Dials())
}

func TestConnection_ResetCooldown(t *testing.T) {
	dialer := &commtest.Dialer{}
	dialer.Refuse(true)
	conn := newTestConnection(t, dialer, commtest.NewClock())

	assert.Error(t, conn.Connect(context.Background()))
	assert.False(t, conn.Reconnect(context.Background()))

	conn.ResetCooldown()
	assert.True(t, conn.Reconnect(context.Background()))
	assert.Equal(t, 2, dialer.Dials())
}

func TestConnection_SendWhenDisconnectedIsNoop(t *testing.T) {
	dialer := &commtest.Dialer{}
	conn := newTestConnection(t, dialer, commtest.NewClock())

	messages, err := conn.Send([]byte(`{}`))
	assert.Nil(t, messages)
	assert.True(t, errors.Is(err, errors.ErrNoConnection))
	assert.Equal(t, 0, dialer.Dials())
}

func TestConnection_SendPollsInbound(t *testing.T) {
	dialer := &commtest.Dialer{
		OnSend: func(data []byte) [][]byte {
			return [][]byte{[]byte(`{"activeKeys":["a"]}`)}
		},
	}
	conn := newTestConnection(t, dialer, commtest.NewClock())
	require.NoError(t, conn.Connect(context.Background()))

	messages, err := conn.Send([]byte(`{"submit":[]}`))
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.JSONEq(t, `{"activeKeys":["a"]}`, string(messages[0]))

	dialer.Last().Push(`{"activeKeys":[]}`)
	assert.Len(t, conn.Poll(), 1)
	assert.Empty(t, conn.Poll())
}

func TestConnection_SendFailureReleasesTransport(t *testing.T) {
	dialer := &commtest.Dialer{}
	conn := newTestConnection(t, dialer, commtest.NewClock())
	require.NoError(t, conn.Connect(context.Background()))

	dialer.Last().FailSends(assert.AnError)
	dialer.Last().Break()

	_, err := conn.Send([]byte(`{}`))
	assert.Error(t, err)
	assert.False(t, conn.IsConnected())
}

func TestConnection_Close(t *testing.T) {
	dialer := &commtest.Dialer{}
	conn := newTestConnection(t, dialer, commtest.NewClock())
	require.NoError(t, conn.Connect(context.Background()))
	transport := dialer.Last()

	conn.Close()
	assert.Equal(t, communication.StateDisconnected, conn.State())
	assert.False(t, conn.IsConnected())
	assert.Equal(t, 1, transport.CloseCalls())

	// 重复关闭是安全的
	conn.Close()
	assert.Equal(t, communication.StateDisconnected, conn.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "disconnected", communication.StateDisconnected.String())
	assert.Equal(t, "connected", communication.StateConnected.String())
	assert.Equal(t, "closing", communication.StateClosing.String())
	assert.Equal(t, "unknown", communication.State(42).String())
}

// TestWebSocketTransport_RoundTrip 使用真实的 websocket 服务验证收发与断开检测
func TestWebSocketTransport_RoundTrip(t *testing.T) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(_ *http.Request) bool { return true },
	}
	received := make(chan string, 1)
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("Upgrade error: %v", err)
			return
		}
		defer conn.Close()

		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		received <- string(message)

		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"activeKeys":["buzz1"],"status":{}}`))
		<-release
	}))
	defer server.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	host, port := splitHostPort(t, server.URL)
	opts := communication.DefaultOptions()
	opts.Endpoint = communication.Endpoint{Host: host, Port: port, Path: "v2/feedbacks"}
	opts.HandshakeTimeout = 2 * time.Second
	conn := communication.NewConnection(opts, nil, logger, nil)

	require.NoError(t, conn.Connect(context.Background()))
	_, err := conn.Send([]byte(`{"submit":[{"type":"turnOffAll"}]}`))
	require.NoError(t, err)

	select {
	case message := <-received:
		assert.JSONEq(t, `{"submit":[{"type":"turnOffAll"}]}`, message)
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for message")
	}

	var inbound [][]byte
	require.Eventually(t, func() bool {
		inbound = append(inbound, conn.Poll()...)
		return len(inbound) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.JSONEq(t, `{"activeKeys":["buzz1"],"status":{}}`, string(inbound[0]))

	// 服务端关闭后，连接被识别为断开
	close(release)
	require.Eventually(t, func() bool {
		return !conn.IsConnected()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketDialer_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	address := "ws" + strings.TrimPrefix(server.URL, "http")
	server.Close()

	dial := communication.NewWebSocketDialer(200*time.Millisecond, time.Second)
	transport, err := dial(context.Background(), address)
	assert.Nil(t, transport)
	assert.True(t, errors.IsTransient(err))
}
