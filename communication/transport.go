package communication

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"haptics/pkg/errors"
)

// inboxSize 未读取的入站消息上限，超过后丢弃最旧的消息
const inboxSize = 64

// Transport 与播放服务之间的一条持久连接
//
// 所有方法都不能无限期阻塞：Send 受写超时约束，Poll 只取出已经收到的消息。
type Transport interface {
	// Send 发送一条完整的文本消息
	Send(data []byte) error

	// Poll 取出自上次调用以来收到的全部消息
	Poll() [][]byte

	// Closed 连接是否已被对端关闭或中断
	Closed() bool

	// Close 主动关闭连接
	Close() error
}

// Dialer 建立到指定地址的连接
type Dialer func(ctx context.Context, url string) (Transport, error)

// WebSocketTransport 基于 gorilla/websocket 的连接实现
type WebSocketTransport struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	writeMu      sync.Mutex
	inbox        chan []byte
	closed       atomic.Bool
	closeOnce    sync.Once
	done         chan struct{}
}

// NewWebSocketDialer 返回一个带握手超时的 websocket 拨号函数
func NewWebSocketDialer(handshakeTimeout, writeTimeout time.Duration) Dialer {
	return func(ctx context.Context, url string) (Transport, error) {
		dialer := &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		}

		conn, _, err := dialer.DialContext(ctx, url, nil)
		if err != nil {
			return nil, errors.WrapTransient(err, "communication", "Dial")
		}

		return newWebSocketTransport(conn, writeTimeout), nil
	}
}

func newWebSocketTransport(conn *websocket.Conn, writeTimeout time.Duration) *WebSocketTransport {
	t := &WebSocketTransport{
		conn:         conn,
		writeTimeout: writeTimeout,
		inbox:        make(chan []byte, inboxSize),
		done:         make(chan struct{}),
	}
	go t.readLoop()
	return t
}

// readLoop 持续读取入站消息，读出错即视为连接关闭
func (t *WebSocketTransport) readLoop() {
	defer close(t.done)

	for {
		messageType, message, err := t.conn.ReadMessage()
		if err != nil {
			t.closed.Store(true)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		select {
		case t.inbox <- message:
		default:
			// 队列已满，丢弃最旧的一条
			select {
			case <-t.inbox:
			default:
			}
			select {
			case t.inbox <- message:
			default:
			}
		}
	}
}

func (t *WebSocketTransport) Send(data []byte) error {
	if t.closed.Load() {
		return errors.WrapTransient(errors.ErrConnectionLost, "communication", "Send")
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.writeTimeout > 0 {
		_ = t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.closed.Store(true)
		return errors.WrapTransient(err, "communication", "Send")
	}
	return nil
}

func (t *WebSocketTransport) Poll() [][]byte {
	var messages [][]byte
	for {
		select {
		case message := <-t.inbox:
			messages = append(messages, message)
		default:
			return messages
		}
	}
}

func (t *WebSocketTransport) Closed() bool { return t.closed.Load() }

func (t *WebSocketTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.writeMu.Lock()
		deadline := time.Now().Add(time.Second)
		if t.writeTimeout > 0 {
			deadline = time.Now().Add(t.writeTimeout)
		}
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		t.writeMu.Unlock()

		t.closed.Store(true)
		err = t.conn.Close()
	})
	return err
}
