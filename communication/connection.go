package communication

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"haptics/monitor"
	"haptics/pkg/errors"
)

// State 连接状态
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Endpoint 播放服务地址
type Endpoint struct {
	Host string
	Port int
	Path string
}

// DefaultEndpoint 本机播放服务的固定地址
func DefaultEndpoint() Endpoint {
	return Endpoint{Host: "127.0.0.1", Port: 15881, Path: "v2/feedbacks"}
}

// URL 返回 websocket 地址
func (e Endpoint) URL() string {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(e.Host, strconv.Itoa(e.Port)),
		Path:   "/" + strings.TrimPrefix(e.Path, "/"),
	}
	return u.String()
}

// Options 连接管理配置
type Options struct {
	Endpoint          Endpoint
	ReconnectInterval time.Duration
	RetryConnection   bool
	HandshakeTimeout  time.Duration
	WriteTimeout      time.Duration

	// Now 时钟，测试时替换
	Now func() time.Time
}

// DefaultOptions 返回默认配置：5 秒重连冷却，开启自动重连
func DefaultOptions() Options {
	return Options{
		Endpoint:          DefaultEndpoint(),
		ReconnectInterval: 5 * time.Second,
		RetryConnection:   true,
		HandshakeTimeout:  500 * time.Millisecond,
		WriteTimeout:      500 * time.Millisecond,
	}
}

// Connection 管理到播放服务的连接、状态机与重连节奏
type Connection struct {
	mu        sync.Mutex
	opts      Options
	dialer    Dialer
	transport Transport
	state     State

	prevAttempt   time.Time
	attempts      int
	generation    uint64
	everConnected bool

	log     logrus.FieldLogger
	metrics *monitor.Metrics
}

// NewConnection 创建连接管理器，dialer 为 nil 时使用 websocket
func NewConnection(opts Options, dialer Dialer, log logrus.FieldLogger, metrics *monitor.Metrics) *Connection {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ReconnectInterval <= 0 {
		opts.ReconnectInterval = 5 * time.Second
	}
	if dialer == nil {
		dialer = NewWebSocketDialer(opts.HandshakeTimeout, opts.WriteTimeout)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Connection{
		opts:    opts,
		dialer:  dialer,
		state:   StateDisconnected,
		log:     log.WithField("component", "connection"),
		metrics: metrics,
	}
}

// Connect 建立连接，已连接时不做任何事
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.checkLocked() {
		c.mu.Unlock()
		return nil
	}
	c.prevAttempt = c.opts.Now()
	c.attempts++
	generation := c.generation
	c.mu.Unlock()

	return c.dial(ctx, generation)
}

// Reconnect 由定时器周期调用
//
// 已连接或关闭了自动重连时直接返回；距离上次尝试不足冷却时间时也直接返回。
// 无论拨号是否成功都会记录本次尝试时间。返回值表示本次是否发起了拨号。
func (c *Connection) Reconnect(ctx context.Context) bool {
	c.mu.Lock()
	if !c.opts.RetryConnection || c.checkLocked() {
		c.mu.Unlock()
		return false
	}

	now := c.opts.Now()
	if !c.prevAttempt.IsZero() && now.Sub(c.prevAttempt) < c.opts.ReconnectInterval {
		c.mu.Unlock()
		return false
	}
	c.prevAttempt = now
	c.attempts++
	generation := c.generation
	c.mu.Unlock()

	err := c.dial(ctx, generation)
	c.metrics.ObserveReconnect(err == nil)
	return true
}

// dial 在锁外拨号，成功后仅在期间没有发生 Close 时安装新连接
func (c *Connection) dial(ctx context.Context, generation uint64) error {
	address := c.opts.Endpoint.URL()

	transport, err := c.dialer(ctx, address)
	if err != nil {
		c.log.WithError(err).Debugf("⚠️ 无法连接播放服务 %s", address)
		return errors.WrapTransient(err, "connection", "dial")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation || c.checkLocked() {
		_ = transport.Close()
		return nil
	}

	c.transport = transport
	c.state = StateConnected
	c.everConnected = true
	c.metrics.SetConnected(true)
	c.log.Infof("✅ 已连接播放服务 %s", address)
	return nil
}

// IsConnected 连接是否可用，对端已关闭的连接会在这里被释放
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkLocked()
}

func (c *Connection) checkLocked() bool {
	if c.transport == nil {
		return false
	}

	if c.transport.Closed() {
		_ = c.transport.Close()
		c.transport = nil
		c.state = StateDisconnected
		c.metrics.SetConnected(false)
		c.log.Warn("⚠️ 播放服务连接已断开")
		return false
	}

	return true
}

// Send 发送一条消息并立即取出已收到的入站消息；未连接时不做任何事
func (c *Connection) Send(data []byte) ([][]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.checkLocked() {
		return nil, errors.WrapTransient(errors.ErrNoConnection, "connection", "Send")
	}

	if err := c.transport.Send(data); err != nil {
		c.metrics.ObserveSendFailure()
		c.log.WithError(err).Warn("❌ 消息发送失败")
		c.checkLocked()
		return nil, err
	}
	c.metrics.ObserveSent()

	return c.transport.Poll(), nil
}

// Poll 取出已收到的入站消息
func (c *Connection) Poll() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transport == nil {
		return nil
	}
	messages := c.transport.Poll()
	c.checkLocked()
	return messages
}

// Close 主动关闭连接，经过 Closing 回到 Disconnected
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateClosing
	c.generation++
	if c.transport != nil {
		if err := c.transport.Close(); err != nil {
			c.log.WithError(err).Debug("关闭连接时出错")
		}
		c.transport = nil
		c.log.Info("👋 播放服务连接已关闭")
	}
	c.state = StateDisconnected
	c.metrics.SetConnected(false)
}

// State 当前连接状态
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkLocked()
	return c.state
}

// ResetCooldown 清除上次尝试时间，下一次 Reconnect 立即拨号
func (c *Connection) ResetCooldown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prevAttempt = time.Time{}
}

// Attempts 累计拨号次数
func (c *Connection) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// EverConnected 是否曾经成功建立过连接
func (c *Connection) EverConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.everConnected
}

// SetRetryConnection 开关自动重连
func (c *Connection) SetRetryConnection(retry bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.RetryConnection = retry
}

// URL 播放服务地址
func (c *Connection) URL() string { return c.opts.Endpoint.URL() }
