// Package haptic 实现触觉反馈客户端
//
// Player 持有到本机播放服务的连接，负责图案注册、反馈提交以及播放状态的查询。
// 所有提交与注册操作在同一把锁下组装并立即发送，每次调用对应一条网络消息。
package haptic

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"haptics/communication"
	"haptics/device"
	"haptics/monitor"
	"haptics/pattern"
	"haptics/pkg/protocol"
)

// Options 客户端配置
type Options struct {
	Connection   communication.Options
	TickInterval time.Duration
	FeedbackDir  string
}

// DefaultOptions 连接本机 15881 端口，20ms 节拍
func DefaultOptions() Options {
	return Options{
		Connection:   communication.DefaultOptions(),
		TickInterval: DefaultTickInterval,
	}
}

// ResponseHandler 每次成功解析状态报告后调用，调用时不持有客户端的锁
type ResponseHandler func(response protocol.PlayerResponse)

// Option 构造选项
type Option func(*Player)

func WithDialer(dialer communication.Dialer) Option {
	return func(p *Player) { p.dialer = dialer }
}

func WithClock(now func() time.Time) Option {
	return func(p *Player) { p.now = now }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Player) { p.baseLog = log }
}

func WithMetrics(metrics *monitor.Metrics) Option {
	return func(p *Player) { p.metrics = metrics }
}

func WithResponseHandler(handler ResponseHandler) Option {
	return func(p *Player) { p.handlers = append(p.handlers, handler) }
}

func WithInstanceID(id string) Option {
	return func(p *Player) { p.id = id }
}

// WithRegistry 与其他组件共享图案注册表
func WithRegistry(registry *pattern.Registry) Option {
	return func(p *Player) { p.registry = registry }
}

// Player 触觉反馈客户端
type Player struct {
	mutex sync.RWMutex

	opts     Options
	id       string
	now      func() time.Time
	baseLog  logrus.FieldLogger
	log      logrus.FieldLogger
	metrics  *monitor.Metrics
	dialer   communication.Dialer
	handlers []ResponseHandler

	// conn 在第一次 Init 时创建，之后只会被关闭，不会被置空
	conn     *communication.Connection
	registry *pattern.Registry
	board    *device.Board
	ticker   *Ticker

	pending      *protocol.PlayerRequest
	response     protocol.PlayerResponse
	lastResponse time.Time

	enabled     bool
	initialised bool

	currentTime atomic.Int64
}

// NewPlayer 创建客户端，创建后需要调用 Init
func NewPlayer(opts Options, options ...Option) *Player {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}

	p := &Player{opts: opts}
	for _, option := range options {
		option(p)
	}

	if p.id == "" {
		p.id = uuid.NewString()
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.baseLog == nil {
		p.baseLog = logrus.StandardLogger()
	}
	if p.registry == nil {
		p.registry = pattern.NewRegistry()
	}
	p.log = p.baseLog.WithFields(logrus.Fields{"component": "player", "instance_id": p.id})
	p.board = device.NewBoard()
	p.response = emptyResponse()
	p.ticker = NewTicker(opts.TickInterval, p.tick)

	return p
}

// Init 启动定时器、连接播放服务并开启反馈；已初始化时不做任何事
//
// 播放服务不可达不算错误，定时器会在冷却时间之后重试。
func (p *Player) Init(ctx context.Context) error {
	p.mutex.Lock()
	if p.initialised {
		p.mutex.Unlock()
		return nil
	}
	if p.conn == nil {
		connOpts := p.opts.Connection
		connOpts.Now = p.now
		p.conn = communication.NewConnection(connOpts, p.dialer, p.baseLog, p.metrics)
	}
	p.initialised = true
	p.enabled = true
	conn := p.conn
	p.mutex.Unlock()

	p.ticker.Start()

	if err := conn.Connect(ctx); err != nil {
		p.log.Warnf("⚠️ 播放服务 %s 暂不可用，将在后台重连", conn.URL())
	}
	p.log.Info("✅ 触觉反馈客户端已初始化")
	return nil
}

// Destroy 停止定时器、关闭连接并清空播放状态，之后可以再次 Init
func (p *Player) Destroy() {
	p.ticker.Stop()

	p.mutex.Lock()
	p.enabled = false
	p.initialised = false
	p.pending = nil
	p.response = emptyResponse()
	p.lastResponse = time.Time{}
	p.board.Reset()
	conn := p.conn
	if conn != nil {
		conn.Close()
		conn.ResetCooldown()
	}
	p.mutex.Unlock()

	p.metrics.ResetActiveKeys()
	p.log.Info("👋 触觉反馈客户端已销毁")
}

// EnableFeedback 开启反馈；从未成功建立过连接时不做任何事
func (p *Player) EnableFeedback() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.transportCreatedLocked() {
		return
	}
	p.enabled = true
}

// DisableFeedback 关闭反馈，之后的提交与注册都不会发送
func (p *Player) DisableFeedback() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.enabled = false
}

// ToggleFeedback 切换反馈开关；从未成功建立过连接时不做任何事
func (p *Player) ToggleFeedback() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.transportCreatedLocked() {
		return
	}
	p.enabled = !p.enabled
}

// transportCreatedLocked 是否曾经拨通过播放服务，Init 时拨号失败不算
func (p *Player) transportCreatedLocked() bool {
	return p.conn != nil && p.conn.EverConnected()
}

func (p *Player) IsEnabled() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.enabled
}

func (p *Player) IsInitialised() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.initialised
}

// ConnectionState 当前连接状态，未初始化过时为 Disconnected
func (p *Player) ConnectionState() communication.State {
	p.mutex.RLock()
	conn := p.conn
	p.mutex.RUnlock()

	if conn == nil {
		return communication.StateDisconnected
	}
	return conn.State()
}

// InstanceID 客户端实例 ID
func (p *Player) InstanceID() string { return p.id }

// CurrentTime 定时器累计的毫秒数
func (p *Player) CurrentTime() int64 { return p.currentTime.Load() }

// Registry 图案注册表
func (p *Player) Registry() *pattern.Registry { return p.registry }

// FeedbackDir 配置的图案目录
func (p *Player) FeedbackDir() string { return p.opts.FeedbackDir }

// tick 定时器回调，只负责累计时间和重连，不持有客户端的锁拨号
func (p *Player) tick(ctx context.Context, interval time.Duration) {
	p.currentTime.Add(interval.Milliseconds())

	p.mutex.RLock()
	enabled := p.enabled
	conn := p.conn
	p.mutex.RUnlock()

	if !enabled || conn == nil {
		return
	}
	if conn.Reconnect(ctx) && conn.IsConnected() {
		p.log.Info("🔄 已重新连接播放服务")
	}
}
