// Package commtest 提供内存中的假连接、假拨号器与可控时钟，供测试使用
package commtest

import (
	"context"
	"errors"
	"sync"
	"time"

	"haptics/communication"
)

var ErrDialRefused = errors.New("connection refused")

// Transport 内存连接，记录发送的消息并允许测试注入入站消息
type Transport struct {
	mu         sync.Mutex
	sent       [][]byte
	inbox      [][]byte
	closed     bool
	closeCalls int
	sendErr    error

	// OnSend 模拟播放服务收到消息后立即回复
	OnSend func(data []byte) [][]byte
}

func (t *Transport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return errors.New("transport closed")
	}
	if t.sendErr != nil {
		return t.sendErr
	}

	message := append([]byte(nil), data...)
	t.sent = append(t.sent, message)
	if t.OnSend != nil {
		t.inbox = append(t.inbox, t.OnSend(message)...)
	}
	return nil
}

func (t *Transport) Poll() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	messages := t.inbox
	t.inbox = nil
	return messages
}

func (t *Transport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.closeCalls++
	return nil
}

// Push 注入一条入站消息
func (t *Transport) Push(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inbox = append(t.inbox, []byte(message))
}

// Break 模拟对端断开
func (t *Transport) Break() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}

// FailSends 之后的发送全部失败
func (t *Transport) FailSends(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendErr = err
}

// Sent 已发送消息的副本
func (t *Transport) Sent() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.sent))
	copy(out, t.sent)
	return out
}

func (t *Transport) CloseCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeCalls
}

// Dialer 假拨号器
type Dialer struct {
	mu         sync.Mutex
	refuse     bool
	dials      int
	urls       []string
	transports []*Transport

	// OnSend 复制到每个新建连接上
	OnSend func(data []byte) [][]byte
}

// Dial 满足 communication.Dialer 签名
func (d *Dialer) Dial(_ context.Context, url string) (communication.Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dials++
	d.urls = append(d.urls, url)
	if d.refuse {
		return nil, ErrDialRefused
	}

	t := &Transport{OnSend: d.OnSend}
	d.transports = append(d.transports, t)
	return t, nil
}

// Refuse 设置之后的拨号是否失败
func (d *Dialer) Refuse(refuse bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refuse = refuse
}

func (d *Dialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *Dialer) URLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.urls...)
}

// Last 最近一次成功拨号得到的连接
func (d *Dialer) Last() *Transport {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.transports) == 0 {
		return nil
	}
	return d.transports[len(d.transports)-1]
}

// SentTotal 所有连接上发送的消息总数
func (d *Dialer) SentTotal() int {
	d.mu.Lock()
	transports := append([]*Transport(nil), d.transports...)
	d.mu.Unlock()

	total := 0
	for _, t := range transports {
		total += len(t.Sent())
	}
	return total
}

// Clock 手动推进的时钟
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
