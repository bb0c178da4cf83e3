// Package mirror 将播放状态镜像到 Redis
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"haptics/pkg/protocol"
)

const queueSize = 128

// StatusMessage 发布到 Redis 的状态消息
type StatusMessage struct {
	InstanceID           string           `json:"instanceId"`
	Timestamp            time.Time        `json:"timestamp"`
	ActiveKeys           []string         `json:"activeKeys"`
	Status               map[string][]int `json:"status"`
	ConnectedPositions   []string         `json:"connectedPositions,omitempty"`
	ConnectedDeviceCount int              `json:"connectedDeviceCount,omitempty"`
}

// NewStatusMessage 由状态报告生成发布消息
func NewStatusMessage(instanceID string, response protocol.PlayerResponse, at time.Time) StatusMessage {
	return StatusMessage{
		InstanceID:           instanceID,
		Timestamp:            at,
		ActiveKeys:           response.ActiveKeys,
		Status:               response.Status,
		ConnectedPositions:   response.ConnectedPositions,
		ConnectedDeviceCount: response.ConnectedDeviceCount,
	}
}

// Publisher 发布接口，便于替换
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Options 镜像配置
type Options struct {
	Addr       string
	Password   string
	DB         int
	Channel    string
	InstanceID string
}

// StatusMirror 异步把状态报告发布到 Redis 频道，并保存最近一次状态
type StatusMirror struct {
	client     Publisher
	closer     func() error
	channel    string
	instanceID string
	log        logrus.FieldLogger
	now        func() time.Time

	queue    chan protocol.PlayerResponse
	done     chan struct{}
	stopOnce sync.Once
	cancel   context.CancelFunc
}

// NewStatusMirror 连接 Redis，连接失败时返回错误
func NewStatusMirror(ctx context.Context, opts Options, log logrus.FieldLogger) (*StatusMirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 2 * time.Second,
	})

	// 测试连接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}

	m := newStatusMirror(client, opts.Channel, opts.InstanceID, log)
	m.closer = client.Close
	m.log.Infof("✅ Redis 状态镜像已连接 %s，频道 %s", opts.Addr, opts.Channel)
	return m, nil
}

func newStatusMirror(client Publisher, channel, instanceID string, log logrus.FieldLogger) *StatusMirror {
	if log == nil {
		log = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &StatusMirror{
		client:     client,
		channel:    channel,
		instanceID: instanceID,
		log:        log.WithField("component", "mirror"),
		now:        time.Now,
		queue:      make(chan protocol.PlayerResponse, queueSize),
		done:       make(chan struct{}),
		cancel:     cancel,
	}
	go m.run(ctx)
	return m
}

// Handle 投递一次状态报告，队列满时丢弃，可直接作为客户端的响应回调
func (m *StatusMirror) Handle(response protocol.PlayerResponse) {
	select {
	case m.queue <- response:
	default:
		m.log.Debug("状态镜像队列已满，丢弃一条状态")
	}
}

func (m *StatusMirror) run(ctx context.Context) {
	defer close(m.done)

	for {
		select {
		case <-ctx.Done():
			return
		case response := <-m.queue:
			if err := m.publish(ctx, response); err != nil {
				m.log.WithError(err).Warn("⚠️ 状态发布失败")
			}
		}
	}
}

func (m *StatusMirror) publish(ctx context.Context, response protocol.PlayerResponse) error {
	data, err := json.Marshal(NewStatusMessage(m.instanceID, response, m.now()))
	if err != nil {
		return fmt.Errorf("序列化状态失败: %w", err)
	}

	if err := m.client.Publish(ctx, m.channel, data).Err(); err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	// 同时保存最近一次状态，供新订阅者读取
	if err := m.client.Set(ctx, m.LatestKey(), data, 0).Err(); err != nil {
		m.log.Warnf("保存最近状态失败: %v", err)
	}
	return nil
}

// LatestKey 最近一次状态的键名
func (m *StatusMirror) LatestKey() string {
	return fmt.Sprintf("%s:%s:latest", m.channel, m.instanceID)
}

// Close 停止发布并关闭连接
func (m *StatusMirror) Close() error {
	var err error
	m.stopOnce.Do(func() {
		m.cancel()
		<-m.done
		if m.closer != nil {
			err = m.closer()
		}
	})
	return err
}
