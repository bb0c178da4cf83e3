package haptic

import (
	"sort"

	"haptics/define"
	"haptics/device"
	"haptics/pkg/protocol"
)

func emptyResponse() protocol.PlayerResponse {
	return protocol.PlayerResponse{
		ActiveKeys: []string{},
		Status:     map[string][]int{},
	}
}

// handleMessagesLocked 依次解析入站消息，返回解析成功的状态报告
//
// 解析失败的消息被丢弃，保留上一次的状态。
func (p *Player) handleMessagesLocked(messages [][]byte) []protocol.PlayerResponse {
	var responses []protocol.PlayerResponse

	for _, message := range messages {
		response, err := protocol.DecodePlayerResponse(message)
		if err != nil {
			p.metrics.ObserveParseError()
			p.log.WithError(err).Warn("⚠️ 无法解析播放服务消息，保留上一次的状态")
			continue
		}

		p.response = *response
		p.lastResponse = p.now()
		skipped := p.board.Update(response.Status, response.ConnectedPositions, p.lastResponse)
		for _, name := range skipped {
			delete(p.response.Status, name)
			p.log.Debugf("忽略未知设备 %s", name)
		}

		p.metrics.ObserveResponse(len(response.ActiveKeys))
		responses = append(responses, copyResponse(*response))
	}

	return responses
}

// dispatch 在锁外调用响应回调
func (p *Player) dispatch(responses []protocol.PlayerResponse) {
	if len(responses) == 0 || len(p.handlers) == 0 {
		return
	}
	for _, response := range responses {
		for _, handler := range p.handlers {
			handler(response)
		}
	}
}

// CheckMessage 取出并解析已收到的入站消息，供调用方在帧循环中调用
func (p *Player) CheckMessage() {
	p.mutex.Lock()
	if p.conn == nil {
		p.mutex.Unlock()
		return
	}
	responses := p.handleMessagesLocked(p.conn.Poll())
	p.mutex.Unlock()

	p.dispatch(responses)
}

// IsPlaying 是否有任意反馈在播放
func (p *Player) IsPlaying() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return len(p.response.ActiveKeys) > 0
}

// IsPlayingKey key 是否在播放
func (p *Player) IsPlayingKey(key string) bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	for _, active := range p.response.ActiveKeys {
		if active == key {
			return true
		}
	}
	return false
}

// ActiveKeys 正在播放的 key，按字典序排列
func (p *Player) ActiveKeys() []string {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	keys := append([]string{}, p.response.ActiveKeys...)
	sort.Strings(keys)
	return keys
}

// Status 最近一次上报的各设备马达状态
func (p *Player) Status() map[string][]int {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return copyResponse(p.response).Status
}

// IsDevicePlaying 设备上是否有马达在振动
func (p *Player) IsDevicePlaying(position define.Position) bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.board.IsPlaying(position)
}

// IsDeviceConnected 设备是否在线，背心前后片都视为背心
func (p *Player) IsDeviceConnected(position define.Position) bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.board.IsConnected(position)
}

// DeviceMotors 区域的马达强度
func (p *Player) DeviceMotors(position define.Position) ([]int, bool) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.board.Motors(position)
}

// ChangedFeedbacks 自上次调用以来马达状态发生变化的区域
func (p *Player) ChangedFeedbacks() []device.Feedback {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.board.Changed()
}

// Snapshot 客户端状态快照
type Snapshot struct {
	InstanceID         string           `json:"instanceId"`
	Initialised        bool             `json:"initialised"`
	Enabled            bool             `json:"enabled"`
	Connection         string           `json:"connection"`
	Endpoint           string           `json:"endpoint"`
	ReconnectAttempts  int              `json:"reconnectAttempts"`
	ActiveKeys         []string         `json:"activeKeys"`
	Status             map[string][]int `json:"status"`
	ConnectedPositions []string         `json:"connectedPositions,omitempty"`
	RegisteredKeys     []string         `json:"registeredKeys"`
	CurrentTimeMillis  int64            `json:"currentTimeMillis"`
	LastResponseAt     string           `json:"lastResponseAt,omitempty"`
}

// Snapshot 汇总当前状态，供接口展示
func (p *Player) Snapshot() Snapshot {
	p.mutex.RLock()
	response := copyResponse(p.response)
	snapshot := Snapshot{
		InstanceID:         p.id,
		Initialised:        p.initialised,
		Enabled:            p.enabled,
		Endpoint:           p.opts.Connection.Endpoint.URL(),
		ActiveKeys:         response.ActiveKeys,
		Status:             response.Status,
		ConnectedPositions: response.ConnectedPositions,
		CurrentTimeMillis:  p.currentTime.Load(),
	}
	if !p.lastResponse.IsZero() {
		snapshot.LastResponseAt = p.lastResponse.Format("2006-01-02T15:04:05.000Z07:00")
	}
	conn := p.conn
	p.mutex.RUnlock()

	snapshot.Connection = p.ConnectionState().String()
	if conn != nil {
		snapshot.ReconnectAttempts = conn.Attempts()
	}
	snapshot.RegisteredKeys = p.registry.Keys()
	sort.Strings(snapshot.ActiveKeys)
	return snapshot
}

func copyResponse(response protocol.PlayerResponse) protocol.PlayerResponse {
	out := protocol.PlayerResponse{
		ActiveKeys:           append([]string{}, response.ActiveKeys...),
		Status:               make(map[string][]int, len(response.Status)),
		ConnectedDeviceCount: response.ConnectedDeviceCount,
	}
	for name, values := range response.Status {
		out.Status[name] = append([]int(nil), values...)
	}
	if response.ConnectedPositions != nil {
		out.ConnectedPositions = append([]string{}, response.ConnectedPositions...)
	}
	return out
}
