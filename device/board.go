// Package device 维护播放服务上报的各设备马达状态
package device

import (
	"sort"
	"sync"
	"time"

	"haptics/define"
)

// FeedbackMode 反馈的表现形式
type FeedbackMode string

const (
	DotMode  FeedbackMode = "dot"
	PathMode FeedbackMode = "path"
)

// Feedback 某个区域当前的马达强度
type Feedback struct {
	Position define.Position `json:"position"`
	Values   []int           `json:"values"`
	Mode     FeedbackMode    `json:"mode"`
}

// Board 马达状态看板，每次收到状态报告时整体替换
type Board struct {
	motors    map[define.Position][]int
	reported  map[define.Position][]int
	connected map[define.Position]bool
	updatedAt time.Time
	mutex     sync.RWMutex
}

func NewBoard() *Board {
	return &Board{
		motors:   make(map[define.Position][]int),
		reported: make(map[define.Position][]int),
	}
}

// Update 用一次状态报告替换看板内容，返回无法识别的设备名
//
// connectedPositions 为 nil 时表示播放服务没有上报连接列表，此时按状态表中出现的设备判断连接。
func (b *Board) Update(status map[string][]int, connectedPositions []string, at time.Time) []string {
	motors := make(map[define.Position][]int, len(status))
	var skipped []string

	for name, values := range status {
		position := define.PositionFromString(name)
		if position == define.PositionUnknown {
			skipped = append(skipped, name)
			continue
		}
		motors[position] = append([]int(nil), values...)
	}

	var connected map[define.Position]bool
	if connectedPositions != nil {
		connected = make(map[define.Position]bool, len(connectedPositions))
		for _, name := range connectedPositions {
			position := define.PositionFromString(name)
			if position == define.PositionUnknown {
				continue
			}
			connected[position.DeviceOf()] = true
		}
	}

	b.mutex.Lock()
	b.motors = motors
	b.connected = connected
	b.updatedAt = at
	b.mutex.Unlock()

	sort.Strings(skipped)
	return skipped
}

// Motors 返回区域的马达强度副本
func (b *Board) Motors(position define.Position) ([]int, bool) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	values, ok := b.motors[position]
	if !ok {
		return nil, false
	}
	return append([]int(nil), values...), true
}

// IsPlaying 设备是否有任意马达在振动，PositionAll 表示任意设备
func (b *Board) IsPlaying(position define.Position) bool {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	if position == define.PositionAll {
		for _, values := range b.motors {
			if anyActive(values) {
				return true
			}
		}
		return false
	}

	for _, zone := range position.DeviceOf().Zones() {
		if anyActive(b.motors[zone]) {
			return true
		}
	}
	return false
}

// IsConnected 设备是否在线，背心的前后片都归到背心
func (b *Board) IsConnected(position define.Position) bool {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	device := position.DeviceOf()
	if device == define.PositionUnknown {
		return false
	}

	if b.connected != nil {
		if device == define.PositionAll {
			return len(b.connected) > 0
		}
		return b.connected[device]
	}

	if device == define.PositionAll {
		return len(b.motors) > 0
	}
	for _, zone := range device.Zones() {
		if _, ok := b.motors[zone]; ok {
			return true
		}
	}
	return false
}

// Changed 返回自上次调用以来发生变化的区域，按位置枚举顺序排列
//
// 从看板中消失的区域以全零数组上报一次。
func (b *Board) Changed() []Feedback {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	var changed []Feedback
	for _, position := range define.Positions() {
		current, hasCurrent := b.motors[position]
		previous, hasPrevious := b.reported[position]

		switch {
		case hasCurrent && (!hasPrevious || !equal(current, previous)):
			changed = append(changed, Feedback{
				Position: position,
				Values:   append([]int(nil), current...),
				Mode:     DotMode,
			})
			b.reported[position] = append([]int(nil), current...)
		case !hasCurrent && hasPrevious:
			changed = append(changed, Feedback{
				Position: position,
				Values:   make([]int, len(previous)),
				Mode:     DotMode,
			})
			delete(b.reported, position)
		}
	}
	return changed
}

// Snapshot 以协议名称为键的状态副本
func (b *Board) Snapshot() map[string][]int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	snapshot := make(map[string][]int, len(b.motors))
	for position, values := range b.motors {
		snapshot[position.String()] = append([]int(nil), values...)
	}
	return snapshot
}

// UpdatedAt 最近一次状态报告的时间
func (b *Board) UpdatedAt() time.Time {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.updatedAt
}

// Reset 清空看板
func (b *Board) Reset() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.motors = make(map[define.Position][]int)
	b.reported = make(map[define.Position][]int)
	b.connected = nil
	b.updatedAt = time.Time{}
}

func anyActive(values []int) bool {
	for _, v := range values {
		if v > 0 {
			return true
		}
	}
	return false
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
