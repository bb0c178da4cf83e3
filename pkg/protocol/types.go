// Package protocol 定义与触觉播放服务之间的消息格式
package protocol

import (
	"encoding/json"

	"haptics/define"
)

// SubmitType 提交操作的类型标签
type SubmitType string

const (
	SubmitFrame      SubmitType = "frame"
	SubmitKey        SubmitType = "key"
	SubmitTurnOff    SubmitType = "turnOff"
	SubmitTurnOffAll SubmitType = "turnOffAll"
)

// DotPoint 点模式下单个马达的强度
type DotPoint struct {
	Index     int `json:"index"`
	Intensity int `json:"intensity"`
}

// PathPoint 路径模式下的空间坐标点，x/y 取值 [0,1]
type PathPoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Intensity  int     `json:"intensity"`
	MotorCount int     `json:"motorCount"`
}

// Frame 一帧触觉波形
type Frame struct {
	Position       string      `json:"position"`
	DotPoints      []DotPoint  `json:"dotPoints"`
	PathPoints     []PathPoint `json:"pathPoints"`
	DurationMillis int         `json:"durationMillis"`
}

// NewDotPointFrame 创建点模式帧
func NewDotPointFrame(points []DotPoint, position define.Position, durationMillis int) Frame {
	dots := make([]DotPoint, len(points))
	copy(dots, points)
	return Frame{
		Position:       position.String(),
		DotPoints:      dots,
		PathPoints:     []PathPoint{},
		DurationMillis: durationMillis,
	}
}

// NewPathPointFrame 创建路径模式帧
func NewPathPointFrame(points []PathPoint, position define.Position, durationMillis int) Frame {
	paths := make([]PathPoint, len(points))
	copy(paths, points)
	return Frame{
		Position:       position.String(),
		DotPoints:      []DotPoint{},
		PathPoints:     paths,
		DurationMillis: durationMillis,
	}
}

// NewBytesFrame 将逐马达的强度数组转换为点模式帧，强度为 0 的马达不会出现在帧中
func NewBytesFrame(motorBytes []byte, position define.Position, durationMillis int) Frame {
	points := make([]DotPoint, 0, len(motorBytes))
	for i, v := range motorBytes {
		if v > 0 {
			points = append(points, DotPoint{Index: i, Intensity: int(v)})
		}
	}
	return NewDotPointFrame(points, position, durationMillis)
}

// RotationOption 已注册反馈的旋转偏移
type RotationOption struct {
	OffsetAngleX float64 `json:"offsetAngleX"`
	OffsetY      float64 `json:"offsetY"`
}

// ScaleOption 已注册反馈的强度与时长倍率
type ScaleOption struct {
	Intensity float64 `json:"intensity"`
	Duration  float64 `json:"duration"`
}

// RegisterRequest 向播放服务注册一个图案
type RegisterRequest struct {
	Key     string          `json:"key"`
	Project json.RawMessage `json:"project"`
}

// SubmitRequest 一次提交操作
type SubmitRequest struct {
	Type       SubmitType     `json:"type"`
	Key        string         `json:"key,omitempty"`
	Frame      *Frame         `json:"frame,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// PlayerRequest 一次发送的请求批次
type PlayerRequest struct {
	Register []RegisterRequest `json:"register,omitempty"`
	Submit   []SubmitRequest   `json:"submit,omitempty"`
}

// IsEmpty 批次中是否没有任何操作
func (r *PlayerRequest) IsEmpty() bool {
	return r == nil || (len(r.Register) == 0 && len(r.Submit) == 0)
}

// PlayerResponse 播放服务上报的状态
type PlayerResponse struct {
	ActiveKeys           []string         `json:"activeKeys"`
	Status               map[string][]int `json:"status"`
	ConnectedPositions   []string         `json:"connectedPositions,omitempty"`
	ConnectedDeviceCount int              `json:"connectedDeviceCount,omitempty"`
}
