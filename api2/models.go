package api2

import (
	"time"

	"haptics/define"
	"haptics/device"
	"haptics/haptic"
	"haptics/pkg/protocol"
)

// ===== 反馈提交相关模型 =====

// DotsRequest 点模式提交请求
type DotsRequest struct {
	Key            string              `json:"key" binding:"required"`
	Position       define.Position     `json:"position" binding:"required"`
	Points         []protocol.DotPoint `json:"points"`
	DurationMillis int                 `json:"durationMillis" binding:"required"`
}

// PathsRequest 路径模式提交请求
type PathsRequest struct {
	Key            string               `json:"key" binding:"required"`
	Position       define.Position      `json:"position" binding:"required"`
	Points         []protocol.PathPoint `json:"points"`
	DurationMillis int                  `json:"durationMillis" binding:"required"`
}

// BytesRequest 逐马达强度提交请求
type BytesRequest struct {
	Key            string          `json:"key" binding:"required"`
	Position       define.Position `json:"position" binding:"required"`
	Motors         []int           `json:"motors" binding:"required"`
	DurationMillis int             `json:"durationMillis" binding:"required"`
}

// RegisteredRequest 播放已注册图案的请求，倍率与旋转都可省略
type RegisteredRequest struct {
	Key      string                   `json:"key" binding:"required"`
	AltKey   string                   `json:"altKey,omitempty"`
	Scale    *protocol.ScaleOption    `json:"scale,omitempty"`
	Rotation *protocol.RotationOption `json:"rotation,omitempty"`
}

// ===== 图案相关模型 =====

// PatternRegisterRequest 注册图案请求，project 与 path 二选一
type PatternRegisterRequest struct {
	Key     string         `json:"key" binding:"required"`
	Project map[string]any `json:"project,omitempty"`
	Path    string         `json:"path,omitempty"`
}

// PatternInfo 图案信息
type PatternInfo struct {
	Key           string `json:"key"`
	Family        string `json:"family,omitempty"`
	Path          string `json:"path,omitempty"`
	Registrations int    `json:"registrations"`
	Playing       bool   `json:"playing"`
}

// PatternListResponse 图案列表响应
type PatternListResponse struct {
	Patterns []PatternInfo `json:"patterns"`
	Total    int           `json:"total"`
}

// PatternReloadResponse 重新加载图案目录的结果
type PatternReloadResponse struct {
	Directory  string   `json:"directory"`
	Registered []string `json:"registered"`
	Total      int      `json:"total"`
}

// ===== 设备相关模型 =====

// DeviceInfo 设备状态
type DeviceInfo struct {
	Position    define.Position `json:"position"`
	Description string          `json:"description"`
	Connected   bool            `json:"connected"`
	Playing     bool            `json:"playing"`
	Motors      []int           `json:"motors,omitempty"`
}

// DeviceListResponse 设备列表响应
type DeviceListResponse struct {
	Devices []DeviceInfo `json:"devices"`
	Total   int          `json:"total"`
}

// ChangedResponse 变化的马达状态
type ChangedResponse struct {
	Feedbacks []device.Feedback `json:"feedbacks"`
	Total     int               `json:"total"`
}

// ===== 系统管理相关模型 =====

// ActiveKeysResponse 正在播放的 key
type ActiveKeysResponse struct {
	ActiveKeys []string `json:"activeKeys"`
	Playing    bool     `json:"playing"`
}

// FeedbackStateResponse 反馈开关状态
type FeedbackStateResponse struct {
	Enabled bool `json:"enabled"`
}

// SystemStatusResponse 系统状态响应
type SystemStatusResponse struct {
	Player  haptic.Snapshot `json:"player"`
	Uptime  string          `json:"uptime"`
	Version string          `json:"version"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status     string    `json:"status"`
	Connection string    `json:"connection"`
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version,omitempty"`
}
