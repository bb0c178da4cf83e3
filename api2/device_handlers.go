package api2

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"haptics/define"
)

// handleGetDevices 获取所有设备状态
func (s *Server) handleGetDevices(c *gin.Context) {
	positions := define.Positions()

	devices := make([]DeviceInfo, 0, len(positions))
	for _, position := range positions {
		devices = append(devices, s.deviceInfo(position))
	}

	success(c, "", DeviceListResponse{
		Devices: devices,
		Total:   len(devices),
	})
}

// handleGetDevice 获取设备详情
func (s *Server) handleGetDevice(c *gin.Context) {
	name := c.Param("position")
	position := define.PositionFromString(name)
	if position == define.PositionUnknown {
		badRequest(c, fmt.Sprintf("未知的设备位置: %s", name))
		return
	}

	success(c, "", s.deviceInfo(position))
}

// handleGetChanged 自上次查询以来变化的马达状态
func (s *Server) handleGetChanged(c *gin.Context) {
	feedbacks := s.player.ChangedFeedbacks()
	success(c, "", ChangedResponse{
		Feedbacks: feedbacks,
		Total:     len(feedbacks),
	})
}

func (s *Server) deviceInfo(position define.Position) DeviceInfo {
	motors, _ := s.player.DeviceMotors(position)
	return DeviceInfo{
		Position:    position,
		Description: position.Description(),
		Connected:   s.player.IsDeviceConnected(position),
		Playing:     s.player.IsDevicePlaying(position),
		Motors:      motors,
	}
}
