package api2

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"haptics/define"
)

// handleGetSystemStatus 获取系统状态
func (s *Server) handleGetSystemStatus(c *gin.Context) {
	success(c, "", SystemStatusResponse{
		Player:  s.player.Snapshot(),
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
		Version: s.version,
	})
}

// handleHealthCheck 健康检查，客户端未初始化时返回 503
//
// 播放服务未连接不算不健康，客户端会在后台重连。
func (s *Server) handleHealthCheck(c *gin.Context) {
	status := "healthy"
	if !s.player.IsInitialised() {
		status = "unhealthy"
	}

	response := HealthResponse{
		Status:     status,
		Connection: s.player.ConnectionState().String(),
		Timestamp:  time.Now(),
		Version:    s.version,
	}

	httpStatus := http.StatusOK
	if status != "healthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, define.ApiResponse{
		Status: "success",
		Data:   response,
	})
}

// handleReset 销毁并重新初始化客户端
func (s *Server) handleReset(c *gin.Context) {
	s.player.Destroy()
	if err := s.player.Init(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}

	s.log.Info("🔄 客户端已重置")
	success(c, "客户端已重置", SystemStatusResponse{
		Player:  s.player.Snapshot(),
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
		Version: s.version,
	})
}
