// Package api2 提供触觉反馈客户端的 HTTP 控制接口
package api2

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"haptics/define"
	"haptics/haptic"
	"haptics/monitor"
	"haptics/pkg/errors"
)

// Server API v2 服务器结构体
type Server struct {
	player    *haptic.Player
	metrics   *monitor.Metrics
	log       logrus.FieldLogger
	startTime time.Time
	version   string
}

// NewServer 创建新的 API v2 服务器实例，metrics 为 nil 时不挂载 /metrics
func NewServer(player *haptic.Player, metrics *monitor.Metrics, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		player:    player,
		metrics:   metrics,
		log:       log.WithField("component", "api2"),
		startTime: time.Now(),
		version:   "2.0.0",
	}
}

// SetupRoutes 设置 API v2 路由
func (s *Server) SetupRoutes(r *gin.Engine) {
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v2 := r.Group("/api/v2")
	{
		// 反馈提交与开关
		feedback := v2.Group("/feedback")
		{
			feedback.GET("", s.handleGetFeedbackState)         // 获取反馈开关状态
			feedback.POST("/enable", s.handleEnableFeedback)   // 开启反馈
			feedback.POST("/disable", s.handleDisableFeedback) // 关闭反馈
			feedback.POST("/toggle", s.handleToggleFeedback)   // 切换反馈
			feedback.GET("/active", s.handleGetActiveKeys)     // 正在播放的 key
			feedback.POST("/dots", s.handleSubmitDots)         // 点模式提交
			feedback.POST("/paths", s.handleSubmitPaths)       // 路径模式提交
			feedback.POST("/bytes", s.handleSubmitBytes)       // 逐马达强度提交
			feedback.POST("/registered", s.handleSubmitKey)    // 播放已注册图案
			feedback.DELETE("", s.handleTurnOffAll)            // 停止全部反馈
			feedback.DELETE("/:key", s.handleTurnOff)          // 停止指定反馈
		}

		// 图案管理
		patterns := v2.Group("/patterns")
		{
			patterns.GET("", s.handleGetPatterns)            // 获取已注册图案
			patterns.POST("", s.handleRegisterPattern)       // 注册图案
			patterns.POST("/reload", s.handleReloadPatterns) // 重新加载图案目录
			patterns.GET("/:key", s.handleGetPattern)        // 获取图案详情
		}

		// 设备状态
		devices := v2.Group("/devices")
		{
			devices.GET("", s.handleGetDevices)          // 获取所有设备状态
			devices.GET("/changed", s.handleGetChanged)  // 自上次查询以来变化的马达状态
			devices.GET("/:position", s.handleGetDevice) // 获取设备详情
		}

		// 系统管理
		system := v2.Group("/system")
		{
			system.GET("/status", s.handleGetSystemStatus) // 获取系统状态
			system.GET("/health", s.handleHealthCheck)     // 健康检查
			system.POST("/reset", s.handleReset)           // 销毁并重新初始化客户端
		}
	}
}

// respondError 按错误类别返回状态码
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsInvalid(err):
		status = http.StatusBadRequest
	case errors.IsMissing(err):
		status = http.StatusNotFound
	}

	c.JSON(status, define.ApiResponse{
		Status: "error",
		Error:  err.Error(),
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, define.ApiResponse{
		Status: "error",
		Error:  message,
	})
}

func success(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, define.ApiResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}
