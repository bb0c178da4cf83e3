package api2

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"haptics/pkg/protocol"
)

// handleGetFeedbackState 获取反馈开关状态
func (s *Server) handleGetFeedbackState(c *gin.Context) {
	success(c, "", FeedbackStateResponse{Enabled: s.player.IsEnabled()})
}

// handleEnableFeedback 开启反馈
func (s *Server) handleEnableFeedback(c *gin.Context) {
	s.player.EnableFeedback()
	success(c, "反馈已开启", FeedbackStateResponse{Enabled: s.player.IsEnabled()})
}

// handleDisableFeedback 关闭反馈
func (s *Server) handleDisableFeedback(c *gin.Context) {
	s.player.DisableFeedback()
	success(c, "反馈已关闭", FeedbackStateResponse{Enabled: s.player.IsEnabled()})
}

// handleToggleFeedback 切换反馈开关
func (s *Server) handleToggleFeedback(c *gin.Context) {
	s.player.ToggleFeedback()
	success(c, "", FeedbackStateResponse{Enabled: s.player.IsEnabled()})
}

// handleGetActiveKeys 获取正在播放的 key
func (s *Server) handleGetActiveKeys(c *gin.Context) {
	success(c, "", ActiveKeysResponse{
		ActiveKeys: s.player.ActiveKeys(),
		Playing:    s.player.IsPlaying(),
	})
}

// handleSubmitDots 点模式提交
func (s *Server) handleSubmitDots(c *gin.Context) {
	var req DotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的点模式请求："+err.Error())
		return
	}

	if err := s.player.SubmitDots(req.Key, req.Position, req.Points, req.DurationMillis); err != nil {
		s.respondError(c, err)
		return
	}
	success(c, fmt.Sprintf("已提交 %s 到 %s", req.Key, req.Position), nil)
}

// handleSubmitPaths 路径模式提交
func (s *Server) handleSubmitPaths(c *gin.Context) {
	var req PathsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的路径模式请求："+err.Error())
		return
	}

	if err := s.player.SubmitPath(req.Key, req.Position, req.Points, req.DurationMillis); err != nil {
		s.respondError(c, err)
		return
	}
	success(c, fmt.Sprintf("已提交 %s 到 %s", req.Key, req.Position), nil)
}

// handleSubmitBytes 逐马达强度提交
func (s *Server) handleSubmitBytes(c *gin.Context) {
	var req BytesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的马达强度请求："+err.Error())
		return
	}

	motorBytes := make([]byte, len(req.Motors))
	for i, v := range req.Motors {
		if v < 0 || v > 255 {
			badRequest(c, fmt.Sprintf("马达 %d 的强度 %d 超出范围", i, v))
			return
		}
		motorBytes[i] = byte(v)
	}

	if err := s.player.SubmitBytes(req.Key, req.Position, motorBytes, req.DurationMillis); err != nil {
		s.respondError(c, err)
		return
	}
	success(c, fmt.Sprintf("已提交 %s 到 %s", req.Key, req.Position), nil)
}

// handleSubmitKey 播放已注册图案
func (s *Server) handleSubmitKey(c *gin.Context) {
	var req RegisteredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的播放请求："+err.Error())
		return
	}

	var err error
	switch {
	case req.AltKey != "" || req.Rotation != nil:
		scale := protocol.ScaleOption{Intensity: 1, Duration: 1}
		if req.Scale != nil {
			scale = *req.Scale
		}
		rotation := protocol.RotationOption{}
		if req.Rotation != nil {
			rotation = *req.Rotation
		}
		err = s.player.SubmitRegisteredWithOption(req.Key, req.AltKey, scale, rotation)
	case req.Scale != nil:
		err = s.player.SubmitRegisteredWithScale(req.Key, req.Scale.Intensity, req.Scale.Duration)
	default:
		err = s.player.SubmitRegistered(req.Key)
	}

	if err != nil {
		s.respondError(c, err)
		return
	}
	success(c, fmt.Sprintf("已播放 %s", req.Key), nil)
}

// handleTurnOff 停止指定反馈
func (s *Server) handleTurnOff(c *gin.Context) {
	key := c.Param("key")
	if err := s.player.TurnOff(key); err != nil {
		s.respondError(c, err)
		return
	}
	success(c, fmt.Sprintf("已停止 %s", key), nil)
}

// handleTurnOffAll 停止全部反馈
func (s *Server) handleTurnOffAll(c *gin.Context) {
	if err := s.player.TurnOffAll(); err != nil {
		s.respondError(c, err)
		return
	}
	success(c, "已停止全部反馈", nil)
}
