package api2

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"haptics/define"
	"haptics/pattern"
)

// handleGetPatterns 获取已注册图案
func (s *Server) handleGetPatterns(c *gin.Context) {
	registry := s.player.Registry()
	keys := registry.Keys()

	infos := make([]PatternInfo, 0, len(keys))
	for _, key := range keys {
		if info, ok := s.patternInfo(key); ok {
			infos = append(infos, info)
		}
	}

	success(c, "", PatternListResponse{
		Patterns: infos,
		Total:    len(infos),
	})
}

// handleGetPattern 获取图案详情
func (s *Server) handleGetPattern(c *gin.Context) {
	key := c.Param("key")
	info, ok := s.patternInfo(key)
	if !ok {
		c.JSON(http.StatusNotFound, define.ApiResponse{
			Status: "error",
			Error:  fmt.Sprintf("图案 %s 未注册", key),
		})
		return
	}
	success(c, "", info)
}

// handleRegisterPattern 注册图案，可以直接提交 project 或指定服务端的文件路径
func (s *Server) handleRegisterPattern(c *gin.Context) {
	var req PatternRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的图案注册请求："+err.Error())
		return
	}

	var err error
	switch {
	case req.Path != "" && req.Project != nil:
		badRequest(c, "project 与 path 只能指定一个")
		return
	case req.Path != "":
		err = s.player.RegisterFile(req.Key, req.Path)
	case req.Project != nil:
		project, marshalErr := json.Marshal(req.Project)
		if marshalErr != nil {
			badRequest(c, "无效的 project："+marshalErr.Error())
			return
		}
		err = s.player.Register(req.Key, pattern.Pattern{Family: "inline", Project: project})
	default:
		badRequest(c, "需要指定 project 或 path")
		return
	}

	if err != nil {
		s.respondError(c, err)
		return
	}
	s.log.Infof("🆕 图案 %s 已通过接口注册", req.Key)
	success(c, fmt.Sprintf("图案 %s 已注册", req.Key), nil)
}

// handleReloadPatterns 重新注册图案目录下的全部文件
func (s *Server) handleReloadPatterns(c *gin.Context) {
	dir := s.player.FeedbackDir()
	if dir == "" {
		badRequest(c, "未配置图案目录")
		return
	}

	registered, err := s.player.RegisterDirectory(dir)
	if err != nil {
		s.respondError(c, err)
		return
	}

	success(c, fmt.Sprintf("已注册 %d 个图案", len(registered)), PatternReloadResponse{
		Directory:  dir,
		Registered: registered,
		Total:      len(registered),
	})
}

func (s *Server) patternInfo(key string) (PatternInfo, bool) {
	registry := s.player.Registry()
	p, ok := registry.Get(key)
	if !ok {
		return PatternInfo{}, false
	}
	return PatternInfo{
		Key:           key,
		Family:        p.Family,
		Path:          p.Path,
		Registrations: len(registry.History(key)),
		Playing:       s.player.IsPlayingKey(key),
	}, true
}
