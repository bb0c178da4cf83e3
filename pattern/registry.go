// Package pattern 管理已注册的触觉图案
package pattern

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"haptics/pkg/errors"
	"haptics/pkg/protocol"
)

// Pattern 一个可按 key 播放的触觉图案
type Pattern struct {
	Key     string          `json:"key"`
	Family  string          `json:"family,omitempty"`
	Path    string          `json:"path,omitempty"`
	Project json.RawMessage `json:"project"`
}

// Registry 图案注册表，同一 key 以最后一次注册为准，历史注册全部保留
type Registry struct {
	patterns map[string]Pattern
	history  map[string][]Pattern
	mutex    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		patterns: make(map[string]Pattern),
		history:  make(map[string][]Pattern),
	}
}

// Validate 检查 key 与 project，返回去掉首尾空白的 project
func Validate(key string, p Pattern) (json.RawMessage, error) {
	if key == "" {
		return nil, errors.WrapInvalid(errors.ErrEmptyKey, "pattern", "Validate")
	}

	project := bytes.TrimSpace(p.Project)
	if len(project) == 0 || !json.Valid(project) {
		return nil, errors.WrapInvalid(
			fmt.Errorf("图案 %s 的 project 不是合法的 JSON", key), "pattern", "Validate")
	}
	return append(json.RawMessage(nil), project...), nil
}

// Register 注册图案并返回待发送的注册请求
func (r *Registry) Register(key string, p Pattern) (protocol.RegisterRequest, error) {
	project, err := Validate(key, p)
	if err != nil {
		return protocol.RegisterRequest{}, err
	}

	p.Key = key
	p.Project = project

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.patterns[key] = p
	r.history[key] = append(r.history[key], p)

	return protocol.RegisterRequest{Key: key, Project: p.Project}, nil
}

// Get 获取 key 当前对应的图案
func (r *Registry) Get(key string) (Pattern, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	p, exists := r.patterns[key]
	return p, exists
}

// Keys 已注册的 key，按字典序排列
func (r *Registry) Keys() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	keys := make([]string, 0, len(r.patterns))
	for key := range r.patterns {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// History 返回 key 的全部注册记录，按注册顺序
func (r *Registry) History(key string) []Pattern {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	history := make([]Pattern, len(r.history[key]))
	copy(history, r.history[key])
	return history
}

func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.patterns)
}
