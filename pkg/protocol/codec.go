package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"haptics/pkg/errors"
)

// Encode 序列化请求批次
func (r *PlayerRequest) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("序列化请求失败：%w", err), "protocol", "Encode")
	}
	return data, nil
}

// DecodePlayerRequest 解析请求批次，主要用于测试与假服务
func DecodePlayerRequest(data []byte) (*PlayerRequest, error) {
	var req PlayerRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.WrapParse(fmt.Errorf("%w: %v", errors.ErrParsingFailed, err), "protocol", "DecodePlayerRequest")
	}
	return &req, nil
}

// DecodePlayerResponse 解析播放服务的状态消息
//
// 消息必须是 JSON 对象；activeKeys 缺失视为空集合，status 缺失视为无设备。
func DecodePlayerResponse(data []byte) (*PlayerResponse, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.WrapParse(fmt.Errorf("%w: 不是 JSON 对象", errors.ErrParsingFailed), "protocol", "DecodePlayerResponse")
	}

	var resp PlayerResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, errors.WrapParse(fmt.Errorf("%w: %v", errors.ErrParsingFailed, err), "protocol", "DecodePlayerResponse")
	}

	if resp.ActiveKeys == nil {
		resp.ActiveKeys = []string{}
	}
	if resp.Status == nil {
		resp.Status = map[string][]int{}
	}
	return &resp, nil
}
