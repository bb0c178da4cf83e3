package haptic

import (
	"haptics/pkg/errors"
	"haptics/pkg/protocol"
)

// 以下方法都要求调用方持有 p.mutex 写锁

func (p *Player) activeRequestLocked() *protocol.PlayerRequest {
	if p.pending == nil {
		p.pending = &protocol.PlayerRequest{}
	}
	return p.pending
}

// enqueueRegisterLocked 追加注册操作并立即发送
func (p *Player) enqueueRegisterLocked(req protocol.RegisterRequest) []protocol.PlayerResponse {
	request := p.activeRequestLocked()
	request.Register = append(request.Register, req)
	p.metrics.ObserveRegister()
	return p.flushLocked()
}

// enqueueSubmitLocked 追加提交操作并立即发送
func (p *Player) enqueueSubmitLocked(req protocol.SubmitRequest) []protocol.PlayerResponse {
	request := p.activeRequestLocked()
	request.Submit = append(request.Submit, req)
	p.metrics.ObserveSubmit(string(req.Type))
	return p.flushLocked()
}

// flushLocked 编码并发送当前请求，无论成功与否都清空请求
//
// 发送时顺带取回的入站消息在同一把锁下解析。
func (p *Player) flushLocked() []protocol.PlayerResponse {
	request := p.pending
	p.pending = nil

	if request.IsEmpty() || p.conn == nil {
		return nil
	}

	data, err := request.Encode()
	if err != nil {
		p.log.WithError(err).Error("❌ 请求编码失败")
		return nil
	}

	messages, err := p.conn.Send(data)
	if err != nil {
		if !errors.Is(err, errors.ErrNoConnection) {
			p.log.WithError(err).Debug("请求发送失败，等待重连")
		}
		return nil
	}

	return p.handleMessagesLocked(messages)
}
