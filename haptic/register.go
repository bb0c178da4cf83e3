package haptic

import (
	"haptics/pattern"
	"haptics/pkg/errors"
	"haptics/pkg/protocol"
)

// Register 注册图案并发送给播放服务
//
// 先校验图案，不合法时无论反馈是否开启都返回错误。
// 反馈关闭时不做任何事。未连接时只更新注册表，不发送。
func (p *Player) Register(key string, pat pattern.Pattern) error {
	if key == "" {
		return p.reject("Register", "empty_key", errors.ErrEmptyKey)
	}

	if _, err := pattern.Validate(key, pat); err != nil {
		p.metrics.ObserveRejected("pattern")
		p.log.WithError(err).Warnf("❌ 图案 %s 注册失败", key)
		return err
	}

	p.mutex.Lock()
	if !p.enabled {
		p.mutex.Unlock()
		return nil
	}

	req, err := p.registry.Register(key, pat)
	if err != nil {
		p.mutex.Unlock()
		return err
	}

	var responses []protocol.PlayerResponse
	if p.conn != nil && p.conn.IsConnected() {
		responses = p.enqueueRegisterLocked(req)
	}
	p.mutex.Unlock()

	p.dispatch(responses)
	p.log.Debugf("图案 %s 已注册", key)
	return nil
}

// RegisterFile 解析图案文件并以 key 注册，文件不存在时跳过
func (p *Player) RegisterFile(key, path string) error {
	if key == "" {
		return p.reject("RegisterFile", "empty_key", errors.ErrEmptyKey)
	}

	pat, err := pattern.ParseFile(path)
	if err != nil {
		if errors.IsMissing(err) {
			p.log.Warnf("⚠️ 图案文件不存在，跳过: %s", path)
		} else {
			p.log.WithError(err).Warnf("❌ 图案文件解析失败: %s", path)
		}
		return err
	}

	return p.Register(key, *pat)
}

// RegisterDirectory 注册目录下的全部图案文件，key 取文件名第一个 "." 之前的部分
//
// 单个文件失败不会中断其余文件，返回成功注册的 key。
func (p *Player) RegisterDirectory(dir string) ([]string, error) {
	files, err := pattern.Discover(dir)
	if err != nil {
		p.log.WithError(err).Warnf("⚠️ 无法读取图案目录 %s", dir)
		return nil, err
	}

	p.log.Infof("🔍 在 %s 中找到 %d 个图案文件", dir, len(files))

	registered := make([]string, 0, len(files))
	for _, file := range files {
		if err := p.RegisterFile(file.Key, file.Path); err != nil {
			continue
		}
		registered = append(registered, file.Key)
	}
	return registered, nil
}
