package haptic

import (
	"fmt"

	"haptics/define"
	"haptics/pkg/errors"
	"haptics/pkg/protocol"
)

// 倍率与强度的取值范围
const (
	MinScale     = 0.01
	MaxScale     = 100.0
	MaxIntensity = 100
)

// SubmitBytes 按马达顺序提交 20 个强度值，强度为 0 的马达不振动
func (p *Player) SubmitBytes(key string, position define.Position, motorBytes []byte, durationMillis int) error {
	if err := p.validateFrame("SubmitBytes", key, position, durationMillis); err != nil {
		return err
	}
	if len(motorBytes) != define.MotorCount {
		return p.reject("SubmitBytes", "motor_bytes",
			fmt.Errorf("%w: 需要 %d 个马达强度，实际 %d 个", errors.ErrOutOfRange, define.MotorCount, len(motorBytes)))
	}
	for i, v := range motorBytes {
		if int(v) > MaxIntensity {
			return p.reject("SubmitBytes", "intensity",
				fmt.Errorf("%w: 马达 %d 强度 %d", errors.ErrOutOfRange, i, v))
		}
	}

	frame := protocol.NewBytesFrame(motorBytes, position, durationMillis)
	return p.submitFrame(key, frame)
}

// SubmitDots 点模式提交
func (p *Player) SubmitDots(key string, position define.Position, points []protocol.DotPoint, durationMillis int) error {
	if err := p.validateFrame("SubmitDots", key, position, durationMillis); err != nil {
		return err
	}
	for _, point := range points {
		if point.Index < 0 || point.Index >= define.MotorCount {
			return p.reject("SubmitDots", "dot_index",
				fmt.Errorf("%w: 马达序号 %d", errors.ErrOutOfRange, point.Index))
		}
		if point.Intensity < 0 || point.Intensity > MaxIntensity {
			return p.reject("SubmitDots", "intensity",
				fmt.Errorf("%w: 强度 %d", errors.ErrOutOfRange, point.Intensity))
		}
	}

	frame := protocol.NewDotPointFrame(points, position, durationMillis)
	return p.submitFrame(key, frame)
}

// SubmitPath 路径模式提交
func (p *Player) SubmitPath(key string, position define.Position, points []protocol.PathPoint, durationMillis int) error {
	if err := p.validateFrame("SubmitPath", key, position, durationMillis); err != nil {
		return err
	}
	for _, point := range points {
		if !(point.X >= 0 && point.X <= 1 && point.Y >= 0 && point.Y <= 1) {
			return p.reject("SubmitPath", "path_point",
				fmt.Errorf("%w: 坐标 (%.3f, %.3f)", errors.ErrOutOfRange, point.X, point.Y))
		}
		if point.Intensity < 0 || point.Intensity > MaxIntensity {
			return p.reject("SubmitPath", "intensity",
				fmt.Errorf("%w: 强度 %d", errors.ErrOutOfRange, point.Intensity))
		}
	}

	frame := protocol.NewPathPointFrame(points, position, durationMillis)
	return p.submitFrame(key, frame)
}

// SubmitRegistered 播放已注册的图案
func (p *Player) SubmitRegistered(key string) error {
	if key == "" {
		return p.reject("SubmitRegistered", "empty_key", errors.ErrEmptyKey)
	}
	return p.submit(protocol.SubmitRequest{Type: protocol.SubmitKey, Key: key})
}

// SubmitRegisteredWithScale 按强度与时长倍率播放已注册的图案，倍率取值 [0.01, 100]
func (p *Player) SubmitRegisteredWithScale(key string, intensity, duration float64) error {
	if key == "" {
		return p.reject("SubmitRegisteredWithScale", "empty_key", errors.ErrEmptyKey)
	}
	if err := p.validateScale("SubmitRegisteredWithScale", protocol.ScaleOption{Intensity: intensity, Duration: duration}); err != nil {
		return err
	}

	return p.submit(protocol.SubmitRequest{
		Type: protocol.SubmitKey,
		Key:  key,
		Parameters: map[string]any{
			"intensityRatio": intensity,
			"durationRatio":  duration,
		},
	})
}

// SubmitRegisteredWithOption 以 altKey 的身份播放 key 对应的图案，并施加倍率与旋转
func (p *Player) SubmitRegisteredWithOption(key, altKey string, scale protocol.ScaleOption, rotation protocol.RotationOption) error {
	if key == "" {
		return p.reject("SubmitRegisteredWithOption", "empty_key", errors.ErrEmptyKey)
	}
	if err := p.validateScale("SubmitRegisteredWithOption", scale); err != nil {
		return err
	}

	parameters := map[string]any{
		"scaleOption":    scale,
		"rotationOption": rotation,
	}
	if altKey != "" {
		parameters["altKey"] = altKey
	}

	return p.submit(protocol.SubmitRequest{
		Type:       protocol.SubmitKey,
		Key:        key,
		Parameters: parameters,
	})
}

// SubmitRegisteredWithTransform 只施加旋转，倍率固定为 1
func (p *Player) SubmitRegisteredWithTransform(key, altKey string, rotation protocol.RotationOption) error {
	return p.SubmitRegisteredWithOption(key, altKey, protocol.ScaleOption{Intensity: 1, Duration: 1}, rotation)
}

// TurnOff 停止 key 对应的反馈
func (p *Player) TurnOff(key string) error {
	if key == "" {
		return p.reject("TurnOff", "empty_key", errors.ErrEmptyKey)
	}
	return p.submit(protocol.SubmitRequest{Type: protocol.SubmitTurnOff, Key: key})
}

// TurnOffAll 停止全部反馈
func (p *Player) TurnOffAll() error {
	return p.submit(protocol.SubmitRequest{Type: protocol.SubmitTurnOffAll})
}

func (p *Player) submitFrame(key string, frame protocol.Frame) error {
	return p.submit(protocol.SubmitRequest{Type: protocol.SubmitFrame, Key: key, Frame: &frame})
}

// submit 未开启或未连接时直接返回
func (p *Player) submit(req protocol.SubmitRequest) error {
	p.mutex.Lock()
	if !p.enabled || p.conn == nil || !p.conn.IsConnected() {
		p.mutex.Unlock()
		return nil
	}
	responses := p.enqueueSubmitLocked(req)
	p.mutex.Unlock()

	p.dispatch(responses)
	return nil
}

func (p *Player) validateFrame(operation, key string, position define.Position, durationMillis int) error {
	if key == "" {
		return p.reject(operation, "empty_key", errors.ErrEmptyKey)
	}
	if !position.IsValid() {
		return p.reject(operation, "position", errors.ErrUnknownPosition)
	}
	if durationMillis <= 0 {
		return p.reject(operation, "duration",
			fmt.Errorf("%w: 时长 %dms", errors.ErrOutOfRange, durationMillis))
	}
	return nil
}

func (p *Player) validateScale(operation string, scale protocol.ScaleOption) error {
	if !inScale(scale.Duration) {
		return p.reject(operation, "scale",
			fmt.Errorf("%w: 时长倍率 %v", errors.ErrOutOfRange, scale.Duration))
	}
	if !inScale(scale.Intensity) {
		return p.reject(operation, "scale",
			fmt.Errorf("%w: 强度倍率 %v", errors.ErrOutOfRange, scale.Intensity))
	}
	return nil
}

// inScale NaN 也视为越界
func inScale(v float64) bool { return v >= MinScale && v <= MaxScale }

// reject 记录并返回校验错误
func (p *Player) reject(operation, reason string, err error) error {
	p.metrics.ObserveRejected(reason)
	p.log.WithField("operation", operation).Warnf("❌ 参数校验失败: %v", err)
	return errors.WrapInvalid(err, "player", operation)
}
