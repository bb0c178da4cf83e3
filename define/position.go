package define

import (
	"fmt"
	"strings"
)

// MotorCount 标准布局的马达数量
const MotorCount = 20

// Position 触觉设备或身体区域
type Position int

const (
	PositionUnknown Position = iota
	PositionAll
	PositionLeft
	PositionRight
	PositionVest
	PositionHead
	PositionRacket
	PositionHandL
	PositionHandR
	PositionFootL
	PositionFootR
	PositionVestFront
	PositionVestBack
)

// Positions 返回全部有效位置（不含 PositionUnknown）
func Positions() []Position {
	return []Position{
		PositionAll,
		PositionLeft,
		PositionRight,
		PositionVest,
		PositionHead,
		PositionRacket,
		PositionHandL,
		PositionHandR,
		PositionFootL,
		PositionFootR,
		PositionVestFront,
		PositionVestBack,
	}
}

// String 返回位置在协议中使用的名称
func (p Position) String() string {
	switch p {
	case PositionAll:
		return "All"
	case PositionLeft:
		return "Left"
	case PositionRight:
		return "Right"
	case PositionVest:
		return "Vest"
	case PositionHead:
		return "Head"
	case PositionRacket:
		return "Racket"
	case PositionHandL:
		return "HandL"
	case PositionHandR:
		return "HandR"
	case PositionFootL:
		return "FootL"
	case PositionFootR:
		return "FootR"
	case PositionVestFront:
		return "VestFront"
	case PositionVestBack:
		return "VestBack"
	default:
		return "Unknown"
	}
}

// PositionFromString 将协议名称解析为位置，大小写不敏感，无法识别时返回 PositionUnknown
func PositionFromString(name string) Position {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "all":
		return PositionAll
	case "left":
		return PositionLeft
	case "right":
		return PositionRight
	case "vest":
		return PositionVest
	case "head":
		return PositionHead
	case "racket":
		return PositionRacket
	case "handl":
		return PositionHandL
	case "handr":
		return PositionHandR
	case "footl":
		return PositionFootL
	case "footr":
		return PositionFootR
	case "vestfront":
		return PositionVestFront
	case "vestback":
		return PositionVestBack
	default:
		return PositionUnknown
	}
}

// MarshalText 以协议名称序列化
func (p Position) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText 无法识别的名称返回错误
func (p *Position) UnmarshalText(text []byte) error {
	position := PositionFromString(string(text))
	if position == PositionUnknown {
		return fmt.Errorf("未知的设备位置: %q", string(text))
	}
	*p = position
	return nil
}

// IsValid 位置是否属于枚举成员
func (p Position) IsValid() bool { return p != PositionUnknown && p.String() != "Unknown" }

// DeviceOf 返回承载该区域的物理设备，背心前后片都属于背心
func (p Position) DeviceOf() Position {
	switch p {
	case PositionVestFront, PositionVestBack, PositionVest:
		return PositionVest
	case PositionAll, PositionLeft, PositionRight, PositionHead, PositionRacket,
		PositionHandL, PositionHandR, PositionFootL, PositionFootR:
		return p
	default:
		return PositionUnknown
	}
}

// Zones 返回设备在状态报告中可能出现的区域名称
func (p Position) Zones() []Position {
	switch p {
	case PositionVest:
		return []Position{PositionVestFront, PositionVestBack, PositionVest}
	case PositionUnknown:
		return nil
	default:
		if !p.IsValid() {
			return nil
		}
		return []Position{p}
	}
}

// Description 返回设备的中文描述
func (p Position) Description() string {
	switch p {
	case PositionAll:
		return "全部设备"
	case PositionLeft:
		return "左前臂"
	case PositionRight:
		return "右前臂"
	case PositionVest:
		return "背心"
	case PositionHead:
		return "头部"
	case PositionRacket:
		return "球拍"
	case PositionHandL:
		return "左手套"
	case PositionHandR:
		return "右手套"
	case PositionFootL:
		return "左脚"
	case PositionFootR:
		return "右脚"
	case PositionVestFront:
		return "背心前片"
	case PositionVestBack:
		return "背心后片"
	default:
		return "未知设备"
	}
}
