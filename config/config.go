// Package config 读取与保存 YAML 配置文件
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"haptics/pkg/errors"
)

// Config 应用配置
type Config struct {
	Player  PlayerConfig  `yaml:"player"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Monitor MonitorConfig `yaml:"monitor"`
	Redis   RedisConfig   `yaml:"redis"`
}

// PlayerConfig 播放服务连接配置
type PlayerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	Path              string        `yaml:"path"`
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
	TickInterval      time.Duration `yaml:"tick_interval"`
	Retry             bool          `yaml:"retry"`
	HandshakeTimeout  time.Duration `yaml:"handshake_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	FeedbackDir       string        `yaml:"feedback_dir"`
}

// ServerConfig 控制接口配置
type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	EnableCORS bool   `yaml:"enable_cors"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MonitorConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RedisConfig 状态镜像配置，关闭时不连接 Redis
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// GetDefaultConfig 获取默认配置
func GetDefaultConfig() *Config {
	return &Config{
		Player: PlayerConfig{
			Host:              "127.0.0.1",
			Port:              15881,
			Path:              "v2/feedbacks",
			ReconnectInterval: 5 * time.Second,
			TickInterval:      20 * time.Millisecond,
			Retry:             true,
			HandshakeTimeout:  500 * time.Millisecond,
			WriteTimeout:      500 * time.Millisecond,
			FeedbackDir:       "feedback",
		},
		Server: ServerConfig{
			Host:       "0.0.0.0",
			Port:       9099,
			EnableCORS: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Monitor: MonitorConfig{
			Enabled: true,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
			Channel: "haptics:status",
		},
	}
}

// LoadConfig 从文件加载配置，文件中未出现的字段保留默认值
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig 保存配置到文件
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("保存配置文件失败: %w", err)
	}
	return nil
}

// MaxIOTimeout 握手与写超时的上限，写操作在客户端的锁内进行
const MaxIOTimeout = time.Second

// Validate 检查配置取值
func (c *Config) Validate() error {
	switch {
	case c.Player.Host == "":
		return invalid("player.host 不能为空")
	case c.Player.Port <= 0 || c.Player.Port > 65535:
		return invalid(fmt.Sprintf("player.port 超出范围: %d", c.Player.Port))
	case c.Player.ReconnectInterval <= 0:
		return invalid("player.reconnect_interval 必须为正数")
	case c.Player.TickInterval <= 0:
		return invalid("player.tick_interval 必须为正数")
	case c.Player.HandshakeTimeout <= 0 || c.Player.HandshakeTimeout > MaxIOTimeout:
		return invalid(fmt.Sprintf("player.handshake_timeout 必须在 (0, %s] 之间", MaxIOTimeout))
	case c.Player.WriteTimeout <= 0 || c.Player.WriteTimeout > MaxIOTimeout:
		return invalid(fmt.Sprintf("player.write_timeout 必须在 (0, %s] 之间", MaxIOTimeout))
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return invalid(fmt.Sprintf("server.port 超出范围: %d", c.Server.Port))
	case c.Redis.Enabled && c.Redis.Addr == "":
		return invalid("redis.addr 不能为空")
	}
	return nil
}

func invalid(message string) error {
	return errors.WrapFatal(fmt.Errorf("%w: %s", errors.ErrInvalidConfig, message), "config", "Validate")
}
