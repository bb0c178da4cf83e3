// Package cli 解析命令行参数与环境变量
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"haptics/communication"
	"haptics/config"
	"haptics/haptic"
)

// DefaultConfigPath 默认配置文件路径
const DefaultConfigPath = "configs/config.yaml"

// Options 命令行解析结果
type Options struct {
	ConfigPath  string
	ShowVersion bool
	Config      *config.Config
}

// ParseConfig 解析配置
//
// 优先级从低到高：默认值、配置文件、命令行参数、环境变量。
// 默认路径的配置文件不存在时使用默认配置，显式指定的文件不存在则报错。
func ParseConfig(name string, args []string) (*Options, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	opts := &Options{}
	var (
		playerHost  string
		playerPort  int
		feedbackDir string
		serverPort  int
		logLevel    string
		redisAddr   string
		redisOn     bool
		noRetry     bool
	)
	fs.StringVar(&opts.ConfigPath, "config", DefaultConfigPath, "配置文件路径")
	fs.BoolVar(&opts.ShowVersion, "version", false, "显示版本信息")
	fs.StringVar(&playerHost, "player-host", "", "播放服务地址")
	fs.IntVar(&playerPort, "player-port", 0, "播放服务端口")
	fs.StringVar(&feedbackDir, "feedback-dir", "", "图案文件目录")
	fs.IntVar(&serverPort, "port", 0, "控制接口端口")
	fs.StringVar(&logLevel, "log-level", "", "日志级别")
	fs.StringVar(&redisAddr, "redis-addr", "", "Redis 地址，设置后开启状态镜像")
	fs.BoolVar(&redisOn, "redis", false, "开启 Redis 状态镜像")
	fs.BoolVar(&noRetry, "no-retry", false, "关闭自动重连")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("解析命令行参数失败: %w", err)
	}

	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		explicit := false
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "config" {
				explicit = true
			}
		})
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		logrus.Warnf("⚠️ 配置文件 %s 不存在，使用默认配置", opts.ConfigPath)
		cfg = config.GetDefaultConfig()
	}

	// 命令行参数覆盖配置文件
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "player-host":
			cfg.Player.Host = playerHost
		case "player-port":
			cfg.Player.Port = playerPort
		case "feedback-dir":
			cfg.Player.FeedbackDir = feedbackDir
		case "port":
			cfg.Server.Port = serverPort
		case "log-level":
			cfg.Log.Level = logLevel
		case "redis-addr":
			cfg.Redis.Addr = redisAddr
			cfg.Redis.Enabled = true
		case "redis":
			cfg.Redis.Enabled = redisOn
		case "no-retry":
			cfg.Player.Retry = !noRetry
		}
	})

	// 环境变量覆盖命令行参数
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts.Config = cfg
	return opts, nil
}

func applyEnv(cfg *config.Config) error {
	if v := os.Getenv("HAPTICS_PLAYER_HOST"); v != "" {
		cfg.Player.Host = v
	}
	if v := os.Getenv("HAPTICS_PLAYER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HAPTICS_PLAYER_PORT 不是合法端口: %q", v)
		}
		cfg.Player.Port = port
	}
	if v := os.Getenv("HAPTICS_FEEDBACK_DIR"); v != "" {
		cfg.Player.FeedbackDir = v
	}
	if v := os.Getenv("HAPTICS_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HAPTICS_SERVER_PORT 不是合法端口: %q", v)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("HAPTICS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HAPTICS_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("HAPTICS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("HAPTICS_REDIS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("HAPTICS_REDIS_ENABLED 不是合法布尔值: %q", v)
		}
		cfg.Redis.Enabled = enabled
	}
	return nil
}

// SetupLogger 按配置创建日志器
func SetupLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return log
}

// PlayerOptions 将播放服务配置转换为客户端参数
func PlayerOptions(cfg config.PlayerConfig) haptic.Options {
	opts := haptic.DefaultOptions()
	opts.Connection.Endpoint = communication.Endpoint{
		Host: cfg.Host,
		Port: cfg.Port,
		Path: cfg.Path,
	}
	opts.Connection.ReconnectInterval = cfg.ReconnectInterval
	opts.Connection.RetryConnection = cfg.Retry
	opts.Connection.HandshakeTimeout = cfg.HandshakeTimeout
	opts.Connection.WriteTimeout = cfg.WriteTimeout
	opts.TickInterval = cfg.TickInterval
	opts.FeedbackDir = cfg.FeedbackDir
	return opts
}
