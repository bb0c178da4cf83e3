package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"haptics/api2"
	"haptics/cli"
	"haptics/config"
	"haptics/haptic"
	"haptics/mirror"
	"haptics/monitor"
)

const version = "2.0.0"

func printUsage() {
	fmt.Println("Haptic Feedback Client")
	fmt.Println("Usage:")
	fmt.Println("  -config string         配置文件路径 (default: configs/config.yaml)")
	fmt.Println("  -player-host string    播放服务地址 (default: 127.0.0.1)")
	fmt.Println("  -player-port int       播放服务端口 (default: 15881)")
	fmt.Println("  -feedback-dir string   启动时注册的图案目录 (default: feedback)")
	fmt.Println("  -port int              控制接口端口 (default: 9099)")
	fmt.Println("  -log-level string      日志级别")
	fmt.Println("  -redis-addr string     Redis 地址，设置后开启状态镜像")
	fmt.Println("  -no-retry              关闭自动重连")
	fmt.Println("  -version               显示版本信息")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  HAPTICS_PLAYER_HOST    播放服务地址")
	fmt.Println("  HAPTICS_PLAYER_PORT    播放服务端口")
	fmt.Println("  HAPTICS_FEEDBACK_DIR   图案目录")
	fmt.Println("  HAPTICS_SERVER_PORT    控制接口端口")
	fmt.Println("  HAPTICS_LOG_LEVEL      日志级别")
	fmt.Println("  HAPTICS_LOG_FORMAT     日志格式 text/json")
	fmt.Println("  HAPTICS_REDIS_ADDR     Redis 地址")
	fmt.Println("  HAPTICS_REDIS_ENABLED  是否开启状态镜像")
}

func main() {
	// 检查是否请求帮助
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		return
	}

	// 解析配置
	opts, err := cli.ParseConfig(os.Args[0], os.Args[1:])
	if err != nil {
		logrus.Fatalf("❌ %v", err)
	}
	if opts.ShowVersion {
		fmt.Printf("haptics %s\n", version)
		return
	}

	cfg := opts.Config
	log := cli.SetupLogger(cfg.Log)
	log.Infof("🚀 启动触觉反馈客户端 %s", version)

	if err := run(cfg, log); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 指标、状态镜像与客户端共用同一个实例 ID
	instanceID := uuid.NewString()
	options := []haptic.Option{
		haptic.WithLogger(log),
		haptic.WithInstanceID(instanceID),
	}

	var metrics *monitor.Metrics
	if cfg.Monitor.Enabled {
		metrics = monitor.NewMetrics(instanceID)
		options = append(options, haptic.WithMetrics(metrics))
	}

	if cfg.Redis.Enabled {
		statusMirror, err := newMirror(ctx, cfg.Redis, instanceID, log)
		if err != nil {
			log.WithError(err).Warn("⚠️ Redis 状态镜像不可用，继续运行")
		} else {
			options = append(options, haptic.WithResponseHandler(statusMirror.Handle))
			defer statusMirror.Close()
		}
	}

	player := haptic.NewPlayer(cli.PlayerOptions(cfg.Player), options...)

	logConfig(log, cfg)

	if err := player.Init(ctx); err != nil {
		return fmt.Errorf("初始化客户端失败: %w", err)
	}
	defer player.Destroy()

	if dir := cfg.Player.FeedbackDir; dir != "" {
		if keys, err := player.RegisterDirectory(dir); err == nil {
			log.Infof("📦 已注册 %d 个图案", len(keys))
		}
	}

	go pollMessages(ctx, player, cfg.Player.TickInterval)

	// 设置 Gin 模式
	gin.SetMode(gin.ReleaseMode)

	// 创建 Gin 引擎
	r := gin.New()
	r.Use(gin.Recovery())

	if cfg.Server.EnableCORS {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"*"}, // 允许的域，*表示允许所有
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 设置 API 路由
	api2.NewServer(player, metrics, log).SetupRoutes(r)

	server := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler: r,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Infof("🌐 控制接口运行在 http://%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("服务启动失败: %w", err)
		}
	case <-ctx.Done():
		log.Info("🛑 收到退出信号，正在关闭...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("⚠️ 控制接口关闭超时")
	}

	log.Info("👋 触觉反馈客户端已退出")
	return nil
}

func newMirror(ctx context.Context, cfg config.RedisConfig, instanceID string, log logrus.FieldLogger) (*mirror.StatusMirror, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return mirror.NewStatusMirror(dialCtx, mirror.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		Channel:    cfg.Channel,
		InstanceID: instanceID,
	}, log)
}

// pollMessages 按节拍取出播放服务的状态报告
func pollMessages(ctx context.Context, player *haptic.Player, interval time.Duration) {
	if interval <= 0 {
		interval = haptic.DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			player.CheckMessage()
		}
	}
}

func logConfig(log logrus.FieldLogger, cfg *config.Config) {
	log.Info("🔧 服务配置：")
	log.Infof("   - 播放服务: ws://%s:%d/%s", cfg.Player.Host, cfg.Player.Port, cfg.Player.Path)
	log.Infof("   - 重连间隔: %s (自动重连: %v)", cfg.Player.ReconnectInterval, cfg.Player.Retry)
	log.Infof("   - 图案目录: %s", cfg.Player.FeedbackDir)
	log.Infof("   - 监控指标: %v", cfg.Monitor.Enabled)
	log.Infof("   - Redis 状态镜像: %v", cfg.Redis.Enabled)
}
