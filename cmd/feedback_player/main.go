// feedback_player 注册图案目录并播放一次指定的图案，用于在没有上层应用时检查设备与图案
//
// 用法：
//
//	feedback_player -key buzz1 -intensity 0.8 -wait 3s -- -feedback-dir ./feedback
//
// "--" 之后的参数与主程序相同。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"haptics/cli"
	"haptics/communication"
	"haptics/haptic"
	"haptics/pkg/protocol"
)

type playOptions struct {
	key       string
	altKey    string
	intensity float64
	duration  float64
	wait      time.Duration
	list      bool
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	var play playOptions
	fs.StringVar(&play.key, "key", "", "要播放的图案 key")
	fs.StringVar(&play.altKey, "alt-key", "", "以另一个 key 的身份播放")
	fs.Float64Var(&play.intensity, "intensity", 1, "强度倍率")
	fs.Float64Var(&play.duration, "duration", 1, "时长倍率")
	fs.DurationVar(&play.wait, "wait", 3*time.Second, "播放后等待状态报告的时间")
	fs.BoolVar(&play.list, "list", false, "只列出已注册的图案")
	_ = fs.Parse(os.Args[1:])

	opts, err := cli.ParseConfig(os.Args[0], fs.Args())
	if err != nil {
		logrus.Fatalf("❌ %v", err)
	}
	cfg := opts.Config
	log := cli.SetupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	player := haptic.NewPlayer(cli.PlayerOptions(cfg.Player), haptic.WithLogger(log))
	if err := player.Init(ctx); err != nil {
		log.Fatalf("❌ 初始化客户端失败: %v", err)
	}
	defer player.Destroy()

	if err := run(ctx, player, play, log); err != nil {
		log.Errorf("❌ %v", err)
		player.Destroy()
		os.Exit(1)
	}
}

func run(ctx context.Context, player *haptic.Player, play playOptions, log logrus.FieldLogger) error {
	if player.ConnectionState() != communication.StateConnected {
		return fmt.Errorf("无法连接播放服务 %s", player.Snapshot().Endpoint)
	}

	if dir := player.FeedbackDir(); dir != "" {
		if _, err := player.RegisterDirectory(dir); err != nil {
			return err
		}
	}

	if play.list || play.key == "" {
		for _, key := range player.Registry().Keys() {
			fmt.Println(key)
		}
		return nil
	}

	var err error
	switch {
	case play.altKey != "":
		scale := protocol.ScaleOption{Intensity: play.intensity, Duration: play.duration}
		err = player.SubmitRegisteredWithOption(play.key, play.altKey, scale, protocol.RotationOption{})
	case play.intensity != 1 || play.duration != 1:
		err = player.SubmitRegisteredWithScale(play.key, play.intensity, play.duration)
	default:
		err = player.SubmitRegistered(play.key)
	}
	if err != nil {
		return err
	}
	log.Infof("▶️ 已播放 %s", play.key)

	return waitForFinish(ctx, player, play.key, play.wait, log)
}

// waitForFinish 等待图案播放结束或超时，超时后停止该图案
func waitForFinish(ctx context.Context, player *haptic.Player, key string, wait time.Duration, log logrus.FieldLogger) error {
	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	ticker := time.NewTicker(haptic.DefaultTickInterval)
	defer ticker.Stop()

	seen := false
	for {
		select {
		case <-ctx.Done():
			return player.TurnOff(key)
		case <-deadline.C:
			log.Warnf("⏱️ 等待 %s 超时，停止播放", wait)
			return player.TurnOff(key)
		case <-ticker.C:
			player.CheckMessage()
			playing := player.IsPlayingKey(key)
			if playing {
				seen = true
			}
			if seen && !playing {
				log.Infof("✅ %s 播放完成", key)
				logStatus(player.Status(), log)
				return nil
			}
		}
	}
}

func logStatus(status map[string][]int, log logrus.FieldLogger) {
	names := make([]string, 0, len(status))
	for name := range status {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		log.Debugf("   - %s: %v", name, status[name])
	}
}
