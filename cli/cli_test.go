package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haptics/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestParseConfig_MissingDefaultFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	opts, err := ParseConfig("test", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigPath, opts.ConfigPath)
	assert.Equal(t, config.GetDefaultConfig(), opts.Config)
}

func TestParseConfig_MissingExplicitFileFails(t *testing.T) {
	_, err := ParseConfig("test", []string{"-config", filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}

func TestParseConfig_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "player:\n  port: 16000\n  feedback_dir: from-file\nserver:\n  port: 8000\n")

	opts, err := ParseConfig("test", []string{
		"-config", path,
		"-player-host", "10.0.0.2",
		"-port", "8100",
		"-no-retry",
		"-redis-addr", "redis:6379",
	})
	require.NoError(t, err)

	cfg := opts.Config
	assert.Equal(t, "10.0.0.2", cfg.Player.Host)
	assert.Equal(t, 16000, cfg.Player.Port)
	assert.Equal(t, "from-file", cfg.Player.FeedbackDir)
	assert.Equal(t, 8100, cfg.Server.Port)
	assert.False(t, cfg.Player.Retry)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Second, cfg.Player.ReconnectInterval)
}

func TestParseConfig_EnvOverridesFlags(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8000\n")
	t.Setenv("HAPTICS_SERVER_PORT", "8200")
	t.Setenv("HAPTICS_PLAYER_PORT", "17000")
	t.Setenv("HAPTICS_FEEDBACK_DIR", "/srv/patterns")
	t.Setenv("HAPTICS_LOG_LEVEL", "debug")
	t.Setenv("HAPTICS_REDIS_ENABLED", "true")

	opts, err := ParseConfig("test", []string{"-config", path, "-port", "8100"})
	require.NoError(t, err)

	assert.Equal(t, 8200, opts.Config.Server.Port)
	assert.Equal(t, 17000, opts.Config.Player.Port)
	assert.Equal(t, "/srv/patterns", opts.Config.Player.FeedbackDir)
	assert.Equal(t, "debug", opts.Config.Log.Level)
	assert.True(t, opts.Config.Redis.Enabled)
}

func TestParseConfig_InvalidInput(t *testing.T) {
	path := writeConfig(t, "")

	_, err := ParseConfig("test", []string{"-config", path, "-unknown-flag"})
	assert.Error(t, err)

	t.Setenv("HAPTICS_PLAYER_PORT", "not-a-port")
	_, err = ParseConfig("test", []string{"-config", path})
	assert.Error(t, err)
}

func TestParseConfig_ValidatesResult(t *testing.T) {
	path := writeConfig(t, "")
	_, err := ParseConfig("test", []string{"-config", path, "-player-port", "99999"})
	assert.Error(t, err)
}

func TestParseConfig_Version(t *testing.T) {
	path := writeConfig(t, "")
	opts, err := ParseConfig("test", []string{"-config", path, "-version"})
	require.NoError(t, err)
	assert.True(t, opts.ShowVersion)
}

func TestSetupLogger(t *testing.T) {
	log := SetupLogger(config.LogConfig{Level: "debug", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = SetupLogger(config.LogConfig{Level: "nonsense"})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestPlayerOptions(t *testing.T) {
	cfg := config.GetDefaultConfig().Player
	cfg.Host = "10.0.0.2"
	cfg.Port = 16001
	cfg.Retry = false
	cfg.ReconnectInterval = 3 * time.Second

	opts := PlayerOptions(cfg)
	assert.Equal(t, "ws://10.0.0.2:16001/v2/feedbacks", opts.Connection.Endpoint.URL())
	assert.False(t, opts.Connection.RetryConnection)
	assert.Equal(t, 3*time.Second, opts.Connection.ReconnectInterval)
	assert.Equal(t, 20*time.Millisecond, opts.TickInterval)
	assert.Equal(t, "feedback", opts.FeedbackDir)
}
