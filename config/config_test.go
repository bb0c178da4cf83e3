package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haptics/pkg/errors"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "127.0.0.1", cfg.Player.Host)
	assert.Equal(t, 15881, cfg.Player.Port)
	assert.Equal(t, "v2/feedbacks", cfg.Player.Path)
	assert.Equal(t, 5*time.Second, cfg.Player.ReconnectInterval)
	assert.Equal(t, 20*time.Millisecond, cfg.Player.TickInterval)
	assert.True(t, cfg.Player.Retry)
	assert.Equal(t, 500*time.Millisecond, cfg.Player.HandshakeTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Player.WriteTimeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
player:
  port: 16000
  reconnect_interval: 2s
log:
  format: json
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 16000, cfg.Player.Port)
	assert.Equal(t, 2*time.Second, cfg.Player.ReconnectInterval)
	assert.Equal(t, "127.0.0.1", cfg.Player.Host)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 9099, cfg.Server.Port)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("player: [1, 2"), 0o644))
	_, err = LoadConfig(broken)
	assert.Error(t, err)

	invalidPort := filepath.Join(dir, "port.yaml")
	require.NoError(t, os.WriteFile(invalidPort, []byte("player:\n  port: 70000\n"), 0o644))
	_, err = LoadConfig(invalidPort)
	assert.True(t, errors.IsFatal(err))
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"empty host":       func(c *Config) { c.Player.Host = "" },
		"zero reconnect":   func(c *Config) { c.Player.ReconnectInterval = 0 },
		"zero tick":        func(c *Config) { c.Player.TickInterval = 0 },
		"zero handshake":   func(c *Config) { c.Player.HandshakeTimeout = 0 },
		"long handshake":   func(c *Config) { c.Player.HandshakeTimeout = 5 * time.Second },
		"zero write":       func(c *Config) { c.Player.WriteTimeout = 0 },
		"long write":       func(c *Config) { c.Player.WriteTimeout = 2 * time.Second },
		"server port":      func(c *Config) { c.Server.Port = -1 },
		"redis empty addr": func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			mutate(cfg)
			assert.True(t, errors.IsFatal(cfg.Validate()))
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := GetDefaultConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Channel = "custom"
	cfg.Player.FeedbackDir = "/srv/patterns"

	require.NoError(t, SaveConfig(cfg, path))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfig_ShippedFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "configs", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}
