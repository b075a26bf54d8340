package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquiver-go/aquiver/core/config"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
	assert.False(t, cfg.TLS)
	require.NoError(t, cfg.Validate())
}

func TestConfigAddr(t *testing.T) {
	t.Parallel()

	cfg := Config{Host: "127.0.0.1", Port: 9000}
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
}

func TestConfigValidatePortRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{name: "ephemeral", port: 0, wantErr: false},
		{name: "common", port: 8080, wantErr: false},
		{name: "max", port: 65535, wantErr: false},
		{name: "negative", port: -1, wantErr: true},
		{name: "too large", port: 65536, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			cfg.Port = tt.port
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidateWebSocketPath(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.WebSocket = true
	cfg.WebSocketPath = "no-leading-slash"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg.WebSocketPath = "/ws"
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidateWatcherPath(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Watcher = true
	cfg.WatchPath = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestConfigWithDefaultsFillsZeroValues(t *testing.T) {
	t.Parallel()

	cfg := Config{Port: 8080}.withDefaults()
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
	assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
	assert.Equal(t, DefaultMaxHeaderBytes, cfg.MaxHeaderBytes)
}

func TestConfigLoadsFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "127.0.0.1")
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("SERVER_WEBSOCKET", "true")

	var cfg Config
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9191, cfg.Port)
	assert.True(t, cfg.WebSocket)
	assert.Equal(t, "/ws", cfg.WebSocketPath)
}
