package server

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Config is the immutable configuration snapshot a Server is built from.
// Fields carry env tags so the whole struct loads via core/config. A Config
// is captured once by New and never mutated after bind.
type Config struct {
	// Bind address
	Host string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envDefault:"8080"`

	// TLS (optional). With TLS enabled and either path empty, a generated
	// self-signed certificate is used instead of failing.
	TLS            bool   `env:"SERVER_SSL" envDefault:"false"`
	TLSCertFile    string `env:"SERVER_SSL_CERT" envDefault:""`
	TLSKeyFile     string `env:"SERVER_SSL_KEY" envDefault:""`
	TLSKeyPassword string `env:"SERVER_SSL_KEY_PASS" envDefault:""`

	// WebSocket upgrade path
	WebSocket     bool   `env:"SERVER_WEBSOCKET" envDefault:"false"`
	WebSocketPath string `env:"SERVER_WEBSOCKET_PATH" envDefault:"/ws"`

	// Transport thread groups; non-positive values fall back to the
	// transport package defaults.
	AcceptThreadCount int `env:"SERVER_ACCEPT_THREAD_COUNT" envDefault:"0"`
	IOThreadCount     int `env:"SERVER_IO_THREAD_COUNT" envDefault:"0"`

	// Hot-reload watcher
	Watcher   bool   `env:"SERVER_WATCHER" envDefault:"false"`
	WatchPath string `env:"SERVER_WATCHER_PATH" envDefault:"."`

	// Timeouts
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Header limits
	MaxHeaderBytes int `env:"SERVER_MAX_HEADER_BYTES" envDefault:"1048576"` // 1MB
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		WebSocketPath:   DefaultWebSocketPath,
		WatchPath:       ".",
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		MaxHeaderBytes:  DefaultMaxHeaderBytes,
	}
}

// Addr returns the host:port string the listener binds to.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate rejects configurations that must fail fast, before any transport
// allocation happens.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range 0-65535", ErrInvalidConfig, c.Port)
	}
	if c.WebSocket {
		if c.WebSocketPath == "" || !strings.HasPrefix(c.WebSocketPath, "/") {
			return fmt.Errorf("%w: websocket path %q must start with /", ErrInvalidConfig, c.WebSocketPath)
		}
	}
	if c.Watcher && c.WatchPath == "" {
		return fmt.Errorf("%w: watcher enabled without a watch path", ErrInvalidConfig)
	}
	return nil
}

// withDefaults fills zero-valued timeout and limit fields so a sparse
// literal Config still gets production-ready values.
func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.WebSocket && c.WebSocketPath == "" {
		c.WebSocketPath = DefaultWebSocketPath
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.MaxHeaderBytes <= 0 {
		c.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	return c
}
