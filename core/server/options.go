package server

import (
	"io"
	"log/slog"
	"os"

	"github.com/gorilla/websocket"

	"github.com/aquiver-go/aquiver/core/handler"
)

// Option configures server behavior at construction time.
type Option func(*Server)

// WithLogger sets a custom logger for server operations.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithResolver replaces the error-handler resolver consulted by the
// dispatch recovery path.
func WithResolver(r *handler.Resolver) Option {
	return func(s *Server) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithWatcher installs the hot-reload watcher collaborator. It only runs
// when the config watcher flag is set.
func WithWatcher(w Watcher) Option {
	return func(s *Server) {
		s.watcher = w
	}
}

// WithWebSocketHandler installs the handler for upgraded connections. It
// only receives traffic when the config websocket flag is set.
func WithWebSocketHandler(h WebSocketHandler) Option {
	return func(s *Server) {
		s.wsHandler = h
	}
}

// WithWebSocketUpgrader overrides the default upgrader, e.g. to customize
// buffer sizes or origin checks.
func WithWebSocketUpgrader(u *websocket.Upgrader) Option {
	return func(s *Server) {
		if u != nil {
			s.upgrader = u
		}
	}
}

// WithBannerText replaces the default startup banner text.
func WithBannerText(text string) Option {
	return func(s *Server) {
		s.bannerText = text
	}
}

// WithBannerWriter redirects banner output away from stdout.
func WithBannerWriter(w io.Writer) Option {
	return func(s *Server) {
		s.bannerOut = w
	}
}

// WithoutBanner suppresses the startup banner entirely.
func WithoutBanner() Option {
	return func(s *Server) {
		s.bannerOut = nil
	}
}

// WithShutdownSignals replaces the OS signals that trigger the exactly-once
// shutdown hook. Defaults to SIGINT and SIGTERM.
func WithShutdownSignals(signals ...os.Signal) Option {
	return func(s *Server) {
		s.hookSignals = signals
	}
}

// WithoutShutdownHook disables OS-signal shutdown. Stop must then be called
// programmatically.
func WithoutShutdownHook() Option {
	return func(s *Server) {
		s.hookSignals = nil
	}
}
