package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aquiver-go/aquiver/core/handler"
	"github.com/aquiver-go/aquiver/core/logger"
	"github.com/aquiver-go/aquiver/core/transport"
)

// Server is the lifecycle hub: it sequences TLS bootstrap, transport
// selection, listener bind, watcher start, and shutdown-hook registration,
// and owns the running/stopped state for a single start/stop cycle.
//
// A Server instance is single-use. Start moves it Created → Starting →
// Running; Stop moves it Running → Stopping → Stopped. A failed bootstrap
// rolls back to Stopped with everything released, and the instance is done —
// retry with a fresh one.
type Server struct {
	mu    sync.Mutex
	state State
	cfg   Config

	logger      *slog.Logger
	resolver    *handler.Resolver
	watcher     Watcher
	wsHandler   WebSocketHandler
	upgrader    *websocket.Upgrader
	bannerOut   io.Writer
	bannerText  string
	hookSignals []os.Signal

	desc    *transport.Descriptor
	httpSrv *http.Server
	ln      net.Listener

	watchCancel context.CancelFunc
	sigCh       chan os.Signal

	startInvoked atomic.Bool
	running      chan struct{}
	runningOnce  sync.Once
	done         chan struct{}
	doneOnce     sync.Once
}

// New validates cfg and builds a Server in the Created state. Invalid
// configuration (e.g. an out-of-range port) fails here, before any
// transport allocation.
func New(cfg Config, opts ...Option) (*Server, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		state:      StateCreated,
		cfg:        cfg,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		bannerOut:  os.Stdout,
		bannerText: defaultBannerText,
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		hookSignals: []os.Signal{os.Interrupt, syscall.SIGTERM},
		running:     make(chan struct{}),
		done:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.resolver == nil {
		s.resolver = handler.NewResolver(handler.WithLogger(s.logger))
	}

	return s, nil
}

// State reports the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Resolver returns the error-handler resolver consulted during dispatch.
func (s *Server) Resolver() *handler.Resolver {
	return s.resolver
}

// RegisterErrorHandler binds h to the exact dynamic type of kind. Handlers
// are usually registered before Start, but the table is concurrency-safe
// and late registration is permitted.
func (s *Server) RegisterErrorHandler(kind error, h handler.ErrorHandler) error {
	return s.resolver.Register(kind, h)
}

// Addr returns the bound listener address, or nil unless the server is
// Running or Stopping.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start runs the bootstrap sequence and returns once the server is Running,
// leaving the serve loop on its own goroutine. The step order is
// load-bearing: banner, TLS bootstrap, dispatch entry assembly, transport
// selection, bind, watcher, shutdown hook — each step assumes the previous
// one completed. Any failure releases everything acquired so far, moves the
// instance to Stopped, and is returned as a single terminal error.
//
// Start on anything but a Created instance returns ErrInvalidState.
func (s *Server) Start(ctx context.Context, dispatch http.Handler) error {
	if dispatch == nil {
		return fmt.Errorf("%w: dispatch handler is required", ErrInvalidArgument)
	}

	s.mu.Lock()
	if s.state != StateCreated {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: start requires a created instance, state is %s", ErrInvalidState, state)
	}
	s.state = StateStarting
	cfg := s.cfg
	s.mu.Unlock()
	s.startInvoked.Store(true)

	began := time.Now()

	// Step 2: banner and environment log lines.
	printBanner(s.bannerOut, s.bannerText)
	hostname, _ := os.Hostname()
	s.logger.Info("starting server",
		logger.Component("server"),
		slog.String("hostname", hostname),
		slog.Int("pid", os.Getpid()))

	// Step 3: TLS bootstrap; fatal before bind.
	tlsCfg, err := buildTLSConfig(cfg)
	if err != nil {
		return s.abort(err)
	}
	if cfg.TLS {
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			s.logger.Info("tls enabled",
				logger.Path(cfg.TLSCertFile),
				slog.String("key", cfg.TLSKeyFile))
		} else {
			s.logger.Info("tls enabled with generated self-signed certificate")
		}
	}

	// Step 4: dispatch entry point, with the websocket upgrade path
	// attached when enabled.
	entry := s.buildHandler(dispatch, cfg)
	if cfg.WebSocket {
		s.logger.Info("websocket enabled", logger.Path(cfg.WebSocketPath))
	}

	// Step 5: transport selection. Fallback is silent; the outcome is logged.
	desc := transport.Select(cfg.AcceptThreadCount, cfg.IOThreadCount, transport.WithLogger(s.logger))
	s.logger.Info("transport selected",
		logger.Transport(string(desc.Kind())),
		logger.Count("acceptors", desc.Acceptors()),
		logger.Count("workers", desc.Workers()))

	// Step 6: bind. On failure the already-created groups are released
	// before the error propagates.
	raw, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		relCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		_ = desc.Shutdown(relCtx)
		cancel()
		return s.abort(fmt.Errorf("%w: %s: %v", ErrBind, cfg.Addr(), err))
	}
	if tlsCfg != nil {
		raw = tls.NewListener(raw, tlsCfg)
	}
	ln := desc.Listen(raw)

	httpSrv := &http.Server{
		Handler:        entry,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
		ConnContext:    storeConn,
	}

	s.mu.Lock()
	s.desc = desc
	s.httpSrv = httpSrv
	s.ln = ln
	s.mu.Unlock()

	go s.serveLoop(httpSrv, ln)

	// Step 7: watcher start is fire-and-forget; its failures never abort startup.
	if cfg.Watcher {
		s.startWatcher(cfg.WatchPath)
	}

	// Step 8: process-signal shutdown hook.
	s.registerShutdownHook()

	s.mu.Lock()
	s.state = StateRunning
	s.mu.Unlock()
	s.runningOnce.Do(func() { close(s.running) })

	s.logger.Info("server started",
		logger.Addr(ln.Addr().String()),
		logger.Transport(string(desc.Kind())),
		logger.Elapsed(began))
	return nil
}

// abort rolls a failed bootstrap back to Stopped. Nothing is left bound.
func (s *Server) abort(err error) error {
	s.mu.Lock()
	s.state = StateStopped
	s.desc = nil
	s.httpSrv = nil
	s.ln = nil
	s.mu.Unlock()
	s.doneOnce.Do(func() { close(s.done) })

	s.logger.Error("server start aborted", logger.Error(err))
	return err
}

func (s *Server) serveLoop(srv *http.Server, ln net.Listener) {
	err := srv.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("serve loop terminated", logger.Error(err))
		_ = s.Stop()
	}
}

func (s *Server) startWatcher(path string) {
	if s.watcher == nil {
		s.logger.Warn("watcher enabled but no watcher configured", logger.Path(path))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.watchCancel = cancel
	s.mu.Unlock()

	s.logger.Info("starting watcher", logger.Path(path))
	go func() {
		if err := s.watcher.Watch(ctx, path); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("watcher failed", logger.Path(path), logger.Error(err))
		}
	}()
}

// registerShutdownHook arranges for OS termination signals to invoke Stop.
// However many signals arrive, Stop's own idempotency guarantees the release
// work runs exactly once.
func (s *Server) registerShutdownHook() {
	if len(s.hookSignals) == 0 {
		return
	}

	s.sigCh = make(chan os.Signal, 1)
	signal.Notify(s.sigCh, s.hookSignals...)

	go func() {
		defer signal.Stop(s.sigCh)
		select {
		case <-s.done:
		case sig := <-s.sigCh:
			s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
			_ = s.Stop()
		}
	}()
}

// Stop gracefully shuts the server down: in-flight connections get the
// configured shutdown timeout to finish, then the transport groups are
// released. Errors during release are logged, never escalated — shutdown
// always reaches Stopped. Idempotent and safe to call concurrently; exactly
// one caller performs the release, the rest return immediately.
func (s *Server) Stop() error {
	s.mu.Lock()
	switch s.state {
	case StateStopping, StateStopped:
		s.mu.Unlock()
		return nil
	case StateCreated:
		s.state = StateStopped
		s.mu.Unlock()
		s.doneOnce.Do(func() { close(s.done) })
		return nil
	case StateStarting:
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: stop during %s, wait for start to settle", ErrInvalidState, state)
	}

	s.state = StateStopping
	desc := s.desc
	httpSrv := s.httpSrv
	watchCancel := s.watchCancel
	timeout := s.cfg.ShutdownTimeout
	s.mu.Unlock()

	s.logger.Info("shutting down server gracefully", logger.Duration(timeout))

	if watchCancel != nil {
		watchCancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if httpSrv != nil {
		if err := httpSrv.Shutdown(ctx); err != nil {
			s.logger.Error("http shutdown error", logger.Error(err))
		}
	}
	if desc != nil {
		if err := desc.Shutdown(ctx); err != nil {
			s.logger.Error("transport release error", logger.Error(err))
		}
	}

	s.mu.Lock()
	s.state = StateStopped
	s.httpSrv = nil
	s.ln = nil
	s.mu.Unlock()
	s.doneOnce.Do(func() { close(s.done) })

	s.logger.Info("server stopped")
	return nil
}

// Join blocks the calling goroutine until the server reaches Stopped —
// via programmatic Stop, an OS signal, or a serve-loop failure. It never
// initiates shutdown itself; any number of goroutines may wait.
func (s *Server) Join() {
	<-s.done
}

// Done exposes the completion signal for select statements.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Await blocks until Start has reached Running at least once. Calling it
// before Start was ever invoked is an error, as is waiting on an instance
// whose bootstrap aborted.
func (s *Server) Await() error {
	if !s.startInvoked.Load() {
		return fmt.Errorf("%w: await called before start", ErrInvalidState)
	}

	select {
	case <-s.running:
		return nil
	case <-s.done:
		// Running may have been reached before the stop; prefer it.
		select {
		case <-s.running:
			return nil
		default:
		}
		return fmt.Errorf("%w: server stopped before reaching running", ErrInvalidState)
	}
}

// Run starts the server and blocks until ctx is canceled or the server
// stops. Context cancellation triggers a graceful Stop and returns nil,
// which makes Run suitable for errgroup-style coordination.
func (s *Server) Run(ctx context.Context, dispatch http.Handler) error {
	if err := s.Start(ctx, dispatch); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		_ = s.Stop()
		return nil
	case <-s.done:
		return nil
	}
}
