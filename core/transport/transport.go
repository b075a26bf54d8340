package transport

import (
	"context"
	"io"
	"log/slog"
	"net"
	"runtime"
	"sync"
)

// Kind identifies the IO multiplexing mechanism backing a Descriptor.
type Kind string

const (
	// KindEpoll is the native polling transport, available on Linux hosts.
	KindEpoll Kind = "epoll"
	// KindPoll is the portable readiness-based fallback, available everywhere.
	KindPoll Kind = "poll"
)

const (
	// DefaultAcceptorCount is used when the configured acceptor count is not positive.
	DefaultAcceptorCount = 1
)

// DefaultWorkerCount is used when the configured IO worker count is not
// positive. One worker per logical CPU, doubled to cover blocking IO.
func DefaultWorkerCount() int {
	return runtime.NumCPU() * 2
}

// Descriptor owns the acceptor and worker groups for one listener. It is
// created by Select, handed to the server lifecycle, and released exactly
// once via Shutdown. Acceptor goroutines only accept; each established
// connection is handed off and belongs to a single worker slot until closed.
type Descriptor struct {
	kind      Kind
	acceptors int
	workers   int
	logger    *slog.Logger

	pending chan net.Conn
	tokens  chan struct{}
	quit    chan struct{}

	mu        sync.Mutex
	raw       net.Listener
	started   bool
	closeOnce sync.Once

	acceptWG sync.WaitGroup

	shutdownOnce sync.Once
	shutdownErr  error
}

// Option configures a Descriptor at selection time.
type Option func(*Descriptor)

// WithLogger sets the logger for accept-path diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(d *Descriptor) {
		if log != nil {
			d.logger = log
		}
	}
}

// Select probes the host for a native polling transport and allocates the
// acceptor and worker groups. Missing native support is not an error; the
// portable fallback is used and the choice is visible via Kind.
// Non-positive counts are replaced with DefaultAcceptorCount and
// DefaultWorkerCount. Ownership of the returned Descriptor transfers to the
// caller, which must release it with Shutdown.
func Select(acceptorThreads, ioThreads int, opts ...Option) *Descriptor {
	if acceptorThreads <= 0 {
		acceptorThreads = DefaultAcceptorCount
	}
	if ioThreads <= 0 {
		ioThreads = DefaultWorkerCount()
	}

	kind := KindPoll
	if nativePollingAvailable() {
		kind = KindEpoll
	}

	d := &Descriptor{
		kind:      kind,
		acceptors: acceptorThreads,
		workers:   ioThreads,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		pending:   make(chan net.Conn),
		tokens:    make(chan struct{}, ioThreads),
		quit:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(d)
	}

	// Fill the worker pool; a token is held per open connection.
	for i := 0; i < ioThreads; i++ {
		d.tokens <- struct{}{}
	}

	return d
}

// Kind reports the selected transport mechanism.
func (d *Descriptor) Kind() Kind { return d.kind }

// Acceptors reports the acceptor group size.
func (d *Descriptor) Acceptors() int { return d.acceptors }

// Workers reports the worker group size.
func (d *Descriptor) Workers() int { return d.workers }

// Listen starts the acceptor group over raw and returns the listener the
// server loop should consume. Accepted connections are capped at the worker
// group size: an acceptor takes a worker token before accepting and the
// token returns when the connection closes.
func (d *Descriptor) Listen(raw net.Listener) net.Listener {
	d.mu.Lock()
	d.raw = raw
	d.started = true
	d.mu.Unlock()

	for i := 0; i < d.acceptors; i++ {
		d.acceptWG.Add(1)
		go d.acceptLoop(raw)
	}

	return &groupListener{d: d}
}

func (d *Descriptor) acceptLoop(raw net.Listener) {
	defer d.acceptWG.Done()

	for {
		select {
		case <-d.quit:
			return
		case <-d.tokens:
		}

		conn, err := raw.Accept()
		if err != nil {
			d.releaseToken()
			select {
			case <-d.quit:
				return
			default:
			}
			if isClosedErr(err) {
				return
			}
			d.logger.Debug("accept failed", slog.Any("error", err))
			continue
		}

		wc := newWorkerConn(conn, d.releaseToken)
		select {
		case d.pending <- wc:
			d.logger.Debug("connection accepted",
				slog.String("conn_id", wc.ID().String()),
				slog.String("remote", wc.RemoteAddr().String()))
		case <-d.quit:
			_ = wc.Close()
			return
		}
	}
}

func (d *Descriptor) releaseToken() {
	d.tokens <- struct{}{}
}

// closeGroups stops the acceptors, closes the raw listener, and discards any
// connections accepted but never consumed. Idempotent.
func (d *Descriptor) closeGroups() {
	d.closeOnce.Do(func() {
		close(d.quit)

		d.mu.Lock()
		raw := d.raw
		d.mu.Unlock()
		if raw != nil {
			_ = raw.Close()
		}

		go func() {
			d.acceptWG.Wait()
			for {
				select {
				case conn := <-d.pending:
					_ = conn.Close()
				default:
					return
				}
			}
		}()
	})
}

// Shutdown quiesces the groups: acceptors are stopped and in-flight worker
// connections are allowed to finish until ctx expires. Safe to call
// concurrently and repeatedly; only the first call performs the release.
func (d *Descriptor) Shutdown(ctx context.Context) error {
	d.shutdownOnce.Do(func() {
		d.closeGroups()

		accepted := make(chan struct{})
		go func() {
			d.acceptWG.Wait()
			close(accepted)
		}()

		select {
		case <-accepted:
		case <-ctx.Done():
			d.shutdownErr = ctx.Err()
			return
		}

		// Every returned token is a worker slot with no live connection.
		for i := 0; i < d.workers; i++ {
			select {
			case <-d.tokens:
			case <-ctx.Done():
				d.shutdownErr = ctx.Err()
				return
			}
		}
	})

	return d.shutdownErr
}
