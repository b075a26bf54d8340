package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"

	"github.com/aquiver-go/aquiver/core/logger"
)

var (
	// ErrInvalidArgument is returned when Register receives a nil kind or handler.
	ErrInvalidArgument = errors.New("handler: invalid argument")
)

// ErrorHandler recovers from an error raised during request dispatch.
// A non-nil return value marks the recovery itself as failed.
type ErrorHandler func(err error) error

// ScopeHook runs before a matched handler is invoked. It is an integration
// seam for the embedding framework to stage request-scoped state; the
// resolver calls it but attaches no meaning to what it does.
type ScopeHook func(rc RequestContext)

// Resolver maps error kinds to recovery handlers.
//
// Lookup is by exact dynamic type only: an error whose type is not registered
// is unhandled even if it wraps, or is assignable to, a registered type. This
// mirrors lookup by runtime type identity and is deliberate — do not expect
// errors.As-style matching.
//
// Safe for concurrent use; registration may happen at any time, including
// while traffic is being served.
type Resolver struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]ErrorHandler
	scope    ScopeHook
	logger   *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for unhandled and failed recoveries.
func WithLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.logger = log
		}
	}
}

// WithScopeHook installs the pre-invocation hook.
func WithScopeHook(hook ScopeHook) ResolverOption {
	return func(r *Resolver) {
		r.scope = hook
	}
}

// NewResolver creates an empty Resolver. Defaults to a no-op logger.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		handlers: make(map[reflect.Type]ErrorHandler),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register binds handler to the exact dynamic type of kind. The value of
// kind is irrelevant; only its type is recorded. The last registration for
// a given type wins.
func (r *Resolver) Register(kind error, handler ErrorHandler) error {
	if kind == nil {
		return fmt.Errorf("%w: error kind is required", ErrInvalidArgument)
	}
	if handler == nil {
		return fmt.Errorf("%w: handler is required", ErrInvalidArgument)
	}

	typ := reflect.TypeOf(kind)

	r.mu.Lock()
	r.handlers[typ] = handler
	r.mu.Unlock()

	return nil
}

// Resolve dispatches thrown to the handler registered for its exact dynamic
// type. With no matching handler the connection behind rc is closed and no
// handler runs. If the matched handler returns an error or panics, that is
// logged and the connection is closed as the safety fallback. Both failure
// paths converge on a closed connection; neither is propagated to the caller.
func (r *Resolver) Resolve(thrown error, rc RequestContext) {
	if thrown == nil || rc == nil {
		return
	}

	typ := reflect.TypeOf(thrown)

	r.mu.RLock()
	h, ok := r.handlers[typ]
	r.mu.RUnlock()

	if !ok {
		r.logger.Debug("no handler registered for error kind, closing connection",
			slog.String("kind", typ.String()),
			logger.ConnID(rc.ConnID()))
		_ = rc.Close()
		return
	}

	if r.scope != nil {
		r.scope(rc)
	}

	if err := invoke(h, thrown); err != nil {
		r.logger.Error("error handler failed, closing connection",
			slog.String("kind", typ.String()),
			logger.ConnID(rc.ConnID()),
			logger.Error(err))
		_ = rc.Close()
	}
}

// invoke runs the handler with a panic guard so a misbehaving recovery
// cannot take down the worker serving the connection.
func invoke(h ErrorHandler, thrown error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("handler panicked: %v", v)
		}
	}()
	return h(thrown)
}
