package async

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTimeout is returned when AwaitTimeout expires before the function completes.
	ErrTimeout = errors.New("async: await timed out")
)

// Future represents an in-flight asynchronous operation that completes with an error.
// The zero value is not usable; obtain a Future from Exec.
type Future struct {
	err  error
	done chan struct{}
}

// Exec runs fn on a new goroutine and returns a Future for its completion.
// If ctx is already canceled, fn is never invoked and the Future completes
// immediately with ctx.Err().
func Exec(ctx context.Context, fn func(context.Context) error) *Future {
	f := &Future{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		f.err = fn(ctx)
	}()

	return f
}

// Await blocks until the operation completes and returns its error.
// Safe to call from multiple goroutines; all callers observe the same result.
func (f *Future) Await() error {
	<-f.done
	return f.err
}

// AwaitTimeout blocks until the operation completes or the timeout elapses.
// Returns ErrTimeout if the deadline passes first; the operation keeps running.
func (f *Future) AwaitTimeout(timeout time.Duration) error {
	select {
	case <-f.done:
		return f.err
	case <-time.After(timeout):
		return ErrTimeout
	}
}

// Done returns a channel closed when the operation completes,
// for use in select statements alongside other signals.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// IsComplete reports whether the operation has finished without blocking.
func (f *Future) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
