package handler

import (
	"io"
	"sync"

	"github.com/google/uuid"
)

// RequestContext is the per-connection view the error resolution path
// operates on. The dispatch pipeline supplies the implementation; the
// resolver only ever identifies the connection and closes it.
type RequestContext interface {
	// ConnID returns the identifier assigned to the underlying connection.
	ConnID() uuid.UUID
	// Close tears down the underlying connection. Implementations must be
	// safe for repeated calls.
	Close() error
}

// ConnContext is the default RequestContext backed by a closable connection.
type ConnContext struct {
	id        uuid.UUID
	conn      io.Closer
	closeOnce sync.Once
	closeErr  error
}

// NewConnContext wraps conn with a fresh connection identifier.
func NewConnContext(conn io.Closer) *ConnContext {
	return &ConnContext{id: uuid.New(), conn: conn}
}

// ConnID returns the connection identifier.
func (c *ConnContext) ConnID() uuid.UUID {
	return c.id
}

// Close closes the underlying connection exactly once.
// Subsequent calls return the first close error.
func (c *ConnContext) Close() error {
	c.closeOnce.Do(func() {
		if c.conn != nil {
			c.closeErr = c.conn.Close()
		}
	})
	return c.closeErr
}
