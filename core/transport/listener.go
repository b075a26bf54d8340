package transport

import (
	"errors"
	"net"
	"sync"

	"github.com/google/uuid"
)

// groupListener is the listener handed to the server loop. Accept delivers
// connections established by the acceptor group; Close releases the groups'
// accept side so a server-driven shutdown tears the transport down too.
type groupListener struct {
	d *Descriptor
}

func (l *groupListener) Accept() (net.Conn, error) {
	select {
	case <-l.d.quit:
		return nil, net.ErrClosed
	default:
	}

	select {
	case conn := <-l.d.pending:
		return conn, nil
	case <-l.d.quit:
		return nil, net.ErrClosed
	}
}

func (l *groupListener) Close() error {
	l.d.closeGroups()
	return nil
}

func (l *groupListener) Addr() net.Addr {
	l.d.mu.Lock()
	defer l.d.mu.Unlock()
	if l.d.raw == nil {
		return nil
	}
	return l.d.raw.Addr()
}

// workerConn ties a connection to its worker slot: the token held since
// accept returns to the pool when the connection closes, however many times
// Close is called.
type workerConn struct {
	net.Conn
	id          uuid.UUID
	release     func()
	releaseOnce sync.Once
}

func newWorkerConn(conn net.Conn, release func()) *workerConn {
	return &workerConn{Conn: conn, id: uuid.New(), release: release}
}

// ID returns the identifier assigned at accept time.
func (c *workerConn) ID() uuid.UUID { return c.id }

func (c *workerConn) Close() error {
	err := c.Conn.Close()
	c.releaseOnce.Do(c.release)
	return err
}

func isClosedErr(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
