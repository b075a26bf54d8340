package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/aquiver-go/aquiver/core/handler"
	"github.com/aquiver-go/aquiver/core/logger"
)

// WebSocketHandler owns an upgraded connection for its lifetime. A returned
// error is logged; the connection is closed either way once the handler
// returns.
type WebSocketHandler func(ctx context.Context, conn *websocket.Conn) error

type connKey struct{}

// storeConn stashes the accepted net.Conn in the request context so the
// dispatch recovery path can close the exact connection an error surfaced on.
func storeConn(ctx context.Context, c net.Conn) context.Context {
	return context.WithValue(ctx, connKey{}, c)
}

func connFromContext(ctx context.Context) net.Conn {
	conn, _ := ctx.Value(connKey{}).(net.Conn)
	return conn
}

// buildHandler assembles the request entry point: dispatch wrapped with the
// error-resolution recovery, and, when websockets are enabled, the upgrade
// route attached at the configured path.
func (s *Server) buildHandler(dispatch http.Handler, cfg Config) http.Handler {
	entry := s.recoverDispatch(dispatch)

	if !cfg.WebSocket || s.wsHandler == nil {
		return entry
	}

	wsPath := cfg.WebSocketPath
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == wsPath {
			s.serveWebSocket(w, r)
			return
		}
		entry.ServeHTTP(w, r)
	})
}

func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		s.logger.Debug("websocket upgrade rejected", logger.Error(err))
		return
	}
	defer conn.Close()

	if err := s.wsHandler(r.Context(), conn); err != nil {
		s.logger.Debug("websocket handler finished with error", logger.Error(err))
	}
}

// recoverDispatch confines dispatch failures to their own connection: a
// panic escaping the dispatch callback is routed through the error resolver,
// which either recovers it or closes the connection. Nothing propagates to
// the serve loop or to other connections.
func (s *Server) recoverDispatch(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			rc := handler.NewConnContext(connFromContext(r.Context()))
			s.logger.Debug("dispatch raised, resolving",
				logger.ConnID(rc.ConnID()),
				logger.Path(r.URL.Path))
			s.resolver.Resolve(panicToError(v), rc)
		}()
		next.ServeHTTP(w, r)
	})
}

func panicToError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("dispatch panic: %v", v)
}
