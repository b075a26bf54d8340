package logger

import (
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Attribute helpers use the empty Attr pattern for nil safety, so call sites
// can write log.Info("msg", logger.Error(err)) without explicit nil checks.

// Error creates an attribute for a single error under the key "error".
// Returns an empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Addr creates an attribute for network addresses.
func Addr(addr string) slog.Attr {
	return slog.String("addr", addr)
}

// Port creates an attribute for listener ports.
func Port(port int) slog.Attr {
	return slog.Int("port", port)
}

// Transport creates an attribute naming the selected IO transport.
func Transport(kind string) slog.Attr {
	return slog.String("transport", kind)
}

// State creates an attribute for lifecycle state names.
func State(state string) slog.Attr {
	return slog.String("state", state)
}

// ConnID creates an attribute for per-connection identifiers.
// Returns an empty Attr for the nil UUID.
func ConnID(id uuid.UUID) slog.Attr {
	if id == uuid.Nil {
		return slog.Attr{}
	}
	return slog.String("conn_id", id.String())
}

// Path creates an attribute for filesystem or URL paths.
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed calculates and logs the duration since the start time.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Stack captures and returns the current stack trace.
func Stack() slog.Attr {
	const size = 64 << 10
	buf := make([]byte, size)
	buf = buf[:runtime.Stack(buf, false)]
	return slog.String("stack", string(buf))
}

// Caller returns information about the calling function.
func Caller() slog.Attr {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		return slog.Attr{}
	}
	return slog.String("caller", file+":"+strconv.Itoa(line))
}
