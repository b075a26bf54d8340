package server

import "time"

// Version is the runtime version reported in the startup banner.
const Version = "0.1.0"

const (
	// DefaultHost is the bind address used when none is configured.
	DefaultHost = "0.0.0.0"

	// DefaultPort is the listener port used when none is configured.
	DefaultPort = 8080

	// DefaultReadTimeout is the default timeout for reading the request.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the default timeout for writing the response.
	DefaultWriteTimeout = 15 * time.Second

	// DefaultIdleTimeout is the default timeout for idle connections.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout bounds the graceful drain of in-flight
	// connections during Stop.
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultMaxHeaderBytes is the default maximum size of request headers.
	DefaultMaxHeaderBytes = 1 << 20 // 1 MB

	// DefaultWebSocketPath is the upgrade path used when websockets are
	// enabled without an explicit path.
	DefaultWebSocketPath = "/ws"
)
