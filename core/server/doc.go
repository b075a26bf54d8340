// Package server provides the embeddable HTTP/WebSocket server runtime: a
// configurable listener with optional TLS, platform-aware transport
// selection, and a controlled start/await/stop lifecycle.
//
// # Lifecycle
//
// A Server is single-use and moves through Created, Starting, Running,
// Stopping and Stopped. Start sequences the bootstrap steps in a fixed
// order — banner, TLS, dispatch entry, transport selection, bind, watcher,
// shutdown hook — and either reaches Running or rolls everything back to
// Stopped and returns a single terminal error. A failed instance is safe to
// discard and replace with a fresh one using corrected configuration.
//
//	cfg := server.DefaultConfig()
//	srv, err := server.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := srv.Start(ctx, dispatch); err != nil {
//		log.Fatal(err)
//	}
//	srv.Join() // block until Stop, an OS signal, or a serve failure
//
// Stop is idempotent and safe to invoke concurrently from any goroutine or
// from the OS-signal hook; exactly one caller performs the release work.
// Await blocks until Running has been reached at least once, and Join blocks
// until the close signal fires.
//
// # TLS
//
// With TLS enabled and cert/key paths configured, the operator material is
// loaded and validated. With either path absent, a generated self-signed
// certificate keeps the server bootable out of the box. TLS failures are
// fatal to Start and happen before bind.
//
// # Transport
//
// The transport layer probes for native polling support (epoll on Linux)
// and silently falls back to the portable mechanism elsewhere; the selected
// kind appears in the startup log. Acceptor and IO thread counts come from
// configuration, with defaults applied to non-positive values.
//
// # Error Resolution
//
// Errors escaping the dispatch callback are confined to their connection:
// the configured handler.Resolver either recovers them or the connection is
// closed. See the handler package.
//
// # Configuration
//
// Config fields carry env tags, so the whole struct loads with core/config:
//
//	var cfg server.Config
//	config.MustLoad(&cfg)
//	srv, err := server.New(cfg, server.WithLogger(log))
package server
