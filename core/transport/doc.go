// Package transport selects the IO multiplexing mechanism for a listener and
// owns the acceptor/worker groups that service it.
//
// Select probes the host platform: on Linux with a working epoll facility it
// reports the native polling transport, everywhere else the portable
// readiness-based fallback. The degradation is silent — callers observe the
// outcome via Descriptor.Kind and log it themselves.
//
//	desc := transport.Select(cfg.AcceptThreadCount, cfg.IOThreadCount)
//	raw, err := net.Listen("tcp", addr)
//	if err != nil {
//		desc.Shutdown(ctx) // release groups, nothing was bound
//		return err
//	}
//	ln := desc.Listen(raw)
//	go httpSrv.Serve(ln)
//
// The concurrency model is accept/hand-off: acceptor goroutines only call
// Accept and pass each established connection to a worker slot. The worker
// pool is a token semaphore sized by the IO thread count, so the number of
// open connections never exceeds the worker group size; a connection holds
// its token until closed.
//
// Shutdown stops the acceptors and waits for in-flight connections to drain
// within the context deadline. It is idempotent and safe for concurrent use.
package transport
