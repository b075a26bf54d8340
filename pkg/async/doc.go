// Package async provides a minimal Future primitive for running an operation
// on a background goroutine and waiting for its completion.
//
// It exists so embedding applications can boot a server off the calling
// goroutine and later block on startup completion:
//
//	srv, _ := server.New(cfg)
//	boot := async.Exec(ctx, func(ctx context.Context) error {
//		return srv.Start(ctx, handler)
//	})
//
//	// ... other initialization ...
//
//	if err := boot.Await(); err != nil {
//		log.Fatal(err)
//	}
//
// AwaitTimeout bounds the wait:
//
//	if err := boot.AwaitTimeout(5 * time.Second); errors.Is(err, async.ErrTimeout) {
//		// still booting
//	}
//
// Done exposes the completion channel for select loops, and IsComplete polls
// without blocking.
package async
