package server

import "context"

// Watcher is the hot-reload collaborator boundary. When the watcher flag is
// set, Start launches Watch on its own goroutine with the configured path;
// the server neither interprets watch events nor fails startup if Watch
// returns an error — watcher failures are logged and otherwise ignored.
type Watcher interface {
	Watch(ctx context.Context, path string) error
}

// WatcherFunc adapts a plain function to the Watcher interface.
type WatcherFunc func(ctx context.Context, path string) error

func (f WatcherFunc) Watch(ctx context.Context, path string) error {
	return f(ctx, path)
}
