package async_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquiver-go/aquiver/pkg/async"
)

func TestExecSuccess(t *testing.T) {
	t.Parallel()

	f := async.Exec(context.Background(), func(ctx context.Context) error {
		return nil
	})

	require.NoError(t, f.Await())
	assert.True(t, f.IsComplete())
}

func TestExecReturnsError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("boot failed")
	f := async.Exec(context.Background(), func(ctx context.Context) error {
		return wantErr
	})

	assert.ErrorIs(t, f.Await(), wantErr)
}

func TestExecPreCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	invoked := false
	f := async.Exec(ctx, func(ctx context.Context) error {
		invoked = true
		return nil
	})

	assert.ErrorIs(t, f.Await(), context.Canceled)
	assert.False(t, invoked)
}

func TestAwaitTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	f := async.Exec(context.Background(), func(ctx context.Context) error {
		<-release
		return nil
	})

	assert.ErrorIs(t, f.AwaitTimeout(20*time.Millisecond), async.ErrTimeout)
	assert.False(t, f.IsComplete())

	close(release)
	require.NoError(t, f.AwaitTimeout(time.Second))
}

func TestDoneSelectable(t *testing.T) {
	t.Parallel()

	f := async.Exec(context.Background(), func(ctx context.Context) error {
		return nil
	})

	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatal("future never completed")
	}
}

func TestAwaitConcurrentWaiters(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("shared result")
	release := make(chan struct{})
	f := async.Exec(context.Background(), func(ctx context.Context) error {
		<-release
		return wantErr
	})

	const waiters = 8
	var wg sync.WaitGroup
	errs := make([]error, waiters)
	for i := 0; i < waiters; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f.Await()
		}()
	}

	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, wantErr)
	}
}
