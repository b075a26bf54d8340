package transport_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquiver-go/aquiver/core/transport"
)

func TestSelectNormalizesCounts(t *testing.T) {
	t.Parallel()

	d := transport.Select(0, -3)
	t.Cleanup(func() { _ = d.Shutdown(context.Background()) })

	assert.Equal(t, transport.DefaultAcceptorCount, d.Acceptors())
	assert.Equal(t, transport.DefaultWorkerCount(), d.Workers())
}

func TestSelectKeepsExplicitCounts(t *testing.T) {
	t.Parallel()

	d := transport.Select(2, 8)
	t.Cleanup(func() { _ = d.Shutdown(context.Background()) })

	assert.Equal(t, 2, d.Acceptors())
	assert.Equal(t, 8, d.Workers())
}

func TestSelectKindMatchesPlatform(t *testing.T) {
	t.Parallel()

	d := transport.Select(1, 1)
	t.Cleanup(func() { _ = d.Shutdown(context.Background()) })

	if runtime.GOOS == "linux" {
		assert.Equal(t, transport.KindEpoll, d.Kind())
	} else {
		assert.Equal(t, transport.KindPoll, d.Kind())
	}
}

func TestServeHTTPThroughGroups(t *testing.T) {
	t.Parallel()

	d := transport.Select(1, 4)

	raw, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ln := d.Listen(raw)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "OK")
	})}
	go srv.Serve(ln)

	resp, err := http.Get(fmt.Sprintf("http://%s/", ln.Addr()))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))

	shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(shutCtx))
	require.NoError(t, d.Shutdown(shutCtx))
}

func TestWorkerPoolBoundsOpenConnections(t *testing.T) {
	t.Parallel()

	d := transport.Select(1, 1)

	raw, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ln := d.Listen(raw)
	addr := ln.Addr().String()

	dial := func() net.Conn {
		c, err := net.DialTimeout("tcp", addr, time.Second)
		require.NoError(t, err)
		return c
	}

	client1 := dial()
	defer client1.Close()

	first, err := ln.Accept()
	require.NoError(t, err)

	// The single worker token is held by the first connection; a second
	// accept must not complete until it is released.
	client2 := dial()
	defer client2.Close()

	acceptedCh := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			acceptedCh <- c
		}
	}()

	select {
	case <-acceptedCh:
		t.Fatal("second connection accepted while worker pool was exhausted")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, first.Close())

	select {
	case second := <-acceptedCh:
		second.Close()
	case <-time.After(time.Second):
		t.Fatal("second connection never accepted after token release")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(shutCtx))
}

func TestShutdownWithoutListen(t *testing.T) {
	t.Parallel()

	// Bind-failure path: groups were allocated but never attached to a listener.
	d := transport.Select(1, 4)
	require.NoError(t, d.Shutdown(context.Background()))
}

func TestShutdownIdempotentAndConcurrent(t *testing.T) {
	t.Parallel()

	d := transport.Select(1, 2)
	raw, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_ = d.Listen(raw)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			errs[i] = d.Shutdown(ctx)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestShutdownWaitsForInFlightConnection(t *testing.T) {
	t.Parallel()

	d := transport.Select(1, 1)
	raw, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ln := d.Listen(raw)

	client, err := net.DialTimeout("tcp", ln.Addr().String(), time.Second)
	require.NoError(t, err)
	defer client.Close()

	served, err := ln.Accept()
	require.NoError(t, err)

	// The open connection holds the only worker token, so a short deadline expires.
	shortCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Shutdown(shortCtx), context.DeadlineExceeded)

	_ = served.Close()
}

func TestAcceptAfterCloseReturnsErrClosed(t *testing.T) {
	t.Parallel()

	d := transport.Select(1, 1)
	raw, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ln := d.Listen(raw)

	require.NoError(t, ln.Close())

	_, err = ln.Accept()
	assert.ErrorIs(t, err, net.ErrClosed)

	shutCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(shutCtx))
}
