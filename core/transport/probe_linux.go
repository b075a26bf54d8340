//go:build linux

package transport

import "golang.org/x/sys/unix"

// nativePollingAvailable probes for a working epoll instance.
func nativePollingAvailable() bool {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return false
	}
	_ = unix.Close(fd)
	return true
}
