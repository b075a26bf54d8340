//go:build !linux

package transport

// nativePollingAvailable always reports false off Linux; the portable
// fallback transport is used instead.
func nativePollingAvailable() bool {
	return false
}
