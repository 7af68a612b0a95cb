//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly && !windows

package alloc

import "os"

// mapPages falls back to the Go heap where no page mapping API is wired.
func mapPages(n uintptr) ([]byte, error) {
	return make([]byte, n), nil
}

// unmapPages drops the region for the garbage collector.
func unmapPages(region []byte) error {
	return nil
}

func pageSize() int {
	return os.Getpagesize()
}
