//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package alloc

import "golang.org/x/sys/unix"

// mapPages maps n bytes of anonymous, private, zero-filled memory.
func mapPages(n uintptr) ([]byte, error) {
	return unix.Mmap(-1, 0, int(n), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

// unmapPages releases a mapping returned by mapPages.
func unmapPages(region []byte) error {
	return unix.Munmap(region)
}

func pageSize() int {
	return unix.Getpagesize()
}
