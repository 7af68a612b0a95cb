//go:build windows

package alloc

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// mapPages reserves and commits n bytes of zero-filled pages.
func mapPages(n uintptr) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, n, windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n), nil
}

// unmapPages releases a region returned by mapPages.
func unmapPages(region []byte) error {
	return windows.VirtualFree(uintptr(unsafe.Pointer(unsafe.SliceData(region))), 0, windows.MEM_RELEASE)
}

func pageSize() int {
	return os.Getpagesize()
}
