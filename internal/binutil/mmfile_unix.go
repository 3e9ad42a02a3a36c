//go:build unix

package binutil

import (
	"fmt"
	"os"
	"syscall"
)

// mmapFile maps path read-only and returns its contents plus a closer.
// Adapted from the mmap-vs-ReadFile split used for memory-mapped input
// elsewhere in the pack: mmap on platforms that support it, buffered read
// as the portable fallback (mmfile_fallback.go, mmfile_windows.go).
func mmapFile(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close() // safe before return; the mapping keeps pages alive

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := info.Size()
	if size == 0 {
		return []byte{}, func() error { return nil }, nil
	}
	if size > int64(^uint(0)>>1) {
		return nil, nil, fmt.Errorf("file too large to map (%d bytes)", size)
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	closer := func() error {
		if data == nil {
			return nil
		}
		return syscall.Munmap(data)
	}
	return data, closer, nil
}
