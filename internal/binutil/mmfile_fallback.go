//go:build !unix && !windows

package binutil

import "os"

// mmapFile reads the whole file when mmap isn't available on this platform.
func mmapFile(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}
