//go:build windows

package binutil

import "os"

// mmapFile on Windows just reads the file; the engine never writes through
// this mapping, so a copy is observationally identical and far simpler than
// wiring up MapViewOfFile.
func mmapFile(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}
