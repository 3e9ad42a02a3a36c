// Package binutil drives the scan-and-rollup pipeline: it owns input file
// lifetime (memory-mapped, read-only for the run's duration), dispatches to
// the right container FileHandler, and wires the base map / per-source
// sinks / ComputeRollup sequence spec §4.7 describes.
package binutil

import "github.com/gobinsize/gobinsize/internal/bloatyerr"

// InputFile is a read-only, memory-mapped view of one binary on disk. It is
// held for the lifetime of the driver and released on Close, matching
// spec §5's "memory-mapped inputs are held read-only for the lifetime of
// the driver and released on teardown."
type InputFile struct {
	name  string
	data  []byte
	close func() error
}

// OpenInputFile maps path into memory read-only.
func OpenInputFile(path string) (*InputFile, error) {
	data, closer, err := mmapFile(path)
	if err != nil {
		return nil, bloatyerr.Throw(bloatyerr.NotFound, "opening %s: %v", path, err)
	}
	return &InputFile{name: path, data: data, close: closer}, nil
}

// Name returns the path this InputFile was opened from.
func (f *InputFile) Name() string { return f.name }

// Data returns the file's full contents. Callers must not retain slices
// into it past Close.
func (f *InputFile) Data() []byte { return f.data }

// Size returns the file's length in bytes.
func (f *InputFile) Size() uint64 { return uint64(len(f.data)) }

// Close releases the mapping. Safe to call once; a second call is a no-op.
func (f *InputFile) Close() error {
	if f.close == nil {
		return nil
	}
	err := f.close()
	f.close = nil
	return err
}
