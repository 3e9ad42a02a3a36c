package binutil

import "github.com/gobinsize/gobinsize/internal/rangemap"

// FileHandler is the collaborator contract every container format
// implements (spec §6's "Collaborator contract"): ProcessBaseMap populates
// the base VM and file maps from the container's canonical segments or
// sections; ProcessFile then runs once, receiving one sink per selected
// data source, and emits ranges into each. Producers must not touch the
// base map after ProcessBaseMap returns.
type FileHandler interface {
	ProcessBaseMap(sink *rangemap.RangeSink) error
	ProcessFile(sinks []*rangemap.RangeSink) error
}

// OpenFunc probes an InputFile's contents and returns the FileHandler for
// its container format, or a Malformed/Unsupported bloatyerr if none of
// the registered formats recognize it.
type OpenFunc func(input *InputFile) (FileHandler, error)
