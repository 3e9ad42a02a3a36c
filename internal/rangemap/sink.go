package rangemap

import (
	"context"
	"log/slog"

	"github.com/gobinsize/gobinsize/internal/bloatyerr"
)

// DataSourceTag identifies which producer is pushing ranges through a sink.
// It appears in verbose logging, and container FileHandlers dispatch on it
// to pick the producer for each sink.
type DataSourceTag string

type output struct {
	dual   *DualMap
	munger *NameMunger
}

// RangeSink is the write-facing facade producers use to assign labels to
// ranges of VM address space and/or file offsets. It multiplexes incoming
// ranges to one or more DualMap outputs, munging names per-output, and
// uses a fixed "base" DualMap as a translator to carry labels across the
// VM<->file boundary.
type RangeSink struct {
	inputName  string
	dataSource DataSourceTag
	translator *DualMap
	outputs    []output
	logger     *slog.Logger
}

// NewRangeSink constructs a sink for one producer over one input file.
// translator may be nil only when populating the base map itself (the
// base map has nothing to translate against).
func NewRangeSink(inputName string, dataSource DataSourceTag, translator *DualMap, l *slog.Logger) *RangeSink {
	if l == nil {
		l = slog.Default()
	}
	return &RangeSink{inputName: inputName, dataSource: dataSource, translator: translator, logger: l}
}

// AddOutput registers a DualMap that should receive this sink's ranges,
// with names passed through munger first.
func (s *RangeSink) AddOutput(m *DualMap, munger *NameMunger) {
	s.outputs = append(s.outputs, output{dual: m, munger: munger})
}

// DataSource reports which producer owns this sink.
func (s *RangeSink) DataSource() DataSourceTag { return s.dataSource }

// InputName reports the input file name this sink's ranges belong to.
func (s *RangeSink) InputName() string { return s.inputName }

// LevelTrace is one notch below slog.LevelDebug, reserved for the -vvv
// per-call range tracing bloaty's RangeSink emits at verbose_level > 2.
const LevelTrace = slog.LevelDebug - 4

func (s *RangeSink) trace(msg string, args ...any) {
	if s.logger.Enabled(context.Background(), LevelTrace) {
		s.logger.Log(context.Background(), LevelTrace, msg, args...)
	}
}

// AddFileRange records a range that exists only in file space (e.g. debug
// sections). If this sink has a translator, the range is fanned out into
// each output's VM map wherever the translator's file map has a
// translation.
func (s *RangeSink) AddFileRange(name string, fileOff, fileSize uint64) error {
	s.trace("AddFileRange", slog.String("source", string(s.dataSource)), slog.String("name", name),
		slog.Uint64("file_off", fileOff), slog.Uint64("file_size", fileSize))
	for _, out := range s.outputs {
		label := out.munger.Munge(name)
		if s.translator != nil {
			if err := out.dual.File.AddRangeWithTranslation(fileOff, fileSize, label, s.translator.File, out.dual.VM); err != nil {
				return err
			}
		} else {
			if err := out.dual.File.AddRange(fileOff, fileSize, label); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddVMRange records a range that exists only in VM space. Requires a
// translator (the base map); it is a programming error to call this while
// populating the base map itself.
func (s *RangeSink) AddVMRange(vmAddr, vmSize uint64, name string) error {
	return s.addVMRange(vmAddr, vmSize, name)
}

// AddVMRangeAllowAlias behaves exactly like AddVMRange. It exists as a
// semantic marker: the same address may already carry a different label
// (e.g. weak symbol aliases), and that must not be treated as a warning.
// Accounting is identical either way because RangeMap's first-writer-wins
// policy already handles the overlap silently; callers use this name to
// document intent at the call site.
func (s *RangeSink) AddVMRangeAllowAlias(vmAddr, vmSize uint64, name string) error {
	return s.addVMRange(vmAddr, vmSize, name)
}

// AddVMRangeIgnoreDuplicate behaves exactly like AddVMRange. Semantic
// marker for cases like DWARF emitting the same source file twice.
func (s *RangeSink) AddVMRangeIgnoreDuplicate(vmAddr, vmSize uint64, name string) error {
	return s.addVMRange(vmAddr, vmSize, name)
}

func (s *RangeSink) addVMRange(vmAddr, vmSize uint64, name string) error {
	if s.translator == nil {
		return bloatyerr.Throw(bloatyerr.Unsupported, "AddVMRange requires a translator; base map producers must use AddFileRange/AddRange")
	}
	for _, out := range s.outputs {
		label := out.munger.Munge(name)
		if err := out.dual.VM.AddRangeWithTranslation(vmAddr, vmSize, label, s.translator.VM, out.dual.File); err != nil {
			return err
		}
	}
	return nil
}

// AddRange is the combined form: for the first min(vmSize, fileSize) bytes,
// adds a dual range on both sides; the remainder is added in whichever
// space is larger with no translation (BSS has vm > file; debug sections
// have file > vm = 0).
func (s *RangeSink) AddRange(name string, vmAddr, vmSize, fileOff, fileSize uint64) error {
	dualSize := vmSize
	if fileSize < dualSize {
		dualSize = fileSize
	}

	for _, out := range s.outputs {
		label := out.munger.Munge(name)

		if dualSize > 0 {
			if err := out.dual.VM.AddDualRange(vmAddr, dualSize, fileOff, label); err != nil {
				return err
			}
			if err := out.dual.File.AddDualRange(fileOff, dualSize, vmAddr, label); err != nil {
				return err
			}
		}

		if vmSize > dualSize {
			if err := out.dual.VM.AddRange(vmAddr+dualSize, vmSize-dualSize, label); err != nil {
				return err
			}
		}
		if fileSize > dualSize {
			if err := out.dual.File.AddRange(fileOff+dualSize, fileSize-dualSize, label); err != nil {
				return err
			}
		}
	}
	return nil
}
