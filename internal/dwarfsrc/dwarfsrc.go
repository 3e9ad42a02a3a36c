// Package dwarfsrc implements the compileunits and inlines data sources
// shared by internal/elfsrc and internal/machosrc: both hand it a
// *dwarf.Data pulled from their own container's debug sections and a sink
// to emit VM ranges into.
package dwarfsrc

import (
	"debug/dwarf"
	"io"
	"strconv"

	"github.com/gobinsize/gobinsize/internal/bloatyerr"
	"github.com/gobinsize/gobinsize/internal/rangemap"
)

// CompileUnits emits one VM range per top-level DW_TAG_compile_unit entry,
// labeled by its DW_AT_name, spanning [low_pc, high_pc). Units with no
// address range (pure declarations, or units the compiler stripped after
// LTO) are skipped rather than erroring.
func CompileUnits(d *dwarf.Data, sink *rangemap.RangeSink) error {
	r := d.Reader()
	for {
		entry, err := r.Next()
		if err != nil {
			return bloatyerr.Throw(bloatyerr.Malformed, "reading DWARF compile units: %v", err)
		}
		if entry == nil {
			return nil
		}
		if entry.Tag != dwarf.TagCompileUnit {
			r.SkipChildren()
			continue
		}

		name, _ := entry.Val(dwarf.AttrName).(string)
		if name == "" {
			name = "[None]"
		}
		low, lowOK := entry.Val(dwarf.AttrLowpc).(uint64)
		high, highOK, highIsOffset := highPC(entry)
		if !lowOK || !highOK {
			r.SkipChildren()
			continue
		}
		if highIsOffset {
			high += low
		}
		if high <= low {
			r.SkipChildren()
			continue
		}
		if err := sink.AddVMRange(low, high-low, name); err != nil {
			return err
		}
		r.SkipChildren()
	}
}

// highPC reads DW_AT_high_pc, which DWARF4+ producers may encode either as
// an absolute address (class address) or an offset from low_pc (class
// constant) — the third return distinguishes the two.
func highPC(entry *dwarf.Entry) (val uint64, ok bool, isOffset bool) {
	field := entry.AttrField(dwarf.AttrHighpc)
	if field == nil {
		return 0, false, false
	}
	switch v := field.Val.(type) {
	case uint64:
		return v, true, field.Class == dwarf.ClassConstant
	case int64:
		return uint64(v), true, field.Class == dwarf.ClassConstant
	default:
		return 0, false, false
	}
}

// Inlines emits one VM range per maximal run of consecutive line-table rows
// that share the same source file, labeled by that file's name — bloaty's
// approximation of "what source file is this inlined/generated code
// attributed to" (spec §3's supplemented inlines feature; there is no
// first-class "inlining" fact in DWARF line tables, so this, like bloaty,
// treats file-attribution runs in the line table as the proxy). withLines
// appends ":<line>" to every row's file label, so runs then break on line
// changes as well as file changes, giving line-granular labels.
func Inlines(d *dwarf.Data, sink *rangemap.RangeSink, withLines bool) error {
	r := d.Reader()
	for {
		entry, err := r.Next()
		if err != nil {
			return bloatyerr.Throw(bloatyerr.Malformed, "reading DWARF compile units: %v", err)
		}
		if entry == nil {
			return nil
		}
		if entry.Tag != dwarf.TagCompileUnit {
			r.SkipChildren()
			continue
		}
		if err := inlinesForUnit(d, entry, sink, withLines); err != nil {
			return err
		}
		r.SkipChildren()
	}
}

func inlinesForUnit(d *dwarf.Data, cu *dwarf.Entry, sink *rangemap.RangeSink, withLines bool) error {
	lr, err := d.LineReader(cu)
	if err != nil || lr == nil {
		return nil
	}

	var (
		haveRun  bool
		runStart uint64
		runLabel string
		lastAddr uint64
	)

	flush := func(end uint64) error {
		if !haveRun || end <= runStart {
			haveRun = false
			return nil
		}
		err := sink.AddVMRangeIgnoreDuplicate(runStart, end-runStart, runLabel)
		haveRun = false
		return err
	}

	var entry dwarf.LineEntry
	for {
		err := lr.Next(&entry)
		if err == io.EOF {
			break
		}
		if err != nil {
			return bloatyerr.Throw(bloatyerr.Malformed, "reading DWARF line table: %v", err)
		}

		label := "[None]"
		if entry.File != nil {
			label = entry.File.Name
			if withLines {
				label = label + ":" + strconv.Itoa(entry.Line)
			}
		}

		if haveRun && label == runLabel {
			lastAddr = entry.Address
			continue
		}

		if err := flush(entry.Address); err != nil {
			return err
		}
		runStart, runLabel, lastAddr = entry.Address, label, entry.Address
		haveRun = true
	}
	return flush(lastAddr + 1)
}
