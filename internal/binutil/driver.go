package binutil

import (
	"log/slog"

	"github.com/gobinsize/gobinsize/internal/rangemap"
	"github.com/gobinsize/gobinsize/internal/rollup"
)

// DataSource names one requested producer (a built-in or custom source
// from internal/config's registry) and the NameMunger its labels pass
// through before being folded into the rollup.
type DataSource struct {
	Name   string
	Munger *rangemap.NameMunger
}

// ScanAndRollupFile runs the single-binary pipeline (spec §4.7): a base
// DualMap built by handler.ProcessBaseMap with any leftover file bytes
// force-labeled [Unmapped] underneath it, then one translated DualMap per
// requested data source filled by a single handler.ProcessFile call. Each
// container FileHandler is responsible for making its own per-source file
// maps full coverage the same way the base map is (elfsrc's and machosrc's
// ProcessFile fill whatever their producer left unclaimed with
// [ELF Headers]/[Unmapped] before returning), so the file pass of the
// two-pass ComputeRollup below (VM, then file) sees no gaps; VM maps are not
// filled and may have gaps. Label tuples hold one label per requested
// source, in order (spec §6's CSV header contract). Results
// add into target, so scanning several input files in sequence naturally
// sums their sizes into one Rollup.
func ScanAndRollupFile(input *InputFile, handler FileHandler, sources []DataSource, target *rollup.Rollup, l *slog.Logger) error {
	base := rangemap.NewDualMap(l)
	baseSink := rangemap.NewRangeSink(input.Name(), "base", nil, l)
	baseSink.AddOutput(base, rangemap.NewNameMunger())
	if err := handler.ProcessBaseMap(baseSink); err != nil {
		return err
	}
	if err := base.File.AddRange(0, input.Size(), "[Unmapped]"); err != nil {
		return err
	}

	if len(sources) == 0 {
		return nil
	}

	vmMaps := make([]*rangemap.RangeMap, len(sources))
	fileMaps := make([]*rangemap.RangeMap, len(sources))
	var handlerSinks []*rangemap.RangeSink

	for i, ds := range sources {
		dual := rangemap.NewDualMap(l)
		munger := ds.Munger
		if munger == nil {
			munger = rangemap.NewNameMunger()
		}
		sink := rangemap.NewRangeSink(input.Name(), rangemap.DataSourceTag(ds.Name), base, l)
		sink.AddOutput(dual, munger)
		vmMaps[i] = dual.VM
		fileMaps[i] = dual.File

		// inputfiles is the one built-in data source no container format
		// knows about: it just labels the whole input with its own name, so
		// the driver fills it directly instead of routing it through the
		// handler's ProcessFile.
		if ds.Name == "inputfiles" {
			if err := sink.AddFileRange(input.Name(), 0, input.Size()); err != nil {
				return err
			}
			continue
		}
		handlerSinks = append(handlerSinks, sink)
	}

	if len(handlerSinks) > 0 {
		if err := handler.ProcessFile(handlerSinks); err != nil {
			return err
		}
	}

	for _, e := range rangemap.ComputeRollup(vmMaps) {
		if err := target.AddSizes(e.Labels, int64(e.End-e.Start), true); err != nil {
			return err
		}
	}
	for _, e := range rangemap.ComputeRollup(fileMaps) {
		if err := target.AddSizes(e.Labels, int64(e.End-e.Start), false); err != nil {
			return err
		}
	}
	return nil
}

// ScanAndRollup scans every input, summing into one Rollup, and — if any
// baselines are given — scans those into a second Rollup and subtracts it
// from the first, producing a diff-mode tree. The second return is nil
// outside diff mode.
func ScanAndRollup(inputs, baselines []*InputFile, open OpenFunc, sources []DataSource, l *slog.Logger) (current, baseline *rollup.Rollup, err error) {
	current, err = scanAll(inputs, open, sources, l)
	if err != nil {
		return nil, nil, err
	}
	if len(baselines) == 0 {
		return current, nil, nil
	}
	baseline, err = scanAll(baselines, open, sources, l)
	if err != nil {
		return nil, nil, err
	}
	if err := current.Subtract(baseline); err != nil {
		return nil, nil, err
	}
	return current, baseline, nil
}

func scanAll(inputs []*InputFile, open OpenFunc, sources []DataSource, l *slog.Logger) (*rollup.Rollup, error) {
	total := rollup.New()
	for _, input := range inputs {
		handler, err := open(input)
		if err != nil {
			return nil, err
		}
		if err := ScanAndRollupFile(input, handler, sources, total, l); err != nil {
			return nil, err
		}
	}
	return total, nil
}
