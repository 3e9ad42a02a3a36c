package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gobinsize/gobinsize/internal/binutil"
	"github.com/gobinsize/gobinsize/internal/bloatyerr"
	"github.com/gobinsize/gobinsize/internal/config"
	"github.com/gobinsize/gobinsize/internal/elfsrc"
	"github.com/gobinsize/gobinsize/internal/machosrc"
	"github.com/gobinsize/gobinsize/internal/render"
	"github.com/gobinsize/gobinsize/internal/rollup"
)

// levelTrace sits one notch below slog.LevelDebug, for -vvv's "trace"
// verbosity (spec §5/§7: three levels of -v, stdlib slog only defines two
// below Info).
const levelTrace = slog.LevelDebug - 4

func newRootCommand() *cobra.Command {
	var (
		csvOut          bool
		configPath      string
		dataSourcesCSV  string
		maxRowsPerLevel int
		sortBy          string
		verbosity       int
		noTruncate      bool
		listSources     bool
		svgFile         string
		svgWidth        int
	)

	cmd := &cobra.Command{
		Use:   "gobinsize [flags] file... [-- baseline...]",
		Short: "Break down a binary's VM and file size by section, symbol, or another data source",
		Args:  cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listSources {
				render.WriteSourcesTable(cmd.OutOrStdout(), sourceDescriptions())
				return nil
			}

			opts, err := config.LoadOptions(cmd.Flags(), configPath)
			if err != nil {
				return err
			}

			inputs, baselines := splitBaselineArgs(args, cmd.ArgsLenAtDash())
			if len(inputs) == 0 {
				inputs = opts.InputFiles
			}
			if len(baselines) == 0 {
				baselines = opts.BaselineFiles
			}
			if len(inputs) == 0 {
				return bloatyerr.Throw(bloatyerr.NotFound, "no input files given")
			}
			opts.InputFiles, opts.BaselineFiles = inputs, baselines

			if dataSourcesCSV != "" {
				opts.DataSources = splitCSV(dataSourcesCSV)
			}
			if len(opts.DataSources) == 0 {
				opts.DataSources = []string{"sections"}
			}
			opts.CSVOutput = opts.CSVOutput || csvOut
			if maxRowsPerLevel > 0 {
				opts.MaxRowsPerLevel = maxRowsPerLevel
			}
			if opts.MaxRowsPerLevel == 0 {
				opts.MaxRowsPerLevel = config.DefaultMaxRowsPerLevel
			}
			if sortBy != "" {
				opts.SortBy = config.SortBy(sortBy)
			}
			if opts.SortBy == "" {
				opts.SortBy = config.SortByBoth
			}
			opts.NoTruncate = opts.NoTruncate || noTruncate
			if svgFile != "" {
				opts.SVGFile = svgFile
			}
			opts.Verbosity = verbosity

			if err := opts.Validate(); err != nil {
				return err
			}

			return run(cmd, opts, svgWidth)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&csvOut, "csv", false, "emit CSV instead of the tabular pretty-print")
	flags.StringVarP(&configPath, "config", "c", "", "load options from a YAML file, merged under CLI flags")
	flags.StringVarP(&dataSourcesCSV, "data-sources", "d", "", "comma-separated data-source names, selected in order")
	flags.IntVarP(&maxRowsPerLevel, "max-rows-per-level", "n", 0, "rows kept per level before collapsing into [Other] (default 20)")
	flags.StringVarP(&sortBy, "sort", "s", "", "sort key: vm|file|both (default both)")
	flags.CountVarP(&verbosity, "verbose", "v", "increase verbosity (-v, -vv, -vvv)")
	flags.BoolVarP(&noTruncate, "no-truncate", "w", false, "disable label truncation")
	flags.BoolVar(&listSources, "list-sources", false, "print available data-source names and descriptions, then exit")
	flags.StringVar(&svgFile, "svg", "", "additionally render the top-level rollup as an SVG icicle chart to this file")
	flags.IntVar(&svgWidth, "svg-width", 1200, "pixel width of the --svg output")

	return cmd
}

// splitBaselineArgs divides positional args at cobra's "--" marker
// (ArgsLenAtDash returns -1 if none was given) into current inputs and
// baseline files (spec §6: "-- ... positional args after it are baseline
// files").
func splitBaselineArgs(args []string, dashAt int) (inputs, baselines []string) {
	if dashAt < 0 {
		return args, nil
	}
	return args[:dashAt], args[dashAt:]
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func sourceDescriptions() []render.SourceDescription {
	out := make([]render.SourceDescription, len(config.BuiltinSources))
	for i, s := range config.BuiltinSources {
		out[i] = render.SourceDescription{Name: s.Name, Description: s.Description}
	}
	return out
}

func verbosityLevel(v int) slog.Level {
	switch {
	case v >= 3:
		return levelTrace
	case v == 2:
		return slog.LevelDebug
	case v == 1:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

func run(cmd *cobra.Command, opts config.Options, svgWidth int) error {
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: verbosityLevel(opts.Verbosity)})
	logger := slog.New(handler)

	open := func(input *binutil.InputFile) (binutil.FileHandler, error) {
		h, err := elfsrc.Open(input)
		if err == nil {
			return h, nil
		}
		if !bloatyerr.Is(err, bloatyerr.Unsupported) {
			return nil, err
		}
		return machosrc.Open(input)
	}

	sources := make([]binutil.DataSource, len(opts.DataSources))
	for i, name := range opts.DataSources {
		base, munger := config.MungerFor(name, opts.CustomSources)
		sources[i] = binutil.DataSource{Name: base, Munger: munger}
	}

	inputs, err := openAll(opts.InputFiles)
	if err != nil {
		return err
	}
	defer closeAll(inputs)

	baselines, err := openAll(opts.BaselineFiles)
	if err != nil {
		return err
	}
	defer closeAll(baselines)

	cur, base, err := binutil.ScanAndRollup(inputs, baselines, open, sources, logger)
	if err != nil {
		return err
	}

	rollupOpts := rollup.Options{SortBy: sortByOf(opts.SortBy), MaxRowsPerLevel: opts.MaxRowsPerLevel}
	var root *rollup.Row
	if base != nil {
		root, err = rollup.CreateDiffModeRollupOutput(cur, base, rollupOpts)
	} else {
		root, err = rollup.CreateRollupOutput(cur, rollupOpts)
	}
	if err != nil {
		return err
	}

	if opts.SVGFile != "" {
		if err := writeSVG(opts.SVGFile, root, svgWidth); err != nil {
			return err
		}
	}

	if opts.CSVOutput {
		return render.WriteCSV(cmd.OutOrStdout(), root, opts.DataSources)
	}
	return render.PrettyPrint(cmd.OutOrStdout(), root, render.PrettyPrintOptions{
		NoTruncate: opts.NoTruncate,
		Color:      isTerminal(cmd.OutOrStdout()),
	})
}

func sortByOf(s config.SortBy) rollup.SortBy {
	switch s {
	case config.SortByVM:
		return rollup.SortByVM
	case config.SortByFile:
		return rollup.SortByFile
	default:
		return rollup.SortByBoth
	}
}

func openAll(paths []string) ([]*binutil.InputFile, error) {
	var files []*binutil.InputFile
	for _, p := range paths {
		f, err := binutil.OpenInputFile(p)
		if err != nil {
			closeAll(files)
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func closeAll(files []*binutil.InputFile) {
	for _, f := range files {
		_ = f.Close()
	}
}

func writeSVG(path string, root *rollup.Row, width int) error {
	f, err := os.Create(path)
	if err != nil {
		return bloatyerr.Throw(bloatyerr.NotFound, "creating %s: %v", path, err)
	}
	defer f.Close()
	render.RenderSVG(f, root, width, maxDepthOf(root))
	return nil
}

func maxDepthOf(row *rollup.Row) int {
	depth := 1
	for _, bucket := range [][]*rollup.Row{row.SortedChildren, row.Shrinking, row.Mixed} {
		for _, c := range bucket {
			if d := 1 + maxDepthOf(c); d > depth {
				depth = d
			}
		}
	}
	return depth
}

func isTerminal(w interface{ Write([]byte) (int, error) }) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
