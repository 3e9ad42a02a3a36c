// Package config holds the engine's run-time Options, the CLI flag
// bindings that populate them, -c file merging via viper, and the
// data-source registry (built-ins plus user-defined custom sources).
package config

import (
	"github.com/gobinsize/gobinsize/internal/rangemap"
)

// SortBy selects which totals CreateRollupOutput/CreateDiffModeRollupOutput
// rank rows by.
type SortBy string

const (
	SortByVM   SortBy = "vm"
	SortByFile SortBy = "file"
	SortByBoth SortBy = "both"
)

// CustomSource is a user-defined data source: a name, the built-in source
// it derives from, and an ordered list of regex rewrites applied to that
// source's labels (spec §6's "Custom data sources").
type CustomSource struct {
	Name           string       `mapstructure:"name" yaml:"name"`
	BaseDataSource string       `mapstructure:"base_data_source" yaml:"base_data_source"`
	Rewrites       []RewriteDef `mapstructure:"rewrites" yaml:"rewrites"`
}

// RewriteDef is one (pattern, replacement) pair of a CustomSource.
type RewriteDef struct {
	Pattern     string `mapstructure:"pattern" yaml:"pattern"`
	Replacement string `mapstructure:"replacement" yaml:"replacement"`
}

// Options is the fully-resolved set of run parameters: CLI flags merged
// over whatever a -c file supplied, the same struct either populates.
type Options struct {
	InputFiles    []string `mapstructure:"input_files" yaml:"input_files"`
	BaselineFiles []string `mapstructure:"baseline_files" yaml:"baseline_files"`

	DataSources []string `mapstructure:"data_sources" yaml:"data_sources"`

	CSVOutput       bool   `mapstructure:"csv" yaml:"csv"`
	SVGFile         string `mapstructure:"svg" yaml:"svg"`
	MaxRowsPerLevel int    `mapstructure:"max_rows_per_level" yaml:"max_rows_per_level"`
	SortBy          SortBy `mapstructure:"sort_by" yaml:"sort_by"`
	Verbosity       int    `mapstructure:"verbosity" yaml:"verbosity"`
	NoTruncate      bool   `mapstructure:"no_truncate" yaml:"no_truncate"`
	ListSources     bool   `mapstructure:"list_sources" yaml:"list_sources"`

	CustomSources []CustomSource `mapstructure:"custom_sources" yaml:"custom_sources"`
}

// DefaultMaxRowsPerLevel matches bloaty's own default top-K collapse
// threshold.
const DefaultMaxRowsPerLevel = 20

// Default returns an Options with every field at its spec §6 default:
// sections as the sole data source, sort by both, 20 rows per level.
func Default() Options {
	return Options{
		DataSources:     []string{"sections"},
		MaxRowsPerLevel: DefaultMaxRowsPerLevel,
		SortBy:          SortByBoth,
	}
}

// BuiltinSources lists every built-in data source name and a one-line
// description, in alphabetical order, for --list-sources.
var BuiltinSources = []struct {
	Name        string
	Description string
}{
	{"armembers", "Archive member names"},
	{"compileunits", "DWARF translation units"},
	{"cppsymbols", "Symbols, demangled"},
	{"cppxsyms", "Symbols, demangled, with parameter lists stripped"},
	{"inlines", "DWARF line/file attribution of inlined code"},
	{"inputfiles", "The input file name"},
	{"sections", "Object file sections"},
	{"segments", "Object file segments (a.k.a. program headers)"},
	{"symbols", "Symbol table"},
}

// IsBuiltin reports whether name is one of BuiltinSources.
func IsBuiltin(name string) bool {
	for _, s := range BuiltinSources {
		if s.Name == name {
			return true
		}
	}
	return false
}

// MungerFor builds the NameMunger a custom source's rewrites describe, or
// nil for a plain built-in name with no custom definition.
func MungerFor(name string, customs []CustomSource) (base string, munger *rangemap.NameMunger) {
	for _, c := range customs {
		if c.Name != name {
			continue
		}
		m := rangemap.NewNameMunger()
		for _, r := range c.Rewrites {
			m.AddRegex(r.Pattern, r.Replacement)
		}
		return c.BaseDataSource, m
	}
	return name, nil
}
