package config

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// LoadOptions resolves the final Options for one run: CLI flags that were
// set take precedence over whatever -c's YAML file sets, which in turn takes
// precedence over each bound flag's default value (spec §6: "-c <file> ...
// merged into CLI options"). Those flag defaults are zero values; the
// built-in defaults (sections, sort by both, 20 rows per level) are filled
// in by cmd/gobinsize after this returns.
// Binding each key explicitly, rather than viper.BindPFlags(flags) over
// the whole set, keeps the YAML keys (input_files, max_rows_per_level, ...)
// independent of whatever flag names cmd/gobinsize chooses. data_sources is
// deliberately not bound here: the CLI exposes it as a single
// comma-separated string (-d a,b,c) but the YAML/Options shape is a
// []string, and viper's Unmarshal has no implicit string->slice
// conversion; the caller splits -d itself and applies it on top of
// whatever this returns.
func LoadOptions(flags *pflag.FlagSet, configPath string) (Options, error) {
	v := viper.New()

	bind := func(key, flag string) error { return v.BindPFlag(key, flags.Lookup(flag)) }
	for key, flag := range map[string]string{
		"csv":                "csv",
		"svg":                "svg",
		"max_rows_per_level": "max-rows-per-level",
		"sort_by":            "sort",
		"no_truncate":        "no-truncate",
		"list_sources":       "list-sources",
	} {
		if err := bind(key, flag); err != nil {
			return Options{}, fmt.Errorf("binding flag %q: %w", flag, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Options{}, fmt.Errorf("reading %s: %w", configPath, err)
			}
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return Options{}, fmt.Errorf("unmarshal options: %w", err)
	}
	return opts, nil
}
