package config

import (
	"regexp"

	"github.com/gobinsize/gobinsize/internal/bloatyerr"
)

// Validate checks the invariants spec §6 states for custom data sources
// (the base must itself be a built-in, not another custom source, and every
// rewrite pattern must compile) and for MaxRowsPerLevel (must be at least 1).
func (o *Options) Validate() error {
	if o.MaxRowsPerLevel < 1 {
		return bloatyerr.Throw(bloatyerr.Unsupported, "max_rows_per_level must be >= 1, got %d", o.MaxRowsPerLevel)
	}
	for _, c := range o.CustomSources {
		if !IsBuiltin(c.BaseDataSource) {
			return bloatyerr.Throw(bloatyerr.Unsupported,
				"custom data source %q has base_data_source %q, which must be a built-in source", c.Name, c.BaseDataSource)
		}
		for _, r := range c.Rewrites {
			if _, err := regexp.Compile(r.Pattern); err != nil {
				return bloatyerr.Throw(bloatyerr.Unsupported, "custom data source %q: bad pattern %q: %v", c.Name, r.Pattern, err)
			}
		}
	}
	for _, name := range o.DataSources {
		if _, err := ResolveSource(name, o.CustomSources); err != nil {
			return err
		}
	}
	return nil
}

// ResolveSource reports the built-in name a requested data source resolves
// to, erroring with NotFound if name is neither a built-in nor a defined
// custom source.
func ResolveSource(name string, customs []CustomSource) (string, error) {
	if IsBuiltin(name) {
		return name, nil
	}
	for _, c := range customs {
		if c.Name == name {
			return c.BaseDataSource, nil
		}
	}
	return "", bloatyerr.Throw(bloatyerr.NotFound, "unknown data source %q", name)
}
