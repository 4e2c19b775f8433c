package config

import (
	"git.home.luguber.info/inful/ruledoc/internal/foundation/errors"
	"git.home.luguber.info/inful/ruledoc/internal/ruledoc"
)

// ValidateConfig checks a normalized, defaulted configuration.
func ValidateConfig(c *Config) error {
	if c.Version != CurrentVersion {
		return errors.ValidationError("unsupported configuration version").
			WithContext("version", c.Version).
			WithContext("expected", CurrentVersion).
			Build()
	}
	if c.Format != ruledoc.FormatHTML && c.Format != ruledoc.FormatMarkdown {
		return errors.ValidationError("unsupported output format").
			WithContext("format", string(c.Format)).
			Build()
	}
	if c.Output.Directory == "" {
		return errors.ValidationError("output.directory must not be empty").Build()
	}

	seen := make(map[string]struct{}, len(c.Units))
	for i, u := range c.Units {
		if u.Source == "" {
			return errors.ValidationError("units entry has no source").
				WithContext("index", i).
				Build()
		}
		if _, dup := seen[u.Source]; dup {
			return errors.ValidationError("duplicate units entry").
				WithContext("source", u.Source).
				Build()
		}
		seen[u.Source] = struct{}{}
	}
	return nil
}
