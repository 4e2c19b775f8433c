package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/ruledoc/internal/ruledoc"
)

const defaultOutputDirectory = "./docs-model"

// NormalizationResult captures adjustments made by the normalization pass.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig canonicalizes enumerated fields in place before defaults apply.
// Unknown log settings fall back to their defaults with a warning; an unknown
// format is left for validation to reject.
func NormalizeConfig(c *Config) *NormalizationResult {
	res := &NormalizationResult{}

	if raw := strings.TrimSpace(string(c.Format)); raw != "" {
		if f, err := ruledoc.ParseFormat(raw); err == nil {
			if f != c.Format {
				res.Warnings = append(res.Warnings, warnChanged("format", c.Format, f))
			}
			c.Format = f
		}
	}

	if raw := strings.TrimSpace(string(c.Logging.Level)); raw != "" {
		lvl, ok := logLevels.Lookup(raw)
		if !ok {
			lvl = LogLevelInfo
			res.Warnings = append(res.Warnings, warnUnknown("logging.level", raw, string(lvl)))
		}
		c.Logging.Level = lvl
	}
	if raw := strings.TrimSpace(string(c.Logging.Format)); raw != "" {
		f, ok := logFormats.Lookup(raw)
		if !ok {
			f = LogFormatText
			res.Warnings = append(res.Warnings, warnUnknown("logging.format", raw, string(f)))
		}
		c.Logging.Format = f
	}

	for i := range c.Units {
		c.Units[i].Source = strings.TrimSpace(c.Units[i].Source)
	}
	return res
}

func applyDefaults(c *Config) {
	if c.Format == "" {
		c.Format = ruledoc.FormatMarkdown
	}
	if c.Output.Directory == "" {
		c.Output.Directory = defaultOutputDirectory
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("%s: normalized %q to %q", field, from, to)
}

func warnUnknown(field, value, fallback string) string {
	return fmt.Sprintf("%s: unknown value %q, using %q", field, value, fallback)
}
