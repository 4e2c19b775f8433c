package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyUnit       = "unit"
	KeySource     = "source"
	KeyOutput     = "output"
	KeyFormat     = "format"
	KeyRule       = "rule"
	KeyKind       = "kind"
	KeyCount      = "count"
	KeyPath       = "path"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Unit(name string) slog.Attr      { return slog.String(KeyUnit, name) }
func Source(path string) slog.Attr    { return slog.String(KeySource, path) }
func Output(path string) slog.Attr    { return slog.String(KeyOutput, path) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func Rule(name string) slog.Attr      { return slog.String(KeyRule, name) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
