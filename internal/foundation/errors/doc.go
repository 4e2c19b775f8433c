// Package errors provides the classified error primitives used across ruledoc.
//
// Every failure that leaves a package boundary is a ClassifiedError carrying a
// category, a severity, a retry strategy and a structured context map, so the
// CLI can pick an exit code and the batch generator can decide whether a
// documentation unit is skipped or the whole run aborts.
//
// Example usage:
//
//	err := errors.ConfigError("source path does not start with strip prefix").
//		WithContext("source", src).
//		WithContext("strip_prefix", prefix).
//		Build()
package errors
