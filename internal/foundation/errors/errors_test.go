package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "ruledoc.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}
		file, exists := err.Context().GetString("file")
		if !exists || file != "ruledoc.yaml" {
			t.Errorf("expected context file=ruledoc.yaml, got %v", file)
		}
		if err.Error() != "[config:fatal] invalid configuration" {
			t.Errorf("unexpected Error() %q", err.Error())
		}
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		err := fmt.Errorf("unit rules/foo.bzl: %w", ConfigError("bad prefix").Build())

		classified, ok := AsClassified(err)
		if !ok {
			t.Fatal("expected wrapped error to be classified")
		}
		if classified.Severity() != SeverityFatal {
			t.Error("expected fatal severity")
		}
		if !HasCategory(err, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if HasCategory(errors.New("plain"), CategoryConfig) {
			t.Error("expected plain errors to carry no category")
		}
	})

	t.Run("Is matches category and message", func(t *testing.T) {
		a := InternalError("unrecognized rule kind").WithContext("kind", "ASPECT").Build()
		b := InternalError("unrecognized rule kind").Build()
		if !errors.Is(fmt.Errorf("wrap: %w", a), b) {
			t.Error("expected errors with same category and message to match")
		}
		if errors.Is(a, ConfigError("unrecognized rule kind").Build()) {
			t.Error("expected different categories not to match")
		}
	})

	t.Run("Retryable", func(t *testing.T) {
		if !IsRetryable(fmt.Errorf("sink: %w", FileSystemError("write output file").Build())) {
			t.Error("expected filesystem errors to be retryable")
		}
		if IsRetryable(ConfigError("bad prefix").Build()) {
			t.Error("expected config errors not to be retryable")
		}
		if IsRetryable(InternalError("bad kind").Build()) {
			t.Error("expected internal errors not to be retryable")
		}
		if IsRetryable(errors.New("plain")) {
			t.Error("expected plain errors not to be retryable")
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Wrapping", func(t *testing.T) {
		originalErr := errors.New("permission denied")
		err := WrapError(originalErr, CategoryInput, "decode metadata").
			WithContext("path", "meta.yaml").
			Build()

		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
		if err.Cause() != originalErr {
			t.Error("expected cause to be the original error")
		}
	})

	t.Run("WithCause", func(t *testing.T) {
		originalErr := errors.New("permission denied")
		err := FileSystemError("write output file").WithCause(originalErr).Build()

		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
		if err.Error() != "[filesystem:error] write output file: permission denied" {
			t.Errorf("unexpected Error() %q", err.Error())
		}
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
			retry    RetryStrategy
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal, RetryUserAction},
			{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal, RetryUserAction},
			{"InputError", InputError("test"), CategoryInput, SeverityError, RetryUserAction},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityError, RetryImmediate},
			{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal, RetryNever},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if err.Severity() != tt.severity {
					t.Errorf("expected severity %s, got %s", tt.severity, err.Severity())
				}
				if err.RetryStrategy() != tt.retry {
					t.Errorf("expected retry strategy %s, got %s", tt.retry, err.RetryStrategy())
				}
			})
		}
	})
}

func TestErrorContext(t *testing.T) {
	ctx := ErrorContext(nil).Set("path", "out/foo.json").Set("count", 2)

	if v, _ := ctx.GetString("path"); v != "out/foo.json" {
		t.Errorf("expected path=out/foo.json, got %s", v)
	}
	if _, ok := ctx.GetString("count"); ok {
		t.Error("expected non-string value to miss GetString")
	}
	if _, ok := ErrorContext(nil).Get("missing"); ok {
		t.Error("expected nil context lookup to miss")
	}
}
