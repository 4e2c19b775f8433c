// Package normalization maps loosely written enumeration values (config keys,
// metadata tags) onto their canonical typed constants.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Func folds a raw string into the form used as a lookup key.
type Func func(string) string

// Normalizer provides type-safe string-to-enum normalization.
type Normalizer[T comparable] struct {
	name         string
	fold         Func
	validValues  map[string]T
	defaultValue T
	validKeys    []string
}

// NewNormalizer creates a case-insensitive normalizer. Keys of values are folded
// with LowerKey; unrecognized input yields defaultValue.
func NewNormalizer[T comparable](name string, values map[string]T, defaultValue T) *Normalizer[T] {
	return WithFold(name, values, defaultValue, LowerKey)
}

// WithFold creates a normalizer that folds both keys and input with fold.
func WithFold[T comparable](name string, values map[string]T, defaultValue T, fold Func) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	validKeys := make([]string, 0, len(values))
	for k, v := range values {
		key := fold(k)
		normalized[key] = v
		validKeys = append(validKeys, key)
	}
	sort.Strings(validKeys)

	return &Normalizer[T]{
		name:         name,
		fold:         fold,
		validValues:  normalized,
		defaultValue: defaultValue,
		validKeys:    validKeys,
	}
}

// Lookup returns the canonical value for raw and whether it was recognized.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	v, ok := n.validValues[n.fold(raw)]
	return v, ok
}

// Normalize returns the canonical value for raw, or the default when unrecognized.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.Lookup(raw); ok {
		return v
	}
	return n.defaultValue
}

// NormalizeWithError returns the canonical value for raw, or an error listing the valid keys.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if v, ok := n.Lookup(raw); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %v", n.name, raw, n.validKeys)
}

// ValidKeys returns all valid folded keys in sorted order.
func (n *Normalizer[T]) ValidKeys() []string {
	result := make([]string, len(n.validKeys))
	copy(result, n.validKeys)
	return result
}

// LowerKey trims and lower-cases s.
func LowerKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TagKey trims and upper-cases s and turns '-' and ' ' into '_', so
// "label-list", "Label List" and "LABEL_LIST" share one key.
func TagKey(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}
