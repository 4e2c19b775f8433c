// Package manifest records what a generation run consumed and produced.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"
)

// Run status values.
const (
	StatusSuccess = "success"
	StatusPartial = "partial" // at least one unit was skipped because it failed
	StatusFailed  = "failed"
)

// RunManifest represents a complete record of a run's inputs and outputs.
type RunManifest struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version"`
	Inputs    Inputs        `json:"inputs"`
	Units     []UnitOutput  `json:"units"`
	Skipped   []SkippedUnit `json:"skipped,omitempty"`
	Status    string        `json:"status"`
	Duration  int64         `json:"duration_ms"`
}

// Inputs captures the content hashes of the run's inputs.
type Inputs struct {
	MetadataHash string `json:"metadata_hash"`
	ConfigHash   string `json:"config_hash,omitempty"`
	Format       string `json:"format"`
	StripPrefix  string `json:"strip_prefix,omitempty"`
}

// UnitOutput is one emitted documentation unit.
type UnitOutput struct {
	Source      string `json:"source"`
	OutputFile  string `json:"output_file"`
	Definitions int    `json:"definitions"`
	Hash        string `json:"hash"` // sha256 of the emitted view model
}

// SkippedUnit is a unit that was not emitted, with the reason.
type SkippedUnit struct {
	Source   string `json:"source"`
	Reason   string `json:"reason"`
	Category string `json:"category,omitempty"`
}

// HashBytes returns the hex sha256 of data.
func HashBytes(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// ToJSON serializes the manifest to JSON.
func (m *RunManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*RunManifest, error) {
	var m RunManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a deterministic hash of the manifest's inputs and outputs,
// ignoring run identity and timing. Two runs over identical inputs hash equal.
func (m *RunManifest) Hash() (string, error) {
	hashInput := struct {
		Inputs  Inputs        `json:"inputs"`
		Units   []UnitOutput  `json:"units"`
		Skipped []SkippedUnit `json:"skipped"`
	}{
		Inputs:  m.Inputs,
		Units:   m.Units,
		Skipped: m.Skipped,
	}

	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	return HashBytes(data), nil
}
