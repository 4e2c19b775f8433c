package metrics

import "time"

// UnitResult enumerates what happened to one documentation unit.
type UnitResult string

const (
	UnitEmitted UnitResult = "emitted"
	UnitEmpty   UnitResult = "empty"
	UnitFailed  UnitResult = "failed"
)

// Recorder defines observability hooks for a generation run.
type Recorder interface {
	IncUnitResult(result UnitResult)
	AddDefinitions(kind string, n int)
	ObserveRunDuration(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncUnitResult(UnitResult)         {}
func (NoopRecorder) AddDefinitions(string, int)       {}
func (NoopRecorder) ObserveRunDuration(time.Duration) {}
