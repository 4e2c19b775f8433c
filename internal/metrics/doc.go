// Package metrics records generation metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so nothing needs a nil check. The CLI swaps in a
// PrometheusRecorder when a textfile path is configured and writes the
// registry out once the run completes (node_exporter textfile collector format).
package metrics
