package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg         *prom.Registry
	units       *prom.CounterVec
	definitions *prom.CounterVec
	runDuration prom.Histogram
}

// NewPrometheusRecorder constructs the metrics and registers them on reg
// (a fresh registry when reg is nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		units: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "ruledoc",
			Name:      "units_total",
			Help:      "Documentation units processed, by result",
		}, []string{"result"}),
		definitions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "ruledoc",
			Name:      "definitions_total",
			Help:      "Definitions emitted, by kind",
		}, []string{"kind"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "ruledoc",
			Name:      "run_duration_seconds",
			Help:      "Duration of a generation run",
			Buckets:   prom.DefBuckets,
		}),
	}
	reg.MustRegister(pr.units, pr.definitions, pr.runDuration)
	return pr
}

func (p *PrometheusRecorder) IncUnitResult(result UnitResult) {
	if p == nil {
		return
	}
	p.units.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) AddDefinitions(kind string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.definitions.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

// WriteTextfile writes the registry in Prometheus text exposition format to path.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}
