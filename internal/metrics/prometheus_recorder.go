package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "modelgen"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	stageResults  *prom.CounterVec
	buildOutcome  *prom.CounterVec
	genDuration   *prom.HistogramVec
	genResults    *prom.CounterVec
	sourceRoots   prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline steps",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total pipeline duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Step result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Pipeline outcomes by final status",
		}, []string{"outcome"})
		pr.genDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "generator_duration_seconds",
			Help:      "Duration of individual generator invocations",
			Buckets:   prom.DefBuckets,
		}, []string{"model_class", "result"})
		pr.genResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "generator_invocations_total",
			Help:      "Generator invocations by success/failure",
		}, []string{"result"})
		pr.sourceRoots = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "source_roots_registered_total",
			Help:      "Compile source roots registered with the host build",
		})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
			pr.genDuration, pr.genResults, pr.sourceRoots)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}
func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}
func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveGeneratorInvocation(class string, d time.Duration, success bool) {
	if p == nil || p.genDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.genDuration.WithLabelValues(class, res).Observe(d.Seconds())
	p.genResults.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) AddSourceRoots(n int) {
	if p == nil || p.sourceRoots == nil {
		return
	}
	p.sourceRoots.Add(float64(n))
}

// WriteTextfile writes everything gathered by g to path in the text
// exposition format, for the node exporter's textfile collector.
func WriteTextfile(path string, g prom.Gatherer) error {
	return prom.WriteToTextfile(path, g)
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
