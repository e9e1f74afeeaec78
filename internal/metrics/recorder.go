package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcomeLabel is the final status of one pipeline run.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess  BuildOutcomeLabel = "success"
	BuildOutcomeWarning  BuildOutcomeLabel = "warning"
	BuildOutcomeFailed   BuildOutcomeLabel = "failed"
	BuildOutcomeCanceled BuildOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for pipeline metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	ObserveGeneratorInvocation(class string, d time.Duration, success bool)
	AddSourceRoots(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)             {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)                     {}
func (NoopRecorder) IncStageResult(string, ResultLabel)                     {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)                      {}
func (NoopRecorder) ObserveGeneratorInvocation(string, time.Duration, bool) {}
func (NoopRecorder) AddSourceRoots(int)                                     {}
