package metrics

import (
	"sync"
	"time"
)

// testRecorder is a Recorder used to verify that callers emit metrics.
type testRecorder struct {
	mu             sync.Mutex
	stageDurations map[string]int
	stageResults   map[string]map[ResultLabel]int
	buildDurations int
	buildOutcomes  map[BuildOutcomeLabel]int
	generator      map[string]int
	roots          int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stageDurations: map[string]int{},
		stageResults:   map[string]map[ResultLabel]int{},
		buildOutcomes:  map[BuildOutcomeLabel]int{},
		generator:      map[string]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stageDurations[stage]++
}
func (t *testRecorder) ObserveBuildDuration(_ time.Duration) { t.buildDurations++ }
func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}
func (t *testRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) { t.buildOutcomes[outcome]++ }
func (t *testRecorder) ObserveGeneratorInvocation(class string, _ time.Duration, _ bool) {
	t.generator[class]++
}
func (t *testRecorder) AddSourceRoots(n int) { t.roots += n }

var _ Recorder = (*testRecorder)(nil)
var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)
