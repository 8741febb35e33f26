package session

import (
	"time"

	metrics "github.com/rcrowley/go-metrics"
)

// Stage names, used for timers and timing lines.
const (
	StageHash      = "hash"
	StageParse     = "parse"
	StageBuild     = "build"
	StageReconcile = "reconcile"
	StageTotal     = "total"
)

type stageMetrics struct {
	registry  metrics.Registry
	reloads   metrics.Counter
	unchanged metrics.Counter
	failures  metrics.Counter
	cacheHits metrics.Counter
	nodes     metrics.Gauge
}

func newStageMetrics() *stageMetrics {
	r := metrics.NewRegistry()
	return &stageMetrics{
		registry:  r,
		reloads:   metrics.GetOrRegisterCounter("reloads", r),
		unchanged: metrics.GetOrRegisterCounter("reloads.unchanged", r),
		failures:  metrics.GetOrRegisterCounter("reloads.failed", r),
		cacheHits: metrics.GetOrRegisterCounter("cache.hits", r),
		nodes:     metrics.GetOrRegisterGauge("design.nodes", r),
	}
}

func (m *stageMetrics) timer(stage string) metrics.Timer {
	return metrics.GetOrRegisterTimer("stage."+stage, m.registry)
}

// timed runs fn as one stage, feeding both the timer and the recorder.
func (s *Session) timed(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	s.metrics.timer(stage).Update(elapsed)
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.timing.Record(stage, s.path, status, start, elapsed)
	return err
}

// Metrics returns the session's metric registry. Timers are named
// "stage.<name>".
func (s *Session) Metrics() metrics.Registry {
	return s.metrics.registry
}
