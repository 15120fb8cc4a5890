package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// InferenceConnected is 1 when the most recent probe reached the backend.
	InferenceConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "chexray",
		Subsystem: "pipeline",
		Name:      "inference_connected",
		Help:      "Whether the most recent probe of the inference backend succeeded (best-effort, not re-verified per analysis).",
	})

	// LastProbeSeconds is a unix timestamp (seconds) of the last probe attempt.
	LastProbeSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "chexray",
		Subsystem: "pipeline",
		Name:      "last_probe_timestamp_seconds",
		Help:      "Unix timestamp (seconds) of the last inference backend probe.",
	})

	// SessionsActive is the current number of live sessions.
	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "chexray",
		Subsystem: "pipeline",
		Name:      "sessions_active",
		Help:      "Current number of live analysis sessions.",
	})

	// AnalysesTotal counts completed analysis attempts by outcome.
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chexray",
		Subsystem: "pipeline",
		Name:      "analyses_total",
		Help:      "Total number of analysis attempts, labeled by result.",
	}, []string{"result"})

	// StageDurationSeconds is per-stage wall time inside the analysis pipeline.
	StageDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chexray",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Wall time per pipeline stage (encode, inference, translate, similarity, audit).",
		// Inference regularly takes 30-60s on a cold GPU, so the buckets run long.
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60, 120},
	}, []string{"stage"})

	// HallucinationScore tracks the distribution of audit scores.
	HallucinationScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "chexray",
		Subsystem: "pipeline",
		Name:      "hallucination_score",
		Help:      "Distribution of parsed hallucination scores (0-100).",
		Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})
)

// Register registers pipeline metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			InferenceConnected,
			LastProbeSeconds,
			SessionsActive,
			AnalysesTotal,
			StageDurationSeconds,
			HallucinationScore,
		)
	})
}

func NowUnixSeconds() float64 {
	return float64(time.Now().Unix())
}
