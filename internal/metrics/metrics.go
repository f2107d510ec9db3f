// internal/metrics/metrics.go

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "creatorpulse"

var (
	// AnalysesTotal counts engine runs by outcome ("empty", "ok")
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total inference engine runs",
		},
		[]string{"outcome"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of inference engine runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		},
	)

	RecordsNormalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_normalized_total",
			Help:      "Total raw records normalized by the engine",
		},
	)

	AlertsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_emitted_total",
			Help:      "Total growth risk alerts emitted",
		},
		[]string{"type", "severity"},
	)

	// CacheLookups counts recommendation cache lookups by result ("hit", "miss", "error")
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total recommendation cache lookups",
		},
		[]string{"result"},
	)

	// PostsUploaded counts stored posts by platform; see PlatformLabel
	PostsUploaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_uploaded_total",
			Help:      "Total posts persisted through uploads",
		},
		[]string{"platform"},
	)
)

// Platforms kept as their own label value
var knownPlatforms = map[string]bool{
	"youtube":   true,
	"instagram": true,
	"tiktok":    true,
	"facebook":  true,
	"unknown":   true,
}

// PlatformLabel bounds a caller-supplied platform to a fixed label set.
// Anything outside it is reported as "other".
func PlatformLabel(platform string) string {
	if knownPlatforms[platform] {
		return platform
	}
	return "other"
}
