// internal/service/insight/engine.go

package insight

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	domain "creatorpulse/internal/domain/insight"
	"creatorpulse/internal/logging"
	"creatorpulse/internal/metrics"
)

// EngineName identifies this implementation in report metadata
const EngineName = "go"

var engineNotes = []string{
	"v1 heuristics/statistics only; no heavy forecasting",
	"Posting schedule prefers engagement rate, falls back to views",
	"Platform focus falls back to list position when no post is dated",
}

// EngineConfig contains configuration for the inference engine
type EngineConfig struct {
	// Location used for weekday/hour and month bucketing, and for
	// timestamps without a zone. Defaults to UTC.
	Location *time.Location

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Logger receives debug notes about degraded analyses
	Logger *logrus.Entry
}

// Engine implements the insight.Analyzer interface. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	loc    *time.Location
	now    func() time.Time
	logger *logrus.Entry
}

// NewEngine creates a new inference engine
func NewEngine(config EngineConfig) *Engine {
	e := &Engine{
		loc:    config.Location,
		now:    config.Now,
		logger: config.Logger,
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = logging.Discard()
	}
	return e
}

// Location returns the engine's bucketing location
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Analyze runs every analysis over the full multi-platform input
func (e *Engine) Analyze(platforms map[string][]domain.RawRecord) domain.Report {
	started := time.Now()
	defer func() {
		metrics.AnalysisDuration.Observe(time.Since(started).Seconds())
	}()

	names, byPlatform := e.normalizeAll(platforms)

	total := 0
	for _, records := range byPlatform {
		total += len(records)
	}
	metrics.RecordsNormalized.Add(float64(total))

	if total == 0 {
		metrics.AnalysesTotal.WithLabelValues("empty").Inc()
		return EmptyReport(e.now())
	}

	report := domain.Report{
		GeneratedAt:     e.now(),
		PostingSchedule: make(map[string]domain.PostingSchedule),
		PlatformFocus:   make([]domain.PlatformFocus, 0, len(names)),
		Alerts:          make([]domain.Alert, 0),
		ContentThemes:   make([]domain.ThemeCluster, 0),
		Meta:            newMeta(),
	}

	now := e.now()
	var clusters []domain.ThemeCluster

	for _, platform := range names {
		records := byPlatform[platform]
		if len(records) == 0 {
			continue
		}

		schedule := EstimateSchedule(records, e.loc)
		if len(schedule.Recommendations) == 0 {
			e.logger.WithField("platform", platform).Debug("Not enough timestamps for a posting schedule")
		}
		report.PostingSchedule[platform] = schedule

		focus := ScorePlatform(platform, records, now)
		if focus.Degraded {
			e.logger.WithField("platform", platform).Debug("No dated posts; platform focus uses positional windows")
		}
		report.PlatformFocus = append(report.PlatformFocus, focus)

		if alert, ok := DetectRisk(platform, records, e.loc); ok {
			report.Alerts = append(report.Alerts, *alert)
			metrics.AlertsEmitted.WithLabelValues(string(alert.Type), string(alert.Severity)).Inc()
		}

		clusters = append(clusters, ClusterThemes(platform, records)...)
	}

	RankPlatforms(report.PlatformFocus)
	report.ContentThemes = append(report.ContentThemes, RankThemes(clusters)...)

	metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	return report
}

// normalizeAll normalizes every record and groups them by lower-cased
// platform. Keys that collide after lower-casing are merged in key order.
func (e *Engine) normalizeAll(platforms map[string][]domain.RawRecord) ([]string, map[string][]domain.NormalizedRecord) {
	keys := make([]string, 0, len(platforms))
	for key := range platforms {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	names := make([]string, 0, len(keys))
	byPlatform := make(map[string][]domain.NormalizedRecord, len(keys))

	for _, key := range keys {
		platform := NormalizePlatform(key)
		if _, ok := byPlatform[platform]; !ok {
			names = append(names, platform)
			byPlatform[platform] = []domain.NormalizedRecord{}
		}
		for _, raw := range platforms[key] {
			byPlatform[platform] = append(byPlatform[platform], Normalize(raw, platform, e.loc))
		}
	}

	sort.Strings(names)
	return names, byPlatform
}

// EmptyReport is the valid report returned when there is no input at all
func EmptyReport(generatedAt time.Time) domain.Report {
	return domain.Report{
		GeneratedAt:     generatedAt,
		PostingSchedule: map[string]domain.PostingSchedule{},
		PlatformFocus:   []domain.PlatformFocus{},
		Alerts:          []domain.Alert{},
		ContentThemes:   []domain.ThemeCluster{},
		Meta:            newMeta(),
	}
}

func newMeta() domain.Meta {
	notes := make([]string, len(engineNotes))
	copy(notes, engineNotes)
	return domain.Meta{Engine: EngineName, Notes: notes}
}
