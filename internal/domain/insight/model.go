// internal/domain/insight/model.go

package insight

import (
	"time"
)

// RawRecord is a single post-like object as supplied by a caller. Field
// presence and types are not guaranteed.
type RawRecord map[string]interface{}

// NormalizedRecord is the canonical, strictly-typed per-post analytics row
type NormalizedRecord struct {
	Platform       string
	Date           *time.Time
	Views          float64
	Likes          float64
	Comments       float64
	Shares         float64
	DurationSec    float64
	Title          string
	EngagementRate float64
}

// Metric names used by the posting schedule estimator
const (
	MetricEngagementRate = "er"
	MetricViews          = "views"
)

// Decision is the investment recommendation for a platform
type Decision string

// Platform focus decisions
const (
	DecisionInvestMore   Decision = "invest_more"
	DecisionMaintain     Decision = "maintain"
	DecisionDeprioritize Decision = "deprioritize"
)

// AlertType identifies the growth risk rule that fired
type AlertType string

// Alert types, in evaluation order
const (
	AlertDecliningTrend AlertType = "declining_trend"
	AlertHighVolatility AlertType = "high_volatility"
	AlertStagnation     AlertType = "stagnation"
)

// Severity grades an alert
type Severity string

// Alert severities
const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// ScheduleRecommendation is a two hour posting window
type ScheduleRecommendation struct {
	Weekday   int     `json:"weekday"`
	HourStart int     `json:"hourStart"`
	HourEnd   int     `json:"hourEnd"`
	Score     float64 `json:"score"`
	Metric    string  `json:"metric"`
}

// PostingSchedule holds the best posting windows for one platform
type PostingSchedule struct {
	Recommendations []ScheduleRecommendation `json:"recommendations"`
	Note            string                   `json:"note"`
}

// PlatformFocus is the scoring result for one platform
type PlatformFocus struct {
	Platform       string   `json:"platform"`
	EngagementRate float64  `json:"engagementRate"`
	Growth         float64  `json:"growth"`
	RecentViews    float64  `json:"recentViews"`
	PreviousViews  float64  `json:"previousViews"`
	Score          float64  `json:"score"`
	Decision       Decision `json:"decision"`

	// Degraded is set when no record carried a date and the recent/previous
	// windows were taken from list position instead.
	Degraded bool `json:"degraded"`
}

// AlertDetails carries the figures that triggered an alert
type AlertDetails struct {
	Slope      *float64 `json:"slope,omitempty"`
	Volatility *float64 `json:"volatility,omitempty"`
	Mean       float64  `json:"mean"`
}

// Alert is a growth risk raised for a platform
type Alert struct {
	Platform string       `json:"platform"`
	Type     AlertType    `json:"type"`
	Severity Severity     `json:"severity"`
	Details  AlertDetails `json:"details"`
}

// ThemeCluster is one engagement tertile of a platform's posts
type ThemeCluster struct {
	Platform          string   `json:"platform"`
	ClusterID         int      `json:"clusterId"`
	Count             int      `json:"count"`
	AvgEngagementRate float64  `json:"avgEngagementRate"`
	AvgViews          float64  `json:"avgViews"`
	Examples          []string `json:"examples"`
}

// Meta describes the engine that produced a report
type Meta struct {
	Engine string   `json:"engine"`
	Notes  []string `json:"notes"`
}

// Report is the complete output of one analysis run
type Report struct {
	GeneratedAt     time.Time                  `json:"generatedAt"`
	PostingSchedule map[string]PostingSchedule `json:"postingSchedule"`
	PlatformFocus   []PlatformFocus            `json:"platformFocus"`
	Alerts          []Alert                    `json:"alerts"`
	ContentThemes   []ThemeCluster             `json:"contentThemes"`
	Meta            Meta                       `json:"meta"`
}

// IsEmpty reports whether the report carries no analytical content
func (r Report) IsEmpty() bool {
	return len(r.PostingSchedule) == 0 &&
		len(r.PlatformFocus) == 0 &&
		len(r.Alerts) == 0 &&
		len(r.ContentThemes) == 0
}

// Platforms returns the platforms covered by the report's focus list
func (r Report) Platforms() []string {
	platforms := make([]string, 0, len(r.PlatformFocus))
	for _, f := range r.PlatformFocus {
		platforms = append(platforms, f.Platform)
	}
	return platforms
}
