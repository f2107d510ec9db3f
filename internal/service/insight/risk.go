// internal/service/insight/risk.go

package insight

import (
	"math"
	"sort"
	"time"

	domain "creatorpulse/internal/domain/insight"
)

const minSeriesPoints = 3

// SeriesStats summarizes a views time series
type SeriesStats struct {
	Slope      float64
	Volatility float64
	Mean       float64
	MaxViews   float64
	LastViews  float64
}

// DetectRisk fits a trend line over a platform's views and raises at most one
// alert. Platforms with fewer than three records, or whose series has fewer
// than three points, are skipped.
func DetectRisk(platform string, records []domain.NormalizedRecord, loc *time.Location) (*domain.Alert, bool) {
	if len(records) < minSeriesPoints {
		return nil, false
	}

	series := ViewsSeries(records, loc)
	if len(series) < minSeriesPoints {
		return nil, false
	}

	return classifyRisk(platform, ComputeSeriesStats(series))
}

// ViewsSeries builds the views series for a platform: monthly totals when at
// least three records are dated, otherwise raw views in original order.
func ViewsSeries(records []domain.NormalizedRecord, loc *time.Location) []float64 {
	if loc == nil {
		loc = time.UTC
	}

	dated := 0
	for _, r := range records {
		if r.Date != nil {
			dated++
		}
	}

	if dated < minSeriesPoints {
		series := make([]float64, len(records))
		for i, r := range records {
			series[i] = r.Views
		}
		return series
	}

	// Months keyed as year*12 + month so the order matches YYYY-MM
	monthly := make(map[int]float64)
	for _, r := range records {
		if r.Date == nil {
			continue
		}
		local := r.Date.In(loc)
		monthly[local.Year()*12+int(local.Month())-1] += r.Views
	}

	months := make([]int, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Ints(months)

	series := make([]float64, len(months))
	for i, m := range months {
		series[i] = monthly[m]
	}
	return series
}

// ComputeSeriesStats returns the OLS slope against x = 0..n-1, the population
// standard deviation of first differences, and the mean, max and last value.
func ComputeSeriesStats(y []float64) SeriesStats {
	n := len(y)
	if n == 0 {
		return SeriesStats{}
	}

	xMean := float64(n-1) / 2
	var yMean float64
	maxViews := y[0]
	for _, v := range y {
		yMean += v
		if v > maxViews {
			maxViews = v
		}
	}
	yMean /= float64(n)

	var num, den float64
	for i, v := range y {
		dx := float64(i) - xMean
		num += dx * (v - yMean)
		den += dx * dx
	}
	slope := 0.0
	if den != 0 {
		slope = num / den
	}

	var volatility float64
	if n > 1 {
		diffs := make([]float64, n-1)
		var dMean float64
		for i := 1; i < n; i++ {
			diffs[i-1] = y[i] - y[i-1]
			dMean += diffs[i-1]
		}
		dMean /= float64(len(diffs))

		var variance float64
		for _, d := range diffs {
			variance += (d - dMean) * (d - dMean)
		}
		volatility = math.Sqrt(variance / float64(len(diffs)))
	}

	return SeriesStats{
		Slope:      slope,
		Volatility: volatility,
		Mean:       yMean,
		MaxViews:   maxViews,
		LastViews:  y[n-1],
	}
}

// classifyRisk applies the alert rules in order; the first match wins
func classifyRisk(platform string, s SeriesStats) (*domain.Alert, bool) {
	switch {
	case s.Slope < -0.05*s.Mean:
		severity := domain.SeverityMedium
		if s.Slope < -0.15*s.Mean {
			severity = domain.SeverityHigh
		}
		return newAlert(platform, domain.AlertDecliningTrend, severity, slopeDetails(s)), true

	case s.Volatility > 0.6*s.Mean:
		volatility := s.Volatility
		details := domain.AlertDetails{Volatility: &volatility, Mean: s.Mean}
		return newAlert(platform, domain.AlertHighVolatility, domain.SeverityMedium, details), true

	case s.LastViews <= 1.05*s.MaxViews && s.Slope < 0.01*s.Mean:
		return newAlert(platform, domain.AlertStagnation, domain.SeverityLow, slopeDetails(s)), true
	}

	return nil, false
}

func slopeDetails(s SeriesStats) domain.AlertDetails {
	slope := s.Slope
	return domain.AlertDetails{Slope: &slope, Mean: s.Mean}
}

func newAlert(platform string, t domain.AlertType, sev domain.Severity, details domain.AlertDetails) *domain.Alert {
	return &domain.Alert{
		Platform: platform,
		Type:     t,
		Severity: sev,
		Details:  details,
	}
}
