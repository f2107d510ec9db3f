// internal/service/insight/themes.go

package insight

import (
	"math"
	"sort"

	domain "creatorpulse/internal/domain/insight"
)

const (
	themeTertiles    = 3
	themeExamples    = 3
	maxThemeClusters = 9

	// Engagement rates closer than this rank as equal
	themeTieTolerance = 0.001
)

// ClusterThemes splits a platform's posts into low, medium and high
// engagement tertiles. The split uses a bucket size of ceil(n/3), so the last
// tertile may be short or empty.
func ClusterThemes(platform string, records []domain.NormalizedRecord) []domain.ThemeCluster {
	if len(records) == 0 {
		return nil
	}

	sorted := make([]domain.NormalizedRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EngagementRate < sorted[j].EngagementRate
	})

	n := len(sorted)
	size := int(math.Ceil(float64(n) / themeTertiles))

	clusters := make([]domain.ThemeCluster, 0, themeTertiles)
	for id := 0; id < themeTertiles; id++ {
		start := min(id*size, n)
		end := min((id+1)*size, n)
		if id == themeTertiles-1 {
			end = n
		}

		bucket := sorted[start:end]
		if len(bucket) == 0 {
			continue
		}

		var erSum, viewSum float64
		examples := make([]string, 0, themeExamples)
		for _, r := range bucket {
			erSum += r.EngagementRate
			viewSum += r.Views
			if r.Title != "" && len(examples) < themeExamples {
				examples = append(examples, r.Title)
			}
		}

		clusters = append(clusters, domain.ThemeCluster{
			Platform:          platform,
			ClusterID:         id,
			Count:             len(bucket),
			AvgEngagementRate: erSum / float64(len(bucket)),
			AvgViews:          viewSum / float64(len(bucket)),
			Examples:          examples,
		})
	}

	return clusters
}

// RankThemes orders clusters by engagement rate, then views, and keeps the
// global top nine.
func RankThemes(clusters []domain.ThemeCluster) []domain.ThemeCluster {
	sort.SliceStable(clusters, func(i, j int) bool {
		a, b := clusters[i], clusters[j]
		if math.Abs(a.AvgEngagementRate-b.AvgEngagementRate) > themeTieTolerance {
			return a.AvgEngagementRate > b.AvgEngagementRate
		}
		return a.AvgViews > b.AvgViews
	})

	if len(clusters) > maxThemeClusters {
		clusters = clusters[:maxThemeClusters]
	}
	return clusters
}
