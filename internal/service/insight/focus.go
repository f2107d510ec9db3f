// internal/service/insight/focus.go

package insight

import (
	"math"
	"sort"
	"time"

	domain "creatorpulse/internal/domain/insight"
)

const (
	recentWindow   = 30 * 24 * time.Hour
	previousWindow = 60 * 24 * time.Hour

	investMoreThreshold   = 1.0
	deprioritizeThreshold = 0.6
)

// ScorePlatform scores recent growth and engagement for one platform.
//
// When at least one record is dated, "recent" is the last 30 days before now
// and "previous" the 30 days before that. Without any dates it falls back to
// list position: the last third is recent and the first third is previous.
// The fallback is a weak recency proxy and is reported as Degraded.
func ScorePlatform(platform string, records []domain.NormalizedRecord, now time.Time) domain.PlatformFocus {
	var recentViews, prevViews float64
	degraded := !anyDated(records)

	if !degraded {
		recentCut := now.Add(-recentWindow)
		prevCut := now.Add(-previousWindow)
		for _, r := range records {
			if r.Date == nil {
				continue
			}
			switch {
			case !r.Date.Before(recentCut):
				recentViews += r.Views
			case !r.Date.Before(prevCut):
				prevViews += r.Views
			}
		}
	} else {
		n := len(records)
		recentViews = sumViews(records[n*2/3:])
		prevViews = sumViews(records[:n/3])
	}

	var likes, comments float64
	for _, r := range records {
		likes += r.Likes
		comments += r.Comments
	}
	er := EngagementRate(likes, comments, sumViews(records))

	// A zero baseline yields growth == recentViews; left uncapped on purpose.
	growth := (recentViews - prevViews) / math.Max(prevViews, 1)
	score := 0.5*er + 0.5*(growth+1)

	return domain.PlatformFocus{
		Platform:       platform,
		EngagementRate: er,
		Growth:         growth,
		RecentViews:    recentViews,
		PreviousViews:  prevViews,
		Score:          score,
		Decision:       Decide(score),
		Degraded:       degraded,
	}
}

// Decide maps a focus score onto an investment decision
func Decide(score float64) domain.Decision {
	switch {
	case score >= investMoreThreshold:
		return domain.DecisionInvestMore
	case score < deprioritizeThreshold:
		return domain.DecisionDeprioritize
	default:
		return domain.DecisionMaintain
	}
}

// RankPlatforms sorts focus results by score, highest first
func RankPlatforms(results []domain.PlatformFocus) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

func anyDated(records []domain.NormalizedRecord) bool {
	for _, r := range records {
		if r.Date != nil {
			return true
		}
	}
	return false
}

func sumViews(records []domain.NormalizedRecord) float64 {
	var total float64
	for _, r := range records {
		total += r.Views
	}
	return total
}
