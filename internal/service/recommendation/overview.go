// internal/service/recommendation/overview.go

package recommendation

import (
	"fmt"
	"sort"
	"time"

	"creatorpulse/internal/domain/post"
	insightService "creatorpulse/internal/service/insight"
)

const overviewTopPosts = 3

// BuildOverview aggregates totals, platform counts, the top posts by views
// and monthly views. Engagement rate is a percentage.
func BuildOverview(posts []post.Post, loc *time.Location) *post.Overview {
	if len(posts) == 0 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	o := &post.Overview{
		TotalPosts:     len(posts),
		PlatformCounts: make(map[string]int),
		MonthlyTrend:   make(map[string]float64),
	}

	for _, p := range posts {
		o.TotalViews += p.Views
		o.TotalLikes += p.Likes
		o.TotalComments += p.Comments
		o.PlatformCounts[p.Platform]++

		if p.PostedAt != nil {
			local := p.PostedAt.In(loc)
			month := fmt.Sprintf("%04d-%02d", local.Year(), int(local.Month()))
			o.MonthlyTrend[month] += p.Views
		}
	}

	o.EngagementRate = insightService.EngagementRate(o.TotalLikes, o.TotalComments, o.TotalViews) * 100

	top := make([]post.Post, len(posts))
	copy(top, posts)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Views > top[j].Views
	})
	if len(top) > overviewTopPosts {
		top = top[:overviewTopPosts]
	}
	o.TopPosts = top

	return o
}
