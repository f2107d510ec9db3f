// internal/domain/post/model.go

package post

import (
	"time"
)

// Post is one persisted per-post analytics row for a user
type Post struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"userId"`
	Platform    string                 `json:"platform"`
	Title       string                 `json:"title"`
	Views       float64                `json:"views"`
	Likes       float64                `json:"likes"`
	Comments    float64                `json:"comments"`
	Shares      float64                `json:"shares"`
	DurationSec float64                `json:"durationSec"`
	PostedAt    *time.Time             `json:"postedAt,omitempty"`
	Raw         map[string]interface{} `json:"raw,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// Overview summarizes a user's uploaded posts
type Overview struct {
	TotalViews     float64            `json:"totalViews"`
	TotalLikes     float64            `json:"totalLikes"`
	TotalComments  float64            `json:"totalComments"`
	TotalPosts     int                `json:"totalPosts"`
	EngagementRate float64            `json:"engagementRate"`
	PlatformCounts map[string]int     `json:"platformCounts"`
	TopPosts       []Post             `json:"topPosts"`
	MonthlyTrend   map[string]float64 `json:"monthlyTrend"`
}
