// internal/service/insight/schedule.go

package insight

import (
	"fmt"
	"sort"
	"time"

	domain "creatorpulse/internal/domain/insight"
)

const (
	minScheduleTimestamps = 3
	scheduleCandidates    = 6
	scheduleWindows       = 3
	scheduleWindowHours   = 2
)

// NoteInsufficientTimestamps explains an empty schedule
const NoteInsufficientTimestamps = "insufficient timestamps; unable to infer schedule"

type slotKey struct {
	weekday int
	hour    int
}

type slotBucket struct {
	slotKey
	sum   float64
	count int
}

// EstimateSchedule finds the best weekday/hour posting windows for one
// platform. Buckets with equal mean scores keep the order in which they were
// first seen.
func EstimateSchedule(records []domain.NormalizedRecord, loc *time.Location) domain.PostingSchedule {
	if loc == nil {
		loc = time.UTC
	}

	dated := make([]domain.NormalizedRecord, 0, len(records))
	for _, r := range records {
		if r.Date != nil {
			dated = append(dated, r)
		}
	}

	if len(dated) < minScheduleTimestamps {
		return domain.PostingSchedule{
			Recommendations: []domain.ScheduleRecommendation{},
			Note:            NoteInsufficientTimestamps,
		}
	}

	metric := domain.MetricViews
	var totalER float64
	for _, r := range dated {
		totalER += r.EngagementRate
	}
	if totalER > 0 {
		metric = domain.MetricEngagementRate
	}

	// Group by (weekday, hour), remembering first-seen order
	index := make(map[slotKey]int)
	buckets := make([]slotBucket, 0)
	for _, r := range dated {
		local := r.Date.In(loc)
		key := slotKey{weekday: int(local.Weekday()), hour: local.Hour()}

		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, slotBucket{slotKey: key})
		}
		buckets[i].sum += metricValue(r, metric)
		buckets[i].count++
	}

	type scored struct {
		slotKey
		score float64
	}
	ranked := make([]scored, len(buckets))
	for i, b := range buckets {
		ranked[i] = scored{slotKey: b.slotKey, score: b.sum / float64(b.count)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > scheduleCandidates {
		ranked = ranked[:scheduleCandidates]
	}

	seen := make(map[slotKey]bool)
	recs := make([]domain.ScheduleRecommendation, 0, scheduleWindows)
	for _, s := range ranked {
		if seen[s.slotKey] {
			continue
		}
		seen[s.slotKey] = true

		recs = append(recs, domain.ScheduleRecommendation{
			Weekday:   s.weekday,
			HourStart: s.hour,
			HourEnd:   (s.hour + scheduleWindowHours) % 24,
			Score:     s.score,
			Metric:    metric,
		})
		if len(recs) >= scheduleWindows {
			break
		}
	}

	return domain.PostingSchedule{
		Recommendations: recs,
		Note:            fmt.Sprintf("Based on mean %s by weekday/hour", metric),
	}
}

func metricValue(r domain.NormalizedRecord, metric string) float64 {
	if metric == domain.MetricEngagementRate {
		return r.EngagementRate
	}
	return r.Views
}
