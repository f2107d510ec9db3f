package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "creatorpulse/internal/domain/insight"
)

func dated(t time.Time, views, likes, comments float64) domain.NormalizedRecord {
	return domain.NormalizedRecord{
		Platform:       "youtube",
		Date:           &t,
		Views:          views,
		Likes:          likes,
		Comments:       comments,
		EngagementRate: EngagementRate(likes, comments, views),
	}
}

func at(day, hour int) time.Time {
	return time.Date(2026, 1, day, hour, 15, 0, 0, time.UTC)
}

func TestEstimateSchedule_InsufficientTimestamps(t *testing.T) {
	records := []domain.NormalizedRecord{
		dated(at(5, 9), 100, 10, 0),
		dated(at(6, 9), 100, 10, 0),
		{Platform: "youtube", Views: 100},
		{Platform: "youtube", Views: 100},
	}

	schedule := EstimateSchedule(records, time.UTC)

	assert.NotNil(t, schedule.Recommendations)
	assert.Empty(t, schedule.Recommendations)
	assert.Equal(t, NoteInsufficientTimestamps, schedule.Note)
}

func TestEstimateSchedule_UsesEngagementRate(t *testing.T) {
	// Five posts on distinct weekday/hour pairs
	records := []domain.NormalizedRecord{
		dated(at(5, 9), 1000, 50, 10),  // Mon 09 er 0.06
		dated(at(6, 18), 1000, 90, 10), // Tue 18 er 0.10
		dated(at(7, 12), 1000, 20, 0),  // Wed 12 er 0.02
		dated(at(8, 23), 1000, 70, 10), // Thu 23 er 0.08
		dated(at(9, 7), 1000, 30, 0),   // Fri 07 er 0.03
	}

	schedule := EstimateSchedule(records, time.UTC)

	require.Len(t, schedule.Recommendations, 3)
	assert.Equal(t, "Based on mean er by weekday/hour", schedule.Note)

	got := schedule.Recommendations
	assert.Equal(t, domain.ScheduleRecommendation{Weekday: 2, HourStart: 18, HourEnd: 20, Score: 0.1, Metric: "er"}, got[0])
	assert.Equal(t, 4, got[1].Weekday)
	assert.Equal(t, 23, got[1].HourStart)
	assert.Equal(t, 1, got[1].HourEnd, "window wraps past midnight")
	assert.Equal(t, 1, got[2].Weekday)

	for _, rec := range got {
		assert.Equal(t, (rec.HourStart+2)%24, rec.HourEnd)
		assert.Equal(t, domain.MetricEngagementRate, rec.Metric)
	}
}

func TestEstimateSchedule_FallsBackToViews(t *testing.T) {
	records := []domain.NormalizedRecord{
		dated(at(5, 9), 100, 0, 0),
		dated(at(5, 9), 300, 0, 0),
		dated(at(6, 10), 500, 0, 0),
	}

	schedule := EstimateSchedule(records, time.UTC)

	require.Len(t, schedule.Recommendations, 2)
	assert.Equal(t, "Based on mean views by weekday/hour", schedule.Note)
	assert.Equal(t, 500.0, schedule.Recommendations[0].Score)
	assert.Equal(t, 200.0, schedule.Recommendations[1].Score, "bucket score is the mean")
	assert.Equal(t, domain.MetricViews, schedule.Recommendations[1].Metric)
}

func TestEstimateSchedule_TiesKeepInsertionOrder(t *testing.T) {
	records := []domain.NormalizedRecord{
		dated(at(7, 11), 100, 10, 0), // Wed 11, er 0.1, seen first
		dated(at(5, 9), 100, 10, 0),  // Mon 09, er 0.1
		dated(at(6, 10), 100, 10, 0), // Tue 10, er 0.1
		dated(at(8, 12), 100, 20, 0), // Thu 12, er 0.2
	}

	schedule := EstimateSchedule(records, time.UTC)

	require.Len(t, schedule.Recommendations, 3)
	assert.Equal(t, 4, schedule.Recommendations[0].Weekday)
	assert.Equal(t, 3, schedule.Recommendations[1].Weekday)
	assert.Equal(t, 1, schedule.Recommendations[2].Weekday)
}

func TestEstimateSchedule_BucketsInLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// Sunday 20:00 UTC is Monday 05:00 in Tokyo
	records := []domain.NormalizedRecord{
		dated(time.Date(2026, 1, 4, 20, 0, 0, 0, time.UTC), 100, 10, 0),
		dated(time.Date(2026, 1, 4, 20, 30, 0, 0, time.UTC), 100, 10, 0),
		dated(time.Date(2026, 1, 4, 20, 45, 0, 0, time.UTC), 100, 10, 0),
	}

	schedule := EstimateSchedule(records, tokyo)

	require.Len(t, schedule.Recommendations, 1)
	assert.Equal(t, 1, schedule.Recommendations[0].Weekday)
	assert.Equal(t, 5, schedule.Recommendations[0].HourStart)
}
