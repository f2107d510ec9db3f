// internal/service/insight/normalizer.go

package insight

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	domain "creatorpulse/internal/domain/insight"
)

// Layouts tried, in order, for string timestamps
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// Epoch values at or above this are treated as milliseconds
const epochMillisThreshold = 1e12

// MaxMetricValue caps every coerced metric. Platform and monthly sums of up
// to a million capped records, and the squares taken over them, stay finite.
const MaxMetricValue = 1e15

// Normalize coerces one raw record into a NormalizedRecord. It never fails:
// unparseable dates become nil and non-numeric metrics become 0. Zone-less
// timestamps are read in loc (UTC when nil).
func Normalize(raw domain.RawRecord, platform string, loc *time.Location) domain.NormalizedRecord {
	if loc == nil {
		loc = time.UTC
	}

	rec := domain.NormalizedRecord{
		Platform:    NormalizePlatform(platform),
		Date:        firstDate(raw, loc, "postedAt", "timestamp"),
		Views:       toNumber(raw["views"]),
		Likes:       toNumber(raw["likes"]),
		Comments:    toNumber(raw["comments"]),
		Shares:      toNumber(raw["shares"]),
		DurationSec: toNumber(raw["durationSec"]),
		Title:       firstString(raw, "title", "message", "text"),
	}
	rec.EngagementRate = EngagementRate(rec.Likes, rec.Comments, rec.Views)

	return rec
}

// NormalizePlatform lower-cases and trims a platform identifier
func NormalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// EngagementRate returns (likes + comments) / max(views, 1)
func EngagementRate(likes, comments, views float64) float64 {
	return (likes + comments) / math.Max(views, 1)
}

// firstDate returns the first key that parses as a date
func firstDate(raw domain.RawRecord, loc *time.Location, keys ...string) *time.Time {
	for _, key := range keys {
		if t := parseDate(raw[key], loc); t != nil {
			return t
		}
	}
	return nil
}

func firstString(raw domain.RawRecord, keys ...string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// toNumber coerces v into a finite float in [0, MaxMetricValue]. Booleans
// are not numbers and give 0.
func toNumber(v interface{}) float64 {
	var f float64

	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return math.Min(f, MaxMetricValue)
}

func parseDate(v interface{}, loc *time.Location) *time.Time {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return nil
		}
		return &d
	case *time.Time:
		if d == nil || d.IsZero() {
			return nil
		}
		t := *d
		return &t
	case string:
		return parseDateString(strings.TrimSpace(d), loc)
	case nil, bool:
		return nil
	default:
		// Numeric epochs
		epoch := toNumber(v)
		if epoch <= 0 {
			return nil
		}
		var t time.Time
		if epoch >= epochMillisThreshold {
			t = time.UnixMilli(int64(epoch)).In(loc)
		} else {
			t = time.Unix(int64(epoch), 0).In(loc)
		}
		return &t
	}
}

func parseDateString(s string, loc *time.Location) *time.Time {
	if s == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t
		}
	}

	return nil
}
