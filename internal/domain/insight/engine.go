// internal/domain/insight/engine.go

package insight

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by a Cache when nothing is stored under a key
var ErrCacheMiss = errors.New("cache miss")

// Analyzer defines the interface for the inference engine
type Analyzer interface {
	// Analyze turns per-platform raw records into a report. It never fails;
	// malformed or missing input degrades the report instead.
	Analyze(platforms map[string][]RawRecord) Report
}

// Recommendation is a report produced for a specific user
type Recommendation struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Report Report `json:"report"`
	Cached bool   `json:"cached"`
}

// Cache stores recommendations per user for a fixed time-to-live
type Cache interface {
	// Get returns the cached recommendation for key, or an error wrapping
	// ErrCacheMiss when nothing is stored.
	Get(ctx context.Context, key string) (*Recommendation, error)

	// Set stores a recommendation under key for ttl
	Set(ctx context.Context, key string, rec Recommendation, ttl time.Duration) error

	// Clear removes whatever is stored under key
	Clear(ctx context.Context, key string) error
}

// EventPublisher announces generated recommendations
type EventPublisher interface {
	PublishReportGenerated(ctx context.Context, rec Recommendation) error
}
