// internal/adapter/cache/breaker.go

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"

	"creatorpulse/internal/domain/insight"
	"creatorpulse/internal/logging"
)

// BreakerConfig contains circuit breaker settings for a remote cache
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// BreakerCache stops calling an unhealthy cache until it recovers. Misses do
// not count as failures.
type BreakerCache struct {
	inner insight.Cache
	cb    *gobreaker.CircuitBreaker[*insight.Recommendation]
}

// NewBreakerCache wraps inner with a circuit breaker
func NewBreakerCache(inner insight.Cache, cfg BreakerConfig, logger *logrus.Entry) *BreakerCache {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if logger == nil {
		logger = logging.Discard()
	}

	cb := gobreaker.NewCircuitBreaker[*insight.Recommendation](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, insight.ErrCacheMiss)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Cache circuit breaker changed state")
		},
	})

	return &BreakerCache{
		inner: inner,
		cb:    cb,
	}
}

// State reports the breaker state ("closed", "half-open", "open")
func (c *BreakerCache) State() string {
	return c.cb.State().String()
}

// Get returns the cached recommendation for key
func (c *BreakerCache) Get(ctx context.Context, key string) (*insight.Recommendation, error) {
	return c.cb.Execute(func() (*insight.Recommendation, error) {
		return c.inner.Get(ctx, key)
	})
}

// Set stores a recommendation under key for ttl
func (c *BreakerCache) Set(ctx context.Context, key string, rec insight.Recommendation, ttl time.Duration) error {
	_, err := c.cb.Execute(func() (*insight.Recommendation, error) {
		return nil, c.inner.Set(ctx, key, rec, ttl)
	})
	return err
}

// Clear removes whatever is stored under key
func (c *BreakerCache) Clear(ctx context.Context, key string) error {
	_, err := c.cb.Execute(func() (*insight.Recommendation, error) {
		return nil, c.inner.Clear(ctx, key)
	})
	return err
}
