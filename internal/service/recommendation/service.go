// internal/service/recommendation/service.go

package recommendation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"creatorpulse/internal/domain/insight"
	"creatorpulse/internal/domain/post"
	"creatorpulse/internal/logging"
	"creatorpulse/internal/metrics"
	insightService "creatorpulse/internal/service/insight"
)

// UnknownPlatform is used for posts uploaded without a platform
const UnknownPlatform = "unknown"

// Common errors
var (
	ErrMissingUser   = errors.New("missing user id")
	ErrInvalidUpload = errors.New("invalid upload")
)

// PostStore defines storage for uploaded posts
type PostStore interface {
	SavePosts(ctx context.Context, posts []post.Post) error
	FindPostsByUser(ctx context.Context, userID string) ([]post.Post, error)
	DeletePostsByUser(ctx context.Context, userID string) (int64, error)
}

// ServiceConfig contains configuration for the recommendation service
type ServiceConfig struct {
	CacheTTL time.Duration

	// Location used to read zone-less upload timestamps
	Location *time.Location
}

// Service produces per-user recommendations from uploaded posts
type Service struct {
	analyzer  insight.Analyzer
	store     PostStore
	cache     insight.Cache
	publisher insight.EventPublisher
	config    ServiceConfig
	logger    *logrus.Entry
}

// NewService creates a new recommendation service. The publisher may be nil.
func NewService(
	analyzer insight.Analyzer,
	store PostStore,
	cache insight.Cache,
	publisher insight.EventPublisher,
	config ServiceConfig,
	logger *logrus.Entry,
) *Service {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Service{
		analyzer:  analyzer,
		store:     store,
		cache:     cache,
		publisher: publisher,
		config:    config,
		logger:    logger,
	}
}

// Get returns the user's recommendation, served from cache when fresh
func (s *Service) Get(ctx context.Context, userID string) (*insight.Recommendation, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	log := s.logger.WithField("user_id", userID)

	cached, err := s.cache.Get(ctx, userID)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		cached.Cached = true
		return cached, nil
	case errors.Is(err, insight.ErrCacheMiss):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		// Keep serving without the cache
		metrics.CacheLookups.WithLabelValues("error").Inc()
		log.WithError(err).Warn("Recommendation cache lookup failed")
	}

	posts, err := s.store.FindPostsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading posts: %w", err)
	}

	rec := insight.Recommendation{
		ID:     uuid.New().String(),
		UserID: userID,
		Report: s.analyzer.Analyze(GroupByPlatform(posts)),
	}

	if err := s.cache.Set(ctx, userID, rec, s.config.CacheTTL); err != nil {
		log.WithError(err).Warn("Failed to cache recommendation")
	}

	if s.publisher != nil {
		if err := s.publisher.PublishReportGenerated(ctx, rec); err != nil {
			log.WithError(err).Warn("Failed to publish recommendation event")
		}
	}

	log.WithFields(logrus.Fields{
		"recommendation_id": rec.ID,
		"posts":             len(posts),
		"alerts":            len(rec.Report.Alerts),
	}).Info("Generated recommendation")

	return &rec, nil
}

// ClearCache drops the user's cached recommendation
func (s *Service) ClearCache(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUser
	}
	if err := s.cache.Clear(ctx, userID); err != nil {
		return fmt.Errorf("error clearing cache: %w", err)
	}
	return nil
}

// Analyze runs the engine over caller-supplied records without touching
// storage or the cache
func (s *Service) Analyze(platforms map[string][]insight.RawRecord) insight.Report {
	return s.analyzer.Analyze(platforms)
}

// Upload stores a batch of posts for one platform and invalidates the user's
// cached recommendation. It returns the number of posts stored.
func (s *Service) Upload(ctx context.Context, userID, platform string, items []insight.RawRecord) (int, error) {
	if userID == "" {
		return 0, ErrMissingUser
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("%w: no items", ErrInvalidUpload)
	}

	platform = insightService.NormalizePlatform(platform)
	if platform == "" {
		platform = UnknownPlatform
	}

	posts := make([]post.Post, 0, len(items))
	for _, raw := range items {
		rec := insightService.Normalize(raw, platform, s.config.Location)
		posts = append(posts, post.Post{
			UserID:      userID,
			Platform:    rec.Platform,
			Title:       rec.Title,
			Views:       rec.Views,
			Likes:       rec.Likes,
			Comments:    rec.Comments,
			Shares:      rec.Shares,
			DurationSec: rec.DurationSec,
			PostedAt:    rec.Date,
			Raw:         raw,
		})
	}

	if err := s.store.SavePosts(ctx, posts); err != nil {
		return 0, fmt.Errorf("error saving posts: %w", err)
	}
	metrics.PostsUploaded.WithLabelValues(metrics.PlatformLabel(platform)).Add(float64(len(posts)))

	s.invalidate(ctx, userID)

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"platform": platform,
		"posts":    len(posts),
	}).Info("Stored uploaded posts")

	return len(posts), nil
}

// DeleteData removes all of the user's posts and their cached recommendation
func (s *Service) DeleteData(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrMissingUser
	}

	deleted, err := s.store.DeletePostsByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error deleting posts: %w", err)
	}

	s.invalidate(ctx, userID)
	return deleted, nil
}

// Overview summarizes the user's uploaded posts. It returns nil when the user
// has no posts yet.
func (s *Service) Overview(ctx context.Context, userID string) (*post.Overview, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	posts, err := s.store.FindPostsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading posts: %w", err)
	}

	return BuildOverview(posts, s.config.Location), nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Clear(ctx, userID); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to invalidate cached recommendation")
	}
}

// GroupByPlatform turns stored posts into engine input, keyed by lower-cased
// platform and kept in upload order
func GroupByPlatform(posts []post.Post) map[string][]insight.RawRecord {
	platforms := make(map[string][]insight.RawRecord)
	for _, p := range posts {
		platform := insightService.NormalizePlatform(p.Platform)
		if platform == "" {
			platform = UnknownPlatform
		}

		raw := insight.RawRecord{
			"views":       p.Views,
			"likes":       p.Likes,
			"comments":    p.Comments,
			"shares":      p.Shares,
			"title":       p.Title,
			"durationSec": p.DurationSec,
		}
		if p.PostedAt != nil {
			raw["postedAt"] = *p.PostedAt
		}

		platforms[platform] = append(platforms[platform], raw)
	}
	return platforms
}
