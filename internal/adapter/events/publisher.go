// internal/adapter/events/publisher.go

package events

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"creatorpulse/internal/domain/insight"
)

// Conn is the subset of *nats.Conn used for publishing
type Conn interface {
	Publish(subject string, data []byte) error
}

var _ Conn = (*nats.Conn)(nil)

// ReportGeneratedEvent is the payload announcing a new recommendation
type ReportGeneratedEvent struct {
	Type        string    `json:"type"`
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	GeneratedAt time.Time `json:"generatedAt"`
	Platforms   []string  `json:"platforms"`
	Alerts      int       `json:"alerts"`
}

// NATSPublisher implements insight.EventPublisher over NATS
type NATSPublisher struct {
	conn  Conn
	topic string
}

// NewNATSPublisher creates a new publisher for the given topic prefix
func NewNATSPublisher(conn Conn, topic string) *NATSPublisher {
	return &NATSPublisher{
		conn:  conn,
		topic: topic,
	}
}

// GeneratedSubject is the subject carrying every generated recommendation
func GeneratedSubject(topic string) string {
	return fmt.Sprintf("%s.generated", topic)
}

// UserGeneratedSubject is the subject carrying one user's recommendations.
// userID must satisfy ValidSubjectToken.
func UserGeneratedSubject(topic, userID string) string {
	return fmt.Sprintf("%s.%s.generated", topic, userID)
}

// Longest user ID accepted as a subject token
const maxSubjectTokenLen = 128

// ValidSubjectToken reports whether s can stand as a single NATS subject
// token: non-empty, no wildcards, no separators and no whitespace
func ValidSubjectToken(s string) bool {
	if s == "" || len(s) > maxSubjectTokenLen || strings.ContainsAny(s, ".*>") {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// PublishReportGenerated publishes a generated event on the global and the
// per-user subject
func (p *NATSPublisher) PublishReportGenerated(ctx context.Context, rec insight.Recommendation) error {
	event := ReportGeneratedEvent{
		Type:        "recommendation.generated",
		ID:          rec.ID,
		UserID:      rec.UserID,
		GeneratedAt: rec.Report.GeneratedAt,
		Platforms:   rec.Report.Platforms(),
		Alerts:      len(rec.Report.Alerts),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling event: %w", err)
	}

	if err := p.conn.Publish(GeneratedSubject(p.topic), data); err != nil {
		return fmt.Errorf("error publishing event: %w", err)
	}

	if ValidSubjectToken(rec.UserID) {
		if err := p.conn.Publish(UserGeneratedSubject(p.topic, rec.UserID), data); err != nil {
			return fmt.Errorf("error publishing user event: %w", err)
		}
	}

	return nil
}
