// Package events publishes domain notifications (new posts, comments,
// follows) to NATS. Publishing is best effort: failures are logged and never
// fail the request that caused them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Subjects, relative to the configured prefix.
const (
	SubjectPostCreated    = "post.created"
	SubjectPostUpdated    = "post.updated"
	SubjectCommentCreated = "comment.created"
	SubjectFollowCreated  = "follow.created"
	SubjectFollowDeleted  = "follow.deleted"
)

// Publisher sends an event under a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, event interface{})
}

// PostEvent is emitted when a post is created or edited.
type PostEvent struct {
	PostID    int64     `json:"post_id"`
	Author    string    `json:"author"`
	GroupID   *int64    `json:"group_id,omitempty"`
	HasImage  bool      `json:"has_image"`
	Timestamp time.Time `json:"timestamp"`
}

// CommentEvent is emitted when a comment is added.
type CommentEvent struct {
	CommentID int64     `json:"comment_id"`
	PostID    int64     `json:"post_id"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// FollowEvent is emitted when a follow is created or removed.
type FollowEvent struct {
	Follower  string    `json:"follower"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// NATSPublisher publishes JSON-encoded events on a NATS connection.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger zerolog.Logger
}

// Connect dials url and returns a publisher that prefixes every subject.
func Connect(url, prefix string, logger zerolog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("yatube"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return NewNATSPublisher(conn, prefix, logger), nil
}

// NewNATSPublisher wraps an existing connection.
func NewNATSPublisher(conn *nats.Conn, prefix string, logger zerolog.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix, logger: logger}
}

// Subject returns the fully qualified subject name.
func (p *NATSPublisher) Subject(subject string) string {
	if p.prefix == "" {
		return subject
	}
	return p.prefix + "." + subject
}

func (p *NATSPublisher) Publish(_ context.Context, subject string, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("Failed to encode event")
		return
	}
	full := p.Subject(subject)
	if err := p.conn.Publish(full, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", full).Msg("Failed to publish event")
		return
	}
	p.logger.Debug().Str("subject", full).Msg("Event published")
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// NoopPublisher drops every event; used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) {}
