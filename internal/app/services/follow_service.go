package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/diakonovmakar/yatube-final/internal/app/auth"
	"github.com/diakonovmakar/yatube-final/internal/app/models"
	"github.com/diakonovmakar/yatube-final/internal/app/models/dto"
	"github.com/diakonovmakar/yatube-final/internal/app/urls"
	"github.com/diakonovmakar/yatube-final/internal/pkg/events"
	"github.com/diakonovmakar/yatube-final/internal/pkg/helpers"
)

// FollowService manages subscriptions and the followed-authors timeline.
type FollowService struct {
	stores   Stores
	authz    *auth.AuthorizationService
	events   events.Publisher
	pageSize int
	logger   zerolog.Logger
}

// NewFollowService creates a new FollowService
func NewFollowService(stores Stores, authz *auth.AuthorizationService, publisher events.Publisher, pageSize int, logger zerolog.Logger) *FollowService {
	if pageSize <= 0 {
		pageSize = helpers.DefaultPageSize
	}
	return &FollowService{stores: stores, authz: authz, events: publisher, pageSize: pageSize, logger: logger}
}

// Follow subscribes user to the author. Following oneself and following
// twice change nothing. It returns the profile to redirect to.
func (s *FollowService) Follow(ctx context.Context, user *models.User, username string) (string, error) {
	author, err := s.stores.Users.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if !s.authz.CanFollow(user, author) {
		return urls.Profile(author.Username), nil
	}

	created, err := s.stores.Follows.Create(ctx, user.ID, author.ID)
	if err != nil {
		return "", fmt.Errorf("failed to follow: %w", err)
	}
	if created {
		s.logger.Info().Str("follower", user.Username).Str("author", author.Username).Msg("Follow created")
		s.events.Publish(ctx, events.SubjectFollowCreated, events.FollowEvent{Follower: user.Username, Author: author.Username, Timestamp: time.Now()})
	}
	return urls.Profile(author.Username), nil
}

// Unfollow removes the subscription if there is one.
func (s *FollowService) Unfollow(ctx context.Context, user *models.User, username string) (string, error) {
	author, err := s.stores.Users.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	removed, err := s.stores.Follows.Delete(ctx, user.ID, author.ID)
	if err != nil {
		return "", fmt.Errorf("failed to unfollow: %w", err)
	}
	if removed {
		s.logger.Info().Str("follower", user.Username).Str("author", author.Username).Msg("Follow removed")
		s.events.Publish(ctx, events.SubjectFollowDeleted, events.FollowEvent{Follower: user.Username, Author: author.Username, Timestamp: time.Now()})
	}
	return urls.Profile(author.Username), nil
}

// Index returns a page of posts by the authors user follows.
func (s *FollowService) Index(ctx context.Context, user *models.User, page int) (*dto.FollowPage, error) {
	posts, err := s.stores.Posts.GetByFollower(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load followed posts: %w", err)
	}
	return &dto.FollowPage{
		Base: dto.Base{Title: "Following"},
		Page: helpers.Paginate(posts, page, s.pageSize),
	}, nil
}
