package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/diakonovmakar/yatube-final/internal/app/models"
	"github.com/diakonovmakar/yatube-final/internal/app/models/dto"
	"github.com/diakonovmakar/yatube-final/internal/app/urls"
	"github.com/diakonovmakar/yatube-final/internal/pkg/events"
	"github.com/diakonovmakar/yatube-final/internal/pkg/validation"
)

// CommentService adds comments to posts.
type CommentService struct {
	stores Stores
	posts  *PostService
	events events.Publisher
	logger zerolog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(stores Stores, posts *PostService, publisher events.Publisher, logger zerolog.Logger) *CommentService {
	return &CommentService{stores: stores, posts: posts, events: publisher, logger: logger}
}

// AddComment stores a comment by the session user on the post named by
// username and postID. An invalid form re-renders the post page.
func (s *CommentService) AddComment(ctx context.Context, user *models.User, username string, postID int64, form dto.CommentForm) (*Result[dto.PostDetailPage], error) {
	post, err := s.posts.findPost(ctx, username, postID)
	if err != nil {
		return nil, err
	}

	form.Normalize()
	if errs := validation.Struct(&form); errs.HasErrors() {
		page, err := s.posts.detailPage(ctx, user, post)
		if err != nil {
			return nil, err
		}
		page.Form = form
		page.Errors = errs
		return render(page), nil
	}

	comment := &models.Comment{Text: form.Text, PostID: post.ID, AuthorID: user.ID}
	if err := s.stores.Comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.logger.Info().Int64("postId", post.ID).Int64("commentId", comment.ID).Str("author", user.Username).Msg("Comment added")
	s.events.Publish(ctx, events.SubjectCommentCreated, events.CommentEvent{
		CommentID: comment.ID, PostID: post.ID, Author: user.Username, Timestamp: comment.Created,
	})
	return saved[dto.PostDetailPage](urls.Post(username, postID)), nil
}
