package services

import (
	"context"
	"errors"
	"io"

	"github.com/diakonovmakar/yatube-final/internal/app/models"
	"github.com/diakonovmakar/yatube-final/internal/app/models/dto"
	"github.com/diakonovmakar/yatube-final/internal/pkg/apperrors"
)

// UserRepository is the user storage the services need.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// GroupRepository is the group storage the services need.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id int64) (*models.Group, error)
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
	GetAll(ctx context.Context) ([]*models.Group, error)
}

// PostRepository is the post storage the services need. Every list is
// ordered newest first and carries author and group.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	GetAll(ctx context.Context) ([]*models.Post, error)
	GetByGroup(ctx context.Context, groupID int64) ([]*models.Post, error)
	GetByAuthor(ctx context.Context, authorID int64) ([]*models.Post, error)
	GetByFollower(ctx context.Context, userID int64) ([]*models.Post, error)
	CountByAuthor(ctx context.Context, authorID int64) (int, error)
}

// CommentRepository is the comment storage the services need.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByPost(ctx context.Context, postID int64) ([]*models.Comment, error)
}

// FollowRepository is the follow storage the services need. Create and
// Delete report whether a row actually changed.
type FollowRepository interface {
	Create(ctx context.Context, userID, authorID int64) (bool, error)
	Delete(ctx context.Context, userID, authorID int64) (bool, error)
	Exists(ctx context.Context, userID, authorID int64) (bool, error)
	CountFollowers(ctx context.Context, authorID int64) (int, error)
	CountFollowing(ctx context.Context, userID int64) (int, error)
}

// Stores bundles one implementation of every repository.
type Stores struct {
	Users    UserRepository
	Groups   GroupRepository
	Posts    PostRepository
	Comments CommentRepository
	Follows  FollowRepository
}

// ImageStorage stores validated post images.
type ImageStorage interface {
	SaveImage(filename string, src io.Reader) (string, error)
	DeleteFile(name string) error
}

// ImageUpload is an image submitted with a post form.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// Outcome tells the HTTP layer what to do with a write operation.
type Outcome int

const (
	// OutcomeRender: show Page (a GET, or a submission with errors).
	OutcomeRender Outcome = iota
	// OutcomeSaved: the change was stored; redirect to Redirect.
	OutcomeSaved
	// OutcomeDenied: the user may not do this; redirect to Redirect untouched.
	OutcomeDenied
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRender:
		return "render"
	case OutcomeSaved:
		return "saved"
	case OutcomeDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Result is the typed outcome of a form operation.
type Result[P any] struct {
	Outcome  Outcome
	Page     *P
	Redirect string
}

func render[P any](page *P) *Result[P] {
	return &Result[P]{Outcome: OutcomeRender, Page: page}
}

func saved[P any](redirect string) *Result[P] {
	return &Result[P]{Outcome: OutcomeSaved, Redirect: redirect}
}

func denied[P any](redirect string) *Result[P] {
	return &Result[P]{Outcome: OutcomeDenied, Redirect: redirect}
}

// fieldError extracts a field-scoped validation error raised by storage
// (for example a group removed while the form was open).
func fieldError(err error) (dto.FieldErrors, bool) {
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && ce.Field != "" && errors.Is(err, apperrors.ErrValidationFailed) {
		return dto.NewFieldErrors().Add(ce.Field, ce.Message), true
	}
	return nil, false
}
