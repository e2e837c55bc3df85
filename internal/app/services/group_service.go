package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/diakonovmakar/yatube-final/internal/app/models"
	"github.com/diakonovmakar/yatube-final/internal/pkg/apperrors"
	"github.com/diakonovmakar/yatube-final/internal/pkg/helpers"
	"github.com/diakonovmakar/yatube-final/internal/pkg/validation"
)

// GroupService creates groups. There is no HTTP route for it; the CLI and
// startup seeding call it.
type GroupService struct {
	groups GroupRepository
	logger zerolog.Logger
}

// NewGroupService creates a new GroupService
func NewGroupService(groups GroupRepository, logger zerolog.Logger) *GroupService {
	return &GroupService{groups: groups, logger: logger}
}

// Create stores a group. An empty slug is derived from the title.
func (s *GroupService) Create(ctx context.Context, title, slug, description string) (*models.Group, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "title is required")
	}
	if len([]rune(title)) > 200 {
		return nil, apperrors.NewValidationError("title", "title must be at most 200 characters")
	}

	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = helpers.Slugify(title)
	}
	if slug == "" || len(slug) > helpers.MaxSlugLength || !validation.Var(slug, "slug") {
		return nil, apperrors.NewValidationError("slug", "slug must be 1-50 letters, digits, hyphens or underscores")
	}

	group := &models.Group{Title: title, Slug: slug, Description: strings.TrimSpace(description)}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("groupId", group.ID).Str("slug", group.Slug).Msg("Group created")
	return group, nil
}

// Ensure creates the group unless its slug is already taken. It reports
// whether a new group was created.
func (s *GroupService) Ensure(ctx context.Context, title, slug, description string) (bool, error) {
	_, err := s.Create(ctx, title, slug, description)
	if errors.Is(err, apperrors.ErrSlugTaken) {
		return false, nil
	}
	return err == nil, err
}

// List returns every group ordered by title.
func (s *GroupService) List(ctx context.Context) ([]*models.Group, error) {
	return s.groups.GetAll(ctx)
}
