package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diakonovmakar/yatube-final/internal/app/models"
	"github.com/diakonovmakar/yatube-final/internal/pkg/apperrors"
	"github.com/diakonovmakar/yatube-final/internal/pkg/dberrors"
)

const slugConstraint = "groups_slug_key"

// GroupRepository handles database operations for groups
type GroupRepository struct {
	db *pgxpool.Pool
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create creates a new group
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	sql, args, err := psql.Insert("groups").
		Columns("title", "slug", "description").
		Values(group.Title, group.Slug, group.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build group insert: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&group.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, slugConstraint) {
			return apperrors.ErrSlugTaken
		}
		return fmt.Errorf("error creating group: %w", err)
	}
	return nil
}

// GetByID retrieves a group by ID
func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetBySlug retrieves a group by its slug
func (r *GroupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return r.getOne(ctx, squirrel.Eq{"slug": slug})
}

func (r *GroupRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Group, error) {
	sql, args, err := psql.Select("id", "title", "slug", "description").From("groups").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build group query: %w", err)
	}

	var g models.Group
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, fmt.Errorf("error retrieving group: %w", err)
	}
	return &g, nil
}

// GetAll retrieves all groups ordered by title
func (r *GroupRepository) GetAll(ctx context.Context) ([]*models.Group, error) {
	sql, args, err := psql.Select("id", "title", "slug", "description").From("groups").OrderBy("title", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build group list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing groups: %w", err)
	}
	defer rows.Close()

	groups := []*models.Group{}
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, err
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}
