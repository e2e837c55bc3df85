package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FollowRepository handles database operations for follows
type FollowRepository struct {
	db *pgxpool.Pool
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *pgxpool.Pool) *FollowRepository {
	return &FollowRepository{db: db}
}

// Create records that userID follows authorID. It reports false when the
// pair already existed.
func (r *FollowRepository) Create(ctx context.Context, userID, authorID int64) (bool, error) {
	sql, args, err := psql.Insert("follows").
		Columns("user_id", "author_id").
		Values(userID, authorID).
		Suffix("ON CONFLICT ON CONSTRAINT follows_user_author_key DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build follow insert: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error creating follow: %w", err)
	}
	return true, nil
}

// Delete removes the pair and reports whether a row was removed.
func (r *FollowRepository) Delete(ctx context.Context, userID, authorID int64) (bool, error) {
	sql, args, err := psql.Delete("follows").
		Where(squirrel.Eq{"user_id": userID, "author_id": authorID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build follow delete: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error deleting follow: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Exists reports whether userID follows authorID.
func (r *FollowRepository) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	n, err := r.countWhere(ctx, squirrel.Eq{"user_id": userID, "author_id": authorID})
	return n > 0, err
}

// CountFollowers returns how many users follow authorID.
func (r *FollowRepository) CountFollowers(ctx context.Context, authorID int64) (int, error) {
	return r.countWhere(ctx, squirrel.Eq{"author_id": authorID})
}

// CountFollowing returns how many authors userID follows.
func (r *FollowRepository) CountFollowing(ctx context.Context, userID int64) (int, error) {
	return r.countWhere(ctx, squirrel.Eq{"user_id": userID})
}

func (r *FollowRepository) countWhere(ctx context.Context, where squirrel.Eq) (int, error) {
	sql, args, err := psql.Select("COUNT(*)").From("follows").Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build follow count: %w", err)
	}

	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting follows: %w", err)
	}
	return n, nil
}
