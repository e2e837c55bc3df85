package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diakonovmakar/yatube-final/internal/app/models"
	"github.com/diakonovmakar/yatube-final/internal/pkg/apperrors"
	"github.com/diakonovmakar/yatube-final/internal/pkg/dberrors"
)

// CommentRepository handles database operations for comments
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment and fills in its ID and creation time.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	sql, args, err := psql.Insert("comments").
		Columns("text", "post_id", "author_id").
		Values(comment.Text, comment.PostID, comment.AuthorID).
		Suffix("RETURNING id, created").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build comment insert: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&comment.ID, &comment.Created); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrPostNotFound
		}
		return fmt.Errorf("error creating comment: %w", err)
	}
	return nil
}

// GetByPost lists the comments of a post with their authors, newest first.
func (r *CommentRepository) GetByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	sql, args, err := psql.Select(
		"c.id", "c.text", "c.created", "c.post_id", "c.author_id",
		"u.username", "u.first_name", "u.last_name", "u.created_at",
	).
		From("comments c").
		Join("users u ON u.id = c.author_id").
		Where(squirrel.Eq{"c.post_id": postID}).
		OrderBy("c.created DESC", "c.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build comment query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		var (
			c      models.Comment
			author models.User
		)
		if err := rows.Scan(&c.ID, &c.Text, &c.Created, &c.PostID, &c.AuthorID,
			&author.Username, &author.FirstName, &author.LastName, &author.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning comment: %w", err)
		}
		author.ID = c.AuthorID
		c.Author = &author
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
