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

// PostRepository handles database operations for posts
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// selectPostDetailsQuery joins every post with its author and optional group,
// newest first.
func (r *PostRepository) selectPostDetailsQuery() squirrel.SelectBuilder {
	return psql.Select(
		"p.id", "p.text", "p.pub_date", "p.author_id", "p.group_id", "p.image",
		"u.username", "u.first_name", "u.last_name", "u.created_at",
		"g.title", "g.slug", "g.description",
	).
		From("posts p").
		Join("users u ON u.id = p.author_id").
		LeftJoin("groups g ON g.id = p.group_id").
		OrderBy("p.pub_date DESC", "p.id DESC")
}

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		p                        models.Post
		author                   models.User
		title, slug, description *string
	)
	err := row.Scan(
		&p.ID, &p.Text, &p.PubDate, &p.AuthorID, &p.GroupID, &p.Image,
		&author.Username, &author.FirstName, &author.LastName, &author.CreatedAt,
		&title, &slug, &description,
	)
	if err != nil {
		return nil, err
	}

	author.ID = p.AuthorID
	p.Author = &author
	if p.GroupID != nil && slug != nil {
		p.Group = &models.Group{ID: *p.GroupID, Title: *title, Slug: *slug, Description: *description}
	}
	return &p, nil
}

func (r *PostRepository) list(ctx context.Context, qb squirrel.SelectBuilder) ([]*models.Post, error) {
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build post query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Create inserts a post. PubDate is assigned by the database.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	sql, args, err := psql.Insert("posts").
		Columns("text", "author_id", "group_id", "image").
		Values(post.Text, post.AuthorID, post.GroupID, post.Image).
		Suffix("RETURNING id, pub_date").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build post insert: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&post.ID, &post.PubDate); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewValidationError("group", "Select a valid choice.")
		}
		return fmt.Errorf("error creating post: %w", err)
	}
	return nil
}

// Update rewrites text, group and image. ID, author and pub_date never change.
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	sql, args, err := psql.Update("posts").
		Set("text", post.Text).
		Set("group_id", post.GroupID).
		Set("image", post.Image).
		Where(squirrel.Eq{"id": post.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build post update: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewValidationError("group", "Select a valid choice.")
		}
		return fmt.Errorf("error updating post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

// GetByID retrieves a post with its author and group.
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	sql, args, err := r.selectPostDetailsQuery().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build post query: %w", err)
	}

	p, err := scanPost(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("error retrieving post: %w", err)
	}
	return p, nil
}

// GetAll returns every post, newest first.
func (r *PostRepository) GetAll(ctx context.Context) ([]*models.Post, error) {
	return r.list(ctx, r.selectPostDetailsQuery())
}

// GetByGroup returns the posts of a group, newest first.
func (r *PostRepository) GetByGroup(ctx context.Context, groupID int64) ([]*models.Post, error) {
	return r.list(ctx, r.selectPostDetailsQuery().Where(squirrel.Eq{"p.group_id": groupID}))
}

// GetByAuthor returns the posts of an author, newest first.
func (r *PostRepository) GetByAuthor(ctx context.Context, authorID int64) ([]*models.Post, error) {
	return r.list(ctx, r.selectPostDetailsQuery().Where(squirrel.Eq{"p.author_id": authorID}))
}

// GetByFollower returns posts by every author userID follows, newest first.
func (r *PostRepository) GetByFollower(ctx context.Context, userID int64) ([]*models.Post, error) {
	return r.list(ctx, r.selectPostDetailsQuery().
		Join("follows f ON f.author_id = p.author_id").
		Where(squirrel.Eq{"f.user_id": userID}))
}

// CountByAuthor returns how many posts an author has written.
func (r *PostRepository) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	sql, args, err := psql.Select("COUNT(*)").From("posts").Where(squirrel.Eq{"author_id": authorID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting posts: %w", err)
	}
	return n, nil
}
