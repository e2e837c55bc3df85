package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// psql builds statements with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository    *UserRepository
	GroupRepository   *GroupRepository
	PostRepository    *PostRepository
	CommentRepository *CommentRepository
	FollowRepository  *FollowRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:    NewUserRepository(db),
		GroupRepository:   NewGroupRepository(db),
		PostRepository:    NewPostRepository(db),
		CommentRepository: NewCommentRepository(db),
		FollowRepository:  NewFollowRepository(db),
	}
}
