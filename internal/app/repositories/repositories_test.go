package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diakonovmakar/yatube-final/internal/app/migrations"
	"github.com/diakonovmakar/yatube-final/internal/app/models"
	"github.com/diakonovmakar/yatube-final/internal/pkg/apperrors"
)

// testPool connects to YATUBE_TEST_DATABASE_URL, migrates, and empties every
// table. Tests are skipped when the variable is not set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("YATUBE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("YATUBE_TEST_DATABASE_URL not set, skipping Postgres test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.NewMigrator(pool, zerolog.Nop()).Migrate(ctx))
	_, err = pool.Exec(ctx, `TRUNCATE follows, comments, posts, groups, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func mustUser(t *testing.T, repo *UserRepository, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Password: "x"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository(t *testing.T) {
	repos := NewRepositories(testPool(t))
	ctx := context.Background()

	u := mustUser(t, repos.UserRepository, "leo")
	assert.NotZero(t, u.ID)

	got, err := repos.UserRepository.GetByUsername(ctx, "leo")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	err = repos.UserRepository.Create(ctx, &models.User{Username: "leo", Password: "y"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = repos.UserRepository.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestGroupRepository(t *testing.T) {
	repos := NewRepositories(testPool(t))
	ctx := context.Background()

	g := &models.Group{Title: "Cats", Slug: "cats", Description: "meow"}
	require.NoError(t, repos.GroupRepository.Create(ctx, g))

	err := repos.GroupRepository.Create(ctx, &models.Group{Title: "Other", Slug: "cats"})
	assert.ErrorIs(t, err, apperrors.ErrSlugTaken)

	got, err := repos.GroupRepository.GetBySlug(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, "meow", got.Description)

	all, err := repos.GroupRepository.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPostRepository(t *testing.T) {
	pool := testPool(t)
	repos := NewRepositories(pool)
	ctx := context.Background()

	author := mustUser(t, repos.UserRepository, "author")
	g := &models.Group{Title: "Cats", Slug: "cats"}
	require.NoError(t, repos.GroupRepository.Create(ctx, g))

	image := "posts/cat.gif"
	first := &models.Post{Text: "first post", AuthorID: author.ID, GroupID: &g.ID, Image: &image}
	require.NoError(t, repos.PostRepository.Create(ctx, first))
	second := &models.Post{Text: "second post", AuthorID: author.ID}
	require.NoError(t, repos.PostRepository.Create(ctx, second))

	all, err := repos.PostRepository.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")
	assert.Equal(t, "author", all[1].Author.Username)
	assert.Equal(t, "cats", all[1].Group.Slug)
	assert.Nil(t, all[0].Group)

	byGroup, err := repos.PostRepository.GetByGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, byGroup, 1)

	n, err := repos.PostRepository.CountByAuthor(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	second.Text = "edited"
	second.GroupID = &g.ID
	require.NoError(t, repos.PostRepository.Update(ctx, second))
	got, err := repos.PostRepository.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
	assert.Equal(t, second.PubDate.Unix(), got.PubDate.Unix())

	missing := int64(4242)
	err = repos.PostRepository.Create(ctx, &models.Post{Text: "x", AuthorID: author.ID, GroupID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, g.ID)
	require.NoError(t, err)
	got, err = repos.PostRepository.GetByID(ctx, first.ID)
	require.NoError(t, err, "deleting a group keeps its posts")
	assert.Nil(t, got.GroupID)
}

func TestCommentRepository(t *testing.T) {
	repos := NewRepositories(testPool(t))
	ctx := context.Background()

	author := mustUser(t, repos.UserRepository, "author")
	reader := mustUser(t, repos.UserRepository, "reader")
	post := &models.Post{Text: "post", AuthorID: author.ID}
	require.NoError(t, repos.PostRepository.Create(ctx, post))

	require.NoError(t, repos.CommentRepository.Create(ctx, &models.Comment{Text: "one", PostID: post.ID, AuthorID: reader.ID}))
	require.NoError(t, repos.CommentRepository.Create(ctx, &models.Comment{Text: "two", PostID: post.ID, AuthorID: author.ID}))

	comments, err := repos.CommentRepository.GetByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "two", comments[0].Text)
	assert.Equal(t, "reader", comments[1].Author.Username)
}

func TestFollowRepository(t *testing.T) {
	repos := NewRepositories(testPool(t))
	ctx := context.Background()

	reader := mustUser(t, repos.UserRepository, "reader")
	author := mustUser(t, repos.UserRepository, "author")
	post := &models.Post{Text: "post", AuthorID: author.ID}
	require.NoError(t, repos.PostRepository.Create(ctx, post))

	created, err := repos.FollowRepository.Create(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repos.FollowRepository.Create(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, created, "second follow is a no-op")

	n, err := repos.FollowRepository.CountFollowers(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	feed, err := repos.PostRepository.GetByFollower(ctx, reader.ID)
	require.NoError(t, err)
	assert.Len(t, feed, 1)

	removed, err := repos.FollowRepository.Delete(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	exists, err := repos.FollowRepository.Exists(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repos.FollowRepository.Create(ctx, reader.ID, reader.ID)
	assert.Error(t, err, "self-follow violates the check constraint")
}
