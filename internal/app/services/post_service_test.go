package services

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diakonovmakar/yatube-final/internal/app/models"
	"github.com/diakonovmakar/yatube-final/internal/app/models/dto"
	"github.com/diakonovmakar/yatube-final/internal/pkg/apperrors"
	"github.com/diakonovmakar/yatube-final/internal/pkg/events"
	"github.com/diakonovmakar/yatube-final/internal/pkg/filestorage"
)

func TestIndex_PaginatesThirteenPosts(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	for i := 0; i < 13; i++ {
		f.post(t, author, fmt.Sprintf("post %d", i), nil)
	}

	first, err := f.posts.Index(f.ctx, 1)
	require.NoError(t, err)
	assert.Len(t, first.Page.Items, 10)
	assert.Equal(t, "post 12", first.Page.Items[0].Text, "newest first")

	second, err := f.posts.Index(f.ctx, 2)
	require.NoError(t, err)
	assert.Len(t, second.Page.Items, 3)

	clamped, err := f.posts.Index(f.ctx, 40)
	require.NoError(t, err)
	assert.Equal(t, 2, clamped.Page.Number)
}

func TestIndex_ServesStaleListUntilEvictedOrExpired(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	f.post(t, author, "old post", nil)

	page, err := f.posts.Index(f.ctx, 1)
	require.NoError(t, err)
	require.Len(t, page.Page.Items, 1)

	res, err := f.posts.CreatePost(f.ctx, author, dto.PostForm{Text: "fresh post"}, nil)
	require.NoError(t, err)
	require.Equal(t, OutcomeSaved, res.Outcome)

	page, err = f.posts.Index(f.ctx, 1)
	require.NoError(t, err)
	assert.Len(t, page.Page.Items, 1, "cached list does not include the new post")

	f.timeline.Invalidate(f.ctx)
	page, err = f.posts.Index(f.ctx, 1)
	require.NoError(t, err)
	require.Len(t, page.Page.Items, 2)
	assert.Equal(t, "fresh post", page.Page.Items[0].Text)

	f.post(t, author, "another", nil)
	page, _ = f.posts.Index(f.ctx, 1)
	assert.Len(t, page.Page.Items, 2)

	f.clock.Advance(20 * time.Second)
	page, _ = f.posts.Index(f.ctx, 1)
	assert.Len(t, page.Page.Items, 3, "list is recomputed after the TTL")
}

func TestGroupPosts(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	cats := f.group(t, "Cats", "cats")
	dogs := f.group(t, "Dogs", "dogs")
	f.post(t, author, "meow", cats)
	f.post(t, author, "woof", dogs)

	page, err := f.posts.GroupPosts(f.ctx, "cats", 1)
	require.NoError(t, err)
	require.Len(t, page.Page.Items, 1)
	assert.Equal(t, "meow", page.Page.Items[0].Text)
	assert.Equal(t, "Cats", page.Group.Title)

	_, err = f.posts.GroupPosts(f.ctx, "birds", 1)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	reader := f.user(t, "reader")
	f.post(t, author, "one", nil)
	f.post(t, author, "two", nil)
	f.post(t, reader, "not mine", nil)

	page, err := f.posts.Profile(f.ctx, nil, "author", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)
	assert.False(t, page.Following)
	assert.False(t, page.CanFollow)

	_, err = f.follows.Follow(f.ctx, reader, "author")
	require.NoError(t, err)

	page, err = f.posts.Profile(f.ctx, reader, "author", 1)
	require.NoError(t, err)
	assert.True(t, page.Following)
	assert.True(t, page.CanFollow)
	assert.Equal(t, 1, page.Followers)

	own, err := f.posts.Profile(f.ctx, author, "author", 1)
	require.NoError(t, err)
	assert.False(t, own.CanFollow)

	_, err = f.posts.Profile(f.ctx, nil, "ghost", 1)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestDetail(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	other := f.user(t, "other")
	post := f.post(t, author, "a fairly long post text", nil)
	require.NoError(t, f.stores.Comments.Create(f.ctx, &models.Comment{PostID: post.ID, AuthorID: other.ID, Text: "first"}))
	f.clock.Advance(time.Second)
	require.NoError(t, f.stores.Comments.Create(f.ctx, &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "second"}))

	page, err := f.posts.Detail(f.ctx, author, "author", post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Post a fairly long p", page.Title)
	assert.Equal(t, 1, page.Count)
	assert.True(t, page.CanEdit)
	require.Len(t, page.Comments, 2)
	assert.Equal(t, "second", page.Comments[0].Text)

	page, err = f.posts.Detail(f.ctx, other, "author", post.ID)
	require.NoError(t, err)
	assert.False(t, page.CanEdit)

	_, err = f.posts.Detail(f.ctx, nil, "other", post.ID)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound, "username in the path must be the author")

	_, err = f.posts.Detail(f.ctx, nil, "author", 999)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestCreatePost_WithGroupAndImage(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	group := f.group(t, "Cats", "cats")
	before := f.store.Posts().Count()

	form := dto.PostForm{Text: "  hello with picture  ", Group: strconv.FormatInt(group.ID, 10)}
	res, err := f.posts.CreatePost(f.ctx, author, form, gifUpload("small.gif"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSaved, res.Outcome)
	assert.Equal(t, "/", res.Redirect)
	assert.Equal(t, before+1, f.store.Posts().Count())

	posts, err := f.stores.Posts.GetByAuthor(f.ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	created := posts[0]
	assert.Equal(t, "hello with picture", created.Text)
	require.NotNil(t, created.GroupID)
	assert.Equal(t, group.ID, *created.GroupID)
	require.True(t, created.HasImage())
	assert.Equal(t, "posts/small.gif", *created.Image)

	assert.Equal(t, []string{events.SubjectPostCreated}, f.events.subjects())
}

func TestCreatePost_LongImageNameIsShortened(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")

	res, err := f.posts.CreatePost(f.ctx, author, dto.PostForm{Text: "pic"}, gifUpload(strings.Repeat("ж", 40)+strings.Repeat("a", 260)+".gif"))
	require.NoError(t, err)
	require.Equal(t, OutcomeSaved, res.Outcome)

	posts, err := f.stores.Posts.GetByAuthor(f.ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.True(t, posts[0].HasImage())
	assert.LessOrEqual(t, len(*posts[0].Image), filestorage.MaxStoredNameLength)
	assert.True(t, strings.HasSuffix(*posts[0].Image, ".gif"))
}

func TestCreatePost_InvalidInputRerenders(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	f.group(t, "Cats", "cats")

	cases := []struct {
		name   string
		form   dto.PostForm
		upload *ImageUpload
		field  string
	}{
		{"blank text", dto.PostForm{Text: "   "}, nil, "text"},
		{"non-numeric group", dto.PostForm{Text: "x", Group: "cats"}, nil, "group"},
		{"unknown group", dto.PostForm{Text: "x", Group: "999"}, nil, "group"},
		{"not an image", dto.PostForm{Text: "x"}, &ImageUpload{Filename: "a.gif", Content: bytes.NewReader([]byte("nope"))}, "image"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := f.posts.CreatePost(f.ctx, author, tc.form, tc.upload)
			require.NoError(t, err)
			assert.Equal(t, OutcomeRender, res.Outcome)
			require.NotNil(t, res.Page)
			assert.True(t, res.Page.Errors.Has(tc.field), res.Page.Errors)
			assert.Len(t, res.Page.Groups, 1)
			assert.False(t, res.Page.IsEdit)
		})
	}
	assert.Equal(t, 0, f.store.Posts().Count())
	assert.Empty(t, f.events.subjects())
}

func TestEditPost_ByAuthorUpdatesInPlace(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	cats := f.group(t, "Cats", "cats")
	dogs := f.group(t, "Dogs", "dogs")
	post := f.post(t, author, "first draft", cats)
	before := f.store.Posts().Count()

	form, err := f.posts.EditForm(f.ctx, author, "author", post.ID)
	require.NoError(t, err)
	require.Equal(t, OutcomeRender, form.Outcome)
	assert.True(t, form.Page.IsEdit)
	assert.Equal(t, "first draft", form.Page.Form.Text)
	assert.True(t, form.Page.Form.SelectedGroup(cats.ID))

	f.clock.Advance(time.Hour)
	res, err := f.posts.EditPost(f.ctx, author, "author", post.ID,
		dto.PostForm{Text: "edited", Group: strconv.FormatInt(dogs.ID, 10)}, gifUpload("new.gif"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSaved, res.Outcome)
	assert.Equal(t, fmt.Sprintf("/author/%d/", post.ID), res.Redirect)

	got, err := f.stores.Posts.GetByID(f.ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
	assert.Equal(t, dogs.ID, *got.GroupID)
	assert.Equal(t, "posts/new.gif", *got.Image)
	assert.True(t, got.PubDate.Equal(post.PubDate), "pub_date is immutable")
	assert.Equal(t, before, f.store.Posts().Count())
}

func TestEditPost_KeepsImageWhenNoneUploaded(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	res, err := f.posts.CreatePost(f.ctx, author, dto.PostForm{Text: "pic"}, gifUpload("keep.gif"))
	require.NoError(t, err)
	require.Equal(t, OutcomeSaved, res.Outcome)
	posts, _ := f.stores.Posts.GetByAuthor(f.ctx, author.ID)

	_, err = f.posts.EditPost(f.ctx, author, "author", posts[0].ID, dto.PostForm{Text: "pic, edited"}, nil)
	require.NoError(t, err)

	got, _ := f.stores.Posts.GetByID(f.ctx, posts[0].ID)
	assert.Equal(t, "posts/keep.gif", *got.Image)
	assert.Nil(t, got.GroupID)
}

func TestEditPost_NonAuthorIsDenied(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	intruder := f.user(t, "intruder")
	group := f.group(t, "Cats", "cats")
	post := f.post(t, author, "first draft", group)

	res, err := f.posts.EditForm(f.ctx, intruder, "author", post.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDenied, res.Outcome)
	assert.Nil(t, res.Page)

	res, err = f.posts.EditPost(f.ctx, intruder, "author", post.ID, dto.PostForm{Text: "hacked"}, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDenied, res.Outcome)
	assert.Equal(t, fmt.Sprintf("/author/%d/", post.ID), res.Redirect)

	got, _ := f.stores.Posts.GetByID(f.ctx, post.ID)
	assert.Equal(t, "first draft", got.Text)
	assert.Equal(t, group.ID, *got.GroupID)
	assert.Empty(t, f.events.subjects())
}

func TestEditPost_InvalidFormRerendersEdit(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	post := f.post(t, author, "first draft", nil)

	res, err := f.posts.EditPost(f.ctx, author, "author", post.ID, dto.PostForm{Text: ""}, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRender, res.Outcome)
	assert.True(t, res.Page.IsEdit)
	assert.Equal(t, post.ID, res.Page.Post.ID)
	assert.True(t, res.Page.Errors.Has("text"))
}

func TestEditPost_WrongUsernameIsNotFound(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	f.user(t, "other")
	post := f.post(t, author, "first draft", nil)

	_, err := f.posts.EditForm(f.ctx, author, "other", post.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
