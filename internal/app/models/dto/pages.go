package dto

import (
	"time"

	"github.com/diakonovmakar/yatube-final/internal/app/models"
	"github.com/diakonovmakar/yatube-final/internal/pkg/helpers"
)

// Base carries what every page template needs.
type Base struct {
	Title       string
	Path        string
	CurrentUser *models.User
	Year        int
}

// Meta exposes the embedded Base of any page.
func (b *Base) Meta() *Base { return b }

// Fill sets the request-scoped fields.
func (b *Base) Fill(user *models.User, path string, now time.Time) {
	b.CurrentUser = user
	b.Path = path
	b.Year = now.Year()
}

// IsAuthenticated is used by the navigation bar.
func (b *Base) IsAuthenticated() bool {
	return b.CurrentUser != nil
}

// PostPage is a page of posts.
type PostPage = helpers.Page[*models.Post]

// IndexPage is the home timeline.
type IndexPage struct {
	Base
	Page PostPage
}

// GroupPage lists the posts of one group.
type GroupPage struct {
	Base
	Group *models.Group
	Page  PostPage
}

// ProfilePage lists an author's posts.
type ProfilePage struct {
	Base
	Author    *models.User
	Count     int
	Following bool
	// CanFollow is false for anonymous visitors and on one's own profile.
	CanFollow  bool
	Followers  int
	Followings int
	Page       PostPage
}

// PostDetailPage shows a post with its comments and the comment form.
type PostDetailPage struct {
	Base
	Post     *models.Post
	Count    int // posts by the same author
	Comments []*models.Comment
	Form     CommentForm
	Errors   FieldErrors
	CanEdit  bool
}

// PostFormPage is shared by create and edit.
type PostFormPage struct {
	Base
	Form   PostForm
	Errors FieldErrors
	Groups []*models.Group
	Post   *models.Post
	IsEdit bool
}

// FollowPage is the followed-authors timeline.
type FollowPage struct {
	Base
	Page PostPage
}

// ErrorPage renders 404 and 500 responses.
type ErrorPage struct {
	Base
	Status int
}

// LoginPage is the login form.
type LoginPage struct {
	Base
	Form   LoginForm
	Errors FieldErrors
}

// SignupPage is the registration form.
type SignupPage struct {
	Base
	Form   SignupForm
	Errors FieldErrors
}

// StaticPage is a page with nothing but a title.
type StaticPage struct {
	Base
}
