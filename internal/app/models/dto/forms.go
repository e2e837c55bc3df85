package dto

import (
	"strconv"
	"strings"
)

// PostForm is the create/edit post submission. The image travels as a
// separate multipart file.
type PostForm struct {
	Text  string `form:"text" validate:"required"`
	Group string `form:"group" validate:"omitempty,number"`
}

// Normalize trims whitespace the way the form fields are cleaned.
func (f *PostForm) Normalize() {
	f.Text = strings.TrimSpace(f.Text)
	f.Group = strings.TrimSpace(f.Group)
}

// GroupID parses the selected group; an empty choice means no group.
func (f PostForm) GroupID() (*int64, error) {
	if f.Group == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(f.Group, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// SelectedGroup reports whether id is the current choice, for <select>.
func (f PostForm) SelectedGroup(id int64) bool {
	return f.Group == strconv.FormatInt(id, 10)
}

// CommentForm is the comment submission on the post page.
type CommentForm struct {
	Text string `form:"text" validate:"required"`
}

func (f *CommentForm) Normalize() {
	f.Text = strings.TrimSpace(f.Text)
}

// LoginForm authenticates an existing user.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

func (f *LoginForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Next = strings.TrimSpace(f.Next)
}

// SignupForm registers a user. Passwords are never trimmed.
type SignupForm struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Username  string `form:"username" validate:"required,max=150,username"`
	Password1 string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

func (f *SignupForm) Normalize() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Username = strings.TrimSpace(f.Username)
}
