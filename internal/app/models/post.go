package models

import "time"

// postPreviewLength is how many characters of the text String() shows
const postPreviewLength = 15

// Post defines the post model based on the 'posts' table
type Post struct {
	ID       int64     `json:"id" db:"id"`
	Text     string    `json:"text" db:"text"`
	PubDate  time.Time `json:"pubDate" db:"pub_date"`
	AuthorID int64     `json:"authorId" db:"author_id"`
	GroupID  *int64    `json:"groupId,omitempty" db:"group_id"` // NULL when ungrouped or the group was deleted
	Image    *string   `json:"image,omitempty" db:"image"`      // relative to the media root, e.g. posts/cat.gif

	// Related entities
	Author *User  `json:"author,omitempty"`
	Group  *Group `json:"group,omitempty"`
}

func (p *Post) String() string {
	return Truncate(p.Text, postPreviewLength)
}

// HasImage reports whether an image is attached.
func (p *Post) HasImage() bool {
	return p.Image != nil && *p.Image != ""
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
