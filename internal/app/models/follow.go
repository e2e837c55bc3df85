package models

import "time"

// Follow means UserID sees AuthorID's posts in the follow timeline.
// A (UserID, AuthorID) pair is unique and UserID never equals AuthorID.
type Follow struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	AuthorID  int64     `json:"authorId" db:"author_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
