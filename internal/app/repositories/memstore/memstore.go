// Package memstore is an in-process storage driver with the same contracts
// as the Postgres repositories: unique usernames, slugs and follow pairs,
// newest-first ordering, group links nulled on group removal. It backs tests
// and the "memory" database driver.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/diakonovmakar/yatube-final/internal/app/models"
	"github.com/diakonovmakar/yatube-final/internal/pkg/apperrors"
)

var errSelfFollow = errors.New("memstore: a user cannot follow themselves")

type followKey struct{ user, author int64 }

// Store holds every table behind one lock.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	nextID   map[string]int64
	users    map[int64]*models.User
	groups   map[int64]*models.Group
	posts    map[int64]*models.Post
	comments map[int64]*models.Comment
	follows  map[followKey]*models.Follow
}

// New creates an empty store. now stamps pub_date and created columns; nil
// means time.Now.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:      now,
		nextID:   map[string]int64{},
		users:    map[int64]*models.User{},
		groups:   map[int64]*models.Group{},
		posts:    map[int64]*models.Post{},
		comments: map[int64]*models.Comment{},
		follows:  map[followKey]*models.Follow{},
	}
}

func (s *Store) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

// Users returns the user table.
func (s *Store) Users() *UserRepository { return &UserRepository{s} }

// Groups returns the group table.
func (s *Store) Groups() *GroupRepository { return &GroupRepository{s} }

// Posts returns the post table.
func (s *Store) Posts() *PostRepository { return &PostRepository{s} }

// Comments returns the comment table.
func (s *Store) Comments() *CommentRepository { return &CommentRepository{s} }

// Follows returns the follow table.
func (s *Store) Follows() *FollowRepository { return &FollowRepository{s} }

// UserRepository is the in-memory user table.
type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == user.Username {
			return apperrors.ErrUsernameTaken
		}
	}
	user.ID = r.s.id("users")
	user.CreatedAt = r.s.now()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// GroupRepository is the in-memory group table.
type GroupRepository struct{ s *Store }

func (r *GroupRepository) Create(_ context.Context, group *models.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, g := range r.s.groups {
		if g.Slug == group.Slug {
			return apperrors.ErrSlugTaken
		}
	}
	group.ID = r.s.id("groups")
	cp := *group
	r.s.groups[group.ID] = &cp
	return nil
}

func (r *GroupRepository) GetByID(_ context.Context, id int64) (*models.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.groups[id]
	if !ok {
		return nil, apperrors.ErrGroupNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *GroupRepository) GetBySlug(_ context.Context, slug string) (*models.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, g := range r.s.groups {
		if g.Slug == slug {
			cp := *g
			return &cp, nil
		}
	}
	return nil, apperrors.ErrGroupNotFound
}

func (r *GroupRepository) GetAll(_ context.Context) ([]*models.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.Group, 0, len(r.s.groups))
	for _, g := range r.s.groups {
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes a group and detaches its posts.
func (r *GroupRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.groups[id]; !ok {
		return apperrors.ErrGroupNotFound
	}
	delete(r.s.groups, id)
	for _, p := range r.s.posts {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
		}
	}
	return nil
}

// PostRepository is the in-memory post table.
type PostRepository struct{ s *Store }

// detached copies a stored post and attaches author and group. Callers must
// hold the lock.
func (s *Store) detached(p *models.Post) *models.Post {
	cp := *p
	if p.GroupID != nil {
		gid := *p.GroupID
		cp.GroupID = &gid
		if g, ok := s.groups[gid]; ok {
			gc := *g
			cp.Group = &gc
		}
	}
	if p.Image != nil {
		img := *p.Image
		cp.Image = &img
	}
	if u, ok := s.users[p.AuthorID]; ok {
		uc := *u
		cp.Author = &uc
	}
	return &cp
}

func (s *Store) checkGroup(groupID *int64) error {
	if groupID == nil {
		return nil
	}
	if _, ok := s.groups[*groupID]; !ok {
		return apperrors.NewValidationError("group", "Select a valid choice.")
	}
	return nil
}

func (r *PostRepository) Create(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[post.AuthorID]; !ok {
		return apperrors.ErrUserNotFound
	}
	if err := r.s.checkGroup(post.GroupID); err != nil {
		return err
	}

	post.ID = r.s.id("posts")
	post.PubDate = r.s.now()
	stored := *post
	stored.Author, stored.Group = nil, nil
	r.s.posts[post.ID] = &stored
	return nil
}

func (r *PostRepository) Update(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.posts[post.ID]
	if !ok {
		return apperrors.ErrPostNotFound
	}
	if err := r.s.checkGroup(post.GroupID); err != nil {
		return err
	}
	stored.Text = post.Text
	stored.GroupID = post.GroupID
	stored.Image = post.Image
	return nil
}

func (r *PostRepository) GetByID(_ context.Context, id int64) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, apperrors.ErrPostNotFound
	}
	return r.s.detached(p), nil
}

func (r *PostRepository) filter(keep func(*models.Post) bool) []*models.Post {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*models.Post{}
	for _, p := range r.s.posts {
		if keep(p) {
			out = append(out, r.s.detached(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PubDate.Equal(out[j].PubDate) {
			return out[i].PubDate.After(out[j].PubDate)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *PostRepository) GetAll(_ context.Context) ([]*models.Post, error) {
	return r.filter(func(*models.Post) bool { return true }), nil
}

func (r *PostRepository) GetByGroup(_ context.Context, groupID int64) ([]*models.Post, error) {
	return r.filter(func(p *models.Post) bool { return p.GroupID != nil && *p.GroupID == groupID }), nil
}

func (r *PostRepository) GetByAuthor(_ context.Context, authorID int64) ([]*models.Post, error) {
	return r.filter(func(p *models.Post) bool { return p.AuthorID == authorID }), nil
}

func (r *PostRepository) GetByFollower(_ context.Context, userID int64) ([]*models.Post, error) {
	// filter takes the read lock; the follow set is read under it too.
	return r.filter(func(p *models.Post) bool {
		_, ok := r.s.follows[followKey{userID, p.AuthorID}]
		return ok
	}), nil
}

func (r *PostRepository) CountByAuthor(_ context.Context, authorID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, p := range r.s.posts {
		if p.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

// Count returns the number of stored posts.
func (r *PostRepository) Count() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.posts)
}

// CommentRepository is the in-memory comment table.
type CommentRepository struct{ s *Store }

func (r *CommentRepository) Create(_ context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[comment.PostID]; !ok {
		return apperrors.ErrPostNotFound
	}
	comment.ID = r.s.id("comments")
	comment.Created = r.s.now()
	stored := *comment
	stored.Author = nil
	r.s.comments[comment.ID] = &stored
	return nil
}

func (r *CommentRepository) GetByPost(_ context.Context, postID int64) ([]*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*models.Comment{}
	for _, c := range r.s.comments {
		if c.PostID != postID {
			continue
		}
		cp := *c
		if u, ok := r.s.users[c.AuthorID]; ok {
			uc := *u
			cp.Author = &uc
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.After(out[j].Created)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Count returns the number of stored comments.
func (r *CommentRepository) Count() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.comments)
}

// FollowRepository is the in-memory follow table.
type FollowRepository struct{ s *Store }

func (r *FollowRepository) Create(_ context.Context, userID, authorID int64) (bool, error) {
	if userID == authorID {
		return false, errSelfFollow
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := followKey{userID, authorID}
	if _, ok := r.s.follows[key]; ok {
		return false, nil
	}
	r.s.follows[key] = &models.Follow{ID: r.s.id("follows"), UserID: userID, AuthorID: authorID, CreatedAt: r.s.now()}
	return true, nil
}

func (r *FollowRepository) Delete(_ context.Context, userID, authorID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := followKey{userID, authorID}
	if _, ok := r.s.follows[key]; !ok {
		return false, nil
	}
	delete(r.s.follows, key)
	return true, nil
}

func (r *FollowRepository) Exists(_ context.Context, userID, authorID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.follows[followKey{userID, authorID}]
	return ok, nil
}

func (r *FollowRepository) CountFollowers(_ context.Context, authorID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for k := range r.s.follows {
		if k.author == authorID {
			n++
		}
	}
	return n, nil
}

func (r *FollowRepository) CountFollowing(_ context.Context, userID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for k := range r.s.follows {
		if k.user == userID {
			n++
		}
	}
	return n, nil
}

// Count returns the number of follow rows.
func (r *FollowRepository) Count() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.follows)
}
