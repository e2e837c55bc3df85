package services

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/diakonovmakar/yatube-final/internal/app/auth"
	"github.com/diakonovmakar/yatube-final/internal/app/models"
	"github.com/diakonovmakar/yatube-final/internal/app/repositories/memstore"
	pkgauth "github.com/diakonovmakar/yatube-final/internal/pkg/auth"
	"github.com/diakonovmakar/yatube-final/internal/pkg/cache"
	"github.com/diakonovmakar/yatube-final/internal/pkg/filestorage"
)

// smallGIF is a 2x1 pixel GIF.
var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

type published struct {
	subject string
	event   interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, event interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{subject, event})
}

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.subject
	}
	return out
}

type fixture struct {
	ctx      context.Context
	clock    *cache.ManualClock
	store    *memstore.Store
	stores   Stores
	timeline *cache.MemoryTimeline
	events   *recordingPublisher
	posts    *PostService
	comments *CommentService
	follows  *FollowService
	auths    *AuthService
	groups   *GroupService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pkgauth.BcryptCost = bcrypt.MinCost

	clock := cache.NewManualClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	store := memstore.New(clock.Now)
	stores := Stores{
		Users:    store.Users(),
		Groups:   store.Groups(),
		Posts:    store.Posts(),
		Comments: store.Comments(),
		Follows:  store.Follows(),
	}
	images, err := filestorage.NewLocalStorage(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	timeline := cache.NewMemoryTimeline(cache.DefaultTTL, clock)
	publisher := &recordingPublisher{}
	authz := auth.NewAuthorizationService()
	sessions := pkgauth.NewSessionManager(pkgauth.SessionConfig{SecretKey: "test", Expiration: time.Hour, Issuer: "yatube"})

	posts := NewPostService(stores, timeline, images, authz, publisher, 10, zerolog.Nop())
	return &fixture{
		ctx:      context.Background(),
		clock:    clock,
		store:    store,
		stores:   stores,
		timeline: timeline,
		events:   publisher,
		posts:    posts,
		comments: NewCommentService(stores, posts, publisher, zerolog.Nop()),
		follows:  NewFollowService(stores, authz, publisher, 10, zerolog.Nop()),
		auths:    NewAuthService(stores.Users, sessions, zerolog.Nop()),
		groups:   NewGroupService(stores.Groups, zerolog.Nop()),
	}
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Password: "unused"}
	require.NoError(t, f.stores.Users.Create(f.ctx, u))
	return u
}

func (f *fixture) group(t *testing.T, title, slug string) *models.Group {
	t.Helper()
	g := &models.Group{Title: title, Slug: slug}
	require.NoError(t, f.stores.Groups.Create(f.ctx, g))
	return g
}

func (f *fixture) post(t *testing.T, author *models.User, text string, group *models.Group) *models.Post {
	t.Helper()
	p := &models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(t, f.stores.Posts.Create(f.ctx, p))
	f.clock.Advance(time.Second)
	return p
}

func gifUpload(name string) *ImageUpload {
	return &ImageUpload{Filename: name, Content: bytes.NewReader(smallGIF)}
}
