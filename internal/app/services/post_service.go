package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/diakonovmakar/yatube-final/internal/app/auth"
	"github.com/diakonovmakar/yatube-final/internal/app/models"
	"github.com/diakonovmakar/yatube-final/internal/app/models/dto"
	"github.com/diakonovmakar/yatube-final/internal/app/urls"
	"github.com/diakonovmakar/yatube-final/internal/pkg/apperrors"
	"github.com/diakonovmakar/yatube-final/internal/pkg/cache"
	"github.com/diakonovmakar/yatube-final/internal/pkg/events"
	"github.com/diakonovmakar/yatube-final/internal/pkg/helpers"
	"github.com/diakonovmakar/yatube-final/internal/pkg/validation"
)

// PostService serves the timelines and the post create/edit forms.
type PostService struct {
	stores   Stores
	timeline cache.Timeline
	images   ImageStorage
	authz    *auth.AuthorizationService
	events   events.Publisher
	pageSize int
	logger   zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(
	stores Stores,
	timeline cache.Timeline,
	images ImageStorage,
	authz *auth.AuthorizationService,
	publisher events.Publisher,
	pageSize int,
	logger zerolog.Logger,
) *PostService {
	if pageSize <= 0 {
		pageSize = helpers.DefaultPageSize
	}
	return &PostService{
		stores:   stores,
		timeline: timeline,
		images:   images,
		authz:    authz,
		events:   publisher,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Index returns a page of the home timeline. The full list comes from the
// timeline cache and is recomputed only on a miss; writes never invalidate
// it.
func (s *PostService) Index(ctx context.Context, page int) (*dto.IndexPage, error) {
	posts, ok := s.timeline.Get(ctx)
	if !ok {
		var err error
		posts, err = s.stores.Posts.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load timeline: %w", err)
		}
		s.timeline.Set(ctx, posts)
		s.logger.Debug().Int("posts", len(posts)).Msg("Home timeline recomputed")
	}

	return &dto.IndexPage{
		Base: dto.Base{Title: "Latest updates"},
		Page: helpers.Paginate(posts, page, s.pageSize),
	}, nil
}

// GroupPosts returns a page of a group's posts.
func (s *PostService) GroupPosts(ctx context.Context, slug string, page int) (*dto.GroupPage, error) {
	group, err := s.stores.Groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	posts, err := s.stores.Posts.GetByGroup(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group posts: %w", err)
	}

	return &dto.GroupPage{
		Base:  dto.Base{Title: "Posts in " + group.String()},
		Group: group,
		Page:  helpers.Paginate(posts, page, s.pageSize),
	}, nil
}

// Profile returns a page of an author's posts. viewer may be nil.
func (s *PostService) Profile(ctx context.Context, viewer *models.User, username string, page int) (*dto.ProfilePage, error) {
	author, err := s.stores.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	posts, err := s.stores.Posts.GetByAuthor(ctx, author.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load author posts: %w", err)
	}

	following := false
	if viewer != nil {
		if following, err = s.stores.Follows.Exists(ctx, viewer.ID, author.ID); err != nil {
			return nil, fmt.Errorf("failed to check follow: %w", err)
		}
	}

	followers, err := s.stores.Follows.CountFollowers(ctx, author.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count followers: %w", err)
	}
	followings, err := s.stores.Follows.CountFollowing(ctx, author.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count followings: %w", err)
	}

	return &dto.ProfilePage{
		Base:       dto.Base{Title: "Profile of " + author.FullName()},
		Author:     author,
		Count:      len(posts),
		Following:  following,
		CanFollow:  s.authz.CanFollow(viewer, author),
		Followers:  followers,
		Followings: followings,
		Page:       helpers.Paginate(posts, page, s.pageSize),
	}, nil
}

// findPost resolves a post that must belong to the author named in the URL.
func (s *PostService) findPost(ctx context.Context, username string, postID int64) (*models.Post, error) {
	post, err := s.stores.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Author == nil || post.Author.Username != username {
		return nil, apperrors.ErrPostNotFound
	}
	return post, nil
}

// Detail returns the post page with its comments and an empty comment form.
func (s *PostService) Detail(ctx context.Context, viewer *models.User, username string, postID int64) (*dto.PostDetailPage, error) {
	post, err := s.findPost(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	return s.detailPage(ctx, viewer, post)
}

func (s *PostService) detailPage(ctx context.Context, viewer *models.User, post *models.Post) (*dto.PostDetailPage, error) {
	comments, err := s.stores.Comments.GetByPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	count, err := s.stores.Posts.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("failed to count author posts: %w", err)
	}

	return &dto.PostDetailPage{
		Base:     dto.Base{Title: "Post " + post.String()},
		Post:     post,
		Count:    count,
		Comments: comments,
		CanEdit:  s.authz.CanModifyPost(viewer, post),
	}, nil
}

func (s *PostService) formPage(ctx context.Context, form dto.PostForm, errs dto.FieldErrors) (*dto.PostFormPage, error) {
	groups, err := s.stores.Groups.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	return &dto.PostFormPage{
		Base:   dto.Base{Title: "New post"},
		Form:   form,
		Errors: errs,
		Groups: groups,
	}, nil
}

// CreateForm returns the blank create form.
func (s *PostService) CreateForm(ctx context.Context) (*dto.PostFormPage, error) {
	return s.formPage(ctx, dto.PostForm{}, nil)
}

// clean validates the form and resolves the chosen group.
func (s *PostService) clean(ctx context.Context, form *dto.PostForm) (*int64, dto.FieldErrors, error) {
	form.Normalize()
	errs := validation.Struct(form)
	if errs.HasErrors() {
		return nil, errs, nil
	}

	groupID, err := form.GroupID()
	if err != nil {
		return nil, dto.NewFieldErrors().Add("group", "Select a valid choice."), nil
	}
	if groupID != nil {
		if _, err := s.stores.Groups.GetByID(ctx, *groupID); err != nil {
			if apperrors.IsNotFound(err) {
				return nil, dto.NewFieldErrors().Add("group", "Select a valid choice."), nil
			}
			return nil, nil, err
		}
	}
	return groupID, nil, nil
}

// storeImage saves an upload; validation failures come back as field errors.
func (s *PostService) storeImage(upload *ImageUpload) (*string, dto.FieldErrors, error) {
	if upload == nil {
		return nil, nil, nil
	}
	name, err := s.images.SaveImage(upload.Filename, upload.Content)
	if err != nil {
		if errs, ok := fieldError(err); ok {
			return nil, errs, nil
		}
		return nil, nil, err
	}
	return &name, nil, nil
}

func (s *PostService) discardImage(name *string) {
	if name == nil {
		return
	}
	if err := s.images.DeleteFile(*name); err != nil {
		s.logger.Warn().Err(err).Str("image", *name).Msg("Failed to remove orphaned image")
	}
}

// CreatePost validates and stores a new post by user, then redirects home.
func (s *PostService) CreatePost(ctx context.Context, user *models.User, form dto.PostForm, upload *ImageUpload) (*Result[dto.PostFormPage], error) {
	groupID, errs, err := s.clean(ctx, &form)
	if err != nil {
		return nil, err
	}
	if errs.HasErrors() {
		return s.rerenderCreate(ctx, form, errs)
	}

	image, errs, err := s.storeImage(upload)
	if err != nil {
		return nil, err
	}
	if errs.HasErrors() {
		return s.rerenderCreate(ctx, form, errs)
	}

	post := &models.Post{Text: form.Text, AuthorID: user.ID, GroupID: groupID, Image: image}
	if err := s.stores.Posts.Create(ctx, post); err != nil {
		s.discardImage(image)
		if errs, ok := fieldError(err); ok {
			return s.rerenderCreate(ctx, form, errs)
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.logger.Info().Int64("postId", post.ID).Str("author", user.Username).Msg("Post created")
	s.events.Publish(ctx, events.SubjectPostCreated, events.PostEvent{
		PostID: post.ID, Author: user.Username, GroupID: post.GroupID, HasImage: post.HasImage(), Timestamp: post.PubDate,
	})
	return saved[dto.PostFormPage](urls.Index), nil
}

func (s *PostService) rerenderCreate(ctx context.Context, form dto.PostForm, errs dto.FieldErrors) (*Result[dto.PostFormPage], error) {
	page, err := s.formPage(ctx, form, errs)
	if err != nil {
		return nil, err
	}
	return render(page), nil
}

// editable resolves the post and checks authorship. A nil post with a
// result means the caller should return that result.
func (s *PostService) editable(ctx context.Context, user *models.User, username string, postID int64) (*models.Post, *Result[dto.PostFormPage], error) {
	post, err := s.findPost(ctx, username, postID)
	if err != nil {
		return nil, nil, err
	}
	if !s.authz.CanModifyPost(user, post) {
		s.logger.Debug().Int64("postId", post.ID).Msg("Edit denied to non-author")
		return nil, denied[dto.PostFormPage](urls.Post(username, postID)), nil
	}
	return post, nil, nil
}

func (s *PostService) editPage(ctx context.Context, post *models.Post, form dto.PostForm, errs dto.FieldErrors) (*Result[dto.PostFormPage], error) {
	page, err := s.formPage(ctx, form, errs)
	if err != nil {
		return nil, err
	}
	page.Title = "Edit post"
	page.Post = post
	page.IsEdit = true
	return render(page), nil
}

// EditForm returns the form prefilled with the post, or Denied for anyone
// but the author.
func (s *PostService) EditForm(ctx context.Context, user *models.User, username string, postID int64) (*Result[dto.PostFormPage], error) {
	post, deny, err := s.editable(ctx, user, username, postID)
	if err != nil || deny != nil {
		return deny, err
	}

	form := dto.PostForm{Text: post.Text}
	if post.GroupID != nil {
		form.Group = fmt.Sprint(*post.GroupID)
	}
	return s.editPage(ctx, post, form, nil)
}

// EditPost updates text, group and (when uploaded) image in place. The id
// and pub_date are preserved.
func (s *PostService) EditPost(ctx context.Context, user *models.User, username string, postID int64, form dto.PostForm, upload *ImageUpload) (*Result[dto.PostFormPage], error) {
	post, deny, err := s.editable(ctx, user, username, postID)
	if err != nil || deny != nil {
		return deny, err
	}

	groupID, errs, err := s.clean(ctx, &form)
	if err != nil {
		return nil, err
	}
	if errs.HasErrors() {
		return s.editPage(ctx, post, form, errs)
	}

	image, errs, err := s.storeImage(upload)
	if err != nil {
		return nil, err
	}
	if errs.HasErrors() {
		return s.editPage(ctx, post, form, errs)
	}

	updated := *post
	updated.Text = form.Text
	updated.GroupID = groupID
	if image != nil {
		updated.Image = image
	}
	if err := s.stores.Posts.Update(ctx, &updated); err != nil {
		s.discardImage(image)
		if errs, ok := fieldError(err); ok {
			return s.editPage(ctx, post, form, errs)
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.logger.Info().Int64("postId", post.ID).Str("author", user.Username).Msg("Post updated")
	s.events.Publish(ctx, events.SubjectPostUpdated, events.PostEvent{
		PostID: post.ID, Author: user.Username, GroupID: updated.GroupID, HasImage: updated.HasImage(), Timestamp: post.PubDate,
	})
	return saved[dto.PostFormPage](urls.Post(username, postID)), nil
}
