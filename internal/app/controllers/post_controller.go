package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/diakonovmakar/yatube-final/internal/app/models/dto"
	"github.com/diakonovmakar/yatube-final/internal/app/services"
	"github.com/diakonovmakar/yatube-final/internal/app/views"
	"github.com/diakonovmakar/yatube-final/internal/middleware"
	"github.com/diakonovmakar/yatube-final/internal/pkg/apperrors"
	"github.com/diakonovmakar/yatube-final/internal/pkg/helpers"
)

// PostController serves the timelines, post pages and post forms
type PostController struct {
	posts    *services.PostService
	comments *services.CommentService
	logger   zerolog.Logger
}

// NewPostController creates a new PostController
func NewPostController(posts *services.PostService, comments *services.CommentService, logger zerolog.Logger) *PostController {
	return &PostController{posts: posts, comments: comments, logger: logger}
}

// Index handles GET /
func (c *PostController) Index(ctx *gin.Context) {
	page, err := c.posts.Index(ctx.Request.Context(), helpers.ParsePage(ctx))
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	html(ctx, views.Index, page)
}

// GroupPosts handles GET /group/:slug/
func (c *PostController) GroupPosts(ctx *gin.Context) {
	page, err := c.posts.GroupPosts(ctx.Request.Context(), ctx.Param("slug"), helpers.ParsePage(ctx))
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	html(ctx, views.GroupList, page)
}

// Profile handles GET /:username/
func (c *PostController) Profile(ctx *gin.Context) {
	viewer := middleware.CurrentUser(ctx)
	page, err := c.posts.Profile(ctx.Request.Context(), viewer, ctx.Param("username"), helpers.ParsePage(ctx))
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	html(ctx, views.Profile, page)
}

// Detail handles GET /:username/:post_id/
func (c *PostController) Detail(ctx *gin.Context) {
	id, err := postID(ctx)
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}

	page, err := c.posts.Detail(ctx.Request.Context(), middleware.CurrentUser(ctx), ctx.Param("username"), id)
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	html(ctx, views.PostDetail, page)
}

// AddComment handles POST /:username/:post_id/ and
// POST /:username/:post_id/comment/
func (c *PostController) AddComment(ctx *gin.Context) {
	id, err := postID(ctx)
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}

	user := middleware.CurrentUser(ctx)
	if user == nil {
		middleware.HandleError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	var form dto.CommentForm
	if err := middleware.BindForm(ctx, &form); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid comment payload")
		middleware.HandleError(ctx, apperrors.Wrap(apperrors.ErrValidationFailed, "%v", err))
		return
	}

	res, err := c.comments.AddComment(ctx.Request.Context(), user, ctx.Param("username"), id, form)
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	respond(ctx, views.PostDetail, res)
}

// CreateForm handles GET /new/
func (c *PostController) CreateForm(ctx *gin.Context) {
	page, err := c.posts.CreateForm(ctx.Request.Context())
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	html(ctx, views.CreatePost, page)
}

// CreatePost handles POST /new/
func (c *PostController) CreatePost(ctx *gin.Context) {
	form, upload, done, ok := c.bindPostForm(ctx)
	if !ok {
		return
	}
	defer done()

	res, err := c.posts.CreatePost(ctx.Request.Context(), middleware.CurrentUser(ctx), form, upload)
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	respond(ctx, views.CreatePost, res)
}

// EditForm handles GET /:username/:post_id/edit/
func (c *PostController) EditForm(ctx *gin.Context) {
	id, err := postID(ctx)
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}

	res, err := c.posts.EditForm(ctx.Request.Context(), middleware.CurrentUser(ctx), ctx.Param("username"), id)
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	respond(ctx, views.CreatePost, res)
}

// EditPost handles POST /:username/:post_id/edit/
func (c *PostController) EditPost(ctx *gin.Context) {
	id, err := postID(ctx)
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}

	form, upload, done, ok := c.bindPostForm(ctx)
	if !ok {
		return
	}
	defer done()

	res, err := c.posts.EditPost(ctx.Request.Context(), middleware.CurrentUser(ctx), ctx.Param("username"), id, form, upload)
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	respond(ctx, views.CreatePost, res)
}

func (c *PostController) bindPostForm(ctx *gin.Context) (dto.PostForm, *services.ImageUpload, func(), bool) {
	var form dto.PostForm
	if err := middleware.BindForm(ctx, &form); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid post payload")
		middleware.HandleError(ctx, apperrors.Wrap(apperrors.ErrValidationFailed, "%v", err))
		return form, nil, nil, false
	}

	upload, done, err := imageUpload(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Unreadable image upload")
		middleware.HandleError(ctx, apperrors.Wrap(apperrors.ErrValidationFailed, "%v", err))
		return form, nil, nil, false
	}
	return form, upload, done, true
}
