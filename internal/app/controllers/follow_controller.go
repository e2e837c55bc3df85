package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/diakonovmakar/yatube-final/internal/app/services"
	"github.com/diakonovmakar/yatube-final/internal/app/views"
	"github.com/diakonovmakar/yatube-final/internal/middleware"
	"github.com/diakonovmakar/yatube-final/internal/pkg/helpers"
)

// FollowController handles subscriptions between users
type FollowController struct {
	follows *services.FollowService
	logger  zerolog.Logger
}

// NewFollowController creates a new FollowController
func NewFollowController(follows *services.FollowService, logger zerolog.Logger) *FollowController {
	return &FollowController{follows: follows, logger: logger}
}

// Index handles GET /follow/
func (c *FollowController) Index(ctx *gin.Context) {
	page, err := c.follows.Index(ctx.Request.Context(), middleware.CurrentUser(ctx), helpers.ParsePage(ctx))
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	html(ctx, views.FollowIndex, page)
}

// Follow handles GET /:username/follow/
func (c *FollowController) Follow(ctx *gin.Context) {
	redirect, err := c.follows.Follow(ctx.Request.Context(), middleware.CurrentUser(ctx), ctx.Param("username"))
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, redirect)
}

// Unfollow handles GET /:username/unfollow/
func (c *FollowController) Unfollow(ctx *gin.Context) {
	redirect, err := c.follows.Unfollow(ctx.Request.Context(), middleware.CurrentUser(ctx), ctx.Param("username"))
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, redirect)
}
