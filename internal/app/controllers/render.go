// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/diakonovmakar/yatube-final/internal/app/services"
	"github.com/diakonovmakar/yatube-final/internal/app/views"
	"github.com/diakonovmakar/yatube-final/internal/middleware"
	"github.com/diakonovmakar/yatube-final/internal/pkg/apperrors"
)

func html(ctx *gin.Context, name string, page views.Page) {
	views.HTML(ctx, http.StatusOK, name, page, middleware.CurrentUser(ctx))
}

// respond renders the page of a form result or follows its redirect.
func respond[P any](ctx *gin.Context, name string, res *services.Result[P]) {
	if res.Outcome == services.OutcomeRender {
		html(ctx, name, any(res.Page).(views.Page))
		return
	}
	ctx.Redirect(http.StatusFound, res.Redirect)
}

// postID reads the :post_id path parameter. Anything that is not a
// positive integer cannot name a post.
func postID(ctx *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("post_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ErrPostNotFound
	}
	return id, nil
}

// imageUpload opens the optional "image" file of a multipart form. The
// returned func closes it.
func imageUpload(ctx *gin.Context) (*services.ImageUpload, func(), error) {
	fh, err := middleware.FormFile(ctx, "image")
	if err != nil || fh == nil {
		return nil, func() {}, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &services.ImageUpload{Filename: fh.Filename, Content: f}, func() { _ = f.Close() }, nil
}
