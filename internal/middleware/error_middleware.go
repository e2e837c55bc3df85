package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/diakonovmakar/yatube-final/internal/app/models/dto"
	"github.com/diakonovmakar/yatube-final/internal/app/urls"
	"github.com/diakonovmakar/yatube-final/internal/app/views"
	"github.com/diakonovmakar/yatube-final/internal/pkg/apperrors"
)

// HandleError turns a handler error into a response: missing objects get
// the 404 page, missing sessions go to login and anything else is a 500.
func HandleError(c *gin.Context, err error) {
	switch {
	case apperrors.IsNotFound(err):
		RenderError(c, http.StatusNotFound)
	case errors.Is(err, apperrors.ErrUnauthenticated):
		c.Redirect(http.StatusFound, urls.LoginNext(c.Request.URL.RequestURI()))
		c.Abort()
	case errors.Is(err, apperrors.ErrPermissionDenied):
		RenderError(c, http.StatusForbidden)
	case errors.Is(err, apperrors.ErrValidationFailed):
		RenderError(c, http.StatusBadRequest)
	default:
		log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("Request failed")
		_ = c.Error(err)
		RenderError(c, http.StatusInternalServerError)
	}
}

// RenderError renders the error page for status and aborts the chain.
func RenderError(c *gin.Context, status int) {
	name, title := views.ServerError, "Server error"
	switch status {
	case http.StatusNotFound:
		name, title = views.NotFound, "Page not found"
	case http.StatusForbidden:
		title = "Forbidden"
	case http.StatusBadRequest:
		title = "Bad request"
	}
	page := &dto.ErrorPage{Base: dto.Base{Title: title}, Status: status}
	views.HTML(c, status, name, page, CurrentUser(c))
	c.Abort()
}

// NotFound handles unmatched routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		RenderError(c, http.StatusNotFound)
	}
}

// Recovery logs a panic with its stack and renders the 500 page.
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Bytes("stack", debug.Stack()).
			Msg("Recovered from panic")
		if c.Writer.Written() {
			c.Abort()
			return
		}
		RenderError(c, http.StatusInternalServerError)
	})
}
