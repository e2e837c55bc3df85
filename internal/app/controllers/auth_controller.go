package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/diakonovmakar/yatube-final/internal/app/models/dto"
	"github.com/diakonovmakar/yatube-final/internal/app/services"
	"github.com/diakonovmakar/yatube-final/internal/app/urls"
	"github.com/diakonovmakar/yatube-final/internal/app/views"
	"github.com/diakonovmakar/yatube-final/internal/middleware"
	"github.com/diakonovmakar/yatube-final/internal/pkg/apperrors"
)

// AuthController handles signup, login and logout
type AuthController struct {
	auth     *services.AuthService
	sessions *middleware.AuthMiddleware
	logger   zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(auth *services.AuthService, sessions *middleware.AuthMiddleware, logger zerolog.Logger) *AuthController {
	return &AuthController{auth: auth, sessions: sessions, logger: logger}
}

// LoginForm handles GET /auth/login/
func (c *AuthController) LoginForm(ctx *gin.Context) {
	html(ctx, views.Login, c.auth.LoginForm(ctx.Query("next")))
}

// Login handles POST /auth/login/
func (c *AuthController) Login(ctx *gin.Context) {
	var form dto.LoginForm
	if err := middleware.BindForm(ctx, &form); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid login payload")
		middleware.HandleError(ctx, apperrors.Wrap(apperrors.ErrValidationFailed, "%v", err))
		return
	}
	if form.Next == "" {
		form.Next = ctx.Query("next")
	}

	res, err := c.auth.Login(ctx.Request.Context(), form)
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	if res.Token != "" {
		c.sessions.StartSession(ctx, res.Token)
	}
	respond(ctx, views.Login, &res.Result)
}

// SignupForm handles GET /auth/signup/
func (c *AuthController) SignupForm(ctx *gin.Context) {
	html(ctx, views.Signup, c.auth.SignupForm())
}

// Signup handles POST /auth/signup/
func (c *AuthController) Signup(ctx *gin.Context) {
	var form dto.SignupForm
	if err := middleware.BindForm(ctx, &form); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid signup payload")
		middleware.HandleError(ctx, apperrors.Wrap(apperrors.ErrValidationFailed, "%v", err))
		return
	}

	res, err := c.auth.Signup(ctx.Request.Context(), form)
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	if res.Token != "" {
		c.sessions.StartSession(ctx, res.Token)
	}
	respond(ctx, views.Signup, &res.Result)
}

// Logout handles POST /auth/logout/
func (c *AuthController) Logout(ctx *gin.Context) {
	c.sessions.EndSession(ctx)
	ctx.Redirect(http.StatusFound, urls.Index)
}
