package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/diakonovmakar/yatube-final/internal/app/models"
	"github.com/diakonovmakar/yatube-final/internal/app/urls"
	"github.com/diakonovmakar/yatube-final/internal/pkg/apperrors"
)

// ContextUserKey is where LoadSession stores the authenticated user.
const ContextUserKey = "currentUser"

// SessionResolver maps a session token to its user.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*models.User, error)
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	MaxAge int // seconds
	Secure bool
}

// AuthMiddleware loads the session user and gates routes that need one
type AuthMiddleware struct {
	sessions SessionResolver
	cookie   CookieConfig
	logger   zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(sessions SessionResolver, cookie CookieConfig, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, cookie: cookie, logger: logger}
}

// LoadSession resolves the session cookie, if any, into the current user.
// A stale or forged cookie is cleared and the request goes on anonymously.
func (m *AuthMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.cookie.Name)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := m.sessions.ResolveSession(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(ContextUserKey, user)
		case apperrors.Is(err, apperrors.ErrUnauthenticated):
			m.logger.Debug().Err(err).Msg("Discarding invalid session cookie")
			m.EndSession(c)
		default:
			m.logger.Error().Err(err).Msg("Failed to resolve session")
		}
		c.Next()
	}
}

// LoginRequired redirects anonymous visitors to the login page, which sends
// them back here afterwards.
func (m *AuthMiddleware) LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, urls.LoginNext(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// StartSession sets the session cookie.
func (m *AuthMiddleware) StartSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie.Name, token, m.cookie.MaxAge, "/", "", m.cookie.Secure, true)
}

// EndSession expires the session cookie.
func (m *AuthMiddleware) EndSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie.Name, "", -1, "/", "", m.cookie.Secure, true)
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
