package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diakonovmakar/yatube-final/internal/app/models"
	"github.com/diakonovmakar/yatube-final/internal/app/views"
	"github.com/diakonovmakar/yatube-final/internal/pkg/apperrors"
)

type stubResolver map[string]*models.User

func (s stubResolver) ResolveSession(_ context.Context, token string) (*models.User, error) {
	if token == "broken" {
		return nil, errors.New("database is down")
	}
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUnauthenticated
}

type templateNames struct{ names []string }

func (r *templateNames) Instance(name string, _ any) render.Render {
	r.names = append(r.names, name)
	return render.Data{ContentType: "text/html", Data: []byte(name)}
}

func newEngine(t *testing.T) (*gin.Engine, *AuthMiddleware, *templateNames) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth := NewAuthMiddleware(stubResolver{"good": {ID: 1, Username: "leo"}}, CookieConfig{Name: "session", MaxAge: 60}, zerolog.Nop())

	engine := gin.New()
	names := &templateNames{}
	engine.HTMLRender = names
	engine.Use(Recovery(zerolog.Nop()), auth.LoadSession())
	engine.NoRoute(NotFound())
	return engine, auth, names
}

func serve(engine *gin.Engine, path, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: cookie})
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestLoadSession(t *testing.T) {
	engine, _, _ := newEngine(t)
	var seen *models.User
	engine.GET("/who/", func(c *gin.Context) {
		seen = CurrentUser(c)
		c.Status(http.StatusNoContent)
	})

	serve(engine, "/who/", "good")
	require.NotNil(t, seen)
	assert.Equal(t, "leo", seen.Username)

	w := serve(engine, "/who/", "forged")
	assert.Nil(t, seen)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "session=;")

	w = serve(engine, "/who/", "broken")
	assert.Nil(t, seen)
	assert.Empty(t, w.Header().Get("Set-Cookie"), "a failing store does not log the user out")

	serve(engine, "/who/", "")
	assert.Nil(t, seen)
}

func TestLoginRequired(t *testing.T) {
	engine, auth, _ := newEngine(t)
	engine.GET("/new/", auth.LoginRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := serve(engine, "/new/", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/new/", w.Header().Get("Location"))

	w = serve(engine, "/new/?draft=1", "")
	assert.Equal(t, "/auth/login/?next=/new/%3Fdraft%3D1", w.Header().Get("Location"))

	w = serve(engine, "/new/", "good")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandleError(t *testing.T) {
	engine, _, names := newEngine(t)
	cases := []struct {
		err    error
		status int
		page   string
	}{
		{apperrors.ErrPostNotFound, http.StatusNotFound, views.NotFound},
		{apperrors.Wrap(apperrors.ErrPermissionDenied, "not yours"), http.StatusForbidden, views.ServerError},
		{apperrors.Wrap(apperrors.ErrValidationFailed, "bad form"), http.StatusBadRequest, views.ServerError},
		{errors.New("boom"), http.StatusInternalServerError, views.ServerError},
	}
	for i, tc := range cases {
		path := "/err/" + string(rune('a'+i)) + "/"
		err := tc.err
		engine.GET(path, func(c *gin.Context) { HandleError(c, err) })

		w := serve(engine, path, "")
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Equal(t, tc.page, names.names[len(names.names)-1])
	}

	engine.GET("/private/", func(c *gin.Context) { HandleError(c, apperrors.ErrUnauthenticated) })
	w := serve(engine, "/private/", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/private/", w.Header().Get("Location"))
}

func TestNotFoundAndRecovery(t *testing.T) {
	engine, _, names := newEngine(t)
	engine.GET("/panic/", func(c *gin.Context) { panic("kaboom") })

	w := serve(engine, "/nowhere/at/all", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, views.NotFound, names.names[len(names.names)-1])

	w = serve(engine, "/panic/", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, views.ServerError, names.names[len(names.names)-1])
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	engine := gin.New()
	engine.Use(RequestLogger(zerolog.New(&buf)))
	engine.GET("/ping/", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping/?x=1", nil)
	engine.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	assert.Contains(t, line, `"path":"/ping/?x=1"`)
	assert.Contains(t, line, `"status":200`)
	assert.Contains(t, line, `"level":"info"`)
}
