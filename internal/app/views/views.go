// Package views renders the HTML pages. Every page template is parsed
// together with the shared layout and includes, and executed through the
// "base" layout template.
package views

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/diakonovmakar/yatube-final/internal/app/models"
	"github.com/diakonovmakar/yatube-final/internal/app/models/dto"
)

// Page templates
const (
	Index       = "index.html"
	GroupList   = "posts/group_list.html"
	Profile     = "posts/profile.html"
	PostDetail  = "posts/post_detail.html"
	CreatePost  = "posts/create_post.html"
	FollowIndex = "posts/follow.html"
	Login       = "users/login.html"
	Signup      = "users/signup.html"
	AboutAuthor = "about/author.html"
	AboutTech   = "about/tech.html"
	NotFound    = "misc/404.html"
	ServerError = "misc/500.html"
)

// Pages lists every page template the renderer loads.
var Pages = []string{
	Index, GroupList, Profile, PostDetail, CreatePost, FollowIndex,
	Login, Signup, AboutAuthor, AboutTech, NotFound, ServerError,
}

const layoutName = "base"

// Renderer implements gin's render.HTMLRender over pre-parsed templates.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses base.html, includes/*.html and every page in Pages
// from fsys.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	layout, err := template.New(layoutName).Funcs(FuncMap()).ParseFS(fsys, "base.html", "includes/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	r := &Renderer{templates: make(map[string]*template.Template, len(Pages))}
	for _, name := range Pages {
		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(fsys, name); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Instance implements render.HTMLRender.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.templates[name]
	if !ok {
		return htmlPage{err: fmt.Errorf("template %q is not loaded", name)}
	}
	return htmlPage{template: t, data: data}
}

var htmlContentType = []string{"text/html; charset=utf-8"}

// htmlPage renders into a buffer first so a failing template never leaves
// half a page on the wire.
type htmlPage struct {
	template *template.Template
	data     any
	err      error
}

func (p htmlPage) Render(w http.ResponseWriter) error {
	p.WriteContentType(w)
	if p.err != nil {
		return p.err
	}

	var buf bytes.Buffer
	if err := p.template.ExecuteTemplate(&buf, layoutName, p.data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (p htmlPage) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = htmlContentType
	}
}

// Page is any page struct embedding dto.Base.
type Page interface {
	Meta() *dto.Base
}

// HTML fills the request-scoped part of page and renders it.
func HTML(c *gin.Context, status int, name string, page Page, user *models.User) {
	page.Meta().Fill(user, c.Request.URL.Path, time.Now())
	c.HTML(status, name, page)
}
