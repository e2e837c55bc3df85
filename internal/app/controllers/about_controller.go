package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/diakonovmakar/yatube-final/internal/app/models/dto"
	"github.com/diakonovmakar/yatube-final/internal/app/views"
)

// AboutController serves the static about pages
type AboutController struct{}

// NewAboutController creates a new AboutController
func NewAboutController() *AboutController {
	return &AboutController{}
}

// Author handles GET /about/author/
func (c *AboutController) Author(ctx *gin.Context) {
	html(ctx, views.AboutAuthor, &dto.StaticPage{Base: dto.Base{Title: "About the author"}})
}

// Tech handles GET /about/tech/
func (c *AboutController) Tech(ctx *gin.Context) {
	html(ctx, views.AboutTech, &dto.StaticPage{Base: dto.Base{Title: "Technologies"}})
}
