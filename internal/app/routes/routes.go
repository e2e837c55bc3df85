package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/diakonovmakar/yatube-final/internal/app/controllers"
	"github.com/diakonovmakar/yatube-final/internal/middleware"
)

// Controllers bundles every controller the router mounts.
type Controllers struct {
	Posts   *controllers.PostController
	Follows *controllers.FollowController
	Auth    *controllers.AuthController
	About   *controllers.AboutController
}

// SetupRouter configures all application routes. Fixed paths are
// registered before the /:username/ catch-alls they would otherwise shadow.
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	loginRequired := authMiddleware.LoginRequired()

	router.GET("/", ctrl.Posts.Index)
	router.GET("/group/:slug/", ctrl.Posts.GroupPosts)

	// --- Auth routes ---
	auth := router.Group("/auth")
	{
		auth.GET("/login/", ctrl.Auth.LoginForm)
		auth.POST("/login/", ctrl.Auth.Login)
		auth.GET("/signup/", ctrl.Auth.SignupForm)
		auth.POST("/signup/", ctrl.Auth.Signup)
		auth.POST("/logout/", ctrl.Auth.Logout)
	}

	// --- Static pages ---
	about := router.Group("/about")
	{
		about.GET("/author/", ctrl.About.Author)
		about.GET("/tech/", ctrl.About.Tech)
	}

	// --- Authenticated routes ---
	authenticated := router.Group("")
	authenticated.Use(loginRequired)
	{
		authenticated.GET("/new/", ctrl.Posts.CreateForm)
		authenticated.POST("/new/", ctrl.Posts.CreatePost)
		authenticated.GET("/follow/", ctrl.Follows.Index)
	}

	// --- Profile and post routes ---
	router.GET("/:username/", ctrl.Posts.Profile)
	router.GET("/:username/:post_id/", ctrl.Posts.Detail)
	// Anonymous comment submissions are sent to login by the handler.
	router.POST("/:username/:post_id/", ctrl.Posts.AddComment)

	user := router.Group("/:username")
	user.Use(loginRequired)
	{
		user.GET("/follow/", ctrl.Follows.Follow)
		user.GET("/unfollow/", ctrl.Follows.Unfollow)
		user.POST("/:post_id/comment/", ctrl.Posts.AddComment)
		user.GET("/:post_id/edit/", ctrl.Posts.EditForm)
		user.POST("/:post_id/edit/", ctrl.Posts.EditPost)
	}

	router.NoRoute(middleware.NotFound())
}
