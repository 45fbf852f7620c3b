package http

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	authUC "github.com/khoahotran/devfolio/internal/application/usecase/auth"
	"github.com/khoahotran/devfolio/pkg/logger"
)

const oauthSessionName = "devfolio_oauth"

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth    *AuthHandler
	Profile *ProfileHandler
	Posts   *PostHandler
	Blog    *BlogHandler
	RSS     *RSSHandler
	Media   *MediaHandler

	Sessions      *authUC.SessionUseCase
	SessionSecret string
	// Ready reports whether the initial portfolio load has finished.
	Ready func() bool
}

func NewRouter(h Handlers, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log), ErrorMiddleware(log))

	authMiddleware := AuthMiddleware(h.Sessions)

	store := cookie.NewStore([]byte(h.SessionSecret))
	store.Options(sessions.Options{Path: "/api/auth/oauth", MaxAge: 600, HttpOnly: true, SameSite: http.SameSiteLaxMode})

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			status := "UP"
			if h.Ready != nil && !h.Ready() {
				status = "LOADING"
			}
			c.JSON(http.StatusOK, gin.H{"status": status})
		})
		api.GET("/navigation", OptionalAuth(h.Sessions), Navigation)

		api.GET("/profile", h.Profile.GetProfile)
		api.GET("/projects", h.Posts.ListPosts)
		api.GET("/projects/:id", h.Posts.GetPost)
		api.GET("/blog", h.Blog.ListPublished)
		api.GET("/blog/rss", h.RSS.GenerateRSS)
		api.GET("/blog/:id", h.Blog.GetPublished)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", h.Auth.Login)
			authGroup.POST("/logout", authMiddleware, h.Auth.Logout)
			authGroup.GET("/session", authMiddleware, h.Auth.Session)

			oauth := authGroup.Group("/oauth", sessions.Sessions(oauthSessionName, store))
			oauth.GET("/:provider", h.Auth.OAuthBegin)
			oauth.GET("/:provider/callback", h.Auth.OAuthCallback)
		}

		admin := api.Group("/admin", authMiddleware)
		{
			admin.GET("/profile", h.Profile.GetProfile)
			admin.PUT("/profile", h.Profile.UpdateProfile)
			admin.PUT("/profile/avatar", h.Profile.SetAvatar)
			admin.PATCH("/profile/avatar/transform", h.Profile.UpdateAvatarTransform)
			admin.POST("/profile/avatar/drag", h.Profile.DragAvatar)
			admin.POST("/profile/avatar/zoom", h.Profile.ZoomAvatar)
			admin.DELETE("/profile/avatar", h.Profile.RemoveAvatar)

			posts := admin.Group("/posts")
			{
				posts.GET("", h.Posts.ListPosts)
				posts.POST("", h.Posts.CreatePost)
				posts.POST("/suggest-tags", h.Posts.SuggestTags)
				posts.GET("/:id", h.Posts.GetPost)
				posts.PUT("/:id", h.Posts.UpdatePost)
				posts.DELETE("/:id", h.Posts.DeletePost)
			}

			blog := admin.Group("/blog")
			{
				blog.GET("", h.Blog.ListAll)
				blog.POST("", h.Blog.Create)
				blog.GET("/:id", h.Blog.GetAny)
				blog.PUT("/:id", h.Blog.Update)
				blog.DELETE("/:id", h.Blog.Delete)
			}

			admin.POST("/media", h.Media.UploadMedia)
		}
	}

	return router
}
