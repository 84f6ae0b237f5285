package routes

import (
	"net/http"
	"time"

	"github.com/McTechie/tubecafe-backend/config"
	"github.com/McTechie/tubecafe-backend/controllers"
	"github.com/McTechie/tubecafe-backend/middleware"
	"github.com/McTechie/tubecafe-backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Prefix     string
	Origins    []string
	Proxies    []string
	Limiter    config.Limiter
	MaxVideoMB int
	MaxImageMB int
}

// New builds the engine with the global middleware and every route. It
// returns the paths reachable without a token, for the API docs.
func New(app *controllers.App, o Options) (*gin.Engine, []string) {
	r := gin.New()
	if err := r.SetTrustedProxies(o.Proxies); err != nil {
		logrus.WithField("source", "server").WithError(err).Warn("Ignoring invalid trusted proxies")
		_ = r.SetTrustedProxies(nil)
	}

	allowedOrigins := map[string]bool{}
	for _, origin := range o.Origins {
		allowedOrigins[origin] = true
	}
	logrus.WithField("source", "server").Debugf("Allowed origins: %v", o.Origins)
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.RouteLogger())
	r.Use(utils.Recovery())

	public := Register(r, app, o)
	return r, public
}

// Register mounts the API under o.Prefix and returns the public paths.
func Register(r *gin.Engine, app *controllers.App, o Options) []string {
	auth := middleware.Auth(app.Tokens, app.Users)
	limiter := middleware.NewIPRateLimiter(o.Limiter.Requests, o.Limiter.Window, o.Limiter.Burst, 0)
	imageBody := middleware.LimitBody(2*o.MaxImageMB + 1)
	videoBody := middleware.LimitBody(o.MaxVideoMB + o.MaxImageMB + 1)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := r.Group(o.Prefix)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", middleware.RateLimit("register", limiter), imageBody, app.RegisterUser())
		authGroup.POST("/login", middleware.RateLimit("login", limiter), app.LoginUser())
		authGroup.POST("/refresh-token", app.RefreshAccessToken())
		authGroup.POST("/forgot-password", middleware.RateLimit("forgot-password", limiter), app.ForgotPassword())
		authGroup.PATCH("/reset-password/:token", middleware.RateLimit("reset-password", limiter), app.ResetPassword())

		authGroup.POST("/logout", auth, app.LogoutUser())
		authGroup.GET("/me", auth, app.GetCurrentUser())
		authGroup.POST("/change-password", auth, app.ChangePassword())
	}

	users := api.Group("/users", auth)
	{
		users.GET("", app.GetUsers())
		users.PUT("/update-avatar", imageBody, app.UpdateAvatar())
		users.PUT("/update-cover-image", imageBody, app.UpdateCoverImage())
		users.GET("/:id", app.GetUser())
		users.PUT("/:id", app.UpdateUser())
		users.DELETE("/:id", app.DeleteUser())
		users.GET("/:id/watch-history", app.GetWatchHistory())
	}

	channels := api.Group("/channels", auth)
	{
		channels.GET("/:username", app.GetChannelProfile())
		channels.GET("/:username/videos", app.GetChannelVideos())
		channels.GET("/:username/videos/:id", app.GetChannelVideo())
		channels.GET("/:username/playlists", app.GetChannelPlaylists())
		channels.POST("/:username/subscribe", app.Subscribe())
		channels.DELETE("/:username/subscribe", app.Unsubscribe())
		channels.GET("/:username/subscribers", app.GetSubscribers())
	}

	videos := api.Group("/videos", auth)
	{
		videos.GET("", app.GetVideos())
		videos.POST("/upload", videoBody, app.UploadVideo())
		videos.PUT("/toggle-publish/:id", app.ToggleVideoPublish())
		videos.GET("/:id", app.GetVideo())
		videos.PATCH("/:id", app.UpdateVideo())
		videos.PATCH("/:id/update-asset", videoBody, app.UpdateVideoAsset())
		videos.DELETE("/:id", app.DeleteVideo())
	}

	playlists := api.Group("/playlists", auth)
	{
		playlists.POST("", imageBody, app.CreatePlaylist())
		playlists.GET("/videos/:id", app.GetPlaylistVideos())
		playlists.GET("/:id", app.GetPlaylist())
		playlists.PATCH("/add/:id", app.AddVideoToPlaylist())
		playlists.PATCH("/remove/:id", app.RemoveVideoFromPlaylist())
		playlists.PATCH("/reorder/:id", app.ReorderPlaylist())
		playlists.PATCH("/toggle-publish/:id", app.TogglePlaylistPublish())
		playlists.PATCH("/update-thumbnail/:id", imageBody, app.UpdatePlaylistThumbnail())
		playlists.PATCH("/:id", app.UpdatePlaylist())
		playlists.DELETE("/:id", app.DeletePlaylist())
	}

	comments := api.Group("/comments", auth)
	{
		comments.POST("", app.CreateComment())
		comments.GET("/video/:videoId", app.GetVideoComments())
		comments.GET("/:id/replies", app.GetCommentReplies())
		comments.POST("/:id/reply", app.ReplyToComment())
		comments.DELETE("/:id", app.DeleteComment())
	}

	likes := api.Group("/likes", auth)
	{
		likes.POST("/resource/:resourceId", app.LikeResource())
		likes.DELETE("/resource/:resourceId", app.UnlikeResource())
		likes.GET("/count/:resourceId", app.GetLikeCount())
	}

	admin := api.Group("/admin", auth, middleware.RequireAdmin())
	{
		admin.GET("/action-logs", app.GetActionLogs())
	}

	return []string{
		"/ping",
		o.Prefix + "/auth/register",
		o.Prefix + "/auth/login",
		o.Prefix + "/auth/refresh-token",
		o.Prefix + "/auth/forgot-password",
		o.Prefix + "/auth/reset-password/:token",
	}
}
