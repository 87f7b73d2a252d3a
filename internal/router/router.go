package router

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/inkpost/internal/handler"
	"github.com/inkpost/internal/metrics"
)

const sessionName = "inkpost_session"

// Options 汇总路由层需要的外部依赖
type Options struct {
	SessionSecret string
	// UploadDir is served read-only under UploadURLPath when both are set.
	UploadDir     string
	UploadURLPath string
	Metrics       *metrics.Collectors
	Logger        *slog.Logger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}

	// 配置会话中间件
	secret := opts.SessionSecret
	if secret == "" {
		secret = "inkpost-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode, MaxAge: 7 * 24 * 3600})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(api.AttachIdentity())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	if opts.Metrics != nil {
		r.GET("/metrics", opts.Metrics.Handler())
	}

	// 本地上传目录
	if opts.UploadDir != "" && opts.UploadURLPath != "" {
		r.Static(strings.TrimRight(opts.UploadURLPath, "/"), opts.UploadDir)
	}

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", api.Login)
		authGroup.POST("/logout", api.Logout)
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/posts", api.GetPosts)
		apiGroup.POST("/posts", api.CreatePost)
		apiGroup.GET("/posts/:postID", api.GetPost)
		apiGroup.GET("/posts/:postID/html", api.GetPostHTML)
		apiGroup.GET("/userPosts/:username", api.GetUserPosts)

		apiGroup.GET("/current-user", api.CurrentUser)
		apiGroup.GET("/upload-auth", api.UploadAuth)
		apiGroup.POST("/uploads", api.RequireIdentity(), api.UploadFile)
	}

	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
