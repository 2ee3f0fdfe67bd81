// Package web serves the blog's HTML pages.
package web

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/auth"
	"github.com/yatube/yatube/internal/cache"
	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/media"
	"github.com/yatube/yatube/internal/service"
	"github.com/yatube/yatube/pkg/logging"
)

// SessionCookieName names the session cookie
const SessionCookieName = "yatube_session"

// Options configures the web router
type Options struct {
	DB            *db.DB
	Cache         *cache.Cache
	Media         media.Store
	MediaDir      string // served under /media/ when set
	PageSize      int
	IndexCacheTTL time.Duration
	Sessions      sessions.Store
	Gzip          bool
}

// Router sets up the HTML routes
type Router struct {
	opts      Options
	db        *db.DB
	cache     *cache.Cache
	templates *template.Template
	posts     *service.PostService
	comments  *service.CommentService
	follows   *service.FollowService
	accounts  *auth.AccountService
	repo      *db.Repository
	logger    *zap.Logger
}

// NewRouter creates a new web router
func NewRouter(opts Options) (*Router, error) {
	templates, err := parseTemplates(opts.Media)
	if err != nil {
		return nil, err
	}

	repo := db.NewRepository(opts.DB.DB)
	return &Router{
		opts:      opts,
		db:        opts.DB,
		cache:     opts.Cache,
		templates: templates,
		posts:     service.NewPostService(repo, opts.Media, opts.PageSize),
		comments:  service.NewCommentService(repo),
		follows:   service.NewFollowService(repo, opts.PageSize),
		accounts:  auth.NewAccountService(repo),
		repo:      repo,
		logger:    logging.WithComponent("web"),
	}, nil
}

// Engine builds a gin engine with middleware and every route installed
func (r *Router) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logging.GinMiddleware(logging.WithComponent("http")))
	if r.opts.Gzip {
		engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/media/"})))
	}
	engine.Use(sessions.Sessions(SessionCookieName, r.opts.Sessions))
	engine.Use(auth.Middleware(r.repo))
	engine.SetHTMLTemplate(r.templates)

	r.SetupRoutes(engine)
	return engine
}

// SetupRoutes sets up all routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	if r.opts.MediaDir != "" {
		engine.Static("/media", r.opts.MediaDir)
	}

	protected := &auth.Router{Base: engine}

	engine.GET("/", r.index)
	engine.GET("/group/:slug/", r.groupPosts)
	protected.GET("/new/", r.newPostForm)
	protected.POST("/new/", r.createPost)
	protected.GET("/follow/", r.followIndex)

	engine.GET("/auth/signup/", r.signupForm)
	engine.POST("/auth/signup/", r.signup)
	engine.GET("/auth/login/", r.loginForm)
	engine.POST("/auth/login/", r.login)
	engine.GET("/auth/logout/", r.logout)
	engine.POST("/auth/logout/", r.logout)

	engine.GET("/:username/", r.profile)
	protected.GET("/:username/follow/", r.followAuthor)
	protected.GET("/:username/unfollow/", r.unfollowAuthor)
	engine.GET("/:username/:post_id/", r.postView)
	protected.GET("/:username/:post_id/edit/", r.editPostForm)
	protected.POST("/:username/:post_id/edit/", r.editPost)
	protected.POST("/:username/:post_id/comment/", r.addComment)

	engine.NoRoute(func(c *gin.Context) {
		r.renderError(c, http.StatusNotFound, "Page not found.")
	})
}

// healthHandler reports service and database health. Redis is reported
// but does not fail the check, since pages render without the cache.
func (r *Router) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	cacheStatus := "disabled"
	if r.cache.Enabled() {
		cacheStatus = "OK"
		if err := r.cache.Health(ctx); err != nil {
			r.logger.Warn("Cache health check failed", zap.Error(err))
			cacheStatus = "ERROR"
		}
	}

	if err := r.db.Health(ctx); err != nil {
		r.logger.Error("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "ERROR",
			"service": "yatube",
			"cache":   cacheStatus,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "yatube",
		"cache":   cacheStatus,
	})
}
