// Package httpapi wires the Gin engine to the news services: cross-cutting
// middleware, operational endpoints and the public routes under the API
// base path.
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-news-backend/docs"
	"github.com/tbourn/go-news-backend/internal/config"
	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/http/handlers"
	"github.com/tbourn/go-news-backend/internal/http/middleware"
	"github.com/tbourn/go-news-backend/internal/repo"
	"github.com/tbourn/go-news-backend/internal/services"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// The shims adapt the repo package's free functions to the service
// interfaces so services never import a concrete store.

type articleRepoShim struct{}

func (articleRepoShim) ListArticles(ctx context.Context, db *gorm.DB, q repo.ArticleQuery) ([]domain.ArticleSummary, error) {
	return repo.ListArticles(ctx, db, q)
}

func (articleRepoShim) GetArticle(ctx context.Context, db *gorm.DB, rawID string) (*domain.Article, error) {
	return repo.GetArticle(ctx, db, rawID)
}

func (articleRepoShim) IncrementArticleVotes(ctx context.Context, db *gorm.DB, rawID string, delta int) (*domain.Article, error) {
	return repo.IncrementArticleVotes(ctx, db, rawID, delta)
}

type commentRepoShim struct{}

func (commentRepoShim) ArticleExists(ctx context.Context, db *gorm.DB, rawID string) (int64, error) {
	return repo.ArticleExists(ctx, db, rawID)
}

func (commentRepoShim) ListCommentsByArticle(ctx context.Context, db *gorm.DB, articleID int64) ([]domain.Comment, error) {
	return repo.ListCommentsByArticle(ctx, db, articleID)
}

func (commentRepoShim) CreateComment(ctx context.Context, db *gorm.DB, articleID int64, username, body string) (*domain.Comment, error) {
	return repo.CreateComment(ctx, db, articleID, username, body)
}

func (commentRepoShim) GetComment(ctx context.Context, db *gorm.DB, id int64) (*domain.Comment, error) {
	return repo.GetComment(ctx, db, id)
}

func (commentRepoShim) DeleteComment(ctx context.Context, db *gorm.DB, rawID string) (*domain.Comment, error) {
	return repo.DeleteComment(ctx, db, rawID)
}

func (commentRepoShim) GetIdempotency(ctx context.Context, db *gorm.DB, key string, articleID int64, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, db, key, articleID, now)
}

func (commentRepoShim) CreateIdempotency(ctx context.Context, db *gorm.DB, key string, articleID, commentID int64, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, db, key, articleID, commentID, status, ttl)
}

func (commentRepoShim) RebindIdempotency(ctx context.Context, db *gorm.DB, key string, articleID, commentID int64, status int, ttl time.Duration) (bool, error) {
	return repo.RebindIdempotency(ctx, db, key, articleID, commentID, status, ttl)
}

type catalogRepoShim struct{}

func (catalogRepoShim) ListTopics(ctx context.Context, db *gorm.DB) ([]domain.Topic, error) {
	return repo.ListTopics(ctx, db)
}

func (catalogRepoShim) ListUsers(ctx context.Context, db *gorm.DB) ([]domain.User, error) {
	return repo.ListUsers(ctx, db)
}

// RegisterRoutes attaches middleware, operational endpoints and the news API
// to r. The store handle is injected; nothing here keeps package state.
//
// Middleware order matters:
//  1. OpenTelemetry, so every request has a span
//  2. RequestID
//  3. RedactingLogger
//  4. Recovery, after the logger so panics are logged with the request id
//  5. Body size limit
//  6. Metrics (/metrics is registered here and skips the rest)
//  7. Idempotency validator, before the limiter so replays bypass it
//  8. Rate limiter, when RATE_RPS > 0
//  9. CORS, security headers and gzip
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{Param: "article_id"},
		func(ctx context.Context, key, rawArticleID string, now time.Time) (bool, error) {
			rec, err := repo.LookupIdempotency(ctx, db, key, rawArticleID, now)
			if err != nil {
				return false, err
			}
			return rec != nil, nil
		},
	))

	if cfg.RateRPS > 0 {
		rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
		r.Use(rl.Handler())
	}

	r.Use(corsMiddleware(cfg.CORS)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/swagger/"})))

	// A wrong method on a known path also lands here: gin only answers 405
	// when HandleMethodNotAllowed is set.
	r.NoRoute(func(c *gin.Context) {
		middleware.ObserveAPIError("routing", http.StatusNotFound)
		handlers.Fail(c, http.StatusNotFound, handlers.MsgEndpointNotFound)
	})

	r.GET("/health", health(db))
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	comments := services.NewCommentService(db, commentRepoShim{})
	comments.IdempotencyTTL = cfg.IdempotencyTTL
	h := handlers.New(
		services.NewArticleService(db, articleRepoShim{}),
		comments,
		services.NewCatalogService(db, catalogRepoShim{}),
		strings.TrimSuffix(cfg.APIBasePath, "/"),
	)

	r.GET(apiRoot(cfg.APIBasePath), h.GetAPI)
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.GET("/topics", h.ListTopics)
		api.GET("/users", h.ListUsers)

		api.GET("/articles", h.ListArticles)
		api.GET("/articles/:article_id", h.GetArticle)
		api.PATCH("/articles/:article_id", h.PatchArticle)

		api.GET("/articles/:article_id/comments", h.ListComments)
		api.POST("/articles/:article_id/comments", h.PostComment)
		api.DELETE("/comments/:comment_id", h.DeleteComment)
	}
}

// corsMiddleware allows any origin when no allowlist is configured, else
// echoes only listed origins. Credentials are never allowed.
func corsMiddleware(cfg config.CORSConfig) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.HeaderIdempotencyKey},
		ExposeHeaders: []string{middleware.HeaderRequestID, middleware.HeaderIdempotencyReplayed, "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		base.AllowAllOrigins = true
		// gin-contrib/cors skips requests without Origin; set ACAO anyway
		// so plain clients and health probes see it.
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}
	base.AllowOrigins = cfg.AllowedOrigins
	return []gin.HandlerFunc{cors.New(base)}
}

// health reports liveness and whether the store answers a ping.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("health: store ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// limitBody caps request bodies at maxBytes; oversized reads fail and the
// payload is rejected as malformed.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

// apiRoot is the path GET /api is served on.
func apiRoot(prefix string) string {
	if prefix == "" {
		return "/"
	}
	return prefix
}
