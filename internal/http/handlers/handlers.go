// Package handlers exposes the REST endpoints of the news API.
//
// Handlers are transport-thin: they read route params, query strings and
// bodies, call a service, and shape the JSON envelope. Every failure goes
// through Classify so the status and message are decided in one place.
package handlers

import (
	"context"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/services"
)

// ArticleService is the article contract consumed by the handlers.
type ArticleService interface {
	List(ctx context.Context, sortBy, order, topic string) ([]domain.ArticleSummary, error)
	Get(ctx context.Context, rawID string) (*domain.Article, error)
	Vote(ctx context.Context, rawID string, inc int) (*domain.Article, error)
}

// CommentService is the comment contract consumed by the handlers.
type CommentService interface {
	ListByArticle(ctx context.Context, rawArticleID string) ([]domain.Comment, error)
	Post(ctx context.Context, rawArticleID string, in services.NewComment, idemKey string) (*domain.Comment, bool, error)
	Delete(ctx context.Context, rawCommentID string) error
}

// CatalogService serves the read-only topic and user listings.
type CatalogService interface {
	Topics(ctx context.Context) ([]domain.Topic, error)
	Users(ctx context.Context) ([]domain.User, error)
}

// Handlers groups the endpoints and their service dependencies.
type Handlers struct {
	articles ArticleService
	comments CommentService
	catalog  CatalogService

	// basePath prefixes the paths listed by GetAPI.
	basePath string
}

// New binds the handlers to their services. basePath is the API mount point
// (e.g. "/api") used when describing endpoints.
func New(a ArticleService, cm CommentService, cat CatalogService, basePath string) *Handlers {
	return &Handlers{articles: a, comments: cm, catalog: cat, basePath: basePath}
}
