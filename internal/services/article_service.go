// Package services – ArticleService
//
// ArticleService owns the article listing, single-article read and the vote
// patch. Listing parameters pass the allow-list validators before a query is
// built; a miss on a single article becomes ErrArticleNotFound. Store errors
// (malformed ids, constraint failures) are returned as-is for the handler
// classifier.
//
// Observability: every public method opens an OpenTelemetry span.
package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/repo"
)

// ArticleRepo is the persistence contract ArticleService depends on.
type ArticleRepo interface {
	ListArticles(ctx context.Context, db *gorm.DB, q repo.ArticleQuery) ([]domain.ArticleSummary, error)
	GetArticle(ctx context.Context, db *gorm.DB, rawID string) (*domain.Article, error)
	IncrementArticleVotes(ctx context.Context, db *gorm.DB, rawID string, delta int) (*domain.Article, error)
}

// ArticleService serves article reads and vote updates.
type ArticleService struct {
	DB   *gorm.DB
	Repo ArticleRepo
}

// NewArticleService wires an ArticleService to db through r.
func NewArticleService(db *gorm.DB, r ArticleRepo) *ArticleService {
	return &ArticleService{DB: db, Repo: r}
}

// List validates sortBy and order, then returns the articles (optionally of
// one topic) with their comment counts. An unknown topic yields no rows.
func (s *ArticleService) List(ctx context.Context, sortBy, order, topic string) ([]domain.ArticleSummary, error) {
	ctx, span := otel.Tracer("services/ArticleService").Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("articles.sort_by", sortBy),
			attribute.String("articles.order", order),
			attribute.String("articles.topic", topic),
		),
	)
	defer span.End()

	col, err := ValidateSort(sortBy)
	if err != nil {
		return nil, err
	}
	dir, err := ValidateOrder(order)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListArticles(ctx, s.DB, repo.ArticleQuery{SortBy: col, Order: dir, Topic: topic})
}

// Get returns one article including its body.
func (s *ArticleService) Get(ctx context.Context, rawID string) (*domain.Article, error) {
	ctx, span := otel.Tracer("services/ArticleService").Start(ctx, "Get",
		trace.WithAttributes(attribute.String("article.id", rawID)),
	)
	defer span.End()

	a, err := s.Repo.GetArticle(ctx, s.DB, rawID)
	if err != nil {
		return nil, notFoundAs(err, ErrArticleNotFound)
	}
	return a, nil
}

// Vote adds inc to the article's votes in a single statement and returns the
// updated article. inc may be zero or negative.
func (s *ArticleService) Vote(ctx context.Context, rawID string, inc int) (*domain.Article, error) {
	ctx, span := otel.Tracer("services/ArticleService").Start(ctx, "Vote",
		trace.WithAttributes(
			attribute.String("article.id", rawID),
			attribute.Int("article.inc_votes", inc),
		),
	)
	defer span.End()

	a, err := s.Repo.IncrementArticleVotes(ctx, s.DB, rawID, inc)
	if err != nil {
		return nil, notFoundAs(err, ErrArticleNotFound)
	}
	return a, nil
}

// notFoundAs swaps a repo miss for rej and leaves other errors untouched.
func notFoundAs(err error, rej *Rejection) error {
	if errors.Is(err, repo.ErrNotFound) {
		return rej
	}
	return err
}
