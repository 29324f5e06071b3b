// Package services – CommentService
//
// CommentService lists, posts and deletes comments. Posting checks the
// article first and then inserts; the two statements do not share a
// transaction, so an article removed between them surfaces as a foreign key
// failure from the insert.
//
// A post may carry an idempotency key. When a live record exists for
// (key, article) the originally created comment is returned and nothing is
// inserted. A record whose comment has since been deleted no longer replays;
// the next post under that key inserts once and takes the record over.
package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/repo"
)

// CommentRepo is the persistence contract CommentService depends on.
type CommentRepo interface {
	ArticleExists(ctx context.Context, db *gorm.DB, rawID string) (int64, error)
	ListCommentsByArticle(ctx context.Context, db *gorm.DB, articleID int64) ([]domain.Comment, error)
	CreateComment(ctx context.Context, db *gorm.DB, articleID int64, username, body string) (*domain.Comment, error)
	GetComment(ctx context.Context, db *gorm.DB, id int64) (*domain.Comment, error)
	DeleteComment(ctx context.Context, db *gorm.DB, rawID string) (*domain.Comment, error)

	GetIdempotency(ctx context.Context, db *gorm.DB, key string, articleID int64, now time.Time) (*domain.Idempotency, error)
	CreateIdempotency(ctx context.Context, db *gorm.DB, key string, articleID, commentID int64, status int, ttl time.Duration) (*domain.Idempotency, error)
	RebindIdempotency(ctx context.Context, db *gorm.DB, key string, articleID, commentID int64, status int, ttl time.Duration) (bool, error)
}

// CommentService serves the comment endpoints.
type CommentService struct {
	DB   *gorm.DB
	Repo CommentRepo

	// IdempotencyTTL bounds how long a key replays. Zero disables recording.
	IdempotencyTTL time.Duration

	now func() time.Time
}

// NewCommentService wires a CommentService with a 24h idempotency window.
func NewCommentService(db *gorm.DB, r CommentRepo) *CommentService {
	return &CommentService{DB: db, Repo: r, IdempotencyTTL: 24 * time.Hour}
}

func (s *CommentService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

// ListByArticle returns an article's comments newest first. A missing article
// is ErrArticleNotFound; an article without comments yields an empty slice.
func (s *CommentService) ListByArticle(ctx context.Context, rawArticleID string) ([]domain.Comment, error) {
	ctx, span := otel.Tracer("services/CommentService").Start(ctx, "ListByArticle",
		trace.WithAttributes(attribute.String("article.id", rawArticleID)),
	)
	defer span.End()

	id, err := s.Repo.ArticleExists(ctx, s.DB, rawArticleID)
	if err != nil {
		return nil, notFoundAs(err, ErrArticleNotFound)
	}
	return s.Repo.ListCommentsByArticle(ctx, s.DB, id)
}

// Post creates a comment on the article. replayed is true when idemKey
// matched an earlier post and the stored comment was returned instead.
func (s *CommentService) Post(ctx context.Context, rawArticleID string, in NewComment, idemKey string) (c *domain.Comment, replayed bool, err error) {
	ctx, span := otel.Tracer("services/CommentService").Start(ctx, "Post",
		trace.WithAttributes(
			attribute.String("article.id", rawArticleID),
			attribute.String("comment.author", in.Username),
			attribute.Bool("idempotency.key_present", idemKey != ""),
		),
	)
	defer span.End()

	articleID, err := s.Repo.ArticleExists(ctx, s.DB, rawArticleID)
	if err != nil {
		return nil, false, notFoundAs(err, ErrArticleNotFound)
	}

	idemKey = strings.TrimSpace(idemKey)
	if idemKey != "" {
		if prev, ok := s.replay(ctx, idemKey, articleID); ok {
			span.SetAttributes(attribute.Bool("idempotency.replayed", true))
			return prev, true, nil
		}
	}

	c, err = s.Repo.CreateComment(ctx, s.DB, articleID, in.Username, in.Body)
	if err != nil {
		return nil, false, err
	}

	if idemKey != "" && s.IdempotencyTTL > 0 {
		if rerr := s.record(ctx, idemKey, articleID, c.CommentID); rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, "idempotency record not stored")
		}
	}
	return c, false, nil
}

// record stores the (key, article) -> comment mapping. A record that exists
// but did not replay is stale (expired or its comment deleted) and is
// pointed at the new comment so later retries replay it.
func (s *CommentService) record(ctx context.Context, key string, articleID, commentID int64) error {
	_, err := s.Repo.CreateIdempotency(ctx, s.DB, key, articleID, commentID, http.StatusCreated, s.IdempotencyTTL)
	if !errors.Is(err, repo.ErrDuplicate) {
		return err
	}
	_, err = s.Repo.RebindIdempotency(ctx, s.DB, key, articleID, commentID, http.StatusCreated, s.IdempotencyTTL)
	return err
}

func (s *CommentService) replay(ctx context.Context, key string, articleID int64) (*domain.Comment, bool) {
	rec, err := s.Repo.GetIdempotency(ctx, s.DB, key, articleID, s.clock())
	if err != nil || rec == nil {
		return nil, false
	}
	c, err := s.Repo.GetComment(ctx, s.DB, rec.CommentID)
	if err != nil {
		return nil, false
	}
	return c, true
}

// Delete hard-deletes a comment. A miss is reported as ErrArticleNotFound.
func (s *CommentService) Delete(ctx context.Context, rawCommentID string) error {
	ctx, span := otel.Tracer("services/CommentService").Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("comment.id", rawCommentID)),
	)
	defer span.End()

	_, err := s.Repo.DeleteComment(ctx, s.DB, rawCommentID)
	return notFoundAs(err, ErrArticleNotFound)
}
