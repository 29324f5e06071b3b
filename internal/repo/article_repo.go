// Package repo implements the data persistence layer for the news domain,
// backed by GORM. This file provides repository functions for articles.
//
// All functions are context-aware and accept a *gorm.DB handle. They follow
// the "thin repository" approach: persistence and query composition only.
//
// Error semantics:
//   - A missing article yields ErrNotFound (gorm.ErrRecordNotFound).
//   - A malformed id yields *StoreError with CodeInvalidTextRepresentation.
//   - A vote tally leaving the int32 range yields CodeNumericOutOfRange.
//   - Constraint failures are translated into *StoreError; anything else is
//     the raw gorm error.
package repo

import (
	"context"
	"math"

	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// ListArticles runs the listing described by q and returns every matching
// row with its comment_count. An empty result is not an error.
func ListArticles(ctx context.Context, db *gorm.DB, q ArticleQuery) ([]domain.ArticleSummary, error) {
	tx, err := q.Apply(db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out := []domain.ArticleSummary{}
	if err := tx.Scan(&out).Error; err != nil {
		return nil, translateErr(err)
	}
	return out, nil
}

// GetArticle returns one article, including body and comment_count.
func GetArticle(ctx context.Context, db *gorm.DB, rawID string) (*domain.Article, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return getArticleByID(ctx, db, id)
}

func getArticleByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Article, error) {
	var rows []domain.Article
	err := aggregate(db.WithContext(ctx), articleColumnsWithBody).
		Where("articles.article_id = ?", id).
		Scan(&rows).Error
	if err != nil {
		return nil, translateErr(err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// ArticleExists resolves rawID and confirms the article is present,
// returning the parsed id. A missing article yields ErrNotFound.
func ArticleExists(ctx context.Context, db *gorm.DB, rawID string) (int64, error) {
	id, err := parseID(rawID)
	if err != nil {
		return 0, err
	}
	var n int64
	err = db.WithContext(ctx).
		Model(&domain.Article{}).
		Where("article_id = ?", id).
		Count(&n).Error
	if err != nil {
		return 0, translateErr(err)
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	return id, nil
}

// IncrementArticleVotes applies votes = votes + delta in a single statement
// and returns the updated article. Concurrent increments commute.
//
// The update only matches while the result stays within a 32-bit integer;
// a tally that would leave that range yields *StoreError with
// CodeNumericOutOfRange and the row is untouched.
func IncrementArticleVotes(ctx context.Context, db *gorm.DB, rawID string, delta int) (*domain.Article, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	res := db.WithContext(ctx).
		Model(&domain.Article{}).
		Where("article_id = ? AND votes + ? BETWEEN ? AND ?", id, delta, math.MinInt32, math.MaxInt32).
		UpdateColumn("votes", gorm.Expr("votes + ?", delta))
	if res.Error != nil {
		return nil, translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := ArticleExists(ctx, db, rawID); err != nil {
			return nil, err
		}
		return nil, &StoreError{Code: CodeNumericOutOfRange, Err: errVotesOutOfRange}
	}
	return getArticleByID(ctx, db, id)
}
