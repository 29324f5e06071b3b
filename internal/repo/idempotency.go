// Package repo implements the data persistence layer for the news domain,
// backed by GORM. This file provides repository helpers for the Idempotency
// model used to make comment posting safe to retry.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// ErrDuplicate indicates that an idempotency record already exists for the
// given (key, article_id) pair.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns a non-expired record or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, key string, articleID int64, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("key = ? AND article_id = ? AND expires_at > ?", key, articleID, now).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// LookupIdempotency is GetIdempotency for callers holding the raw route id.
// Malformed ids simply have no record.
func LookupIdempotency(ctx context.Context, db *gorm.DB, key, rawArticleID string, now time.Time) (*domain.Idempotency, error) {
	id, err := parseID(rawArticleID)
	if err != nil {
		return nil, ErrNotFound
	}
	return GetIdempotency(ctx, db, key, id, now)
}

// CreateIdempotency records the comment produced for (key, articleID) and
// returns ErrDuplicate when the pair was already recorded.
func CreateIdempotency(ctx context.Context, db *gorm.DB, key string, articleID, commentID int64, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:        uuid.NewString(),
		Key:       key,
		ArticleID: articleID,
		CommentID: commentID,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if HasCode(translateErr(err), CodeUniqueViolation) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// RebindIdempotency points a stale record for (key, articleID) at commentID
// and restarts its window. A record is stale once it has expired or its
// comment no longer exists; a live record is left alone and false is
// returned.
func RebindIdempotency(ctx context.Context, db *gorm.DB, key string, articleID, commentID int64, status int, ttl time.Duration) (bool, error) {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Idempotency{}).
		Where("key = ? AND article_id = ?", key, articleID).
		Where("(expires_at <= ? OR NOT EXISTS (SELECT 1 FROM comments WHERE comments.comment_id = idempotency.comment_id))", now).
		Updates(map[string]any{
			"comment_id": commentID,
			"status":     status,
			"created_at": now,
			"expires_at": now.Add(ttl),
		})
	if res.Error != nil {
		return false, translateErr(res.Error)
	}
	return res.RowsAffected > 0, nil
}
