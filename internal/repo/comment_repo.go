// Package repo implements the data persistence layer for the news domain,
// backed by GORM. This file provides repository functions for comments.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// ListCommentsByArticle returns the comments of articleID, newest first.
// Equal timestamps fall back to comment_id descending.
func ListCommentsByArticle(ctx context.Context, db *gorm.DB, articleID int64) ([]domain.Comment, error) {
	out := []domain.Comment{}
	err := db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("created_at DESC, comment_id DESC").
		Find(&out).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return out, nil
}

// CreateComment inserts a comment authored by username on articleID and
// returns it with its assigned id and timestamp. An unknown author or
// article surfaces as a *StoreError with CodeForeignKeyViolation.
func CreateComment(ctx context.Context, db *gorm.DB, articleID int64, username, body string) (*domain.Comment, error) {
	c := &domain.Comment{
		ArticleID: articleID,
		Author:    username,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return nil, translateErr(err)
	}
	return c, nil
}

// GetComment fetches a comment by id.
func GetComment(ctx context.Context, db *gorm.DB, id int64) (*domain.Comment, error) {
	var c domain.Comment
	if err := db.WithContext(ctx).Where("comment_id = ?", id).First(&c).Error; err != nil {
		return nil, translateErr(err)
	}
	return &c, nil
}

// DeleteComment hard-deletes a comment and returns the removed row.
// A miss yields ErrNotFound.
func DeleteComment(ctx context.Context, db *gorm.DB, rawID string) (*domain.Comment, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	var deleted []domain.Comment
	res := db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("comment_id = ?", id).
		Delete(&deleted)
	if res.Error != nil {
		return nil, translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	if len(deleted) == 0 {
		// Dialect without RETURNING support: the row is gone, echo the key.
		return &domain.Comment{CommentID: id}, nil
	}
	return &deleted[0], nil
}
