// Package repo implements the data persistence layer for the news domain,
// backed by GORM. This file provides the read-only topic and user listings.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// ListTopics returns every topic ordered by slug.
func ListTopics(ctx context.Context, db *gorm.DB) ([]domain.Topic, error) {
	out := []domain.Topic{}
	if err := db.WithContext(ctx).Order("slug ASC").Find(&out).Error; err != nil {
		return nil, translateErr(err)
	}
	return out, nil
}

// ListUsers returns every user ordered by username.
func ListUsers(ctx context.Context, db *gorm.DB) ([]domain.User, error) {
	out := []domain.User{}
	err := db.WithContext(ctx).
		Select("username", "name", "avatar_url").
		Order("username ASC").
		Find(&out).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return out, nil
}
