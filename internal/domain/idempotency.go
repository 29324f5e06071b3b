package domain

import "time"

// Idempotency remembers the comment produced by a POST carrying an
// Idempotency-Key, keyed by (key, article_id), so a retried request returns
// the original comment instead of inserting a duplicate.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_idem_key_article,priority:1"`
	ArticleID int64     `gorm:"not null;uniqueIndex:ux_idem_key_article,priority:2"`
	CommentID int64     `gorm:"not null"`
	Status    int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

// Expired reports whether the record is no longer replayable at now.
func (i Idempotency) Expired(now time.Time) bool { return !now.Before(i.ExpiresAt) }
