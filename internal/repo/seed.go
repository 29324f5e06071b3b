// Package repo implements the data persistence layer for the news domain,
// backed by GORM. This file loads YAML fixtures and (re)seeds the store.
package repo

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// Seed is the fixture document consumed by the seed command and tests.
// Comments reference their article by title because ids are assigned on
// insert.
type Seed struct {
	Topics   []SeedTopic   `yaml:"topics"`
	Users    []SeedUser    `yaml:"users"`
	Articles []SeedArticle `yaml:"articles"`
	Comments []SeedComment `yaml:"comments"`
}

type SeedTopic struct {
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

type SeedUser struct {
	Username  string `yaml:"username"`
	Name      string `yaml:"name"`
	AvatarURL string `yaml:"avatar_url"`
}

type SeedArticle struct {
	Title         string    `yaml:"title"`
	Topic         string    `yaml:"topic"`
	Author        string    `yaml:"author"`
	Body          string    `yaml:"body"`
	CreatedAt     time.Time `yaml:"created_at"`
	Votes         int       `yaml:"votes"`
	ArticleImgURL string    `yaml:"article_img_url"`
}

type SeedComment struct {
	ArticleTitle string    `yaml:"article_title"`
	Author       string    `yaml:"author"`
	Body         string    `yaml:"body"`
	Votes        int       `yaml:"votes"`
	CreatedAt    time.Time `yaml:"created_at"`
}

// ParseSeed decodes a YAML fixture document.
func ParseSeed(r io.Reader) (*Seed, error) {
	var s Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &s, nil
}

// LoadSeed reads and decodes the fixture file at path.
func LoadSeed(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseSeed(f)
}

// ApplySeed drops and recreates the schema, then inserts the fixture in one
// transaction. Article ids restart at 1 in fixture order.
func ApplySeed(ctx context.Context, db *gorm.DB, s *Seed) error {
	m := db.WithContext(ctx).Migrator()
	if err := m.DropTable(&domain.Idempotency{}, &domain.Comment{}, &domain.Article{}, &domain.User{}, &domain.Topic{}); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	if err := AutoMigrate(db.WithContext(ctx)); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	now := time.Now().UTC()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range s.Topics {
			if err := tx.Create(&domain.Topic{Slug: t.Slug, Description: t.Description}).Error; err != nil {
				return fmt.Errorf("topic %q: %w", t.Slug, translateErr(err))
			}
		}
		for _, u := range s.Users {
			if err := tx.Create(&domain.User{Username: u.Username, Name: u.Name, AvatarURL: u.AvatarURL}).Error; err != nil {
				return fmt.Errorf("user %q: %w", u.Username, translateErr(err))
			}
		}

		ids := make(map[string]int64, len(s.Articles))
		for _, a := range s.Articles {
			row := &domain.Article{
				Title:         a.Title,
				Topic:         a.Topic,
				Author:        a.Author,
				Body:          a.Body,
				CreatedAt:     orNow(a.CreatedAt, now),
				Votes:         a.Votes,
				ArticleImgURL: a.ArticleImgURL,
			}
			if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
				return fmt.Errorf("article %q: %w", a.Title, translateErr(err))
			}
			ids[a.Title] = row.ArticleID
		}

		for i, c := range s.Comments {
			articleID, ok := ids[c.ArticleTitle]
			if !ok {
				return fmt.Errorf("comment %d: unknown article %q", i, c.ArticleTitle)
			}
			row := &domain.Comment{
				ArticleID: articleID,
				Author:    c.Author,
				Body:      c.Body,
				Votes:     c.Votes,
				CreatedAt: orNow(c.CreatedAt, now),
			}
			if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
				return fmt.Errorf("comment %d: %w", i, translateErr(err))
			}
		}
		return nil
	})
}

func orNow(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t.UTC()
}
