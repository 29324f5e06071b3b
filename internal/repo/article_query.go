package repo

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// articleColumns is the listing projection. body is left out of listings.
const articleColumns = `articles.author,
	articles.title,
	articles.article_id,
	articles.topic,
	articles.created_at,
	articles.votes,
	articles.article_img_url,
	CAST(COUNT(comments.article_id) AS INT) AS comment_count`

// articleColumnsWithBody is the single-article projection.
const articleColumnsWithBody = articleColumns + `,
	articles.body`

// sortColumns maps every accepted sort_by value to a fixed SQL expression.
// Only these expressions ever reach ORDER BY.
var sortColumns = map[string]string{
	"author":        "articles.author",
	"title":         "articles.title",
	"article_id":    "articles.article_id",
	"topic":         "articles.topic",
	"created_at":    "articles.created_at",
	"votes":         "articles.votes",
	"comment_count": "comment_count",
}

// ArticleQuery describes an articles listing: sort key, direction and an
// optional topic filter. SortBy and Order are expected to be validated
// already; Apply still refuses anything outside sortColumns.
type ArticleQuery struct {
	SortBy string // one of the sortColumns keys
	Order  string // ASC or DESC
	Topic  string // empty means all topics
}

// Apply composes the aggregation over articles LEFT JOIN comments onto db.
// Rows with equal sort keys are ordered by article_id in the same direction.
func (q ArticleQuery) Apply(db *gorm.DB) (*gorm.DB, error) {
	col, ok := sortColumns[q.SortBy]
	if !ok {
		return nil, fmt.Errorf("sort column %q not allowed", q.SortBy)
	}
	var desc bool
	switch strings.ToUpper(q.Order) {
	case "DESC":
		desc = true
	case "ASC":
	default:
		return nil, fmt.Errorf("sort order %q not allowed", q.Order)
	}

	tx := aggregate(db, articleColumns)
	if q.Topic != "" {
		tx = tx.Where("articles.topic = ?", q.Topic)
	}
	tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: col, Raw: true}, Desc: desc})
	if q.SortBy != "article_id" {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: "articles.article_id", Raw: true}, Desc: desc})
	}
	return tx, nil
}

// aggregate is the shared FROM/JOIN/GROUP BY for article reads.
func aggregate(db *gorm.DB, columns string) *gorm.DB {
	return db.Table("articles").
		Select(columns).
		Joins("LEFT JOIN comments ON comments.article_id = articles.article_id").
		Group("articles.article_id")
}
