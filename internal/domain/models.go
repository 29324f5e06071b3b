// Package domain defines the persistence models for topics, users, articles
// and comments. These types are mapped with GORM and are shared by the
// repository, service and HTTP layers.
package domain

import "time"

// Topic is a read-only article category keyed by its slug.
type Topic struct {
	Slug        string `json:"slug"        gorm:"type:varchar(64);primaryKey"`
	Description string `json:"description" gorm:"type:varchar(255);not null;default:''"`
}

// TableName returns the database table name for Topic.
func (Topic) TableName() string { return "topics" }

// User is an article or comment author. Users are created by the store only.
type User struct {
	Username  string `json:"username"   gorm:"type:varchar(64);primaryKey"`
	Name      string `json:"name"       gorm:"type:varchar(255);not null"`
	AvatarURL string `json:"avatar_url" gorm:"column:avatar_url;type:varchar(1000)"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Article is a news article as served by the single-article read.
//
// CommentCount is derived: it is filled by the aggregation queries in the
// repo package and never persisted. Listings use ArticleSummary instead.
type Article struct {
	ArticleID     int64     `json:"article_id"      gorm:"column:article_id;primaryKey;autoIncrement"`
	Title         string    `json:"title"           gorm:"type:varchar(255);not null"`
	Topic         string    `json:"topic"           gorm:"type:varchar(64);not null;index:idx_articles_topic"`
	Author        string    `json:"author"          gorm:"type:varchar(64);not null;index:idx_articles_author"`
	Body          string    `json:"body"            gorm:"type:text;not null"`
	CreatedAt     time.Time `json:"created_at"`
	Votes         int       `json:"votes"           gorm:"not null;default:0"`
	ArticleImgURL string    `json:"article_img_url" gorm:"column:article_img_url;type:varchar(1000)"`
	CommentCount  int       `json:"comment_count"   gorm:"->;-:migration"`

	TopicRef  Topic     `json:"-" gorm:"foreignKey:Topic;references:Slug;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	AuthorRef User      `json:"-" gorm:"foreignKey:Author;references:Username;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Comments  []Comment `json:"-" gorm:"foreignKey:ArticleID;references:ArticleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Article.
func (Article) TableName() string { return "articles" }

// ArticleSummary is the listing projection of an article: every column but
// body, plus the derived comment_count.
type ArticleSummary struct {
	ArticleID     int64     `json:"article_id"`
	Title         string    `json:"title"`
	Topic         string    `json:"topic"`
	Author        string    `json:"author"`
	CreatedAt     time.Time `json:"created_at"`
	Votes         int       `json:"votes"`
	ArticleImgURL string    `json:"article_img_url" gorm:"column:article_img_url"`
	CommentCount  int       `json:"comment_count"`
}

// Comment is a reader comment attached to an article. Deletion is a hard
// delete and comments go away with their article; the article_id foreign
// key is declared on Article.Comments.
type Comment struct {
	CommentID int64     `json:"comment_id" gorm:"column:comment_id;primaryKey;autoIncrement"`
	ArticleID int64     `json:"article_id" gorm:"column:article_id;not null;index:idx_comments_article,priority:1"`
	Author    string    `json:"author"     gorm:"type:varchar(64);not null"`
	Body      string    `json:"body"       gorm:"type:text;not null"`
	Votes     int       `json:"votes"      gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_comments_article,priority:2"`

	AuthorRef User `json:"-" gorm:"foreignKey:Author;references:Username;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "comments" }
