package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PublicationDraft     = "draft"
	PublicationPublished = "published"
)

// Publication holds the columns shared by news items and articles.
// Content is the block editor document as stored by the admin UI.
type Publication struct {
	BaseModel
	Title       string         `json:"title"`
	Slug        string         `gorm:"uniqueIndex" json:"slug"`
	Excerpt     string         `json:"excerpt"`
	CoverImage  string         `json:"cover_image"`
	Content     datatypes.JSON `json:"content"`
	Status      string         `gorm:"default:draft;index" json:"status"`
	PublishedAt *time.Time     `gorm:"index" json:"published_at"`
}

// News is a short announcement.
type News struct {
	Publication
}

// TableName pins the table name.
func (News) TableName() string {
	return "news"
}

// Article is a long-form editorial piece.
type Article struct {
	Publication
}
