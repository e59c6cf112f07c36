package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Article is a post written by a profile. ClapsCount and CommentsCount are
// denormalized counters maintained by the clap and comment write paths.
type Article struct {
	ID            string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title         string     `gorm:"type:text;not null" json:"title"`
	Subtitle      string     `gorm:"type:text" json:"subtitle"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	Slug          string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	AuthorID      string     `gorm:"type:varchar(255);not null;index" json:"author_id"`
	Author        *Profile   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Published     bool       `gorm:"not null;default:false;index" json:"published"`
	FeaturedImage string     `gorm:"type:text" json:"featured_image"`
	Tags          []string   `gorm:"type:text;serializer:json" json:"tags"`
	ReadTime      int        `gorm:"not null;default:0" json:"read_time"`
	ClapsCount    int        `gorm:"not null;default:0" json:"claps_count"`
	CommentsCount int        `gorm:"not null;default:0" json:"comments_count"`
	PublishedAt   *time.Time `json:"published_at"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Article) TableName() string {
	return "articles"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (a *Article) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Engagement is the combined clap and comment total used for ranking.
func (a *Article) Engagement() int {
	return a.ClapsCount + a.CommentsCount
}
