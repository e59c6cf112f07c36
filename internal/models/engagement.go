package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a reader's response to an article. Comments are immutable;
// ParentID is stored but no threading is enforced.
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ArticleID string    `gorm:"type:varchar(36);not null;index" json:"article_id"`
	UserID    string    `gorm:"type:varchar(255);not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ParentID  *string   `gorm:"type:varchar(36)" json:"parent_id"`
	Profile   *Profile  `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Comment) TableName() string {
	return "comments"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (c *Comment) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Clap records one user's clap on one article. There is at most one row per
// (article, user); repeated claps overwrite it.
type Clap struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ArticleID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_claps_article_user" json:"article_id"`
	UserID    string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_claps_article_user" json:"user_id"`
	Count     int       `gorm:"not null;default:1" json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Clap) TableName() string {
	return "claps"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (c *Clap) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
