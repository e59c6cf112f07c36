package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow is a directed edge: FollowerID follows FollowingID.
type Follow struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FollowerID  string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FollowingID string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_follows_pair;index" json:"following_id"`
	Follower    *Profile  `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following   *Profile  `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (f *Follow) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// SavedArticle is a reader's bookmark.
type SavedArticle struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_saved_user_article" json:"user_id"`
	ArticleID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_saved_user_article" json:"article_id"`
	Article   *Article  `gorm:"foreignKey:ArticleID" json:"article,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (SavedArticle) TableName() string {
	return "saved_articles"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (s *SavedArticle) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
