// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"knowhere/internal/database"
	"knowhere/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewTestDB returns an isolated in-memory SQLite database with the
// persistent models migrated. The connection closes with the test.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

// CreateProfile inserts a profile with the given username and returns it.
func CreateProfile(t testing.TB, db *gorm.DB, id, username string) *models.Profile {
	t.Helper()
	p := &models.Profile{ID: id, Username: username, FullName: username}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create profile %s: %v", username, err)
	}
	return p
}

// CreateArticle inserts an article for authorID. The slug doubles as the title.
func CreateArticle(t testing.TB, db *gorm.DB, authorID, slug string, published bool, createdAt time.Time) *models.Article {
	t.Helper()
	a := &models.Article{
		Title:     slug,
		Content:   "body of " + slug,
		Slug:      slug,
		AuthorID:  authorID,
		Published: published,
		Tags:      []string{},
		ReadTime:  1,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if published {
		at := createdAt
		a.PublishedAt = &at
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("create article %s: %v", slug, err)
	}
	return a
}
