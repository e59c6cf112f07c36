package database

import "knowhere/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters for AutoMigrate: referenced tables come first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Profile{},
		&models.Article{},
		&models.Comment{},
		&models.Clap{},
		&models.Follow{},
		&models.SavedArticle{},
	}
}
