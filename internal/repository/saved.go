package repository

import (
	"context"

	"knowhere/internal/models"

	"gorm.io/gorm"
)

// SavedArticleRepository defines the interface for reading-list bookmarks
type SavedArticleRepository interface {
	Create(ctx context.Context, saved *models.SavedArticle) error
	Delete(ctx context.Context, userID, articleID string) error
	Exists(ctx context.Context, userID, articleID string) (bool, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.SavedArticle, error)
}

type savedArticleRepository struct {
	db *gorm.DB
}

// NewSavedArticleRepository creates a new saved article repository
func NewSavedArticleRepository(db *gorm.DB) SavedArticleRepository {
	return &savedArticleRepository{db: db}
}

func (r *savedArticleRepository) Create(ctx context.Context, saved *models.SavedArticle) (err error) {
	ctx, done := observe(ctx, "Create", "saved_articles")
	defer func() { done(err) }()

	if err = r.db.WithContext(ctx).Omit("Article").Create(saved).Error; err != nil {
		return storeError(err, "article is already saved")
	}
	return nil
}

func (r *savedArticleRepository) Delete(ctx context.Context, userID, articleID string) (err error) {
	ctx, done := observe(ctx, "Delete", "saved_articles")
	defer func() { done(err) }()

	err = r.db.WithContext(ctx).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Delete(&models.SavedArticle{}).Error
	if err != nil {
		return models.NewStoreError(err)
	}
	return nil
}

func (r *savedArticleRepository) Exists(ctx context.Context, userID, articleID string) (exists bool, err error) {
	ctx, done := observe(ctx, "Exists", "saved_articles")
	defer func() { done(err) }()

	var count int64
	err = r.db.WithContext(ctx).Model(&models.SavedArticle{}).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Count(&count).Error
	if err != nil {
		return false, models.NewStoreError(err)
	}
	return count > 0, nil
}

// ListByUser pages through bookmarks newest first. Bookmarks on articles
// that are now drafts stay hidden unless the reader wrote them.
func (r *savedArticleRepository) ListByUser(ctx context.Context, userID string, limit, offset int) (saved []*models.SavedArticle, err error) {
	ctx, done := observe(ctx, "ListByUser", "saved_articles")
	defer func() { done(err) }()

	err = paginate(readDB(r.db).WithContext(ctx), limit, offset).
		Joins("JOIN articles ON articles.id = saved_articles.article_id").
		Preload("Article").
		Preload("Article.Author").
		Where("saved_articles.user_id = ?", userID).
		Where("(articles.published = ? OR articles.author_id = saved_articles.user_id)", true).
		Order("saved_articles.created_at DESC, saved_articles.id DESC").
		Find(&saved).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return saved, nil
}
