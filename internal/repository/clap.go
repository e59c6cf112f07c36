package repository

import (
	"context"
	"errors"

	"knowhere/internal/cache"
	"knowhere/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClapRepository defines the interface for clap data operations
type ClapRepository interface {
	Clap(ctx context.Context, clap *models.Clap) (*models.Article, error)
	Get(ctx context.Context, articleID, userID string) (*models.Clap, bool, error)
}

type clapRepository struct {
	db *gorm.DB
}

// NewClapRepository creates a new clap repository
func NewClapRepository(db *gorm.DB) ClapRepository {
	return &clapRepository{db: db}
}

// visibleArticle loads the id, slug, author and counters of an article, or
// returns NOT_FOUND. Drafts are NOT_FOUND to everyone but their author, so
// nobody else can clap, comment on or read the comments of a draft.
func visibleArticle(tx *gorm.DB, articleID, viewerID string) (*models.Article, error) {
	var article models.Article
	err := tx.Select("id", "slug", "author_id", "title", "published", "claps_count", "comments_count").
		Where("id = ?", articleID).
		First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Article", articleID)
		}
		return nil, err
	}
	if !article.Published && article.AuthorID != viewerID {
		return nil, models.NewNotFoundError("Article", articleID)
	}
	return &article, nil
}

// Clap upserts the (article, user) row with count 1 and bumps claps_count
// by one in the same transaction. Every call counts, including repeats.
// The returned article carries the post-increment counters.
func (r *clapRepository) Clap(ctx context.Context, clap *models.Clap) (article *models.Article, err error) {
	ctx, done := observe(ctx, "Clap", "claps")
	defer func() { done(err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		article, txErr = visibleArticle(tx, clap.ArticleID, clap.UserID)
		if txErr != nil {
			return txErr
		}

		clap.Count = 1
		txErr = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "article_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"count"}),
		}).Create(clap).Error
		if txErr != nil {
			return txErr
		}
		// On conflict the stored row keeps its original id and created_at.
		var stored models.Clap
		if txErr = tx.Where("article_id = ? AND user_id = ?", clap.ArticleID, clap.UserID).First(&stored).Error; txErr != nil {
			return txErr
		}
		*clap = stored

		txErr = tx.Model(&models.Article{}).
			Where("id = ?", clap.ArticleID).
			UpdateColumn("claps_count", gorm.Expr("claps_count + ?", 1)).Error
		if txErr != nil {
			return txErr
		}
		article.ClapsCount++
		return nil
	})
	if err != nil {
		return nil, storeError(err, "")
	}

	cache.InvalidateArticle(ctx, article.Slug)
	return article, nil
}

func (r *clapRepository) Get(ctx context.Context, articleID, userID string) (clap *models.Clap, found bool, err error) {
	ctx, done := observe(ctx, "Get", "claps")
	defer func() { done(err) }()

	var row models.Clap
	err = r.db.WithContext(ctx).Where("article_id = ? AND user_id = ?", articleID, userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, models.NewStoreError(err)
	}
	return &row, true, nil
}
