package repository

import (
	"context"
	"errors"

	"knowhere/internal/cache"
	"knowhere/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Article, error)
	GetByID(ctx context.Context, id string) (*models.Comment, bool, error)
	ListByArticle(ctx context.Context, articleID, viewerID string, limit, offset int) ([]*models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment and bumps comments_count in one transaction,
// loading the commenter profile onto comment before commit. Once the
// transaction commits nothing else can fail. The returned article carries
// the post-increment counters.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (article *models.Article, err error) {
	ctx, done := observe(ctx, "Create", "comments")
	defer func() { done(err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		article, txErr = visibleArticle(tx, comment.ArticleID, comment.UserID)
		if txErr != nil {
			return txErr
		}
		if txErr = tx.Omit("Profile").Create(comment).Error; txErr != nil {
			return txErr
		}
		txErr = tx.Model(&models.Article{}).
			Where("id = ?", comment.ArticleID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + ?", 1)).Error
		if txErr != nil {
			return txErr
		}
		article.CommentsCount++

		var profile models.Profile
		switch perr := tx.Where("id = ?", comment.UserID).First(&profile).Error; {
		case perr == nil:
			comment.Profile = &profile
		case !errors.Is(perr, gorm.ErrRecordNotFound):
			return perr
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "")
	}
	cache.InvalidateArticle(ctx, article.Slug)
	return article, nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (comment *models.Comment, found bool, err error) {
	ctx, done := observe(ctx, "GetByID", "comments")
	defer func() { done(err) }()

	var row models.Comment
	if err = r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, models.NewStoreError(err)
	}
	return &row, true, nil
}

// ListByArticle pages through comments oldest first. A draft's comments are
// NOT_FOUND unless viewerID is its author.
func (r *commentRepository) ListByArticle(ctx context.Context, articleID, viewerID string, limit, offset int) (comments []*models.Comment, err error) {
	ctx, done := observe(ctx, "ListByArticle", "comments")
	defer func() { done(err) }()

	db := readDB(r.db).WithContext(ctx)
	if _, err = visibleArticle(db, articleID, viewerID); err != nil {
		return nil, storeError(err, "")
	}

	err = paginate(db, limit, offset).Preload("Profile").
		Where("article_id = ?", articleID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return comments, nil
}
