package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"knowhere/internal/cache"
	"knowhere/internal/models"

	"gorm.io/gorm"
)

const duplicateSlugMsg = "an article with this slug already exists"

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	ListPublished(ctx context.Context, limit, offset int) ([]*models.Article, error)
	ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.Article, error)
	ListPublishedByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article, columns []string) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Article, error)
	ListByTag(ctx context.Context, tag string, limit, offset int) ([]*models.Article, error)
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

// newestFirst breaks created_at ties on id so pages do not overlap.
const newestFirst = "created_at DESC, id DESC"

func (r *articleRepository) published(ctx context.Context, limit, offset int) *gorm.DB {
	return paginate(readDB(r.db).WithContext(ctx), limit, offset).
		Preload("Author").
		Where("published = ?", true).
		Order(newestFirst)
}

func (r *articleRepository) ListPublished(ctx context.Context, limit, offset int) (articles []*models.Article, err error) {
	ctx, done := observe(ctx, "ListPublished", "articles")
	defer func() { done(err) }()

	if err = r.published(ctx, limit, offset).Find(&articles).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	return articles, nil
}

func (r *articleRepository) ListByAuthor(ctx context.Context, authorID string, limit, offset int) (articles []*models.Article, err error) {
	ctx, done := observe(ctx, "ListByAuthor", "articles")
	defer func() { done(err) }()

	err = paginate(readDB(r.db).WithContext(ctx), limit, offset).
		Where("author_id = ?", authorID).
		Order(newestFirst).
		Find(&articles).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return articles, nil
}

func (r *articleRepository) ListPublishedByAuthor(ctx context.Context, authorID string, limit, offset int) (articles []*models.Article, err error) {
	ctx, done := observe(ctx, "ListPublishedByAuthor", "articles")
	defer func() { done(err) }()

	if err = r.published(ctx, limit, offset).Where("author_id = ?", authorID).Find(&articles).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	return articles, nil
}

// GetBySlug is served cache-aside; writes that touch an article invalidate its slug key.
func (r *articleRepository) GetBySlug(ctx context.Context, slug string) (article *models.Article, err error) {
	ctx, done := observe(ctx, "GetBySlug", "articles")
	defer func() { done(err) }()

	var found models.Article
	err = cache.Aside(ctx, cache.ArticleSlugKey(slug), &found, func() error {
		return readDB(r.db).WithContext(ctx).Preload("Author").Where("slug = ?", slug).First(&found).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Article", slug)
		}
		return nil, models.NewStoreError(err)
	}
	return &found, nil
}

func (r *articleRepository) GetByID(ctx context.Context, id string) (article *models.Article, err error) {
	ctx, done := observe(ctx, "GetByID", "articles")
	defer func() { done(err) }()

	var found models.Article
	if err = r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&found).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Article", id)
		}
		return nil, models.NewStoreError(err)
	}
	return &found, nil
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) (err error) {
	ctx, done := observe(ctx, "Create", "articles")
	defer func() { done(err) }()

	if err = r.db.WithContext(ctx).Omit("Author").Create(article).Error; err != nil {
		return storeError(err, duplicateSlugMsg)
	}
	return nil
}

// Update writes only the named columns of article. The counters are never
// in columns; they move through clap and comment writes.
func (r *articleRepository) Update(ctx context.Context, article *models.Article, columns []string) (err error) {
	ctx, done := observe(ctx, "Update", "articles")
	defer func() { done(err) }()

	var oldSlug string
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Article
		if err := tx.Select("id", "slug").Where("id = ?", article.ID).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Article", article.ID)
			}
			return err
		}
		oldSlug = current.Slug
		return tx.Model(&models.Article{ID: article.ID}).Select(columns).Omit("Author").Updates(article).Error
	})
	if err != nil {
		return storeError(err, duplicateSlugMsg)
	}

	cache.Invalidate(ctx, cache.ArticleSlugKey(oldSlug), cache.ArticleSlugKey(article.Slug))
	return nil
}

// Delete removes the article together with its comments, claps and saves.
func (r *articleRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, done := observe(ctx, "Delete", "articles")
	defer func() { done(err) }()

	var slug string
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Article
		if err := tx.Select("id", "slug").Where("id = ?", id).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Article", id)
			}
			return err
		}
		slug = current.Slug

		for _, dependent := range []any{&models.Comment{}, &models.Clap{}, &models.SavedArticle{}} {
			if err := tx.Where("article_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&models.Article{}).Error
	})
	if err != nil {
		return storeError(err, "")
	}

	cache.InvalidateArticle(ctx, slug)
	return nil
}

func (r *articleRepository) Search(ctx context.Context, query string, limit, offset int) (articles []*models.Article, err error) {
	ctx, done := observe(ctx, "Search", "articles")
	defer func() { done(err) }()

	p := likePattern(query)
	err = r.published(ctx, limit, offset).
		Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(subtitle) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`, p, p, p).
		Find(&articles).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return articles, nil
}

// ListByTag matches one element of the compact JSON tag array. An element
// starts right after '[' or ',', and the encoded tag carries its own
// quotes, so "go" never matches "golang" or a tag ending in `"go`.
func (r *articleRepository) ListByTag(ctx context.Context, tag string, limit, offset int) (articles []*models.Article, err error) {
	ctx, done := observe(ctx, "ListByTag", "articles")
	defer func() { done(err) }()

	encoded, err := json.Marshal(strings.ToLower(tag))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	element := likeEscaper.Replace(string(encoded))

	err = r.published(ctx, limit, offset).
		Where(`(LOWER(tags) LIKE ? ESCAPE '\' OR LOWER(tags) LIKE ? ESCAPE '\')`, "["+element+"%", "%,"+element+"%").
		Find(&articles).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return articles, nil
}
