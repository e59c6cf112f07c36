package service

import (
	"context"
	"strings"
	"time"

	"knowhere/internal/content"
	"knowhere/internal/models"
	"knowhere/internal/observability"
	"knowhere/internal/repository"
	"knowhere/internal/validation"
)

const (
	maxTitleLen   = 300
	maxContentLen = 100000
)

type ArticleService struct {
	articleRepo repository.ArticleRepository
	now         func() time.Time
}

// CreateArticleInput is an author's draft. Slug and ReadTime are derived
// when left zero; counters are not part of the input.
type CreateArticleInput struct {
	Title         string
	Subtitle      string
	Content       string
	Slug          string
	FeaturedImage string
	Tags          []string
	ReadTime      int
	Published     bool
}

// UpdateArticleResult is the stored article after an update. JustPublished
// is set when this update moved the article from draft to published for the
// first time.
type UpdateArticleResult struct {
	Article       *models.Article
	JustPublished bool
}

// UpdateArticleInput is a partial update; nil fields are left unchanged.
type UpdateArticleInput struct {
	Title         *string
	Subtitle      *string
	Content       *string
	Slug          *string
	FeaturedImage *string
	Tags          *[]string
	Published     *bool
}

func NewArticleService(articleRepo repository.ArticleRepository) *ArticleService {
	return &ArticleService{
		articleRepo: articleRepo,
		now:         time.Now,
	}
}

func (s *ArticleService) ListPublished(ctx context.Context, in ListInput) ([]*models.Article, error) {
	in = in.normalized()
	return s.articleRepo.ListPublished(ctx, in.Limit, in.Offset)
}

// ListByAuthor returns drafts and published articles; it backs the owner's dashboard.
func (s *ArticleService) ListByAuthor(ctx context.Context, authorID string, in ListInput) ([]*models.Article, error) {
	in = in.normalized()
	return s.articleRepo.ListByAuthor(ctx, authorID, in.Limit, in.Offset)
}

// ListByAuthorWithProfile backs public author pages, so drafts are excluded.
func (s *ArticleService) ListByAuthorWithProfile(ctx context.Context, authorID string, in ListInput) ([]*models.Article, error) {
	in = in.normalized()
	return s.articleRepo.ListPublishedByAuthor(ctx, authorID, in.Limit, in.Offset)
}

func (s *ArticleService) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return s.articleRepo.GetBySlug(ctx, slug)
}

// Search matches title, subtitle and content. A blank query lists everything published.
func (s *ArticleService) Search(ctx context.Context, query string, in ListInput) ([]*models.Article, error) {
	in = in.normalized()
	query = strings.TrimSpace(query)
	if query == "" {
		return s.articleRepo.ListPublished(ctx, in.Limit, in.Offset)
	}
	return s.articleRepo.Search(ctx, query, in.Limit, in.Offset)
}

func (s *ArticleService) ListByTag(ctx context.Context, tag string, in ListInput) ([]*models.Article, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, models.NewValidationError("Tag is required")
	}
	in = in.normalized()
	return s.articleRepo.ListByTag(ctx, tag, in.Limit, in.Offset)
}

func (s *ArticleService) Create(ctx context.Context, callerID string, in CreateArticleInput) (*models.Article, error) {
	if callerID == "" {
		return nil, models.NewUnauthorizedError("Sign in to write articles")
	}

	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}

	var slug string
	if strings.TrimSpace(in.Slug) != "" {
		slug = content.Slugify(in.Slug)
	} else {
		slug = content.TruncateSlug(content.Slugify(title), validation.MaxSlugLen)
	}
	if err := validation.ValidateArticleSlug(slug); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	readTime := in.ReadTime
	if readTime <= 0 {
		readTime = content.ReadTime(in.Content)
	}

	now := s.now()
	article := &models.Article{
		Title:         title,
		Subtitle:      strings.TrimSpace(in.Subtitle),
		Content:       in.Content,
		Slug:          slug,
		AuthorID:      callerID,
		Published:     in.Published,
		FeaturedImage: strings.TrimSpace(in.FeaturedImage),
		Tags:          content.NormalizeTags(in.Tags),
		ReadTime:      readTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Published {
		article.PublishedAt = &now
	}

	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, err
	}
	if article.Published {
		observability.ArticlesPublished.Inc()
	}
	return article, nil
}

// Update applies the non-nil fields of in. Only the author may update.
// Changing content recomputes read_time; the first publish stamps
// published_at and is reported through JustPublished.
func (s *ArticleService) Update(ctx context.Context, callerID, id string, in UpdateArticleInput) (*UpdateArticleResult, error) {
	article, err := s.ownedArticle(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	var columns []string
	firstPublish := false
	now := s.now()

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		article.Title = title
		columns = append(columns, "title")
	}
	if in.Subtitle != nil {
		article.Subtitle = strings.TrimSpace(*in.Subtitle)
		columns = append(columns, "subtitle")
	}
	if in.Content != nil {
		if err := validateContent(*in.Content); err != nil {
			return nil, err
		}
		article.Content = *in.Content
		article.ReadTime = content.ReadTime(*in.Content)
		columns = append(columns, "content", "read_time")
	}
	if in.Slug != nil {
		slug := content.Slugify(*in.Slug)
		if err := validation.ValidateArticleSlug(slug); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		article.Slug = slug
		columns = append(columns, "slug")
	}
	if in.FeaturedImage != nil {
		article.FeaturedImage = strings.TrimSpace(*in.FeaturedImage)
		columns = append(columns, "featured_image")
	}
	if in.Tags != nil {
		article.Tags = content.NormalizeTags(*in.Tags)
		columns = append(columns, "tags")
	}
	if in.Published != nil {
		article.Published = *in.Published
		columns = append(columns, "published")
		if article.Published && article.PublishedAt == nil {
			article.PublishedAt = &now
			columns = append(columns, "published_at")
			firstPublish = true
		}
	}

	if len(columns) == 0 {
		return &UpdateArticleResult{Article: article}, nil
	}
	article.UpdatedAt = now
	columns = append(columns, "updated_at")

	if err := s.articleRepo.Update(ctx, article, columns); err != nil {
		return nil, err
	}
	if firstPublish {
		observability.ArticlesPublished.Inc()
	}
	stored, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &UpdateArticleResult{Article: stored, JustPublished: firstPublish}, nil
}

func (s *ArticleService) Remove(ctx context.Context, callerID, id string) error {
	if _, err := s.ownedArticle(ctx, callerID, id); err != nil {
		return err
	}
	return s.articleRepo.Delete(ctx, id)
}

func (s *ArticleService) ownedArticle(ctx context.Context, callerID, id string) (*models.Article, error) {
	if callerID == "" {
		return nil, models.NewUnauthorizedError("Sign in to edit articles")
	}
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != callerID {
		return nil, models.NewForbiddenError("Only the author can change this article")
	}
	return article, nil
}

func validateTitle(title string) error {
	if title == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 300 characters)")
	}
	return nil
}

func validateContent(body string) error {
	if strings.TrimSpace(body) == "" {
		return models.NewValidationError("Content is required")
	}
	if len(body) > maxContentLen {
		return models.NewValidationError("Content too long (max 100000 characters)")
	}
	return nil
}
