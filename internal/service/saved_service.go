package service

import (
	"context"
	"time"

	"knowhere/internal/models"
	"knowhere/internal/repository"
)

type SavedArticleService struct {
	savedRepo   repository.SavedArticleRepository
	articleRepo repository.ArticleRepository
	now         func() time.Time
}

func NewSavedArticleService(savedRepo repository.SavedArticleRepository, articleRepo repository.ArticleRepository) *SavedArticleService {
	return &SavedArticleService{
		savedRepo:   savedRepo,
		articleRepo: articleRepo,
		now:         time.Now,
	}
}

// Save bookmarks a published article, or one of the caller's own drafts.
// Other drafts are NOT_FOUND. Saving twice is a CONFLICT.
func (s *SavedArticleService) Save(ctx context.Context, userID, articleID string) (*models.SavedArticle, error) {
	if userID == "" {
		return nil, models.NewUnauthorizedError("Sign in to save articles")
	}
	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !article.Published && article.AuthorID != userID {
		return nil, models.NewNotFoundError("Article", articleID)
	}

	saved := &models.SavedArticle{UserID: userID, ArticleID: articleID, CreatedAt: s.now()}
	if err := s.savedRepo.Create(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// Unsave succeeds whether or not the bookmark existed.
func (s *SavedArticleService) Unsave(ctx context.Context, userID, articleID string) error {
	if userID == "" {
		return models.NewUnauthorizedError("Sign in to manage saved articles")
	}
	return s.savedRepo.Delete(ctx, userID, articleID)
}

func (s *SavedArticleService) IsSaved(ctx context.Context, userID, articleID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.savedRepo.Exists(ctx, userID, articleID)
}

// ListSaved returns one page of bookmarks newest first, each with its
// article and author. Bookmarks on other people's drafts are left out.
func (s *SavedArticleService) ListSaved(ctx context.Context, userID string, in ListInput) ([]*models.SavedArticle, error) {
	in = in.normalized()
	return s.savedRepo.ListByUser(ctx, userID, in.Limit, in.Offset)
}
