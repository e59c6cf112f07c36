package service

import (
	"context"
	"strings"
	"time"

	"knowhere/internal/models"
	"knowhere/internal/observability"
	"knowhere/internal/repository"
)

const maxCommentLen = 10000

type ClapService struct {
	clapRepo repository.ClapRepository
	now      func() time.Time
}

// ClapResult is the stored clap plus the article's post-increment counters.
type ClapResult struct {
	Clap    *models.Clap
	Article *models.Article
}

func NewClapService(clapRepo repository.ClapRepository) *ClapService {
	return &ClapService{
		clapRepo: clapRepo,
		now:      time.Now,
	}
}

// Clap upserts the caller's clap and adds one to claps_count atomically.
// Repeated claps keep a single row but each one counts. Drafts accept claps
// only from their author.
func (s *ClapService) Clap(ctx context.Context, articleID, userID string) (*ClapResult, error) {
	if userID == "" {
		return nil, models.NewUnauthorizedError("Sign in to clap")
	}
	if articleID == "" {
		return nil, models.NewValidationError("Article is required")
	}

	clap := &models.Clap{ArticleID: articleID, UserID: userID, CreatedAt: s.now()}
	article, err := s.clapRepo.Clap(ctx, clap)
	if err != nil {
		return nil, err
	}
	observability.ClapsTotal.Inc()
	return &ClapResult{Clap: clap, Article: article}, nil
}

func (s *ClapService) GetUserClap(ctx context.Context, articleID, userID string) (*models.Clap, bool, error) {
	if userID == "" {
		return nil, false, nil
	}
	return s.clapRepo.Get(ctx, articleID, userID)
}

type CommentService struct {
	commentRepo repository.CommentRepository
	now         func() time.Time
}

// AddCommentInput is a new comment. ParentID, when set, must name a comment
// on the same article; replies are not otherwise threaded.
type AddCommentInput struct {
	ArticleID string
	Content   string
	ParentID  *string
}

// CommentResult is the stored comment plus the article's post-increment counters.
type CommentResult struct {
	Comment *models.Comment
	Article *models.Article
}

func NewCommentService(commentRepo repository.CommentRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		now:         time.Now,
	}
}

// ListForArticle returns one page of comments oldest first with commenter
// profiles. Comments on a draft are NOT_FOUND unless viewerID wrote it.
func (s *CommentService) ListForArticle(ctx context.Context, articleID, viewerID string, in ListInput) ([]*models.Comment, error) {
	in = in.normalized()
	return s.commentRepo.ListByArticle(ctx, articleID, viewerID, in.Limit, in.Offset)
}

func (s *CommentService) Add(ctx context.Context, callerID string, in AddCommentInput) (*CommentResult, error) {
	if callerID == "" {
		return nil, models.NewUnauthorizedError("Sign in to comment")
	}
	body := strings.TrimSpace(in.Content)
	if body == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(body) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	var parentID *string
	if in.ParentID != nil && strings.TrimSpace(*in.ParentID) != "" {
		id := strings.TrimSpace(*in.ParentID)
		parent, found, err := s.commentRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found || parent.ArticleID != in.ArticleID {
			return nil, models.NewValidationError("Parent comment does not belong to this article")
		}
		parentID = &id
	}

	comment := &models.Comment{
		ArticleID: in.ArticleID,
		UserID:    callerID,
		Content:   body,
		ParentID:  parentID,
		CreatedAt: s.now(),
	}
	article, err := s.commentRepo.Create(ctx, comment)
	if err != nil {
		return nil, err
	}
	observability.CommentsTotal.Inc()
	return &CommentResult{Comment: comment, Article: article}, nil
}
