package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"knowhere/internal/models"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// articleRepoStub is a stub for repository.ArticleRepository.
type articleRepoStub struct {
	listPublishedFn         func(ctx context.Context, limit, offset int) ([]*models.Article, error)
	listByAuthorFn          func(ctx context.Context, authorID string, limit, offset int) ([]*models.Article, error)
	listPublishedByAuthorFn func(ctx context.Context, authorID string, limit, offset int) ([]*models.Article, error)
	getBySlugFn             func(context.Context, string) (*models.Article, error)
	getByIDFn               func(context.Context, string) (*models.Article, error)
	createFn                func(context.Context, *models.Article) error
	updateFn                func(context.Context, *models.Article, []string) error
	deleteFn                func(context.Context, string) error
	searchFn                func(ctx context.Context, q string, limit, offset int) ([]*models.Article, error)
	listByTagFn             func(ctx context.Context, tag string, limit, offset int) ([]*models.Article, error)
}

func (s *articleRepoStub) ListPublished(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	return s.listPublishedFn(ctx, limit, offset)
}
func (s *articleRepoStub) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.Article, error) {
	return s.listByAuthorFn(ctx, authorID, limit, offset)
}
func (s *articleRepoStub) ListPublishedByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.Article, error) {
	return s.listPublishedByAuthorFn(ctx, authorID, limit, offset)
}
func (s *articleRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *articleRepoStub) GetByID(ctx context.Context, id string) (*models.Article, error) {
	return s.getByIDFn(ctx, id)
}
func (s *articleRepoStub) Create(ctx context.Context, a *models.Article) error {
	return s.createFn(ctx, a)
}
func (s *articleRepoStub) Update(ctx context.Context, a *models.Article, columns []string) error {
	return s.updateFn(ctx, a, columns)
}
func (s *articleRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *articleRepoStub) Search(ctx context.Context, q string, limit, offset int) ([]*models.Article, error) {
	return s.searchFn(ctx, q, limit, offset)
}
func (s *articleRepoStub) ListByTag(ctx context.Context, tag string, limit, offset int) ([]*models.Article, error) {
	return s.listByTagFn(ctx, tag, limit, offset)
}

func noopArticleRepo() *articleRepoStub {
	none := func(context.Context, int, int) ([]*models.Article, error) { return nil, nil }
	byKey := func(context.Context, string, int, int) ([]*models.Article, error) { return nil, nil }
	return &articleRepoStub{
		listPublishedFn:         none,
		listByAuthorFn:          byKey,
		listPublishedByAuthorFn: byKey,
		getBySlugFn: func(_ context.Context, slug string) (*models.Article, error) {
			return nil, models.NewNotFoundError("Article", slug)
		},
		getByIDFn: func(_ context.Context, id string) (*models.Article, error) {
			return nil, models.NewNotFoundError("Article", id)
		},
		createFn:    func(context.Context, *models.Article) error { return nil },
		updateFn:    func(context.Context, *models.Article, []string) error { return nil },
		deleteFn:    func(context.Context, string) error { return nil },
		searchFn:    byKey,
		listByTagFn: byKey,
	}
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	getByIDFn       func(context.Context, string) (*models.Profile, bool, error)
	getByUsernameFn func(context.Context, string) (*models.Profile, bool, error)
	createFn        func(context.Context, *models.Profile) error
	updateFn        func(context.Context, *models.Profile, []string) error
	listExceptFn    func(context.Context, string, int) ([]*models.Profile, error)
}

func (s *profileRepoStub) GetByID(ctx context.Context, id string) (*models.Profile, bool, error) {
	return s.getByIDFn(ctx, id)
}
func (s *profileRepoStub) GetByUsername(ctx context.Context, username string) (*models.Profile, bool, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *profileRepoStub) Create(ctx context.Context, p *models.Profile) error {
	return s.createFn(ctx, p)
}
func (s *profileRepoStub) Update(ctx context.Context, p *models.Profile, columns []string) error {
	return s.updateFn(ctx, p, columns)
}
func (s *profileRepoStub) ListExcept(ctx context.Context, excludeID string, limit int) ([]*models.Profile, error) {
	return s.listExceptFn(ctx, excludeID, limit)
}

func noopProfileRepo() *profileRepoStub {
	missing := func(context.Context, string) (*models.Profile, bool, error) { return nil, false, nil }
	return &profileRepoStub{
		getByIDFn:       missing,
		getByUsernameFn: missing,
		createFn:        func(context.Context, *models.Profile) error { return nil },
		updateFn:        func(context.Context, *models.Profile, []string) error { return nil },
		listExceptFn:    func(context.Context, string, int) ([]*models.Profile, error) { return nil, nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	createFn        func(context.Context, *models.Follow) error
	deleteFn        func(context.Context, string, string) error
	existsFn        func(context.Context, string, string) (bool, error)
	listFollowersFn func(ctx context.Context, id string, limit, offset int) ([]*models.Follow, error)
	listFollowingFn func(ctx context.Context, id string, limit, offset int) ([]*models.Follow, error)
	countsFn        func(context.Context, string) (int64, int64, error)
}

func (s *followRepoStub) Create(ctx context.Context, f *models.Follow) error {
	return s.createFn(ctx, f)
}
func (s *followRepoStub) Delete(ctx context.Context, a, b string) error {
	return s.deleteFn(ctx, a, b)
}
func (s *followRepoStub) Exists(ctx context.Context, a, b string) (bool, error) {
	return s.existsFn(ctx, a, b)
}
func (s *followRepoStub) ListFollowers(ctx context.Context, id string, limit, offset int) ([]*models.Follow, error) {
	return s.listFollowersFn(ctx, id, limit, offset)
}
func (s *followRepoStub) ListFollowing(ctx context.Context, id string, limit, offset int) ([]*models.Follow, error) {
	return s.listFollowingFn(ctx, id, limit, offset)
}
func (s *followRepoStub) Counts(ctx context.Context, id string) (int64, int64, error) {
	return s.countsFn(ctx, id)
}

func noopFollowRepo() *followRepoStub {
	edges := func(context.Context, string, int, int) ([]*models.Follow, error) { return nil, nil }
	return &followRepoStub{
		createFn:        func(context.Context, *models.Follow) error { return nil },
		deleteFn:        func(context.Context, string, string) error { return nil },
		existsFn:        func(context.Context, string, string) (bool, error) { return false, nil },
		listFollowersFn: edges,
		listFollowingFn: edges,
		countsFn:        func(context.Context, string) (int64, int64, error) { return 0, 0, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) (*models.Article, error)
	getByIDFn       func(context.Context, string) (*models.Comment, bool, error)
	listByArticleFn func(ctx context.Context, articleID, viewerID string, limit, offset int) ([]*models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) (*models.Article, error) {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id string) (*models.Comment, bool, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByArticle(ctx context.Context, articleID, viewerID string, limit, offset int) ([]*models.Comment, error) {
	return s.listByArticleFn(ctx, articleID, viewerID, limit, offset)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) (*models.Article, error) {
			return &models.Article{ID: c.ArticleID, CommentsCount: 1}, nil
		},
		getByIDFn:       func(context.Context, string) (*models.Comment, bool, error) { return nil, false, nil },
		listByArticleFn: func(context.Context, string, string, int, int) ([]*models.Comment, error) { return nil, nil },
	}
}

var errStore = models.NewStoreError(errors.New("connection refused"))

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code, "unexpected code for %v", err)
}
