package service

import (
	"context"
	"testing"
	"time"

	"knowhere/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsService_AuthorStats(t *testing.T) {
	t.Parallel()

	old := fixedNow.Add(-60 * 24 * time.Hour)
	recent := fixedNow.Add(-2 * 24 * time.Hour)
	articles := []*models.Article{
		{Slug: "p1", Published: true, ClapsCount: 10, CommentsCount: 1, CreatedAt: old},
		{Slug: "p2", Published: true, ClapsCount: 1, CommentsCount: 0, CreatedAt: recent},
		{Slug: "draft", Published: false, ClapsCount: 50, CommentsCount: 50, CreatedAt: recent},
		{Slug: "p3", Published: true, ClapsCount: 0, CommentsCount: 4, CreatedAt: old},
		{Slug: "p4", Published: true, ClapsCount: 2, CommentsCount: 2, CreatedAt: old},
		{Slug: "p5", Published: true, ClapsCount: 0, CommentsCount: 0, CreatedAt: old},
		{Slug: "p6", Published: true, ClapsCount: 3, CommentsCount: 0, CreatedAt: old},
	}
	repo := noopArticleRepo()
	repo.listByAuthorFn = func(_ context.Context, _ string, limit, offset int) ([]*models.Article, error) {
		assert.Zero(t, limit, "stats read every article")
		assert.Zero(t, offset)
		return articles, nil
	}
	follows := noopFollowRepo()
	follows.countsFn = func(_ context.Context, id string) (int64, int64, error) {
		assert.Equal(t, "author", id)
		return 12, 4, nil
	}
	svc := NewStatsService(repo, noopProfileRepo(), follows)
	svc.now = fixedClock

	stats, err := svc.AuthorStats(context.Background(), "author")
	require.NoError(t, err)

	assert.Equal(t, 7, stats.TotalArticles)
	assert.Equal(t, 6, stats.PublishedArticles)
	assert.Equal(t, 1, stats.DraftArticles)
	assert.Equal(t, 66, stats.TotalClaps)
	assert.Equal(t, 57, stats.TotalComments)
	assert.Equal(t, 123, stats.TotalEngagement)
	assert.Equal(t, 11, stats.AvgClapsPerArticle, "66/6 = 11")
	assert.Equal(t, 10, stats.AvgCommentsPerArticle, "57/6 = 9.5 rounds up")
	assert.Equal(t, 2, stats.RecentArticles)
	assert.Equal(t, int64(12), stats.Followers)
	assert.Equal(t, int64(4), stats.Following)

	require.Len(t, stats.TopArticles, 5)
	var slugs []string
	for _, a := range stats.TopArticles {
		slugs = append(slugs, a.Slug)
	}
	assert.Equal(t, []string{"p1", "p3", "p4", "p6", "p2"}, slugs, "drafts never rank")
}

func TestStatsService_AuthorStatsWithoutPublished(t *testing.T) {
	t.Parallel()

	repo := noopArticleRepo()
	repo.listByAuthorFn = func(context.Context, string, int, int) ([]*models.Article, error) {
		return []*models.Article{{Published: false, ClapsCount: 4}}, nil
	}
	svc := NewStatsService(repo, noopProfileRepo(), noopFollowRepo())

	stats, err := svc.AuthorStats(context.Background(), "author")
	require.NoError(t, err)
	assert.Zero(t, stats.AvgClapsPerArticle)
	assert.Empty(t, stats.TopArticles)
	assert.NotNil(t, stats.TopArticles)
}

func TestStatsService_PublicAuthorStats(t *testing.T) {
	t.Parallel()

	profiles := noopProfileRepo()
	profiles.getByUsernameFn = func(_ context.Context, username string) (*models.Profile, bool, error) {
		if username == "ada" {
			return &models.Profile{ID: "u1", Username: "ada"}, true, nil
		}
		return nil, false, nil
	}
	articles := noopArticleRepo()
	articles.listPublishedByAuthorFn = func(_ context.Context, authorID string, _, _ int) ([]*models.Article, error) {
		require.Equal(t, "u1", authorID)
		return []*models.Article{{ClapsCount: 3, CommentsCount: 1}, {ClapsCount: 2}}, nil
	}
	follows := noopFollowRepo()
	follows.countsFn = func(context.Context, string) (int64, int64, error) { return 7, 2, nil }
	svc := NewStatsService(articles, profiles, follows)

	stats, err := svc.PublicAuthorStats(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PublishedArticles)
	assert.Equal(t, 5, stats.TotalClaps)
	assert.Equal(t, 1, stats.TotalComments)
	assert.Equal(t, int64(7), stats.Followers)
	assert.Equal(t, int64(2), stats.Following)

	stats, err = svc.PublicAuthorStats(context.Background(), "  ADA ")
	require.NoError(t, err)
	assert.Equal(t, "ada", stats.Profile.Username)

	_, err = svc.PublicAuthorStats(context.Background(), "nobody")
	assertCode(t, err, models.CodeNotFound)
}

func TestStatsService_AuthorStatsFollowCountError(t *testing.T) {
	t.Parallel()

	follows := noopFollowRepo()
	follows.countsFn = func(context.Context, string) (int64, int64, error) { return 0, 0, errStore }
	svc := NewStatsService(noopArticleRepo(), noopProfileRepo(), follows)

	_, err := svc.AuthorStats(context.Background(), "author")
	assert.ErrorIs(t, err, errStore)
}
