package service

import (
	"context"
	"math"
	"sort"
	"time"

	"knowhere/internal/models"
	"knowhere/internal/repository"
)

const (
	recentWindow = 30 * 24 * time.Hour
	topArticles  = 5
)

type StatsService struct {
	articleRepo repository.ArticleRepository
	profileRepo repository.ProfileRepository
	followRepo  repository.FollowRepository
	now         func() time.Time
}

// AuthorStats summarizes every article of one author for their dashboard.
type AuthorStats struct {
	TotalArticles         int               `json:"total_articles"`
	PublishedArticles     int               `json:"published_articles"`
	DraftArticles         int               `json:"draft_articles"`
	TotalClaps            int               `json:"total_claps"`
	TotalComments         int               `json:"total_comments"`
	TotalEngagement       int               `json:"total_engagement"`
	AvgClapsPerArticle    int               `json:"avg_claps_per_article"`
	AvgCommentsPerArticle int               `json:"avg_comments_per_article"`
	RecentArticles        int               `json:"recent_articles"`
	Followers             int64             `json:"followers"`
	Following             int64             `json:"following"`
	TopArticles           []*models.Article `json:"top_articles"`
}

// PublicAuthorStats is what a visitor sees on a profile page: totals over
// published articles only.
type PublicAuthorStats struct {
	Profile           *models.Profile `json:"profile"`
	PublishedArticles int             `json:"published_articles"`
	TotalClaps        int             `json:"total_claps"`
	TotalComments     int             `json:"total_comments"`
	Followers         int64           `json:"followers"`
	Following         int64           `json:"following"`
}

func NewStatsService(
	articleRepo repository.ArticleRepository,
	profileRepo repository.ProfileRepository,
	followRepo repository.FollowRepository,
) *StatsService {
	return &StatsService{
		articleRepo: articleRepo,
		profileRepo: profileRepo,
		followRepo:  followRepo,
		now:         time.Now,
	}
}

// AuthorStats totals claps and comments across drafts too; averages divide
// by the published count, and the top list ranks published articles by
// claps plus comments. Every article is read, not a page.
func (s *StatsService) AuthorStats(ctx context.Context, authorID string) (*AuthorStats, error) {
	if authorID == "" {
		return nil, models.NewUnauthorizedError("Sign in to view your stats")
	}
	articles, err := s.articleRepo.ListByAuthor(ctx, authorID, 0, 0)
	if err != nil {
		return nil, err
	}
	followers, following, err := s.followRepo.Counts(ctx, authorID)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-recentWindow)
	stats := &AuthorStats{
		TotalArticles: len(articles),
		Followers:     followers,
		Following:     following,
		TopArticles:   []*models.Article{},
	}
	var published []*models.Article
	for _, a := range articles {
		stats.TotalClaps += a.ClapsCount
		stats.TotalComments += a.CommentsCount
		if a.Published {
			published = append(published, a)
		}
		if a.CreatedAt.After(cutoff) {
			stats.RecentArticles++
		}
	}
	stats.PublishedArticles = len(published)
	stats.DraftArticles = stats.TotalArticles - stats.PublishedArticles
	stats.TotalEngagement = stats.TotalClaps + stats.TotalComments
	stats.AvgClapsPerArticle = roundedAverage(stats.TotalClaps, len(published))
	stats.AvgCommentsPerArticle = roundedAverage(stats.TotalComments, len(published))

	sort.SliceStable(published, func(i, j int) bool {
		return published[i].Engagement() > published[j].Engagement()
	})
	if len(published) > topArticles {
		published = published[:topArticles]
	}
	stats.TopArticles = append(stats.TopArticles, published...)
	return stats, nil
}

// PublicAuthorStats looks the author up by username the way profile pages
// do, trimmed and lowercased.
func (s *StatsService) PublicAuthorStats(ctx context.Context, username string) (*PublicAuthorStats, error) {
	username = normalizeUsername(username)
	profile, found, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.NewNotFoundError("Profile", username)
	}

	articles, err := s.articleRepo.ListPublishedByAuthor(ctx, profile.ID, 0, 0)
	if err != nil {
		return nil, err
	}
	followers, following, err := s.followRepo.Counts(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	stats := &PublicAuthorStats{
		Profile:           profile,
		PublishedArticles: len(articles),
		Followers:         followers,
		Following:         following,
	}
	for _, a := range articles {
		stats.TotalClaps += a.ClapsCount
		stats.TotalComments += a.CommentsCount
	}
	return stats, nil
}

func roundedAverage(total, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Floor(float64(total)/float64(n) + 0.5))
}
