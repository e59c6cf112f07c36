package service

import (
	"context"
	"time"

	"knowhere/internal/models"
	"knowhere/internal/observability"
	"knowhere/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	now        func() time.Time
}

// FollowCounts is the follower/following totals shown on a profile.
type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

func NewFollowService(followRepo repository.FollowRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		now:        time.Now,
	}
}

// Follow creates the follower -> following edge. A repeated follow surfaces
// as CONFLICT from the store's uniqueness constraint.
func (s *FollowService) Follow(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	if followerID == "" {
		return nil, models.NewUnauthorizedError("Sign in to follow writers")
	}
	if followingID == "" {
		return nil, models.NewValidationError("Target user is required")
	}
	if followerID == followingID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}

	follow := &models.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   s.now(),
	}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		return nil, err
	}
	observability.FollowsTotal.WithLabelValues("follow").Inc()
	return follow, nil
}

// Unfollow succeeds whether or not the edge existed.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID string) error {
	if followerID == "" {
		return models.NewUnauthorizedError("Sign in to unfollow writers")
	}
	if err := s.followRepo.Delete(ctx, followerID, followingID); err != nil {
		return err
	}
	observability.FollowsTotal.WithLabelValues("unfollow").Inc()
	return nil
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == "" || followingID == "" {
		return false, nil
	}
	return s.followRepo.Exists(ctx, followerID, followingID)
}

// Followers returns one page of edges pointing at userID with the follower
// profile loaded, newest first.
func (s *FollowService) Followers(ctx context.Context, userID string, in ListInput) ([]*models.Follow, error) {
	in = in.normalized()
	return s.followRepo.ListFollowers(ctx, userID, in.Limit, in.Offset)
}

// Following returns one page of edges from userID with the followed profile
// loaded, newest first.
func (s *FollowService) Following(ctx context.Context, userID string, in ListInput) ([]*models.Follow, error) {
	in = in.normalized()
	return s.followRepo.ListFollowing(ctx, userID, in.Limit, in.Offset)
}

func (s *FollowService) Counts(ctx context.Context, userID string) (FollowCounts, error) {
	followers, following, err := s.followRepo.Counts(ctx, userID)
	if err != nil {
		return FollowCounts{}, err
	}
	return FollowCounts{Followers: followers, Following: following}, nil
}
