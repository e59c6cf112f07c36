package repository

import (
	"context"

	"knowhere/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines the interface for the follow graph
type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	Delete(ctx context.Context, followerID, followingID string) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowers(ctx context.Context, userID string, limit, offset int) ([]*models.Follow, error)
	ListFollowing(ctx context.Context, userID string, limit, offset int) ([]*models.Follow, error)
	Counts(ctx context.Context, userID string) (followers, following int64, err error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) (err error) {
	ctx, done := observe(ctx, "Create", "follows")
	defer func() { done(err) }()

	if err = r.db.WithContext(ctx).Omit("Follower", "Following").Create(follow).Error; err != nil {
		return storeError(err, "already following this user")
	}
	return nil
}

// Delete is not existence-checked; removing a missing edge succeeds.
func (r *followRepository) Delete(ctx context.Context, followerID, followingID string) (err error) {
	ctx, done := observe(ctx, "Delete", "follows")
	defer func() { done(err) }()

	err = r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error
	if err != nil {
		return models.NewStoreError(err)
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (exists bool, err error) {
	ctx, done := observe(ctx, "Exists", "follows")
	defer func() { done(err) }()

	var count int64
	err = r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, models.NewStoreError(err)
	}
	return count > 0, nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID string, limit, offset int) (follows []*models.Follow, err error) {
	ctx, done := observe(ctx, "ListFollowers", "follows")
	defer func() { done(err) }()

	err = paginate(readDB(r.db).WithContext(ctx), limit, offset).Preload("Follower").
		Where("following_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&follows).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return follows, nil
}

func (r *followRepository) ListFollowing(ctx context.Context, userID string, limit, offset int) (follows []*models.Follow, err error) {
	ctx, done := observe(ctx, "ListFollowing", "follows")
	defer func() { done(err) }()

	err = paginate(readDB(r.db).WithContext(ctx), limit, offset).Preload("Following").
		Where("follower_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&follows).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return follows, nil
}

func (r *followRepository) Counts(ctx context.Context, userID string) (followers, following int64, err error) {
	ctx, done := observe(ctx, "Counts", "follows")
	defer func() { done(err) }()

	db := readDB(r.db).WithContext(ctx)
	if err = db.Model(&models.Follow{}).Where("following_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, models.NewStoreError(err)
	}
	if err = db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, models.NewStoreError(err)
	}
	return followers, following, nil
}
