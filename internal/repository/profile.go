package repository

import (
	"context"
	"errors"

	"knowhere/internal/cache"
	"knowhere/internal/models"

	"gorm.io/gorm"
)

const duplicateUsernameMsg = "username is already taken"

// ProfileRepository defines the interface for profile data operations.
// Lookups report absence through the found flag rather than an error.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, bool, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, bool, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile, columns []string) error
	ListExcept(ctx context.Context, excludeID string, limit int) ([]*models.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) lookup(ctx context.Context, key, column, value string) (*models.Profile, bool, error) {
	var profile models.Profile
	err := cache.Aside(ctx, key, &profile, func() error {
		return readDB(r.db).WithContext(ctx).Where(column+" = ?", value).First(&profile).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, models.NewStoreError(err)
	}
	return &profile, true, nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (profile *models.Profile, found bool, err error) {
	ctx, done := observe(ctx, "GetByID", "profiles")
	defer func() { done(err) }()

	return r.lookup(ctx, cache.ProfileKey(id), "id", id)
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (profile *models.Profile, found bool, err error) {
	ctx, done := observe(ctx, "GetByUsername", "profiles")
	defer func() { done(err) }()

	return r.lookup(ctx, cache.ProfileUsernameKey(username), "username", username)
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) (err error) {
	ctx, done := observe(ctx, "Create", "profiles")
	defer func() { done(err) }()

	if err = r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return storeError(err, duplicateUsernameMsg)
	}
	return nil
}

// Update writes the named columns and drops both cache keys, including the
// one for the previous username.
func (r *profileRepository) Update(ctx context.Context, profile *models.Profile, columns []string) (err error) {
	ctx, done := observe(ctx, "Update", "profiles")
	defer func() { done(err) }()

	var oldUsername string
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Profile
		if err := tx.Select("id", "username").Where("id = ?", profile.ID).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Profile", profile.ID)
			}
			return err
		}
		oldUsername = current.Username
		return tx.Model(&models.Profile{ID: profile.ID}).Select(columns).Updates(profile).Error
	})
	if err != nil {
		return storeError(err, duplicateUsernameMsg)
	}

	cache.InvalidateProfile(ctx, profile.ID, oldUsername)
	if profile.Username != oldUsername {
		cache.Invalidate(ctx, cache.ProfileUsernameKey(profile.Username))
	}
	return nil
}

func (r *profileRepository) ListExcept(ctx context.Context, excludeID string, limit int) (profiles []*models.Profile, err error) {
	ctx, done := observe(ctx, "ListExcept", "profiles")
	defer func() { done(err) }()

	err = readDB(r.db).WithContext(ctx).
		Where("id <> ?", excludeID).
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return profiles, nil
}
