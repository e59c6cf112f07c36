package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"knowhere/internal/models"
	"knowhere/internal/repository"
	"knowhere/internal/validation"

	"github.com/google/uuid"
)

const (
	defaultSuggestedLimit = 5
	maxSuggestedLimit     = 50
	maxBioLen             = 1000
)

var usernameStrip = regexp.MustCompile(`[^a-z0-9_]+`)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	now         func() time.Time
}

// UpdateProfileInput is a partial update; nil fields are left unchanged.
type UpdateProfileInput struct {
	Username  *string
	FullName  *string
	AvatarURL *string
	Bio       *string
	Location  *string
	Website   *string
}

// EnsureProfileInput carries the identity claims seen on first sign-in.
type EnsureProfileInput struct {
	UserID    string
	Username  string
	FullName  string
	AvatarURL string
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		now:         time.Now,
	}
}

// Get reports absence through found; only store failures are errors.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, bool, error) {
	return s.profileRepo.GetByID(ctx, userID)
}

func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*models.Profile, bool, error) {
	return s.profileRepo.GetByUsername(ctx, normalizeUsername(username))
}

// normalizeUsername is the stored form of a username: trimmed, lowercase.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Update changes userID's profile. The caller must be that user.
func (s *ProfileService) Update(ctx context.Context, callerID, userID string, in UpdateProfileInput) (*models.Profile, error) {
	if callerID == "" {
		return nil, models.NewUnauthorizedError("Sign in to edit your profile")
	}
	if callerID != userID {
		return nil, models.NewForbiddenError("You can only edit your own profile")
	}

	profile, found, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.NewNotFoundError("Profile", userID)
	}

	var columns []string
	set := func(dst *string, src *string, column string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
			columns = append(columns, column)
		}
	}

	if in.Username != nil {
		username := normalizeUsername(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		profile.Username = username
		columns = append(columns, "username")
	}
	if in.Bio != nil && len(*in.Bio) > maxBioLen {
		return nil, models.NewValidationError("Bio too long (max 1000 characters)")
	}
	set(&profile.FullName, in.FullName, "full_name")
	set(&profile.AvatarURL, in.AvatarURL, "avatar_url")
	set(&profile.Bio, in.Bio, "bio")
	set(&profile.Location, in.Location, "location")
	set(&profile.Website, in.Website, "website")

	if len(columns) == 0 {
		return profile, nil
	}
	profile.UpdatedAt = s.now()
	columns = append(columns, "updated_at")

	if err := s.profileRepo.Update(ctx, profile, columns); err != nil {
		return nil, err
	}
	return profile, nil
}

// Suggested returns up to limit other profiles in store order. It is not a
// ranking: limit defaults to 5 and is capped at 50.
func (s *ProfileService) Suggested(ctx context.Context, excludeUserID string, limit int) ([]*models.Profile, error) {
	if limit <= 0 {
		limit = defaultSuggestedLimit
	}
	if limit > maxSuggestedLimit {
		limit = maxSuggestedLimit
	}
	return s.profileRepo.ListExcept(ctx, excludeUserID, limit)
}

// Ensure returns the caller's profile, creating it from identity claims the
// first time. A taken username gets a short random suffix.
func (s *ProfileService) Ensure(ctx context.Context, in EnsureProfileInput) (*models.Profile, bool, error) {
	if in.UserID == "" {
		return nil, false, models.NewUnauthorizedError("Missing user identity")
	}

	existing, found, err := s.profileRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, false, err
	}
	if found {
		return existing, false, nil
	}

	username := candidateUsername(in)
	now := s.now()
	profile := &models.Profile{
		ID:        in.UserID,
		Username:  username,
		FullName:  strings.TrimSpace(in.FullName),
		AvatarURL: strings.TrimSpace(in.AvatarURL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.profileRepo.Create(ctx, profile)
	if models.HasCode(err, models.CodeConflict) {
		profile.Username = withSuffix(username)
		err = s.profileRepo.Create(ctx, profile)
	}
	if err != nil {
		return nil, false, err
	}
	return profile, true, nil
}

func candidateUsername(in EnsureProfileInput) string {
	for _, raw := range []string{in.Username, in.FullName} {
		name := usernameStrip.ReplaceAllString(strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", "_")), "")
		name = strings.Trim(name, "_")
		if len(name) > 24 {
			name = name[:24]
		}
		if validation.ValidateUsername(name) == nil {
			return name
		}
	}
	return withSuffix("user")
}

func withSuffix(username string) string {
	if len(username) > 23 {
		username = username[:23]
	}
	return username + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
