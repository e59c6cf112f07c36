package server

import (
	"strings"

	"knowhere/internal/middleware"
	"knowhere/internal/models"
	"knowhere/internal/service"

	"github.com/gofiber/fiber/v2"
)

// EnsureCallerProfile creates the caller's profile from token claims on
// first use, so writes referencing profiles never hit a missing row.
// Must be placed after AuthRequired.
func (s *Server) EnsureCallerProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := middleware.CurrentIdentity(c)
		if !ok {
			return respondError(c, models.NewUnauthorizedError("Authorization required"))
		}
		if _, _, err := s.profiles.Ensure(c.UserContext(), ensureInput(id)); err != nil {
			return respondError(c, err)
		}
		return c.Next()
	}
}

func ensureInput(id *middleware.Identity) service.EnsureProfileInput {
	return service.EnsureProfileInput{
		UserID:    id.UserID,
		Username:  id.Username,
		FullName:  id.FullName,
		AvatarURL: id.AvatarURL,
	}
}

// profileByUsername resolves the :username route parameter.
func (s *Server) profileByUsername(c *fiber.Ctx) (*models.Profile, error) {
	username := c.Params("username")
	profile, found, err := s.profiles.GetByUsername(c.UserContext(), username)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.NewNotFoundError("Profile", strings.ToLower(username))
	}
	return profile, nil
}

// GetMyProfile handles GET /api/me
// @Summary Get the caller's profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	caller := callerID(c)
	profile, found, err := s.profiles.Get(c.UserContext(), caller)
	if err != nil {
		return respondError(c, err)
	}
	if !found {
		return respondError(c, models.NewNotFoundError("Profile", caller))
	}
	return c.JSON(profile)
}

// EnsureMyProfile handles POST /api/me
// @Summary Create the caller's profile on first sign-in
// @Description Returns 201 when the profile was created and 200 when it already existed.
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Success 201 {object} models.Profile
// @Router /me [post]
func (s *Server) EnsureMyProfile(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	profile, created, err := s.profiles.Ensure(c.UserContext(), ensureInput(id))
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(profile)
}

// UpdateMyProfile handles PATCH /api/me
// @Summary Update the caller's profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{username=string,full_name=string,avatar_url=string,bio=string,location=string,website=string} true "Changed fields"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /me [patch]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username  *string `json:"username"`
		FullName  *string `json:"full_name"`
		AvatarURL *string `json:"avatar_url"`
		Bio       *string `json:"bio"`
		Location  *string `json:"location"`
		Website   *string `json:"website"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	caller := callerID(c)
	profile, err := s.profiles.Update(c.UserContext(), caller, caller, service.UpdateProfileInput{
		Username:  req.Username,
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
		Location:  req.Location,
		Website:   req.Website,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// GetMyArticles handles GET /api/me/articles
// @Summary List the caller's articles, drafts included
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Article
// @Router /me/articles [get]
func (s *Server) GetMyArticles(c *fiber.Ctx) error {
	articles, err := s.articles.ListByAuthor(c.UserContext(), callerID(c), parsePagination(c, defaultPageLimit).input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(articles)
}

// GetMySavedArticles handles GET /api/me/saved
// @Summary List the caller's reading list
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.SavedArticle
// @Router /me/saved [get]
func (s *Server) GetMySavedArticles(c *fiber.Ctx) error {
	saved, err := s.saved.ListSaved(c.UserContext(), callerID(c), parsePagination(c, defaultPageLimit).input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(saved)
}

// GetMyStats handles GET /api/me/stats
// @Summary Author dashboard statistics
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.AuthorStats
// @Router /me/stats [get]
func (s *Server) GetMyStats(c *fiber.Ctx) error {
	stats, err := s.stats.AuthorStats(c.UserContext(), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// GetSuggestedProfiles handles GET /api/me/suggestions
// @Summary Profiles to follow
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum profiles (default 5, max 50)"
// @Success 200 {array} models.Profile
// @Router /me/suggestions [get]
func (s *Server) GetSuggestedProfiles(c *fiber.Ctx) error {
	profiles, err := s.profiles.Suggested(c.UserContext(), callerID(c), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profiles)
}

// GetProfile handles GET /api/profiles/:username
// @Summary Public profile with published totals and follow counts
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} service.PublicAuthorStats
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{username} [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	stats, err := s.stats.PublicAuthorStats(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// GetProfileArticles handles GET /api/profiles/:username/articles
// @Summary Published articles of one author
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.Article
// @Router /profiles/{username}/articles [get]
func (s *Server) GetProfileArticles(c *fiber.Ctx) error {
	profile, err := s.profileByUsername(c)
	if err != nil {
		return respondError(c, err)
	}
	articles, err := s.articles.ListByAuthorWithProfile(c.UserContext(), profile.ID, parsePagination(c, defaultPageLimit).input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(articles)
}

// GetFollowers handles GET /api/profiles/:username/followers
// @Summary Profiles following this author, newest first
// @Tags follows
// @Produce json
// @Param username path string true "Username"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.ProfileSummary
// @Router /profiles/{username}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	profile, err := s.profileByUsername(c)
	if err != nil {
		return respondError(c, err)
	}
	edges, err := s.follows.Followers(c.UserContext(), profile.ID, parsePagination(c, defaultPageLimit).input())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]models.ProfileSummary, 0, len(edges))
	for _, e := range edges {
		if e.Follower != nil {
			out = append(out, e.Follower.Summary())
		}
	}
	return c.JSON(out)
}

// GetFollowing handles GET /api/profiles/:username/following
// @Summary Profiles this author follows, newest first
// @Tags follows
// @Produce json
// @Param username path string true "Username"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.ProfileSummary
// @Router /profiles/{username}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	profile, err := s.profileByUsername(c)
	if err != nil {
		return respondError(c, err)
	}
	edges, err := s.follows.Following(c.UserContext(), profile.ID, parsePagination(c, defaultPageLimit).input())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]models.ProfileSummary, 0, len(edges))
	for _, e := range edges {
		if e.Following != nil {
			out = append(out, e.Following.Summary())
		}
	}
	return c.JSON(out)
}

// GetFollowStatus handles GET /api/profiles/:username/follow
// @Summary Whether the caller follows this author
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} object{following=bool}
// @Router /profiles/{username}/follow [get]
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	profile, err := s.profileByUsername(c)
	if err != nil {
		return respondError(c, err)
	}
	following, err := s.follows.IsFollowing(c.UserContext(), callerID(c), profile.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// FollowProfile handles POST /api/profiles/:username/follow
// @Summary Follow an author
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 201 {object} models.Follow
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /profiles/{username}/follow [post]
func (s *Server) FollowProfile(c *fiber.Ctx) error {
	profile, err := s.profileByUsername(c)
	if err != nil {
		return respondError(c, err)
	}
	follow, err := s.follows.Follow(c.UserContext(), callerID(c), profile.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(follow)
}

// UnfollowProfile handles DELETE /api/profiles/:username/follow
// @Summary Unfollow an author
// @Tags follows
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 204
// @Router /profiles/{username}/follow [delete]
func (s *Server) UnfollowProfile(c *fiber.Ctx) error {
	profile, err := s.profileByUsername(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.follows.Unfollow(c.UserContext(), callerID(c), profile.ID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFeatureFlags handles GET /api/me/feature-flags
// @Summary Configured feature flags and their value for the caller
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{raw=object,evaluated=object}
// @Router /me/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(callerID(c)),
	})
}
