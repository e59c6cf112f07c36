package server

import (
	"net/http"
	"testing"
	"time"

	"knowhere/internal/models"
	"knowhere/internal/service"
	"knowhere/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureMyProfile(t *testing.T) {
	ts := newTestServer(t)
	token := tokenFor(t, "user_ada", "ada")

	status, _ := ts.do(t, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := ts.do(t, http.MethodPost, "/api/me", token, nil)
	require.Equal(t, http.StatusCreated, status, string(body))
	created := decode[models.Profile](t, body)
	assert.Equal(t, "user_ada", created.ID)
	assert.Equal(t, "ada", created.Username)

	status, body = ts.do(t, http.MethodPost, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, created.Username, decode[models.Profile](t, body).Username)

	status, body = ts.do(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user_ada", decode[models.Profile](t, body).ID)
}

func TestUpdateMyProfile(t *testing.T) {
	ts := newTestServer(t)
	testutil.CreateProfile(t, ts.db, "user_ada", "ada")
	testutil.CreateProfile(t, ts.db, "user_bob", "bob")
	token := tokenFor(t, "user_ada", "ada")

	status, body := ts.do(t, http.MethodPatch, "/api/me", token, map[string]any{"bio": "Writes about compilers"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "Writes about compilers", decode[models.Profile](t, body).Bio)

	status, _ = ts.do(t, http.MethodPatch, "/api/me", token, map[string]any{"username": "bob"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = ts.do(t, http.MethodPatch, "/api/me", token, map[string]any{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetMyArticlesIncludesDrafts(t *testing.T) {
	ts := newTestServer(t)
	testutil.CreateProfile(t, ts.db, "user_ada", "ada")
	testutil.CreateArticle(t, ts.db, "user_ada", "published-piece", true, time.Now().Add(-time.Hour))
	testutil.CreateArticle(t, ts.db, "user_ada", "draft-piece", false, time.Now())

	status, body := ts.do(t, http.MethodGet, "/api/me/articles", tokenFor(t, "user_ada", "ada"), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Article](t, body), 2)

	status, body = ts.do(t, http.MethodGet, "/api/profiles/ada/articles", "", nil)
	require.Equal(t, http.StatusOK, status)
	public := decode[[]models.Article](t, body)
	require.Len(t, public, 1)
	assert.Equal(t, "published-piece", public[0].Slug)
}

func TestGetMyStats(t *testing.T) {
	ts := newTestServer(t)
	testutil.CreateProfile(t, ts.db, "user_ada", "ada")
	testutil.CreateArticle(t, ts.db, "user_ada", "one", true, time.Now())
	testutil.CreateArticle(t, ts.db, "user_ada", "two", false, time.Now())

	status, body := ts.do(t, http.MethodGet, "/api/me/stats", tokenFor(t, "user_ada", "ada"), nil)
	require.Equal(t, http.StatusOK, status, string(body))
	stats := decode[service.AuthorStats](t, body)
	assert.Equal(t, 2, stats.TotalArticles)
	assert.Equal(t, 1, stats.PublishedArticles)
	assert.Equal(t, 1, stats.DraftArticles)
	assert.Zero(t, stats.Followers)

	testutil.CreateProfile(t, ts.db, "user_bob", "bob")
	require.NoError(t, ts.db.Create(&models.Follow{FollowerID: "user_bob", FollowingID: "user_ada"}).Error)
	require.NoError(t, ts.db.Create(&models.Follow{FollowerID: "user_ada", FollowingID: "user_bob"}).Error)

	status, body = ts.do(t, http.MethodGet, "/api/me/stats", tokenFor(t, "user_ada", "ada"), nil)
	require.Equal(t, http.StatusOK, status, string(body))
	stats = decode[service.AuthorStats](t, body)
	assert.Equal(t, int64(1), stats.Followers)
	assert.Equal(t, int64(1), stats.Following)
}

func TestGetProfile(t *testing.T) {
	ts := newTestServer(t)
	testutil.CreateProfile(t, ts.db, "user_ada", "ada")
	testutil.CreateArticle(t, ts.db, "user_ada", "one", true, time.Now())

	status, body := ts.do(t, http.MethodGet, "/api/profiles/ada", "", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	public := decode[service.PublicAuthorStats](t, body)
	require.NotNil(t, public.Profile)
	assert.Equal(t, "ada", public.Profile.Username)
	assert.Equal(t, 1, public.PublishedArticles)

	for _, name := range []string{"Ada", "ADA"} {
		status, body = ts.do(t, http.MethodGet, "/api/profiles/"+name, "", nil)
		require.Equal(t, http.StatusOK, status, name)
		assert.Equal(t, "ada", decode[service.PublicAuthorStats](t, body).Profile.Username)
	}

	status, body = ts.do(t, http.MethodGet, "/api/profiles/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeNotFound, decode[models.ErrorResponse](t, body).Code)

	status, _ = ts.do(t, http.MethodGet, "/api/profiles/nobody/followers", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestFollowFlow(t *testing.T) {
	ts := newTestServer(t)
	testutil.CreateProfile(t, ts.db, "user_ada", "ada")
	bob := tokenFor(t, "user_bob", "bob")

	status, body := ts.do(t, http.MethodGet, "/api/profiles/ada/follow", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, decode[map[string]bool](t, body)["following"])

	status, body = ts.do(t, http.MethodPost, "/api/profiles/ada/follow", bob, nil)
	require.Equal(t, http.StatusCreated, status, string(body))

	status, _ = ts.do(t, http.MethodPost, "/api/profiles/ada/follow", bob, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = ts.do(t, http.MethodPost, "/api/profiles/ada/follow", tokenFor(t, "user_ada", "ada"), nil)
	assert.Equal(t, http.StatusBadRequest, status, "self-follow")

	status, body = ts.do(t, http.MethodGet, "/api/profiles/ada/followers", "", nil)
	require.Equal(t, http.StatusOK, status)
	followers := decode[[]map[string]any](t, body)
	require.Len(t, followers, 1)
	assert.Equal(t, "user_bob", followers[0]["id"])
	assert.NotContains(t, followers[0], "bio", "lists carry the profile summary")
	assert.NotContains(t, followers[0], "created_at")

	status, body = ts.do(t, http.MethodGet, "/api/profiles/bob/following", "", nil)
	require.Equal(t, http.StatusOK, status)
	following := decode[[]models.ProfileSummary](t, body)
	require.Len(t, following, 1)
	assert.Equal(t, "ada", following[0].Username)

	status, body = ts.do(t, http.MethodGet, "/api/profiles/ada", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), decode[service.PublicAuthorStats](t, body).Followers)

	status, _ = ts.do(t, http.MethodDelete, "/api/profiles/ada/follow", bob, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = ts.do(t, http.MethodGet, "/api/profiles/ada/follow", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, decode[map[string]bool](t, body)["following"])
}

func TestGetSuggestedProfiles(t *testing.T) {
	ts := newTestServer(t)
	testutil.CreateProfile(t, ts.db, "user_ada", "ada")
	testutil.CreateProfile(t, ts.db, "user_bob", "bob")
	testutil.CreateProfile(t, ts.db, "user_cy", "cy")

	status, body := ts.do(t, http.MethodGet, "/api/me/suggestions", tokenFor(t, "user_ada", "ada"), nil)
	require.Equal(t, http.StatusOK, status, string(body))
	suggested := decode[[]models.Profile](t, body)
	require.Len(t, suggested, 2)
	for _, p := range suggested {
		assert.NotEqual(t, "user_ada", p.ID)
	}
}
