package server

import (
	"net/http"
	"testing"
	"time"

	"knowhere/internal/models"
	"knowhere/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedArticle(t *testing.T, ts *testServer) *models.Article {
	t.Helper()
	testutil.CreateProfile(t, ts.db, "user_ada", "ada")
	return testutil.CreateArticle(t, ts.db, "user_ada", "engaging-read", true, time.Now().Add(-time.Hour))
}

func TestClapArticle(t *testing.T) {
	ts := newTestServer(t)
	article := seedArticle(t, ts)
	bob := tokenFor(t, "user_bob", "bob")

	status, body := ts.do(t, http.MethodPost, "/api/articles/"+article.ID+"/clap", bob, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	first := decode[ClapResponse](t, body)
	assert.Equal(t, 1, first.ClapsCount)
	require.NotNil(t, first.Clap)
	assert.Equal(t, "user_bob", first.Clap.UserID)

	status, body = ts.do(t, http.MethodPost, "/api/articles/"+article.ID+"/clap", bob, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	second := decode[ClapResponse](t, body)
	assert.Equal(t, 2, second.ClapsCount)
	assert.Equal(t, first.Clap.ID, second.Clap.ID, "repeat claps keep one row")

	var rows int64
	require.NoError(t, ts.db.Model(&models.Clap{}).Where("article_id = ?", article.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	status, body = ts.do(t, http.MethodGet, "/api/articles/"+article.ID+"/clap", bob, nil)
	require.Equal(t, http.StatusOK, status)
	mine := decode[map[string]any](t, body)
	assert.NotNil(t, mine["clap"])

	status, body = ts.do(t, http.MethodGet, "/api/articles/engaging-read", bob, nil)
	require.Equal(t, http.StatusOK, status)
	resp := decode[ArticleResponse](t, body)
	assert.Equal(t, 2, resp.Article.ClapsCount)
	require.NotNil(t, resp.Viewer)
	assert.Positive(t, resp.Viewer.Claps)
}

func TestClapArticle_UnknownArticle(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodPost, "/api/articles/missing/clap", tokenFor(t, "user_bob", "bob"), nil)
	assert.Equal(t, http.StatusNotFound, status, string(body))
}

func TestGetMyClap_NoClap(t *testing.T) {
	ts := newTestServer(t)
	article := seedArticle(t, ts)

	status, body := ts.do(t, http.MethodGet, "/api/articles/"+article.ID+"/clap", tokenFor(t, "user_bob", "bob"), nil)
	require.Equal(t, http.StatusOK, status)
	mine := decode[map[string]any](t, body)
	assert.Nil(t, mine["clap"])
	assert.Equal(t, float64(0), mine["count"])
}

func TestComments(t *testing.T) {
	ts := newTestServer(t)
	article := seedArticle(t, ts)
	bob := tokenFor(t, "user_bob", "bob")
	path := "/api/articles/" + article.ID + "/comments"

	status, body := ts.do(t, http.MethodPost, path, bob, map[string]any{"content": "Great read"})
	require.Equal(t, http.StatusCreated, status, string(body))
	first := decode[CommentResponse](t, body)
	assert.Equal(t, 1, first.CommentsCount)
	assert.Equal(t, "Great read", first.Comment.Content)

	status, body = ts.do(t, http.MethodPost, path, tokenFor(t, "user_ada", "ada"),
		map[string]any{"content": "Thanks!", "parent_id": first.Comment.ID})
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Equal(t, 2, decode[CommentResponse](t, body).CommentsCount)

	status, _ = ts.do(t, http.MethodPost, path, bob, map[string]any{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = ts.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, status)
	comments := decode[[]models.Comment](t, body)
	require.Len(t, comments, 2)
	assert.Equal(t, "Great read", comments[0].Content)
	assert.Equal(t, "Thanks!", comments[1].Content)
}

func TestComments_Paging(t *testing.T) {
	ts := newTestServer(t)
	article := seedArticle(t, ts)
	bob := tokenFor(t, "user_bob", "bob")
	path := "/api/articles/" + article.ID + "/comments"

	for _, content := range []string{"one", "two", "three"} {
		status, body := ts.do(t, http.MethodPost, path, bob, map[string]any{"content": content})
		require.Equal(t, http.StatusCreated, status, string(body))
	}

	status, body := ts.do(t, http.MethodGet, path+"?limit=2&offset=1", "", nil)
	require.Equal(t, http.StatusOK, status)
	comments := decode[[]models.Comment](t, body)
	require.Len(t, comments, 2)
	assert.Equal(t, "two", comments[0].Content)
	assert.Equal(t, "three", comments[1].Content)
}

func TestEngagementOnDrafts(t *testing.T) {
	ts := newTestServer(t)
	testutil.CreateProfile(t, ts.db, "user_ada", "ada")
	draft := testutil.CreateArticle(t, ts.db, "user_ada", "unfinished", false, time.Now().Add(-time.Hour))
	bob := tokenFor(t, "user_bob", "bob")
	ada := tokenFor(t, "user_ada", "ada")
	base := "/api/articles/" + draft.ID

	t.Run("Hidden from other readers", func(t *testing.T) {
		status, _ := ts.do(t, http.MethodPost, base+"/clap", bob, nil)
		assert.Equal(t, http.StatusNotFound, status)
		status, _ = ts.do(t, http.MethodPost, base+"/comments", bob, map[string]any{"content": "sneak peek"})
		assert.Equal(t, http.StatusNotFound, status)
		status, _ = ts.do(t, http.MethodGet, base+"/comments", bob, nil)
		assert.Equal(t, http.StatusNotFound, status)
		status, _ = ts.do(t, http.MethodGet, base+"/comments", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
		status, _ = ts.do(t, http.MethodPost, base+"/save", bob, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Open to the author", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, base+"/comments", ada, map[string]any{"content": "note"})
		require.Equal(t, http.StatusCreated, status, string(body))
		status, body = ts.do(t, http.MethodGet, base+"/comments", ada, nil)
		require.Equal(t, http.StatusOK, status, string(body))
		assert.Len(t, decode[[]models.Comment](t, body), 1)
	})

	var stored models.Article
	require.NoError(t, ts.db.First(&stored, "id = ?", draft.ID).Error)
	assert.Zero(t, stored.ClapsCount)
	assert.Equal(t, 1, stored.CommentsCount)
}

func TestSaveAndUnsaveArticle(t *testing.T) {
	ts := newTestServer(t)
	article := seedArticle(t, ts)
	bob := tokenFor(t, "user_bob", "bob")
	path := "/api/articles/" + article.ID + "/save"

	status, body := ts.do(t, http.MethodPost, path, bob, nil)
	require.Equal(t, http.StatusCreated, status, string(body))

	status, _ = ts.do(t, http.MethodPost, path, bob, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = ts.do(t, http.MethodGet, "/api/me/saved", bob, nil)
	require.Equal(t, http.StatusOK, status)
	saved := decode[[]models.SavedArticle](t, body)
	require.Len(t, saved, 1)
	assert.Equal(t, article.ID, saved[0].ArticleID)

	status, _ = ts.do(t, http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusNoContent, status)

	// Removing an absent bookmark still succeeds.
	status, _ = ts.do(t, http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = ts.do(t, http.MethodGet, "/api/me/saved", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]models.SavedArticle](t, body))
}

func TestSavedList_DropsUnpublishedArticles(t *testing.T) {
	ts := newTestServer(t)
	article := seedArticle(t, ts)
	bob := tokenFor(t, "user_bob", "bob")

	status, body := ts.do(t, http.MethodPost, "/api/articles/"+article.ID+"/save", bob, nil)
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = ts.do(t, http.MethodPatch, "/api/articles/"+article.ID, tokenFor(t, "user_ada", "ada"),
		map[string]any{"published": false})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = ts.do(t, http.MethodGet, "/api/me/saved", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]models.SavedArticle](t, body))
}

func TestSaveArticle_UnknownArticle(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.do(t, http.MethodPost, "/api/articles/missing/save", tokenFor(t, "user_bob", "bob"), nil)
	assert.Equal(t, http.StatusNotFound, status)
}
