package repository

import (
	"context"
	"testing"
	"time"

	"knowhere/internal/models"
	"knowhere/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClapRepository_RepeatClapKeepsOneRowCountsTwice(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewClapRepository(db)
	ctx := context.Background()

	testutil.CreateProfile(t, db, "author", "ada")
	testutil.CreateProfile(t, db, "reader", "bob")
	a := testutil.CreateArticle(t, db, "author", "post", true, base)

	first := &models.Clap{ArticleID: a.ID, UserID: "reader"}
	updated, err := repo.Clap(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ClapsCount)

	second := &models.Clap{ArticleID: a.ID, UserID: "reader"}
	updated, err = repo.Clap(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.ClapsCount)
	assert.Equal(t, first.ID, second.ID, "upsert keeps the original row")
	assert.Equal(t, 1, second.Count)

	var rows int64
	require.NoError(t, db.Model(&models.Clap{}).Where("article_id = ?", a.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	var stored models.Article
	require.NoError(t, db.First(&stored, "id = ?", a.ID).Error)
	assert.Equal(t, 2, stored.ClapsCount)

	clap, found, err := repo.Get(ctx, a.ID, "reader")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, first.ID, clap.ID)

	_, found, err = repo.Get(ctx, a.ID, "author")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClapRepository_MissingArticle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewClapRepository(db)

	_, err := repo.Clap(context.Background(), &models.Clap{ArticleID: "ghost", UserID: "u"})
	assert.True(t, models.IsNotFound(err))

	var rows int64
	require.NoError(t, db.Model(&models.Clap{}).Count(&rows).Error)
	assert.Zero(t, rows, "no clap row without an article")
}

func TestCommentRepository_CreateIncrementsAndListsOldestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	testutil.CreateProfile(t, db, "author", "ada")
	testutil.CreateProfile(t, db, "reader", "bob")
	a := testutil.CreateArticle(t, db, "author", "post", true, base)

	c1 := &models.Comment{ArticleID: a.ID, UserID: "reader", Content: "first", CreatedAt: base.Add(time.Minute)}
	updated, err := repo.Create(ctx, c1)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CommentsCount)
	require.NotNil(t, c1.Profile)
	assert.Equal(t, "bob", c1.Profile.Username)

	c2 := &models.Comment{ArticleID: a.ID, UserID: "author", Content: "second", CreatedAt: base.Add(2 * time.Minute)}
	updated, err = repo.Create(ctx, c2)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CommentsCount)

	comments, err := repo.ListByArticle(ctx, a.ID, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)
	assert.Equal(t, "ada", comments[1].Profile.Username)

	page, err := repo.ListByArticle(ctx, a.ID, "", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "second", page[0].Content)

	_, err = repo.ListByArticle(ctx, "ghost", "", 10, 0)
	assert.True(t, models.IsNotFound(err))

	got, found, err := repo.GetByID(ctx, c1.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, a.ID, got.ArticleID)

	_, err = repo.Create(ctx, &models.Comment{ArticleID: "ghost", UserID: "reader", Content: "x"})
	assert.True(t, models.IsNotFound(err))
}

func TestFollowRepository_Lifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	testutil.CreateProfile(t, db, "a", "ada")
	testutil.CreateProfile(t, db, "b", "bob")
	testutil.CreateProfile(t, db, "c", "cy")

	require.NoError(t, repo.Create(ctx, &models.Follow{FollowerID: "a", FollowingID: "b"}))
	require.NoError(t, repo.Create(ctx, &models.Follow{FollowerID: "c", FollowingID: "b"}))

	err := repo.Create(ctx, &models.Follow{FollowerID: "a", FollowingID: "b"})
	assert.True(t, models.HasCode(err, models.CodeConflict), "got %v", err)

	ok, err := repo.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)

	followers, err := repo.ListFollowers(ctx, "b", 10, 0)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	for _, f := range followers {
		require.NotNil(t, f.Follower)
		assert.Contains(t, []string{"ada", "cy"}, f.Follower.Username)
	}

	following, err := repo.ListFollowing(ctx, "a", 10, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].Following.Username)

	page, err := repo.ListFollowers(ctx, "b", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.NotEqual(t, followers[0].FollowerID, page[0].FollowerID)

	in, out, err := repo.Counts(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(2), in)
	assert.Equal(t, int64(0), out)

	require.NoError(t, repo.Delete(ctx, "a", "b"))
	require.NoError(t, repo.Delete(ctx, "a", "b"), "deleting a missing edge succeeds")
	ok, err = repo.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSavedArticleRepository_Lifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSavedArticleRepository(db)
	ctx := context.Background()

	testutil.CreateProfile(t, db, "author", "ada")
	testutil.CreateProfile(t, db, "reader", "bob")
	older := testutil.CreateArticle(t, db, "author", "older", true, base)
	newer := testutil.CreateArticle(t, db, "author", "newer", true, base.Add(time.Hour))

	require.NoError(t, repo.Create(ctx, &models.SavedArticle{UserID: "reader", ArticleID: older.ID, CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &models.SavedArticle{UserID: "reader", ArticleID: newer.ID, CreatedAt: base.Add(time.Minute)}))

	err := repo.Create(ctx, &models.SavedArticle{UserID: "reader", ArticleID: older.ID})
	assert.True(t, models.HasCode(err, models.CodeConflict))

	saved, err := repo.ListByUser(ctx, "reader", 10, 0)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "newer", saved[0].Article.Slug)
	assert.Equal(t, "ada", saved[0].Article.Author.Username)

	require.NoError(t, repo.Delete(ctx, "reader", older.ID))
	ok, err := repo.Exists(ctx, "reader", older.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	saved, err = repo.ListByUser(ctx, "reader", 10, 0)
	require.NoError(t, err)
	require.Len(t, saved, 1)
}

func TestSavedArticleRepository_ListByUserHidesOthersDrafts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSavedArticleRepository(db)
	ctx := context.Background()

	testutil.CreateProfile(t, db, "author", "ada")
	testutil.CreateProfile(t, db, "reader", "bob")
	public := testutil.CreateArticle(t, db, "author", "public", true, base)
	pulled := testutil.CreateArticle(t, db, "author", "pulled", true, base.Add(time.Hour))
	mine := testutil.CreateArticle(t, db, "reader", "mine", false, base.Add(2*time.Hour))

	for i, id := range []string{public.ID, pulled.ID, mine.ID} {
		require.NoError(t, repo.Create(ctx, &models.SavedArticle{UserID: "reader", ArticleID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}
	require.NoError(t, db.Model(pulled).UpdateColumn("published", false).Error)

	saved, err := repo.ListByUser(ctx, "reader", 10, 0)
	require.NoError(t, err)
	var slugs []string
	for _, s := range saved {
		slugs = append(slugs, s.Article.Slug)
	}
	assert.Equal(t, []string{"mine", "public"}, slugs)

	page, err := repo.ListByUser(ctx, "reader", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "public", page[0].Article.Slug)
}

func TestClapAndComment_DraftVisibleOnlyToAuthor(t *testing.T) {
	db := testutil.NewTestDB(t)
	claps := NewClapRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	testutil.CreateProfile(t, db, "author", "ada")
	testutil.CreateProfile(t, db, "reader", "bob")
	draft := testutil.CreateArticle(t, db, "author", "draft", false, base)

	_, err := claps.Clap(ctx, &models.Clap{ArticleID: draft.ID, UserID: "reader"})
	assert.True(t, models.IsNotFound(err), "got %v", err)
	_, err = comments.Create(ctx, &models.Comment{ArticleID: draft.ID, UserID: "reader", Content: "x"})
	assert.True(t, models.IsNotFound(err), "got %v", err)
	_, err = comments.ListByArticle(ctx, draft.ID, "reader", 10, 0)
	assert.True(t, models.IsNotFound(err), "got %v", err)

	var stored models.Article
	require.NoError(t, db.First(&stored, "id = ?", draft.ID).Error)
	assert.Zero(t, stored.ClapsCount)
	assert.Zero(t, stored.CommentsCount)
	var rows int64
	require.NoError(t, db.Model(&models.Clap{}).Count(&rows).Error)
	assert.Zero(t, rows)

	updated, err := claps.Clap(ctx, &models.Clap{ArticleID: draft.ID, UserID: "author"})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ClapsCount)
	_, err = comments.Create(ctx, &models.Comment{ArticleID: draft.ID, UserID: "author", Content: "todo: intro"})
	require.NoError(t, err)
	own, err := comments.ListByArticle(ctx, draft.ID, "author", 10, 0)
	require.NoError(t, err)
	assert.Len(t, own, 1)
}

func TestProfileRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	_, found, err := repo.GetByID(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Create(ctx, &models.Profile{ID: "u1", Username: "ada"}))
	require.NoError(t, repo.Create(ctx, &models.Profile{ID: "u2", Username: "bob"}))
	err = repo.Create(ctx, &models.Profile{ID: "u3", Username: "ada"})
	assert.True(t, models.HasCode(err, models.CodeConflict))

	p, found, err := repo.GetByUsername(ctx, "ada")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "u1", p.ID)

	p.Bio = "writes things"
	p.Username = "ada2"
	require.NoError(t, repo.Update(ctx, p, []string{"bio", "username"}))

	_, found, err = repo.GetByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.False(t, found)
	p, found, err = repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "writes things", p.Bio)

	err = repo.Update(ctx, &models.Profile{ID: "ghost"}, []string{"bio"})
	assert.True(t, models.IsNotFound(err))

	others, err := repo.ListExcept(ctx, "u1", 5)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "u2", others[0].ID)
}

func TestCounterRepository_Reconcile(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	testutil.CreateProfile(t, db, "author", "ada")
	testutil.CreateProfile(t, db, "reader", "bob")
	drifted := testutil.CreateArticle(t, db, "author", "drifted", true, base)
	overClapped := testutil.CreateArticle(t, db, "author", "over", true, base)
	clean := testutil.CreateArticle(t, db, "author", "clean", true, base)

	// Rows written without their counter side effect.
	require.NoError(t, db.Create(&models.Comment{ArticleID: drifted.ID, UserID: "reader", Content: "x"}).Error)
	require.NoError(t, db.Create(&models.Clap{ArticleID: drifted.ID, UserID: "reader", Count: 1}).Error)
	// Repeat claps leave the counter above the row count.
	require.NoError(t, db.Create(&models.Clap{ArticleID: overClapped.ID, UserID: "reader", Count: 1}).Error)
	require.NoError(t, db.Model(overClapped).UpdateColumn("claps_count", 3).Error)

	corrected, err := NewCounterRepository(db).Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, corrected)

	reload := func(id string) models.Article {
		t.Helper()
		var got models.Article
		require.NoError(t, db.First(&got, "id = ?", id).Error)
		require.Equal(t, id, got.ID)
		return got
	}

	got := reload(drifted.ID)
	assert.Equal(t, 1, got.CommentsCount)
	assert.Equal(t, 1, got.ClapsCount)

	got = reload(overClapped.ID)
	assert.Equal(t, 3, got.ClapsCount)

	got = reload(clean.ID)
	assert.Zero(t, got.ClapsCount)
	assert.Zero(t, got.CommentsCount)

	corrected, err = NewCounterRepository(db).Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, corrected)
}
