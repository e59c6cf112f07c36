package seed

import (
	"testing"
	"time"

	"knowhere/internal/models"
	"knowhere/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProfile_ValidUsername(t *testing.T) {
	f := NewFactory(7, 30)
	for range 50 {
		p := f.BuildProfile()
		assert.NoError(t, validation.ValidateUsername(p.Username), p.Username)
		assert.NotEmpty(t, p.ID)
	}
}

func TestBuildArticle_TimestampsAndFields(t *testing.T) {
	opts := Options{MaxDays: 30}
	f := NewFactory(11, opts.MaxDays)
	author := &models.Profile{ID: "user_1"}

	for range 50 {
		a := f.BuildArticle(author)
		assert.Equal(t, "user_1", a.AuthorID)
		assert.NotEmpty(t, a.Slug)
		assert.Positive(t, a.ReadTime)
		assert.NotEmpty(t, a.Tags)

		// timestamp should be within MaxDays
		assert.LessOrEqual(t, time.Since(a.CreatedAt), (time.Duration(opts.MaxDays)+1)*24*time.Hour)
		if a.Published {
			require.NotNil(t, a.PublishedAt)
			assert.False(t, a.PublishedAt.Before(a.CreatedAt))
		} else {
			assert.Nil(t, a.PublishedAt)
		}
	}
}

func TestBuildArticle_Overrides(t *testing.T) {
	f := NewFactory(3, 0)
	a := f.BuildArticle(&models.Profile{ID: "u"}, func(a *models.Article) { a.Slug = "fixed" })
	assert.Equal(t, "fixed", a.Slug)
}

func TestEngagementTimestampsFollowPublication(t *testing.T) {
	f := NewFactory(5, 10)
	reader := &models.Profile{ID: "reader"}
	a := f.BuildArticle(&models.Profile{ID: "author"}, func(a *models.Article) {
		at := a.CreatedAt
		a.Published = true
		a.PublishedAt = &at
	})

	for range 20 {
		c := f.BuildComment(a, reader)
		assert.False(t, c.CreatedAt.Before(*a.PublishedAt))
		assert.NotEmpty(t, c.Content)
	}
	assert.Equal(t, 1, f.BuildClap(a, reader).Count)
}
