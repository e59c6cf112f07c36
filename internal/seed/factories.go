// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"strings"
	"time"

	"knowhere/internal/content"
	"knowhere/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

var topics = []string{
	"golang", "databases", "distributed-systems", "career", "writing",
	"design", "security", "devops", "frontend", "productivity",
	"startups", "testing", "open-source", "performance", "ai",
}

// Factory builds domain entities with realistic fake content. It never
// touches the database; the seeder decides how to persist what it builds.
type Factory struct {
	faker   *gofakeit.Faker
	maxDays int
	now     time.Time
}

// NewFactory creates a Factory. A zero seed picks a time-based one.
func NewFactory(seed int64, maxDays int) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{faker: gofakeit.New(seed), maxDays: maxDays, now: time.Now().UTC()}
}

// BuildProfile returns a profile with a unique username. Overrides run last.
func (f *Factory) BuildProfile(overrides ...func(*models.Profile)) *models.Profile {
	first, last := f.faker.FirstName(), f.faker.LastName()
	username := strings.ToLower(fmt.Sprintf("%s_%s%d", first, last, f.faker.Number(10, 9999)))
	username = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return -1
	}, username)
	if len(username) > 30 {
		username = username[:30]
	}

	created := f.pastTime()
	p := &models.Profile{
		ID:        "seed_" + uuid.NewString(),
		Username:  username,
		FullName:  first + " " + last,
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		Bio:       f.faker.JobTitle() + ". " + f.faker.Sentence(8),
		Location:  f.faker.City() + ", " + f.faker.Country(),
		Website:   f.faker.URL(),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, override := range overrides {
		override(p)
	}
	return p
}

// BuildArticle returns an article by author. Roughly four in five are published.
func (f *Factory) BuildArticle(author *models.Profile, overrides ...func(*models.Article)) *models.Article {
	title := strings.TrimSuffix(f.faker.HackerPhrase(), ".")
	paragraphs := f.faker.Number(3, 9)
	body := f.faker.Paragraph(paragraphs, 5, 14, "\n\n")

	tags := make([]string, 0, 3)
	for range f.faker.Number(1, 3) {
		tags = append(tags, f.faker.RandomString(topics))
	}

	created := f.pastTime()
	a := &models.Article{
		ID:            uuid.NewString(),
		Title:         title,
		Subtitle:      f.faker.Sentence(10),
		Content:       body,
		Slug:          content.Slugify(title) + "-" + strings.ToLower(f.faker.LetterN(6)),
		AuthorID:      author.ID,
		Published:     f.faker.Number(1, 5) != 1,
		FeaturedImage: fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", f.faker.UUID()),
		Tags:          content.NormalizeTags(tags),
		ReadTime:      content.ReadTime(body),
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	if a.Published {
		at := created.Add(time.Duration(f.faker.Number(0, 48)) * time.Hour)
		if at.After(f.now) {
			at = f.now
		}
		a.PublishedAt = &at
		a.UpdatedAt = at
	}
	for _, override := range overrides {
		override(a)
	}
	return a
}

// BuildClap returns the clap row for user on article.
func (f *Factory) BuildClap(article *models.Article, user *models.Profile) *models.Clap {
	return &models.Clap{
		ID:        uuid.NewString(),
		ArticleID: article.ID,
		UserID:    user.ID,
		Count:     1,
		CreatedAt: f.after(article),
	}
}

// BuildComment returns a comment by user on article.
func (f *Factory) BuildComment(article *models.Article, user *models.Profile) *models.Comment {
	return &models.Comment{
		ID:        uuid.NewString(),
		ArticleID: article.ID,
		UserID:    user.ID,
		Content:   f.faker.Sentence(f.faker.Number(4, 24)),
		CreatedAt: f.after(article),
	}
}

func (f *Factory) BuildFollow(follower, following *models.Profile) *models.Follow {
	return &models.Follow{
		ID:          uuid.NewString(),
		FollowerID:  follower.ID,
		FollowingID: following.ID,
		CreatedAt:   f.pastTime(),
	}
}

func (f *Factory) BuildSaved(user *models.Profile, article *models.Article) *models.SavedArticle {
	return &models.SavedArticle{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ArticleID: article.ID,
		CreatedAt: f.after(article),
	}
}

// pastTime is a random instant within the last maxDays.
func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.faker.Number(0, f.maxDays*24*60)) * time.Minute
	return f.now.Add(-back)
}

// after is a random instant between the article's publication and now.
func (f *Factory) after(a *models.Article) time.Time {
	from := a.CreatedAt
	if a.PublishedAt != nil {
		from = *a.PublishedAt
	}
	span := f.now.Sub(from)
	if span <= 0 {
		return f.now
	}
	return from.Add(time.Duration(f.faker.Int64() % int64(span)).Abs())
}
