package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"knowhere/internal/repository"
	"knowhere/internal/service"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixture is a hand-written data set, loaded from YAML:
//
//	profiles:
//	  - username: ada
//	    full_name: Ada Lovelace
//	    bio: First programmer.
//	articles:
//	  - author: ada
//	    title: Notes on the Analytical Engine
//	    content: |
//	      ...
//	    tags: [history, computing]
//	    published: true
type Fixture struct {
	Profiles []FixtureProfile `yaml:"profiles"`
	Articles []FixtureArticle `yaml:"articles"`
}

type FixtureProfile struct {
	// ID defaults to "fixture_<username>".
	ID        string `yaml:"id"`
	Username  string `yaml:"username"`
	FullName  string `yaml:"full_name"`
	AvatarURL string `yaml:"avatar_url"`
	Bio       string `yaml:"bio"`
	Location  string `yaml:"location"`
	Website   string `yaml:"website"`
}

type FixtureArticle struct {
	// Author is the username of a profile in the same fixture.
	Author        string   `yaml:"author"`
	Title         string   `yaml:"title"`
	Subtitle      string   `yaml:"subtitle"`
	Slug          string   `yaml:"slug"`
	Content       string   `yaml:"content"`
	FeaturedImage string   `yaml:"featured_image"`
	Tags          []string `yaml:"tags"`
	Published     bool     `yaml:"published"`
}

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(raw)
}

// ParseFixture decodes YAML, rejecting unknown keys and articles whose
// author is not declared in the fixture.
func ParseFixture(raw []byte) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	known := make(map[string]struct{}, len(fx.Profiles))
	for i, p := range fx.Profiles {
		name := strings.ToLower(strings.TrimSpace(p.Username))
		if name == "" {
			return nil, fmt.Errorf("profile %d: username is required", i)
		}
		if _, dup := known[name]; dup {
			return nil, fmt.Errorf("profile %d: duplicate username %q", i, name)
		}
		known[name] = struct{}{}
	}
	for i, a := range fx.Articles {
		if _, ok := known[strings.ToLower(strings.TrimSpace(a.Author))]; !ok {
			return nil, fmt.Errorf("article %d (%q): unknown author %q", i, a.Title, a.Author)
		}
	}
	return &fx, nil
}

// Apply writes the fixture through the profile and article services, so
// fixture data obeys the same validation as API writes. Profiles that
// already exist are left unchanged.
func (fx *Fixture) Apply(ctx context.Context, db *gorm.DB) (*Result, error) {
	profiles := service.NewProfileService(repository.NewProfileRepository(db))
	articles := service.NewArticleService(repository.NewArticleRepository(db))

	res := &Result{}
	ids := make(map[string]string, len(fx.Profiles))
	for _, fp := range fx.Profiles {
		username := strings.ToLower(strings.TrimSpace(fp.Username))
		id := fp.ID
		if id == "" {
			id = "fixture_" + username
		}

		p, created, err := profiles.Ensure(ctx, service.EnsureProfileInput{
			UserID:    id,
			Username:  username,
			FullName:  fp.FullName,
			AvatarURL: fp.AvatarURL,
		})
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", username, err)
		}
		ids[username] = p.ID
		if !created {
			continue
		}
		res.Profiles++

		if fp.Bio != "" || fp.Location != "" || fp.Website != "" {
			_, err = profiles.Update(ctx, p.ID, p.ID, service.UpdateProfileInput{
				Bio:      &fp.Bio,
				Location: &fp.Location,
				Website:  &fp.Website,
			})
			if err != nil {
				return nil, fmt.Errorf("profile %q: %w", username, err)
			}
		}
	}

	for _, fa := range fx.Articles {
		authorID := ids[strings.ToLower(strings.TrimSpace(fa.Author))]
		_, err := articles.Create(ctx, authorID, service.CreateArticleInput{
			Title:         fa.Title,
			Subtitle:      fa.Subtitle,
			Content:       fa.Content,
			Slug:          fa.Slug,
			FeaturedImage: fa.FeaturedImage,
			Tags:          fa.Tags,
			Published:     fa.Published,
		})
		if err != nil {
			return nil, fmt.Errorf("article %q: %w", fa.Title, err)
		}
		res.Articles++
	}
	return res, nil
}
