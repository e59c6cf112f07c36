package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"knowhere/internal/middleware"
	"knowhere/internal/models"
	"knowhere/internal/repository"
	"knowhere/internal/service"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumProfiles int
	NumArticles int
	ShouldClean bool
	// MaxDays bounds how far back generated timestamps reach.
	MaxDays   int
	BatchSize int
	// RandSeed makes a run reproducible; zero means time-based.
	RandSeed int64
	DryRun   bool
}

// Result counts the rows a run created.
type Result struct {
	Profiles int
	Articles int
	Claps    int
	Comments int
	Follows  int
	Saved    int
}

// Seed populates the database with a connected graph of fake profiles,
// articles and engagement. Article counters are written to match the rows
// created, then checked with a reconciliation pass.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Result, error) {
	if opts.NumProfiles < 2 {
		return nil, fmt.Errorf("need at least 2 profiles, got %d", opts.NumProfiles)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	log := middleware.Logger.With(slog.Bool("dry_run", opts.DryRun))
	log.InfoContext(ctx, "Starting database seeding",
		slog.Int("profiles", opts.NumProfiles),
		slog.Int("articles", opts.NumArticles),
	)

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(ctx, db); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
		log.InfoContext(ctx, "Existing data cleared")
	}

	if opts.RandSeed == 0 {
		opts.RandSeed = time.Now().UnixNano()
	}
	f := NewFactory(opts.RandSeed, opts.MaxDays)
	// #nosec G404: acceptable for seeding
	rng := rand.New(rand.NewSource(opts.RandSeed))
	g := buildGraph(f, rng, opts.NumProfiles, opts.NumArticles)

	res := &Result{
		Profiles: len(g.profiles),
		Articles: len(g.articles),
		Claps:    len(g.claps),
		Comments: len(g.comments),
		Follows:  len(g.follows),
		Saved:    len(g.saved),
	}
	if opts.DryRun {
		log.InfoContext(ctx, "Dry run complete, nothing written", slog.Any("result", res))
		return res, nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, step := range []struct {
			name string
			rows any
		}{
			{"profiles", g.profiles},
			{"articles", g.articles},
			{"follows", g.follows},
			{"claps", g.claps},
			{"comments", g.comments},
			{"saved_articles", g.saved},
		} {
			if err := tx.CreateInBatches(step.rows, opts.BatchSize).Error; err != nil {
				return fmt.Errorf("insert %s: %w", step.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	corrected, err := service.NewCounterService(repository.NewCounterRepository(db)).ReconcileCounters(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile counters: %w", err)
	}
	if corrected > 0 {
		log.WarnContext(ctx, "Seeded counters needed correction", slog.Int("articles", corrected))
	}

	log.InfoContext(ctx, "Database seeding completed", slog.Any("result", res))
	return res, nil
}

type graph struct {
	profiles []*models.Profile
	articles []*models.Article
	claps    []*models.Clap
	comments []*models.Comment
	follows  []*models.Follow
	saved    []*models.SavedArticle
}

func buildGraph(f *Factory, rng *rand.Rand, numProfiles, numArticles int) *graph {
	g := &graph{}

	usernames := make(map[string]struct{}, numProfiles)
	for len(g.profiles) < numProfiles {
		p := f.BuildProfile()
		if _, taken := usernames[p.Username]; taken {
			continue
		}
		usernames[p.Username] = struct{}{}
		g.profiles = append(g.profiles, p)
	}

	for range numArticles {
		author := g.profiles[rng.Intn(len(g.profiles))]
		g.articles = append(g.articles, f.BuildArticle(author))
	}

	// Each profile follows a handful of others.
	for _, p := range g.profiles {
		for _, idx := range rng.Perm(len(g.profiles))[:min(3, len(g.profiles))] {
			other := g.profiles[idx]
			if other.ID == p.ID {
				continue
			}
			g.follows = append(g.follows, f.BuildFollow(p, other))
		}
	}

	var published []*models.Article
	for _, a := range g.articles {
		if !a.Published {
			continue
		}
		published = append(published, a)

		readers := rng.Perm(len(g.profiles))[:rng.Intn(len(g.profiles)+1)]
		for _, idx := range readers {
			reader := g.profiles[idx]
			if reader.ID == a.AuthorID {
				continue
			}
			g.claps = append(g.claps, f.BuildClap(a, reader))
			// A reader may clap several times; only the counter records it.
			a.ClapsCount += 1 + rng.Intn(5)
		}

		for range rng.Intn(6) {
			commenter := g.profiles[rng.Intn(len(g.profiles))]
			g.comments = append(g.comments, f.BuildComment(a, commenter))
			a.CommentsCount++
		}
	}

	if len(published) > 0 {
		for _, p := range g.profiles {
			for _, idx := range rng.Perm(len(published))[:rng.Intn(min(3, len(published))+1)] {
				g.saved = append(g.saved, f.BuildSaved(p, published[idx]))
			}
		}
	}
	return g
}

// clearData empties every application table, children first.
func clearData(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE saved_articles, claps, comments, follows, articles, profiles CASCADE`).Error
	}
	for _, m := range []any{
		&models.SavedArticle{}, &models.Clap{}, &models.Comment{},
		&models.Follow{}, &models.Article{}, &models.Profile{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}
