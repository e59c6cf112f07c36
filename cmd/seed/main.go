// Command seed fills the database with demo data.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"knowhere/internal/bootstrap"
	"knowhere/internal/middleware"
	"knowhere/internal/seed"
)

func main() {
	numProfiles := flag.Int("profiles", 25, "Number of profiles to create")
	numArticles := flag.Int("articles", 100, "Number of articles to create")
	shouldClean := flag.Bool("clean", false, "Clear all application tables before seeding")
	fixture := flag.String("fixture", "", "YAML fixture of hand-written profiles and articles")
	maxDays := flag.Int("days", 90, "Spread generated timestamps over this many days")
	randSeed := flag.Int64("seed", 0, "Random seed for a reproducible run (0 = time-based)")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	flag.Parse()

	if err := run(*fixture, seed.Options{
		NumProfiles: *numProfiles,
		NumArticles: *numArticles,
		ShouldClean: *shouldClean,
		MaxDays:     *maxDays,
		RandSeed:    *randSeed,
		DryRun:      *dryRun,
	}); err != nil {
		middleware.Logger.Error("Seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(fixturePath string, opts seed.Options) error {
	rt, err := bootstrap.InitRuntime(bootstrap.Options{ServiceName: "knowhere-seed", ApplySchema: true})
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer func() { _ = rt.Close(ctx) }()

	if _, err := seed.Seed(ctx, rt.DB, opts); err != nil {
		return err
	}

	if fixturePath == "" || opts.DryRun {
		return nil
	}
	fx, err := seed.LoadFixture(fixturePath)
	if err != nil {
		return err
	}
	res, err := fx.Apply(ctx, rt.DB)
	if err != nil {
		return err
	}
	middleware.Logger.Info("Fixture applied",
		slog.String("path", fixturePath),
		slog.Int("profiles", res.Profiles),
		slog.Int("articles", res.Articles),
	)
	return nil
}
