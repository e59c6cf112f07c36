package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"knowhere/internal/config"
	"knowhere/internal/middleware"
	"knowhere/internal/models"

	"gorm.io/gorm"
)

// DB_SCHEMA_MODE values.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// uniqueIndex is a constraint a write path relies on to turn a race into a
// CONFLICT or an upsert. Without it duplicates are stored silently.
type uniqueIndex struct {
	model  any
	name   string
	guards string
}

var requiredUniqueIndexes = []uniqueIndex{
	{model: &models.Profile{}, name: "idx_profiles_username", guards: "username uniqueness"},
	{model: &models.Article{}, name: "idx_articles_slug", guards: "slug uniqueness"},
	{model: &models.Clap{}, name: "idx_claps_article_user", guards: "clap upsert"},
	{model: &models.Follow{}, name: "idx_follows_pair", guards: "duplicate follows"},
	{model: &models.SavedArticle{}, name: "idx_saved_user_article", guards: "duplicate saves"},
}

// SchemaPlan is what ApplySchema does for one config.
type SchemaPlan struct {
	Mode    string
	RunSQL  bool
	RunAuto bool
}

// SchemaStatus is the plan plus the migration log and index state.
type SchemaStatus struct {
	SchemaPlan
	Environment       string
	AppliedVersions   []int
	PendingMigrations []Migration
	MissingIndexes    []string
}

func isProdLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}

// PlanSchema resolves DB_SCHEMA_MODE (hybrid when empty) for cfg.Env.
// hybrid runs the SQL migrations everywhere and AutoMigrate only outside
// production-like environments; auto is refused there outright.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	plan := SchemaPlan{Mode: strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))}
	if plan.Mode == "" {
		plan.Mode = SchemaModeHybrid
	}
	prodLike := isProdLikeEnv(cfg.Env)

	switch plan.Mode {
	case SchemaModeSQL:
		plan.RunSQL = true
	case SchemaModeAuto:
		if prodLike {
			return SchemaPlan{}, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q; use sql migrations", cfg.Env)
		}
		plan.RunAuto = true
	case SchemaModeHybrid:
		plan.RunSQL = true
		plan.RunAuto = !prodLike
	default:
		return SchemaPlan{}, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.Mode)
	}
	return plan, nil
}

// ApplySchema runs the plan for cfg and then checks the unique indexes the
// clap, follow, save, slug and username writes depend on.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}

	if plan.RunSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if plan.RunAuto {
		middleware.Logger.Info("Running GORM AutoMigrate", slog.String("mode", plan.Mode), slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	return VerifyConstraints(ctx, db)
}

// MissingConstraints names every required unique index that is absent,
// as "table.index (what it guards)".
func MissingConstraints(ctx context.Context, db *gorm.DB) []string {
	migrator := db.WithContext(ctx).Migrator()
	var missing []string
	for _, idx := range requiredUniqueIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}
		table := ""
		if t, ok := idx.model.(interface{ TableName() string }); ok {
			table = t.TableName() + "."
		}
		missing = append(missing, fmt.Sprintf("%s%s (%s)", table, idx.name, idx.guards))
	}
	return missing
}

// VerifyConstraints fails when any required unique index is absent.
func VerifyConstraints(ctx context.Context, db *gorm.DB) error {
	if missing := MissingConstraints(ctx, db); len(missing) > 0 {
		return fmt.Errorf("schema is missing unique indexes: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GetSchemaStatus reports the plan, pending SQL migrations and missing
// indexes without changing anything.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		SchemaPlan:     plan,
		Environment:    cfg.Env,
		MissingIndexes: MissingConstraints(ctx, db),
	}
	if !plan.RunSQL {
		return status, nil
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied

	done := make(map[int]bool, len(applied))
	for _, version := range applied {
		done[version] = true
	}
	for _, m := range GetMigrations() {
		if !done[m.Version] {
			status.PendingMigrations = append(status.PendingMigrations, m)
		}
	}
	return status, nil
}
