package repository

import (
	"context"

	"knowhere/internal/models"
	"knowhere/internal/observability"

	"gorm.io/gorm"
)

const (
	commentRowsSQL = "(SELECT COUNT(*) FROM comments WHERE comments.article_id = articles.id)"
	clapRowsSQL    = "(SELECT COUNT(*) FROM claps WHERE claps.article_id = articles.id)"
)

// CounterRepository repairs the denormalized article counters.
type CounterRepository interface {
	Reconcile(ctx context.Context) (int, error)
}

type counterRepository struct {
	db *gorm.DB
}

// NewCounterRepository creates a new counter repository
func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

// Reconcile sets comments_count to the number of comment rows and raises
// claps_count to at least the number of clap rows. Clap rows are upserts,
// so a claps_count above the row count is legitimate and left alone.
// It returns how many articles were corrected.
func (r *counterRepository) Reconcile(ctx context.Context) (corrected int, err error) {
	ctx, done := observe(ctx, "Reconcile", "articles")
	defer func() { done(err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&models.Article{}).
			Where("comments_count <> " + commentRowsSQL + " OR claps_count < " + clapRowsSQL).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		corrected = len(ids)
		if corrected == 0 {
			return nil
		}

		comments := tx.Model(&models.Article{}).
			Where("comments_count <> " + commentRowsSQL).
			UpdateColumn("comments_count", gorm.Expr(commentRowsSQL))
		if comments.Error != nil {
			return comments.Error
		}
		claps := tx.Model(&models.Article{}).
			Where("claps_count < " + clapRowsSQL).
			UpdateColumn("claps_count", gorm.Expr(clapRowsSQL))
		if claps.Error != nil {
			return claps.Error
		}

		observability.CountersReconciled.WithLabelValues("comments_count").Add(float64(comments.RowsAffected))
		observability.CountersReconciled.WithLabelValues("claps_count").Add(float64(claps.RowsAffected))
		return nil
	})
	if err != nil {
		return 0, models.NewStoreError(err)
	}
	return corrected, nil
}
