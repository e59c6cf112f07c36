package service

import (
	"context"
	"log/slog"

	"knowhere/internal/middleware"
	"knowhere/internal/repository"
)

// CounterService runs the counter reconciliation pass.
type CounterService struct {
	counterRepo repository.CounterRepository
}

func NewCounterService(counterRepo repository.CounterRepository) *CounterService {
	return &CounterService{counterRepo: counterRepo}
}

// ReconcileCounters recomputes comments_count from comment rows and lifts
// claps_count to at least the clap row count. It returns the number of
// articles corrected.
func (s *CounterService) ReconcileCounters(ctx context.Context) (int, error) {
	corrected, err := s.counterRepo.Reconcile(ctx)
	if err != nil {
		return 0, err
	}
	if corrected > 0 {
		middleware.Logger.WarnContext(ctx, "Article counters drifted and were corrected", slog.Int("articles", corrected))
	} else {
		middleware.Logger.InfoContext(ctx, "Article counters are consistent")
	}
	return corrected, nil
}
