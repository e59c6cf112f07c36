// Command reconcile repairs drifted article counters once and exits.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"knowhere/internal/bootstrap"
	"knowhere/internal/middleware"
	"knowhere/internal/repository"
	"knowhere/internal/service"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "Abort the pass after this long")
	flag.Parse()

	rt, err := bootstrap.InitRuntime(bootstrap.Options{ServiceName: "knowhere-reconcile", WithTracing: true})
	if err != nil {
		slog.Error("Failed to initialize runtime", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	corrected, err := service.NewCounterService(repository.NewCounterRepository(rt.DB)).ReconcileCounters(ctx)
	cancel()

	if cerr := rt.Close(context.Background()); cerr != nil {
		middleware.Logger.Warn("Shutdown error", slog.String("error", cerr.Error()))
	}
	if err != nil {
		middleware.Logger.Error("Reconciliation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	middleware.Logger.Info("Reconciliation finished", slog.Int("corrected", corrected))
}
