// Package bootstrap wires configuration, logging, tracing and the data
// stores shared by the command-line entry points.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"knowhere/internal/cache"
	"knowhere/internal/config"
	"knowhere/internal/database"
	"knowhere/internal/middleware"
	"knowhere/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ServiceName labels traces; defaults to "knowhere".
	ServiceName string
	ApplySchema bool
	// WithRedis connects the cache client. A failed connection leaves it nil.
	WithRedis   bool
	WithTracing bool
}

// Runtime holds what a command needs after startup.
type Runtime struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client

	stopTracing func(context.Context) error
}

// InitRuntime loads configuration, installs the logger and connects to the
// database, plus Redis and tracing when asked.
func InitRuntime(opts Options) (*Runtime, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return InitRuntimeWithConfig(cfg, opts)
}

// InitRuntimeWithConfig is InitRuntime for an already loaded configuration.
func InitRuntimeWithConfig(cfg *config.Config, opts Options) (*Runtime, error) {
	ConfigureLogger(cfg, os.Stdout)

	rt := &Runtime{Config: cfg, stopTracing: func(context.Context) error { return nil }}

	if opts.WithTracing {
		stop, err := observability.InitTracing(TracingConfig(cfg, opts.ServiceName))
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		rt.stopTracing = stop
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: opts.ApplySchema})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rt.DB = db

	if opts.WithRedis {
		cache.Configure(cfg.CacheTTLSeconds)
		rt.Redis = cache.InitRedis(cfg.RedisURL)
		if rt.Redis == nil {
			middleware.Logger.Warn("Redis unavailable; continuing without cache, rate limits or event fan-out",
				slog.String("addr", cfg.RedisURL))
		}
	}

	return rt, nil
}

// ConfigureLogger replaces the package logger for cfg's environment and
// makes it the slog default.
func ConfigureLogger(cfg *config.Config, w io.Writer) {
	middleware.Logger = middleware.NewLogger(cfg.Env, w)
	slog.SetDefault(middleware.Logger)
}

// TracingConfig maps application config onto the tracer settings.
func TracingConfig(cfg *config.Config, serviceName string) observability.TracingConfig {
	if serviceName == "" {
		serviceName = "knowhere"
	}
	return observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0",
		Environment:    cfg.Env,
		Exporter:       cfg.OTelExporter,
		OTLPEndpoint:   cfg.OTelEndpoint,
		SamplerRatio:   cfg.OTelSamplerRatio,
	}
}

// StopTracing flushes buffered spans. Use it alone when another owner
// (the API server) closes the stores.
func (r *Runtime) StopTracing(ctx context.Context) error {
	return r.stopTracing(ctx)
}

// Close flushes traces and closes the stores. It reports every failure.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if err := r.StopTracing(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop tracing: %w", err))
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if r.DB != nil {
		if sqlDB, err := r.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close database: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}
