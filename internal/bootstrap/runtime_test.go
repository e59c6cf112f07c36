package bootstrap

import (
	"bytes"
	"context"
	"testing"

	"knowhere/internal/config"
	"knowhere/internal/middleware"
	"knowhere/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingConfig(t *testing.T) {
	cfg := &config.Config{Env: "staging", OTelExporter: "otlp", OTelEndpoint: "collector:4318", OTelSamplerRatio: 0.25}

	tc := TracingConfig(cfg, "")
	assert.Equal(t, "knowhere", tc.ServiceName)
	assert.Equal(t, "staging", tc.Environment)
	assert.Equal(t, "otlp", tc.Exporter)
	assert.Equal(t, "collector:4318", tc.OTLPEndpoint)
	assert.InDelta(t, 0.25, tc.SamplerRatio, 1e-9)

	assert.Equal(t, "knowhere-seed", TracingConfig(cfg, "knowhere-seed").ServiceName)
}

func TestConfigureLogger(t *testing.T) {
	prev := middleware.Logger
	t.Cleanup(func() { middleware.Logger = prev })

	var buf bytes.Buffer
	ConfigureLogger(&config.Config{Env: "production"}, &buf)
	middleware.Logger.Info("hello", "k", "v")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestRuntimeClose(t *testing.T) {
	mr := miniredis.RunT(t)
	rt := &Runtime{
		Config:      &config.Config{},
		DB:          testutil.NewTestDB(t),
		Redis:       redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		stopTracing: func(context.Context) error { return nil },
	}

	require.NoError(t, rt.Close(context.Background()))

	// Closing again reports the already-closed Redis client.
	assert.Error(t, rt.Close(context.Background()))
}
