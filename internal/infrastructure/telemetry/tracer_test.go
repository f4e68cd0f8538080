package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradebooks/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap/zaptest"
)

func disabledTracerConfig(ratio float64) telemetry.Config {
	return telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     ratio,
		ServiceName:       "tradebooks-test",
	}
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := disabledTracerConfig(1.0)

	tp, err := telemetry.NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, tp)

	assert.False(t, tp.IsEnabled())

	tracer := tp.Tracer("ledger")
	require.NotNil(t, tracer)
	_, span := tracer.Start(ctx, "noop")
	span.End()

	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProvider_SamplingRatiosWhileDisabled(t *testing.T) {
	for _, ratio := range []float64{0.0, 0.5, 1.0} {
		tp, err := telemetry.NewTracerProvider(context.Background(), disabledTracerConfig(ratio), zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.False(t, tp.IsEnabled())
	}
}

func TestTracerProvider_ShutdownWithCancelledContext(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), disabledTracerConfig(1.0), zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	if testing.Short() {
		t.Skip("requires an OTLP collector")
	}

	ctx := context.Background()
	cfg := disabledTracerConfig(1.0)
	cfg.Enabled = true
	cfg.Insecure = true

	// the gRPC exporter dials lazily so creation succeeds without a collector
	tp, err := telemetry.NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())

	_, span := tp.Tracer("ledger").Start(ctx, "enabled")
	span.End()
	_ = tp.Shutdown(ctx)
}
