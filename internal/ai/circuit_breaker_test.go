package ai

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"hirelens/internal/config"
	"hirelens/internal/errors"
	"hirelens/internal/observability"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"google.golang.org/genai"
)

func breakerConfig(minRequests uint32, threshold float64) *config.OperationAIConfig {
	return &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "gemini-2.0-flash",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      minRequests,
			FailureThreshold: threshold,
		},
	}
}

func discardLogger() *errors.Logger {
	return errors.NewLoggerWithWriter(io.Discard, slog.LevelError)
}

func failing() (*genai.GenerateContentResponse, error) {
	return nil, stderrors.New("upstream down")
}

func TestBreakersAreNamedPerOperation(t *testing.T) {
	analysis := NewCompletionBreaker("analysis", breakerConfig(3, 0.6), discardLogger(), nil)
	outreach := NewCompletionBreaker("outreach", breakerConfig(2, 0.7), discardLogger(), nil)
	modelCheck := NewModelCheckBreaker("analysis", breakerConfig(3, 0.6), discardLogger(), nil)

	assert.Equal(t, BreakerStats{Name: "hirelens-analysis", Enabled: true, State: "closed"}, analysis.Stats())
	assert.Equal(t, "hirelens-outreach", outreach.Stats().Name)
	assert.Equal(t, "hirelens-analysis-model", modelCheck.Stats().Name)
	assert.NotSame(t, analysis, outreach)
	assert.True(t, analysis.Healthy())
	assert.True(t, outreach.Healthy())
}

func TestBreakerTripsAfterFailures(t *testing.T) {
	b := NewCompletionBreaker("analysis", breakerConfig(2, 0.5), discardLogger(), nil)

	for range 2 {
		_, err := b.Execute(failing)
		require.Error(t, err)
	}

	assert.False(t, b.Healthy())
	stats := b.Stats()
	assert.Equal(t, "open", stats.State)

	called := false
	_, err := b.Execute(func() (*genai.GenerateContentResponse, error) {
		called = true
		return &genai.GenerateContentResponse{}, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, called, "open breaker must not invoke the call")
}

func TestBreakerRecordsStateChanges(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	metrics, err := observability.NewMetrics(provider.Meter("test"))
	require.NoError(t, err)

	b := NewCompletionBreaker("outreach", breakerConfig(1, 1.0), discardLogger(), metrics)
	_, _ = b.Execute(failing)
	require.False(t, b.Healthy())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var transitions []metricdata.DataPoint[int64]
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "hirelens_ai_breaker_transitions_total" {
				transitions = m.Data.(metricdata.Sum[int64]).DataPoints
			}
		}
	}
	require.Len(t, transitions, 1)
	assert.Equal(t, int64(1), transitions[0].Value)

	breaker, _ := transitions[0].Attributes.Value("breaker")
	to, _ := transitions[0].Attributes.Value("to")
	assert.Equal(t, "hirelens-outreach", breaker.AsString())
	assert.Equal(t, "open", to.AsString())
}

func TestBreakerDisabledPassesThrough(t *testing.T) {
	cfg := &config.OperationAIConfig{Provider: "gemini", Model: "test-model"}
	b := NewCompletionBreaker("analysis", cfg, nil, nil)

	for range 5 {
		_, err := b.Execute(failing)
		require.Error(t, err)
	}
	resp, err := b.Execute(func() (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{}, nil
	})
	require.NoError(t, err)
	assert.NotNil(t, resp)

	assert.True(t, b.Healthy())
	assert.Equal(t, BreakerStats{Name: "hirelens-analysis", State: "disabled"}, b.Stats())

	var nilBreaker *CompletionBreaker
	assert.True(t, nilBreaker.Healthy())
	assert.Equal(t, "disabled", nilBreaker.Stats().State)
}

func TestGeminiProviderReportsBreakers(t *testing.T) {
	cfg := breakerConfig(3, 0.6)
	g := &GeminiProvider{
		config:         cfg,
		operationType:  "analysis",
		circuitBreaker: NewCompletionBreaker("analysis", cfg, discardLogger(), nil),
		modelBreaker:   NewModelCheckBreaker("analysis", cfg, discardLogger(), nil),
	}

	stats := g.BreakerStats()
	require.Len(t, stats, 2)
	assert.Equal(t, "hirelens-analysis", stats[0].Name)
	assert.Equal(t, "hirelens-analysis-model", stats[1].Name)
}
