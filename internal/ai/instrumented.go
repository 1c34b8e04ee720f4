package ai

import (
	"context"
	"time"

	"hirelens/internal/observability"
)

// InstrumentedProvider records request count, latency and token usage for
// every completion made through the wrapped provider.
type InstrumentedProvider struct {
	Provider
	operation string
	metrics   *observability.Metrics
}

// Instrument wraps p so each Complete call is recorded under operation.
// A nil metrics value records nothing.
func Instrument(p Provider, operation string, metrics *observability.Metrics) *InstrumentedProvider {
	return &InstrumentedProvider{Provider: p, operation: operation, metrics: metrics}
}

func (p *InstrumentedProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	start := time.Now()
	completion, err := p.Provider.Complete(ctx, prompt)

	var usage *observability.TokenUsage
	if completion != nil && completion.TokenUsage != nil {
		usage = (*observability.TokenUsage)(completion.TokenUsage)
	}
	p.metrics.RecordAIRequest(ctx, p.operation, time.Since(start), err, usage)
	return completion, err
}

// BreakerStats forwards the wrapped provider's breaker stats, if it has any
func (p *InstrumentedProvider) BreakerStats() []BreakerStats {
	if r, ok := p.Provider.(BreakerReporter); ok {
		return r.BreakerStats()
	}
	return nil
}
