package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all custom metrics for hirelens. A zero Metrics records
// nothing, so callers never need to check whether telemetry is enabled.
type Metrics struct {
	// Model call metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram
	BreakerChanges   metric.Int64Counter

	// Pipeline metrics
	AnalysesTotal    metric.Int64Counter
	AnalysisDuration metric.Float64Histogram
	MatchScore       metric.Int64Histogram
	AgentRuns        metric.Int64Counter
	AgentDuration    metric.Float64Histogram
	ExtractionErrors metric.Int64Counter
	CacheLookups     metric.Int64Counter
	EmailsSent       metric.Int64Counter

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.AIProcessingTime, err = meter.Float64Histogram(
		"hirelens_ai_processing_duration_seconds",
		metric.WithDescription("Time spent waiting on model calls"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	if m.AIRequestCount, err = meter.Int64Counter(
		"hirelens_ai_requests_total",
		metric.WithDescription("Total number of model calls"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI request count metric: %w", err)
	}

	if m.AIErrorCount, err = meter.Int64Counter(
		"hirelens_ai_errors_total",
		metric.WithDescription("Total number of failed model calls"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI error count metric: %w", err)
	}

	if m.AITokenUsage, err = meter.Int64Histogram(
		"hirelens_ai_token_usage_total",
		metric.WithDescription("Token usage for model calls (input, output, total)"),
		metric.WithUnit("tokens"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	if m.BreakerChanges, err = meter.Int64Counter(
		"hirelens_ai_breaker_transitions_total",
		metric.WithDescription("Circuit breaker state changes by breaker and target state"),
	); err != nil {
		return nil, fmt.Errorf("failed to create breaker transitions metric: %w", err)
	}

	if m.AnalysesTotal, err = meter.Int64Counter(
		"hirelens_analyses_total",
		metric.WithDescription("Total number of resume analyses by outcome"),
	); err != nil {
		return nil, fmt.Errorf("failed to create analyses metric: %w", err)
	}

	if m.AnalysisDuration, err = meter.Float64Histogram(
		"hirelens_analysis_duration_seconds",
		metric.WithDescription("Wall time of one resume analysis"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create analysis duration metric: %w", err)
	}

	if m.MatchScore, err = meter.Int64Histogram(
		"hirelens_match_score",
		metric.WithDescription("Distribution of heuristic match scores"),
	); err != nil {
		return nil, fmt.Errorf("failed to create match score metric: %w", err)
	}

	if m.AgentRuns, err = meter.Int64Counter(
		"hirelens_agent_runs_total",
		metric.WithDescription("Agent runs by agent id and terminal state"),
	); err != nil {
		return nil, fmt.Errorf("failed to create agent runs metric: %w", err)
	}

	if m.AgentDuration, err = meter.Float64Histogram(
		"hirelens_agent_duration_seconds",
		metric.WithDescription("Time spent by each agent"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create agent duration metric: %w", err)
	}

	if m.ExtractionErrors, err = meter.Int64Counter(
		"hirelens_extraction_errors_total",
		metric.WithDescription("Documents whose text could not be extracted"),
	); err != nil {
		return nil, fmt.Errorf("failed to create extraction errors metric: %w", err)
	}

	if m.CacheLookups, err = meter.Int64Counter(
		"hirelens_cache_lookups_total",
		metric.WithDescription("Analysis cache lookups by result"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cache lookups metric: %w", err)
	}

	if m.EmailsSent, err = meter.Int64Counter(
		"hirelens_emails_sent_total",
		metric.WithDescription("Outreach emails handed to the mail transport"),
	); err != nil {
		return nil, fmt.Errorf("failed to create emails sent metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter(
		"hirelens_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return m, nil
}

// TokenUsage represents token usage information from model responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// RecordAIRequest records one model call
func (m *Metrics) RecordAIRequest(ctx context.Context, operation string, elapsed time.Duration, err error, usage *TokenUsage) {
	if m == nil || m.AIRequestCount == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.AIProcessingTime.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
	if err != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if usage == nil {
		return
	}

	tokenTypes := []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	}
	for _, tt := range tokenTypes {
		tokenAttrs := append(attrs[:len(attrs):len(attrs)], attribute.String("token_type", tt.tokenType))
		m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
	}
}

// RecordBreakerTransition counts a circuit breaker moving between states
func (m *Metrics) RecordBreakerTransition(ctx context.Context, breaker, from, to string) {
	if m == nil || m.BreakerChanges == nil {
		return
	}
	m.BreakerChanges.Add(ctx, 1, metric.WithAttributes(
		attribute.String("breaker", breaker),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// RecordAnalysis records one finished resume analysis. outcome is
// "success", "cached" or "failed"; score is ignored unless it succeeded.
func (m *Metrics) RecordAnalysis(ctx context.Context, outcome string, elapsed time.Duration, score int) {
	if m == nil || m.AnalysesTotal == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.AnalysesTotal.Add(ctx, 1, attrs)
	m.AnalysisDuration.Record(ctx, elapsed.Seconds(), attrs)
	if outcome == "success" {
		m.MatchScore.Record(ctx, int64(score))
	}
}

// RecordAgent records one agent's terminal state
func (m *Metrics) RecordAgent(ctx context.Context, agentID, state string, elapsed time.Duration) {
	if m == nil || m.AgentRuns == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("agent_id", agentID),
		attribute.String("state", state),
	)
	m.AgentRuns.Add(ctx, 1, attrs)
	m.AgentDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordExtractionError counts a document that could not be read
func (m *Metrics) RecordExtractionError(ctx context.Context, code string) {
	if m == nil || m.ExtractionErrors == nil {
		return
	}
	m.ExtractionErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

// RecordCacheLookup counts an analysis cache hit or miss
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil || m.CacheLookups == nil {
		return
	}
	m.CacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", hit)))
}

// RecordEmailSent counts an outreach email delivery attempt
func (m *Metrics) RecordEmailSent(ctx context.Context, success bool) {
	if m == nil || m.EmailsSent == nil {
		return
	}
	m.EmailsSent.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordRateLimitHit counts a rejected request
func (m *Metrics) RecordRateLimitHit(ctx context.Context, limitType string) {
	if m == nil || m.RateLimitHits == nil {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("limit_type", limitType)))
}
