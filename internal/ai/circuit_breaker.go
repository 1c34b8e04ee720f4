package ai

import (
	"context"

	"hirelens/internal/config"
	"hirelens/internal/errors"
	"hirelens/internal/observability"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"
)

// Breaker guards the calls one operation makes to the model endpoint. A
// nil or disabled Breaker passes every call straight through.
type Breaker[T any] struct {
	name string
	cb   *gobreaker.CircuitBreaker[T]
}

// BreakerStats is a point-in-time view of one breaker
type BreakerStats struct {
	Name                string `json:"name"`
	Enabled             bool   `json:"enabled"`
	State               string `json:"state"`
	Requests            uint32 `json:"requests"`
	TotalFailures       uint32 `json:"totalFailures"`
	ConsecutiveFailures uint32 `json:"consecutiveFailures"`
}

// BreakerReporter is implemented by providers that guard model calls with
// circuit breakers.
type BreakerReporter interface {
	BreakerStats() []BreakerStats
}

// CompletionBreaker trips on the configured failure ratio of completion calls
type CompletionBreaker = Breaker[*genai.GenerateContentResponse]

// ModelCheckBreaker guards model availability lookups
type ModelCheckBreaker = Breaker[*genai.Model]

// NewCompletionBreaker creates the breaker named hirelens-<operation>
func NewCompletionBreaker(operation string, cfg *config.OperationAIConfig, logger *errors.Logger, metrics *observability.Metrics) *CompletionBreaker {
	cb := cfg.CircuitBreaker
	return newBreaker[*genai.GenerateContentResponse]("hirelens-"+operation, cb, logger, metrics,
		func(counts gobreaker.Counts) bool {
			return counts.Requests >= cb.MinRequests &&
				failureRatio(counts) >= cb.FailureThreshold
		})
}

// NewModelCheckBreaker creates the breaker named hirelens-<operation>-model.
// Availability lookups only trip after five calls at 80% failure.
func NewModelCheckBreaker(operation string, cfg *config.OperationAIConfig, logger *errors.Logger, metrics *observability.Metrics) *ModelCheckBreaker {
	return newBreaker[*genai.Model]("hirelens-"+operation+"-model", cfg.CircuitBreaker, logger, metrics,
		func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && failureRatio(counts) >= 0.8
		})
}

func newBreaker[T any](name string, cfg config.CircuitBreakerConfig, logger *errors.Logger, metrics *observability.Metrics, trip func(gobreaker.Counts) bool) *Breaker[T] {
	if !cfg.Enabled {
		return &Breaker[T]{name: name}
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: trip,
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Info("Circuit breaker state changed",
					"breaker", name,
					"from", from.String(),
					"to", to.String())
			}
			metrics.RecordBreakerTransition(context.Background(), name, from.String(), to.String())
		},
	}
	return &Breaker[T]{name: name, cb: gobreaker.NewCircuitBreaker[T](settings)}
}

func failureRatio(counts gobreaker.Counts) float64 {
	if counts.Requests == 0 {
		return 0
	}
	return float64(counts.TotalFailures) / float64(counts.Requests)
}

// Execute runs fn under the breaker. An open breaker returns
// gobreaker.ErrOpenState without calling fn.
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// Stats snapshots the breaker's state and counts
func (b *Breaker[T]) Stats() BreakerStats {
	if b == nil {
		return BreakerStats{State: "disabled"}
	}
	if b.cb == nil {
		return BreakerStats{Name: b.name, State: "disabled"}
	}
	counts := b.cb.Counts()
	return BreakerStats{
		Name:                b.cb.Name(),
		Enabled:             true,
		State:               b.cb.State().String(),
		Requests:            counts.Requests,
		TotalFailures:       counts.TotalFailures,
		ConsecutiveFailures: counts.ConsecutiveFailures,
	}
}

// Healthy reports whether the breaker is closed
func (b *Breaker[T]) Healthy() bool {
	return b == nil || b.cb == nil || b.cb.State() == gobreaker.StateClosed
}
