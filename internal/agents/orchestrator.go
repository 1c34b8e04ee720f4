package agents

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"hirelens/internal/errors"
	"hirelens/internal/types"

	"golang.org/x/sync/errgroup"
)

// Observer receives every agent status change of a run. Calls are
// serialised by the orchestrator.
type Observer interface {
	OnStatus(agentID string, status types.AgentStatus)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(agentID string, status types.AgentStatus)

func (f ObserverFunc) OnStatus(agentID string, status types.AgentStatus) {
	f(agentID, status)
}

type nopObserver struct{}

func (nopObserver) OnStatus(string, types.AgentStatus) {}

// MultiObserver fans one status stream out to several observers in order
func MultiObserver(observers ...Observer) Observer {
	return ObserverFunc(func(agentID string, status types.AgentStatus) {
		for _, o := range observers {
			if o != nil {
				o.OnStatus(agentID, status)
			}
		}
	})
}

// RunResult holds the outcome of every persona for one resume
type RunResult struct {
	Results  map[string]types.AgentResult
	Statuses map[string]types.AgentStatus
}

// Failed reports whether the agent ended in error
func (r RunResult) Failed(agentID string) bool {
	return r.Statuses[agentID].State == types.AgentError
}

// Completed counts agents that finished successfully
func (r RunResult) Completed() int {
	n := 0
	for _, s := range r.Statuses {
		if s.State == types.AgentCompleted {
			n++
		}
	}
	return n
}

// Text returns the raw reply of a successful agent, or "" if it failed
func (r RunResult) Text(agentID string) string {
	if r.Failed(agentID) {
		return ""
	}
	return r.Results[agentID].RawText
}

// Orchestrator runs the persona catalog over one resume. A failing
// agent never stops the run.
type Orchestrator struct {
	invoker     AgentInvoker
	personas    []Persona
	concurrency int
	logger      *errors.Logger
	now         func() time.Time
}

// NewOrchestrator creates an orchestrator. A nil personas slice uses the
// built-in catalog; concurrency below 2 runs agents one after another.
func NewOrchestrator(invoker AgentInvoker, personas []Persona, concurrency int, logger *errors.Logger) *Orchestrator {
	if personas == nil {
		personas = Catalog()
	}
	return &Orchestrator{
		invoker:     invoker,
		personas:    personas,
		concurrency: concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

// Personas returns the personas this orchestrator runs, in order
func (o *Orchestrator) Personas() []Persona {
	return append([]Persona(nil), o.personas...)
}

// run is the state of one Run call
type run struct {
	mu       sync.Mutex
	observer Observer
	results  map[string]types.AgentResult
	statuses map[string]types.AgentStatus
}

func (r *run) setStatus(agentID string, status types.AgentStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[agentID] = status
	r.observer.OnStatus(agentID, status)
}

func (r *run) finish(agentID string, result types.AgentResult, status types.AgentStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[agentID] = result
	r.statuses[agentID] = status
	r.observer.OnStatus(agentID, status)
}

func (r *run) status(agentID string) types.AgentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statuses[agentID]
}

// Run executes every persona against augmentedText. Every agent ends
// completed or error, including when ctx is cancelled mid-run.
func (o *Orchestrator) Run(ctx context.Context, augmentedText, role string, observer Observer) RunResult {
	if observer == nil {
		observer = nopObserver{}
	}

	r := &run{
		observer: observer,
		results:  make(map[string]types.AgentResult, len(o.personas)),
		statuses: make(map[string]types.AgentStatus, len(o.personas)),
	}

	for _, p := range o.personas {
		r.setStatus(p.ID, types.AgentStatus{State: types.AgentIdle, Message: "Waiting"})
	}

	if o.concurrency > 1 {
		var g errgroup.Group
		g.SetLimit(o.concurrency)
		for _, p := range o.personas {
			g.Go(func() error {
				o.runAgent(ctx, r, p, augmentedText, role)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, p := range o.personas {
			o.runAgent(ctx, r, p, augmentedText, role)
		}
	}

	return RunResult{Results: r.results, Statuses: r.statuses}
}

func (o *Orchestrator) runAgent(ctx context.Context, r *run, p Persona, augmentedText, role string) {
	if err := ctx.Err(); err != nil {
		o.fail(r, p, context.Cause(ctx), nil)
		return
	}

	started := o.now()
	r.setStatus(p.ID, types.AgentStatus{
		State:     types.AgentWorking,
		Progress:  0,
		Message:   fmt.Sprintf("%s is analyzing", p.Name),
		StartedAt: &started,
	})

	text, err := o.invoker.Invoke(ctx, p.ForRole(role), augmentedText)
	if err != nil {
		o.fail(r, p, err, &started)
		return
	}

	finished := o.now()
	elapsed := finished.Sub(started).Milliseconds()
	r.finish(p.ID,
		types.AgentResult{
			AgentID:              p.ID,
			RawText:              text,
			Confidence:           p.Confidence,
			ProcessingTimeMillis: elapsed,
		},
		types.AgentStatus{
			State:         types.AgentCompleted,
			Progress:      100,
			Message:       "Analysis complete",
			StartedAt:     &started,
			FinishedAt:    &finished,
			ElapsedMillis: elapsed,
		})

	o.logger.Debug("Agent completed",
		"agent_id", p.ID,
		"elapsed_ms", elapsed,
		"reply_length", len(text))
}

// fail records the synthetic error result. Progress stays where it was.
func (o *Orchestrator) fail(r *run, p Persona, err error, started *time.Time) {
	reason := failureReason(err)
	finished := o.now()

	status := types.AgentStatus{
		State:      types.AgentError,
		Progress:   r.status(p.ID).Progress,
		Message:    reason,
		StartedAt:  started,
		FinishedAt: &finished,
	}
	if started != nil {
		status.ElapsedMillis = finished.Sub(*started).Milliseconds()
	}

	r.finish(p.ID,
		types.AgentResult{
			AgentID:              p.ID,
			RawText:              fmt.Sprintf("Error analyzing %s: %s", p.ID, reason),
			Confidence:           0,
			ProcessingTimeMillis: 0,
		},
		status)

	o.logger.LogError(err, "Agent failed", "agent_id", p.ID)
}

// failureReason prefers the AppError message over its decorated Error()
func failureReason(err error) string {
	if err == nil {
		return "unknown error"
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}
