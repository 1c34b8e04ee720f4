// Package progress reports agent status while an analysis runs.
//
// Tracker is the live layer: it mirrors what the orchestrator reports and
// nothing else. Simulator is a cosmetic layer on top that interpolates bars
// for display and never feeds back into the tracker.
package progress

import (
	"sync"
	"time"

	"hirelens/internal/types"
)

// Event is one status change as seen by subscribers
type Event struct {
	AgentID string            `json:"agentId"`
	Status  types.AgentStatus `json:"status"`
	At      time.Time         `json:"at"`
}

// AgentProgress is one row of an ordered snapshot
type AgentProgress struct {
	AgentID string            `json:"agentId"`
	Status  types.AgentStatus `json:"status"`
}

// Tracker holds the latest status of every agent in one run. It satisfies
// agents.Observer.
type Tracker struct {
	mu          sync.Mutex
	order       []string
	statuses    map[string]types.AgentStatus
	subscribers map[int]chan Event
	nextID      int
	dropped     int
	closed      bool
	done        chan struct{}
	now         func() time.Time
}

// NewTracker creates a tracker for the given agents, listed in display
// order. Every agent starts idle.
func NewTracker(agentIDs []string) *Tracker {
	t := &Tracker{
		order:       append([]string(nil), agentIDs...),
		statuses:    make(map[string]types.AgentStatus, len(agentIDs)),
		subscribers: make(map[int]chan Event),
		done:        make(chan struct{}),
		now:         time.Now,
	}
	for _, id := range agentIDs {
		t.statuses[id] = types.AgentStatus{State: types.AgentIdle}
	}
	return t
}

// OnStatus records a status change. A reported progress lower than the
// current one is raised to it. Slow subscribers miss the event; the
// snapshot is still updated.
func (t *Tracker) OnStatus(agentID string, status types.AgentStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.statuses[agentID]; ok {
		if status.Progress < prev.Progress {
			status.Progress = prev.Progress
		}
	} else {
		t.order = append(t.order, agentID)
	}
	t.statuses[agentID] = status

	if t.closed {
		return
	}
	ev := Event{AgentID: agentID, Status: status, At: t.now()}
	for _, ch := range t.subscribers {
		select {
		case ch <- ev:
		default:
			t.dropped++
		}
	}
}

// Snapshot returns a copy of every agent's latest status
func (t *Tracker) Snapshot() map[string]types.AgentStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]types.AgentStatus, len(t.statuses))
	for id, s := range t.statuses {
		out[id] = s
	}
	return out
}

// Ordered returns the latest statuses in display order
func (t *Tracker) Ordered() []AgentProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]AgentProgress, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, AgentProgress{AgentID: id, Status: t.statuses[id]})
	}
	return out
}

// Finished reports whether every agent reached a terminal state
func (t *Tracker) Finished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.statuses {
		if !s.State.Terminal() {
			return false
		}
	}
	return true
}

// Overall is the mean progress across agents, 0-100
func (t *Tracker) Overall() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.statuses) == 0 {
		return 0
	}
	sum := 0
	for _, s := range t.statuses {
		if s.State.Terminal() {
			sum += 100
		} else {
			sum += s.Progress
		}
	}
	return sum / len(t.statuses)
}

// Subscribe returns a channel of future events and a function that
// cancels the subscription. The channel is closed by cancel or Close.
func (t *Tracker) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := t.nextID
	t.nextID++
	t.subscribers[id] = ch
	t.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			if sub, ok := t.subscribers[id]; ok {
				delete(t.subscribers, id)
				close(sub)
			}
		})
	}
}

// Close ends every subscription. Later status changes still update the
// snapshot.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	for id, ch := range t.subscribers {
		delete(t.subscribers, id)
		close(ch)
	}
	close(t.done)
}

// Done is closed when Close is called
func (t *Tracker) Done() <-chan struct{} {
	return t.done
}

// Dropped counts events not delivered to slow subscribers
func (t *Tracker) Dropped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}
