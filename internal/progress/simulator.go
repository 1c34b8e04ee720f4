package progress

import (
	"context"
	"sync"
	"time"

	"hirelens/internal/types"
)

// SimulatedCap is the highest value an interpolated bar reaches before the
// agent actually finishes.
const SimulatedCap = 95

// Frame is one cosmetic rendering of a run. Progress values in a frame are
// for display only.
type Frame struct {
	Agents    []AgentProgress `json:"agents"`
	Overall   int             `json:"overall"`
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	At        time.Time       `json:"at"`
}

// Simulator advances progress bars for working agents on a timer so long
// model calls do not look stalled. It only reads from the tracker.
type Simulator struct {
	tracker  *Tracker
	interval time.Duration
	step     int
	render   func(Frame)

	mu    sync.Mutex
	shown map[string]int
}

// NewSimulator creates a simulator that renders a frame every interval,
// moving working agents forward by step percent per frame.
func NewSimulator(tracker *Tracker, interval time.Duration, step int, render func(Frame)) *Simulator {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if step <= 0 {
		step = 5
	}
	return &Simulator{
		tracker:  tracker,
		interval: interval,
		step:     step,
		render:   render,
		shown:    make(map[string]int),
	}
}

// Next computes the next frame. Completed agents show 100, failed agents
// freeze where their bar stood, working agents creep towards SimulatedCap.
// No bar moves backwards.
func (s *Simulator) Next() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tracker.Ordered()
	frame := Frame{Agents: make([]AgentProgress, 0, len(rows)), Total: len(rows), At: time.Now()}
	sum := 0

	for _, row := range rows {
		st := row.Status
		shown := s.shown[row.AgentID]

		switch st.State {
		case types.AgentCompleted:
			shown = 100
			frame.Completed++
		case types.AgentError:
			shown = max(shown, st.Progress)
		case types.AgentWorking:
			shown = min(max(shown+s.step, st.Progress), max(SimulatedCap, st.Progress))
		default:
			shown = st.Progress
		}
		s.shown[row.AgentID] = shown

		st.Progress = shown
		frame.Agents = append(frame.Agents, AgentProgress{AgentID: row.AgentID, Status: st})
		sum += shown
	}
	if len(rows) > 0 {
		frame.Overall = sum / len(rows)
	}
	return frame
}

// Run renders frames until every agent is terminal, the tracker is closed
// or ctx is done. The last frame rendered reflects the final state.
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.tracker.Done():
			s.emit()
			return
		case <-ticker.C:
			s.emit()
			if s.tracker.Finished() {
				return
			}
		}
	}
}

func (s *Simulator) emit() {
	if s.render != nil {
		s.render(s.Next())
	}
}
