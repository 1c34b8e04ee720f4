package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"hirelens/internal/types"
)

const barWidth = 20

// ConsoleRenderer writes agent progress as plain lines, one per state
// change. It satisfies agents.Observer and can also draw simulator frames.
type ConsoleRenderer struct {
	mu    sync.Mutex
	w     io.Writer
	names map[string]string
	label string
}

// NewConsoleRenderer creates a renderer. names maps agent ids to display
// names; unknown ids are printed as-is.
func NewConsoleRenderer(w io.Writer, names map[string]string) *ConsoleRenderer {
	return &ConsoleRenderer{w: w, names: names}
}

// WithLabel returns a renderer that prefixes every line with label,
// usually the file being analyzed.
func (c *ConsoleRenderer) WithLabel(label string) *ConsoleRenderer {
	return &ConsoleRenderer{w: c.w, names: c.names, label: label}
}

func (c *ConsoleRenderer) name(agentID string) string {
	if n, ok := c.names[agentID]; ok {
		return n
	}
	return agentID
}

func (c *ConsoleRenderer) prefix() string {
	if c.label == "" {
		return ""
	}
	return "[" + c.label + "] "
}

// OnStatus prints working, completed and error transitions. Idle events
// are skipped.
func (c *ConsoleRenderer) OnStatus(agentID string, status types.AgentStatus) {
	var line string
	switch status.State {
	case types.AgentWorking:
		line = fmt.Sprintf("%s%-22s working   %s", c.prefix(), c.name(agentID), status.Message)
	case types.AgentCompleted:
		line = fmt.Sprintf("%s%-22s done      %dms", c.prefix(), c.name(agentID), status.ElapsedMillis)
	case types.AgentError:
		line = fmt.Sprintf("%s%-22s failed    %s", c.prefix(), c.name(agentID), status.Message)
	default:
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, line)
}

// RenderFrame prints a bar per agent followed by the overall line
func (c *ConsoleRenderer) RenderFrame(f Frame) {
	var b strings.Builder
	for _, a := range f.Agents {
		fmt.Fprintf(&b, "%s%-22s %s %3d%%\n", c.prefix(), c.name(a.AgentID), Bar(a.Status.Progress, barWidth), a.Status.Progress)
	}
	fmt.Fprintf(&b, "%soverall %3d%% (%d/%d complete)\n", c.prefix(), f.Overall, f.Completed, f.Total)

	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.w, b.String()) //nolint:errcheck
}

// Bar draws a fixed-width text progress bar for pct in [0,100]
func Bar(pct, width int) string {
	pct = min(max(pct, 0), 100)
	filled := pct * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
