package engine

import (
	"fmt"
	"sync"
	"time"
)

// Level classifies a trail line.
type Level string

// Trail levels.
const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Line is one human-readable entry of a run's decision trail.
type Line struct {
	Time         time.Time `json:"time"`
	Level        Level     `json:"level"`
	Message      string    `json:"message"`
	ImputationID int64     `json:"imputation_id,omitempty"`
}

func (l Line) String() string {
	switch l.Level {
	case LevelWarn:
		return "⚠️ " + l.Message
	case LevelError:
		return "❌ " + l.Message
	default:
		return l.Message
	}
}

// Trail is the ordered decision log of one run. It is safe for one writer
// and any number of readers following along.
type Trail struct {
	changed chan struct{}
	lines   []Line
	mu      sync.Mutex
	closed  bool
}

// NewTrail creates an empty trail.
func NewTrail() *Trail {
	return &Trail{changed: make(chan struct{})}
}

// Append adds a line and wakes any followers.
func (t *Trail) Append(line Line) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if line.Time.IsZero() {
		line.Time = time.Now()
	}
	t.lines = append(t.lines, line)
	close(t.changed)
	t.changed = make(chan struct{})
}

// Appendf formats and appends a line.
func (t *Trail) Appendf(level Level, imputationID int64, format string, args ...any) Line {
	line := Line{Time: time.Now(), Level: level, ImputationID: imputationID, Message: fmt.Sprintf(format, args...)}
	t.Append(line)
	return line
}

// Close marks the trail finished. Followers observe it through Since.
func (t *Trail) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	close(t.changed)
}

// Since returns the lines from index from onward, a channel closed on the
// next change, and whether the trail is finished.
func (t *Trail) Since(from int) ([]Line, <-chan struct{}, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if from < 0 {
		from = 0
	}
	var out []Line
	if from < len(t.lines) {
		out = make([]Line, len(t.lines)-from)
		copy(out, t.lines[from:])
	}
	return out, t.changed, t.closed
}

// Lines returns a copy of every line.
func (t *Trail) Lines() []Line {
	lines, _, _ := t.Since(0)
	return lines
}

// Strings renders the trail as plain log-line strings.
func (t *Trail) Strings() []string {
	lines := t.Lines()
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}
