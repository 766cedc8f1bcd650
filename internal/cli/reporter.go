package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/Veraticus/sapflow/internal/engine"
	"github.com/schollz/progressbar/v3"
)

// Reporter renders an assignment run in the terminal: a progress bar while
// records are processed, warnings as they happen and a summary box at the end.
type Reporter struct {
	startTime time.Time
	writer    io.Writer
	bar       *progressbar.ProgressBar
	mu        sync.Mutex
	verbose   bool
}

// NewReporter creates a terminal reporter. With verbose set every trail line
// is printed; otherwise only warnings and errors are.
func NewReporter(writer io.Writer, verbose bool) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer, verbose: verbose, startTime: time.Now()}
}

// Begin implements engine.Reporter.
func (r *Reporter) Begin(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.startTime = time.Now()
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Assigning imputations...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(r.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// Line implements engine.Reporter.
func (r *Reporter) Line(line engine.Line) {
	if !r.verbose && line.Level == engine.LevelInfo {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		_ = r.bar.Clear()
	}
	var rendered string
	switch line.Level {
	case engine.LevelWarn:
		rendered = FormatWarning(line.Message)
	case engine.LevelError:
		rendered = FormatError(line.Message)
	default:
		rendered = SubtleStyle.Render(line.Message)
	}
	if _, err := fmt.Fprintln(r.writer, rendered); err != nil {
		slog.Warn("Failed to write trail line", "error", err)
	}
}

// Step implements engine.Reporter.
func (r *Reporter) Step(int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		if err := r.bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
}

// End implements engine.Reporter.
func (r *Reporter) End(summary engine.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil && summary.Status == engine.StatusCompleted {
		_ = r.bar.Finish()
	}

	if _, err := fmt.Fprintln(r.writer, RenderBox(summaryTitle(summary.Status), FormatSummary(summary, time.Since(r.startTime)))); err != nil {
		slog.Warn("Failed to write summary box", "error", err)
	}
}

func summaryTitle(status string) string {
	switch status {
	case engine.StatusCanceled:
		return WarningIcon + " Assignment Canceled"
	case engine.StatusFailed:
		return ErrorIcon + " Assignment Failed"
	default:
		return CheckIcon + " Assignment Complete"
	}
}

// FormatSummary renders run counters as an aligned block.
func FormatSummary(s engine.Summary, elapsed time.Duration) string {
	return fmt.Sprintf("%s Results:\n", ChartIcon) +
		fmt.Sprintf("  • Prior unloaded removed: %d\n", s.Cleaned) +
		fmt.Sprintf("  • Pending imputations: %d\n", s.Pending) +
		fmt.Sprintf("  • Assigned: %s\n", StyleSuccess(fmt.Sprint(s.Assigned))) +
		fmt.Sprintf("  • Via fallback: %d\n", s.Fallback) +
		fmt.Sprintf("  • Discarded: %s\n", StyleWarning(fmt.Sprint(s.Discarded))) +
		fmt.Sprintf("  • Failed: %s\n", StyleError(fmt.Sprint(s.Failed))) +
		fmt.Sprintf("  • Time taken: %s", elapsed.Round(time.Millisecond))
}
