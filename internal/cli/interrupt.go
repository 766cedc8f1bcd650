package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler turns Ctrl-C into a graceful stop: the first signal asks
// the current run to stop after its record, a second one cancels the context.
type InterruptHandler struct {
	writer      io.Writer
	onInterrupt func()
	cancelFunc  context.CancelFunc
	signals     int
	mu          sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{
		writer: writer,
	}
}

// HandleInterrupts sets up signal handling and returns a context that is
// canceled on the second interrupt. onInterrupt, if set, runs on the first.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, onInterrupt func()) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	h.cancelFunc = cancel
	h.onInterrupt = onInterrupt

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigChan:
				if h.interrupt() {
					cancel()
					return
				}
			}
		}
	}()

	return ctx
}

// interrupt records one signal and reports whether the context should now be canceled.
func (h *InterruptHandler) interrupt() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.signals++
	if h.signals > 1 || h.onInterrupt == nil {
		h.write("\n" + FormatError("Stopping now.") + "\n")
		return true
	}

	h.write("\n\n" + FormatWarning("Assignment interrupted!") +
		"\n" + FormatInfo("Finishing the current imputation. Assignments saved so far are kept.") +
		"\n" + FormatInfo("Press Ctrl-C again to stop immediately.") + "\n")
	h.onInterrupt()
	return false
}

func (h *InterruptHandler) write(msg string) {
	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.signals > 0
}

// Stop releases the signal handler and cancels the derived context.
func (h *InterruptHandler) Stop() {
	if h.cancelFunc != nil {
		h.cancelFunc()
	}
}
