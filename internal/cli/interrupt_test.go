package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestNewInterruptHandler(t *testing.T) {
	tests := []struct {
		writer io.Writer
		name   string
	}{
		{
			name:   "with custom writer",
			writer: &bytes.Buffer{},
		},
		{
			name:   "with nil writer",
			writer: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewInterruptHandler(tt.writer)
			assert.NotNil(t, handler)
			assert.NotNil(t, handler.writer)
			assert.False(t, handler.WasInterrupted())
		})
	}
}

func TestHandleInterrupts_ContextLifecycle(t *testing.T) {
	handler := NewInterruptHandler(&syncBuffer{})

	parent, cancel := context.WithCancel(context.Background())
	ctx := handler.HandleInterrupts(parent, func() {})

	select {
	case <-ctx.Done():
		t.Fatal("context should not be canceled initially")
	default:
	}

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("derived context should follow its parent")
	}
	assert.False(t, handler.WasInterrupted())
}

func TestInterrupt_FirstSignalRequestsGracefulStop(t *testing.T) {
	var output bytes.Buffer
	calls := 0
	handler := &InterruptHandler{writer: &output, onInterrupt: func() { calls++ }}

	cancelNow := handler.interrupt()

	assert.False(t, cancelNow)
	assert.Equal(t, 1, calls)
	assert.True(t, handler.WasInterrupted())
	assert.Contains(t, output.String(), "Assignment interrupted!")
	assert.Contains(t, output.String(), "Press Ctrl-C again")
}

func TestInterrupt_SecondSignalCancels(t *testing.T) {
	var output bytes.Buffer
	calls := 0
	handler := &InterruptHandler{writer: &output, onInterrupt: func() { calls++ }}

	require.False(t, handler.interrupt())
	assert.True(t, handler.interrupt())

	assert.Equal(t, 1, calls, "graceful stop is requested once")
	assert.Equal(t, 1, strings.Count(output.String(), "Assignment interrupted!"))
	assert.Contains(t, output.String(), "Stopping now.")
}

func TestInterrupt_WithoutCallbackCancelsImmediately(t *testing.T) {
	var output bytes.Buffer
	handler := &InterruptHandler{writer: &output}

	assert.True(t, handler.interrupt())
	assert.NotContains(t, output.String(), "Assignment interrupted!")
}

func TestStop(t *testing.T) {
	handler := NewInterruptHandler(&syncBuffer{})
	ctx := handler.HandleInterrupts(context.Background(), nil)

	handler.Stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("Stop should cancel the context")
	}
}
