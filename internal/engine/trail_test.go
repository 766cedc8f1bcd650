package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrail_AppendAndSince(t *testing.T) {
	trail := NewTrail()

	first := trail.Appendf(LevelInfo, 1, "processing %d", 1)
	assert.False(t, first.Time.IsZero())
	trail.Appendf(LevelWarn, 1, "no area for %s", "162")

	lines, _, closed := trail.Since(1)
	require.Len(t, lines, 1)
	assert.Equal(t, "no area for 162", lines[0].Message)
	assert.False(t, closed)

	lines, _, _ = trail.Since(5)
	assert.Empty(t, lines)

	assert.Equal(t, []string{"processing 1", "⚠️ no area for 162"}, trail.Strings())
}

func TestTrail_FollowersWakeOnChange(t *testing.T) {
	trail := NewTrail()
	_, changed, _ := trail.Since(0)

	go trail.Appendf(LevelInfo, 0, "hello")

	select {
	case <-changed:
	case <-time.After(time.Second):
		t.Fatal("follower was not woken by Append")
	}

	lines, changed, _ := trail.Since(0)
	require.Len(t, lines, 1)

	trail.Close()
	select {
	case <-changed:
	case <-time.After(time.Second):
		t.Fatal("follower was not woken by Close")
	}

	_, _, closed := trail.Since(0)
	assert.True(t, closed)

	trail.Appendf(LevelInfo, 0, "ignored after close")
	assert.Len(t, trail.Lines(), 1)
	trail.Close()
}

func TestLine_String(t *testing.T) {
	assert.Equal(t, "ok", Line{Level: LevelInfo, Message: "ok"}.String())
	assert.Equal(t, "⚠️ careful", Line{Level: LevelWarn, Message: "careful"}.String())
	assert.Equal(t, "❌ broken", Line{Level: LevelError, Message: "broken"}.String())
}

func TestRun_Cancel(t *testing.T) {
	run := NewRun("r", nil)
	assert.IsType(t, NopReporter{}, run.Reporter)
	assert.False(t, run.Canceled())
	run.Cancel()
	assert.True(t, run.Canceled())
}
