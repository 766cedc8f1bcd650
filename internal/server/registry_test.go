package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sapflow/internal/common"
	"github.com/Veraticus/sapflow/internal/engine"
)

func waitDone(t *testing.T, r *Registry, id string) *runEntry {
	t.Helper()
	entry, err := r.lookup(id)
	require.NoError(t, err)
	select {
	case <-entry.done:
	case <-time.After(5 * time.Second):
		t.Fatalf("run %s did not finish", id)
	}
	return entry
}

func TestRegistry_OneRunAtATime(t *testing.T) {
	r := NewRegistry(time.Hour)
	release := make(chan struct{})

	require.NoError(t, r.Start(engine.NewRun("a", nil), func() (engine.Summary, error) {
		<-release
		return engine.Summary{Status: engine.StatusCompleted, Pending: 3}, nil
	}))

	err := r.Start(engine.NewRun("b", nil), func() (engine.Summary, error) { return engine.Summary{}, nil })
	assert.ErrorIs(t, err, common.ErrRunInProcess)

	close(release)
	entry := waitDone(t, r, "a")
	summary, err := r.result(entry)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Pending)

	require.NoError(t, r.Start(engine.NewRun("b", nil), func() (engine.Summary, error) { return engine.Summary{}, nil }))
	waitDone(t, r, "b")
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_KeepsRunError(t *testing.T) {
	r := NewRegistry(time.Hour)
	boom := errors.New("database is locked")
	require.NoError(t, r.Start(engine.NewRun("a", nil), func() (engine.Summary, error) {
		return engine.Summary{Status: engine.StatusFailed}, boom
	}))

	entry := waitDone(t, r, "a")
	summary, err := r.result(entry)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, engine.StatusFailed, summary.Status)
}

func TestRegistry_Evict(t *testing.T) {
	r := NewRegistry(time.Minute)
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	release := make(chan struct{})
	require.NoError(t, r.Start(engine.NewRun("done", nil), func() (engine.Summary, error) { return engine.Summary{}, nil }))
	waitDone(t, r, "done")

	now = now.Add(2 * time.Minute)
	require.NoError(t, r.Start(engine.NewRun("running", nil), func() (engine.Summary, error) {
		<-release
		return engine.Summary{}, nil
	}))
	defer close(release)

	_, err := r.lookup("done")
	assert.ErrorIs(t, err, common.ErrRunNotFound, "finished runs expire after the TTL")

	r.Evict()
	_, err = r.lookup("running")
	assert.NoError(t, err, "unfinished runs never expire")
}

func TestRegistry_Wait(t *testing.T) {
	r := NewRegistry(time.Hour)
	release := make(chan struct{})
	require.NoError(t, r.Start(engine.NewRun("a", nil), func() (engine.Summary, error) {
		<-release
		return engine.Summary{}, nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)

	close(release)
	assert.NoError(t, r.Wait(context.Background()))
}
