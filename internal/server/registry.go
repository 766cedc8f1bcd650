package server

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/sapflow/internal/common"
	"github.com/Veraticus/sapflow/internal/engine"
)

// runEntry tracks one run started over HTTP.
type runEntry struct {
	finishedAt time.Time
	err        error
	run        *engine.Run
	done       chan struct{}
	summary    engine.Summary
}

func (e *runEntry) finished() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Registry holds runs for the lifetime of the process. Finished runs are
// evicted once they are older than the TTL.
type Registry struct {
	runs map[string]*runEntry
	now  func() time.Time
	mu   sync.Mutex
	ttl  time.Duration
}

// NewRegistry creates an empty registry.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		runs: make(map[string]*runEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Start registers run and executes it in a new goroutine. Only one run may be
// in progress at a time; a second Start returns common.ErrRunInProcess.
func (r *Registry) Start(run *engine.Run, execute func() (engine.Summary, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictLocked()
	for _, e := range r.runs {
		if !e.finished() {
			return common.ErrRunInProcess
		}
	}

	entry := &runEntry{run: run, done: make(chan struct{})}
	r.runs[run.ID] = entry

	go func() {
		summary, err := execute()
		r.mu.Lock()
		entry.summary = summary
		entry.err = err
		entry.finishedAt = r.now()
		r.mu.Unlock()
		close(entry.done)
	}()
	return nil
}

// lookup returns the entry for id.
func (r *Registry) lookup(id string) (*runEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictLocked()
	entry, ok := r.runs[id]
	if !ok {
		return nil, common.ErrRunNotFound
	}
	return entry, nil
}

// result returns the summary and error of a finished run.
func (r *Registry) result(entry *runEntry) (engine.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return entry.summary, entry.err
}

// Len returns the number of tracked runs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

// Evict drops finished runs older than the TTL.
func (r *Registry) Evict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictLocked()
}

func (r *Registry) evictLocked() {
	cutoff := r.now().Add(-r.ttl)
	for id, e := range r.runs {
		if e.finished() && e.finishedAt.Before(cutoff) {
			delete(r.runs, id)
		}
	}
}

// Janitor evicts expired runs every interval until ctx is done.
func (r *Registry) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict()
		}
	}
}

// Wait blocks until every tracked run has finished or ctx is done.
func (r *Registry) Wait(ctx context.Context) error {
	r.mu.Lock()
	pending := make([]*runEntry, 0, len(r.runs))
	for _, e := range r.runs {
		pending = append(pending, e)
	}
	r.mu.Unlock()

	for _, e := range pending {
		select {
		case <-e.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
