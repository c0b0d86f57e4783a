// Package tasks tracks in-flight background work so the presentation layer
// can show a busy indicator.
package tasks

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/mmcdole/boxoffice/internal/metrics"
)

// Tracker is a reference-counted ledger of running background tasks.
// The same description may be registered more than once.
type Tracker struct {
	count atomic.Int64
	seq   atomic.Uint64

	mu     sync.Mutex
	active map[string]int

	onChange func(count int)
}

// NewTracker creates a tracker. onChange, if set, is called after every
// registration or release with the new count.
func NewTracker(onChange func(count int)) *Tracker {
	return &Tracker{
		active:   make(map[string]int),
		onChange: onChange,
	}
}

// Token is returned by Begin and releases its slot exactly once.
type Token struct {
	tracker     *Tracker
	description string
	seq         uint64
	once        sync.Once
}

// Description returns the task description.
func (t *Token) Description() string { return t.description }

// Seq returns the registration sequence number.
func (t *Token) Seq() uint64 { return t.seq }

// End releases the slot. Extra calls are no-ops.
func (t *Token) End() {
	if t == nil {
		return
	}
	t.once.Do(func() {
		t.tracker.End(t.description)
	})
}

// Begin registers a task. Callers should `defer tok.End()` so the slot is
// released on every exit path.
func (t *Tracker) Begin(description string) *Token {
	t.mu.Lock()
	t.active[description]++
	n := t.count.Add(1)
	t.mu.Unlock()

	t.changed(n)
	return &Token{
		tracker:     t,
		description: description,
		seq:         t.seq.Add(1),
	}
}

// End releases one registration of description. Unknown descriptions are
// ignored so the count can never go negative.
func (t *Tracker) End(description string) bool {
	t.mu.Lock()
	c, ok := t.active[description]
	if !ok {
		t.mu.Unlock()
		return false
	}
	if c <= 1 {
		delete(t.active, description)
	} else {
		t.active[description] = c - 1
	}
	n := t.count.Add(-1)
	t.mu.Unlock()

	t.changed(n)
	return true
}

// Count returns the number of registered tasks.
func (t *Tracker) Count() int {
	return int(t.count.Load())
}

// IsIdle reports whether no task is registered.
func (t *Tracker) IsIdle() bool {
	return t.count.Load() == 0
}

// Descriptions returns the registered descriptions, repeated per registration, sorted.
func (t *Tracker) Descriptions() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, 0, t.count.Load())
	for d, c := range t.active {
		for i := 0; i < c; i++ {
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}

func (t *Tracker) changed(n int64) {
	metrics.BackgroundTasks.Set(float64(n))
	if t.onChange != nil {
		t.onChange(int(n))
	}
}
