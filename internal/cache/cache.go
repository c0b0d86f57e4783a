// Package cache implements the identity-keyed artifact caches (posters,
// trailers, reviews, ratings, geocoded locations, search results).
//
// A Cache never blocks its readers: Get answers from memory or the durable
// store and schedules a tracked background fetch on a miss. Fetches for the
// same key are collapsed with singleflight, successful values are persisted
// before they become visible, and Invalidate bumps a per-key generation so
// fetches that started earlier are discarded when they complete.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/mmcdole/boxoffice/internal/domain"
	"github.com/mmcdole/boxoffice/internal/metrics"
	"github.com/mmcdole/boxoffice/internal/tasks"
	"golang.org/x/sync/singleflight"
)

const defaultFetchTimeout = 30 * time.Second

// ErrSuperseded is returned by Load when the key was invalidated while the
// fetch was running; the result was dropped.
var ErrSuperseded = errors.New("fetch superseded by invalidation")

// Status is the fetch state of a single key.
type Status int

const (
	StatusAbsent Status = iota
	StatusFetching
	StatusPresent
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFetching:
		return "fetching"
	case StatusPresent:
		return "present"
	case StatusFailed:
		return "failed"
	default:
		return "absent"
	}
}

// Fetcher loads the value for key from the network.
type Fetcher[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Options configures a Cache.
type Options[K comparable, V any] struct {
	Name      string         // Metrics label and task description prefix
	Namespace string         // Store namespace; defaults to Name
	Store     domain.KVStore // nil keeps values in memory only
	Tracker   *tasks.Tracker // nil disables busy tracking
	Logger    *slog.Logger

	Fetch     Fetcher[K, V]
	KeyString func(K) string // Must be injective; used for persistence and dedupe

	FreshFor   time.Duration // 0 = values never go stale
	RetryAfter time.Duration // 0 = failed keys wait for Invalidate
	Timeout    time.Duration // Per fetch; defaults to 30s

	// OnUpdated is called (outside the cache lock) each time a key becomes
	// present or failed. err is nil on success.
	OnUpdated func(key K, err error)

	Now func() time.Time
}

// Entry describes the state of one key.
type Entry[V any] struct {
	Value     V
	HasValue  bool
	Status    Status
	Persisted bool
	Stale     bool
	Err       error
	FetchedAt time.Time
}

type entry[V any] struct {
	value     V
	hasValue  bool
	status    Status
	persisted bool
	err       error
	fetchedAt time.Time
	attemptAt time.Time
	gen       uint64
}

// envelope is the persisted form of a value.
type envelope[V any] struct {
	Value     V         `json:"value"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Cache maps a domain key to a lazily fetched, persisted value.
type Cache[K comparable, V any] struct {
	opts   Options[K, V]
	logger *slog.Logger

	mu      sync.Mutex
	entries map[K]*entry[V]

	// ioMu orders store writes and deletes. c.mu is never held across
	// store I/O, so readers do not wait on the disk.
	ioMu sync.Mutex

	group singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a cache. Fetch and KeyString are required.
func New[K comparable, V any](opts Options[K, V]) *Cache[K, V] {
	if opts.Fetch == nil || opts.KeyString == nil {
		panic("cache: Fetch and KeyString are required")
	}
	if opts.Namespace == "" {
		opts.Namespace = opts.Name
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFetchTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Cache[K, V]{
		opts:    opts,
		logger:  logger.With("cache", opts.Name),
		entries: make(map[K]*entry[V]),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Name returns the cache name.
func (c *Cache[K, V]) Name() string { return c.opts.Name }

// Get returns the cached value without blocking. A miss, a stale value or a
// failed key past its retry window schedules a background fetch; stale values
// are still returned.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	e := c.lock(key)
	if c.needsFetchLocked(e) {
		c.scheduleLocked(key, e)
	}
	v, ok := e.value, e.hasValue
	stale := c.isStale(e)
	c.mu.Unlock()

	switch {
	case ok && stale:
		c.count("stale")
	case ok:
		c.count("hit")
	default:
		c.count("miss")
	}
	return v, ok
}

// Peek returns the cached value without scheduling anything.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	e := c.lock(key)
	defer c.mu.Unlock()
	return e.value, e.hasValue
}

// Load returns a fresh value, waiting for the network if needed. Concurrent
// Load and Get calls for the same key share one fetch. Cancelling ctx stops
// the wait, not the shared fetch.
func (c *Cache[K, V]) Load(ctx context.Context, key K) (V, error) {
	e := c.lock(key)
	if e.status == StatusPresent && !c.isStale(e) {
		v := e.value
		c.mu.Unlock()
		c.count("hit")
		return v, nil
	}
	e.status = StatusFetching
	gen := e.gen
	c.mu.Unlock()

	c.count("miss")
	return c.wait(ctx, key, gen)
}

// Refresh drops the current value and loads a new one.
func (c *Cache[K, V]) Refresh(ctx context.Context, key K) (V, error) {
	c.Invalidate(key)
	return c.Load(ctx, key)
}

// Reload fetches key again even if the cached value is fresh. The current
// value stays readable until the new one replaces it; fetches started
// earlier are discarded.
func (c *Cache[K, V]) Reload(ctx context.Context, key K) (V, error) {
	e := c.lock(key)
	e.gen++
	e.status = StatusFetching
	gen := e.gen
	c.mu.Unlock()

	c.count("reload")
	return c.wait(ctx, key, gen)
}

// Put stores a value directly, persisting it first.
func (c *Cache[K, V]) Put(key K, value V) {
	e := c.lock(key)
	gen := e.gen
	c.mu.Unlock()

	if c.publish(key, gen, value) {
		c.notify(key, nil)
	}
}

// Invalidate forgets key in memory and on disk. A fetch already in flight
// for the key completes but its result is discarded.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry[V]{}
		c.entries[key] = e
		metrics.CacheEntries.WithLabelValues(c.opts.Name).Set(float64(len(c.entries)))
	}
	*e = entry[V]{gen: e.gen + 1}
	c.mu.Unlock()

	c.count("invalidated")
	if c.opts.Store == nil {
		return
	}

	c.ioMu.Lock()
	defer c.ioMu.Unlock()
	c.mu.Lock()
	// A fetch that started after the reset may already have written
	// its value
	rewritten := e.persisted
	c.mu.Unlock()
	if rewritten {
		return
	}
	if err := c.opts.Store.Delete(c.opts.Namespace, c.opts.KeyString(key)); err != nil {
		c.storeError("delete", key, err)
	}
}

// Entry reports the state of key.
func (c *Cache[K, V]) Entry(key K) Entry[V] {
	e := c.lock(key)
	defer c.mu.Unlock()
	return Entry[V]{
		Value:     e.value,
		HasValue:  e.hasValue,
		Status:    e.status,
		Persisted: e.persisted,
		Stale:     e.hasValue && c.isStale(e),
		Err:       e.err,
		FetchedAt: e.fetchedAt,
	}
}

// Status reports the fetch status of key.
func (c *Cache[K, V]) Status(key K) Status {
	return c.Entry(key).Status
}

// Len returns the number of keys known in memory.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close cancels in-flight fetches and waits for scheduled ones to finish.
func (c *Cache[K, V]) Close() {
	c.cancel()
	c.wg.Wait()
}

// --- Private helpers ---

// lock acquires c.mu and returns the entry for key, restoring a persisted
// value on first access. The store is read before c.mu is taken; if another
// caller created the entry meanwhile, theirs wins.
func (c *Cache[K, V]) lock(key K) *entry[V] {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		return e
	}
	c.mu.Unlock()

	restored, ok := c.restore(key)

	c.mu.Lock()
	if e, exists := c.entries[key]; exists {
		return e
	}
	e := &entry[V]{}
	if ok {
		e.value, e.hasValue = restored.Value, true
		e.status = StatusPresent
		e.persisted = true
		e.fetchedAt = restored.FetchedAt
	}
	c.entries[key] = e
	metrics.CacheEntries.WithLabelValues(c.opts.Name).Set(float64(len(c.entries)))
	return e
}

// restore reads the persisted value for key. Store read failures and
// undecodable entries are treated as a miss.
func (c *Cache[K, V]) restore(key K) (envelope[V], bool) {
	var env envelope[V]
	if c.opts.Store == nil {
		return env, false
	}

	data, ok, err := c.opts.Store.Get(c.opts.Namespace, c.opts.KeyString(key))
	if err != nil {
		c.storeError("read", key, err)
		return env, false
	}
	if !ok {
		return env, false
	}
	if err := json.Unmarshal(data, &env); err != nil {
		c.storeError("read", key, fmt.Errorf("%w: %v", domain.ErrCorruptEntry, err))
		return env, false
	}
	return env, true
}

func (c *Cache[K, V]) needsFetchLocked(e *entry[V]) bool {
	switch e.status {
	case StatusAbsent:
		return true
	case StatusPresent:
		return c.isStale(e)
	case StatusFailed:
		return c.opts.RetryAfter > 0 && c.opts.Now().Sub(e.attemptAt) >= c.opts.RetryAfter
	default:
		return false
	}
}

func (c *Cache[K, V]) isStale(e *entry[V]) bool {
	if c.opts.FreshFor <= 0 || !e.hasValue {
		return false
	}
	return c.opts.Now().Sub(e.fetchedAt) > c.opts.FreshFor
}

func (c *Cache[K, V]) scheduleLocked(key K, e *entry[V]) {
	e.status = StatusFetching
	gen := e.gen

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		// The fetch itself is bound to c.ctx; waiting here lets Close
		// observe its completion.
		_, _ = c.wait(context.Background(), key, gen)
	}()
}

func (c *Cache[K, V]) flightKey(key K, gen uint64) string {
	return c.opts.KeyString(key) + "#" + strconv.FormatUint(gen, 10)
}

func (c *Cache[K, V]) wait(ctx context.Context, key K, gen uint64) (V, error) {
	ch := c.group.DoChan(c.flightKey(key, gen), func() (any, error) {
		return c.fetch(key, gen)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		return res.Val.(V), nil
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// fetch runs inside the singleflight group: one execution per (key, generation).
func (c *Cache[K, V]) fetch(key K, gen uint64) (V, error) {
	c.mu.Lock()
	e := c.entries[key]
	if e != nil && e.gen == gen && e.status == StatusPresent && !c.isStale(e) {
		// An earlier flight for this generation already finished
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	if e != nil && e.gen == gen {
		e.attemptAt = c.opts.Now()
	}
	c.mu.Unlock()

	ks := c.opts.KeyString(key)
	if c.opts.Tracker != nil {
		tok := c.opts.Tracker.Begin(c.opts.Name + ": " + ks)
		defer tok.End()
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.opts.Timeout)
	defer cancel()

	c.count("fetch")
	v, err := c.opts.Fetch(ctx, key)
	if err != nil {
		c.count("fetch_failed")
		c.logger.Warn("fetch failed", "key", ks, "error", err)
	}
	return c.apply(key, gen, v, err)
}

// apply publishes a completed fetch. Successful values are written to the
// store before the entry becomes present.
func (c *Cache[K, V]) apply(key K, gen uint64, v V, fetchErr error) (V, error) {
	var zero V

	c.mu.Lock()
	e := c.entries[key]
	if e == nil || e.gen != gen {
		c.mu.Unlock()
		return zero, c.superseded(key)
	}
	if fetchErr != nil {
		// Keep whatever value we had
		e.status = StatusFailed
		e.err = fetchErr
		c.mu.Unlock()
		c.notify(key, fetchErr)
		return zero, fetchErr
	}
	c.mu.Unlock()

	if !c.publish(key, gen, v) {
		return zero, c.superseded(key)
	}
	c.notify(key, nil)
	return v, nil
}

// publish persists v and then makes it the value of key, unless key moved
// past gen in the meantime. It reports whether v was published.
func (c *Cache[K, V]) publish(key K, gen uint64, v V) bool {
	c.ioMu.Lock()
	defer c.ioMu.Unlock()

	c.mu.Lock()
	e := c.entries[key]
	if e == nil || e.gen != gen {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	now := c.opts.Now()
	persisted := c.persist(key, v, now)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e.gen != gen {
		// Invalidated during the write; its delete runs after us
		return false
	}
	e.persisted = persisted
	e.value, e.hasValue = v, true
	e.status = StatusPresent
	e.err = nil
	e.fetchedAt = now
	return true
}

func (c *Cache[K, V]) superseded(key K) error {
	c.count("discarded")
	c.logger.Debug("discarding superseded fetch", "key", c.opts.KeyString(key))
	return ErrSuperseded
}

// persist writes the value; failures are logged and the in-memory update
// goes ahead regardless.
func (c *Cache[K, V]) persist(key K, v V, fetchedAt time.Time) bool {
	if c.opts.Store == nil {
		return false
	}
	data, err := json.Marshal(envelope[V]{Value: v, FetchedAt: fetchedAt})
	if err != nil {
		c.storeError("write", key, err)
		return false
	}
	if err := c.opts.Store.Put(c.opts.Namespace, c.opts.KeyString(key), data); err != nil {
		c.storeError("write", key, err)
		return false
	}
	return true
}

func (c *Cache[K, V]) notify(key K, err error) {
	if c.opts.OnUpdated != nil {
		c.opts.OnUpdated(key, err)
	}
}

func (c *Cache[K, V]) storeError(op string, key K, err error) {
	metrics.CacheStoreErrors.WithLabelValues(c.opts.Name, op).Inc()
	c.logger.Error("store "+op+" failed", "key", c.opts.KeyString(key), "error", err)
}

func (c *Cache[K, V]) count(op string) {
	metrics.CacheOps.WithLabelValues(c.opts.Name, op).Inc()
}
