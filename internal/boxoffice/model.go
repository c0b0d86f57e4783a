// Package boxoffice is the coordinator between the presentation layer and
// the showtime data: it owns the listings snapshot, the artifact caches, the
// background task tracker, the persisted user state and the event bus.
//
// Every query method answers from memory without blocking. Anything missing
// is fetched in the background and announced on the bus when it arrives.
package boxoffice

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mmcdole/boxoffice/internal/cache"
	"github.com/mmcdole/boxoffice/internal/domain"
	"github.com/mmcdole/boxoffice/internal/notify"
	"github.com/mmcdole/boxoffice/internal/tasks"
)

// version is overridden at link time.
var version = "1.4.0"

// Version returns the engine version.
func Version() string { return version }

const (
	defaultSearchFreshness  = 6 * time.Hour
	defaultRetryAfter       = 5 * time.Minute
	defaultSearchRetryAfter = 30 * time.Second
)

// Options wires the model to its collaborators.
type Options struct {
	// Providers is the closed list of listings backends, in index order.
	// At least one is required.
	Providers []domain.ListingsProvider

	// Ratings lists the external ratings vendors in index order. A final
	// "None" choice is always appended.
	Ratings []domain.RatingsSource

	Geocoder domain.Geocoder      // nil: locations are never resolved
	Artwork  domain.ArtworkSource // nil: posters, trailers and reviews stay empty
	Store    domain.KVStore       // nil: nothing survives a restart
	Bus      *notify.Bus          // nil: a private bus is created
	Logger   *slog.Logger

	SearchFreshness  time.Duration // How long a search result counts as current
	RetryAfter       time.Duration // Back-off before a failed artifact is retried
	SearchRetryAfter time.Duration // Back-off before a failed listings fetch is retried
	FetchTimeout     time.Duration

	Now func() time.Time
}

// Model is the coordinator. It is safe for concurrent use.
type Model struct {
	opts   Options
	logger *slog.Logger
	store  domain.KVStore
	bus    *notify.Bus
	tasks  *tasks.Tracker

	posters   *cache.Cache[string, domain.Poster]
	trailers  *cache.Cache[string, []domain.Trailer]
	reviews   *cache.Cache[string, []domain.Review]
	ratings   *cache.Cache[ratingKey, domain.Rating]
	locations *cache.Cache[string, domain.Location]
	search    *cache.Cache[domain.SearchKey, domain.SearchResult]

	// mu serializes every mutation of state and epoch
	mu    sync.Mutex
	state domain.ModelState
	epoch uint64

	snap atomic.Pointer[snapshot]
}

// ratingKey scopes a cached rating to the vendor that produced it, so
// switching vendors never discards what was already fetched.
type ratingKey struct {
	Source  string
	MovieID string
}

func (k ratingKey) String() string { return k.Source + "/" + k.MovieID }

// New builds a model, restores persisted state and installs the last
// persisted search result for the current search, if any. It never touches
// the network; call Update to start fetching.
func New(opts Options) (*Model, error) {
	if len(opts.Providers) == 0 {
		return nil, fmt.Errorf("boxoffice: at least one listings provider is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SearchFreshness <= 0 {
		opts.SearchFreshness = defaultSearchFreshness
	}
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = defaultRetryAfter
	}
	if opts.SearchRetryAfter <= 0 {
		opts.SearchRetryAfter = defaultSearchRetryAfter
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bus := opts.Bus
	if bus == nil {
		bus = notify.NewBus()
	}

	m := &Model{
		opts:   opts,
		logger: logger,
		store:  opts.Store,
		bus:    bus,
	}
	m.tasks = tasks.NewTracker(func(int) { m.bus.Post(domain.EventBusyChanged) })
	m.state = m.loadState()
	m.clampStateLocked()
	m.snap.Store(emptySnapshot(0))
	m.buildCaches()

	m.restoreSnapshot()
	return m, nil
}

func (m *Model) buildCaches() {
	m.posters = cache.New(cache.Options[string, domain.Poster]{
		Name:       "poster",
		Namespace:  domain.PosterNamespace,
		Store:      m.store,
		Tracker:    m.tasks,
		Logger:     m.logger,
		Fetch:      m.fetchPoster,
		KeyString:  identity,
		RetryAfter: m.opts.RetryAfter,
		Timeout:    m.opts.FetchTimeout,
		Now:        m.opts.Now,
		OnUpdated:  func(string, error) { m.bus.Post(domain.EventPosterUpdated) },
	})
	m.trailers = cache.New(cache.Options[string, []domain.Trailer]{
		Name:       "trailer",
		Namespace:  domain.TrailerNamespace,
		Store:      m.store,
		Tracker:    m.tasks,
		Logger:     m.logger,
		Fetch:      m.fetchTrailers,
		KeyString:  identity,
		RetryAfter: m.opts.RetryAfter,
		Timeout:    m.opts.FetchTimeout,
		Now:        m.opts.Now,
		OnUpdated:  func(string, error) { m.bus.Post(domain.EventTrailerUpdated) },
	})
	m.reviews = cache.New(cache.Options[string, []domain.Review]{
		Name:       "review",
		Namespace:  domain.ReviewNamespace,
		Store:      m.store,
		Tracker:    m.tasks,
		Logger:     m.logger,
		Fetch:      m.fetchReviews,
		KeyString:  identity,
		RetryAfter: m.opts.RetryAfter,
		Timeout:    m.opts.FetchTimeout,
		Now:        m.opts.Now,
		OnUpdated:  func(string, error) { m.bus.Post(domain.EventReviewUpdated) },
	})
	m.ratings = cache.New(cache.Options[ratingKey, domain.Rating]{
		Name:       "rating",
		Namespace:  domain.RatingNamespace,
		Store:      m.store,
		Tracker:    m.tasks,
		Logger:     m.logger,
		Fetch:      m.fetchRating,
		KeyString:  ratingKey.String,
		RetryAfter: m.opts.RetryAfter,
		Timeout:    m.opts.FetchTimeout,
		Now:        m.opts.Now,
		OnUpdated:  func(ratingKey, error) { m.bus.Post(domain.EventRatingUpdated) },
	})
	m.locations = cache.New(cache.Options[string, domain.Location]{
		Name:       "location",
		Namespace:  domain.AddressLocationNamespace,
		Store:      m.store,
		Tracker:    m.tasks,
		Logger:     m.logger,
		Fetch:      m.geocode,
		KeyString:  identity,
		RetryAfter: m.opts.RetryAfter,
		Timeout:    m.opts.FetchTimeout,
		Now:        m.opts.Now,
		OnUpdated:  func(string, error) { m.bus.Post(domain.EventLocationUpdated) },
	})
	m.search = cache.New(cache.Options[domain.SearchKey, domain.SearchResult]{
		Name:       "search",
		Namespace:  domain.SearchNamespace,
		Store:      m.store,
		Tracker:    m.tasks,
		Logger:     m.logger,
		Fetch:      m.fetchListings,
		KeyString:  domain.SearchKey.String,
		FreshFor:   m.opts.SearchFreshness,
		RetryAfter: m.opts.SearchRetryAfter,
		Timeout:    m.opts.FetchTimeout,
		Now:        m.opts.Now,
		OnUpdated:  m.onSearchUpdated,
	})
}

// Bus returns the event bus views subscribe to.
func (m *Model) Bus() *notify.Bus { return m.bus }

// Version returns the engine version.
func (m *Model) Version() string { return Version() }

// BackgroundTaskCount returns the number of fetches in flight.
func (m *Model) BackgroundTaskCount() int { return m.tasks.Count() }

// IsBusy reports whether any background work is running.
func (m *Model) IsBusy() bool { return !m.tasks.IsIdle() }

// BackgroundTasks describes the fetches in flight.
func (m *Model) BackgroundTasks() []string { return m.tasks.Descriptions() }

// Close stops background fetches and waits for them. The store is owned by
// the caller and stays open.
func (m *Model) Close() {
	m.search.Close()
	m.posters.Close()
	m.trailers.Close()
	m.reviews.Close()
	m.ratings.Close()
	m.locations.Close()
}

func (m *Model) now() time.Time { return m.opts.Now() }

func identity(s string) string { return s }

// normalizeAddress folds whitespace and case so equivalent spellings of an
// address share one cache entry.
func normalizeAddress(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
