package boxoffice

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmcdole/boxoffice/internal/cache"
	"github.com/mmcdole/boxoffice/internal/domain"
	"github.com/mmcdole/boxoffice/internal/listings"
	"github.com/mmcdole/boxoffice/internal/metrics"
)

// snapshot is an immutable view of one search result. Readers load it
// through an atomic pointer, so a rebuild is never seen half done.
type snapshot struct {
	epoch     uint64
	key       domain.SearchKey
	result    domain.SearchResult
	index     *listings.Index
	hasResult bool
}

func emptySnapshot(epoch uint64) *snapshot {
	return &snapshot{epoch: epoch, index: listings.Empty()}
}

func (m *Model) current() *snapshot {
	return m.snap.Load()
}

// Epoch increments every time the provider or the search parameters change.
func (m *Model) Epoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// SearchKey returns the key of the current search.
func (m *Model) SearchKey() domain.SearchKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchKeyLocked()
}

func (m *Model) searchKeyLocked() domain.SearchKey {
	return domain.NewSearchKey(m.state.PostalCode, m.searchDateLocked())
}

// HasListings reports whether a search result is installed.
func (m *Model) HasListings() bool {
	return m.current().hasResult
}

// Listings returns the installed search result.
func (m *Model) Listings() (domain.SearchResult, bool) {
	s := m.current()
	return s.result, s.hasResult
}

// Update installs the cached result for the current search and schedules a
// background fetch when it is missing or stale. It never blocks.
func (m *Model) Update() {
	m.mu.Lock()
	key := m.searchKeyLocked()
	provider := m.currentProviderLocked().Name()
	m.mu.Unlock()

	if key.PostalCode == "" {
		m.logger.Debug("no postal code, skipping listings update")
		return
	}

	if res, ok := m.search.Peek(key); ok && res.Provider != provider {
		// Persisted under another backend
		m.search.Invalidate(key)
	}

	res, ok := m.search.Get(key)
	if !ok || res.Provider != provider {
		return
	}
	m.install(key, res, false)
}

// Sync brings the current search up to date and installs it, waiting for
// the network only when the stored result is missing, stale or from another
// provider.
func (m *Model) Sync(ctx context.Context) error {
	key := m.SearchKey()
	if key.PostalCode == "" {
		return fmt.Errorf("%w: no postal code", domain.ErrLocationNotFound)
	}

	res, err := m.search.Load(ctx, key)
	if err == nil && res.Provider != m.CurrentDataProvider().Name() {
		res, err = m.search.Reload(ctx, key)
	}
	if errors.Is(err, cache.ErrSuperseded) {
		return nil
	}
	if err != nil {
		return err
	}
	m.install(key, res, false)
	return nil
}

// Refresh refetches the current search, waiting for the result. The
// installed snapshot stays visible until the new result replaces it.
func (m *Model) Refresh(ctx context.Context) error {
	key := m.SearchKey()
	if key.PostalCode == "" {
		return fmt.Errorf("%w: no postal code", domain.ErrLocationNotFound)
	}
	_, err := m.search.Reload(ctx, key)
	if errors.Is(err, cache.ErrSuperseded) {
		return nil
	}
	return err
}

// restoreSnapshot installs a persisted result for the current search
// without scheduling any fetch.
func (m *Model) restoreSnapshot() {
	m.mu.Lock()
	key := m.searchKeyLocked()
	m.mu.Unlock()
	if key.PostalCode == "" {
		return
	}
	if res, ok := m.search.Peek(key); ok {
		if m.install(key, res, false) {
			m.logger.Debug("restored persisted listings", "key", key.String())
		}
	}
}

// onSearchUpdated runs when the search cache finishes a fetch.
func (m *Model) onSearchUpdated(key domain.SearchKey, err error) {
	if err != nil {
		if key == m.SearchKey() {
			m.logger.Warn("listings fetch failed", "key", key.String(), "error", err)
			metrics.SnapshotSwaps.WithLabelValues("failed").Inc()
			m.bus.Post(domain.EventProviderFailed)
		}
		return
	}
	res, ok := m.search.Peek(key)
	if !ok {
		return
	}
	m.install(key, res, true)
	m.bus.Post(domain.EventSearchUpdated)
}

// install swaps in a new snapshot when res still answers the current search
// under the current provider. Unless fresh is set, reinstalling the result
// that is already visible is skipped. It reports whether the snapshot changed.
func (m *Model) install(key domain.SearchKey, res domain.SearchResult, fresh bool) bool {
	m.mu.Lock()
	if key != m.searchKeyLocked() || res.Provider != m.currentProviderLocked().Name() {
		m.mu.Unlock()
		metrics.SnapshotSwaps.WithLabelValues("discarded").Inc()
		m.logger.Debug("discarding listings for superseded search",
			"key", key.String(), "provider", res.Provider)
		return false
	}

	cur := m.current()
	if !fresh && cur.hasResult && cur.key == key && cur.epoch == m.epoch &&
		cur.result.Provider == res.Provider && cur.result.FetchedAt.Equal(res.FetchedAt) {
		m.mu.Unlock()
		return false
	}

	next := &snapshot{
		epoch:     m.epoch,
		key:       key,
		result:    res,
		index:     listings.Build(res),
		hasResult: true,
	}
	m.snap.Store(next)
	m.state.SearchDates[key.String()] = res.FetchedAt
	m.writeState(domain.KeySearchDates, m.state.SearchDates)
	m.mu.Unlock()

	metrics.SnapshotSwaps.WithLabelValues("installed").Inc()
	m.logger.Info("installed listings",
		"key", key.String(),
		"provider", res.Provider,
		"movies", len(res.Movies),
		"theaters", len(res.Theaters))
	m.bus.Post(domain.EventProviderUpdated)
	return true
}

// fetchListings is the search cache's fetcher. The provider is read when the
// fetch starts and stamped on the result.
func (m *Model) fetchListings(ctx context.Context, key domain.SearchKey) (domain.SearchResult, error) {
	provider := m.CurrentDataProvider()

	loc, err := m.locations.Load(ctx, normalizeAddress(key.PostalCode))
	if err != nil {
		m.logger.Warn("could not locate postal code, searching by code only",
			"postal_code", key.PostalCode, "error", err)
		loc = domain.Location{PostalCode: key.PostalCode}
	}

	l, err := provider.FetchListings(ctx, loc, key.Date)
	if err != nil {
		return domain.SearchResult{}, err
	}

	return domain.SearchResult{
		Provider:     provider.Name(),
		PostalCode:   key.PostalCode,
		Date:         key.Date,
		Location:     loc,
		Movies:       l.Movies,
		Theaters:     l.Theaters,
		Performances: l.Performances,
		FetchedAt:    m.now(),
	}, nil
}

// Movies returns the movies of the current snapshot in provider order.
func (m *Model) Movies() []domain.Movie {
	return m.current().index.Movies()
}

// Theaters returns the theaters of the current snapshot in provider order.
func (m *Model) Theaters() []domain.Theater {
	return m.current().index.Theaters()
}

func (m *Model) Movie(id string) (domain.Movie, bool) {
	return m.current().index.Movie(id)
}

func (m *Model) Theater(id string) (domain.Theater, bool) {
	return m.current().index.Theater(id)
}

func (m *Model) TheatersShowingMovie(movieID string) []domain.Theater {
	return m.current().index.TheatersShowingMovie(movieID)
}

func (m *Model) MoviesAtTheater(theaterID string) []domain.Movie {
	return m.current().index.MoviesAtTheater(theaterID)
}

// MoviePerformances returns the showtimes of a movie at a theater.
func (m *Model) MoviePerformances(movieID, theaterID string) []domain.Performance {
	return m.current().index.Performances(movieID, theaterID)
}

// UserLocation returns the location searches are centered on: the one the
// current result was fetched for, otherwise the geocoded postal code.
func (m *Model) UserLocation() (domain.Location, bool) {
	if s := m.current(); s.hasResult && s.result.Location.HasCoordinates() {
		return s.result.Location, true
	}
	postal := m.PostalCode()
	if postal == "" {
		return domain.Location{}, false
	}
	loc, ok := m.LocationForPostalCode(postal)
	return loc, ok && loc.HasCoordinates()
}

// TheaterDistanceMap maps theater ids to their distance from the user.
// Theaters the provider did not place are geocoded by address in the
// background; until then, and whenever the user location is unknown, they
// report domain.UnknownDistance.
func (m *Model) TheaterDistanceMap() map[string]float64 {
	index := m.current().index
	user, ok := m.UserLocation()
	if !ok {
		return index.DistanceMap(domain.Location{}, nil)
	}
	return index.DistanceMap(user, m.theaterLocation)
}

func (m *Model) theaterLocation(t domain.Theater) domain.Location {
	if t.Location.HasCoordinates() || t.Address == "" {
		return t.Location
	}
	loc, _ := m.LocationForAddress(t.Address)
	return loc
}

// TheatersInRange keeps the theaters within the search radius.
func (m *Model) TheatersInRange(theaters []domain.Theater) []domain.Theater {
	return listings.InRange(theaters, m.TheaterDistanceMap(), float64(m.SearchRadius()))
}

// SortedMovies orders the snapshot's movies by the all-movies segment.
func (m *Model) SortedMovies() []domain.Movie {
	return m.SortMovies(m.Movies(), m.MovieOrder())
}

// SortMovies orders movies, scoring them with ScoreForMovie.
func (m *Model) SortMovies(movies []domain.Movie, order listings.MovieOrder) []domain.Movie {
	return listings.SortMovies(movies, order, func(mv domain.Movie) int {
		return m.scoreFor(mv)
	})
}

// SortedTheaters orders the snapshot's theaters by the all-theaters segment.
func (m *Model) SortedTheaters() []domain.Theater {
	return m.SortTheaters(m.Theaters(), m.TheaterOrder())
}

func (m *Model) SortTheaters(theaters []domain.Theater, order listings.TheaterOrder) []domain.Theater {
	var distances map[string]float64
	if order == listings.ByDistance {
		distances = m.TheaterDistanceMap()
	}
	return listings.SortTheaters(theaters, order, distances)
}
