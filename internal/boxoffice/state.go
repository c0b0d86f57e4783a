package boxoffice

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/mmcdole/boxoffice/internal/domain"
	"github.com/mmcdole/boxoffice/internal/metrics"
)

// loadState restores each persisted key on top of the defaults. Unreadable
// keys keep their default.
func (m *Model) loadState() domain.ModelState {
	s := domain.DefaultModelState()

	m.readState(domain.KeyDataProviderIndex, &s.DataProviderIndex)
	m.readState(domain.KeyRatingsProviderIndex, &s.RatingsProviderIndex)
	m.readState(domain.KeySelectedTab, &s.SelectedTab)
	m.readState(domain.KeyAllMoviesSegment, &s.AllMoviesSegment)
	m.readState(domain.KeyAllTheatersSegment, &s.AllTheatersSegment)
	m.readState(domain.KeyPostalCode, &s.PostalCode)
	m.readState(domain.KeySearchRadius, &s.SearchRadius)
	m.readState(domain.KeySearchDate, &s.SearchDate)
	m.readState(domain.KeySelectedMovie, &s.SelectedMovieID)
	m.readState(domain.KeySelectedTheater, &s.SelectedTheaterID)
	m.readState(domain.KeyShowingReviews, &s.CurrentlyShowingReviews)
	m.readState(domain.KeyFavoriteTheaters, &s.FavoriteTheaters)
	m.readState(domain.KeyAutoUpdateLocation, &s.AutoUpdateLocation)
	m.readState(domain.KeySearchDates, &s.SearchDates)

	var normalFonts bool
	if m.readState(domain.KeyUseNormalFonts, &normalFonts) {
		s.UseSmallFonts = !normalFonts
	}
	if s.SearchDates == nil {
		s.SearchDates = make(map[string]time.Time)
	}
	return s
}

// clampStateLocked repairs persisted indices that no longer fit the
// configured providers.
func (m *Model) clampStateLocked() {
	s := &m.state
	if s.DataProviderIndex < 0 || s.DataProviderIndex >= len(m.opts.Providers) {
		s.DataProviderIndex = 0
	}
	if s.RatingsProviderIndex < 0 || s.RatingsProviderIndex > len(m.opts.Ratings) {
		s.RatingsProviderIndex = 0
	}
	if s.SearchRadius <= 0 {
		s.SearchRadius = domain.DefaultSearchRadius
	}
	if s.AllMoviesSegment < 0 || s.AllMoviesSegment > int(maxMovieSegment) {
		s.AllMoviesSegment = 0
	}
	if s.AllTheatersSegment < 0 || s.AllTheatersSegment > int(maxTheaterSegment) {
		s.AllTheatersSegment = 0
	}
}

func (m *Model) readState(key string, dst any) bool {
	if m.store == nil {
		return false
	}
	data, ok, err := m.store.Get(domain.StateNamespace, key)
	if err != nil {
		m.stateError("read", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		m.stateError("read", key, fmt.Errorf("%w: %v", domain.ErrCorruptEntry, err))
		return false
	}
	return true
}

// writeState persists one key. Failures are logged; the in-memory state
// has already changed and stays changed.
func (m *Model) writeState(key string, v any) {
	if m.store == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		m.stateError("write", key, err)
		return
	}
	if err := m.store.Put(domain.StateNamespace, key, data); err != nil {
		m.stateError("write", key, err)
	}
}

func (m *Model) stateError(op, key string, err error) {
	metrics.CacheStoreErrors.WithLabelValues(domain.StateNamespace, op).Inc()
	m.logger.Error("state "+op+" failed", "key", key, "error", err)
}

// State returns a copy of the persisted user state.
func (m *Model) State() domain.ModelState {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state
	s.FavoriteTheaters = append([]domain.FavoriteTheater(nil), m.state.FavoriteTheaters...)
	s.SearchDates = maps.Clone(m.state.SearchDates)
	return s
}

// SearchDates reports when each search key was last fetched.
func (m *Model) SearchDates() map[string]time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.state.SearchDates)
}
