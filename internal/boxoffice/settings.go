package boxoffice

import (
	"strings"
	"time"

	"github.com/mmcdole/boxoffice/internal/domain"
	"github.com/mmcdole/boxoffice/internal/listings"
)

const (
	maxMovieSegment   = listings.ByScore
	maxTheaterSegment = listings.ByDistance
)

func (m *Model) SelectedTab() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.SelectedTab
}

func (m *Model) SetSelectedTab(i int) {
	m.setInt(&m.state.SelectedTab, domain.KeySelectedTab, i)
}

// AllMoviesSegment is the persisted movie ordering (0 title, 1 release
// date, 2 score).
func (m *Model) AllMoviesSegment() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.AllMoviesSegment
}

func (m *Model) SetAllMoviesSegment(i int) {
	if i < 0 || i > int(maxMovieSegment) {
		i = 0
	}
	m.setInt(&m.state.AllMoviesSegment, domain.KeyAllMoviesSegment, i)
}

// AllTheatersSegment is the persisted theater ordering (0 name, 1 distance).
func (m *Model) AllTheatersSegment() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.AllTheatersSegment
}

func (m *Model) SetAllTheatersSegment(i int) {
	if i < 0 || i > int(maxTheaterSegment) {
		i = 0
	}
	m.setInt(&m.state.AllTheatersSegment, domain.KeyAllTheatersSegment, i)
}

func (m *Model) MovieOrder() listings.MovieOrder {
	return listings.MovieOrder(m.AllMoviesSegment())
}

func (m *Model) TheaterOrder() listings.TheaterOrder {
	return listings.TheaterOrder(m.AllTheatersSegment())
}

func (m *Model) SortingMoviesByTitle() bool       { return m.MovieOrder() == listings.ByTitle }
func (m *Model) SortingMoviesByScore() bool       { return m.MovieOrder() == listings.ByScore }
func (m *Model) SortingMoviesByReleaseDate() bool { return m.MovieOrder() == listings.ByReleaseDate }

func (m *Model) UseSmallFonts() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.UseSmallFonts
}

func (m *Model) SetUseSmallFonts(v bool) {
	m.mu.Lock()
	m.state.UseSmallFonts = v
	m.writeState(domain.KeyUseNormalFonts, !v)
	m.mu.Unlock()
	m.bus.Post(domain.EventSettingsChanged)
}

func (m *Model) AutoUpdateLocation() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.AutoUpdateLocation
}

func (m *Model) SetAutoUpdateLocation(v bool) {
	m.mu.Lock()
	m.state.AutoUpdateLocation = v
	m.writeState(domain.KeyAutoUpdateLocation, v)
	m.mu.Unlock()
	m.bus.Post(domain.EventSettingsChanged)
}

func (m *Model) PostalCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.PostalCode
}

// SetPostalCode changes the search location and starts a new search.
func (m *Model) SetPostalCode(postalCode string) {
	postalCode = strings.ToUpper(strings.TrimSpace(postalCode))

	m.mu.Lock()
	if postalCode == m.state.PostalCode {
		m.mu.Unlock()
		return
	}
	m.state.PostalCode = postalCode
	m.writeState(domain.KeyPostalCode, postalCode)
	m.epoch++
	m.mu.Unlock()

	m.bus.Post(domain.EventSettingsChanged)
	m.Update()
}

// SearchRadius is in miles.
func (m *Model) SearchRadius() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.SearchRadius
}

// SetSearchRadius only affects distance-filtered views; the snapshot is kept.
func (m *Model) SetSearchRadius(miles int) {
	if miles <= 0 {
		miles = domain.DefaultSearchRadius
	}
	m.setInt(&m.state.SearchRadius, domain.KeySearchRadius, miles)
}

// SearchDate returns the day being searched. Dates in the past, and an
// unset date, mean today.
func (m *Model) SearchDate() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchDateLocked()
}

func (m *Model) searchDateLocked() time.Time {
	today := truncateDay(m.now())
	d := m.state.SearchDate
	if d.IsZero() || truncateDay(d).Before(today) {
		return today
	}
	return truncateDay(d)
}

// SetSearchDate changes the searched day and starts a new search.
func (m *Model) SetSearchDate(date time.Time) {
	m.mu.Lock()
	before := m.searchDateLocked()
	m.state.SearchDate = truncateDay(date)
	m.writeState(domain.KeySearchDate, m.state.SearchDate)
	changed := !m.searchDateLocked().Equal(before)
	if changed {
		m.epoch++
	}
	m.mu.Unlock()

	m.bus.Post(domain.EventSettingsChanged)
	if changed {
		m.Update()
	}
}

func (m *Model) setInt(field *int, key string, v int) {
	m.mu.Lock()
	if *field == v {
		m.mu.Unlock()
		return
	}
	*field = v
	m.writeState(key, v)
	m.mu.Unlock()
	m.bus.Post(domain.EventSettingsChanged)
}

func truncateDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
