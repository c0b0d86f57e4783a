package boxoffice

import (
	"fmt"

	"github.com/mmcdole/boxoffice/internal/domain"
)

// DataProviders returns the listings backends in index order.
func (m *Model) DataProviders() []domain.ListingsProvider {
	return append([]domain.ListingsProvider(nil), m.opts.Providers...)
}

// DataProviderIndex returns the index of the current listings backend.
func (m *Model) DataProviderIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.DataProviderIndex
}

// CurrentDataProvider returns the current listings backend.
func (m *Model) CurrentDataProvider() domain.ListingsProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentProviderLocked()
}

func (m *Model) currentProviderLocked() domain.ListingsProvider {
	return m.opts.Providers[m.state.DataProviderIndex]
}

func (m *Model) NorthAmericaDataProvider() bool {
	return m.CurrentDataProvider().Name() == domain.NorthAmerica
}

func (m *Model) UnitedKingdomDataProvider() bool {
	return m.CurrentDataProvider().Name() == domain.UnitedKingdom
}

// SetDataProviderIndex switches listings backends. The current snapshot is
// dropped immediately and a fetch from the new backend is scheduled; fetches
// still running against the old backend are discarded when they finish.
// Artifact caches are untouched.
func (m *Model) SetDataProviderIndex(i int) error {
	m.mu.Lock()
	if i < 0 || i >= len(m.opts.Providers) {
		m.mu.Unlock()
		return fmt.Errorf("%w: data provider %d", domain.ErrInvalidSelection, i)
	}
	if i == m.state.DataProviderIndex {
		m.mu.Unlock()
		return nil
	}

	m.state.DataProviderIndex = i
	m.writeState(domain.KeyDataProviderIndex, i)
	m.epoch++
	epoch := m.epoch
	key := m.searchKeyLocked()
	m.search.Invalidate(key)
	m.snap.Store(emptySnapshot(epoch))
	name := m.currentProviderLocked().Name()
	m.mu.Unlock()

	m.logger.Info("switched data provider", "provider", name, "epoch", epoch)
	m.bus.Post(domain.EventSettingsChanged)
	m.bus.Post(domain.EventProviderUpdated)
	m.Update()
	return nil
}

// RatingsProviders returns the ratings choices in index order; the last is
// always "None".
func (m *Model) RatingsProviders() []string {
	names := make([]string, 0, len(m.opts.Ratings)+1)
	for _, r := range m.opts.Ratings {
		names = append(names, r.Name())
	}
	return append(names, domain.NoRatings)
}

func (m *Model) RatingsProviderIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.RatingsProviderIndex
}

// CurrentRatingsProvider returns the name of the selected ratings source.
func (m *Model) CurrentRatingsProvider() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ratingsNameLocked()
}

func (m *Model) ratingsNameLocked() string {
	if src := m.ratingsSourceLocked(); src != nil {
		return src.Name()
	}
	return domain.NoRatings
}

// ratingsSourceLocked returns nil when ratings are turned off.
func (m *Model) ratingsSourceLocked() domain.RatingsSource {
	i := m.state.RatingsProviderIndex
	if i < 0 || i >= len(m.opts.Ratings) {
		return nil
	}
	return m.opts.Ratings[i]
}

func (m *Model) RottenTomatoesRatings() bool {
	return m.CurrentRatingsProvider() == domain.RottenTomatoes
}

func (m *Model) MetacriticRatings() bool {
	return m.CurrentRatingsProvider() == domain.Metacritic
}

func (m *Model) NoRatings() bool {
	return m.CurrentRatingsProvider() == domain.NoRatings
}

// SetRatingsProviderIndex changes which vendor future rating fetches use.
// Ratings already cached for other vendors are kept.
func (m *Model) SetRatingsProviderIndex(i int) error {
	m.mu.Lock()
	if i < 0 || i > len(m.opts.Ratings) {
		m.mu.Unlock()
		return fmt.Errorf("%w: ratings provider %d", domain.ErrInvalidSelection, i)
	}
	if i == m.state.RatingsProviderIndex {
		m.mu.Unlock()
		return nil
	}
	m.state.RatingsProviderIndex = i
	m.writeState(domain.KeyRatingsProviderIndex, i)
	name := m.ratingsNameLocked()
	m.mu.Unlock()

	m.logger.Info("switched ratings provider", "provider", name)
	m.bus.Post(domain.EventSettingsChanged)
	m.bus.Post(domain.EventRatingsUpdated)
	return nil
}
