package boxoffice

import (
	"slices"

	"github.com/mmcdole/boxoffice/internal/domain"
)

// FavoriteTheaters returns the favorites in the order they were added.
func (m *Model) FavoriteTheaters() []domain.FavoriteTheater {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.state.FavoriteTheaters)
}

func (m *Model) IsFavoriteTheater(theaterID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.favoriteIndexLocked(theaterID) >= 0
}

// AddFavoriteTheater adds t. Adding a favorite twice is a no-op.
func (m *Model) AddFavoriteTheater(t domain.Theater) {
	m.mu.Lock()
	if m.favoriteIndexLocked(t.ID) >= 0 {
		m.mu.Unlock()
		return
	}
	m.state.FavoriteTheaters = append(m.state.FavoriteTheaters, domain.FavoriteTheater{
		ID:         t.ID,
		Name:       t.Name,
		PostalCode: m.state.PostalCode,
	})
	m.writeState(domain.KeyFavoriteTheaters, m.state.FavoriteTheaters)
	m.mu.Unlock()

	m.bus.Post(domain.EventFavoritesChanged)
}

// RemoveFavoriteTheater removes a favorite. Removing a non-favorite is a no-op.
func (m *Model) RemoveFavoriteTheater(theaterID string) {
	m.mu.Lock()
	i := m.favoriteIndexLocked(theaterID)
	if i < 0 {
		m.mu.Unlock()
		return
	}
	m.state.FavoriteTheaters = slices.Delete(slices.Clone(m.state.FavoriteTheaters), i, i+1)
	m.writeState(domain.KeyFavoriteTheaters, m.state.FavoriteTheaters)
	m.mu.Unlock()

	m.bus.Post(domain.EventFavoritesChanged)
}

// FavoriteTheatersShowing returns the favorites present in the current
// snapshot, in favorite order.
func (m *Model) FavoriteTheatersShowing() []domain.Theater {
	idx := m.current().index
	var out []domain.Theater
	for _, f := range m.FavoriteTheaters() {
		if t, ok := idx.Theater(f.ID); ok {
			out = append(out, t)
		}
	}
	return out
}

func (m *Model) favoriteIndexLocked(theaterID string) int {
	return slices.IndexFunc(m.state.FavoriteTheaters, func(f domain.FavoriteTheater) bool {
		return f.ID == theaterID
	})
}
