package boxoffice

import (
	"fmt"

	"github.com/mmcdole/boxoffice/internal/domain"
)

// CurrentlySelectedMovie resolves the selected movie against the current
// snapshot.
func (m *Model) CurrentlySelectedMovie() (domain.Movie, bool) {
	m.mu.Lock()
	id := m.state.SelectedMovieID
	m.mu.Unlock()
	if id == "" {
		return domain.Movie{}, false
	}
	return m.current().index.Movie(id)
}

// CurrentlySelectedTheater resolves the selected theater against the
// current snapshot.
func (m *Model) CurrentlySelectedTheater() (domain.Theater, bool) {
	m.mu.Lock()
	id := m.state.SelectedTheaterID
	m.mu.Unlock()
	if id == "" {
		return domain.Theater{}, false
	}
	return m.current().index.Theater(id)
}

// SetCurrentSelection sets the movie and theater together. Either id may be
// empty. Ids missing from an installed snapshot leave the selection
// unchanged and return ErrInvalidSelection. Changing the selection leaves
// reviews mode.
func (m *Model) SetCurrentSelection(movieID, theaterID string) error {
	if s := m.current(); s.hasResult {
		if movieID != "" {
			if _, ok := s.index.Movie(movieID); !ok {
				return fmt.Errorf("%w: movie %q", domain.ErrInvalidSelection, movieID)
			}
		}
		if theaterID != "" {
			if _, ok := s.index.Theater(theaterID); !ok {
				return fmt.Errorf("%w: theater %q", domain.ErrInvalidSelection, theaterID)
			}
		}
	}

	m.mu.Lock()
	m.state.SelectedMovieID = movieID
	m.state.SelectedTheaterID = theaterID
	m.state.CurrentlyShowingReviews = false
	m.writeState(domain.KeySelectedMovie, movieID)
	m.writeState(domain.KeySelectedTheater, theaterID)
	m.writeState(domain.KeyShowingReviews, false)
	m.mu.Unlock()

	m.bus.Post(domain.EventSelectionChanged)
	return nil
}

func (m *Model) CurrentlyShowingReviews() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.CurrentlyShowingReviews
}

// SetCurrentlyShowingReviews switches the movie detail into reviews mode
// until the selection changes.
func (m *Model) SetCurrentlyShowingReviews() {
	m.mu.Lock()
	m.state.CurrentlyShowingReviews = true
	m.writeState(domain.KeyShowingReviews, true)
	m.mu.Unlock()

	m.bus.Post(domain.EventSelectionChanged)
}
