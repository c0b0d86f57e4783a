package boxoffice

import (
	"encoding/json"

	"github.com/mmcdole/boxoffice/internal/domain"
)

// MovieDetails returns the detail document stored for a movie.
func (m *Model) MovieDetails(movieID string) (json.RawMessage, bool) {
	return m.readDetails(domain.MovieDetailsNamespace, movieID)
}

// SetMovieDetails stores the detail document for a movie.
func (m *Model) SetMovieDetails(movieID string, doc json.RawMessage) error {
	return m.writeDetails(domain.MovieDetailsNamespace, movieID, doc)
}

// PersonDetails returns the detail document stored for a cast or crew member.
func (m *Model) PersonDetails(personID string) (json.RawMessage, bool) {
	return m.readDetails(domain.PersonDetailsNamespace, personID)
}

// SetPersonDetails stores the detail document for a cast or crew member.
func (m *Model) SetPersonDetails(personID string, doc json.RawMessage) error {
	return m.writeDetails(domain.PersonDetailsNamespace, personID, doc)
}

func (m *Model) readDetails(ns, id string) (json.RawMessage, bool) {
	if m.store == nil || id == "" {
		return nil, false
	}
	data, ok, err := m.store.Get(ns, id)
	if err != nil {
		m.logger.Warn("failed to read details", "namespace", ns, "id", id, "error", err)
		return nil, false
	}
	if !ok || !json.Valid(data) {
		return nil, false
	}
	return json.RawMessage(data), true
}

func (m *Model) writeDetails(ns, id string, doc json.RawMessage) error {
	if m.store == nil {
		return domain.ErrStoreUnavailable
	}
	if !json.Valid(doc) {
		return domain.ErrCorruptEntry
	}
	if err := m.store.Put(ns, id, doc); err != nil {
		m.logger.Error("failed to save details", "namespace", ns, "id", id, "error", err)
		return err
	}
	return nil
}
