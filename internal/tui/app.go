// Package tui is the terminal front end. It renders whatever the model
// currently holds and re-renders when the bus says something changed.
package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/boxoffice/internal/boxoffice"
	"github.com/mmcdole/boxoffice/internal/domain"
	"github.com/mmcdole/boxoffice/internal/notify"
	"github.com/mmcdole/boxoffice/internal/search"
	"github.com/mmcdole/boxoffice/internal/tui/styles"
)

// Tab is one of the top-level views. Its value is the persisted selected tab.
type Tab int

const (
	TabMovies Tab = iota
	TabTheaters
	TabFavorites
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabTheaters:
		return "Theaters"
	case TabFavorites:
		return "Favorites"
	default:
		return "Movies"
	}
}

// Opener launches trailers and links outside the terminal
type Opener interface {
	PlayTrailer(url string) error
	OpenURL(url string) error
}

// ChromeHeight is the header, tab bar, filter and footer lines
const ChromeHeight = 5

// Model is the main Bubble Tea model for the application
type Model struct {
	box    *boxoffice.Model
	sub    *notify.Subscription
	opener Opener // may be nil
	keys   KeyMap

	// UI components
	spinner spinner.Model
	filter  textinput.Model

	// UI state
	filtering   bool
	showDetail  bool
	cursor      [tabCount]int
	Width       int
	Height      int
	Ready       bool
	StatusMsg   string
	StatusIsErr bool
}

// NewModel creates the application model. It subscribes to every bus event;
// call Close when the program exits. opener may be nil.
func NewModel(box *boxoffice.Model, opener Opener) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	ti := textinput.New()
	ti.Prompt = styles.FilterPromptStyle.Render("/ ")
	ti.Placeholder = "filter"
	ti.CharLimit = 64

	return Model{
		box:     box,
		sub:     box.Bus().Subscribe(),
		opener:  opener,
		keys:    DefaultKeyMap(),
		spinner: sp,
		filter:  ti,
	}
}

// Close releases the bus subscription
func (m Model) Close() {
	m.sub.Close()
}

// Init starts listening for events and kicks off the first update
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForEvent(m.sub),
		m.spinner.Tick,
		UpdateCmd(m.box),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, WaitForEvent(m.sub)

	case RefreshDoneMsg:
		if msg.Err != nil {
			m.setError(msg.Err)
		} else {
			m.setStatus("Listings refreshed")
		}
		return m, nil

	case LaunchDoneMsg:
		if msg.Err != nil {
			m.setError(msg.Err)
		} else {
			m.setStatus(msg.Status)
		}
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleEvent(e domain.Event) {
	switch e {
	case domain.EventProviderFailed:
		m.StatusMsg = "Could not load listings from " + m.box.CurrentDataProvider().Name()
		m.StatusIsErr = true
	case domain.EventSearchUpdated:
		m.StatusMsg = ""
		m.StatusIsErr = false
	}
	m.clampCursor()
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filter.SetValue("")
		m.filter.Blur()
		m.clampCursor()
		return m, nil
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.cursor[m.tab()] = 0
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		if m.showDetail {
			m.showDetail = false
		} else if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.clampCursor()
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor[m.tab()] > 0 {
			m.cursor[m.tab()]--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor[m.tab()] < m.rowCount()-1 {
			m.cursor[m.tab()]++
		}

	case key.Matches(msg, m.keys.NextTab):
		m.setTab((m.tab() + 1) % tabCount)

	case key.Matches(msg, m.keys.PrevTab):
		m.setTab((m.tab() + tabCount - 1) % tabCount)

	case key.Matches(msg, m.keys.Movies):
		m.setTab(TabMovies)

	case key.Matches(msg, m.keys.Theaters):
		m.setTab(TabTheaters)

	case key.Matches(msg, m.keys.Favorites):
		m.setTab(TabFavorites)

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.showDetail = false
		return m, m.filter.Focus()

	case key.Matches(msg, m.keys.Enter):
		m.selectCurrent()

	case key.Matches(msg, m.keys.Sort):
		m.cycleSort()

	case key.Matches(msg, m.keys.Favorite):
		m.toggleFavorite()

	case key.Matches(msg, m.keys.Reviews):
		if m.showDetail && m.tab() == TabMovies {
			m.box.SetCurrentlyShowingReviews()
		}

	case key.Matches(msg, m.keys.Trailer):
		return m, m.playTrailer()

	case key.Matches(msg, m.keys.Map):
		return m, m.openMap()

	case key.Matches(msg, m.keys.Refresh):
		m.setStatus("Refreshing...")
		return m, RefreshCmd(m.box)

	case key.Matches(msg, m.keys.Provider):
		n := len(m.box.DataProviders())
		if err := m.box.SetDataProviderIndex((m.box.DataProviderIndex() + 1) % n); err != nil {
			m.setError(err)
		} else {
			m.showDetail = false
			m.setStatus("Listings from " + m.box.CurrentDataProvider().Name())
		}

	case key.Matches(msg, m.keys.Ratings):
		n := len(m.box.RatingsProviders())
		if err := m.box.SetRatingsProviderIndex((m.box.RatingsProviderIndex() + 1) % n); err != nil {
			m.setError(err)
		} else {
			m.setStatus("Ratings from " + m.box.CurrentRatingsProvider())
		}
	}

	return m, nil
}

func (m Model) tab() Tab {
	t := Tab(m.box.SelectedTab())
	if t < 0 || t >= tabCount {
		return TabMovies
	}
	return t
}

func (m *Model) setTab(t Tab) {
	m.showDetail = false
	m.box.SetSelectedTab(int(t))
	m.clampCursor()
}

func (m *Model) setStatus(s string) {
	m.StatusMsg = s
	m.StatusIsErr = false
}

func (m *Model) setError(err error) {
	switch {
	case errors.Is(err, domain.ErrLocationNotFound):
		m.StatusMsg = m.box.NoLocationInformationFound()
	default:
		m.StatusMsg = err.Error()
	}
	m.StatusIsErr = true
}

// movieRows is the current movie list, sorted then filtered
func (m Model) movieRows() []search.MovieResult {
	return search.Movies(m.filter.Value(), m.box.SortedMovies())
}

func (m Model) theaterRows() []domain.Theater {
	return search.Theaters(m.filter.Value(), m.box.SortedTheaters())
}

func (m Model) rowCount() int {
	switch m.tab() {
	case TabTheaters:
		return len(m.theaterRows())
	case TabFavorites:
		return len(m.box.FavoriteTheaters())
	default:
		return len(m.movieRows())
	}
}

func (m *Model) clampCursor() {
	t := m.tab()
	n := m.rowCount()
	if m.cursor[t] >= n {
		m.cursor[t] = n - 1
	}
	if m.cursor[t] < 0 {
		m.cursor[t] = 0
	}
}

func (m *Model) selectCurrent() {
	i := m.cursor[m.tab()]
	var err error

	switch m.tab() {
	case TabMovies:
		rows := m.movieRows()
		if i >= len(rows) {
			return
		}
		err = m.box.SetCurrentSelection(rows[i].Movie.ID, "")

	case TabTheaters:
		rows := m.theaterRows()
		if i >= len(rows) {
			return
		}
		err = m.box.SetCurrentSelection("", rows[i].ID)

	case TabFavorites:
		favs := m.box.FavoriteTheaters()
		if i >= len(favs) {
			return
		}
		err = m.box.SetCurrentSelection("", favs[i].ID)
	}

	if err != nil {
		// A favorite from another search is not in the current listings
		m.setError(err)
		return
	}
	m.showDetail = true
}

func (m *Model) cycleSort() {
	switch m.tab() {
	case TabMovies:
		m.box.SetAllMoviesSegment((m.box.AllMoviesSegment() + 1) % 3)
		m.setStatus("Sorted by " + m.box.MovieOrder().String())
	case TabTheaters:
		m.box.SetAllTheatersSegment((m.box.AllTheatersSegment() + 1) % 2)
		m.setStatus("Sorted by " + m.box.TheaterOrder().String())
	}
}

func (m *Model) toggleFavorite() {
	i := m.cursor[m.tab()]

	switch m.tab() {
	case TabTheaters:
		rows := m.theaterRows()
		if i >= len(rows) {
			return
		}
		t := rows[i]
		if m.box.IsFavoriteTheater(t.ID) {
			m.box.RemoveFavoriteTheater(t.ID)
			m.setStatus("Removed " + t.Name + " from favorites")
		} else {
			m.box.AddFavoriteTheater(t)
			m.setStatus("Added " + t.Name + " to favorites")
		}

	case TabFavorites:
		favs := m.box.FavoriteTheaters()
		if i >= len(favs) {
			return
		}
		m.box.RemoveFavoriteTheater(favs[i].ID)
		m.setStatus("Removed " + favs[i].Name + " from favorites")
		m.clampCursor()
	}
}

func (m *Model) playTrailer() tea.Cmd {
	if !m.showDetail || m.tab() != TabMovies || m.opener == nil {
		return nil
	}
	mv, ok := m.box.CurrentlySelectedMovie()
	if !ok {
		return nil
	}
	trailers := m.box.TrailersForMovie(mv.ID)
	if len(trailers) == 0 {
		m.setStatus("No trailer for " + mv.Title + " yet")
		return nil
	}
	opener, url := m.opener, trailers[0].URL
	return LaunchCmd(func() error { return opener.PlayTrailer(url) }, "Playing "+trailers[0].Title)
}

func (m *Model) openMap() tea.Cmd {
	if !m.showDetail || m.tab() == TabMovies || m.opener == nil {
		return nil
	}
	t, ok := m.box.CurrentlySelectedTheater()
	if !ok {
		return nil
	}
	loc := t.Location
	if !loc.HasCoordinates() && loc.Address == "" {
		loc.Address = t.Address
	}
	opener, url := m.opener, loc.MapURL()
	return LaunchCmd(func() error { return opener.OpenURL(url) }, "Opened map for "+t.Name)
}
