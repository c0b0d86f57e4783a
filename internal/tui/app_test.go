package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/boxoffice/internal/boxoffice"
	"github.com/mmcdole/boxoffice/internal/domain"
)

type stubProvider struct{}

func (stubProvider) Name() string { return domain.NorthAmerica }

func (stubProvider) FetchListings(ctx context.Context, loc domain.Location, date time.Time) (domain.Listings, error) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return domain.Listings{
		Movies: []domain.Movie{
			{ID: "m1", Title: "Dune", Score: 80},
			{ID: "m2", Title: "Wicked", Score: 90},
		},
		Theaters: []domain.Theater{
			{ID: "t1", Name: "Castro", Address: "429 Castro St"},
			{ID: "t2", Name: "Roxie"},
		},
		Performances: []domain.Performance{
			{MovieID: "m1", TheaterID: "t1", Showtime: day.Add(19 * time.Hour)},
			{MovieID: "m2", TheaterID: "t2", Showtime: day.Add(20 * time.Hour)},
		},
	}, nil
}

type fakeOpener struct {
	played, opened []string
}

func (o *fakeOpener) PlayTrailer(url string) error {
	o.played = append(o.played, url)
	return nil
}

func (o *fakeOpener) OpenURL(url string) error {
	o.opened = append(o.opened, url)
	return nil
}

type stubArtwork struct{}

func (stubArtwork) FetchPoster(ctx context.Context, m domain.Movie) (domain.Poster, error) {
	return domain.Poster{MovieID: m.ID, ContentType: "image/png", Data: []byte("png")}, nil
}

func (stubArtwork) FetchTrailers(ctx context.Context, m domain.Movie) ([]domain.Trailer, error) {
	return []domain.Trailer{{Title: m.Title + " trailer", URL: "https://video.example/" + m.ID}}, nil
}

func (stubArtwork) FetchReviews(ctx context.Context, m domain.Movie) ([]domain.Review, error) {
	return nil, nil
}

func newTestApp(t *testing.T) (Model, *boxoffice.Model) {
	t.Helper()
	box, err := boxoffice.New(boxoffice.Options{
		Providers: []domain.ListingsProvider{stubProvider{}},
		Artwork:   stubArtwork{},
		Now:       func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	t.Cleanup(box.Close)

	box.SetPostalCode("94107")
	require.Eventually(t, box.HasListings, 5*time.Second, 5*time.Millisecond)

	app := NewModel(box, &fakeOpener{})
	t.Cleanup(app.Close)
	return press(t, app, tea.WindowSizeMsg{Width: 100, Height: 30}), box
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestTabKeysPersistSelectedTab(t *testing.T) {
	app, box := newTestApp(t)

	app = press(t, app, runes("2"))
	require.Equal(t, int(TabTheaters), box.SelectedTab())

	app = press(t, app, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, int(TabFavorites), box.SelectedTab())

	app = press(t, app, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, int(TabMovies), box.SelectedTab())

	press(t, app, tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, int(TabFavorites), box.SelectedTab())
}

func TestFilterThenSelectMovie(t *testing.T) {
	app, box := newTestApp(t)

	app = press(t, app, runes("/"), runes("w"), runes("i"), runes("c"), tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, app.filtering)
	require.Len(t, app.movieRows(), 1)

	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	mv, ok := box.CurrentlySelectedMovie()
	require.True(t, ok)
	require.Equal(t, "Wicked", mv.Title)
	require.True(t, app.showDetail)
	require.Contains(t, app.View(), "Roxie")

	app = press(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, app.showDetail)
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	require.Len(t, app.movieRows(), 2)
}

func TestSortKeyCyclesSegments(t *testing.T) {
	app, box := newTestApp(t)

	app = press(t, app, runes("s"))
	require.Equal(t, 1, box.AllMoviesSegment())
	app = press(t, app, runes("s"), runes("s"))
	require.Equal(t, 0, box.AllMoviesSegment())

	press(t, app, runes("2"), runes("s"))
	require.Equal(t, 1, box.AllTheatersSegment())
}

func TestFavoriteToggle(t *testing.T) {
	app, box := newTestApp(t)

	app = press(t, app, runes("2"), runes("f"))
	require.True(t, box.IsFavoriteTheater("t1"))

	app = press(t, app, runes("3"))
	require.Contains(t, app.View(), "Castro")

	press(t, app, runes("f"))
	require.False(t, box.IsFavoriteTheater("t1"))
}

func TestProviderFailureShowsStatus(t *testing.T) {
	app, _ := newTestApp(t)

	app = press(t, app, EventMsg{Event: domain.EventProviderFailed})
	require.True(t, app.StatusIsErr)
	require.True(t, strings.Contains(app.StatusMsg, domain.NorthAmerica))

	app = press(t, app, EventMsg{Event: domain.EventSearchUpdated})
	require.Empty(t, app.StatusMsg)
}

func TestTrailerAndMapKeys(t *testing.T) {
	app, box := newTestApp(t)
	opener := app.opener.(*fakeOpener)

	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	require.Eventually(t, func() bool { return len(box.TrailersForMovie("m1")) == 1 }, 5*time.Second, 5*time.Millisecond)

	_, cmd := app.Update(runes("t"))
	require.NotNil(t, cmd)
	done := cmd().(LaunchDoneMsg)
	require.NoError(t, done.Err)
	require.Equal(t, []string{"https://video.example/m1"}, opener.played)

	app = press(t, app, tea.KeyMsg{Type: tea.KeyEsc}, runes("2"), tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd = app.Update(runes("m"))
	require.NotNil(t, cmd)
	cmd()
	require.Len(t, opener.opened, 1)
	require.Contains(t, opener.opened[0], "Castro")
}
