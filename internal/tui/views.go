package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/boxoffice/internal/domain"
	"github.com/mmcdole/boxoffice/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	var body string
	if m.showDetail {
		body = m.renderDetail()
	} else {
		switch m.tab() {
		case TabTheaters:
			body = m.renderTheaters()
		case TabFavorites:
			body = m.renderFavorites()
		default:
			body = m.renderMovies()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTabs(),
		m.renderFilter(),
		body,
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := styles.TitleStyle.Render("BoxOffice")
	where := m.box.PostalCode()
	if where == "" {
		where = "no location"
	}
	info := styles.SubtitleStyle.Render(fmt.Sprintf("  %s · %s · %s · ratings: %s",
		where,
		m.box.SearchDate().Format("Mon Jan 2"),
		m.box.CurrentDataProvider().Name(),
		m.box.CurrentRatingsProvider()))

	busy := ""
	if m.box.IsBusy() {
		busy = "  " + m.spinner.View() + styles.DimStyle.Render(fmt.Sprintf(" %d", m.box.BackgroundTaskCount()))
	}
	return title + info + busy
}

func (m Model) renderTabs() string {
	var tabs []string
	for t := TabMovies; t < tabCount; t++ {
		if t == m.tab() {
			tabs = append(tabs, styles.ActiveTabStyle.Render(t.String()))
		} else {
			tabs = append(tabs, styles.TabStyle.Render(t.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderFilter() string {
	if m.filtering || m.filter.Value() != "" {
		return m.filter.View()
	}
	return ""
}

func (m Model) listHeight() int {
	h := m.Height - ChromeHeight
	if h < 1 {
		h = 1
	}
	return h
}

// window returns the visible [start, end) range that keeps the cursor on screen
func (m Model) window(n int) (int, int) {
	h := m.listHeight()
	cur := m.cursor[m.tab()]
	start := 0
	if cur >= h {
		start = cur - h + 1
	}
	end := start + h
	if end > n {
		end = n
	}
	return start, end
}

func (m Model) renderMovies() string {
	if !m.box.HasListings() {
		return styles.DimStyle.Render(m.emptyMessage())
	}
	rows := m.movieRows()
	if len(rows) == 0 {
		return styles.DimStyle.Render("No movies match")
	}

	titleWidth := m.Width - 16
	var b strings.Builder
	start, end := m.window(len(rows))
	for i := start; i < end; i++ {
		r := rows[i]
		title := styles.Truncate(r.Movie.Title, titleWidth)
		if len(r.MatchedIndexes) > 0 && title == r.Movie.Title {
			title = styles.HighlightMatches(title, r.MatchedIndexes)
		}
		line := styles.RenderScore(m.box.ScoreForMovie(r.Movie.ID)) + "  " + title
		if len(m.box.TheatersShowingMovie(r.Movie.ID)) == 0 {
			line += styles.DimStyle.Render("  (no showtimes)")
		}
		b.WriteString(styles.RenderRow(line, i == m.cursor[TabMovies], m.Width))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m Model) renderTheaters() string {
	if !m.box.HasListings() {
		return styles.DimStyle.Render(m.emptyMessage())
	}
	rows := m.theaterRows()
	if len(rows) == 0 {
		return styles.DimStyle.Render("No theaters match")
	}

	distances := m.box.TheaterDistanceMap()
	var b strings.Builder
	start, end := m.window(len(rows))
	for i := start; i < end; i++ {
		t := rows[i]
		mark := " "
		if m.box.IsFavoriteTheater(t.ID) {
			mark = styles.AccentStyle.Render(styles.FavoriteChar)
		}
		dist := "      "
		if d, ok := distances[t.ID]; ok {
			dist = fmt.Sprintf("%4.1fmi", d)
		}
		line := mark + " " + dist + "  " + styles.Truncate(t.Name, m.Width-14)
		b.WriteString(styles.RenderRow(line, i == m.cursor[TabTheaters], m.Width))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m Model) renderFavorites() string {
	favs := m.box.FavoriteTheaters()
	if len(favs) == 0 {
		return styles.DimStyle.Render("No favorite theaters yet. Press f on a theater to add one.")
	}

	var b strings.Builder
	start, end := m.window(len(favs))
	for i := start; i < end; i++ {
		f := favs[i]
		line := styles.AccentStyle.Render(styles.FavoriteChar) + " " + f.Name
		if _, ok := m.box.Theater(f.ID); !ok {
			line += styles.DimStyle.Render("  not in current listings")
		}
		b.WriteString(styles.RenderRow(line, i == m.cursor[TabFavorites], m.Width))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m Model) emptyMessage() string {
	switch {
	case m.box.PostalCode() == "":
		return "Set a postal code with `boxoffice location <postal>` to see what's playing."
	case m.box.IsBusy():
		return "Fetching listings..."
	default:
		return "No listings yet. Press r to refresh."
	}
}

func (m Model) renderDetail() string {
	width := m.Width - 4
	if width < 20 {
		width = 20
	}
	style := styles.DetailStyle.Width(width)

	if m.tab() == TabMovies {
		if mv, ok := m.box.CurrentlySelectedMovie(); ok {
			return style.Render(m.movieDetail(mv))
		}
	} else if t, ok := m.box.CurrentlySelectedTheater(); ok {
		return style.Render(m.theaterDetail(t))
	}
	return styles.DimStyle.Render("Nothing selected")
}

func (m Model) movieDetail(mv domain.Movie) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(mv.Title))
	if !mv.ReleaseDate.IsZero() {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf(" (%d)", mv.ReleaseDate.Year())))
	}
	b.WriteByte('\n')

	var facts []string
	if mv.Rating != "" {
		facts = append(facts, mv.Rating)
	}
	if l := mv.FormattedLength(); l != "" {
		facts = append(facts, l)
	}
	if score := m.box.ScoreForMovie(mv.ID); score != domain.NoScore {
		facts = append(facts, fmt.Sprintf("score %d", score))
	}
	if p, ok := m.box.PosterForMovie(mv.ID); ok {
		facts = append(facts, fmt.Sprintf("poster %dKB", len(p.Data)/1024))
	}
	if len(facts) > 0 {
		b.WriteString(styles.SubtitleStyle.Render(strings.Join(facts, " · ")))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if m.box.CurrentlyShowingReviews() {
		reviews := m.box.ReviewsForMovie(mv.ID)
		if len(reviews) == 0 {
			b.WriteString(styles.DimStyle.Render("No reviews yet"))
		}
		for _, r := range reviews {
			b.WriteString(styles.AccentStyle.Render(r.Author))
			if r.Publisher != "" {
				b.WriteString(styles.DimStyle.Render(", " + r.Publisher))
			}
			b.WriteString("\n" + r.Text + "\n\n")
		}
		return b.String()
	}

	if synopsis := m.box.SynopsisForMovie(mv.ID); synopsis != "" {
		b.WriteString(synopsis + "\n\n")
	}

	for _, t := range m.box.SortTheaters(m.box.TheatersShowingMovie(mv.ID), m.box.TheaterOrder()) {
		b.WriteString(styles.AccentStyle.Render(t.Name) + "  ")
		b.WriteString(formatShowtimes(m.box.MoviePerformances(mv.ID, t.ID)))
		b.WriteByte('\n')
	}

	if trailers := m.box.TrailersForMovie(mv.ID); len(trailers) > 0 {
		b.WriteString("\n" + styles.DimStyle.Render("Trailer: "+trailers[0].URL))
	}
	b.WriteString("\n" + styles.DimStyle.Render("v reviews · t trailer · esc back"))
	return b.String()
}

func (m Model) theaterDetail(t domain.Theater) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(t.Name))
	if m.box.IsFavoriteTheater(t.ID) {
		b.WriteString(" " + styles.AccentStyle.Render(styles.FavoriteChar))
	}
	b.WriteByte('\n')
	if t.Address != "" {
		b.WriteString(styles.SubtitleStyle.Render(t.Address) + "\n")
	}
	if d, ok := m.box.TheaterDistanceMap()[t.ID]; ok {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("%.1f miles away", d)) + "\n")
	}
	b.WriteByte('\n')

	for _, mv := range m.box.SortMovies(m.box.MoviesAtTheater(t.ID), m.box.MovieOrder()) {
		b.WriteString(styles.AccentStyle.Render(mv.Title) + "  ")
		b.WriteString(formatShowtimes(m.box.MoviePerformances(mv.ID, t.ID)))
		b.WriteByte('\n')
	}
	return b.String()
}

func formatShowtimes(perfs []domain.Performance) string {
	times := make([]string, len(perfs))
	for i, p := range perfs {
		times[i] = p.FormattedShowtime()
	}
	return strings.Join(times, "  ")
}

func (m Model) renderFooter() string {
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			return styles.ErrorStyle.Render(m.StatusMsg)
		}
		return styles.SuccessStyle.Render(m.StatusMsg)
	}

	var parts []string
	for _, k := range m.keys.ShortHelp() {
		h := k.Help()
		parts = append(parts, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
