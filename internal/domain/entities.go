package domain

import (
	"fmt"
	"strings"
	"time"
)

// NoScore marks a movie or rating without a usable score.
const NoScore = -1

// Movie is a single title as reported by a listings provider.
// Values are immutable for the lifetime of the snapshot that produced them.
type Movie struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ReleaseDate time.Time `json:"release_date"`
	Synopsis    string    `json:"synopsis"`
	Score       int       `json:"score"` // 0-100, NoScore when unknown

	Rating    string   `json:"rating,omitempty"` // Content rating (e.g., "PG-13")
	Length    int      `json:"length,omitempty"` // Runtime in minutes
	PosterURL string   `json:"poster_url,omitempty"`
	Directors []string `json:"directors,omitempty"`
	Cast      []string `json:"cast,omitempty"`
	Genres    []string `json:"genres,omitempty"`
}

// HasScore reports whether the provider supplied a score.
func (m Movie) HasScore() bool {
	return m.Score >= 0
}

// FormattedLength returns the runtime in a human-readable format
func (m Movie) FormattedLength() string {
	if m.Length <= 0 {
		return ""
	}
	h := m.Length / 60
	mins := m.Length % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// Theater is a venue that shows movies.
type Theater struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Phone    string   `json:"phone,omitempty"`
	Location Location `json:"location"`
}

// Performance is a single showtime of a movie at a theater.
type Performance struct {
	MovieID   string    `json:"movie_id"`
	TheaterID string    `json:"theater_id"`
	Showtime  time.Time `json:"showtime"`
}

// FormattedShowtime returns the showtime as a short clock string (e.g., "7:30 PM")
func (p Performance) FormattedShowtime() string {
	return p.Showtime.Format(time.Kitchen)
}

// Listings is the raw bundle a provider returns for one location and date.
type Listings struct {
	Movies       []Movie       `json:"movies"`
	Theaters     []Theater     `json:"theaters"`
	Performances []Performance `json:"performances"`
}

// SearchKey identifies a search result set.
type SearchKey struct {
	PostalCode string
	Date       time.Time
}

// NewSearchKey normalizes the postal code and truncates the date to a calendar day.
func NewSearchKey(postalCode string, date time.Time) SearchKey {
	y, m, d := date.Date()
	return SearchKey{
		PostalCode: strings.ToUpper(strings.TrimSpace(postalCode)),
		Date:       time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
}

// String returns the persisted form of the key ("94107@2024-03-01").
func (k SearchKey) String() string {
	return k.PostalCode + "@" + k.Date.Format(time.DateOnly)
}

// SearchResult is a complete listings snapshot for one SearchKey.
type SearchResult struct {
	Provider     string        `json:"provider"`
	PostalCode   string        `json:"postal_code"`
	Date         time.Time     `json:"date"`
	Location     Location      `json:"location"`
	Movies       []Movie       `json:"movies"`
	Theaters     []Theater     `json:"theaters"`
	Performances []Performance `json:"performances"`
	FetchedAt    time.Time     `json:"fetched_at"`
}

// Key returns the SearchKey this result was produced for.
func (r SearchResult) Key() SearchKey {
	return NewSearchKey(r.PostalCode, r.Date)
}

// Trailer is a playable trailer link for a movie.
type Trailer struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Review is a single critic review of a movie.
type Review struct {
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Text      string `json:"text"`
	Link      string `json:"link"`
	Score     int    `json:"score"`
}

// Rating is a movie score attributed to the source that produced it.
type Rating struct {
	Score  int    `json:"score"`
	Source string `json:"source"`
}

// Poster is a downloaded poster image.
type Poster struct {
	MovieID     string `json:"movie_id"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}
