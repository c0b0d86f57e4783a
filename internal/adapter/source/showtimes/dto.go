package showtimes

// ListingsResponse is the body of GET /v1/showtimes
type ListingsResponse struct {
	Movies   []MovieDTO   `json:"movies"`
	Theaters []TheaterDTO `json:"theaters"`
}

type MovieDTO struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	ReleaseDate string   `json:"release_date"` // YYYY-MM-DD, may be empty
	Synopsis    string   `json:"synopsis"`
	Score       *int     `json:"score"`
	Rating      string   `json:"rating"`
	Runtime     int      `json:"runtime"`
	PosterURL   string   `json:"poster_url"`
	Directors   []string `json:"directors"`
	Cast        []string `json:"cast"`
	Genres      []string `json:"genres"`
}

type TheaterDTO struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Address    string       `json:"address"`
	City       string       `json:"city"`
	State      string       `json:"state"`
	PostalCode string       `json:"postal_code"`
	Country    string       `json:"country"`
	Phone      string       `json:"phone"`
	Lat        float64      `json:"lat"`
	Lng        float64      `json:"lng"`
	Showtimes  []ShowingDTO `json:"showtimes"`
}

// ShowingDTO lists the times of one movie at the enclosing theater.
type ShowingDTO struct {
	MovieID string   `json:"movie_id"`
	Times   []string `json:"times"` // Local wall clock, "15:04"
}
