package domain

import "time"

// Persisted state keys. Together with StateNamespace they form the durable-state schema.
const (
	KeySearchDates          = "searchDates"
	KeySearchResults        = "searchResults"
	KeySearchRadius         = "searchRadius"
	KeyPostalCode           = "postalCode"
	KeySelectedMovie        = "currentlySelectedMovie"
	KeySelectedTheater      = "currentlySelectedTheater"
	KeySelectedTab          = "selectedTabBarViewControllerIndex"
	KeyAllMoviesSegment     = "allMoviesSelectedSegmentIndex"
	KeyAllTheatersSegment   = "allTheatersSelectedSegmentIndex"
	KeyFavoriteTheaters     = "favoriteTheaters"
	KeyShowingReviews       = "currentlyShowingReviews"
	KeySearchDate           = "searchDate"
	KeyAutoUpdateLocation   = "autoUpdateLocation"
	KeyDataProviderIndex    = "dataProviderIndex"
	KeyRatingsProviderIndex = "ratingsProviderIndex"
	KeyUseNormalFonts       = "useNormalFonts"
)

// Store namespaces
const (
	StateNamespace           = "state"
	PosterNamespace          = "posters"
	TrailerNamespace         = "trailers"
	ReviewNamespace          = "reviews"
	RatingNamespace          = "ratings"
	AddressLocationNamespace = "locations"
	SearchNamespace          = KeySearchResults
	MovieDetailsNamespace    = "movieDetails"
	PersonDetailsNamespace   = "personDetails"
)

// DefaultSearchRadius is used until the user picks one (miles).
const DefaultSearchRadius = 5

// FavoriteTheater is what we remember about a favorite across snapshots.
type FavoriteTheater struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PostalCode string `json:"postal_code,omitempty"`
}

// ModelState is the persisted user state owned by the coordinator.
type ModelState struct {
	DataProviderIndex    int
	RatingsProviderIndex int
	SelectedTab          int
	AllMoviesSegment     int
	AllTheatersSegment   int

	PostalCode   string
	SearchRadius int
	SearchDate   time.Time // zero means "today"

	SelectedMovieID         string
	SelectedTheaterID       string
	CurrentlyShowingReviews bool

	FavoriteTheaters   []FavoriteTheater
	AutoUpdateLocation bool
	UseSmallFonts      bool

	// SearchDates records when each search key was last fetched
	SearchDates map[string]time.Time
}

// DefaultModelState returns the state of a fresh install.
func DefaultModelState() ModelState {
	return ModelState{
		SearchRadius: DefaultSearchRadius,
		SearchDates:  make(map[string]time.Time),
	}
}
