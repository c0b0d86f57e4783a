package domain

// Listings provider names, in DataProviderIndex order.
const (
	NorthAmerica  = "North America"
	UnitedKingdom = "United Kingdom"
)

// Ratings source names, in RatingsProviderIndex order.
const (
	RottenTomatoes = "RottenTomatoes"
	Metacritic     = "Metacritic"
	NoRatings      = "None"
)
