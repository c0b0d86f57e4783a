package domain

// Event names posted on the notification bus. Events carry no payload;
// listeners re-query the model.
type Event string

const (
	EventProviderUpdated  Event = "provider-updated"
	EventProviderFailed   Event = "provider-failed"
	EventRatingsUpdated   Event = "ratings-updated"
	EventPosterUpdated    Event = "poster-updated"
	EventTrailerUpdated   Event = "trailer-updated"
	EventReviewUpdated    Event = "review-updated"
	EventRatingUpdated    Event = "rating-updated"
	EventLocationUpdated  Event = "location-updated"
	EventSearchUpdated    Event = "search-updated"
	EventSelectionChanged Event = "selection-changed"
	EventFavoritesChanged Event = "favorites-changed"
	EventSettingsChanged  Event = "settings-changed"
	EventBusyChanged      Event = "busy-changed"
)
