package model

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// CatalogLoadedMsg is sent when the restaurant catalog is loaded.
type CatalogLoadedMsg struct {
	Restaurants []Restaurant
}

// LocationAcquiredMsg is sent when a location lookup finishes. Err is set
// when no position could be obtained.
type LocationAcquiredMsg struct {
	Location UserLocation
	Err      error
}

// AddressResolvedMsg is sent when reverse geocoding finishes.
type AddressResolvedMsg struct {
	Location UserLocation
	Address  string
	Err      error
}

// Screen represents different app screens.
type Screen int

const (
	ScreenRestaurants Screen = iota
	ScreenRestaurantDetail
)
