package model

import (
	"strings"

	"campuseats/internal/geo"
)

// DefaultAccuracyMeters is drawn around the user marker when the locator
// reports no accuracy.
const DefaultAccuracyMeters = 100.0

// DiscountTier describes the student discount a restaurant offers.
type DiscountTier string

// DiscountNone marks a restaurant without a student discount.
const DiscountNone DiscountTier = "None"

// ParseDiscountTier normalises stored or user supplied tiers. Empty values and
// any casing of "none" map to DiscountNone.
func ParseDiscountTier(s string) DiscountTier {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(DiscountNone)) {
		return DiscountNone
	}
	return DiscountTier(s)
}

// Available reports whether the tier is an actual discount.
func (d DiscountTier) Available() bool {
	return ParseDiscountTier(string(d)) != DiscountNone
}

// MenuItem is one line of a restaurant's popular items.
type MenuItem struct {
	Item string `json:"item"`
}

// Restaurant is a read-only catalog entry. Distance is only set on derived
// copies produced by proximity sorting.
type Restaurant struct {
	ID                int64        `json:"id"`
	Name              string       `json:"name"`
	Cuisine           string       `json:"cuisine"`
	Images            []string     `json:"images"`
	Location          geo.Position `json:"location"`
	AcceptsAltPayment bool         `json:"accepts_alt_payment"`
	Discount          DiscountTier `json:"discount"`
	Hours             string       `json:"hours"`
	MapLink           string       `json:"map_link"`
	Menu              []MenuItem   `json:"menu"`
	Distance          *float64     `json:"distance,omitempty"`
}

// UserLocation is the current device position.
type UserLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"` // meters
}

// Position returns the location as a map coordinate.
func (u UserLocation) Position() geo.Position {
	return geo.Position{Lat: u.Latitude, Lng: u.Longitude}
}

// AccuracyRadius returns the accuracy circle radius in meters.
func (u UserLocation) AccuracyRadius() float64 {
	if u.Accuracy <= 0 {
		return DefaultAccuracyMeters
	}
	return u.Accuracy
}
