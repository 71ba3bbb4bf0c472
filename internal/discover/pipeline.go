// Package discover derives the visible restaurant view from the catalog,
// the user's filter toggles and their location.
package discover

import (
	"sort"

	"campuseats/internal/geo"
	"campuseats/internal/model"
)

// FilterState holds the independent filter toggles. Derive never mutates it.
type FilterState struct {
	ByAltPayment bool `json:"by_alt_payment"`
	ByDiscount   bool `json:"by_discount"`
	ByProximity  bool `json:"by_proximity"`
}

// Result is a derived restaurant view. A zero-length Restaurants slice means
// the pipeline ran and nothing matched.
type Result struct {
	Restaurants []model.Restaurant
	// Sorted is true when proximity sorting ran and Distance is populated.
	Sorted bool
}

// Len returns the number of restaurants in the view.
func (r Result) Len() int {
	return len(r.Restaurants)
}

// Derive filters and optionally sorts the catalog. Stages always run in the
// same order: alternate payment, discount, proximity. Proximity is skipped
// when user is nil.
func Derive(catalog []model.Restaurant, filters FilterState, user *model.UserLocation) Result {
	rows := make([]model.Restaurant, 0, len(catalog))
	for _, r := range catalog {
		if filters.ByAltPayment && !r.AcceptsAltPayment {
			continue
		}
		if filters.ByDiscount && !r.Discount.Available() {
			continue
		}
		rows = append(rows, r)
	}

	if !filters.ByProximity || user == nil {
		return Result{Restaurants: rows}
	}

	origin := user.Position()
	for i := range rows {
		d := geo.Distance(origin, rows[i].Location)
		rows[i].Distance = &d
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return *rows[i].Distance < *rows[j].Distance
	})

	return Result{Restaurants: rows, Sorted: true}
}

// Find returns the restaurant with the given id from the view.
func (r Result) Find(id int64) (model.Restaurant, bool) {
	for _, row := range r.Restaurants {
		if row.ID == id {
			return row, true
		}
	}
	return model.Restaurant{}, false
}

// IDs returns the ids in view order.
func (r Result) IDs() []int64 {
	ids := make([]int64, len(r.Restaurants))
	for i, row := range r.Restaurants {
		ids[i] = row.ID
	}
	return ids
}
