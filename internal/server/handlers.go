package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"campuseats/internal/apierr"
	"campuseats/internal/discover"
	"campuseats/internal/location"
	"campuseats/internal/model"

	"github.com/gorilla/mux"
)

// RestaurantsResponse is the derived view for a filter combination.
type RestaurantsResponse struct {
	Restaurants []model.Restaurant `json:"restaurants"`
	Count       int                `json:"count"`
	Sorted      bool               `json:"sorted"`
}

// AddressResponse is a human readable description of a coordinate. Resolved
// is false when Address is the coordinate fallback.
type AddressResponse struct {
	Address  string  `json:"address"`
	Resolved bool    `json:"resolved"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

func (s *Server) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filters discover.FilterState
	var err error
	if filters.ByAltPayment, err = parseFlag(q.Get("alt_payment")); err != nil {
		apierr.Write(w, apierr.ErrInvalidInput.WithDetails("alt_payment: "+err.Error()))
		return
	}
	if filters.ByDiscount, err = parseFlag(q.Get("discount")); err != nil {
		apierr.Write(w, apierr.ErrInvalidInput.WithDetails("discount: "+err.Error()))
		return
	}
	if filters.ByProximity, err = parseFlag(q.Get("nearest")); err != nil {
		apierr.Write(w, apierr.ErrInvalidInput.WithDetails("nearest: "+err.Error()))
		return
	}

	var user *model.UserLocation
	if q.Get("lat") != "" || q.Get("lng") != "" {
		lat, lng, err := parseLatLng(q.Get("lat"), q.Get("lng"))
		if err != nil {
			apierr.Write(w, apierr.ErrInvalidInput.WithDetails(err.Error()))
			return
		}
		user = &model.UserLocation{Latitude: lat, Longitude: lng, Accuracy: model.DefaultAccuracyMeters}
	}

	result := discover.Derive(s.catalog, filters, user)

	writeJSON(w, RestaurantsResponse{
		Restaurants: result.Restaurants,
		Count:       result.Len(),
		Sorted:      result.Sorted,
	})
}

func (s *Server) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		apierr.Write(w, apierr.ErrInvalidInput.WithDetails("id must be a positive integer"))
		return
	}

	restaurant, ok := s.byID[id]
	if !ok {
		apierr.Write(w, apierr.ErrNotFound.WithDetails(fmt.Sprintf("restaurant %d", id)))
		return
	}
	writeJSON(w, restaurant)
}

func (s *Server) ResolveAddress(w http.ResponseWriter, r *http.Request) {
	lat, lng, err := parseLatLng(r.URL.Query().Get("lat"), r.URL.Query().Get("lng"))
	if err != nil {
		apierr.Write(w, apierr.ErrInvalidInput.WithDetails(err.Error()))
		return
	}

	address, err := location.DescribeLocation(r.Context(), s.geocoder, lat, lng)

	writeJSON(w, AddressResponse{
		Address:  address,
		Resolved: err == nil,
		Lat:      lat,
		Lng:      lng,
	})
}

func parseFlag(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func parseLatLng(latStr, lngStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("lat: invalid number %q", latStr)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("lng: invalid number %q", lngStr)
	}
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("lat: %q out of range [-90, 90]", latStr)
	}
	if math.IsNaN(lng) || math.IsInf(lng, 0) || lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("lng: %q out of range [-180, 180]", lngStr)
	}
	return lat, lng, nil
}

// writeJSON marshals v before touching w; encoding failures become a 500.
func writeJSON(w http.ResponseWriter, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		apierr.Write(w, apierr.ErrInternal.WithDetails("encode response: "+err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(append(body, '\n'))
}
