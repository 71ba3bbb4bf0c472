// Package server exposes the discovery pipeline over HTTP.
package server

import (
	"net/http"

	"campuseats/internal/apierr"
	"campuseats/internal/location"
	"campuseats/internal/model"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// DefaultAllowedOrigins are the local front-end dev servers.
var DefaultAllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:5174"}

// Server serves a read-only catalog snapshot. Handlers hold no per-request
// state beyond the request itself.
type Server struct {
	catalog  []model.Restaurant
	byID     map[int64]model.Restaurant
	geocoder location.ReverseGeocoder
}

// New creates a server over catalog. geocoder may be nil, in which case
// addresses always fall back to coordinates.
func New(catalog []model.Restaurant, geocoder location.ReverseGeocoder) *Server {
	byID := make(map[int64]model.Restaurant, len(catalog))
	for _, r := range catalog {
		byID[r.ID] = r
	}
	return &Server{catalog: catalog, byID: byID, geocoder: geocoder}
}

// Router returns the API routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(apierr.Recover())

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/restaurants", s.ListRestaurants).Methods("GET", "OPTIONS")
	api.HandleFunc("/restaurants/{id}", s.GetRestaurant).Methods("GET", "OPTIONS")
	api.HandleFunc("/address", s.ResolveAddress).Methods("GET", "OPTIONS")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.Write(w, apierr.ErrNotFound)
	})
	return r
}

// Handler wraps the router with CORS for the given origins.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding"},
	})
	return c.Handler(s.Router())
}
