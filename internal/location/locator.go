package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"campuseats/internal/model"
)

const (
	defaultIPLookupURL = "http://ip-api.com/json"
	// IP geolocation is only city-accurate.
	defaultIPAccuracyMeters = 5000.0
)

// Locator acquires the current device position.
type Locator interface {
	Acquire(ctx context.Context) (model.UserLocation, error)
}

// StaticLocator always reports a configured position.
type StaticLocator struct {
	Location model.UserLocation
}

// Acquire returns the configured position.
func (l StaticLocator) Acquire(ctx context.Context) (model.UserLocation, error) {
	if err := ctx.Err(); err != nil {
		return model.UserLocation{}, fmt.Errorf("%w: %w", ErrLocationUnavailable, err)
	}
	return l.Location, nil
}

// DeniedLocator is used when the user has not allowed location lookup.
type DeniedLocator struct{}

// Acquire always fails.
func (DeniedLocator) Acquire(context.Context) (model.UserLocation, error) {
	return model.UserLocation{}, fmt.Errorf("%w: permission denied", ErrLocationUnavailable)
}

// IPLocator estimates the position from the public IP address using an
// ip-api.com compatible endpoint.
type IPLocator struct {
	baseURL    string
	accuracy   float64
	httpClient *http.Client
}

// NewIPLocator creates an IP geolocation client. An empty baseURL uses ip-api.com.
func NewIPLocator(baseURL string) *IPLocator {
	if baseURL == "" {
		baseURL = defaultIPLookupURL
	}
	return &IPLocator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accuracy:   defaultIPAccuracyMeters,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Acquire looks up the caller's approximate position.
func (l *IPLocator) Acquire(ctx context.Context) (model.UserLocation, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", l.baseURL, nil)
	if err != nil {
		return model.UserLocation{}, fmt.Errorf("%w: request creation failed: %w", ErrLocationUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return model.UserLocation{}, fmt.Errorf("%w: network error: %w", ErrLocationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.UserLocation{}, fmt.Errorf("%w: status %d", ErrLocationUnavailable, resp.StatusCode)
	}

	var result ipLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.UserLocation{}, fmt.Errorf("%w: JSON decode error: %w", ErrLocationUnavailable, err)
	}
	if result.Status != "" && result.Status != "success" {
		return model.UserLocation{}, fmt.Errorf("%w: lookup %s: %s", ErrLocationUnavailable, result.Status, result.Message)
	}
	if result.Lat == nil || result.Lon == nil {
		return model.UserLocation{}, fmt.Errorf("%w: response has no coordinates", ErrLocationUnavailable)
	}

	return model.UserLocation{
		Latitude:  *result.Lat,
		Longitude: *result.Lon,
		Accuracy:  l.accuracy,
	}, nil
}

type ipLookupResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	City    string   `json:"city"`
}
