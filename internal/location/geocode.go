package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org"
	defaultUserAgent    = "campuseats/1.0"
	shortAddressParts   = 4
)

// ReverseGeocoder turns coordinates into a short display address.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// NominatimClient wraps the OpenStreetMap Nominatim reverse endpoint.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNominatimClient creates a reverse geocoding client. Empty arguments use
// the public Nominatim instance and a default User-Agent, which the public
// instance requires.
func NewNominatimClient(baseURL, userAgent string) *NominatimClient {
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &NominatimClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// ReverseGeocode resolves coordinates to the first four comma separated parts
// of Nominatim's display_name.
func (c *NominatimClient) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))

	reqURL := fmt.Sprintf("%s/reverse?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: request creation failed: %w", ErrAddressResolutionFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: network error: %w", ErrAddressResolutionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrAddressResolutionFailed, resp.StatusCode)
	}

	var result reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: JSON decode error: %w", ErrAddressResolutionFailed, err)
	}

	address := ShortAddress(result.DisplayName)
	if address == "" {
		return "", fmt.Errorf("%w: address not found", ErrAddressResolutionFailed)
	}
	return address, nil
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// ShortAddress keeps the first four comma separated segments of a display name.
func ShortAddress(displayName string) string {
	if strings.TrimSpace(displayName) == "" {
		return ""
	}
	parts := strings.Split(displayName, ",")
	if len(parts) > shortAddressParts {
		parts = parts[:shortAddressParts]
	}
	return strings.Join(parts, ",")
}

// CoordinateFallback formats coordinates for display when no address could
// be resolved.
func CoordinateFallback(lat, lng float64) string {
	return fmt.Sprintf("Lat: %.2f, Lng: %.2f", lat, lng)
}

// DescribeLocation resolves a display address, substituting formatted
// coordinates on failure. The returned error is the resolution failure, if any.
func DescribeLocation(ctx context.Context, g ReverseGeocoder, lat, lng float64) (string, error) {
	if g == nil {
		return CoordinateFallback(lat, lng), fmt.Errorf("%w: no geocoder configured", ErrAddressResolutionFailed)
	}
	address, err := g.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return CoordinateFallback(lat, lng), err
	}
	return address, nil
}
