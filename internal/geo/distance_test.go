package geo

import (
	"math"
	"testing"
)

func TestDistanceKnownFixture(t *testing.T) {
	campus := Position{Lat: 42.3382, Lng: -71.0877}
	north := Position{Lat: 42.3601, Lng: -71.0942}

	got := Distance(campus, north)
	if math.Abs(got-2.5) > 0.1 {
		t.Fatalf("Distance() = %.3f km, want 2.5 ± 0.1", got)
	}
}

func TestDistanceSymmetricAndZero(t *testing.T) {
	points := []Position{
		{Lat: 42.3382, Lng: -71.0877},
		{Lat: 40.7128, Lng: -74.0060},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 0, Lng: 0},
		{Lat: 89.9, Lng: 179.9},
	}

	for _, a := range points {
		if d := Distance(a, a); d != 0 {
			t.Errorf("Distance(%v, %v) = %v, want 0", a, a, d)
		}
		for _, b := range points {
			ab, ba := Distance(a, b), Distance(b, a)
			if math.Abs(ab-ba) > 1e-9 {
				t.Errorf("Distance not symmetric for %v, %v: %v vs %v", a, b, ab, ba)
			}
		}
	}
}

func TestDistanceOutOfRangeIsDefined(t *testing.T) {
	d := Distance(Position{Lat: 120, Lng: 200}, Position{Lat: -95, Lng: -190})
	if math.IsNaN(d) || math.IsInf(d, 0) {
		t.Fatalf("Distance() = %v, want a finite value", d)
	}
}
