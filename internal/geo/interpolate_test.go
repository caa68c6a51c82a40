package geo

import (
	"errors"
	"math"
	"testing"

	"shipment-sim-service/internal/domain"
)

var (
	newYork    = domain.Coordinates{Lon: -74.0060, Lat: 40.7128}
	losAngeles = domain.Coordinates{Lon: -118.2437, Lat: 34.0522}
)

func TestDistanceMetersCrossCountry(t *testing.T) {
	d := DistanceMeters(newYork, losAngeles)

	// NYC -> LA great-circle distance is roughly 3935 km.
	if d < 3.90e6 || d > 3.97e6 {
		t.Fatalf("distance = %f, want ~3.935e6", d)
	}
}

func TestAdvancePartialProgress(t *testing.T) {
	route := []domain.Coordinates{newYork, losAngeles}

	// 3600s at 20 m/s with multiplier 1 = 72 km, well short of the route.
	res, err := Advance(route, 0, 3600, 20, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Completed {
		t.Fatal("expected partial progress, got completed")
	}
	if math.Abs(res.TraveledMeters-72000) > 1e-6 {
		t.Fatalf("traveled = %f, want 72000", res.TraveledMeters)
	}
	if res.Position == newYork || res.Position == losAngeles {
		t.Fatalf("position should be between endpoints, got %+v", res.Position)
	}

	wantBearing := BearingDegrees(newYork, losAngeles)
	if math.Abs(res.Bearing-wantBearing) > 1e-9 {
		t.Fatalf("bearing = %f, want %f", res.Bearing, wantBearing)
	}
}

func TestAdvanceMonotonicProgress(t *testing.T) {
	route := []domain.Coordinates{newYork, losAngeles}
	total := RouteLengthMeters(route)

	traveled := 0.0
	for i := 0; i < 100; i++ {
		res, err := Advance(route, traveled, 600, 20, 5)
		if err != nil {
			t.Fatalf("tick %d: unexpected error: %v", i, err)
		}
		if res.TraveledMeters < traveled {
			t.Fatalf("tick %d: traveled decreased from %f to %f", i, traveled, res.TraveledMeters)
		}
		if res.TraveledMeters > total {
			t.Fatalf("tick %d: traveled %f exceeds route length %f", i, res.TraveledMeters, total)
		}
		traveled = res.TraveledMeters
	}
}

func TestAdvanceClampsAtRouteEnd(t *testing.T) {
	route := []domain.Coordinates{newYork, losAngeles}
	total := RouteLengthMeters(route)

	// One enormous tick overshoots the route length.
	res, err := Advance(route, 0, 1e9, 20, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Completed {
		t.Fatal("expected completed")
	}
	if res.TraveledMeters != total {
		t.Fatalf("traveled = %f, want exactly %f", res.TraveledMeters, total)
	}
	if res.Position != losAngeles {
		t.Fatalf("position = %+v, want final point %+v", res.Position, losAngeles)
	}
}

func TestAdvanceSkipsZeroLengthSegments(t *testing.T) {
	route := []domain.Coordinates{
		newYork,
		newYork, // duplicate point, zero-length segment
		losAngeles,
	}

	res, err := Advance(route, 0, 3600, 20, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.TraveledMeters-72000) > 1e-6 {
		t.Fatalf("traveled = %f, want 72000", res.TraveledMeters)
	}
}

func TestAdvanceIdenticalPointsReportsZeroMovement(t *testing.T) {
	route := []domain.Coordinates{newYork, newYork}

	res, err := Advance(route, 0, 3600, 20, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TraveledMeters != 0 {
		t.Fatalf("traveled = %f, want 0", res.TraveledMeters)
	}
	if !res.Completed {
		t.Fatal("degenerate route should report completed")
	}
}

func TestAdvanceNoRoute(t *testing.T) {
	for _, route := range [][]domain.Coordinates{nil, {newYork}} {
		_, err := Advance(route, 0, 60, 20, 1)
		if !errors.Is(err, ErrNoRoute) {
			t.Fatalf("route=%v: err = %v, want ErrNoRoute", route, err)
		}
	}
}

func TestAdvanceRejectsBadInputs(t *testing.T) {
	route := []domain.Coordinates{newYork, losAngeles}

	cases := []struct {
		name       string
		traveled   float64
		elapsed    float64
		baseSpeed  float64
		multiplier float64
	}{
		{"zero elapsed", 0, 0, 20, 1},
		{"negative elapsed", 0, -1, 20, 1},
		{"zero base speed", 0, 60, 0, 1},
		{"zero multiplier", 0, 60, 20, 0},
		{"negative traveled", -5, 60, 20, 1},
	}

	for _, tc := range cases {
		if _, err := Advance(route, tc.traveled, tc.elapsed, tc.baseSpeed, tc.multiplier); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestAdvanceRejectsMalformedRoutePoints(t *testing.T) {
	route := []domain.Coordinates{newYork, {Lon: -74, Lat: 200}}

	_, err := Advance(route, 0, 60, 20, 1)
	if err == nil || errors.Is(err, ErrNoRoute) {
		t.Fatalf("err = %v, want a computation error distinct from ErrNoRoute", err)
	}
}

func TestAdvanceDeterminism(t *testing.T) {
	route := []domain.Coordinates{
		newYork,
		{Lon: -87.6298, Lat: 41.8781},
		{Lon: -104.9903, Lat: 39.7392},
		losAngeles,
	}

	first, err := Advance(route, 1500, 7200, 20, 2.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Advance(route, 1500, 7200, 20, 2.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestBearingDegreesRange(t *testing.T) {
	pairs := [][2]domain.Coordinates{
		{newYork, losAngeles},
		{losAngeles, newYork},
		{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 1}},
		{{Lon: 0, Lat: 1}, {Lon: 0, Lat: 0}},
	}

	for _, p := range pairs {
		b := BearingDegrees(p[0], p[1])
		if b < 0 || b >= 360 {
			t.Fatalf("bearing %f out of [0, 360)", b)
		}
	}

	// Due north.
	if b := BearingDegrees(domain.Coordinates{Lon: 0, Lat: 0}, domain.Coordinates{Lon: 0, Lat: 1}); math.Abs(b) > 1e-9 {
		t.Fatalf("northward bearing = %f, want 0", b)
	}
	// Due south.
	if b := BearingDegrees(domain.Coordinates{Lon: 0, Lat: 1}, domain.Coordinates{Lon: 0, Lat: 0}); math.Abs(b-180) > 1e-9 {
		t.Fatalf("southward bearing = %f, want 180", b)
	}
}
