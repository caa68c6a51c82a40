// Package geo implements pure great-circle math for advancing a simulated
// vehicle along a route polyline. Nothing here performs I/O; results are
// deterministic for identical inputs.
package geo

import (
	"errors"
	"fmt"
	"math"

	"shipment-sim-service/internal/domain"
)

const earthRadiusMeters = 6371000.0

// ErrNoRoute signals a missing or degenerate polyline (< 2 points). It is a
// distinct condition from a computation error on malformed route data.
var ErrNoRoute = errors.New("route has fewer than 2 points")

// AdvanceResult is the outcome of one interpolation step.
type AdvanceResult struct {
	Position       domain.Coordinates
	Bearing        float64
	TraveledMeters float64
	// Completed is true when the target distance reached or passed the end of
	// the route and the traveled distance was clamped to the route length.
	Completed bool
}

// DistanceMeters returns the haversine great-circle distance between two points.
func DistanceMeters(a, b domain.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BearingDegrees returns the initial great-circle bearing from a to b,
// normalized to [0, 360).
func BearingDegrees(a, b domain.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// RouteLengthMeters sums the great-circle lengths of all polyline segments.
func RouteLengthMeters(route []domain.Coordinates) float64 {
	total := 0.0
	for i := 1; i < len(route); i++ {
		total += DistanceMeters(route[i-1], route[i])
	}
	return total
}

// Advance moves a vehicle along its route polyline.
//
// The target distance is traveledMeters + elapsedSeconds*baseSpeed*speedMultiplier.
// The polyline is walked by cumulative segment length to locate the point at
// the target distance; the reported bearing is the initial bearing of the
// segment being traversed. A target at or beyond the route length clamps to
// the final point. Zero-length segments are skipped.
//
// elapsedSeconds must be > 0; callers are expected to treat non-positive
// elapsed time as a skipped tick before calling Advance.
func Advance(
	route []domain.Coordinates,
	traveledMeters float64,
	elapsedSeconds float64,
	baseSpeedMPS float64,
	speedMultiplier float64,
) (AdvanceResult, error) {
	if len(route) < 2 {
		return AdvanceResult{}, ErrNoRoute
	}
	if elapsedSeconds <= 0 {
		return AdvanceResult{}, fmt.Errorf("elapsedSeconds must be > 0, got %g", elapsedSeconds)
	}
	if baseSpeedMPS <= 0 {
		return AdvanceResult{}, fmt.Errorf("baseSpeedMPS must be > 0, got %g", baseSpeedMPS)
	}
	if speedMultiplier <= 0 {
		return AdvanceResult{}, fmt.Errorf("speedMultiplier must be > 0, got %g", speedMultiplier)
	}
	if traveledMeters < 0 || math.IsNaN(traveledMeters) {
		return AdvanceResult{}, fmt.Errorf("traveledMeters must be >= 0, got %g", traveledMeters)
	}
	for i, p := range route {
		if err := p.Validate(); err != nil {
			return AdvanceResult{}, fmt.Errorf("route point %d: %w", i, err)
		}
	}

	totalLength := RouteLengthMeters(route)
	target := traveledMeters + elapsedSeconds*baseSpeedMPS*speedMultiplier

	// Degenerate route (e.g. two identical points): report zero movement at
	// the final point rather than failing.
	if totalLength <= 0 {
		last := route[len(route)-1]
		return AdvanceResult{
			Position:       last,
			Bearing:        0,
			TraveledMeters: 0,
			Completed:      true,
		}, nil
	}

	if target >= totalLength {
		last := route[len(route)-1]
		return AdvanceResult{
			Position:       last,
			Bearing:        lastSegmentBearing(route),
			TraveledMeters: totalLength,
			Completed:      true,
		}, nil
	}

	walked := 0.0
	for i := 1; i < len(route); i++ {
		segStart := route[i-1]
		segEnd := route[i]
		segLen := DistanceMeters(segStart, segEnd)
		if segLen <= 0 {
			continue
		}

		if walked+segLen >= target {
			frac := (target - walked) / segLen
			pos := domain.Coordinates{
				Lon: segStart.Lon + (segEnd.Lon-segStart.Lon)*frac,
				Lat: segStart.Lat + (segEnd.Lat-segStart.Lat)*frac,
			}
			return AdvanceResult{
				Position:       pos,
				Bearing:        BearingDegrees(segStart, segEnd),
				TraveledMeters: target,
				Completed:      false,
			}, nil
		}
		walked += segLen
	}

	// Floating point drift past the last segment: clamp to the final point.
	last := route[len(route)-1]
	return AdvanceResult{
		Position:       last,
		Bearing:        lastSegmentBearing(route),
		TraveledMeters: totalLength,
		Completed:      true,
	}, nil
}

// lastSegmentBearing returns the bearing of the final non-zero-length segment.
func lastSegmentBearing(route []domain.Coordinates) float64 {
	for i := len(route) - 1; i >= 1; i-- {
		if DistanceMeters(route[i-1], route[i]) > 0 {
			return BearingDegrees(route[i-1], route[i])
		}
	}
	return 0
}
