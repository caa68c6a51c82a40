package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Immutable geographic coordinates (longitude, latitude) in WGS84 degrees.
type Coordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Validate checks both components against the WGS84 ranges.
func (c Coordinates) Validate() error {
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %g out of range [-180, 180]", c.Lon)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %g out of range [-90, 90]", c.Lat)
	}
	return nil
}

// ParseCoordinates builds validated Coordinates from the decimal-as-string
// fields the relational layer stores. Nil or blank inputs are rejected, as are
// values outside the valid WGS84 ranges. Values are never clamped.
func ParseCoordinates(lonStr, latStr *string) (Coordinates, error) {
	if lonStr == nil || latStr == nil {
		return Coordinates{}, errors.New("longitude and latitude are required")
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(*lonStr), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parse longitude %q: %w", *lonStr, err)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(*latStr), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parse latitude %q: %w", *latStr, err)
	}

	c := Coordinates{Lon: lon, Lat: lat}
	if err := c.Validate(); err != nil {
		return Coordinates{}, err
	}

	return c, nil
}
