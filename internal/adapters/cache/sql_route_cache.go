// Package cache provides SQL-backed persistent caches for external lookups.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"shipment-sim-service/internal/domain"
	"shipment-sim-service/internal/platform/obs"
)

// SQLRouteCache is a SQL-backed cache for origin->destination route geometry.
// Geometry is stored as a JSON array of [lon, lat] pairs.
type SQLRouteCache struct {
	DB *sql.DB
}

func NewSQLRouteCache(db *sql.DB) *SQLRouteCache {
	return &SQLRouteCache{DB: db}
}

// Get returns the cached geometry for an origin/destination pair.
// The second return value reports whether an entry existed.
func (s *SQLRouteCache) Get(
	ctx context.Context,
	origin string,
	destination string,
) (_ []domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("route cache: db is nil")
	}

	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return nil, false, errors.New("get route cache: origin and destination must not be empty")
	}

	q := `
	SELECT geometry
	FROM route_cache
	WHERE origin = $1 AND destination = $2;
	`

	var raw string
	queryErr := s.DB.QueryRowContext(ctx, q, origin, destination).Scan(&raw)
	if errors.Is(queryErr, sql.ErrNoRows) {
		return nil, false, nil
	}
	if queryErr != nil {
		return nil, false, fmt.Errorf("get route cache: query route_cache table: %w", queryErr)
	}

	var pairs [][]float64
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, false, fmt.Errorf("get route cache: decode geometry: %w", err)
	}

	route := make([]domain.Coordinates, 0, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, false, fmt.Errorf("get route cache: geometry point #%d has %d components", i, len(p))
		}
		route = append(route, domain.Coordinates{Lon: p[0], Lat: p[1]})
	}

	return route, true, nil
}

// Put stores route geometry for an origin/destination pair.
func (s *SQLRouteCache) Put(
	ctx context.Context,
	origin string,
	destination string,
	route []domain.Coordinates,
) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return errors.New("insert route cache: origin and destination must not be empty")
	}
	if len(route) == 0 {
		return errors.New("insert route cache: route must not be empty")
	}

	pairs := make([][]float64, 0, len(route))
	for _, c := range route {
		pairs = append(pairs, c.CoordsToList())
	}

	raw, err := json.Marshal(pairs)
	if err != nil {
		return fmt.Errorf("insert route cache: encode geometry: %w", err)
	}

	q := `
	INSERT INTO route_cache (origin, destination, geometry)
	VALUES ($1, $2, $3)
	ON CONFLICT (origin, destination) DO UPDATE
	SET geometry = EXCLUDED.geometry;
	`

	if _, err := s.DB.ExecContext(ctx, q, origin, destination, string(raw)); err != nil {
		return fmt.Errorf("insert route cache: %w", err)
	}

	return nil
}
