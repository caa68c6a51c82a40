package ports

import (
	"context"
	"errors"

	"shipment-sim-service/internal/domain"
)

// ErrNoRoute reports that the provider responded but found no route between
// the given points. Callers degrade gracefully on this condition.
var ErrNoRoute = errors.New("no route found")

// ErrRouteProviderUnavailable reports a misconfigured or unreachable
// directions provider. This is a hard failure, unlike ErrNoRoute.
var ErrRouteProviderUnavailable = errors.New("route provider unavailable")

// RouteProvider fetches driving route geometry between two points.
type RouteProvider interface {
	// FetchRoute returns an ordered (lon, lat) line-string from origin to
	// destination, ErrNoRoute when the provider finds none, or
	// ErrRouteProviderUnavailable when the provider is misconfigured.
	FetchRoute(ctx context.Context, origin, destination domain.Coordinates) ([]domain.Coordinates, error)
}
