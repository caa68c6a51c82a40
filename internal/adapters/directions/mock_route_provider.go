package directions

import (
	"context"

	"shipment-sim-service/internal/domain"
	"shipment-sim-service/internal/ports"
)

// MockRouteProvider returns a fixed route (or error) for tests and local runs.
type MockRouteProvider struct {
	Route []domain.Coordinates
	Err   error
}

func (p *MockRouteProvider) FetchRoute(
	ctx context.Context,
	origin, destination domain.Coordinates,
) ([]domain.Coordinates, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	if len(p.Route) == 0 {
		return nil, ports.ErrNoRoute
	}
	return p.Route, nil
}
