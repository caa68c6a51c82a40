package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"shipment-sim-service/internal/domain"
	"shipment-sim-service/internal/geo"
	"shipment-sim-service/internal/ports"

	"github.com/google/uuid"
)

// StartResult reports the outcome of a start attempt.
type StartResult struct {
	Started bool
	// Reason explains a non-start ("already running").
	Reason string
	// Warning reports a degraded but successful start (state written, active
	// registration failed; the simulation exists but will not be ticked until
	// it is re-registered).
	Warning string
	Vehicle *domain.SimulatedVehicle
}

// Initializer converts a SimulationInput into the first SimulatedVehicle
// state and registers it as active. Starts are idempotent per shipment ID.
type Initializer struct {
	store ports.StateStore
	newID func() string
	now   func() time.Time
}

func NewInitializer(store ports.StateStore) *Initializer {
	return &Initializer{
		store: store,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Start creates and registers a new simulation unless one already exists.
func (i *Initializer) Start(ctx context.Context, input *domain.SimulationInput) (StartResult, error) {
	if input == nil {
		return StartResult{}, errors.New("start simulation: input must be non-nil")
	}
	if strings.TrimSpace(input.ShipmentID) == "" {
		return StartResult{}, errors.New("start simulation: shipment id must be non-empty")
	}

	existing, err := i.store.Get(ctx, input.ShipmentID)
	if err != nil && !errors.Is(err, ports.ErrStateNotFound) {
		return StartResult{}, fmt.Errorf("start simulation %q: check existing state: %w", input.ShipmentID, err)
	}
	if existing != nil {
		// Duplicate start is a no-op, never an overwrite.
		return StartResult{
			Started: false,
			Reason:  "already running",
			Vehicle: existing,
		}, nil
	}

	vehicle := buildInitialVehicle(input, i.newID(), i.now())

	if err := i.store.Set(ctx, input.ShipmentID, vehicle); err != nil {
		// Hard failure: never register an active entry with no backing state.
		return StartResult{}, fmt.Errorf("start simulation %q: persist initial state: %w", input.ShipmentID, err)
	}

	if err := i.store.AddActive(ctx, input.ShipmentID); err != nil {
		// Asymmetric tolerance: the state exists, so the start succeeded; the
		// simulation just will not be ticked until re-registered.
		log.Printf("op=start shipment_id=%s scenario_id=%s active registration failed: %v",
			input.ShipmentID, input.ScenarioID, err)
		return StartResult{
			Started: true,
			Warning: "simulation created but not registered as active",
			Vehicle: vehicle,
		}, nil
	}

	log.Printf("op=start shipment_id=%s scenario_id=%s status=%q route_points=%d",
		input.ShipmentID, input.ScenarioID, vehicle.Status, len(vehicle.Route))

	return StartResult{Started: true, Vehicle: vehicle}, nil
}

// buildInitialVehicle derives the first state from the assembled input.
// A shipment already in transit starts En Route even without route geometry;
// tick processing guards on route presence independently.
func buildInitialVehicle(input *domain.SimulationInput, id string, now time.Time) *domain.SimulatedVehicle {
	status := domain.StatusIdle
	if input.InitialStatus == domain.ShipmentInTransit {
		status = domain.StatusEnRoute
	}

	position := input.OriginCoordinates
	routeDistance := 0.0
	if len(input.RouteGeometry) >= 2 {
		position = input.RouteGeometry[0]
		routeDistance = geo.RouteLengthMeters(input.RouteGeometry)
	}

	return &domain.SimulatedVehicle{
		ID:               id,
		ShipmentID:       input.ShipmentID,
		Status:           status,
		CurrentPosition:  position,
		Bearing:          0,
		Route:            input.RouteGeometry,
		RouteDistance:    routeDistance,
		TraveledDistance: 0,
		LastUpdateTime:   now.UnixMilli(),

		CustomerPONumber:       input.CustomerPONumber,
		CustomerShipmentNumber: input.CustomerShipmentNumber,
		ItemDescription:        input.ItemDescription,
		TotalWeight:            input.TotalWeight,
		Remarks:                input.Remarks,
		DriverName:             input.DriverName,
		DriverPhone:            input.DriverPhone,
		DriverIC:               input.DriverIC,
		TruckID:                input.TruckID,
		RecipientName:          input.RecipientName,
		RecipientPhone:         input.RecipientPhone,
		OriginAddress:          input.OriginAddress,
		DestinationAddress:     input.DestinationAddress,
	}
}
