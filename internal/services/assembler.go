package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"shipment-sim-service/internal/domain"
	"shipment-sim-service/internal/platform/obs"
	"shipment-sim-service/internal/ports"
)

// Assembler gathers the scattered relational records for a shipment and
// produces a validated SimulationInput. All steps are read-only; the pipeline
// short-circuits on the first failure with a named error condition.
//
// Safe for concurrent use across distinct shipment IDs; it holds no mutable
// state.
type Assembler struct {
	repo   ports.ShipmentRepository
	routes ports.RouteProvider
}

func NewAssembler(repo ports.ShipmentRepository, routes ports.RouteProvider) *Assembler {
	return &Assembler{repo: repo, routes: routes}
}

// Assemble runs the sequential validation pipeline for one shipment.
func (a *Assembler) Assemble(ctx context.Context, shipmentID string) (_ *domain.SimulationInput, err error) {
	defer obs.Time(ctx, "assembler.Assemble")(&err)

	if strings.TrimSpace(shipmentID) == "" {
		return nil, fmt.Errorf("%w: empty shipment id", ErrShipmentNotFound)
	}

	// 1. Core shipment record.
	shipment, err := a.repo.GetShipment(ctx, shipmentID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrShipmentNotFound, shipmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("assemble %q: get shipment: %w", shipmentID, err)
	}

	// 2–3. First pickup with joined address, parsed origin coordinates.
	pickup, err := a.repo.GetFirstPickup(ctx, shipmentID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("%w: shipment %q has no pickup", ErrMissingOriginData, shipmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("assemble %q: get first pickup: %w", shipmentID, err)
	}
	if pickup.Address == nil {
		return nil, fmt.Errorf("%w: pickup %q has no address", ErrMissingOriginData, pickup.StopID)
	}

	origin, err := domain.ParseCoordinates(pickup.Address.Longitude, pickup.Address.Latitude)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOriginCoordinates, err)
	}

	// 4–5. First dropoff with joined address, parsed destination coordinates.
	dropoff, err := a.repo.GetFirstDropoff(ctx, shipmentID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("%w: shipment %q has no dropoff", ErrMissingDestinationData, shipmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("assemble %q: get first dropoff: %w", shipmentID, err)
	}
	if dropoff.Address == nil {
		return nil, fmt.Errorf("%w: dropoff %q has no address", ErrMissingDestinationData, dropoff.StopID)
	}

	destination, err := domain.ParseCoordinates(dropoff.Address.Longitude, dropoff.Address.Latitude)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDestinationCoordinates, err)
	}

	// 6. Requested delivery date from the dropoff's scheduled-date field.
	if dropoff.ScheduledDate == nil || dropoff.ScheduledDate.IsZero() {
		return nil, fmt.Errorf("%w: dropoff %q", ErrMissingDeliveryDate, dropoff.StopID)
	}
	requestedDeliveryDate := *dropoff.ScheduledDate

	// 7. Route geometry. Provider misconfiguration is a hard failure; a
	// missing route or a mid-call failure degrades to a nil route with a
	// warning — the tick processor guards on route presence independently.
	route, err := a.routes.FetchRoute(ctx, origin, destination)
	if errors.Is(err, ports.ErrRouteProviderUnavailable) {
		return nil, fmt.Errorf("%w: %v", ErrRouteServiceUnavailable, err)
	}
	if err != nil {
		log.Printf("op=assemble shipment_id=%s route unavailable, proceeding without geometry: %v", shipmentID, err)
		route = nil
	}

	// 8. Optional trip and custom-detail records; absence is not an error.
	trip, err := a.repo.GetTrip(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("assemble %q: get trip: %w", shipmentID, err)
	}

	details, err := a.repo.GetCustomDetails(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("assemble %q: get custom details: %w", shipmentID, err)
	}

	input := &domain.SimulationInput{
		ShipmentID:             shipmentID,
		ScenarioID:             "sim-" + shipmentID,
		OriginCoordinates:      origin,
		DestinationCoordinates: destination,
		RequestedDeliveryDate:  requestedDeliveryDate,
		RouteGeometry:          route,
		InitialStatus:          shipment.Status,
		CustomerPONumber:       shipment.CustomerPONumber,
		CustomerShipmentNumber: shipment.CustomerShipmentNumber,
		Remarks:                shipment.Remarks,
		OriginAddress:          formatAddress(pickup.Address),
		DestinationAddress:     formatAddress(dropoff.Address),
	}

	if trip != nil {
		input.DriverName = trip.DriverName
		input.DriverPhone = trip.DriverPhone
		input.DriverIC = trip.DriverIC
		input.TruckID = trip.TruckID
	}
	if details != nil {
		input.ItemDescription = details.ItemDescription
		input.TotalWeight = details.TotalWeight
		input.RecipientName = details.RecipientName
		input.RecipientPhone = details.RecipientPhone
	}

	return input, nil
}

// formatAddress joins the present address parts, or returns nil when every
// part is null. Optional fields are never coerced to empty strings.
func formatAddress(a *ports.AddressRecord) *string {
	if a == nil {
		return nil
	}

	parts := make([]string, 0, 3)
	for _, p := range []*string{a.Line1, a.City, a.State} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	if len(parts) == 0 {
		return nil
	}

	joined := strings.Join(parts, ", ")
	return &joined
}
