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
	"shipment-sim-service/internal/platform/obs"
	"shipment-sim-service/internal/ports"
)

const (
	// DefaultBaseSpeedMPS is the simulated vehicle speed when none is configured.
	DefaultBaseSpeedMPS = 20.0

	mirrorWriteAttempts = 2
	mirrorWriteDelay    = 250 * time.Millisecond
)

// TickOptions carries the optional explicit parameters of a tick. When
// TimeDelta is nil the elapsed wall-clock time since the last update is used;
// when SpeedMultiplier is nil it defaults to 1.
type TickOptions struct {
	TimeDelta       *float64
	SpeedMultiplier *float64
}

// TickResult reports the state after one tick attempt.
type TickResult struct {
	ShipmentID     string
	Status         domain.VehicleStatus
	Advanced       bool
	TraveledMeters float64
	RouteMeters    float64
}

// TickProcessor advances one simulation per invocation. The state store is
// authoritative; the relational mirror write is advisory and best-effort.
type TickProcessor struct {
	store        ports.StateStore
	repo         ports.ShipmentRepository
	baseSpeedMPS float64
	mirrorDelay  time.Duration
	now          func() time.Time
}

func NewTickProcessor(store ports.StateStore, repo ports.ShipmentRepository, baseSpeedMPS float64) *TickProcessor {
	if baseSpeedMPS <= 0 {
		baseSpeedMPS = DefaultBaseSpeedMPS
	}
	return &TickProcessor{
		store:        store,
		repo:         repo,
		baseSpeedMPS: baseSpeedMPS,
		mirrorDelay:  mirrorWriteDelay,
		now:          time.Now,
	}
}

// Tick runs the state machine for one shipment.
func (p *TickProcessor) Tick(ctx context.Context, shipmentID string, opts TickOptions) (_ TickResult, err error) {
	defer obs.Time(ctx, "tick.Tick")(&err)

	// Client errors are rejected before any state is touched.
	if strings.TrimSpace(shipmentID) == "" {
		return TickResult{}, fmt.Errorf("%w: shipment id must be non-empty", ErrInvalidTickRequest)
	}
	if opts.SpeedMultiplier != nil && *opts.SpeedMultiplier <= 0 {
		return TickResult{}, fmt.Errorf("%w: speed multiplier must be > 0", ErrInvalidTickRequest)
	}

	// 1. Load state; an absent entry self-heals the active set.
	vehicle, err := p.store.Get(ctx, shipmentID)
	if errors.Is(err, ports.ErrStateNotFound) {
		p.deregister(ctx, shipmentID)
		return TickResult{}, fmt.Errorf("tick %q: %w", shipmentID, ports.ErrStateNotFound)
	}
	if err != nil {
		return TickResult{}, fmt.Errorf("tick %q: load state: %w", shipmentID, err)
	}

	result := TickResult{
		ShipmentID:     shipmentID,
		Status:         vehicle.Status,
		TraveledMeters: vehicle.TraveledDistance,
		RouteMeters:    vehicle.RouteDistance,
	}

	// 2. Only En Route simulations advance; terminal entries are cleaned up.
	switch vehicle.Status {
	case domain.StatusEnRoute:
		// fall through to advancement
	case domain.StatusCompleted, domain.StatusPendingConfirmation, domain.StatusError:
		p.deregister(ctx, shipmentID)
		return result, nil
	case domain.StatusIdle:
		return result, nil
	default:
		return result, nil
	}

	// 3. Elapsed time: caller-supplied delta wins over wall clock. A
	// non-positive elapsed time is a skipped tick, not an error.
	var elapsedSeconds float64
	if opts.TimeDelta != nil {
		elapsedSeconds = *opts.TimeDelta
	} else {
		elapsedSeconds = p.now().Sub(vehicle.LastUpdate()).Seconds()
	}
	if elapsedSeconds <= 0 {
		return result, nil
	}

	speedMultiplier := 1.0
	if opts.SpeedMultiplier != nil {
		speedMultiplier = *opts.SpeedMultiplier
	}

	// 4. Interpolate. A failure here (including a missing route) is fatal to
	// this one simulation: mark it Error and stop ticking it.
	advance, err := geo.Advance(vehicle.Route, vehicle.TraveledDistance, elapsedSeconds, p.baseSpeedMPS, speedMultiplier)
	if err != nil {
		p.markBroken(ctx, shipmentID)
		return TickResult{}, fmt.Errorf("tick %q: %w: %v", shipmentID, ErrInterpolationFailed, err)
	}

	// 5. Completion clamp: the simulation cannot self-declare Completed;
	// reaching the end of the route awaits external delivery confirmation.
	newStatus := domain.StatusEnRoute
	traveled := advance.TraveledMeters
	if advance.Completed || traveled >= vehicle.RouteDistance {
		traveled = vehicle.RouteDistance
		newStatus = domain.StatusPendingConfirmation
	}

	// 6. Persist through the guarded read-modify-write.
	updated, err := p.store.Update(ctx, shipmentID, func(v *domain.SimulatedVehicle) error {
		v.CurrentPosition = advance.Position
		v.Bearing = advance.Bearing
		v.TraveledDistance = traveled
		v.Status = newStatus
		return nil
	})
	if errors.Is(err, ports.ErrStateNotFound) {
		p.deregister(ctx, shipmentID)
		return TickResult{}, fmt.Errorf("tick %q: %w", shipmentID, ports.ErrStateNotFound)
	}
	if err != nil {
		return TickResult{}, fmt.Errorf("tick %q: persist state: %w", shipmentID, err)
	}

	// 7. Best-effort relational mirror; never fails the tick.
	p.mirrorLocation(ctx, updated)

	// 8. Terminal statuses leave the active set.
	if newStatus.IsTerminal() {
		p.deregister(ctx, shipmentID)
	}

	result.Status = newStatus
	result.Advanced = true
	result.TraveledMeters = traveled
	return result, nil
}

// deregister removes the shipment from the active set, logging failures.
func (p *TickProcessor) deregister(ctx context.Context, shipmentID string) {
	if err := p.store.RemoveActive(ctx, shipmentID); err != nil {
		log.Printf("op=tick shipment_id=%s deregister failed: %v", shipmentID, err)
	}
}

// markBroken transitions a simulation to Error and deregisters it so the
// coordinator stops dispatching ticks for it.
func (p *TickProcessor) markBroken(ctx context.Context, shipmentID string) {
	_, err := p.store.Update(ctx, shipmentID, func(v *domain.SimulatedVehicle) error {
		v.Status = domain.StatusError
		return nil
	})
	if err != nil {
		log.Printf("op=tick shipment_id=%s persist error status failed: %v", shipmentID, err)
	}
	p.deregister(ctx, shipmentID)
}

// mirrorLocation writes the latest position to the relational store with a
// bounded retry. Failures are logged and swallowed.
func (p *TickProcessor) mirrorLocation(ctx context.Context, v *domain.SimulatedVehicle) {
	bearing := v.Bearing
	loc := ports.LastKnownLocation{
		ShipmentID: v.ShipmentID,
		Longitude:  v.CurrentPosition.Lon,
		Latitude:   v.CurrentPosition.Lat,
		Bearing:    &bearing,
		UpdatedAt:  v.LastUpdate().UTC(),
	}

	var lastErr error
	for attempt := 1; attempt <= mirrorWriteAttempts; attempt++ {
		lastErr = p.repo.UpdateLastKnownLocation(ctx, loc)
		if lastErr == nil {
			return
		}
		if attempt == mirrorWriteAttempts {
			break
		}

		select {
		case <-ctx.Done():
			log.Printf("op=tick shipment_id=%s last-known-location mirror aborted: %v", v.ShipmentID, ctx.Err())
			return
		case <-time.After(p.mirrorDelay):
		}
	}

	log.Printf("op=tick shipment_id=%s last-known-location mirror failed after %d attempts: %v",
		v.ShipmentID, mirrorWriteAttempts, lastErr)
}
