package ports

import (
	"context"
	"errors"

	"shipment-sim-service/internal/domain"
)

// ErrStateNotFound reports an absent (or self-healed malformed) vehicle state.
// It is distinct from transport or serialization failures, which surface as
// their own errors.
var ErrStateNotFound = errors.New("simulation state not found")

// StateStore is the persistence boundary for simulation state, keyed by
// shipment ID, plus the active-simulation membership registry. Implementations
// round-trip to external storage on every call; there is no in-process cache.
type StateStore interface {
	// Get returns the vehicle state for a shipment, or ErrStateNotFound.
	// Malformed payloads (missing mandatory fields) are treated as not found
	// and may be deleted by the implementation.
	Get(ctx context.Context, shipmentID string) (*domain.SimulatedVehicle, error)

	// Set writes the full state, overwriting any prior value (last writer wins).
	Set(ctx context.Context, shipmentID string, v *domain.SimulatedVehicle) error

	// Update performs a read-modify-write under a compare-and-swap guard.
	// The mutate function receives the current state and edits it in place;
	// LastUpdateTime is refreshed on every successful update regardless of
	// what mutate touched. Returns ErrStateNotFound when no prior state
	// exists (an update cannot create state).
	Update(ctx context.Context, shipmentID string, mutate func(*domain.SimulatedVehicle) error) (*domain.SimulatedVehicle, error)

	// Delete removes the state. Deleting an absent key is success.
	Delete(ctx context.Context, shipmentID string) error

	// AddActive and RemoveActive are idempotent membership operations on the
	// active-simulation registry.
	AddActive(ctx context.Context, shipmentID string) error
	RemoveActive(ctx context.Context, shipmentID string) error

	// ListActive returns the current active-set members in no defined order.
	ListActive(ctx context.Context) ([]string, error)
}
