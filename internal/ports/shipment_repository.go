package ports

import (
	"context"
	"errors"
	"time"

	"shipment-sim-service/internal/domain"
)

// ErrNotFound reports an absent relational record.
var ErrNotFound = errors.New("record not found")

// ShipmentRecord is the core shipment row. Nullable columns arrive as
// pointers; they are never coerced to empty strings at this boundary.
type ShipmentRecord struct {
	ID                     string
	Status                 domain.ShipmentStatus
	CustomerPONumber       *string
	CustomerShipmentNumber *string
	Remarks                *string
}

// AddressRecord carries the nullable decimal-as-string geographic fields the
// relational layer stores. Parsing happens in the Assembler, not here.
type AddressRecord struct {
	Line1     *string
	City      *string
	State     *string
	Longitude *string
	Latitude  *string
}

// StopWithAddress is a pickup or dropoff leg joined with its address,
// selected by ordering position.
type StopWithAddress struct {
	StopID        string
	ShipmentID    string
	Position      int
	ScheduledDate *time.Time
	Address       *AddressRecord
}

// TripRecord carries driver and truck assignment data for a shipment.
type TripRecord struct {
	DriverName  *string
	DriverPhone *string
	DriverIC    *string
	TruckID     *string
}

// CustomShipmentDetailRecord carries supplemental shipment attributes.
type CustomShipmentDetailRecord struct {
	ItemDescription *string
	TotalWeight     *string
	RecipientName   *string
	RecipientPhone  *string
}

// LastKnownLocation is the best-effort mirror written back to the relational
// store after a tick. The state store remains authoritative.
type LastKnownLocation struct {
	ShipmentID string
	Longitude  float64
	Latitude   float64
	Bearing    *float64
	UpdatedAt  time.Time
}

// ShipmentRepository is the relational data-access boundary. Reads return
// typed records per query shape; the single write is the advisory
// last-known-location mirror.
type ShipmentRepository interface {
	GetShipment(ctx context.Context, shipmentID string) (*ShipmentRecord, error)

	// GetFirstPickup and GetFirstDropoff return the leg with the lowest
	// ordering position, joined with its address, or ErrNotFound.
	GetFirstPickup(ctx context.Context, shipmentID string) (*StopWithAddress, error)
	GetFirstDropoff(ctx context.Context, shipmentID string) (*StopWithAddress, error)

	// GetTrip and GetCustomDetails return (nil, nil) when no record exists;
	// absence is not an error for these optional shapes.
	GetTrip(ctx context.Context, shipmentID string) (*TripRecord, error)
	GetCustomDetails(ctx context.Context, shipmentID string) (*CustomShipmentDetailRecord, error)

	UpdateLastKnownLocation(ctx context.Context, loc LastKnownLocation) error
}
