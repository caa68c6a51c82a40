package domain

import "fmt"

// VehicleStatus is the closed status set of a simulated vehicle.
// Any other string is invalid data, not a new state.
type VehicleStatus string

const (
	StatusIdle                VehicleStatus = "Idle"
	StatusEnRoute             VehicleStatus = "En Route"
	StatusPendingConfirmation VehicleStatus = "Pending Delivery Confirmation"
	StatusCompleted           VehicleStatus = "Completed"
	StatusError               VehicleStatus = "Error"
)

// IsTerminal reports whether no further automatic advancement occurs.
func (s VehicleStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusPendingConfirmation, StatusError:
		return true
	case StatusIdle, StatusEnRoute:
		return false
	}
	return false
}

// ParseVehicleStatus rejects anything outside the closed set.
func ParseVehicleStatus(s string) (VehicleStatus, error) {
	switch VehicleStatus(s) {
	case StatusIdle, StatusEnRoute, StatusPendingConfirmation, StatusCompleted, StatusError:
		return VehicleStatus(s), nil
	}
	return "", fmt.Errorf("invalid vehicle status %q", s)
}

// ShipmentStatus is the closed status set carried on shipment records.
type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "PENDING"
	ShipmentAtPickup  ShipmentStatus = "AT_PICKUP"
	ShipmentInTransit ShipmentStatus = "IN_TRANSIT"
	ShipmentAtDropoff ShipmentStatus = "AT_DROPOFF"
	ShipmentDelivered ShipmentStatus = "DELIVERED"
	ShipmentException ShipmentStatus = "EXCEPTION"
)

// ParseShipmentStatus rejects anything outside the closed set.
func ParseShipmentStatus(s string) (ShipmentStatus, error) {
	switch ShipmentStatus(s) {
	case ShipmentPending, ShipmentAtPickup, ShipmentInTransit,
		ShipmentAtDropoff, ShipmentDelivered, ShipmentException:
		return ShipmentStatus(s), nil
	}
	return "", fmt.Errorf("invalid shipment status %q", s)
}
