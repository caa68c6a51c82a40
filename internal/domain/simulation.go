package domain

import "time"

// SimulationInput is the write-once value object the Assembler produces from
// scattered relational records. Optional descriptive fields stay nil when the
// source column is null; they are never coerced to empty strings.
type SimulationInput struct {
	ShipmentID             string
	ScenarioID             string
	OriginCoordinates      Coordinates
	DestinationCoordinates Coordinates
	RequestedDeliveryDate  time.Time
	// RouteGeometry is nil when the directions provider failed or returned no
	// route; consumers must tolerate the absence.
	RouteGeometry []Coordinates
	InitialStatus ShipmentStatus

	CustomerPONumber       *string
	CustomerShipmentNumber *string
	ItemDescription        *string
	TotalWeight            *string
	Remarks                *string
	DriverName             *string
	DriverPhone            *string
	DriverIC               *string
	TruckID                *string
	RecipientName          *string
	RecipientPhone         *string
	OriginAddress          *string
	DestinationAddress     *string
}

// SimulatedVehicle is the mutable simulation state, one instance per active
// shipment, persisted in the state store under the shipment ID. Descriptive
// fields are immutable copies taken from SimulationInput at creation.
type SimulatedVehicle struct {
	ID         string        `json:"id"`
	ShipmentID string        `json:"shipmentId"`
	Status     VehicleStatus `json:"status"`

	CurrentPosition Coordinates   `json:"currentPosition"`
	Bearing         float64       `json:"bearing"`
	Route           []Coordinates `json:"route,omitempty"`
	// RouteDistance is the total path length in meters and the completion
	// threshold once a route exists.
	RouteDistance    float64 `json:"routeDistance"`
	TraveledDistance float64 `json:"traveledDistance"`
	// LastUpdateTime is epoch milliseconds of the last successful tick.
	LastUpdateTime int64 `json:"lastUpdateTime"`

	CustomerPONumber       *string `json:"customerPONumber,omitempty"`
	CustomerShipmentNumber *string `json:"customerShipmentNumber,omitempty"`
	ItemDescription        *string `json:"itemDescription,omitempty"`
	TotalWeight            *string `json:"totalWeight,omitempty"`
	Remarks                *string `json:"remarks,omitempty"`
	DriverName             *string `json:"driverName,omitempty"`
	DriverPhone            *string `json:"driverPhone,omitempty"`
	DriverIC               *string `json:"driverIC,omitempty"`
	TruckID                *string `json:"truckId,omitempty"`
	RecipientName          *string `json:"recipientName,omitempty"`
	RecipientPhone         *string `json:"recipientPhone,omitempty"`
	OriginAddress          *string `json:"originAddress,omitempty"`
	DestinationAddress     *string `json:"destinationAddress,omitempty"`
}

// HasRoute reports whether the vehicle carries a usable polyline.
func (v *SimulatedVehicle) HasRoute() bool {
	return len(v.Route) >= 2
}

// LastUpdate returns LastUpdateTime as a time.Time.
func (v *SimulatedVehicle) LastUpdate() time.Time {
	return time.UnixMilli(v.LastUpdateTime)
}
