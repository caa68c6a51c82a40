package dto

type StartSimulationRequest struct {
	ShipmentID string `json:"shipment_id"`
}

type StartSimulationResponse struct {
	Started bool   `json:"started"`
	Reason  string `json:"reason,omitempty"`
	Warning string `json:"warning,omitempty"`
}

type TickRequest struct {
	ShipmentID      string   `json:"shipment_id"`
	TimeDelta       *float64 `json:"time_delta,omitempty"`
	SpeedMultiplier *float64 `json:"speed_multiplier,omitempty"`
}

type TickResponse struct {
	ShipmentID     string  `json:"shipment_id"`
	Status         string  `json:"status"`
	Advanced       bool    `json:"advanced"`
	TraveledMeters float64 `json:"traveled_meters"`
	RouteMeters    float64 `json:"route_meters"`
}

type PositionResponse struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type VehicleResponse struct {
	ID               string           `json:"id"`
	ShipmentID       string           `json:"shipment_id"`
	Status           string           `json:"status"`
	CurrentPosition  PositionResponse `json:"current_position"`
	Bearing          float64          `json:"bearing"`
	RouteDistance    float64          `json:"route_distance"`
	TraveledDistance float64          `json:"traveled_distance"`
	LastUpdateTime   int64            `json:"last_update_time"`
	DriverName       *string          `json:"driver_name,omitempty"`
	TruckID          *string          `json:"truck_id,omitempty"`
	RecipientName    *string          `json:"recipient_name,omitempty"`
}

type SweepResponse struct {
	Enqueued int `json:"enqueued"`
	Skipped  int `json:"skipped"`
	Cleaned  int `json:"cleaned"`
	Errored  int `json:"errored"`
}
