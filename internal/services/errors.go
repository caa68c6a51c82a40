package services

import "errors"

// Named failure conditions of the simulation pipeline. Callers branch on
// these with errors.Is; wrapping preserves the condition across layers.
var (
	// Assembly pipeline failures, in pipeline order.
	ErrShipmentNotFound              = errors.New("shipment not found")
	ErrMissingOriginData             = errors.New("missing origin pickup or address data")
	ErrInvalidOriginCoordinates      = errors.New("invalid origin coordinates")
	ErrMissingDestinationData        = errors.New("missing destination dropoff or address data")
	ErrInvalidDestinationCoordinates = errors.New("invalid destination coordinates")
	ErrMissingDeliveryDate           = errors.New("missing or invalid requested delivery date")
	ErrRouteServiceUnavailable       = errors.New("route service unavailable")

	// Tick failures.
	ErrInvalidTickRequest  = errors.New("invalid tick request")
	ErrInterpolationFailed = errors.New("route interpolation failed")
)
