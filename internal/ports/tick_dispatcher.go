package ports

import "context"

// TickDispatcher is the external call boundary the Coordinator uses to fan
// out tick work. A dispatch triggers one Tick Processor invocation remotely;
// only success or failure comes back, no payload contract.
type TickDispatcher interface {
	DispatchTick(ctx context.Context, shipmentID string) error
}
