package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"shipment-sim-service/internal/domain"
	"shipment-sim-service/internal/platform/obs"
	"shipment-sim-service/internal/ports"
)

// SweepSummary aggregates the per-ID outcomes of one coordinator sweep.
type SweepSummary struct {
	Enqueued int `json:"enqueued"`
	Skipped  int `json:"skipped"`
	Cleaned  int `json:"cleaned"`
	Errored  int `json:"errored"`
}

type sweepOutcomeKind int

const (
	outcomeEnqueued sweepOutcomeKind = iota
	outcomeSkipped
	outcomeCleaned
	outcomeErrored
)

type sweepOutcome struct {
	shipmentID string
	kind       sweepOutcomeKind
	err        error
}

// Coordinator sweeps the active-simulation set, dispatches a tick per
// still-En-Route simulation, and prunes stale or terminal entries. Per-ID
// work runs concurrently; one failure never blocks the remaining IDs.
type Coordinator struct {
	store         ports.StateStore
	dispatcher    ports.TickDispatcher
	maxConcurrent int
}

func NewCoordinator(store ports.StateStore, dispatcher ports.TickDispatcher, maxConcurrent int) *Coordinator {
	if maxConcurrent < 1 {
		maxConcurrent = 5
	}
	return &Coordinator{
		store:         store,
		dispatcher:    dispatcher,
		maxConcurrent: maxConcurrent,
	}
}

// Sweep runs one pass over the active set. All per-ID outcomes are collected
// (all-settled join); individual failures are counted, not propagated.
func (c *Coordinator) Sweep(ctx context.Context) (_ SweepSummary, err error) {
	defer obs.Time(ctx, "coordinator.Sweep")(&err)

	ids, err := c.store.ListActive(ctx)
	if err != nil {
		return SweepSummary{}, fmt.Errorf("sweep: list active simulations: %w", err)
	}

	if len(ids) == 0 {
		return SweepSummary{}, nil
	}

	sem := make(chan struct{}, c.maxConcurrent)
	outcomes := make(chan sweepOutcome, len(ids))
	var wg sync.WaitGroup

	for _, id := range ids {
		wg.Add(1)
		go func(shipmentID string) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			outcomes <- c.process(ctx, shipmentID)
		}(id)
	}

	wg.Wait()
	close(outcomes)

	var summary SweepSummary
	for o := range outcomes {
		switch o.kind {
		case outcomeEnqueued:
			summary.Enqueued++
		case outcomeSkipped:
			summary.Skipped++
		case outcomeCleaned:
			summary.Cleaned++
		case outcomeErrored:
			summary.Errored++
			log.Printf("op=sweep shipment_id=%s outcome=errored err=%v", o.shipmentID, o.err)
		}
	}

	log.Printf("op=sweep active=%d enqueued=%d skipped=%d cleaned=%d errored=%d",
		len(ids), summary.Enqueued, summary.Skipped, summary.Cleaned, summary.Errored)

	return summary, nil
}

// process settles one active-set member. The coordinator's only direct
// mutation is active-set pruning; state transitions belong to the tick
// processor it dispatches to.
func (c *Coordinator) process(ctx context.Context, shipmentID string) sweepOutcome {
	vehicle, err := c.store.Get(ctx, shipmentID)
	if errors.Is(err, ports.ErrStateNotFound) {
		if remErr := c.store.RemoveActive(ctx, shipmentID); remErr != nil {
			return sweepOutcome{shipmentID: shipmentID, kind: outcomeErrored, err: remErr}
		}
		return sweepOutcome{shipmentID: shipmentID, kind: outcomeCleaned}
	}
	if err != nil {
		return sweepOutcome{shipmentID: shipmentID, kind: outcomeErrored, err: err}
	}

	switch vehicle.Status {
	case domain.StatusEnRoute:
		if err := c.dispatcher.DispatchTick(ctx, shipmentID); err != nil {
			return sweepOutcome{shipmentID: shipmentID, kind: outcomeErrored, err: err}
		}
		return sweepOutcome{shipmentID: shipmentID, kind: outcomeEnqueued}

	case domain.StatusCompleted, domain.StatusPendingConfirmation, domain.StatusError:
		if err := c.store.RemoveActive(ctx, shipmentID); err != nil {
			return sweepOutcome{shipmentID: shipmentID, kind: outcomeErrored, err: err}
		}
		return sweepOutcome{shipmentID: shipmentID, kind: outcomeCleaned}

	case domain.StatusIdle:
		return sweepOutcome{shipmentID: shipmentID, kind: outcomeSkipped}

	default:
		return sweepOutcome{shipmentID: shipmentID, kind: outcomeSkipped}
	}
}
