package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	"shipment-sim-service/internal/domain"
)

func activeVehicle(store *fakeStateStore, shipmentID string, status domain.VehicleStatus) {
	v := enRouteVehicle(shipmentID)
	v.Status = status
	store.put(shipmentID, v)
	store.AddActive(context.Background(), shipmentID)
}

func TestSweepEmptyActiveSet(t *testing.T) {
	c := NewCoordinator(newFakeStateStore(), newFakeDispatcher(), 2)

	summary, err := c.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != (SweepSummary{}) {
		t.Fatalf("summary = %+v, want zeroes", summary)
	}
}

func TestSweepDispatchesEnRoute(t *testing.T) {
	store := newFakeStateStore()
	dispatcher := newFakeDispatcher()
	for _, id := range []string{"SHP-1", "SHP-2", "SHP-3"} {
		activeVehicle(store, id, domain.StatusEnRoute)
	}

	c := NewCoordinator(store, dispatcher, 2)

	summary, err := c.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Enqueued != 3 || summary.Skipped != 0 || summary.Cleaned != 0 || summary.Errored != 0 {
		t.Fatalf("summary = %+v, want 3 enqueued", summary)
	}

	got := append([]string(nil), dispatcher.dispatched...)
	sort.Strings(got)
	want := []string{"SHP-1", "SHP-2", "SHP-3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dispatched = %v, want %v", got, want)
		}
	}
}

func TestSweepIsolatesDispatchFailures(t *testing.T) {
	store := newFakeStateStore()
	dispatcher := newFakeDispatcher()
	for _, id := range []string{"SHP-1", "SHP-2", "SHP-3"} {
		activeVehicle(store, id, domain.StatusEnRoute)
	}
	dispatcher.failFor["SHP-2"] = errors.New("worker unreachable")

	c := NewCoordinator(store, dispatcher, 2)

	summary, err := c.Sweep(context.Background())
	if err != nil {
		t.Fatalf("one dispatch failure must not fail the sweep: %v", err)
	}
	if summary.Enqueued != 2 || summary.Errored != 1 {
		t.Fatalf("summary = %+v, want 2 enqueued / 1 errored", summary)
	}
	if len(dispatcher.dispatched) != 2 {
		t.Fatalf("dispatched = %v, want the two healthy IDs", dispatcher.dispatched)
	}
	// The failed ID stays active for the next sweep to retry.
	if !store.isActive("SHP-2") {
		t.Fatal("failed dispatch must not prune the entry")
	}
}

func TestSweepCleansTerminalEntries(t *testing.T) {
	store := newFakeStateStore()
	dispatcher := newFakeDispatcher()
	activeVehicle(store, "SHP-done", domain.StatusCompleted)
	activeVehicle(store, "SHP-pending", domain.StatusPendingConfirmation)
	activeVehicle(store, "SHP-broken", domain.StatusError)
	activeVehicle(store, "SHP-moving", domain.StatusEnRoute)

	c := NewCoordinator(store, dispatcher, 4)

	summary, err := c.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Cleaned != 3 || summary.Enqueued != 1 {
		t.Fatalf("summary = %+v, want 3 cleaned / 1 enqueued", summary)
	}

	for _, id := range []string{"SHP-done", "SHP-pending", "SHP-broken"} {
		if store.isActive(id) {
			t.Fatalf("%q should have been pruned", id)
		}
		// Cleaning prunes membership only; the state itself is kept for reads.
		if _, ok := store.vehicle(id); !ok {
			t.Fatalf("%q state should survive the sweep", id)
		}
	}
	if !store.isActive("SHP-moving") {
		t.Fatal("en-route entry should stay active")
	}
}

func TestSweepSkipsIdle(t *testing.T) {
	store := newFakeStateStore()
	dispatcher := newFakeDispatcher()
	activeVehicle(store, "SHP-idle", domain.StatusIdle)

	c := NewCoordinator(store, dispatcher, 1)

	summary, err := c.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Skipped != 1 {
		t.Fatalf("summary = %+v, want 1 skipped", summary)
	}
	if len(dispatcher.dispatched) != 0 {
		t.Fatalf("dispatched = %v, want none", dispatcher.dispatched)
	}
	if !store.isActive("SHP-idle") {
		t.Fatal("idle entry must stay active")
	}
}

func TestSweepCleansStaleMembership(t *testing.T) {
	store := newFakeStateStore()
	store.AddActive(context.Background(), "ghost")

	c := NewCoordinator(store, newFakeDispatcher(), 1)

	summary, err := c.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Cleaned != 1 {
		t.Fatalf("summary = %+v, want 1 cleaned", summary)
	}
	if store.isActive("ghost") {
		t.Fatal("stale membership should have been pruned")
	}
}

func TestSweepListFailure(t *testing.T) {
	store := newFakeStateStore()
	store.listActiveErr = errors.New("redis down")

	c := NewCoordinator(store, newFakeDispatcher(), 1)

	if _, err := c.Sweep(context.Background()); err == nil {
		t.Fatal("expected error when the active set cannot be listed")
	}
}

func TestSweepBoundedConcurrency(t *testing.T) {
	store := newFakeStateStore()
	for i := 0; i < 20; i++ {
		activeVehicle(store, string(rune('A'+i)), domain.StatusEnRoute)
	}
	dispatcher := newFakeDispatcher()

	// maxConcurrent below 1 falls back to the default; the sweep must still
	// settle every member.
	c := NewCoordinator(store, dispatcher, 0)

	summary, err := c.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Enqueued != 20 {
		t.Fatalf("enqueued = %d, want 20", summary.Enqueued)
	}
}
