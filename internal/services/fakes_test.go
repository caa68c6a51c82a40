package services

import (
	"context"
	"sync"
	"time"

	"shipment-sim-service/internal/domain"
	"shipment-sim-service/internal/ports"
)

// fakeStateStore is an in-memory StateStore with injectable failures and call
// counters, shared by the service tests.
type fakeStateStore struct {
	mu       sync.Mutex
	vehicles map[string]domain.SimulatedVehicle
	active   map[string]bool

	setCalls    int
	updateCalls int

	getErr          error
	setErr          error
	updateErr       error
	addActiveErr    error
	removeActiveErr error
	listActiveErr   error
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{
		vehicles: make(map[string]domain.SimulatedVehicle),
		active:   make(map[string]bool),
	}
}

func (s *fakeStateStore) put(shipmentID string, v domain.SimulatedVehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[shipmentID] = v
}

func (s *fakeStateStore) vehicle(shipmentID string) (domain.SimulatedVehicle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[shipmentID]
	return v, ok
}

func (s *fakeStateStore) isActive(shipmentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[shipmentID]
}

func (s *fakeStateStore) Get(_ context.Context, shipmentID string) (*domain.SimulatedVehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.vehicles[shipmentID]
	if !ok {
		return nil, ports.ErrStateNotFound
	}
	cp := v
	return &cp, nil
}

func (s *fakeStateStore) Set(_ context.Context, shipmentID string, v *domain.SimulatedVehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	s.vehicles[shipmentID] = *v
	return nil
}

func (s *fakeStateStore) Update(
	_ context.Context,
	shipmentID string,
	mutate func(*domain.SimulatedVehicle) error,
) (*domain.SimulatedVehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	v, ok := s.vehicles[shipmentID]
	if !ok {
		return nil, ports.ErrStateNotFound
	}
	if err := mutate(&v); err != nil {
		return nil, err
	}
	v.LastUpdateTime = time.Now().UnixMilli()
	s.vehicles[shipmentID] = v
	cp := v
	return &cp, nil
}

func (s *fakeStateStore) Delete(_ context.Context, shipmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vehicles, shipmentID)
	return nil
}

func (s *fakeStateStore) AddActive(_ context.Context, shipmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addActiveErr != nil {
		return s.addActiveErr
	}
	s.active[shipmentID] = true
	return nil
}

func (s *fakeStateStore) RemoveActive(_ context.Context, shipmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeActiveErr != nil {
		return s.removeActiveErr
	}
	delete(s.active, shipmentID)
	return nil
}

func (s *fakeStateStore) ListActive(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listActiveErr != nil {
		return nil, s.listActiveErr
	}
	ids := make([]string, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}
	return ids, nil
}

// fakeShipmentRepo returns canned records per query and records mirror writes.
type fakeShipmentRepo struct {
	mu sync.Mutex

	shipment *ports.ShipmentRecord
	pickup   *ports.StopWithAddress
	dropoff  *ports.StopWithAddress
	trip     *ports.TripRecord
	details  *ports.CustomShipmentDetailRecord

	shipmentErr error
	pickupErr   error
	dropoffErr  error
	tripErr     error
	detailsErr  error

	mirrorErr   error
	mirrorCalls int
	lastMirror  ports.LastKnownLocation
}

func (r *fakeShipmentRepo) GetShipment(_ context.Context, _ string) (*ports.ShipmentRecord, error) {
	if r.shipmentErr != nil {
		return nil, r.shipmentErr
	}
	return r.shipment, nil
}

func (r *fakeShipmentRepo) GetFirstPickup(_ context.Context, _ string) (*ports.StopWithAddress, error) {
	if r.pickupErr != nil {
		return nil, r.pickupErr
	}
	return r.pickup, nil
}

func (r *fakeShipmentRepo) GetFirstDropoff(_ context.Context, _ string) (*ports.StopWithAddress, error) {
	if r.dropoffErr != nil {
		return nil, r.dropoffErr
	}
	return r.dropoff, nil
}

func (r *fakeShipmentRepo) GetTrip(_ context.Context, _ string) (*ports.TripRecord, error) {
	if r.tripErr != nil {
		return nil, r.tripErr
	}
	return r.trip, nil
}

func (r *fakeShipmentRepo) GetCustomDetails(_ context.Context, _ string) (*ports.CustomShipmentDetailRecord, error) {
	if r.detailsErr != nil {
		return nil, r.detailsErr
	}
	return r.details, nil
}

func (r *fakeShipmentRepo) UpdateLastKnownLocation(_ context.Context, loc ports.LastKnownLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mirrorCalls++
	r.lastMirror = loc
	return r.mirrorErr
}

// fakeDispatcher records dispatched IDs and fails the ones listed in failFor.
type fakeDispatcher struct {
	mu         sync.Mutex
	dispatched []string
	failFor    map[string]error
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{failFor: make(map[string]error)}
}

func (d *fakeDispatcher) DispatchTick(_ context.Context, shipmentID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err, ok := d.failFor[shipmentID]; ok {
		return err
	}
	d.dispatched = append(d.dispatched, shipmentID)
	return nil
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }
