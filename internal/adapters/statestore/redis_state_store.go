// Package statestore implements the StateStore port on Redis.
package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"shipment-sim-service/internal/domain"
	"shipment-sim-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

const (
	vehicleKeyPrefix = "simulation:vehicle:"
	activeSetKey     = "simulation:active"

	// Optimistic transaction retries for Update before giving up.
	maxCASAttempts = 5
)

// RedisStateStore persists vehicle state as JSON values and the active
// registry as a Redis set. Every operation round-trips to Redis.
type RedisStateStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client, now: time.Now}
}

func vehicleKey(shipmentID string) string { return vehicleKeyPrefix + shipmentID }

func validateShipmentID(shipmentID string) error {
	if strings.TrimSpace(shipmentID) == "" {
		return errors.New("shipmentID must be non-empty")
	}
	return nil
}

// Get returns the stored vehicle state. Payloads that fail to decode or lack
// the mandatory id field are deleted and reported as not found.
func (s *RedisStateStore) Get(ctx context.Context, shipmentID string) (*domain.SimulatedVehicle, error) {
	if err := validateShipmentID(shipmentID); err != nil {
		return nil, fmt.Errorf("state store get: %w", err)
	}

	raw, err := s.client.Get(ctx, vehicleKey(shipmentID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("state store get %q: %w", shipmentID, err)
	}

	v, err := decodeVehicle([]byte(raw))
	if err != nil {
		// Self-heal: a malformed entry would fail every subsequent tick, so
		// drop it and report not found.
		log.Printf("op=state.get shipment_id=%s malformed payload, deleting: %v", shipmentID, err)
		if delErr := s.client.Del(ctx, vehicleKey(shipmentID)).Err(); delErr != nil {
			log.Printf("op=state.get shipment_id=%s delete malformed entry failed: %v", shipmentID, delErr)
		}
		return nil, ports.ErrStateNotFound
	}

	return v, nil
}

// Set writes the full state, overwriting any prior value.
func (s *RedisStateStore) Set(ctx context.Context, shipmentID string, v *domain.SimulatedVehicle) error {
	if err := validateShipmentID(shipmentID); err != nil {
		return fmt.Errorf("state store set: %w", err)
	}
	if v == nil {
		return errors.New("state store set: vehicle must be non-nil")
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("state store set %q: marshal: %w", shipmentID, err)
	}

	if err := s.client.Set(ctx, vehicleKey(shipmentID), payload, 0).Err(); err != nil {
		return fmt.Errorf("state store set %q: %w", shipmentID, err)
	}

	return nil
}

// Update runs mutate against the current state inside a WATCH-guarded
// transaction so a concurrent writer invalidates the write instead of being
// silently overwritten. LastUpdateTime is refreshed on every success.
func (s *RedisStateStore) Update(
	ctx context.Context,
	shipmentID string,
	mutate func(*domain.SimulatedVehicle) error,
) (*domain.SimulatedVehicle, error) {
	if err := validateShipmentID(shipmentID); err != nil {
		return nil, fmt.Errorf("state store update: %w", err)
	}
	if mutate == nil {
		return nil, errors.New("state store update: mutate must be non-nil")
	}

	key := vehicleKey(shipmentID)
	var updated *domain.SimulatedVehicle

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return ports.ErrStateNotFound
		}
		if err != nil {
			return fmt.Errorf("read current state: %w", err)
		}

		v, err := decodeVehicle([]byte(raw))
		if err != nil {
			return fmt.Errorf("decode current state: %w", err)
		}

		if err := mutate(v); err != nil {
			return fmt.Errorf("apply mutation: %w", err)
		}
		v.LastUpdateTime = s.now().UnixMilli()

		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal updated state: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = v
		return nil
	}

	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, ports.ErrStateNotFound) {
			return nil, ports.ErrStateNotFound
		}
		return nil, fmt.Errorf("state store update %q: %w", shipmentID, err)
	}

	return nil, fmt.Errorf("state store update %q: gave up after %d contended attempts", shipmentID, maxCASAttempts)
}

// Delete removes the state; deleting an absent key is success.
func (s *RedisStateStore) Delete(ctx context.Context, shipmentID string) error {
	if err := validateShipmentID(shipmentID); err != nil {
		return fmt.Errorf("state store delete: %w", err)
	}

	if err := s.client.Del(ctx, vehicleKey(shipmentID)).Err(); err != nil {
		return fmt.Errorf("state store delete %q: %w", shipmentID, err)
	}
	return nil
}

func (s *RedisStateStore) AddActive(ctx context.Context, shipmentID string) error {
	if err := validateShipmentID(shipmentID); err != nil {
		return fmt.Errorf("state store add active: %w", err)
	}

	if err := s.client.SAdd(ctx, activeSetKey, shipmentID).Err(); err != nil {
		return fmt.Errorf("state store add active %q: %w", shipmentID, err)
	}
	return nil
}

func (s *RedisStateStore) RemoveActive(ctx context.Context, shipmentID string) error {
	if err := validateShipmentID(shipmentID); err != nil {
		return fmt.Errorf("state store remove active: %w", err)
	}

	if err := s.client.SRem(ctx, activeSetKey, shipmentID).Err(); err != nil {
		return fmt.Errorf("state store remove active %q: %w", shipmentID, err)
	}
	return nil
}

func (s *RedisStateStore) ListActive(ctx context.Context) ([]string, error) {
	members, err := s.client.SMembers(ctx, activeSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("state store list active: %w", err)
	}
	return members, nil
}

// decodeVehicle unmarshals and validates a stored payload. The id field and a
// recognized status are mandatory; anything else is malformed data.
func decodeVehicle(raw []byte) (*domain.SimulatedVehicle, error) {
	var v domain.SimulatedVehicle
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("unmarshal vehicle: %w", err)
	}

	if strings.TrimSpace(v.ID) == "" {
		return nil, errors.New("vehicle payload missing id")
	}
	if _, err := domain.ParseVehicleStatus(string(v.Status)); err != nil {
		return nil, err
	}

	return &v, nil
}
