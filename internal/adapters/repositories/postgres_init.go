package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the Postgres schema for shipments and the route-geometry cache.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createShipmentsQuery := `
	CREATE TABLE IF NOT EXISTS shipments (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		customer_po_number TEXT,
		customer_shipment_number TEXT,
		remarks TEXT,
		last_known_longitude DOUBLE PRECISION,
		last_known_latitude DOUBLE PRECISION,
		last_known_bearing DOUBLE PRECISION,
		last_position_update TIMESTAMPTZ
	);
	`

	createAddressesQuery := `
	CREATE TABLE IF NOT EXISTS addresses (
		id TEXT PRIMARY KEY,
		line1 TEXT,
		city TEXT,
		state TEXT,
		longitude TEXT,
		latitude TEXT
	);
	`

	createPickupsQuery := `
	CREATE TABLE IF NOT EXISTS pickups (
		id TEXT PRIMARY KEY,
		shipment_id TEXT NOT NULL REFERENCES shipments(id),
		position INTEGER NOT NULL,
		scheduled_date TIMESTAMPTZ,
		address_id TEXT REFERENCES addresses(id)
	);
	`

	createDropoffsQuery := `
	CREATE TABLE IF NOT EXISTS dropoffs (
		id TEXT PRIMARY KEY,
		shipment_id TEXT NOT NULL REFERENCES shipments(id),
		position INTEGER NOT NULL,
		scheduled_date TIMESTAMPTZ,
		address_id TEXT REFERENCES addresses(id)
	);
	`

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		shipment_id TEXT NOT NULL REFERENCES shipments(id),
		driver_name TEXT,
		driver_phone TEXT,
		driver_ic TEXT,
		truck_id TEXT
	);
	`

	createCustomDetailsQuery := `
	CREATE TABLE IF NOT EXISTS custom_shipment_details (
		id TEXT PRIMARY KEY,
		shipment_id TEXT NOT NULL REFERENCES shipments(id),
		item_description TEXT,
		total_weight TEXT,
		recipient_name TEXT,
		recipient_phone TEXT
	);
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		geometry TEXT NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`

	createStopIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_pickups_shipment_position
	ON pickups(shipment_id, position);
	`

	createDropoffIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_dropoffs_shipment_position
	ON dropoffs(shipment_id, position);
	`

	statements := []string{
		createShipmentsQuery,
		createAddressesQuery,
		createPickupsQuery,
		createDropoffsQuery,
		createTripsQuery,
		createCustomDetailsQuery,
		createRouteCacheQuery,
		createStopIndexQuery,
		createDropoffIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type addressSeed struct {
	ID        string  `json:"id"`
	Line1     *string `json:"line1"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	Longitude *string `json:"longitude"`
	Latitude  *string `json:"latitude"`
}

type stopSeed struct {
	ID            string  `json:"id"`
	Position      int     `json:"position"`
	ScheduledDate *string `json:"scheduled_date"`
	AddressID     *string `json:"address_id"`
}

type shipmentSeed struct {
	ID                     string     `json:"id"`
	Status                 string     `json:"status"`
	CustomerPONumber       *string    `json:"customer_po_number"`
	CustomerShipmentNumber *string    `json:"customer_shipment_number"`
	Remarks                *string    `json:"remarks"`
	Pickups                []stopSeed `json:"pickups"`
	Dropoffs               []stopSeed `json:"dropoffs"`
}

type seedFile struct {
	Addresses []addressSeed  `json:"addresses"`
	Shipments []shipmentSeed `json:"shipments"`
}

// Populate the database with demo shipment data from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed shipments: read %q: %w", jsonPath, err)
	}

	var data seedFile
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed shipments: parse json: %w", err)
	}

	for i, s := range data.Shipments {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("seed shipments: shipment at index %d has empty id", i)
		}
		if strings.TrimSpace(s.Status) == "" {
			return fmt.Errorf("seed shipments: shipment %q has empty status", s.ID)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed shipments: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	addressStmt, err := tx.Prepare(`
	INSERT INTO addresses (id, line1, city, state, longitude, latitude)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE
	SET line1 = EXCLUDED.line1,
		city = EXCLUDED.city,
		state = EXCLUDED.state,
		longitude = EXCLUDED.longitude,
		latitude = EXCLUDED.latitude;
	`)
	if err != nil {
		return fmt.Errorf("seed shipments: prepare address insert: %w", err)
	}
	defer addressStmt.Close()

	for _, a := range data.Addresses {
		if _, err := addressStmt.Exec(a.ID, a.Line1, a.City, a.State, a.Longitude, a.Latitude); err != nil {
			return fmt.Errorf("seed shipments: insert address %q: %w", a.ID, err)
		}
	}

	shipmentStmt, err := tx.Prepare(`
	INSERT INTO shipments (id, status, customer_po_number, customer_shipment_number, remarks)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE
	SET status = EXCLUDED.status,
		customer_po_number = EXCLUDED.customer_po_number,
		customer_shipment_number = EXCLUDED.customer_shipment_number,
		remarks = EXCLUDED.remarks;
	`)
	if err != nil {
		return fmt.Errorf("seed shipments: prepare shipment insert: %w", err)
	}
	defer shipmentStmt.Close()

	stopQuery := `
	INSERT INTO %s (id, shipment_id, position, scheduled_date, address_id)
	VALUES ($1, $2, $3, $4::timestamptz, $5)
	ON CONFLICT (id) DO UPDATE
	SET position = EXCLUDED.position,
		scheduled_date = EXCLUDED.scheduled_date,
		address_id = EXCLUDED.address_id;
	`

	pickupStmt, err := tx.Prepare(fmt.Sprintf(stopQuery, "pickups"))
	if err != nil {
		return fmt.Errorf("seed shipments: prepare pickup insert: %w", err)
	}
	defer pickupStmt.Close()

	dropoffStmt, err := tx.Prepare(fmt.Sprintf(stopQuery, "dropoffs"))
	if err != nil {
		return fmt.Errorf("seed shipments: prepare dropoff insert: %w", err)
	}
	defer dropoffStmt.Close()

	for _, s := range data.Shipments {
		if _, err := shipmentStmt.Exec(s.ID, s.Status, s.CustomerPONumber, s.CustomerShipmentNumber, s.Remarks); err != nil {
			return fmt.Errorf("seed shipments: insert shipment %q: %w", s.ID, err)
		}

		for _, p := range s.Pickups {
			if _, err := pickupStmt.Exec(p.ID, s.ID, p.Position, p.ScheduledDate, p.AddressID); err != nil {
				return fmt.Errorf("seed shipments: insert pickup %q: %w", p.ID, err)
			}
		}
		for _, d := range s.Dropoffs {
			if _, err := dropoffStmt.Exec(d.ID, s.ID, d.Position, d.ScheduledDate, d.AddressID); err != nil {
				return fmt.Errorf("seed shipments: insert dropoff %q: %w", d.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed shipments: commit tx: %w", err)
	}

	return nil
}
