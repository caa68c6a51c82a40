package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shipment-sim-service/internal/domain"
	"shipment-sim-service/internal/ports"
)

// Postgres-backed implementation of the ShipmentRepository port.
// Nullable columns are scanned through sql.Null* and surfaced as pointers;
// decimal geographic fields stay strings here and are parsed by the Assembler.
type PostgresShipmentRepository struct{ DB *sql.DB }

func NewPostgresShipmentRepository(db *sql.DB) *PostgresShipmentRepository {
	return &PostgresShipmentRepository{DB: db}
}

func (r *PostgresShipmentRepository) GetShipment(ctx context.Context, shipmentID string) (*ports.ShipmentRecord, error) {
	if r.DB == nil {
		return nil, errors.New("shipment repository: DB is nil")
	}

	query := `
	SELECT id, status, customer_po_number, customer_shipment_number, remarks
	FROM shipments
	WHERE id = $1;
	`

	var (
		rec    ports.ShipmentRecord
		status string
		po     sql.NullString
		csn    sql.NullString
		rem    sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, query, shipmentID).Scan(&rec.ID, &status, &po, &csn, &rem)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get shipment %q: %w", shipmentID, err)
	}

	parsed, err := domain.ParseShipmentStatus(status)
	if err != nil {
		return nil, fmt.Errorf("get shipment %q: %w", shipmentID, err)
	}

	rec.Status = parsed
	rec.CustomerPONumber = nullableString(po)
	rec.CustomerShipmentNumber = nullableString(csn)
	rec.Remarks = nullableString(rem)
	return &rec, nil
}

func (r *PostgresShipmentRepository) GetFirstPickup(ctx context.Context, shipmentID string) (*ports.StopWithAddress, error) {
	return r.firstStop(ctx, "pickups", shipmentID)
}

func (r *PostgresShipmentRepository) GetFirstDropoff(ctx context.Context, shipmentID string) (*ports.StopWithAddress, error) {
	return r.firstStop(ctx, "dropoffs", shipmentID)
}

// firstStop returns the lowest-position leg joined with its address.
// The table name is interpolated from a fixed internal set, never user input.
func (r *PostgresShipmentRepository) firstStop(ctx context.Context, table, shipmentID string) (*ports.StopWithAddress, error) {
	if r.DB == nil {
		return nil, errors.New("shipment repository: DB is nil")
	}

	query := fmt.Sprintf(`
	SELECT s.id, s.shipment_id, s.position, s.scheduled_date,
	       a.line1, a.city, a.state, a.longitude, a.latitude
	FROM %s s
	LEFT JOIN addresses a ON a.id = s.address_id
	WHERE s.shipment_id = $1
	ORDER BY s.position
	LIMIT 1;
	`, table)

	var (
		stop      ports.StopWithAddress
		scheduled sql.NullTime
		line1     sql.NullString
		city      sql.NullString
		state     sql.NullString
		lon       sql.NullString
		lat       sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, query, shipmentID).Scan(
		&stop.StopID, &stop.ShipmentID, &stop.Position, &scheduled,
		&line1, &city, &state, &lon, &lat,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get first %s for %q: %w", table, shipmentID, err)
	}

	if scheduled.Valid {
		t := scheduled.Time
		stop.ScheduledDate = &t
	}

	// A leg without a joined address row leaves Address nil; the Assembler
	// treats that as missing origin/destination data.
	if line1.Valid || city.Valid || state.Valid || lon.Valid || lat.Valid {
		stop.Address = &ports.AddressRecord{
			Line1:     nullableString(line1),
			City:      nullableString(city),
			State:     nullableString(state),
			Longitude: nullableString(lon),
			Latitude:  nullableString(lat),
		}
	}

	return &stop, nil
}

func (r *PostgresShipmentRepository) GetTrip(ctx context.Context, shipmentID string) (*ports.TripRecord, error) {
	if r.DB == nil {
		return nil, errors.New("shipment repository: DB is nil")
	}

	query := `
	SELECT driver_name, driver_phone, driver_ic, truck_id
	FROM trips
	WHERE shipment_id = $1
	LIMIT 1;
	`

	var name, phone, ic, truck sql.NullString
	err := r.DB.QueryRowContext(ctx, query, shipmentID).Scan(&name, &phone, &ic, &truck)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get trip for %q: %w", shipmentID, err)
	}

	return &ports.TripRecord{
		DriverName:  nullableString(name),
		DriverPhone: nullableString(phone),
		DriverIC:    nullableString(ic),
		TruckID:     nullableString(truck),
	}, nil
}

func (r *PostgresShipmentRepository) GetCustomDetails(ctx context.Context, shipmentID string) (*ports.CustomShipmentDetailRecord, error) {
	if r.DB == nil {
		return nil, errors.New("shipment repository: DB is nil")
	}

	query := `
	SELECT item_description, total_weight, recipient_name, recipient_phone
	FROM custom_shipment_details
	WHERE shipment_id = $1
	LIMIT 1;
	`

	var desc, weight, rname, rphone sql.NullString
	err := r.DB.QueryRowContext(ctx, query, shipmentID).Scan(&desc, &weight, &rname, &rphone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get custom details for %q: %w", shipmentID, err)
	}

	return &ports.CustomShipmentDetailRecord{
		ItemDescription: nullableString(desc),
		TotalWeight:     nullableString(weight),
		RecipientName:   nullableString(rname),
		RecipientPhone:  nullableString(rphone),
	}, nil
}

// UpdateLastKnownLocation mirrors the latest simulated position onto the
// shipment row. The state store stays authoritative; this write is advisory.
func (r *PostgresShipmentRepository) UpdateLastKnownLocation(ctx context.Context, loc ports.LastKnownLocation) error {
	if r.DB == nil {
		return errors.New("shipment repository: DB is nil")
	}

	query := `
	UPDATE shipments
	SET last_known_longitude = $2,
	    last_known_latitude = $3,
	    last_known_bearing = $4,
	    last_position_update = $5
	WHERE id = $1;
	`

	var bearing sql.NullFloat64
	if loc.Bearing != nil {
		bearing = sql.NullFloat64{Float64: *loc.Bearing, Valid: true}
	}

	updatedAt := loc.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	res, err := r.DB.ExecContext(ctx, query, loc.ShipmentID, loc.Longitude, loc.Latitude, bearing, updatedAt)
	if err != nil {
		return fmt.Errorf("update last known location for %q: %w", loc.ShipmentID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update last known location for %q: rows affected: %w", loc.ShipmentID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update last known location for %q: %w", loc.ShipmentID, ports.ErrNotFound)
	}

	return nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
