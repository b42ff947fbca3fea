package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"parking-system/internal/logging"
	"parking-system/internal/parking"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS parking (
		parking_number INTEGER PRIMARY KEY,
		type VARCHAR(10) NOT NULL,
		available BOOLEAN NOT NULL DEFAULT TRUE
	)`,

	`CREATE INDEX IF NOT EXISTS idx_parking_type_available ON parking(type, available, parking_number)`,

	`CREATE TABLE IF NOT EXISTS ticket (
		id SERIAL PRIMARY KEY,
		parking_number INTEGER NOT NULL REFERENCES parking(parking_number),
		vehicle_reg_number VARCHAR(64) NOT NULL,
		price NUMERIC(10, 2) NOT NULL DEFAULT 0,
		in_time TIMESTAMP WITH TIME ZONE NOT NULL,
		out_time TIMESTAMP WITH TIME ZONE
	)`,

	`CREATE INDEX IF NOT EXISTS idx_ticket_vehicle_reg_number ON ticket(vehicle_reg_number, id DESC)`,

	// One open ticket per vehicle and per spot.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_ticket_active_vehicle ON ticket(vehicle_reg_number) WHERE out_time IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_ticket_active_spot ON ticket(parking_number) WHERE out_time IS NULL`,
}

func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			logging.Error(ctx, "migration failed", "index", i, "error", err)
			return fmt.Errorf("postgres.RunMigrations: %w", err)
		}
	}
	logging.Info(ctx, "migrations completed", "count", len(migrations))
	return nil
}

// ProvisionSpots inserts the spot pool. Spots that already exist keep their
// current availability.
func ProvisionSpots(ctx context.Context, db *sqlx.DB, spots []parking.ParkingSpot) error {
	query := `
		INSERT INTO parking (parking_number, type, available)
		VALUES ($1, $2, $3)
		ON CONFLICT (parking_number) DO NOTHING`

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres.ProvisionSpots: %w", err)
	}
	defer tx.Rollback()

	for _, spot := range spots {
		if _, err := tx.ExecContext(ctx, query, spot.Number, spot.Category.String(), spot.Available); err != nil {
			return fmt.Errorf("postgres.ProvisionSpots: spot %d: %w", spot.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres.ProvisionSpots: %w", err)
	}
	return nil
}
