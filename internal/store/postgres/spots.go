package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"parking-system/internal/parking"
)

type spotRow struct {
	Number    int    `db:"parking_number"`
	Type      string `db:"type"`
	Available bool   `db:"available"`
}

func (r spotRow) toSpot() (parking.ParkingSpot, error) {
	category, err := parking.ParseCategory(r.Type)
	if err != nil {
		return parking.ParkingSpot{}, fmt.Errorf("spot %d: %w", r.Number, err)
	}
	return parking.ParkingSpot{
		Number:    r.Number,
		Category:  category,
		Available: r.Available,
	}, nil
}

type SpotStore struct {
	db *sqlx.DB
}

func NewSpotStore(db *sqlx.DB) *SpotStore {
	return &SpotStore{db: db}
}

func (s *SpotStore) NextAvailable(ctx context.Context, category parking.VehicleCategory) (int, error) {
	var number int
	query := `
		SELECT parking_number FROM parking
		WHERE available = TRUE AND type = $1
		ORDER BY parking_number
		LIMIT 1`

	if err := s.db.GetContext(ctx, &number, query, category.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, parking.ErrNoSpotAvailable
		}
		return 0, fmt.Errorf("postgres.NextAvailable: %w", err)
	}
	return number, nil
}

func (s *SpotStore) UpdateSpot(ctx context.Context, spot parking.ParkingSpot) error {
	query := `UPDATE parking SET available = $1 WHERE parking_number = $2`

	result, err := s.db.ExecContext(ctx, query, spot.Available, spot.Number)
	if err != nil {
		return fmt.Errorf("postgres.UpdateSpot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres.UpdateSpot: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("postgres.UpdateSpot: %w: %d", parking.ErrSpotNotFound, spot.Number)
	}
	return nil
}

func (s *SpotStore) ListSpots(ctx context.Context) ([]parking.ParkingSpot, error) {
	var rows []spotRow
	query := `SELECT parking_number, type, available FROM parking ORDER BY parking_number`

	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("postgres.ListSpots: %w", err)
	}

	spots := make([]parking.ParkingSpot, 0, len(rows))
	for _, row := range rows {
		spot, err := row.toSpot()
		if err != nil {
			return nil, fmt.Errorf("postgres.ListSpots: %w", err)
		}
		spots = append(spots, spot)
	}
	return spots, nil
}
