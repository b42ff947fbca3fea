package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"gopkg.in/guregu/null.v4"

	"parking-system/internal/parking"
)

type ticketRow struct {
	ID            int64           `db:"id"`
	ParkingNumber int             `db:"parking_number"`
	Type          string          `db:"type"`
	Available     bool            `db:"available"`
	Registration  string          `db:"vehicle_reg_number"`
	Price         decimal.Decimal `db:"price"`
	InTime        time.Time       `db:"in_time"`
	OutTime       null.Time       `db:"out_time"`
}

func (r ticketRow) toTicket() (*parking.Ticket, error) {
	spot, err := spotRow{Number: r.ParkingNumber, Type: r.Type, Available: r.Available}.toSpot()
	if err != nil {
		return nil, fmt.Errorf("ticket %d: %w", r.ID, err)
	}
	return &parking.Ticket{
		ID:           r.ID,
		Spot:         spot,
		Registration: r.Registration,
		Price:        parking.RoundPrice(r.Price),
		InTime:       r.InTime.UTC(),
		OutTime:      r.OutTime,
	}, nil
}

const ticketColumns = `
	t.id, t.parking_number, p.type, p.available, t.vehicle_reg_number,
	t.price, t.in_time, t.out_time`

type TicketStore struct {
	db *sqlx.DB
}

func NewTicketStore(db *sqlx.DB) *TicketStore {
	return &TicketStore{db: db}
}

func (s *TicketStore) SaveTicket(ctx context.Context, ticket *parking.Ticket) error {
	query := `
		INSERT INTO ticket (parking_number, vehicle_reg_number, price, in_time, out_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		ticket.Spot.Number, ticket.Registration, ticket.Price, ticket.InTime, ticket.OutTime,
	).Scan(&ticket.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("postgres.SaveTicket: %w: %s", parking.ErrDuplicateTicket, ticket.Registration)
	}
	if err != nil {
		return fmt.Errorf("postgres.SaveTicket: %w", err)
	}
	return nil
}

func (s *TicketStore) ActiveTicket(ctx context.Context, registration string) (*parking.Ticket, error) {
	query := `SELECT` + ticketColumns + `
		FROM ticket t JOIN parking p ON p.parking_number = t.parking_number
		WHERE t.vehicle_reg_number = $1 AND t.out_time IS NULL`

	return s.getTicket(ctx, "postgres.ActiveTicket", query, registration)
}

func (s *TicketStore) UpdateTicket(ctx context.Context, ticket *parking.Ticket) error {
	query := `
		UPDATE ticket
		SET parking_number = $1, price = $2, in_time = $3, out_time = $4
		WHERE id = $5`

	result, err := s.db.ExecContext(ctx, query,
		ticket.Spot.Number, ticket.Price, ticket.InTime, ticket.OutTime, ticket.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("postgres.UpdateTicket: %w: %s", parking.ErrDuplicateTicket, ticket.Registration)
	}
	if err != nil {
		return fmt.Errorf("postgres.UpdateTicket: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres.UpdateTicket: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("postgres.UpdateTicket: %w: id %d", parking.ErrTicketNotFound, ticket.ID)
	}
	return nil
}

func (s *TicketStore) CountCompletedVisits(ctx context.Context, registration string) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM ticket
		WHERE vehicle_reg_number = $1 AND out_time IS NOT NULL`

	if err := s.db.GetContext(ctx, &count, query, registration); err != nil {
		return 0, fmt.Errorf("postgres.CountCompletedVisits: %w", err)
	}
	return count, nil
}

func (s *TicketStore) LastTicket(ctx context.Context, registration string) (*parking.Ticket, error) {
	query := `SELECT` + ticketColumns + `
		FROM ticket t JOIN parking p ON p.parking_number = t.parking_number
		WHERE t.vehicle_reg_number = $1
		ORDER BY t.in_time DESC, t.id DESC
		LIMIT 1`

	return s.getTicket(ctx, "postgres.LastTicket", query, registration)
}

func (s *TicketStore) getTicket(ctx context.Context, op, query string, args ...any) (*parking.Ticket, error) {
	var row ticketRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, parking.ErrTicketNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ticket, err := row.toTicket()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ticket, nil
}
