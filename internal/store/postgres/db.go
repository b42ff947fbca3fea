package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	_ "github.com/jackc/pgx/v5/stdlib"

	"parking-system/internal/logging"
)

// Connect opens an instrumented pool and waits for the database to answer.
func Connect(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := otelsql.Open("pgx", databaseURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres.Connect: %w", err)
	}

	if err := otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(
		semconv.DBSystemPostgreSQL,
	)); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.Connect: %w", err)
	}

	sqlxDB := sqlx.NewDb(db, "pgx")

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	attempt := 0
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if err := sqlxDB.PingContext(ctx); err != nil {
			logging.Warn(ctx, "database not ready", "attempt", attempt, "error", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(5),
	)
	if err != nil {
		sqlxDB.Close()
		return nil, fmt.Errorf("postgres.Connect: ping: %w", err)
	}

	sqlxDB.SetMaxOpenConns(25)
	sqlxDB.SetMaxIdleConns(5)

	return sqlxDB, nil
}

func isUniqueViolation(err error) bool {
	var pge *pgconn.PgError
	return errors.As(err, &pge) && pge.Code == "23505"
}
