// Package postgres implements the repository interfaces on PostgreSQL via database/sql and pgx.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"sitecms/internal/domain/entity"
)

// DBTX is satisfied by *sql.DB and by circuitbreaker.DBCircuitBreaker.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// storeError converts a driver error into a PersistenceError carrying the
// store's own message, and the SQLSTATE when the server reported one.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *entity.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &entity.PersistenceError{Op: op, Code: pgErr.Code, Message: pgErr.Message, Err: err}
	}
	return &entity.PersistenceError{Op: op, Message: err.Error(), Err: err}
}

func limitArg(limit int) any {
	if limit <= 0 {
		return nil // LIMIT NULL is LIMIT ALL
	}
	return limit
}
