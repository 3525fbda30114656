// Package data contains the Postgres-backed repositories for the gateway's
// own durable state. The upstream backend remains the system of record for
// everything else.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pesaflow/qbo-ui-api/internal/ports"
)

// CallbackLedger records consumed OAuth callback tuples. The primary key on
// (code, state, realm_id) makes Record race-safe across gateway instances:
// the loser of a concurrent insert observes a unique violation and reports
// ports.ErrAlreadyProcessed.
type CallbackLedger struct {
	DB *sql.DB
}

var _ ports.CallbackLedger = (*CallbackLedger)(nil)

// NewCallbackLedger creates a ledger over the given database handle.
func NewCallbackLedger(db *sql.DB) *CallbackLedger {
	return &CallbackLedger{DB: db}
}

// Seen reports whether the tuple was recorded before.
func (l *CallbackLedger) Seen(ctx context.Context, in ports.ExchangeInput) (bool, error) {
	var exists bool
	row := l.DB.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM callback_exchanges
			WHERE code = $1 AND state = $2 AND realm_id = $3
		)`, in.Code, in.State, in.RealmID)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("query callback ledger: %w", err)
	}
	return exists, nil
}

// Record marks the tuple consumed.
func (l *CallbackLedger) Record(ctx context.Context, in ports.ExchangeInput) error {
	_, err := l.DB.ExecContext(ctx, `
		INSERT INTO callback_exchanges (code, state, realm_id)
		VALUES ($1, $2, $3)`, in.Code, in.State, in.RealmID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ports.ErrAlreadyProcessed
		}
		return fmt.Errorf("record callback exchange: %w", err)
	}
	return nil
}
