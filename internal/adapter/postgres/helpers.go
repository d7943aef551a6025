package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/venably/venably/internal/domain"
)

// scannable abstracts pgx.Row and pgx.Rows for shared scan helpers.
type scannable interface {
	Scan(dest ...any) error
}

// nullIfEmpty returns nil for empty strings (for nullable UUID columns).
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// orEmpty dereferences a nullable column value scanned into *string.
func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// notFoundWrap checks whether err is pgx.ErrNoRows and, if so, wraps
// domain.ErrNotFound with the given message. Otherwise it wraps the
// original error.
func notFoundWrap(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// checkCustomer verifies the customer exists within the tenant. A customer ID
// from another tenant resolves to not-found, never to the foreign row.
func checkCustomer(ctx context.Context, tx pgx.Tx, tenantID, customerID string) error {
	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1 AND tenant_id = $2)`,
		customerID, tenantID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check customer %s: %w", customerID, err)
	}
	if !exists {
		return fmt.Errorf("customer %s: %w", customerID, domain.ErrNotFound)
	}
	return nil
}

// checkVenue verifies the venue exists within the tenant.
func checkVenue(ctx context.Context, tx pgx.Tx, tenantID, venueID string) error {
	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM venues WHERE id = $1 AND tenant_id = $2)`,
		venueID, tenantID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check venue %s: %w", venueID, err)
	}
	if !exists {
		return fmt.Errorf("venue %s: %w", venueID, domain.ErrNotFound)
	}
	return nil
}

// SQLSTATE codes that mean "the whole validate-then-commit cycle can be
// re-run": serialization failure, deadlock, and the exclusion/unique
// constraints that backstop the overlap check under concurrent writers.
const (
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
	sqlstateExclusionViolation   = "23P01"
	sqlstateUniqueViolation      = "23505"
)

// retryableWrap maps transient Postgres failures onto domain.ErrRetryable so
// the write coordinator can retry them; anything else passes through wrapped.
func retryableWrap(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateSerializationFailure, sqlstateDeadlockDetected,
			sqlstateExclusionViolation, sqlstateUniqueViolation:
			return fmt.Errorf("%s: %s: %w", msg, pgErr.Code, domain.ErrRetryable)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// beginSerializable opens a SERIALIZABLE transaction and pins the tenant ID
// as a transaction-local session variable. Row-level security policies keyed
// on app.tenant_id are defense-in-depth only; the explicit tenant predicate
// on every query remains the primary enforcement.
func (s *Store) beginSerializable(ctx context.Context, tenantID string) (pgx.Tx, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.Exec(ctx, `SELECT set_config('app.tenant_id', $1, true)`, tenantID); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("set tenant: %w", err)
	}
	return tx, nil
}

// commit wraps tx.Commit, mapping serialization failures detected at commit
// time onto the retryable sentinel.
func commit(ctx context.Context, tx pgx.Tx, what string) error {
	if err := tx.Commit(ctx); err != nil {
		return retryableWrap(err, "commit %s", what)
	}
	return nil
}
