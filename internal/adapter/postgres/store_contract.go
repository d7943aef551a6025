package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/venably/venably/internal/domain"
	"github.com/venably/venably/internal/domain/booking"
	"github.com/venably/venably/internal/domain/contract"
)

const contractColumns = `id, tenant_id, customer_id, contract_name, status, total_cents, created_at, updated_at`

func scanContract(row scannable) (contract.Contract, error) {
	var c contract.Contract
	err := row.Scan(&c.ID, &c.TenantID, &c.CustomerID, &c.Name, &c.Status, &c.TotalCents,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func loadContractMembers(ctx context.Context, q querier, tenantID, contractID string) ([]booking.Booking, error) {
	rows, err := q.Query(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings WHERE contract_id = $1 AND tenant_id = $2
		 ORDER BY event_date ASC, start_minute ASC`,
		contractID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load contract members: %w", err)
	}
	defer rows.Close()

	var members []booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract member: %w", err)
		}
		members = append(members, b)
	}
	return members, rows.Err()
}

// recomputeContractTotal rewrites the derived contract total from its live
// members. The total is never accepted from a client and never edited
// independently.
func recomputeContractTotal(ctx context.Context, tx pgx.Tx, tenantID, contractID string) error {
	_, err := tx.Exec(ctx,
		`UPDATE contracts
		 SET total_cents = COALESCE((
		         SELECT SUM(amount_cents) FROM bookings
		         WHERE contract_id = $1 AND tenant_id = $2 AND status <> 'cancelled'
		     ), 0),
		     updated_at = now()
		 WHERE id = $1 AND tenant_id = $2`,
		contractID, tenantID)
	if err != nil {
		return fmt.Errorf("recompute contract total %s: %w", contractID, err)
	}
	return nil
}

// spaceVenue resolves a space's venue within the tenant. A space ID from
// another tenant resolves to not-found, never to the foreign row.
func spaceVenue(ctx context.Context, tx pgx.Tx, tenantID, spaceID string) (string, error) {
	var venueID string
	err := tx.QueryRow(ctx,
		`SELECT venue_id FROM spaces WHERE id = $1 AND tenant_id = $2`, spaceID, tenantID,
	).Scan(&venueID)
	if err != nil {
		return "", notFoundWrap(err, "space %s", spaceID)
	}
	return venueID, nil
}

// validateMembers checks every proposed member against the stored candidate
// set and against the other members of the same proposal, aggregating all
// conflicts so the caller sees every clashing date at once. Rows listed in
// exclude (the contract's own current members, being replaced wholesale) are
// not conflicts against the new set.
func validateMembers(ctx context.Context, tx pgx.Tx, tenantID string, members []contract.Member, exclude map[string]bool) ([]booking.Conflict, error) {
	candidateCache := make(map[string][]booking.Booking)
	var accepted []booking.Booking
	var conflicts []booking.Conflict

	for i, m := range members {
		if m.Slot.SpaceID == "" || m.Status == booking.StatusCancelled {
			continue
		}

		key := booking.SlotKey(m.Slot.SpaceID, m.Slot.EventDate)
		candidates, ok := candidateCache[key]
		if !ok {
			loaded, err := loadCandidates(ctx, tx, tenantID, m.Slot.SpaceID, m.Slot.EventDate)
			if err != nil {
				return nil, err
			}
			candidates = loaded[:0:0]
			for _, c := range loaded {
				if !exclude[c.ID] {
					candidates = append(candidates, c)
				}
			}
			candidateCache[key] = candidates
		}

		conflicts = append(conflicts, booking.FindConflicts(candidates, m.Slot, m.ID)...)

		// Members of one proposal can collide with each other before any
		// row exists; give them synthetic IDs so the checker can report them.
		conflicts = append(conflicts, booking.FindConflicts(accepted, m.Slot, "")...)
		accepted = append(accepted, booking.Booking{
			ID:          fmt.Sprintf("member-%d", i+1),
			SpaceID:     m.Slot.SpaceID,
			EventDate:   m.Slot.EventDate,
			StartMinute: m.Slot.StartMinute,
			EndMinute:   m.Slot.EndMinute,
			Status:      m.Status,
		})
	}
	return conflicts, nil
}

func (s *Store) GetContract(ctx context.Context, tenantID, id string) (*contract.Contract, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	c, err := scanContract(row)
	if err != nil {
		return nil, notFoundWrap(err, "get contract %s", id)
	}
	members, err := loadContractMembers(ctx, s.pool, tenantID, c.ID)
	if err != nil {
		return nil, err
	}
	c.Members = members
	return &c, nil
}

func (s *Store) ListContracts(ctx context.Context, tenantID string) ([]contract.Contract, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE tenant_id = $1 ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []contract.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// CreateContract validates every member before writing anything, then inserts
// the contract row first and the member bookings after it, all in one
// serializable transaction. A blocking conflict on any member means zero rows
// are written.
func (s *Store) CreateContract(ctx context.Context, tenantID, name, customerID string, members []contract.Member) (*contract.Contract, []booking.Conflict, error) {
	tx, err := s.beginSerializable(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := checkCustomer(ctx, tx, tenantID, customerID); err != nil {
		return nil, nil, err
	}

	conflicts, err := validateMembers(ctx, tx, tenantID, members, nil)
	if err != nil {
		return nil, nil, err
	}
	if booking.HasBlocking(conflicts) {
		return nil, conflicts, &booking.ConflictError{Conflicts: conflicts}
	}

	// Contract root first: member rows carry a foreign key into contracts.
	row := tx.QueryRow(ctx,
		`INSERT INTO contracts (tenant_id, customer_id, contract_name, status)
		 VALUES ($1, $2, $3, 'active')
		 RETURNING `+contractColumns,
		tenantID, customerID, name)
	c, err := scanContract(row)
	if err != nil {
		return nil, nil, retryableWrap(err, "insert contract")
	}

	for i, m := range members {
		if err := insertMember(ctx, tx, tenantID, c.ID, customerID, m); err != nil {
			return nil, nil, fmt.Errorf("member %d: %w", i+1, err)
		}
	}

	if err := recomputeContractTotal(ctx, tx, tenantID, c.ID); err != nil {
		return nil, nil, err
	}

	final, err := reloadContract(ctx, tx, tenantID, c.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := commit(ctx, tx, "contract"); err != nil {
		return nil, nil, err
	}
	return final, conflicts, nil
}

// UpdateContract re-validates the full new member set, then diff-applies it:
// members with IDs update their existing rows, new members are inserted, and
// current live members missing from the new set are soft-cancelled. The whole
// replacement is one serializable transaction; partial application is never
// observable.
func (s *Store) UpdateContract(ctx context.Context, tenantID, id string, name *string, members []contract.Member) (*contract.Contract, []booking.Conflict, error) {
	tx, err := s.beginSerializable(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row := tx.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	c, err := scanContract(row)
	if err != nil {
		return nil, nil, notFoundWrap(err, "get contract %s", id)
	}
	if c.Status == contract.StatusCancelled {
		return nil, nil, fmt.Errorf("%w: contract %s is cancelled", domain.ErrValidation, id)
	}

	existing, err := loadContractMembers(ctx, tx, tenantID, c.ID)
	if err != nil {
		return nil, nil, err
	}
	existingByID := make(map[string]booking.Booking, len(existing))
	exclude := make(map[string]bool, len(existing))
	for _, b := range existing {
		existingByID[b.ID] = b
		exclude[b.ID] = true
	}

	kept := make(map[string]bool, len(members))
	for i, m := range members {
		if m.ID == "" {
			continue
		}
		prev, ok := existingByID[m.ID]
		if !ok {
			return nil, nil, fmt.Errorf("%w: member %d: booking %s does not belong to contract %s",
				domain.ErrValidation, i+1, m.ID, id)
		}
		if !prev.Status.CanTransition(m.Status) {
			return nil, nil, fmt.Errorf("%w: member %d: cannot move booking from %s to %s",
				domain.ErrValidation, i+1, prev.Status, m.Status)
		}
		kept[m.ID] = true
	}

	conflicts, err := validateMembers(ctx, tx, tenantID, members, exclude)
	if err != nil {
		return nil, nil, err
	}
	if booking.HasBlocking(conflicts) {
		return nil, conflicts, &booking.ConflictError{Conflicts: conflicts}
	}

	for i, m := range members {
		if m.ID == "" {
			if err := insertMember(ctx, tx, tenantID, c.ID, c.CustomerID, m); err != nil {
				return nil, nil, fmt.Errorf("member %d: %w", i+1, err)
			}
			continue
		}
		if err := updateMember(ctx, tx, tenantID, m); err != nil {
			return nil, nil, fmt.Errorf("member %d: %w", i+1, err)
		}
	}

	for _, b := range existing {
		if kept[b.ID] || !b.Live() {
			continue
		}
		if _, err := tx.Exec(ctx,
			`UPDATE bookings SET status = 'cancelled', updated_at = now()
			 WHERE id = $1 AND tenant_id = $2`, b.ID, tenantID); err != nil {
			return nil, nil, retryableWrap(err, "cancel removed member %s", b.ID)
		}
	}

	if name != nil && *name != "" {
		if _, err := tx.Exec(ctx,
			`UPDATE contracts SET contract_name = $3, updated_at = now()
			 WHERE id = $1 AND tenant_id = $2`, c.ID, tenantID, *name); err != nil {
			return nil, nil, fmt.Errorf("rename contract %s: %w", c.ID, err)
		}
	}

	if err := recomputeContractTotal(ctx, tx, tenantID, c.ID); err != nil {
		return nil, nil, err
	}

	final, err := reloadContract(ctx, tx, tenantID, c.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := commit(ctx, tx, "contract update"); err != nil {
		return nil, nil, err
	}
	return final, conflicts, nil
}

// CancelContract cascade soft-cancels the contract and all its cancellable
// members. Completed members stay completed. Idempotent.
func (s *Store) CancelContract(ctx context.Context, tenantID, id string) (*contract.Contract, error) {
	tx, err := s.beginSerializable(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row := tx.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	c, err := scanContract(row)
	if err != nil {
		return nil, notFoundWrap(err, "get contract %s", id)
	}

	if c.Status != contract.StatusCancelled {
		if _, err := tx.Exec(ctx,
			`UPDATE bookings SET status = 'cancelled', updated_at = now()
			 WHERE contract_id = $1 AND tenant_id = $2
			   AND status IN ('inquiry', 'confirmed_deposit_paid', 'confirmed_fully_paid')`,
			c.ID, tenantID); err != nil {
			return nil, retryableWrap(err, "cancel contract members %s", id)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE contracts SET status = 'cancelled', updated_at = now()
			 WHERE id = $1 AND tenant_id = $2`, c.ID, tenantID); err != nil {
			return nil, retryableWrap(err, "cancel contract %s", id)
		}
		if err := recomputeContractTotal(ctx, tx, tenantID, c.ID); err != nil {
			return nil, err
		}
	}

	final, err := reloadContract(ctx, tx, tenantID, c.ID)
	if err != nil {
		return nil, err
	}
	if err := commit(ctx, tx, "contract cancel"); err != nil {
		return nil, err
	}
	return final, nil
}

func insertMember(ctx context.Context, tx pgx.Tx, tenantID, contractID, customerID string, m contract.Member) error {
	var venueID *string
	if m.Slot.SpaceID != "" {
		v, err := spaceVenue(ctx, tx, tenantID, m.Slot.SpaceID)
		if err != nil {
			return err
		}
		venueID = &v
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO bookings (tenant_id, contract_id, space_id, venue_id, customer_id,
		                       event_date, start_minute, end_minute, status, guest_count, amount_cents)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		tenantID, contractID, nullIfEmpty(m.Slot.SpaceID), venueID, customerID,
		m.Slot.EventDate, m.Slot.StartMinute, m.Slot.EndMinute, m.Status, m.GuestCount, m.AmountCents)
	if err != nil {
		return retryableWrap(err, "insert member booking")
	}
	return nil
}

func updateMember(ctx context.Context, tx pgx.Tx, tenantID string, m contract.Member) error {
	var venueID *string
	if m.Slot.SpaceID != "" {
		v, err := spaceVenue(ctx, tx, tenantID, m.Slot.SpaceID)
		if err != nil {
			return err
		}
		venueID = &v
	}
	tag, err := tx.Exec(ctx,
		`UPDATE bookings
		 SET space_id = $3, venue_id = $4, event_date = $5, start_minute = $6, end_minute = $7,
		     status = $8, guest_count = $9, amount_cents = $10, updated_at = now()
		 WHERE id = $1 AND tenant_id = $2`,
		m.ID, tenantID, nullIfEmpty(m.Slot.SpaceID), venueID,
		m.Slot.EventDate, m.Slot.StartMinute, m.Slot.EndMinute, m.Status, m.GuestCount, m.AmountCents)
	if err != nil {
		return retryableWrap(err, "update member booking %s", m.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update member booking %s: %w", m.ID, domain.ErrNotFound)
	}
	return nil
}

func reloadContract(ctx context.Context, tx pgx.Tx, tenantID, id string) (*contract.Contract, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	c, err := scanContract(row)
	if err != nil {
		return nil, notFoundWrap(err, "reload contract %s", id)
	}
	members, err := loadContractMembers(ctx, tx, tenantID, c.ID)
	if err != nil {
		return nil, err
	}
	c.Members = members
	return &c, nil
}
