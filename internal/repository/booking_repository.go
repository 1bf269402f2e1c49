package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lackwerk/rental-service/internal/availability"
	"github.com/lackwerk/rental-service/internal/model"
)

// BookingRepo is the booking ledger: the sole source of truth for
// availability conflicts.  Rows are appended by the wizard's finalize
// and afterwards mutated only through explicit status transitions.
// Dates are DATE columns in UTC; status and time_block are enum
// strings matching the model constants.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for transaction orchestration.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// statusTransitions is the allowed transition relation for admin
// status changes.  Everything else is rejected with ErrBadTransition.
var statusTransitions = map[string][]string{
	model.BookingConfirmed: {model.BookingPending},
	model.BookingCompleted: {model.BookingPending, model.BookingConfirmed},
	model.BookingCancelled: {model.BookingPending, model.BookingConfirmed},
}

const bookingCols = `id, vehicle_id, start_date, end_date, time_block, customer_id, status, payment_method, add_on_codes, notes, total_cents, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (model.Booking, error) {
	var (
		b     model.Booking
		codes string
		notes sql.NullString
	)
	err := row.Scan(&b.ID, &b.VehicleID, &b.StartDate, &b.EndDate, &b.TimeBlock,
		&b.CustomerID, &b.Status, &b.PaymentMethod, &codes, &notes,
		&b.TotalCents, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	b.AddOnCodes = splitCodes(codes)
	if notes.Valid {
		b.Notes = notes.String
	}
	return b, nil
}

func splitCodes(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinCodes(codes []string) string { return strings.Join(codes, ",") }

// ListBlocking returns the vehicle's bookings that currently block its
// dates (pending or confirmed), the snapshot the availability engine
// consumes for advisory checks.
func (r *BookingRepo) ListBlocking(ctx context.Context, vehicleID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
			   WHERE vehicle_id = ? AND status IN ('pending','confirmed')
			   ORDER BY start_date`
	return r.queryBookings(ctx, q, vehicleID)
}

// ListAllBlocking returns every blocking booking across the fleet for
// fleet-wide availability snapshots.
func (r *BookingRepo) ListAllBlocking(ctx context.Context) ([]model.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
			   WHERE status IN ('pending','confirmed')
			   ORDER BY vehicle_id, start_date`
	return r.queryBookings(ctx, q)
}

// List returns bookings for the back office, newest first, optionally
// restricted to those touching the inclusive range [from, to].
func (r *BookingRepo) List(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	q := `SELECT ` + bookingCols + ` FROM bookings`
	args := []any{}
	if !from.IsZero() && !to.IsZero() {
		q += ` WHERE start_date <= ? AND end_date >= ?`
		args = append(args, to, from)
	}
	q += ` ORDER BY created_at DESC`
	return r.queryBookings(ctx, q, args...)
}

func (r *BookingRepo) queryBookings(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetByID returns one booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, err
}

// CreateChecked appends a booking after re-validating availability
// against the current ledger, atomically with respect to concurrent
// finalizes.  The vehicle's blocking rows are locked with
// SELECT ... FOR UPDATE so that two wizards racing for the same slot
// serialize: the loser sees the winner's row and gets
// ErrBookingConflict while the ledger stays unchanged.  On success the
// record's ID and timestamps are populated.
func (r *BookingRepo) CreateChecked(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const lockQ = `SELECT ` + bookingCols + ` FROM bookings
				   WHERE vehicle_id = ? AND status IN ('pending','confirmed')
				   ORDER BY start_date
				   FOR UPDATE`
	rows, err := tx.QueryContext(ctx, lockQ, b.VehicleID)
	if err != nil {
		return err
	}
	snapshot := make([]model.Booking, 0)
	for rows.Next() {
		existing, err := scanBooking(rows)
		if err != nil {
			rows.Close()
			return err
		}
		snapshot = append(snapshot, existing)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	// The commit-time check is authoritative; the advisory check the
	// customer saw during selection is never trusted here.
	if !availability.VehicleAvailable(b.VehicleID, b.StartDate, b.EndDate, snapshot) {
		return ErrBookingConflict
	}

	if err := r.insertTx(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Create appends a booking without any availability validation.  Admin
// bookings go through this path on purpose: back-office overrides may
// double-book a vehicle knowingly.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := r.insertTx(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *BookingRepo) insertTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const ins = `INSERT INTO bookings
		(vehicle_id, start_date, end_date, time_block, customer_id, status, payment_method, add_on_codes, notes, total_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins,
		b.VehicleID, b.StartDate, b.EndDate, b.TimeBlock, b.CustomerID,
		b.Status, b.PaymentMethod, joinCodes(b.AddOnCodes), b.Notes, b.TotalCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the row to populate timestamps and defaults.
	row := tx.QueryRowContext(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = ?`, b.ID)
	created, err := scanBooking(row)
	if err != nil {
		return err
	}
	*b = created
	return nil
}

// UpdateStatus applies an admin status transition.  The current status
// row is locked, the transition checked against the allowed relation,
// and the new status written.  Availability is deliberately not
// validated here: status changes are an administrative override.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, newStatus string) (model.Booking, error) {
	allowedFrom, ok := statusTransitions[newStatus]
	if !ok {
		return model.Booking{}, ErrBadTransition
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ? FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	if err != nil {
		return model.Booking{}, err
	}
	permitted := false
	for _, s := range allowedFrom {
		if s == current {
			permitted = true
			break
		}
	}
	if !permitted {
		return model.Booking{}, ErrBadTransition
	}
	if _, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, newStatus, id); err != nil {
		return model.Booking{}, err
	}
	row := tx.QueryRowContext(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err != nil {
		return model.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, err
	}
	committed = true
	return b, nil
}

// Cancel soft-deletes a booking by moving it to cancelled, releasing
// its dates while keeping the row for auditing.  Terminal bookings
// (completed, already cancelled) are rejected via the transition
// relation.
func (r *BookingRepo) Cancel(ctx context.Context, id uint64) (model.Booking, error) {
	return r.UpdateStatus(ctx, id, model.BookingCancelled)
}
