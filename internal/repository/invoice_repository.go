package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lackwerk/rental-service/internal/model"
)

// Invoice sentinel errors.
var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrInvoiceExists   = errors.New("invoice already exists for booking")
)

// InvoiceRepo creates and lists billing records derived from
// committed bookings.  Numbers follow LW-<year>-<seq> with the
// sequence scoped per year.
type InvoiceRepo struct {
	db *sql.DB
}

// NewInvoiceRepo returns an InvoiceRepo bound to the given database.
func NewInvoiceRepo(db *sql.DB) *InvoiceRepo { return &InvoiceRepo{db: db} }

const invoiceCols = `id, number, booking_id, customer_id, amount_cents, status, issued_at`

func scanInvoice(row interface{ Scan(...any) error }) (model.Invoice, error) {
	var inv model.Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.BookingID, &inv.CustomerID, &inv.AmountCents, &inv.Status, &inv.IssuedAt)
	return inv, err
}

// CreateForBooking issues an invoice for a committed booking, taking
// the amount from the booking's stored total.  One invoice per
// booking; a second attempt returns ErrInvoiceExists.  Number
// generation and insert run in one transaction so concurrent issuance
// cannot produce duplicate numbers.
func (r *InvoiceRepo) CreateForBooking(ctx context.Context, b model.Booking) (model.Invoice, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Invoice{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var existing uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM invoices WHERE booking_id = ? FOR UPDATE`, b.ID).Scan(&existing)
	if err == nil {
		return model.Invoice{}, ErrInvoiceExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Invoice{}, err
	}

	year := time.Now().UTC().Year()
	var seq uint64
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) + 1 FROM invoices WHERE number LIKE ? FOR UPDATE`,
		fmt.Sprintf("LW-%d-%%", year)).Scan(&seq)
	if err != nil {
		return model.Invoice{}, err
	}
	number := fmt.Sprintf("LW-%d-%04d", year, seq)

	res, err := tx.ExecContext(ctx,
		`INSERT INTO invoices (number, booking_id, customer_id, amount_cents, status) VALUES (?, ?, ?, ?, 'open')`,
		number, b.ID, b.CustomerID, b.TotalCents)
	if err != nil {
		return model.Invoice{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Invoice{}, err
	}
	row := tx.QueryRowContext(ctx, `SELECT `+invoiceCols+` FROM invoices WHERE id = ?`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		return model.Invoice{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Invoice{}, err
	}
	committed = true
	return inv, nil
}

// List returns invoices newest first.
func (r *InvoiceRepo) List(ctx context.Context) ([]model.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+invoiceCols+` FROM invoices ORDER BY issued_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// UpdateStatus moves an invoice between open/paid/void.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id uint64, status string) (model.Invoice, error) {
	switch status {
	case model.InvoiceOpen, model.InvoicePaid, model.InvoiceVoid:
	default:
		return model.Invoice{}, ErrBadTransition
	}
	res, err := r.db.ExecContext(ctx, `UPDATE invoices SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return model.Invoice{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Invoice{}, err
	}
	if n == 0 {
		return model.Invoice{}, ErrInvoiceNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+invoiceCols+` FROM invoices WHERE id = ?`, id)
	return scanInvoice(row)
}
