package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lackwerk/rental-service/internal/model"
)

// ErrCustomerNotFound is returned when a customer ID does not exist.
var ErrCustomerNotFound = errors.New("customer not found")

// CustomerRepo manages the shop's customer database.  The booking
// wizard goes through CreateOrReuse so repeat customers keep a single
// record keyed by their email address.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo returns a CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerCols = `id, name, address, phone, email, driver_license, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.Email, &c.DriverLicense, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CreateOrReuse finds the customer with the same (lower-cased) email
// and refreshes their contact details, or inserts a new record.  The
// returned customer always has a populated ID.
func (r *CustomerRepo) CreateOrReuse(ctx context.Context, c model.Customer) (model.Customer, error) {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	existing, err := r.GetByEmail(ctx, c.Email)
	switch {
	case err == nil:
		c.ID = existing.ID
		if err := r.Update(ctx, c); err != nil {
			return model.Customer{}, err
		}
		return r.GetByID(ctx, c.ID)
	case errors.Is(err, ErrCustomerNotFound):
		if err := r.Create(ctx, &c); err != nil {
			return model.Customer{}, err
		}
		return r.GetByID(ctx, c.ID)
	default:
		return model.Customer{}, err
	}
}

// Create inserts a customer record and populates its ID.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (name, address, phone, email, driver_license) VALUES (?, ?, ?, ?, ?)`,
		c.Name, c.Address, c.Phone, strings.ToLower(strings.TrimSpace(c.Email)), c.DriverLicense)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Update rewrites a customer's contact fields.
func (r *CustomerRepo) Update(ctx context.Context, c model.Customer) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE customers SET name = ?, address = ?, phone = ?, email = ?, driver_license = ? WHERE id = ?`,
		c.Name, c.Address, c.Phone, strings.ToLower(strings.TrimSpace(c.Email)), c.DriverLicense, c.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// GetByID returns one customer or ErrCustomerNotFound.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (model.Customer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+customerCols+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Customer{}, ErrCustomerNotFound
	}
	return c, err
}

// GetByEmail returns one customer by normalized email or
// ErrCustomerNotFound.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (model.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.db.QueryRowContext(ctx, `SELECT `+customerCols+` FROM customers WHERE email = ? LIMIT 1`, email)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Customer{}, ErrCustomerNotFound
	}
	return c, err
}

// Search lists customers whose name, email or phone contains the
// term, newest first.  An empty term lists everyone.
func (r *CustomerRepo) Search(ctx context.Context, term string) ([]model.Customer, error) {
	q := `SELECT ` + customerCols + ` FROM customers`
	args := []any{}
	term = strings.TrimSpace(term)
	if term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q += ` WHERE LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?`
		args = append(args, like, like, like)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes a customer record.  Bookings referencing the
// customer keep their foreign key; deletion fails on a constraint
// violation, which handlers surface as a conflict.
func (r *CustomerRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCustomerNotFound
	}
	return nil
}
