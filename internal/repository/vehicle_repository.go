package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lackwerk/rental-service/internal/model"
)

// VehicleRepo provides catalog access for the rental fleet.  The
// fleet is small; list queries return every row and filtering happens
// in SQL only for the active flag.
type VehicleRepo struct {
	db *sql.DB
}

// NewVehicleRepo returns a VehicleRepo bound to the given database.
func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{db: db} }

// DB exposes the underlying handle for transaction orchestration.
func (r *VehicleRepo) DB() *sql.DB { return r.db }

const vehicleCols = `id, slug, display_name, license_plate, color, daily_rate_cents, status, available_from, created_at, updated_at`

func scanVehicle(row interface{ Scan(...any) error }) (model.Vehicle, error) {
	var v model.Vehicle
	err := row.Scan(&v.ID, &v.Slug, &v.DisplayName, &v.LicensePlate, &v.Color,
		&v.DailyRateCents, &v.Status, &v.AvailableFrom, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// List returns all vehicles, optionally restricted to active ones,
// ordered by slug for stable output.
func (r *VehicleRepo) List(ctx context.Context, activeOnly bool) ([]model.Vehicle, error) {
	q := `SELECT ` + vehicleCols + ` FROM vehicles`
	if activeOnly {
		q += ` WHERE status = 'active'`
	}
	q += ` ORDER BY slug`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetByID returns one vehicle or ErrVehicleNotFound.
func (r *VehicleRepo) GetByID(ctx context.Context, id uint64) (model.Vehicle, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+vehicleCols+` FROM vehicles WHERE id = ?`, id)
	v, err := scanVehicle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Vehicle{}, ErrVehicleNotFound
	}
	return v, err
}

// GetBySlug returns one vehicle by its stable code or ErrVehicleNotFound.
func (r *VehicleRepo) GetBySlug(ctx context.Context, slug string) (model.Vehicle, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	row := r.db.QueryRowContext(ctx, `SELECT `+vehicleCols+` FROM vehicles WHERE slug = ?`, slug)
	v, err := scanVehicle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Vehicle{}, ErrVehicleNotFound
	}
	return v, err
}

// Create inserts a catalog entry and returns its ID on the record.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO vehicles (slug, display_name, license_plate, color, daily_rate_cents, status, available_from)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.ToLower(strings.TrimSpace(v.Slug)), v.DisplayName, v.LicensePlate, v.Color,
		v.DailyRateCents, v.Status, v.AvailableFrom)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// Update rewrites the mutable catalog fields of a vehicle.
func (r *VehicleRepo) Update(ctx context.Context, v model.Vehicle) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vehicles SET display_name = ?, license_plate = ?, color = ?, daily_rate_cents = ?, status = ?, available_from = ?
		 WHERE id = ?`,
		v.DisplayName, v.LicensePlate, v.Color, v.DailyRateCents, v.Status, v.AvailableFrom, v.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

// Deactivate parks a vehicle instead of deleting it; historical
// bookings keep their reference and the wizard stops offering it.
func (r *VehicleRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE vehicles SET status = 'inactive' WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVehicleNotFound
	}
	return nil
}
