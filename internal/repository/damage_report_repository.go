package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lackwerk/rental-service/internal/model"
)

// ErrReportNotFound is returned when a damage report ID does not
// exist.
var ErrReportNotFound = errors.New("damage report not found")

// reportTransitions is the allowed transition relation for damage
// report status changes.
var reportTransitions = map[string][]string{
	model.ReportInProgress: {model.ReportPending},
	model.ReportCompleted:  {model.ReportPending, model.ReportInProgress},
	model.ReportCancelled:  {model.ReportPending, model.ReportInProgress},
}

// DamageReportRepo stores repair intake submissions.  Reports carry
// no scheduling logic; the back office works them via status
// transitions only.
type DamageReportRepo struct {
	db *sql.DB
}

// NewDamageReportRepo returns a DamageReportRepo bound to the given
// database.
func NewDamageReportRepo(db *sql.DB) *DamageReportRepo { return &DamageReportRepo{db: db} }

const reportCols = `id, reference, customer_name, customer_phone, customer_email, vehicle_make, vehicle_model, license_plate, damaged_parts, description, status, created_at, updated_at`

func scanReport(row interface{ Scan(...any) error }) (model.DamageReport, error) {
	var (
		rep   model.DamageReport
		parts string
	)
	err := row.Scan(&rep.ID, &rep.Reference, &rep.CustomerName, &rep.CustomerPhone, &rep.CustomerEmail,
		&rep.VehicleMake, &rep.VehicleModel, &rep.LicensePlate, &parts, &rep.Description,
		&rep.Status, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return rep, err
	}
	rep.DamagedParts = splitCodes(parts)
	return rep, nil
}

// Create inserts a pending report and populates ID and timestamps.
func (r *DamageReportRepo) Create(ctx context.Context, rep *model.DamageReport) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO damage_reports
		 (reference, customer_name, customer_phone, customer_email, vehicle_make, vehicle_model, license_plate, damaged_parts, description, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending')`,
		rep.Reference, rep.CustomerName, rep.CustomerPhone, rep.CustomerEmail,
		rep.VehicleMake, rep.VehicleModel, rep.LicensePlate, joinCodes(rep.DamagedParts), rep.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rep.ID = uint64(id)
	row := r.db.QueryRowContext(ctx, `SELECT `+reportCols+` FROM damage_reports WHERE id = ?`, rep.ID)
	created, err := scanReport(row)
	if err != nil {
		return err
	}
	*rep = created
	return nil
}

// List returns reports newest first, optionally filtered by status.
func (r *DamageReportRepo) List(ctx context.Context, status string) ([]model.DamageReport, error) {
	q := `SELECT ` + reportCols + ` FROM damage_reports`
	args := []any{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.DamageReport, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// UpdateStatus applies a report status transition, locking the row
// like the booking ledger does.
func (r *DamageReportRepo) UpdateStatus(ctx context.Context, id uint64, newStatus string) (model.DamageReport, error) {
	allowedFrom, ok := reportTransitions[newStatus]
	if !ok {
		return model.DamageReport{}, ErrBadTransition
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.DamageReport{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM damage_reports WHERE id = ? FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DamageReport{}, ErrReportNotFound
	}
	if err != nil {
		return model.DamageReport{}, err
	}
	permitted := false
	for _, s := range allowedFrom {
		if s == current {
			permitted = true
			break
		}
	}
	if !permitted {
		return model.DamageReport{}, ErrBadTransition
	}
	if _, err := tx.ExecContext(ctx, `UPDATE damage_reports SET status = ? WHERE id = ?`, newStatus, id); err != nil {
		return model.DamageReport{}, err
	}
	row := tx.QueryRowContext(ctx, `SELECT `+reportCols+` FROM damage_reports WHERE id = ?`, id)
	rep, err := scanReport(row)
	if err != nil {
		return model.DamageReport{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.DamageReport{}, err
	}
	committed = true
	return rep, nil
}
