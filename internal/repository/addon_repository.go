package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lackwerk/rental-service/internal/model"
)

// ErrUnknownAddOn is returned when a requested add-on code is not in
// the catalog (or not active).  Handlers translate this into 400.
var ErrUnknownAddOn = errors.New("unknown add-on code")

// AddOnRepo reads the add-on catalog.  Add-ons are seeded rows and
// change rarely; there is no write path outside migrations.
type AddOnRepo struct {
	db *sql.DB
}

// NewAddOnRepo returns an AddOnRepo bound to the given database.
func NewAddOnRepo(db *sql.DB) *AddOnRepo { return &AddOnRepo{db: db} }

const addOnCols = `id, code, label, pricing_mode, amount_cents, active, created_at`

// ListActive returns the add-ons currently offered in the wizard,
// ordered by code.
func (r *AddOnRepo) ListActive(ctx context.Context) ([]model.AddOn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+addOnCols+` FROM add_ons WHERE active = 1 ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AddOn, 0)
	for rows.Next() {
		var a model.AddOn
		if err := rows.Scan(&a.ID, &a.Code, &a.Label, &a.PricingMode, &a.AmountCents, &a.Active, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByCodes resolves a set of codes to active catalog entries.  Any
// unknown or inactive code fails the whole lookup with ErrUnknownAddOn
// so the wizard never prices a selection it does not understand.
func (r *AddOnRepo) GetByCodes(ctx context.Context, codes []string) ([]model.AddOn, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	active, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]model.AddOn, len(active))
	for _, a := range active {
		byCode[a.Code] = a
	}
	out := make([]model.AddOn, 0, len(codes))
	for _, code := range codes {
		code = strings.ToLower(strings.TrimSpace(code))
		a, ok := byCode[code]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAddOn, code)
		}
		out = append(out, a)
	}
	return out, nil
}
