package readstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodbridge/internal/domain/lot"
	"foodbridge/internal/domain/reservation"
	"foodbridge/internal/infra"
	"foodbridge/internal/infra/db"
	"foodbridge/internal/usecase/queries"

	"github.com/google/uuid"
)

type LotReadStore struct {
	db db.DBTX
}

func NewLotReadStore(dbtx db.DBTX) *LotReadStore {
	return &LotReadStore{db: dbtx}
}

// The tier is derived in SQL at day granularity so the partition filter and
// keyset pagination compose in one query. The cached_tier column is not
// consulted on reads.
const lotTierExpr = `CASE
  WHEN l.expiry_date::date <= %[1]s THEN 'expired'
  WHEN l.expiry_date::date - l.shelf_buffer_days <= %[1]s THEN 'aging'
  ELSE 'fresh'
END`

func activeStateNames() []string {
	states := reservation.ActiveStates()
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = s.String()
	}
	return names
}

func (s *LotReadStore) FindByID(ctx context.Context, id uuid.UUID, asOf time.Time) (*queries.LotView, error) {
	sql := fmt.Sprintf(`
SELECT l.id, l.product, l.quantity, l.unit, l.expiry_date, l.shelf_buffer_days,
       `+lotTierExpr+` AS tier,
       l.owner_org_id, ar.state,
       EXISTS (SELECT 1 FROM reservations d WHERE d.lot_id = l.id AND d.state = 'delivered') AS retired,
       l.created_at, l.updated_at
FROM lots l
LEFT JOIN LATERAL (
  SELECT state FROM reservations r
  WHERE r.lot_id = l.id AND r.state = ANY($3)
  ORDER BY r.created_at DESC LIMIT 1
) ar ON true
WHERE l.id = $1`, "$2::date")

	row := s.db.QueryRow(ctx, sql, id, asOf, activeStateNames())
	view, err := scanLotView(row)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, infra.WrapRepoErr("lot not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find lot by ID", err)
	}
	return view, nil
}

// FindVisibleByTier lists claimable lots for one consumer tier: the tier
// must match, no active reservation may exist, and delivered lots are gone
// for good.
func (s *LotReadStore) FindVisibleByTier(ctx context.Context, tier lot.Tier, filters queries.LotFilters, asOf time.Time, lastCreatedAt *time.Time, lastID *uuid.UUID, limit int32) ([]*queries.LotView, error) {
	args := []any{asOf, activeStateNames(), tier.String()}
	conds := []string{
		fmt.Sprintf(lotTierExpr, "$1::date") + " = $3",
		"NOT EXISTS (SELECT 1 FROM reservations r WHERE r.lot_id = l.id AND r.state = ANY($2))",
		"NOT EXISTS (SELECT 1 FROM reservations d WHERE d.lot_id = l.id AND d.state = 'delivered')",
	}

	conds, args = appendLotFilters(conds, args, filters)

	if lastCreatedAt != nil && lastID != nil {
		args = append(args, *lastCreatedAt, *lastID)
		conds = append(conds, fmt.Sprintf("(l.created_at, l.id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	args = append(args, limit)
	sql := fmt.Sprintf(`
SELECT l.id, l.product, l.quantity, l.unit, l.expiry_date, l.shelf_buffer_days,
       `+lotTierExpr+` AS tier,
       l.owner_org_id, NULL::text AS active_state, false AS retired,
       l.created_at, l.updated_at
FROM lots l
WHERE %s
ORDER BY l.created_at DESC, l.id DESC
LIMIT $%d`, "$1::date", strings.Join(conds, " AND "), len(args))

	return s.queryLotViews(ctx, sql, args)
}

// FindAllAnnotated is the operator view: every lot, with the active
// reservation's state joined inline.
func (s *LotReadStore) FindAllAnnotated(ctx context.Context, filters queries.LotFilters, asOf time.Time, lastCreatedAt *time.Time, lastID *uuid.UUID, limit int32) ([]*queries.LotView, error) {
	args := []any{asOf, activeStateNames()}
	conds := []string{"true"}

	conds, args = appendLotFilters(conds, args, filters)

	if lastCreatedAt != nil && lastID != nil {
		args = append(args, *lastCreatedAt, *lastID)
		conds = append(conds, fmt.Sprintf("(l.created_at, l.id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	args = append(args, limit)
	sql := fmt.Sprintf(`
SELECT l.id, l.product, l.quantity, l.unit, l.expiry_date, l.shelf_buffer_days,
       `+lotTierExpr+` AS tier,
       l.owner_org_id, ar.state,
       EXISTS (SELECT 1 FROM reservations d WHERE d.lot_id = l.id AND d.state = 'delivered') AS retired,
       l.created_at, l.updated_at
FROM lots l
LEFT JOIN LATERAL (
  SELECT state FROM reservations r
  WHERE r.lot_id = l.id AND r.state = ANY($2)
  ORDER BY r.created_at DESC LIMIT 1
) ar ON true
WHERE %s
ORDER BY l.created_at DESC, l.id DESC
LIMIT $%d`, "$1::date", strings.Join(conds, " AND "), len(args))

	return s.queryLotViews(ctx, sql, args)
}

func appendLotFilters(conds []string, args []any, filters queries.LotFilters) ([]string, []any) {
	if filters.OwnerOrgID != nil {
		args = append(args, *filters.OwnerOrgID)
		conds = append(conds, fmt.Sprintf("l.owner_org_id = $%d", len(args)))
	}
	if filters.Product != nil {
		args = append(args, "%"+*filters.Product+"%")
		conds = append(conds, fmt.Sprintf("l.product ILIKE $%d", len(args)))
	}
	return conds, args
}

func (s *LotReadStore) queryLotViews(ctx context.Context, sql string, args []any) ([]*queries.LotView, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list lots", err)
	}
	defer rows.Close()

	var out []*queries.LotView
	for rows.Next() {
		view, err := scanLotView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan lot row", err)
		}
		out = append(out, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate lot rows", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLotView(row rowScanner) (*queries.LotView, error) {
	var view queries.LotView
	err := row.Scan(
		&view.ID, &view.Product, &view.Quantity, &view.Unit,
		&view.ExpiryDate, &view.ShelfBufferDays, &view.Tier,
		&view.OwnerOrgID, &view.ActiveReservationState, &view.Retired,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &view, nil
}
