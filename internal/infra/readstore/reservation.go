package readstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"foodbridge/internal/infra"
	"foodbridge/internal/infra/db"
	"foodbridge/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationReadStore struct {
	db db.DBTX
}

func NewReservationReadStore(dbtx db.DBTX) *ReservationReadStore {
	return &ReservationReadStore{db: dbtx}
}

const selectReservationViewSQL = `
SELECT r.id, r.lot_id, l.product, l.owner_org_id, r.claimant_org_id, r.state,
       r.transition_log, r.requested_pickup_date, r.actual_pickup_date,
       r.created_at, r.updated_at
FROM reservations r
JOIN lots l ON l.id = r.lot_id`

func (s *ReservationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	row := s.db.QueryRow(ctx, selectReservationViewSQL+" WHERE r.id = $1", id)

	var (
		view    queries.ReservationView
		logJSON []byte
	)
	err := row.Scan(
		&view.ID, &view.LotID, &view.LotProduct, &view.LotOwnerOrgID,
		&view.ClaimantOrgID, &view.State, &logJSON,
		&view.RequestedPickupDate, &view.ActualPickupDate,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}

	if len(logJSON) > 0 {
		if err := json.Unmarshal(logJSON, &view.TransitionLog); err != nil {
			return nil, infra.WrapRepoErr("failed to decode transition log", err)
		}
	}
	return &view, nil
}

const selectReservationListSQL = `
SELECT r.id, r.lot_id, l.product, r.claimant_org_id, r.state, r.created_at
FROM reservations r
JOIN lots l ON l.id = r.lot_id`

// FindForOrg scopes to reservations the org placed or received.
func (s *ReservationReadStore) FindForOrg(ctx context.Context, orgID uuid.UUID, filters queries.ReservationFilters, lastCreatedAt *time.Time, lastID *uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	args := []any{orgID}
	conds := []string{"(r.claimant_org_id = $1 OR l.owner_org_id = $1)"}
	return s.list(ctx, conds, args, filters, lastCreatedAt, lastID, limit)
}

func (s *ReservationReadStore) FindAll(ctx context.Context, filters queries.ReservationFilters, lastCreatedAt *time.Time, lastID *uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	return s.list(ctx, []string{"true"}, nil, filters, lastCreatedAt, lastID, limit)
}

func (s *ReservationReadStore) list(ctx context.Context, conds []string, args []any, filters queries.ReservationFilters, lastCreatedAt *time.Time, lastID *uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	if filters.LotID != nil {
		args = append(args, *filters.LotID)
		conds = append(conds, fmt.Sprintf("r.lot_id = $%d", len(args)))
	}
	if filters.State != nil {
		args = append(args, *filters.State)
		conds = append(conds, fmt.Sprintf("r.state = $%d", len(args)))
	}
	if lastCreatedAt != nil && lastID != nil {
		args = append(args, *lastCreatedAt, *lastID)
		conds = append(conds, fmt.Sprintf("(r.created_at, r.id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	args = append(args, limit)
	sql := fmt.Sprintf("%s WHERE %s ORDER BY r.created_at DESC, r.id DESC LIMIT $%d",
		selectReservationListSQL, strings.Join(conds, " AND "), len(args))

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservations", err)
	}
	defer rows.Close()

	var out []*queries.ReservationListItem
	for rows.Next() {
		var item queries.ReservationListItem
		if err := rows.Scan(&item.ID, &item.LotID, &item.LotProduct, &item.ClaimantOrgID, &item.State, &item.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation row", err)
		}
		out = append(out, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservation rows", err)
	}
	return out, nil
}
