package repository

import (
	"context"
	"time"

	"foodbridge/internal/domain/lot"
	"foodbridge/internal/infra"
	"foodbridge/internal/infra/db"

	"github.com/google/uuid"
)

type LotRepository struct {
	db db.DBTX
}

func NewLotRepository(dbtx db.DBTX) *LotRepository {
	return &LotRepository{db: dbtx}
}

const insertLotSQL = `
INSERT INTO lots (id, product, quantity, unit, expiry_date, shelf_buffer_days, cached_tier, legacy_claimed, owner_org_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8, $9, $10)`

func (r *LotRepository) Create(ctx context.Context, l *lot.Lot, cachedTier lot.Tier) error {
	_, err := r.db.Exec(ctx, insertLotSQL,
		l.ID(), l.Product(), l.Quantity(), l.Unit(),
		l.ExpiryDate(), l.ShelfBufferDays(), cachedTier.String(),
		l.OwnerOrgID(), l.CreatedAt(), l.UpdatedAt(),
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return infra.WrapRepoErr("lot owner organization does not exist", err, infra.KindForeignKeyViolated)
		}
		return infra.WrapRepoErr("failed to create lot", err)
	}
	return nil
}

const updateLotSQL = `
UPDATE lots
SET quantity = $2, unit = $3, expiry_date = $4, shelf_buffer_days = $5, cached_tier = $6, updated_at = $7
WHERE id = $1`

func (r *LotRepository) Update(ctx context.Context, l *lot.Lot, cachedTier lot.Tier) error {
	tag, err := r.db.Exec(ctx, updateLotSQL,
		l.ID(), l.Quantity(), l.Unit(), l.ExpiryDate(),
		l.ShelfBufferDays(), cachedTier.String(), l.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update lot", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("lot not found", nil, infra.KindNotFound)
	}
	return nil
}

const selectLotSQL = `
SELECT id, product, quantity, unit, expiry_date, shelf_buffer_days, owner_org_id, created_at, updated_at
FROM lots
WHERE id = $1`

func (r *LotRepository) FindByID(ctx context.Context, id uuid.UUID) (*lot.Lot, error) {
	return r.scanLot(r.db.QueryRow(ctx, selectLotSQL, id))
}

func (r *LotRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*lot.Lot, error) {
	return r.scanLot(r.db.QueryRow(ctx, selectLotSQL+" FOR UPDATE", id))
}

// Both reconciliation statements touch only rows whose legacy indicator
// disagrees with the reservation table, so reruns are no-ops.
const clearOrphanFlagsSQL = `
UPDATE lots l
SET legacy_claimed = false, updated_at = now()
WHERE l.legacy_claimed
  AND NOT EXISTS (
    SELECT 1 FROM reservations r
    WHERE r.lot_id = l.id AND r.state = ANY($1)
  )`

const markUnflaggedClaimsSQL = `
UPDATE lots l
SET legacy_claimed = true, updated_at = now()
WHERE NOT l.legacy_claimed
  AND EXISTS (
    SELECT 1 FROM reservations r
    WHERE r.lot_id = l.id AND r.state = ANY($1)
  )`

func (r *LotRepository) ClearOrphanedClaimFlags(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, clearOrphanFlagsSQL, activeStateNames())
	if err != nil {
		return 0, infra.WrapRepoErr("failed to clear orphaned claim flags", err)
	}
	return tag.RowsAffected(), nil
}

func (r *LotRepository) MarkUnflaggedClaims(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, markUnflaggedClaimsSQL, activeStateNames())
	if err != nil {
		return 0, infra.WrapRepoErr("failed to mark unflagged claims", err)
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *LotRepository) scanLot(row rowScanner) (*lot.Lot, error) {
	var (
		id, ownerOrgID       uuid.UUID
		product, unit        string
		quantity, bufferDays int
		expiryDate           time.Time
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&id, &product, &quantity, &unit, &expiryDate, &bufferDays, &ownerOrgID, &createdAt, &updatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, infra.WrapRepoErr("lot not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find lot", err)
	}

	return lot.ReconstructLot(id, product, quantity, unit, expiryDate, bufferDays, ownerOrgID, createdAt, updatedAt), nil
}
