package shared

import (
	"context"

	"foodbridge/internal/domain/lot"
	"foodbridge/internal/domain/reservation"
	"foodbridge/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: full transaction for write operations with retry on
	// serialization failures and deadlocks
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
}

type Tx interface {
	Lots() LotRepository
	Reservations() ReservationRepository
	DB() db.DBTX
}

type LotRepository interface {
	Create(ctx context.Context, l *lot.Lot, cachedTier lot.Tier) error
	Update(ctx context.Context, l *lot.Lot, cachedTier lot.Tier) error
	FindByID(ctx context.Context, id uuid.UUID) (*lot.Lot, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*lot.Lot, error)
	// ClearOrphanedClaimFlags unsets the legacy claimed indicator on lots
	// with no active reservation; MarkUnflaggedClaims sets it where an
	// active reservation exists. Both are single idempotent statements.
	ClearOrphanedClaimFlags(ctx context.Context) (int64, error)
	MarkUnflaggedClaims(ctx context.Context) (int64, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, res *reservation.Reservation) (uuid.UUID, error)
	Update(ctx context.Context, res *reservation.Reservation) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	FindActiveByLotID(ctx context.Context, lotID uuid.UUID) (*reservation.Reservation, error)
	FindActiveByLotIDForUpdate(ctx context.Context, lotID uuid.UUID) ([]*reservation.Reservation, error)
	CountActiveByLotID(ctx context.Context, lotID uuid.UUID) (int64, error)
	HasDeliveredForLot(ctx context.Context, lotID uuid.UUID) (bool, error)
	LotIDsWithMultipleActive(ctx context.Context) ([]uuid.UUID, error)
}
