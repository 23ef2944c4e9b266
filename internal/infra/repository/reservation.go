package repository

import (
	"context"
	"encoding/json"
	"time"

	"foodbridge/internal/domain/reservation"
	"foodbridge/internal/infra"
	"foodbridge/internal/infra/db"

	"github.com/google/uuid"
)

type ReservationRepository struct {
	db db.DBTX
}

func NewReservationRepository(dbtx db.DBTX) *ReservationRepository {
	return &ReservationRepository{db: dbtx}
}

func activeStateNames() []string {
	states := reservation.ActiveStates()
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = s.String()
	}
	return names
}

const insertReservationSQL = `
INSERT INTO reservations (id, lot_id, claimant_org_id, state, transition_log, requested_pickup_date, actual_pickup_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`

// Create relies on uq_reservations_active_lot: a second active insert for
// the same lot fails with a unique violation and surfaces as KindConflict.
func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) (uuid.UUID, error) {
	logJSON, err := json.Marshal(res.TransitionLog())
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to encode transition log", err)
	}

	var id uuid.UUID
	err = r.db.QueryRow(ctx, insertReservationSQL,
		res.ID(), res.LotID(), res.ClaimantOrgID(), res.State().String(),
		logJSON, res.RequestedPickupDate(), res.ActualPickupDate(),
		res.CreatedAt(), res.UpdatedAt(),
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("lot already has an active reservation", err, infra.KindConflict)
		}
		if db.IsForeignKeyViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("lot does not exist", err, infra.KindForeignKeyViolated)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create reservation", err)
	}
	return id, nil
}

const updateReservationSQL = `
UPDATE reservations
SET state = $2, transition_log = $3, actual_pickup_date = $4, updated_at = $5
WHERE id = $1`

func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	logJSON, err := json.Marshal(res.TransitionLog())
	if err != nil {
		return infra.WrapRepoErr("failed to encode transition log", err)
	}

	tag, err := r.db.Exec(ctx, updateReservationSQL,
		res.ID(), res.State().String(), logJSON, res.ActualPickupDate(), res.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

const selectReservationSQL = `
SELECT id, lot_id, claimant_org_id, state, transition_log, requested_pickup_date, actual_pickup_date, created_at, updated_at
FROM reservations`

func (r *ReservationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	row := r.db.QueryRow(ctx, selectReservationSQL+" WHERE id = $1 FOR UPDATE", id)
	return scanReservation(row)
}

func (r *ReservationRepository) FindActiveByLotID(ctx context.Context, lotID uuid.UUID) (*reservation.Reservation, error) {
	row := r.db.QueryRow(ctx,
		selectReservationSQL+" WHERE lot_id = $1 AND state = ANY($2) ORDER BY created_at DESC, id DESC LIMIT 1",
		lotID, activeStateNames(),
	)
	return scanReservation(row)
}

// FindActiveByLotIDForUpdate returns active claims newest first, so the
// deduplicator keeps the head and cancels the tail.
func (r *ReservationRepository) FindActiveByLotIDForUpdate(ctx context.Context, lotID uuid.UUID) ([]*reservation.Reservation, error) {
	rows, err := r.db.Query(ctx,
		selectReservationSQL+" WHERE lot_id = $1 AND state = ANY($2) ORDER BY created_at DESC, id DESC FOR UPDATE",
		lotID, activeStateNames(),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query active reservations", err)
	}
	defer rows.Close()

	var out []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate active reservations", err)
	}
	return out, nil
}

func (r *ReservationRepository) CountActiveByLotID(ctx context.Context, lotID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		"SELECT count(*) FROM reservations WHERE lot_id = $1 AND state = ANY($2)",
		lotID, activeStateNames(),
	).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count active reservations", err)
	}
	return count, nil
}

func (r *ReservationRepository) HasDeliveredForLot(ctx context.Context, lotID uuid.UUID) (bool, error) {
	var delivered bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM reservations WHERE lot_id = $1 AND state = $2)",
		lotID, reservation.StateDelivered.String(),
	).Scan(&delivered)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check delivered reservations", err)
	}
	return delivered, nil
}

func (r *ReservationRepository) LotIDsWithMultipleActive(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		"SELECT lot_id FROM reservations WHERE state = ANY($1) GROUP BY lot_id HAVING count(*) > 1",
		activeStateNames(),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query duplicate active claims", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan lot id", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate duplicate active claims", err)
	}
	return out, nil
}

func scanReservation(row rowScanner) (*reservation.Reservation, error) {
	var (
		id, lotID, claimantOrgID              uuid.UUID
		state                                 string
		logJSON                               []byte
		requestedPickupDate, actualPickupDate *time.Time
		createdAt, updatedAt                  time.Time
	)
	err := row.Scan(&id, &lotID, &claimantOrgID, &state, &logJSON,
		&requestedPickupDate, &actualPickupDate, &createdAt, &updatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation", err)
	}

	var transitions []reservation.Transition
	if len(logJSON) > 0 {
		if err := json.Unmarshal(logJSON, &transitions); err != nil {
			return nil, infra.WrapRepoErr("failed to decode transition log", err)
		}
	}

	st, err := reservation.NewState(state)
	if err != nil {
		return nil, infra.WrapRepoErr("stored reservation state is unknown", err)
	}

	return reservation.ReconstructReservation(
		id, lotID, claimantOrgID, st, transitions,
		requestedPickupDate, actualPickupDate, createdAt, updatedAt,
	), nil
}
