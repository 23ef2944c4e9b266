package queries

import (
	"context"
	"time"

	"foodbridge/internal/domain/actor"
	"foodbridge/internal/pkg/errs"

	"github.com/google/uuid"
)

type ReservationQueries interface {
	GetByID(ctx context.Context, caller actor.Actor, id uuid.UUID) (*ReservationView, error)
	// GetByIDSystem bypasses caller scoping; used for read-after-write.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	// ListForCaller scopes to reservations the caller's org placed or
	// owns the lot of; operators see everything.
	ListForCaller(ctx context.Context, caller actor.Actor, filters ReservationFilters, after *Cursor, limit int) ([]*ReservationListItem, *Cursor, error)
}

type ReservationViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	FindForOrg(ctx context.Context, orgID uuid.UUID, filters ReservationFilters, lastCreatedAt *time.Time, lastID *uuid.UUID, limit int32) ([]*ReservationListItem, error)
	FindAll(ctx context.Context, filters ReservationFilters, lastCreatedAt *time.Time, lastID *uuid.UUID, limit int32) ([]*ReservationListItem, error)
}

type reservationQueriesImpl struct {
	repo ReservationViewRepo
}

func NewReservationQueries(repo ReservationViewRepo) ReservationQueries {
	return &reservationQueriesImpl{repo: repo}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, caller actor.Actor, id uuid.UUID) (*ReservationView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Role.IsOperator() &&
		view.ClaimantOrgID != caller.OrgID && view.LotOwnerOrgID != caller.OrgID {
		return nil, errs.ErrNotAuthorized
	}
	return view, nil
}

func (q *reservationQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	return q.repo.FindByID(ctx, id)
}

func (q *reservationQueriesImpl) ListForCaller(ctx context.Context, caller actor.Actor, filters ReservationFilters, after *Cursor, limit int) ([]*ReservationListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	var lastCreatedAt *time.Time
	var lastID *uuid.UUID
	if after != nil && after.After != "" {
		t, id, err := DecodeAfterCursor(after.After)
		if err != nil {
			return nil, nil, err
		}
		lastCreatedAt, lastID = &t, &id
	}

	fetch := int32(limit + 1)

	var rows []*ReservationListItem
	var err error
	if caller.Role.IsOperator() {
		rows, err = q.repo.FindAll(ctx, filters, lastCreatedAt, lastID, fetch)
	} else {
		rows, err = q.repo.FindForOrg(ctx, caller.OrgID, filters, lastCreatedAt, lastID, fetch)
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
	}
	return rows, next, nil
}
