package queries

import (
	"context"
	"time"

	"foodbridge/internal/domain/actor"
	"foodbridge/internal/domain/lot"
	"foodbridge/internal/pkg/clock"

	"github.com/google/uuid"
)

type LotQueries interface {
	// ListVisible returns lots whose tier is permitted for the caller's
	// affiliation. Operator/admin callers receive every lot with the
	// active reservation state annotated inline.
	ListVisible(ctx context.Context, caller actor.Actor, filters LotFilters, after *Cursor, limit int) ([]*LotView, *Cursor, error)
	GetByID(ctx context.Context, caller actor.Actor, id uuid.UUID) (*LotView, error)
	// GetByIDSystem bypasses visibility; used for read-after-write.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*LotView, error)
}

type LotViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID, asOf time.Time) (*LotView, error)
	FindVisibleByTier(ctx context.Context, tier lot.Tier, filters LotFilters, asOf time.Time, lastCreatedAt *time.Time, lastID *uuid.UUID, limit int32) ([]*LotView, error)
	FindAllAnnotated(ctx context.Context, filters LotFilters, asOf time.Time, lastCreatedAt *time.Time, lastID *uuid.UUID, limit int32) ([]*LotView, error)
}

type lotQueriesImpl struct {
	repo  LotViewRepo
	clock clock.Clock
}

func NewLotQueries(repo LotViewRepo, clk clock.Clock) LotQueries {
	return &lotQueriesImpl{repo: repo, clock: clk}
}

func (q *lotQueriesImpl) ListVisible(ctx context.Context, caller actor.Actor, filters LotFilters, after *Cursor, limit int) ([]*LotView, *Cursor, error) {
	limit = ValidateLimit(limit)
	asOf := q.clock.Now()

	var lastCreatedAt *time.Time
	var lastID *uuid.UUID
	if after != nil && after.After != "" {
		t, id, err := DecodeAfterCursor(after.After)
		if err != nil {
			return nil, nil, err
		}
		lastCreatedAt, lastID = &t, &id
	}

	// Fetch one extra row to detect whether another page exists.
	fetch := int32(limit + 1)

	var rows []*LotView
	var err error
	if caller.Role.IsOperator() {
		rows, err = q.repo.FindAllAnnotated(ctx, filters, asOf, lastCreatedAt, lastID, fetch)
	} else {
		tier := lot.VisibleTierFor(caller.Affiliation)
		rows, err = q.repo.FindVisibleByTier(ctx, tier, filters, asOf, lastCreatedAt, lastID, fetch)
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

func (q *lotQueriesImpl) GetByID(ctx context.Context, caller actor.Actor, id uuid.UUID) (*LotView, error) {
	view, err := q.repo.FindByID(ctx, id, q.clock.Now())
	if err != nil {
		return nil, err
	}
	if !caller.Role.IsOperator() {
		view.ActiveReservationState = nil
	}
	return view, nil
}

func (q *lotQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*LotView, error) {
	return q.repo.FindByID(ctx, id, q.clock.Now())
}
