//go:build unit

package commands_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"foodbridge/internal/domain/actor"
	domlot "foodbridge/internal/domain/lot"
	domres "foodbridge/internal/domain/reservation"
	"foodbridge/internal/infra"
	"foodbridge/internal/pkg/clock"
	"foodbridge/internal/pkg/errs"
	"foodbridge/internal/usecase/commands"
	"foodbridge/internal/usecase/notify"
	"foodbridge/internal/usecase/queries"
	"foodbridge/internal/usecase/shared"
	queriesmock "foodbridge/tests/mock/queries"
	sharedmock "foodbridge/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type noopSink struct{}

func (noopSink) RecordDurable(context.Context, notify.Notification) error { return nil }
func (noopSink) TryLivePush(context.Context, notify.Notification) error   { return nil }

type noopResolver struct{}

func (noopResolver) OrgMembers(context.Context, uuid.UUID) ([]notify.Recipient, error) {
	return nil, nil
}
func (noopResolver) Operators(context.Context) ([]notify.Recipient, error) { return nil, nil }

func silentDispatcher(clk clock.Clock) *notify.Dispatcher {
	return notify.NewDispatcher(noopSink{}, noopResolver{}, clk, slog.New(slog.DiscardHandler))
}

type ReservationCommandsTestSuite struct {
	suite.Suite
	ctrl             *gomock.Controller
	uow              *sharedmock.MockUnitOfWork
	tx               *sharedmock.MockTx
	lotRepo          *sharedmock.MockLotRepository
	reservationRepo  *sharedmock.MockReservationRepository
	reservationViews *queriesmock.MockReservationQueries
	clock            *clock.MockClock
	commands         commands.ReservationCommands
}

func (s *ReservationCommandsTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.uow = sharedmock.NewMockUnitOfWork(s.ctrl)
	s.tx = sharedmock.NewMockTx(s.ctrl)
	s.lotRepo = sharedmock.NewMockLotRepository(s.ctrl)
	s.reservationRepo = sharedmock.NewMockReservationRepository(s.ctrl)
	s.reservationViews = queriesmock.NewMockReservationQueries(s.ctrl)
	s.clock = clock.NewMockClock(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))

	s.tx.EXPECT().Lots().Return(s.lotRepo).AnyTimes()
	s.tx.EXPECT().Reservations().Return(s.reservationRepo).AnyTimes()
	s.uow.EXPECT().Within(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, shared.Tx) error) error {
			return fn(ctx, s.tx)
		},
	).AnyTimes()

	s.commands = commands.NewReservationCommands(s.uow, s.reservationViews, silentDispatcher(s.clock), s.clock)
}

func (s *ReservationCommandsTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestReservationCommandsSuite(t *testing.T) {
	suite.Run(t, new(ReservationCommandsTestSuite))
}

func (s *ReservationCommandsTestSuite) agingLot(ownerOrgID uuid.UUID) *domlot.Lot {
	// expiry one day out with a two day buffer puts today inside the window
	expiry := s.clock.Now().AddDate(0, 0, 1)
	return domlot.ReconstructLot(
		uuid.New(), "Surplus apples", 10, "crates",
		expiry, 2, ownerOrgID, s.clock.Now(), s.clock.Now(),
	)
}

func (s *ReservationCommandsTestSuite) socialMember() actor.Actor {
	return actor.Actor{
		ID:          uuid.New(),
		OrgID:       uuid.New(),
		Role:        actor.RoleMember,
		Affiliation: actor.AffiliationSocial,
	}
}

func (s *ReservationCommandsTestSuite) TestClaim() {
	s.Run("success places a requested reservation", func() {
		caller := s.socialMember()
		lotEntity := s.agingLot(uuid.New())

		s.lotRepo.EXPECT().FindByID(gomock.Any(), lotEntity.ID()).Return(lotEntity, nil)
		s.reservationRepo.EXPECT().HasDeliveredForLot(gomock.Any(), lotEntity.ID()).Return(false, nil)
		s.reservationRepo.EXPECT().FindActiveByLotID(gomock.Any(), lotEntity.ID()).
			Return(nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound))

		var createdID uuid.UUID
		s.reservationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, res *domres.Reservation) (uuid.UUID, error) {
				s.Equal(domres.StateRequested, res.State())
				s.Equal(caller.OrgID, res.ClaimantOrgID())
				createdID = res.ID()
				return res.ID(), nil
			},
		)
		s.reservationViews.EXPECT().GetByIDSystem(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, id uuid.UUID) (*queries.ReservationView, error) {
				s.Equal(createdID, id)
				return &queries.ReservationView{ID: id, State: "requested"}, nil
			},
		)

		view, err := s.commands.Claim(context.Background(), caller, lotEntity.ID(), commands.ClaimParams{})
		s.Require().NoError(err)
		s.Equal("requested", view.State)
	})

	s.Run("unknown lot", func() {
		caller := s.socialMember()
		lotID := uuid.New()

		s.lotRepo.EXPECT().FindByID(gomock.Any(), lotID).
			Return(nil, infra.WrapRepoErr("lot not found", nil, infra.KindNotFound))

		_, err := s.commands.Claim(context.Background(), caller, lotID, commands.ClaimParams{})
		s.ErrorIs(err, errs.ErrLotNotFound)
	})

	s.Run("tier outside the caller's partition", func() {
		caller := s.socialMember()
		// fresh lot: expiry far out, tiny buffer
		freshLot := domlot.ReconstructLot(
			uuid.New(), "Canned soup", 10, "boxes",
			s.clock.Now().AddDate(0, 0, 30), 2, uuid.New(), s.clock.Now(), s.clock.Now(),
		)

		s.lotRepo.EXPECT().FindByID(gomock.Any(), freshLot.ID()).Return(freshLot, nil)

		_, err := s.commands.Claim(context.Background(), caller, freshLot.ID(), commands.ClaimParams{})
		s.ErrorIs(err, errs.ErrLotNotAvailable)
	})

	s.Run("delivered lot is retired forever", func() {
		caller := s.socialMember()
		lotEntity := s.agingLot(uuid.New())

		s.lotRepo.EXPECT().FindByID(gomock.Any(), lotEntity.ID()).Return(lotEntity, nil)
		s.reservationRepo.EXPECT().HasDeliveredForLot(gomock.Any(), lotEntity.ID()).Return(true, nil)

		_, err := s.commands.Claim(context.Background(), caller, lotEntity.ID(), commands.ClaimParams{})
		s.ErrorIs(err, errs.ErrLotRetired)
	})

	s.Run("existing active claim wins", func() {
		caller := s.socialMember()
		lotEntity := s.agingLot(uuid.New())
		existing, err := domres.NewReservation(lotEntity.ID(), uuid.New(), nil, s.clock.Now())
		s.Require().NoError(err)

		s.lotRepo.EXPECT().FindByID(gomock.Any(), lotEntity.ID()).Return(lotEntity, nil)
		s.reservationRepo.EXPECT().HasDeliveredForLot(gomock.Any(), lotEntity.ID()).Return(false, nil)
		s.reservationRepo.EXPECT().FindActiveByLotID(gomock.Any(), lotEntity.ID()).Return(existing, nil)

		_, err = s.commands.Claim(context.Background(), caller, lotEntity.ID(), commands.ClaimParams{})
		s.ErrorIs(err, errs.ErrAlreadyReserved)
	})

	s.Run("unique index race maps to the same conflict", func() {
		caller := s.socialMember()
		lotEntity := s.agingLot(uuid.New())

		s.lotRepo.EXPECT().FindByID(gomock.Any(), lotEntity.ID()).Return(lotEntity, nil)
		s.reservationRepo.EXPECT().HasDeliveredForLot(gomock.Any(), lotEntity.ID()).Return(false, nil)
		s.reservationRepo.EXPECT().FindActiveByLotID(gomock.Any(), lotEntity.ID()).
			Return(nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound))
		s.reservationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(uuid.Nil, infra.WrapRepoErr("duplicate active claim", nil, infra.KindConflict))

		_, err := s.commands.Claim(context.Background(), caller, lotEntity.ID(), commands.ClaimParams{})
		s.ErrorIs(err, errs.ErrAlreadyReserved)
	})

	s.Run("operator may claim any tier", func() {
		op := actor.Actor{ID: uuid.New(), OrgID: uuid.New(), Role: actor.RoleOperator, Affiliation: actor.AffiliationPrivate}
		lotEntity := s.agingLot(uuid.New())

		s.lotRepo.EXPECT().FindByID(gomock.Any(), lotEntity.ID()).Return(lotEntity, nil)
		s.reservationRepo.EXPECT().HasDeliveredForLot(gomock.Any(), lotEntity.ID()).Return(false, nil)
		s.reservationRepo.EXPECT().FindActiveByLotID(gomock.Any(), lotEntity.ID()).
			Return(nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound))
		s.reservationRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, res *domres.Reservation) (uuid.UUID, error) {
				return res.ID(), nil
			},
		)
		s.reservationViews.EXPECT().GetByIDSystem(gomock.Any(), gomock.Any()).
			Return(&queries.ReservationView{State: "requested"}, nil)

		_, err := s.commands.Claim(context.Background(), op, lotEntity.ID(), commands.ClaimParams{})
		s.NoError(err)
	})
}

func (s *ReservationCommandsTestSuite) TestTransition() {
	ownerOrg := uuid.New()
	claimantOrg := uuid.New()

	newRequested := func() *domres.Reservation {
		res, err := domres.NewReservation(uuid.New(), claimantOrg, nil, s.clock.Now())
		s.Require().NoError(err)
		return res
	}

	expectLotLookup := func(res *domres.Reservation) {
		lotEntity := domlot.ReconstructLot(
			res.LotID(), "Surplus apples", 10, "crates",
			s.clock.Now().AddDate(0, 0, 1), 2, ownerOrg, s.clock.Now(), s.clock.Now(),
		)
		s.lotRepo.EXPECT().FindByID(gomock.Any(), res.LotID()).Return(lotEntity, nil)
	}

	s.Run("owner confirms a requested claim", func() {
		res := newRequested()
		owner := actor.Actor{ID: uuid.New(), OrgID: ownerOrg, Role: actor.RoleMember, Affiliation: actor.AffiliationPrivate}

		s.reservationRepo.EXPECT().FindByIDForUpdate(gomock.Any(), res.ID()).Return(res, nil)
		expectLotLookup(res)
		s.reservationRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, updated *domres.Reservation) error {
				s.Equal(domres.StateConfirmed, updated.State())
				s.Len(updated.TransitionLog(), 1)
				return nil
			},
		)
		s.reservationViews.EXPECT().GetByIDSystem(gomock.Any(), res.ID()).
			Return(&queries.ReservationView{ID: res.ID(), State: "confirmed"}, nil)

		view, err := s.commands.Transition(context.Background(), owner, res.ID(), domres.StateConfirmed, "dock 3")
		s.Require().NoError(err)
		s.Equal("confirmed", view.State)
	})

	s.Run("claimant may cancel its own claim", func() {
		res := newRequested()
		claimant := actor.Actor{ID: uuid.New(), OrgID: claimantOrg, Role: actor.RoleMember, Affiliation: actor.AffiliationSocial}

		s.reservationRepo.EXPECT().FindByIDForUpdate(gomock.Any(), res.ID()).Return(res, nil)
		expectLotLookup(res)
		s.reservationRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.reservationViews.EXPECT().GetByIDSystem(gomock.Any(), res.ID()).
			Return(&queries.ReservationView{ID: res.ID(), State: "cancelled"}, nil)

		_, err := s.commands.Transition(context.Background(), claimant, res.ID(), domres.StateCancelled, "")
		s.NoError(err)
	})

	s.Run("claimant may not drive the pickup workflow", func() {
		res := newRequested()
		claimant := actor.Actor{ID: uuid.New(), OrgID: claimantOrg, Role: actor.RoleMember, Affiliation: actor.AffiliationSocial}

		s.reservationRepo.EXPECT().FindByIDForUpdate(gomock.Any(), res.ID()).Return(res, nil)
		expectLotLookup(res)

		_, err := s.commands.Transition(context.Background(), claimant, res.ID(), domres.StateConfirmed, "")
		s.ErrorIs(err, errs.ErrNotAuthorized)
	})

	s.Run("unrelated org may do nothing", func() {
		res := newRequested()
		stranger := actor.Actor{ID: uuid.New(), OrgID: uuid.New(), Role: actor.RoleMember, Affiliation: actor.AffiliationSocial}

		s.reservationRepo.EXPECT().FindByIDForUpdate(gomock.Any(), res.ID()).Return(res, nil)
		expectLotLookup(res)

		_, err := s.commands.Transition(context.Background(), stranger, res.ID(), domres.StateCancelled, "")
		s.ErrorIs(err, errs.ErrNotAuthorized)
	})

	s.Run("undeclared edge is rejected", func() {
		res := newRequested()
		owner := actor.Actor{ID: uuid.New(), OrgID: ownerOrg, Role: actor.RoleMember, Affiliation: actor.AffiliationPrivate}

		s.reservationRepo.EXPECT().FindByIDForUpdate(gomock.Any(), res.ID()).Return(res, nil)
		expectLotLookup(res)

		_, err := s.commands.Transition(context.Background(), owner, res.ID(), domres.StateDelivered, "")
		s.ErrorIs(err, errs.ErrInvalidStateTransition)
	})

	s.Run("unknown reservation", func() {
		id := uuid.New()
		op := actor.Actor{ID: uuid.New(), Role: actor.RoleOperator}

		s.reservationRepo.EXPECT().FindByIDForUpdate(gomock.Any(), id).
			Return(nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound))

		_, err := s.commands.Transition(context.Background(), op, id, domres.StateConfirmed, "")
		s.ErrorIs(err, errs.ErrReservationNotFound)
	})
}

func TestClaimPropagatesStorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uowMock := sharedmock.NewMockUnitOfWork(ctrl)
	viewsMock := queriesmock.NewMockReservationQueries(ctrl)
	clk := clock.NewMockClock(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))

	uowMock.EXPECT().Within(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

	cmd := commands.NewReservationCommands(uowMock, viewsMock, silentDispatcher(clk), clk)
	_, err := cmd.Claim(context.Background(), actor.Actor{ID: uuid.New(), OrgID: uuid.New(), Role: actor.RoleMember, Affiliation: actor.AffiliationSocial}, uuid.New(), commands.ClaimParams{})

	require.Error(t, err)
	assert.NotErrorIs(t, err, errs.ErrAlreadyReserved)
}
