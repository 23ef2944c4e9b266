//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	domres "foodbridge/internal/domain/reservation"
	"foodbridge/internal/pkg/clock"
	"foodbridge/internal/usecase/commands"
	"foodbridge/internal/usecase/shared"
	sharedmock "foodbridge/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type MaintenanceCommandsTestSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	uow             *sharedmock.MockUnitOfWork
	tx              *sharedmock.MockTx
	lotRepo         *sharedmock.MockLotRepository
	reservationRepo *sharedmock.MockReservationRepository
	clock           *clock.MockClock
	commands        commands.MaintenanceCommands
}

func (s *MaintenanceCommandsTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.uow = sharedmock.NewMockUnitOfWork(s.ctrl)
	s.tx = sharedmock.NewMockTx(s.ctrl)
	s.lotRepo = sharedmock.NewMockLotRepository(s.ctrl)
	s.reservationRepo = sharedmock.NewMockReservationRepository(s.ctrl)
	s.clock = clock.NewMockClock(time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC))

	s.tx.EXPECT().Lots().Return(s.lotRepo).AnyTimes()
	s.tx.EXPECT().Reservations().Return(s.reservationRepo).AnyTimes()
	s.uow.EXPECT().Within(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, shared.Tx) error) error {
			return fn(ctx, s.tx)
		},
	).AnyTimes()

	s.commands = commands.NewMaintenanceCommands(s.uow, silentDispatcher(s.clock), s.clock)
}

func (s *MaintenanceCommandsTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestMaintenanceCommandsSuite(t *testing.T) {
	suite.Run(t, new(MaintenanceCommandsTestSuite))
}

func (s *MaintenanceCommandsTestSuite) TestCleanupOrphans() {
	s.Run("reports both repair directions", func() {
		s.lotRepo.EXPECT().ClearOrphanedClaimFlags(gomock.Any()).Return(int64(3), nil)
		s.lotRepo.EXPECT().MarkUnflaggedClaims(gomock.Any()).Return(int64(1), nil)

		report, err := s.commands.CleanupOrphans(context.Background())
		s.Require().NoError(err)
		s.Equal(int64(3), report.ClearedFlags)
		s.Equal(int64(1), report.SetFlags)
	})

	s.Run("consistent data yields a zero report", func() {
		s.lotRepo.EXPECT().ClearOrphanedClaimFlags(gomock.Any()).Return(int64(0), nil)
		s.lotRepo.EXPECT().MarkUnflaggedClaims(gomock.Any()).Return(int64(0), nil)

		report, err := s.commands.CleanupOrphans(context.Background())
		s.Require().NoError(err)
		s.Equal(int64(0), report.ClearedFlags)
		s.Equal(int64(0), report.SetFlags)
	})
}

func (s *MaintenanceCommandsTestSuite) TestDeduplicateActiveClaims() {
	makeActive := func(lotID uuid.UUID, createdAt time.Time) *domres.Reservation {
		return domres.ReconstructReservation(
			uuid.New(), lotID, uuid.New(),
			domres.StateRequested, nil, nil, nil, createdAt, createdAt,
		)
	}

	s.Run("no duplicates to repair", func() {
		s.reservationRepo.EXPECT().LotIDsWithMultipleActive(gomock.Any()).Return(nil, nil)

		report, err := s.commands.DeduplicateActiveClaims(context.Background())
		s.Require().NoError(err)
		s.Zero(report.LotsAffected)
		s.Empty(report.Cancelled)
	})

	s.Run("keeps the newest and cancels the rest", func() {
		lotID := uuid.New()
		now := s.clock.Now()
		newest := makeActive(lotID, now)
		middle := makeActive(lotID, now.Add(-time.Hour))
		oldest := makeActive(lotID, now.Add(-2*time.Hour))

		s.reservationRepo.EXPECT().LotIDsWithMultipleActive(gomock.Any()).Return([]uuid.UUID{lotID}, nil)
		s.reservationRepo.EXPECT().FindActiveByLotIDForUpdate(gomock.Any(), lotID).
			Return([]*domres.Reservation{newest, middle, oldest}, nil)

		var cancelled []uuid.UUID
		s.reservationRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, res *domres.Reservation) error {
				s.Equal(domres.StateCancelled, res.State())
				s.Require().Len(res.TransitionLog(), 1)
				s.NotEmpty(res.TransitionLog()[0].Note)
				cancelled = append(cancelled, res.ID())
				return nil
			},
		).Times(2)
		s.reservationRepo.EXPECT().CountActiveByLotID(gomock.Any(), lotID).Return(int64(1), nil)

		report, err := s.commands.DeduplicateActiveClaims(context.Background())
		s.Require().NoError(err)

		s.Equal(1, report.LotsAffected)
		s.ElementsMatch([]uuid.UUID{middle.ID(), oldest.ID()}, report.Cancelled)
		s.NotContains(cancelled, newest.ID())
		s.Equal(domres.StateRequested, newest.State())
	})

	s.Run("fails loudly when the invariant still does not hold", func() {
		lotID := uuid.New()
		now := s.clock.Now()
		first := makeActive(lotID, now)
		second := makeActive(lotID, now.Add(-time.Hour))

		s.reservationRepo.EXPECT().LotIDsWithMultipleActive(gomock.Any()).Return([]uuid.UUID{lotID}, nil)
		s.reservationRepo.EXPECT().FindActiveByLotIDForUpdate(gomock.Any(), lotID).
			Return([]*domres.Reservation{first, second}, nil)
		s.reservationRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.reservationRepo.EXPECT().CountActiveByLotID(gomock.Any(), lotID).Return(int64(2), nil)

		_, err := s.commands.DeduplicateActiveClaims(context.Background())
		s.Error(err)
	})

	s.Run("single survivor lot is skipped without writes", func() {
		lotID := uuid.New()
		survivor := makeActive(lotID, s.clock.Now())

		s.reservationRepo.EXPECT().LotIDsWithMultipleActive(gomock.Any()).Return([]uuid.UUID{lotID}, nil)
		s.reservationRepo.EXPECT().FindActiveByLotIDForUpdate(gomock.Any(), lotID).
			Return([]*domres.Reservation{survivor}, nil)

		report, err := s.commands.DeduplicateActiveClaims(context.Background())
		s.Require().NoError(err)
		s.Zero(report.LotsAffected)
	})
}
