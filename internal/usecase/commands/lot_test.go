//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"foodbridge/internal/domain/actor"
	domlot "foodbridge/internal/domain/lot"
	"foodbridge/internal/infra"
	"foodbridge/internal/pkg/clock"
	"foodbridge/internal/pkg/errs"
	"foodbridge/internal/usecase/commands"
	"foodbridge/internal/usecase/queries"
	"foodbridge/internal/usecase/shared"
	queriesmock "foodbridge/tests/mock/queries"
	sharedmock "foodbridge/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type LotCommandsTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	uow      *sharedmock.MockUnitOfWork
	tx       *sharedmock.MockTx
	lotRepo  *sharedmock.MockLotRepository
	lotViews *queriesmock.MockLotQueries
	clock    *clock.MockClock
	commands commands.LotCommands
}

func (s *LotCommandsTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.uow = sharedmock.NewMockUnitOfWork(s.ctrl)
	s.tx = sharedmock.NewMockTx(s.ctrl)
	s.lotRepo = sharedmock.NewMockLotRepository(s.ctrl)
	s.lotViews = queriesmock.NewMockLotQueries(s.ctrl)
	s.clock = clock.NewMockClock(time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC))

	s.tx.EXPECT().Lots().Return(s.lotRepo).AnyTimes()
	s.uow.EXPECT().Within(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, shared.Tx) error) error {
			return fn(ctx, s.tx)
		},
	).AnyTimes()

	s.commands = commands.NewLotCommands(s.uow, s.lotViews, silentDispatcher(s.clock), s.clock)
}

func (s *LotCommandsTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestLotCommandsSuite(t *testing.T) {
	suite.Run(t, new(LotCommandsTestSuite))
}

func (s *LotCommandsTestSuite) validParams() commands.CreateLotParams {
	return commands.CreateLotParams{
		Product:         "Day-old bread",
		Quantity:        40,
		Unit:            "loaves",
		ExpiryDate:      s.clock.Now().AddDate(0, 0, 7),
		ShelfBufferDays: 2,
	}
}

func (s *LotCommandsTestSuite) TestCreate() {
	caller := actor.Actor{ID: uuid.New(), OrgID: uuid.New(), Role: actor.RoleMember, Affiliation: actor.AffiliationPrivate}

	s.Run("success persists the lot with its computed tier", func() {
		var createdID uuid.UUID
		s.lotRepo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, l *domlot.Lot, cachedTier domlot.Tier) error {
				s.Equal(caller.OrgID, l.OwnerOrgID())
				s.Equal(domlot.TierFresh, cachedTier)
				createdID = l.ID()
				return nil
			},
		)
		s.lotViews.EXPECT().GetByIDSystem(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, id uuid.UUID) (*queries.LotView, error) {
				s.Equal(createdID, id)
				return &queries.LotView{ID: id, Tier: "fresh"}, nil
			},
		)

		view, err := s.commands.Create(context.Background(), caller, s.validParams())
		s.Require().NoError(err)
		s.Equal("fresh", view.Tier)
	})

	s.Run("invalid params map to a validation failure", func() {
		params := s.validParams()
		params.Quantity = 0

		_, err := s.commands.Create(context.Background(), caller, params)
		s.ErrorIs(err, errs.ErrDomainValidation)
	})
}

func (s *LotCommandsTestSuite) TestUpdate() {
	ownerOrg := uuid.New()
	owner := actor.Actor{ID: uuid.New(), OrgID: ownerOrg, Role: actor.RoleMember, Affiliation: actor.AffiliationPrivate}

	existing := func() *domlot.Lot {
		return domlot.ReconstructLot(
			uuid.New(), "Day-old bread", 40, "loaves",
			s.clock.Now().AddDate(0, 0, 7), 2, ownerOrg,
			s.clock.Now().AddDate(0, 0, -1), s.clock.Now().AddDate(0, 0, -1),
		)
	}

	s.Run("owner patches quantity and expiry", func() {
		lotEntity := existing()
		newQty := 25
		newExpiry := s.clock.Now().AddDate(0, 0, 2)

		s.lotRepo.EXPECT().FindByIDForUpdate(gomock.Any(), lotEntity.ID()).Return(lotEntity, nil)
		s.lotRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, l *domlot.Lot, cachedTier domlot.Tier) error {
				s.Equal(25, l.Quantity())
				s.Equal(newExpiry, l.ExpiryDate())
				// two days out with a two day buffer is inside the window
				s.Equal(domlot.TierAging, cachedTier)
				return nil
			},
		)
		s.lotViews.EXPECT().GetByIDSystem(gomock.Any(), lotEntity.ID()).
			Return(&queries.LotView{ID: lotEntity.ID(), Tier: "aging"}, nil)

		view, err := s.commands.Update(context.Background(), owner, lotEntity.ID(), commands.UpdateLotParams{
			Quantity:   &newQty,
			ExpiryDate: &newExpiry,
		})
		s.Require().NoError(err)
		s.Equal("aging", view.Tier)
	})

	s.Run("non-owner is rejected", func() {
		lotEntity := existing()
		stranger := actor.Actor{ID: uuid.New(), OrgID: uuid.New(), Role: actor.RoleMember, Affiliation: actor.AffiliationPrivate}
		qty := 5

		s.lotRepo.EXPECT().FindByIDForUpdate(gomock.Any(), lotEntity.ID()).Return(lotEntity, nil)

		_, err := s.commands.Update(context.Background(), stranger, lotEntity.ID(), commands.UpdateLotParams{Quantity: &qty})
		s.ErrorIs(err, errs.ErrNotAuthorized)
	})

	s.Run("operator may patch any lot", func() {
		lotEntity := existing()
		op := actor.Actor{ID: uuid.New(), OrgID: uuid.New(), Role: actor.RoleOperator, Affiliation: actor.AffiliationPrivate}
		qty := 5

		s.lotRepo.EXPECT().FindByIDForUpdate(gomock.Any(), lotEntity.ID()).Return(lotEntity, nil)
		s.lotRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		s.lotViews.EXPECT().GetByIDSystem(gomock.Any(), lotEntity.ID()).
			Return(&queries.LotView{ID: lotEntity.ID()}, nil)

		_, err := s.commands.Update(context.Background(), op, lotEntity.ID(), commands.UpdateLotParams{Quantity: &qty})
		s.NoError(err)
	})

	s.Run("unknown lot", func() {
		id := uuid.New()
		qty := 5

		s.lotRepo.EXPECT().FindByIDForUpdate(gomock.Any(), id).
			Return(nil, infra.WrapRepoErr("lot not found", nil, infra.KindNotFound))

		_, err := s.commands.Update(context.Background(), owner, id, commands.UpdateLotParams{Quantity: &qty})
		s.ErrorIs(err, errs.ErrLotNotFound)
	})

	s.Run("invalid patch value", func() {
		lotEntity := existing()
		qty := -1

		s.lotRepo.EXPECT().FindByIDForUpdate(gomock.Any(), lotEntity.ID()).Return(lotEntity, nil)

		_, err := s.commands.Update(context.Background(), owner, lotEntity.ID(), commands.UpdateLotParams{Quantity: &qty})
		s.ErrorIs(err, errs.ErrDomainValidation)
	})
}
