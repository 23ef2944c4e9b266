package components

import (
	"foodbridge/internal/infra/db"
	"foodbridge/internal/infra/push"
	"foodbridge/internal/infra/readstore"
	"foodbridge/internal/infra/uow"
	"foodbridge/internal/usecase/notify"
	"foodbridge/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		uow.NewPostgresUoW,
		fx.Annotate(
			readstore.NewLotReadStore,
			fx.As(new(queries.LotViewRepo)),
		),
		fx.Annotate(
			readstore.NewReservationReadStore,
			fx.As(new(queries.ReservationViewRepo)),
		),
		fx.Annotate(
			readstore.NewNotificationReadStore,
			fx.As(new(queries.NotificationViewRepo)),
		),
		fx.Annotate(
			readstore.NewRecipientReadStore,
			fx.As(new(notify.RecipientResolver)),
		),
		push.NewHub,
		fx.Annotate(
			push.NewSink,
			fx.As(new(notify.NotificationSink)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
