package components

import (
	"foodbridge/internal/pkg/clock"
	"foodbridge/internal/usecase/commands"
	"foodbridge/internal/usecase/notify"
	"foodbridge/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	notify.NewDispatcher,
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewLotQueries,
		queries.NewReservationQueries,
		queries.NewNotificationQueries,
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewLotCommands,
		commands.NewReservationCommands,
		commands.NewMaintenanceCommands,
	),
)
