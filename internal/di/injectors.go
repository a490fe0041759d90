//go:build wireinject
// +build wireinject

package di

import (
	"dailytrack/internal"
	"dailytrack/internal/controllers"
	"dailytrack/internal/health"
	"dailytrack/internal/providers"
	"dailytrack/internal/scheduler"
	"dailytrack/internal/services"
	"dailytrack/internal/storage"
	"dailytrack/internal/structures"

	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		storage.NewZstdCompressor,
		storage.NewGatewayFromConfig,
		storage.NewWriterFromConfig,
		wire.Bind(new(storage.StoreInterface), new(*storage.Writer)),

		health.NewClientFromConfig,

		services.NewClock,
		services.NewIDGenerator,
		services.NewEngine,
		wire.Bind(new(services.EngineInterface), new(*services.Engine)),
		wire.Bind(new(scheduler.Flusher), new(*services.Engine)),
		services.NewDailyLogService,
		wire.Bind(new(services.DailyLogServiceInterface), new(*services.DailyLogService)),
		services.NewFastingService,
		wire.Bind(new(services.FastingServiceInterface), new(*services.FastingService)),
		services.NewMedicationService,
		wire.Bind(new(services.MedicationServiceInterface), new(*services.MedicationService)),
		services.NewActivityService,
		wire.Bind(new(services.ActivityServiceInterface), new(*services.ActivityService)),

		scheduler.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
