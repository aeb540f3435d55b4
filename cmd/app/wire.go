//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/orchardcare/orchard-advisor/internal/bootstrap"
	"github.com/orchardcare/orchard-advisor/internal/domain/agronomy"
	"github.com/orchardcare/orchard-advisor/internal/domain/consultation"
	"github.com/orchardcare/orchard-advisor/internal/domain/forecast"
	"github.com/orchardcare/orchard-advisor/internal/infra/config"
	"github.com/orchardcare/orchard-advisor/internal/infra/export"
	"github.com/orchardcare/orchard-advisor/internal/infra/weather/openmeteo"
	httpiface "github.com/orchardcare/orchard-advisor/internal/interface/http"
	"github.com/orchardcare/orchard-advisor/pkg/logger"
	"github.com/orchardcare/orchard-advisor/pkg/metrics"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewRecorder,
		agronomy.DefaultReferenceTable,
		export.NewXLSX,
		provideAdvisoryConfig,
		provideForecastConfig,
		provideManagerConfig,
		provideWeatherClient,
		providePostgresPool,
		provideMeasurementRepository,
		provideConsultationStore,
		provideReportStorage,
		provideForecastCache,
		provideActionCatalog,
		agronomy.NewService,
		forecast.NewService,
		consultation.NewManager,
		wire.Bind(new(agronomy.HistoryExporter), new(*export.XLSX)),
		wire.Bind(new(agronomy.Metrics), new(*metrics.Recorder)),
		wire.Bind(new(forecast.Metrics), new(*metrics.Recorder)),
		wire.Bind(new(consultation.Metrics), new(*metrics.Recorder)),
		wire.Bind(new(forecast.WeatherSource), new(*openmeteo.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
