package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/orchardcare/orchard-advisor/internal/domain/agronomy"
	"github.com/orchardcare/orchard-advisor/internal/domain/consultation"
	"github.com/orchardcare/orchard-advisor/internal/domain/forecast"
	"github.com/orchardcare/orchard-advisor/internal/infra/config"
	"github.com/orchardcare/orchard-advisor/internal/infra/consultrepo"
	"github.com/orchardcare/orchard-advisor/internal/infra/forecastcache"
	"github.com/orchardcare/orchard-advisor/internal/infra/labreports"
	"github.com/orchardcare/orchard-advisor/internal/infra/measurerepo"
	"github.com/orchardcare/orchard-advisor/internal/infra/schema"
	"github.com/orchardcare/orchard-advisor/internal/infra/sprayprogram"
	"github.com/orchardcare/orchard-advisor/internal/infra/weather/openmeteo"
)

func provideAdvisoryConfig(cfg *config.Config) agronomy.Config {
	return agronomy.Config{
		Margin:           cfg.Advisory.MarginFraction,
		TiePrefers:       agronomy.ParseTiePreference(cfg.Advisory.TiePrefers),
		StaleAfterMonths: cfg.Advisory.StaleAfterMonths,
		HistoryLimit:     cfg.Advisory.HistoryLimit,
		MaxReportBytes:   cfg.Advisory.MaxReportBytes,
		SoilBucket:       cfg.Reports.BucketSoil,
		WaterBucket:      cfg.Reports.BucketWater,
	}
}

func provideForecastConfig(cfg *config.Config) forecast.Config {
	return forecast.Config{
		CacheTTL: cfg.Weather.CacheTTL,
		Rule: forecast.ActionRule{
			RainSensitive: cfg.SprayProgram.RainSensitive,
			Limit:         cfg.SprayProgram.MaxActions,
		},
	}
}

func provideManagerConfig(cfg *config.Config) consultation.ManagerConfig {
	return consultation.ManagerConfig{SessionIdleTTL: cfg.Consultation.SessionIdleTTL}
}

func provideWeatherClient(cfg *config.Config) *openmeteo.Client {
	return openmeteo.NewClient(cfg.Weather.BaseURL, cfg.Weather.ForecastDays, cfg.Weather.Timeout)
}

// providePostgresPool returns nil when no DSN is configured or the database is unreachable.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Store.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn", "error", err)
		return nil
	}
	if cfg.Store.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Store.Postgres.MaxConns
	}
	if cfg.Store.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Store.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed", "error", err)
		pool.Close()
		return nil
	}
	if cfg.Store.AutoMigrate {
		if err := schema.Apply(ctx, pool, logger); err != nil {
			logger.Error("schema migration failed", "error", err)
			pool.Close()
			return nil
		}
	}
	logger.Info("postgres store enabled")
	return pool
}

func provideMeasurementRepository(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) agronomy.MeasurementRepository {
	if pool != nil {
		return measurerepo.NewPostgresRepository(pool)
	}
	if path := strings.TrimSpace(cfg.Store.SQLitePath); path != "" {
		repo, err := measurerepo.OpenSQLite(path)
		if err == nil {
			logger.Info("sqlite measurement repository enabled", "path", path)
			return repo
		}
		logger.Error("failed to open sqlite, using memory repository", "path", path, "error", err)
	}
	logger.Info("using memory measurement repository")
	return measurerepo.NewMemoryRepository()
}

func provideConsultationStore(pool *pgxpool.Pool, logger *slog.Logger) consultation.Store {
	if pool != nil {
		return consultrepo.NewPostgresRepository(pool)
	}
	logger.Info("using memory consultation store")
	return consultrepo.NewMemoryRepository()
}

func provideReportStorage(cfg *config.Config, logger *slog.Logger) agronomy.ReportStorage {
	if strings.TrimSpace(cfg.Reports.Endpoint) == "" {
		logger.Info("reports endpoint not set, using memory storage")
		return labreports.NewMemoryStorage()
	}
	storage, err := labreports.NewS3Storage(cfg.Reports.Endpoint, cfg.Reports.AccessKey, cfg.Reports.SecretKey, cfg.Reports.Region, logger)
	if err != nil {
		logger.Error("failed to init report storage, using memory storage", "error", err)
		return labreports.NewMemoryStorage()
	}
	logger.Info("s3 report storage enabled", "endpoint", cfg.Reports.Endpoint)
	return storage
}

func provideForecastCache(cfg *config.Config, logger *slog.Logger) forecast.Cache {
	if cfg.Cache.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg.Cache.Valkey.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return forecastcache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return forecastcache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("forecast valkey cache enabled", "addr", cfg.Cache.Valkey.Addr)
			return forecastcache.NewValkeyStore(client, cfg.Cache.Valkey.Prefix)
		}
	}
	return forecastcache.NewMemoryStore()
}

func provideActionCatalog(cfg *config.Config, logger *slog.Logger) (forecast.ActionCatalog, error) {
	catalog, err := sprayprogram.Load(cfg.SprayProgram.Path)
	if err != nil {
		logger.Error("failed to load spray program, using built in program", "path", cfg.SprayProgram.Path, "error", err)
		return sprayprogram.Default()
	}
	logger.Info("spray program loaded", "program", catalog.Program, "entries", catalog.Len())
	return catalog, nil
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
