package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	apperrors "github.com/orchardcare/orchard-advisor/pkg/errors"
)

// Service exposes the weather outlook for a location.
type Service interface {
	Outlook(ctx context.Context, req OutlookRequest) (OutlookResponse, error)
}

// WeatherSource fetches a forecast for a coordinate.
type WeatherSource interface {
	Fetch(ctx context.Context, latitude, longitude float64) (Forecast, error)
}

// Cache stores recent forecasts keyed by rounded coordinate.
type Cache interface {
	Get(ctx context.Context, key string) (Forecast, bool, error)
	Save(ctx context.Context, key string, fc Forecast, ttl time.Duration) error
}

// ActionCatalog lists the seasonal spray program in priority order.
type ActionCatalog interface {
	Candidates(ctx context.Context) ([]ActionCandidate, error)
}

// Metrics receives weather lookup outcomes.
type Metrics interface {
	ObserveWeatherFetch(result string)
}

type service struct {
	cfg     Config
	source  WeatherSource
	cache   Cache
	catalog ActionCatalog
	metrics Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires the forecast domain. cache, catalog and metrics may be nil.
func NewService(cfg Config, source WeatherSource, cache Cache, catalog ActionCatalog, metrics Metrics, logger *slog.Logger) Service {
	if cfg.Rule.Limit <= 0 && len(cfg.Rule.RainSensitive) == 0 {
		cfg.Rule = DefaultActionRule()
	}
	return &service{
		cfg:     cfg,
		source:  source,
		cache:   cache,
		catalog: catalog,
		metrics: metrics,
		logger:  logger.With("component", "forecast.service"),
		now:     time.Now,
	}
}

func (s *service) Outlook(ctx context.Context, req OutlookRequest) (OutlookResponse, error) {
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return OutlookResponse{}, err
	}

	fc, cached, err := s.load(ctx, req.Latitude, req.Longitude)
	if err != nil {
		return OutlookResponse{}, err
	}

	var actions []ActionCandidate
	if s.catalog != nil {
		candidates, err := s.catalog.Candidates(ctx)
		if err != nil {
			s.logger.Warn("spray program unavailable", "error", err)
		} else {
			actions = FilterActions(candidates, fc.Days, s.cfg.Rule)
		}
	}
	if actions == nil {
		actions = []ActionCandidate{}
	}

	fetchedAt := ""
	if !fc.FetchedAt.IsZero() {
		fetchedAt = fc.FetchedAt.UTC().Format(time.RFC3339)
	}
	return OutlookResponse{
		Current:   fc.Current,
		Outlook:   Summarize(fc.Days),
		Actions:   actions,
		Source:    fc.Source,
		FetchedAt: fetchedAt,
		Cached:    cached,
	}, nil
}

func (s *service) load(ctx context.Context, lat, lon float64) (Forecast, bool, error) {
	key := CacheKey(lat, lon)
	if s.cache != nil {
		fc, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("forecast cache get failed", "key", key, "error", err)
		} else if ok {
			s.observe("cache_hit")
			return fc, true, nil
		}
	}

	fc, err := s.source.Fetch(ctx, lat, lon)
	if err != nil {
		s.observe("failed")
		return Forecast{}, false, apperrors.Wrap(apperrors.CodeWeather, "failed to fetch weather", err)
	}
	if fc.FetchedAt.IsZero() {
		fc.FetchedAt = s.now()
	}
	s.observe("fetched")
	s.logger.Info("forecast fetched", "key", key, "days", len(fc.Days))

	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if err := s.cache.Save(ctx, key, fc, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("forecast cache save failed", "key", key, "error", err)
		}
	}
	return fc, false, nil
}

func (s *service) observe(result string) {
	if s.metrics != nil {
		s.metrics.ObserveWeatherFetch(result)
	}
}

// CacheKey rounds to two decimals (about 1 km) so nearby fields share an entry.
func CacheKey(lat, lon float64) string {
	return fmt.Sprintf("forecast:%.2f:%.2f", lat, lon)
}

func validateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "lat must be between -90 and 90", nil)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "lon must be between -180 and 180", nil)
	}
	return nil
}
