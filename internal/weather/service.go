package weather

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Service fetches current weather and forecasts for one location and keeps
// the last good data in the store.
type Service struct {
	store        Store
	current      CurrentWeatherClient
	forecast     ForecastClient
	locationID   string
	allowedHours []int
	logger       *zap.SugaredLogger
}

// NewService creates a new Service.
func NewService(store Store, current CurrentWeatherClient, forecast ForecastClient, locationID string, allowedHours []int, logger *zap.SugaredLogger) *Service {
	if len(allowedHours) == 0 {
		allowedHours = DefaultForecastHoursUTC
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		store:        store,
		current:      current,
		forecast:     forecast,
		locationID:   locationID,
		allowedHours: allowedHours,
		logger:       logger.With("component", "weather"),
	}
}

// UpdateCurrent fetches the current observation and replaces the stored one.
// On failure the previous record is kept.
func (s *Service) UpdateCurrent(ctx context.Context) error {
	rec, err := s.current.FetchCurrent(ctx, s.locationID)
	if err != nil {
		return fmt.Errorf("fetch current weather for %s: %w", s.locationID, err)
	}
	if rec.ObservedAt.IsZero() {
		rec.ObservedAt = time.Now().UTC()
	}

	s.store.ReplaceCurrent(rec)
	s.logger.Infow("current weather updated",
		"city", rec.City,
		"description", rec.Description,
		"temperature", rec.Temperature,
		"feelsLike", rec.FeelsLike)
	return nil
}

// UpdateForecast fetches forecast samples and replaces the stored buffer.
// A short but non-empty result is stored and reported as ErrPartialData; an
// empty result keeps the previous buffer.
func (s *Service) UpdateForecast(ctx context.Context) error {
	samples, err := s.forecast.FetchForecast(ctx, s.locationID, s.allowedHours)
	if err != nil {
		return fmt.Errorf("fetch forecast for %s: %w", s.locationID, err)
	}

	if len(samples) == 0 {
		return fmt.Errorf("%w: %w for %s; keeping last good forecast", ErrPartialData, ErrEmptyForecast, s.locationID)
	}

	s.store.ReplaceForecasts(samples)
	s.logger.Infow("forecast updated", "samples", len(samples))

	if len(samples) < ForecastSamples {
		return fmt.Errorf("%w: got %d of %d samples", ErrPartialData, len(samples), ForecastSamples)
	}
	return nil
}

// Snapshot delegates to the underlying store.
func (s *Service) Snapshot() Snapshot {
	return s.store.Snapshot()
}

// DaySummaries aggregates the stored forecast into at most days summaries.
func (s *Service) DaySummaries(loc *time.Location, days int) []DaySummary {
	snap := s.store.Snapshot()
	return AggregateDays(snap.ForecastSlice(), loc, days)
}
