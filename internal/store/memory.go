package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-station/internal/weather"
)

var (
	// ErrNotFound is returned when no weather data has been stored yet.
	ErrNotFound = errors.New("no weather data stored")
)

// SampleStore is a concurrency-safe holder for the latest current-weather
// record and the fixed forecast buffer. Updates replace data wholesale.
type SampleStore struct {
	mu sync.RWMutex

	current   weather.CurrentWeather
	forecasts [weather.ForecastSamples]weather.ForecastSample

	currentAt   time.Time
	forecastsAt time.Time

	now func() time.Time
}

// NewSampleStore creates an empty SampleStore.
func NewSampleStore() *SampleStore {
	return &SampleStore{now: time.Now}
}

var _ weather.Store = (*SampleStore)(nil)

// ReplaceCurrent overwrites the current-weather record.
func (s *SampleStore) ReplaceCurrent(rec weather.CurrentWeather) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = rec
	s.currentAt = s.now().UTC()
}

// ReplaceForecasts overwrites the forecast buffer. Samples beyond the buffer
// size are dropped and unused slots are zeroed.
func (s *SampleStore) ReplaceForecasts(samples []weather.ForecastSample) {
	var buf [weather.ForecastSamples]weather.ForecastSample
	copy(buf[:], samples)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.forecasts = buf
	s.forecastsAt = s.now().UTC()
}

// Snapshot returns a copy of everything currently stored.
func (s *SampleStore) Snapshot() weather.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return weather.Snapshot{
		Current:     s.current,
		Forecasts:   s.forecasts,
		CurrentAt:   s.currentAt,
		ForecastsAt: s.forecastsAt,
	}
}

// Restore seeds the store from a previously saved snapshot.
func (s *SampleStore) Restore(snap weather.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = snap.Current
	s.forecasts = snap.Forecasts
	s.currentAt = snap.CurrentAt
	s.forecastsAt = snap.ForecastsAt
}

// Current returns the stored record, or ErrNotFound before the first update.
func (s *SampleStore) Current() (weather.CurrentWeather, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current.IsZero() {
		return weather.CurrentWeather{}, ErrNotFound
	}
	return s.current, nil
}

// HasForecasts reports whether at least one forecast sample is stored.
func (s *SampleStore) HasForecasts() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return !s.forecasts[0].Time.IsZero()
}
