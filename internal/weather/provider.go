package weather

import (
	"context"
)

// CurrentWeatherClient fetches the current observation for a provider location id.
type CurrentWeatherClient interface {
	FetchCurrent(ctx context.Context, locationID string) (CurrentWeather, error)
}

// ForecastClient fetches 3-hour forecast samples, keeping only the allowed UTC hours.
type ForecastClient interface {
	FetchForecast(ctx context.Context, locationID string, allowedHours []int) ([]ForecastSample, error)
}

// Store is the contract the sample store must satisfy.
type Store interface {
	ReplaceCurrent(rec CurrentWeather)
	ReplaceForecasts(samples []ForecastSample)
	Snapshot() Snapshot
}
